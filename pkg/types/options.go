package types

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/Wa4h1h/tftp-client/pkg/utils"
)

type Option struct {
	Name  string
	Value string
}

// Options keeps wire order and holds at most one value per name.
type Options []Option

func (o Options) Get(name string) (string, bool) {
	for _, opt := range o {
		if opt.Name == name {
			return opt.Value, true
		}
	}

	return "", false
}

func (o *Options) Set(name, value string) {
	for i := range *o {
		if (*o)[i].Name == name {
			(*o)[i].Value = value

			return
		}
	}

	*o = append(*o, Option{Name: name, Value: value})
}

func (o Options) String() string {
	parts := make([]string, 0, len(o))

	for _, opt := range o {
		parts = append(parts, fmt.Sprintf("%s=%s", opt.Name, opt.Value))
	}

	return strings.Join(parts, " ")
}

func (o Options) encodedLen() int {
	n := 0

	for _, opt := range o {
		n += len(opt.Name) + 1 + len(opt.Value) + 1
	}

	return n
}

func (o Options) writeTo(b *bytes.Buffer) error {
	for _, opt := range o {
		if opt.Name == "" {
			return fmt.Errorf("%w: empty option name", utils.ErrEncoding)
		}

		if err := writeString(b, opt.Name, "option name"); err != nil {
			return err
		}

		if err := writeString(b, opt.Value, "option value"); err != nil {
			return err
		}
	}

	return nil
}

func readOptions(b *bytes.Buffer) (Options, error) {
	var opts Options

	for b.Len() > 0 {
		name, err := readString(b, "option name")
		if err != nil {
			return nil, err
		}

		value, err := readString(b, fmt.Sprintf("value of option %q", name))
		if err != nil {
			return nil, err
		}

		opts.Set(name, value)
	}

	return opts, nil
}

func writeString(b *bytes.Buffer, s string, field string) error {
	if strings.IndexByte(s, 0) >= 0 {
		return fmt.Errorf("%w: %s contains a null byte", utils.ErrEncoding, field)
	}

	if _, err := b.WriteString(s); err != nil {
		return fmt.Errorf("error while writing %s: %w", field, err)
	}

	if err := b.WriteByte(0); err != nil {
		return fmt.Errorf("error while writing null byte after %s: %w", field, err)
	}

	return nil
}

func readString(b *bytes.Buffer, field string) (string, error) {
	s, err := b.ReadString(0)
	if err != nil {
		return "", fmt.Errorf("%w: %s is not terminated", utils.ErrMalformedPacket, field)
	}

	return strings.TrimSuffix(s, string(byte(0))), nil
}
