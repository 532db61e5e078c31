package types

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/Wa4h1h/tftp-client/pkg/utils"
)

// Request is a RRQ or WRQ packet.
type Request struct {
	Filename string
	Mode     string
	Options  Options
	Opcode   OpCode
}

func (r *Request) Op() OpCode { return r.Opcode }

func (r *Request) MarshalBinary() ([]byte, error) {
	if r.Opcode != OpCodeRRQ && r.Opcode != OpCodeWRQ {
		return nil, fmt.Errorf("%w: request opcode %d", utils.ErrEncoding, r.Opcode)
	}

	b := new(bytes.Buffer)
	rqLen := 2 + len(r.Filename) + 1 + len(r.Mode) + 1 + r.Options.encodedLen()

	b.Grow(rqLen)

	if err := binary.Write(b, binary.BigEndian, r.Opcode); err != nil {
		return nil, fmt.Errorf("error while writing Opcode: %w", err)
	}

	if err := writeString(b, r.Filename, "filename"); err != nil {
		return nil, err
	}

	if err := writeString(b, r.Mode, "mode"); err != nil {
		return nil, err
	}

	if err := r.Options.writeTo(b); err != nil {
		return nil, err
	}

	return b.Bytes(), nil
}

func (r *Request) UnmarshalBinary(data []byte) error {
	var err error

	rd := bytes.NewBuffer(data)

	if err = binary.Read(rd, binary.BigEndian, &r.Opcode); err != nil {
		return fmt.Errorf("%w: reading opcode: %w", utils.ErrMalformedPacket, err)
	}

	if r.Opcode != OpCodeRRQ && r.Opcode != OpCodeWRQ {
		return utils.ErrWrongOpCode
	}

	if r.Filename, err = readString(rd, "filename"); err != nil {
		return err
	}

	if r.Mode, err = readString(rd, "mode"); err != nil {
		return err
	}

	if r.Options, err = readOptions(rd); err != nil {
		return err
	}

	return nil
}

func (r *Request) String() string {
	return fmt.Sprintf("%s file=%s mode=%s %s", r.Opcode, r.Filename, r.Mode, r.Options)
}
