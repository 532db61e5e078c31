package types

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/Wa4h1h/tftp-client/pkg/utils"
)

// OAck acknowledges the options of a request.
type OAck struct {
	Options Options
	Opcode  OpCode
}

func NewOAck(opts Options) *OAck {
	return &OAck{Opcode: OpCodeOACK, Options: opts}
}

func (o *OAck) Op() OpCode { return OpCodeOACK }

func (o *OAck) MarshalBinary() ([]byte, error) {
	b := new(bytes.Buffer)
	b.Grow(2 + o.Options.encodedLen())

	if err := binary.Write(b, binary.BigEndian, OpCodeOACK); err != nil {
		return nil, fmt.Errorf("error while writing opcode: %w", err)
	}

	if err := o.Options.writeTo(b); err != nil {
		return nil, err
	}

	return b.Bytes(), nil
}

func (o *OAck) UnmarshalBinary(data []byte) error {
	var err error

	b := bytes.NewBuffer(data)

	if err = binary.Read(b, binary.BigEndian, &o.Opcode); err != nil {
		return fmt.Errorf("%w: reading opcode: %w", utils.ErrMalformedPacket, err)
	}

	if o.Opcode != OpCodeOACK {
		return utils.ErrWrongOpCode
	}

	if o.Options, err = readOptions(b); err != nil {
		return err
	}

	return nil
}

func (o *OAck) String() string {
	return fmt.Sprintf("OACK %s", o.Options)
}
