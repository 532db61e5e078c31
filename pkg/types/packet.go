package types

import (
	"encoding"
	"encoding/binary"
	"fmt"

	"github.com/Wa4h1h/tftp-client/pkg/utils"
)

type Packet interface {
	encoding.BinaryMarshaler
	encoding.BinaryUnmarshaler
	Op() OpCode
}

// Encode marshals p and fails when the datagram would exceed capacity bytes.
func Encode(p Packet, capacity int) ([]byte, error) {
	b, err := p.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", utils.ErrEncoding, p.Op(), err)
	}

	if len(b) > capacity {
		return nil, fmt.Errorf("%w: %s needs %d bytes, capacity is %d", utils.ErrEncoding, p.Op(), len(b), capacity)
	}

	return b, nil
}

// Decode parses a datagram into the packet type selected by its opcode.
func Decode(b []byte) (Packet, error) {
	if len(b) < 2 {
		return nil, fmt.Errorf("%w: datagram of %d bytes", utils.ErrMalformedPacket, len(b))
	}

	var p Packet

	switch op := OpCode(binary.BigEndian.Uint16(b)); op {
	case OpCodeRRQ, OpCodeWRQ:
		p = new(Request)
	case OpCodeDATA:
		p = new(Data)
	case OpCodeACK:
		p = new(Ack)
	case OpCodeError:
		p = new(Error)
	case OpCodeOACK:
		p = new(OAck)
	default:
		return nil, fmt.Errorf("%w: unknown opcode %d", utils.ErrMalformedPacket, op)
	}

	if err := p.UnmarshalBinary(b); err != nil {
		return nil, err
	}

	return p, nil
}
