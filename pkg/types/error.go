package types

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/Wa4h1h/tftp-client/pkg/utils"
)

type Error struct {
	ErrMsg    string
	ErrorCode ErrCode
	Opcode    OpCode
}

func NewError(code ErrCode, msg string) *Error {
	return &Error{Opcode: OpCodeError, ErrorCode: code, ErrMsg: msg}
}

func (e *Error) Op() OpCode { return OpCodeError }

func (e *Error) MarshalBinary() ([]byte, error) {
	b := new(bytes.Buffer)
	b.Grow(HeaderSize + len(e.ErrMsg) + 1)

	if err := binary.Write(b, binary.BigEndian, OpCodeError); err != nil {
		return nil, fmt.Errorf("error while writing opcode: %w", err)
	}

	if err := binary.Write(b, binary.BigEndian, e.ErrorCode); err != nil {
		return nil, fmt.Errorf("error while writing error code: %w", err)
	}

	if err := writeString(b, e.ErrMsg, "error message"); err != nil {
		return nil, err
	}

	return b.Bytes(), nil
}

func (e *Error) UnmarshalBinary(data []byte) error {
	var err error

	b := bytes.NewBuffer(data)

	if err = binary.Read(b, binary.BigEndian, &e.Opcode); err != nil {
		return fmt.Errorf("%w: reading opcode: %w", utils.ErrMalformedPacket, err)
	}

	if e.Opcode != OpCodeError {
		return utils.ErrWrongOpCode
	}

	if err = binary.Read(b, binary.BigEndian, &e.ErrorCode); err != nil {
		return fmt.Errorf("%w: reading error code: %w", utils.ErrMalformedPacket, err)
	}

	if e.ErrMsg, err = readString(b, "error message"); err != nil {
		return err
	}

	return nil
}

func (e *Error) String() string {
	return fmt.Sprintf("ERROR code=%d msg=%q", e.ErrorCode, e.ErrMsg)
}

// Err converts a received ERROR packet into a ServerError.
func (e *Error) Err() error {
	return &ServerError{Code: e.ErrorCode, Msg: e.ErrMsg}
}

// ServerError is an ERROR packet sent by the remote peer.
type ServerError struct {
	Msg  string
	Code ErrCode
}

func (s *ServerError) Error() string {
	return fmt.Sprintf("tftp: server error %d: %s", s.Code, s.Msg)
}
