package utils

import (
	"errors"
	"fmt"
)

var (
	ErrValidation = errors.New("error: invalid transfer request")
	ErrNetwork    = errors.New("error: network failure")
	ErrProtocol   = errors.New("error: protocol violation")
	ErrIO         = errors.New("error: local file access")
	ErrEncoding   = errors.New("error: packet can not be encoded")
)

// Protocol failures all match ErrProtocol through errors.Is.
var (
	ErrWrongOpCode         = fmt.Errorf("%w: invalid operation code", ErrProtocol)
	ErrMalformedPacket     = fmt.Errorf("%w: malformed packet", ErrProtocol)
	ErrUnexpectedPacket    = fmt.Errorf("%w: unexpected packet", ErrProtocol)
	ErrOptionNegotiation   = fmt.Errorf("%w: option negotiation failed", ErrProtocol)
	ErrUnacknowledgedBlock = fmt.Errorf("%w: block not acknowledged", ErrProtocol)
	ErrTimeout             = fmt.Errorf("%w: timed out waiting for peer", ErrProtocol)
)
