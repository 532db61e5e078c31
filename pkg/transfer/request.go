package transfer

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Wa4h1h/tftp-client/pkg/types"
	"github.com/Wa4h1h/tftp-client/pkg/utils"
)

type Direction int

const (
	Read Direction = iota + 1
	Write
)

func (d Direction) String() string {
	switch d {
	case Read:
		return "read"
	case Write:
		return "write"
	default:
		return "unknown"
	}
}

const (
	DefaultHost = "127.0.0.1"
	DefaultPort = "69"
)

// RequestParams are the raw values a Request is built from.
type RequestParams struct {
	RemotePath string
	LocalPath  string
	Host       string
	Port       string
	Mode       string
	Direction  Direction
	BlockSize  int
	// Timeout in seconds, 0 means no timeout option is sent.
	Timeout int
}

// Request is a validated, immutable description of one transfer.
type Request struct {
	p RequestParams
}

// NewRequest applies defaults to p and validates it.
func NewRequest(p RequestParams) (*Request, error) {
	if p.Host == "" {
		p.Host = DefaultHost
	}

	if p.Port == "" {
		p.Port = DefaultPort
	}

	if p.Mode == "" {
		p.Mode = types.ModeOctet
	}

	if p.BlockSize == 0 {
		p.BlockSize = types.DefaultBlockSize
	}

	if err := validate(p); err != nil {
		return nil, err
	}

	return &Request{p: p}, nil
}

func validate(p RequestParams) error {
	if p.Direction != Read && p.Direction != Write {
		return fmt.Errorf("%w: unknown direction %d", utils.ErrValidation, p.Direction)
	}

	if p.RemotePath == "" {
		return fmt.Errorf("%w: remote path is required", utils.ErrValidation)
	}

	if p.LocalPath == "" {
		return fmt.Errorf("%w: local path is required", utils.ErrValidation)
	}

	if strings.IndexByte(p.RemotePath, 0) >= 0 {
		return fmt.Errorf("%w: remote path contains a null byte", utils.ErrValidation)
	}

	if p.Mode != types.ModeOctet && p.Mode != types.ModeNetASCII {
		return fmt.Errorf("%w: unknown mode %q", utils.ErrValidation, p.Mode)
	}

	if p.BlockSize < types.MinBlockSize || p.BlockSize > types.MaxBlockSize {
		return fmt.Errorf("%w: block size %d not in [%d, %d]",
			utils.ErrValidation, p.BlockSize, types.MinBlockSize, types.MaxBlockSize)
	}

	if p.Timeout != 0 && (p.Timeout < types.MinTimeout || p.Timeout > types.MaxTimeout) {
		return fmt.Errorf("%w: timeout %d not in [%d, %d]",
			utils.ErrValidation, p.Timeout, types.MinTimeout, types.MaxTimeout)
	}

	port, err := strconv.ParseUint(p.Port, 10, 16)
	if err != nil || port == 0 {
		return fmt.Errorf("%w: invalid port %q", utils.ErrValidation, p.Port)
	}

	return nil
}

func (r *Request) Direction() Direction { return r.p.Direction }
func (r *Request) RemotePath() string   { return r.p.RemotePath }
func (r *Request) LocalPath() string    { return r.p.LocalPath }
func (r *Request) Host() string         { return r.p.Host }
func (r *Request) Port() string         { return r.p.Port }
func (r *Request) Mode() string         { return r.p.Mode }
func (r *Request) BlockSize() int       { return r.p.BlockSize }

// Timeout returns the requested timeout option, zero when none is requested.
func (r *Request) Timeout() time.Duration {
	return time.Duration(r.p.Timeout) * time.Second
}

func (r *Request) Params() RequestParams { return r.p }

func (r *Request) opcode() types.OpCode {
	if r.p.Direction == Write {
		return types.OpCodeWRQ
	}

	return types.OpCodeRRQ
}

func (r *Request) String() string {
	return fmt.Sprintf("%s %s (local %s) from %s:%s mode=%s blksize=%d timeout=%d",
		r.p.Direction, r.p.RemotePath, r.p.LocalPath, r.p.Host, r.p.Port, r.p.Mode, r.p.BlockSize, r.p.Timeout)
}
