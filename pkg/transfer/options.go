package transfer

import (
	"fmt"
	"strconv"
	"time"

	"github.com/Wa4h1h/tftp-client/pkg/types"
	"github.com/Wa4h1h/tftp-client/pkg/utils"
)

// UnknownSize marks a transfer size the server did not announce.
const UnknownSize int64 = -1

// Negotiated holds the options in effect for a transfer.
type Negotiated struct {
	BlockSize int
	// Timeout is zero when no timeout was agreed on.
	Timeout      time.Duration
	TransferSize int64
}

func DefaultNegotiated() Negotiated {
	return Negotiated{BlockSize: types.DefaultBlockSize, TransferSize: UnknownSize}
}

// BuildRequestOptions returns the options sent with the RRQ/WRQ. fileSize is
// the local source length for writes and ignored for reads.
func BuildRequestOptions(r *Request, fileSize int64) types.Options {
	var opts types.Options

	if r.Direction() == Write {
		opts.Set(types.OptTransferSize, strconv.FormatInt(fileSize, 10))
	} else {
		opts.Set(types.OptTransferSize, "0")
	}

	if r.BlockSize() != types.DefaultBlockSize {
		opts.Set(types.OptBlockSize, strconv.Itoa(r.BlockSize()))
	}

	if r.p.Timeout != 0 {
		opts.Set(types.OptTimeout, strconv.Itoa(r.p.Timeout))
	}

	return opts
}

// Negotiate applies the server's OACK to the requested options. Requested
// options missing from the OACK keep their protocol default.
func Negotiate(requested, oack types.Options) (Negotiated, error) {
	n := DefaultNegotiated()

	for _, opt := range oack {
		if _, ok := requested.Get(opt.Name); !ok {
			return n, fmt.Errorf("%w: server acknowledged unrequested option %q", utils.ErrOptionNegotiation, opt.Name)
		}
	}

	if v, ok := oack.Get(types.OptBlockSize); ok {
		size, err := parseOption(types.OptBlockSize, v, types.MinBlockSize, types.MaxBlockSize)
		if err != nil {
			return n, err
		}

		asked, _ := requested.Get(types.OptBlockSize)
		if limit, err := strconv.Atoi(asked); err == nil && int(size) > limit {
			return n, fmt.Errorf("%w: server proposed blksize %d larger than requested %d",
				utils.ErrOptionNegotiation, size, limit)
		}

		n.BlockSize = int(size)
	}

	if v, ok := oack.Get(types.OptTimeout); ok {
		secs, err := parseOption(types.OptTimeout, v, types.MinTimeout, types.MaxTimeout)
		if err != nil {
			return n, err
		}

		n.Timeout = time.Duration(secs) * time.Second
	}

	if v, ok := oack.Get(types.OptTransferSize); ok {
		size, err := parseOption(types.OptTransferSize, v, 0, -1)
		if err != nil {
			return n, err
		}

		n.TransferSize = size
	}

	return n, nil
}

// parseOption parses an integer option value in [lo, hi]; hi < 0 means unbounded.
func parseOption(name, value string, lo, hi int64) (int64, error) {
	v, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q is not a number", utils.ErrOptionNegotiation, name, value)
	}

	if v < lo || (hi >= 0 && v > hi) {
		return 0, fmt.Errorf("%w: %s=%d out of range", utils.ErrOptionNegotiation, name, v)
	}

	return v, nil
}
