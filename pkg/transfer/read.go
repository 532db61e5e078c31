package transfer

import (
	"context"
	"fmt"
	"io"

	"github.com/Wa4h1h/tftp-client/pkg/types"
	"github.com/Wa4h1h/tftp-client/pkg/utils"
	"go.uber.org/multierr"
)

// Read downloads r.RemotePath into sink. The sink is closed on every path.
func (e *Engine) Read(ctx context.Context, r *Request, sink io.WriteCloser) (res *Result, err error) {
	if r.Direction() != Read {
		return nil, multierr.Append(
			fmt.Errorf("%w: %s request passed to Read", utils.ErrValidation, r.Direction()),
			closeIO(sink, "sink"))
	}

	st := e.newState(r)

	defer func() {
		err = multierr.Append(err, closeIO(sink, "sink"))
		if err != nil {
			res = nil
			st.l.Errorf("read of %s failed in phase %s: %s", r.RemotePath(), st.phase, err.Error())
		}
	}()

	requested := BuildRequestOptions(r, 0)

	rq := &types.Request{
		Opcode:   r.opcode(),
		Filename: r.RemotePath(),
		Mode:     r.Mode(),
		Options:  requested,
	}

	if err := e.send(st, rq); err != nil {
		return nil, e.fail(st, err)
	}

	st.l.Infof("requesting read of %s from %s:%s", r.RemotePath(), r.Host(), r.Port())

	done, err := e.readResponse(ctx, st, requested, sink)
	if err != nil {
		return nil, e.fail(st, err)
	}

	for !done {
		if err := ctx.Err(); err != nil {
			return nil, e.fail(st, err)
		}

		p, err := e.await(ctx, st)
		if err != nil {
			return nil, e.fail(st, err)
		}

		switch p := p.(type) {
		case *types.Data:
			if !Matches(p.BlockNum, st.seq.Current()) {
				if Matches(p.BlockNum, st.seq.Previous()) {
					st.l.Debugf("duplicate block#=%d, resending last ack", p.BlockNum)
				} else {
					st.l.Debugf("got block#=%d, expected block#=%d, resending last ack", p.BlockNum, st.seq.Current())
				}

				if err := e.transport.Send(st.last); err != nil {
					return nil, e.fail(st, err)
				}

				continue
			}

			if done, err = e.accept(st, p, sink); err != nil {
				return nil, e.fail(st, err)
			}
		case *types.OAck:
			if st.phase != PhaseNegotiated {
				return nil, e.fail(st, unexpected(p, st.phase))
			}

			st.l.Debug("oack repeated, resending ack block#=0")

			if err := e.transport.Send(st.last); err != nil {
				return nil, e.fail(st, err)
			}
		case *types.Error:
			return nil, e.fail(st, p.Err())
		default:
			return nil, e.fail(st, unexpected(p, st.phase))
		}
	}

	if st.negotiated.TransferSize != UnknownSize && r.Mode() == types.ModeOctet &&
		uint64(st.negotiated.TransferSize) != st.bytes {
		st.l.Warnf("server announced %d bytes, received %d", st.negotiated.TransferSize, st.bytes)
	}

	st.l.Infof("received %s, %d bytes", r.RemotePath(), st.bytes)

	return e.result(st), nil
}

// readResponse handles the first answer to a RRQ: an OACK, or the first DATA
// block of a server that ignores options.
func (e *Engine) readResponse(ctx context.Context, st *state, requested types.Options, sink io.Writer) (bool, error) {
	p, err := e.await(ctx, st)
	if err != nil {
		return false, err
	}

	switch p := p.(type) {
	case *types.OAck:
		neg, err := Negotiate(requested, p.Options)
		if err != nil {
			return false, err
		}

		st.negotiated = neg
		st.total = neg.TransferSize
		st.phase = PhaseNegotiated
		st.seq = NewSequencer(1)
		st.retries = 0

		st.l.Debugf("negotiated blksize=%d timeout=%s tsize=%d", neg.BlockSize, neg.Timeout, neg.TransferSize)

		return false, e.send(st, types.NewAck(0))
	case *types.Data:
		if p.BlockNum != 1 {
			return false, fmt.Errorf("%w: first block is #%d", utils.ErrUnexpectedPacket, p.BlockNum)
		}

		st.l.Debug("server ignored options, using defaults")

		st.negotiated = DefaultNegotiated()
		st.seq = NewSequencer(1)
		st.phase = PhaseReceiving

		return e.accept(st, p, sink)
	case *types.Error:
		return false, p.Err()
	default:
		return false, unexpected(p, st.phase)
	}
}

// accept writes the expected block, acknowledges it and reports whether it was
// the last one.
func (e *Engine) accept(st *state, d *types.Data, sink io.Writer) (bool, error) {
	if len(d.Payload) > st.negotiated.BlockSize {
		return false, fmt.Errorf("%w: block#=%d carries %d bytes, blksize is %d",
			utils.ErrMalformedPacket, d.BlockNum, len(d.Payload), st.negotiated.BlockSize)
	}

	if _, err := sink.Write(d.Payload); err != nil {
		return false, fmt.Errorf("%w: writing block#=%d: %w", utils.ErrIO, d.BlockNum, err)
	}

	block := st.seq.Next()
	st.phase = PhaseReceiving
	st.bytes += uint64(len(d.Payload))
	st.retries = 0

	if err := e.send(st, types.NewAck(block)); err != nil {
		return false, err
	}

	e.report(st, block)

	return len(d.Payload) < st.negotiated.BlockSize, nil
}

func closeIO(c io.Closer, what string) error {
	if err := c.Close(); err != nil {
		return fmt.Errorf("%w: closing %s: %w", utils.ErrIO, what, err)
	}

	return nil
}
