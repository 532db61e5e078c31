package transfer

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/Wa4h1h/tftp-client/pkg/types"
	"github.com/Wa4h1h/tftp-client/pkg/utils"
	"go.uber.org/multierr"
)

// Write uploads size bytes from source to r.RemotePath. The source is closed
// on every path. A remote file is left as the server last acknowledged it.
func (e *Engine) Write(ctx context.Context, r *Request, source io.ReadCloser, size int64) (res *Result, err error) {
	if r.Direction() != Write {
		return nil, multierr.Append(
			fmt.Errorf("%w: %s request passed to Write", utils.ErrValidation, r.Direction()),
			closeIO(source, "source"))
	}

	st := e.newState(r)
	st.total = size

	defer func() {
		err = multierr.Append(err, closeIO(source, "source"))
		if err != nil {
			res = nil
			st.l.Errorf("write of %s failed in phase %s: %s", r.RemotePath(), st.phase, err.Error())
		}
	}()

	requested := BuildRequestOptions(r, size)

	wq := &types.Request{
		Opcode:   r.opcode(),
		Filename: r.RemotePath(),
		Mode:     r.Mode(),
		Options:  requested,
	}

	if err := e.send(st, wq); err != nil {
		return nil, e.fail(st, err)
	}

	st.l.Infof("requesting write of %s to %s:%s", r.RemotePath(), r.Host(), r.Port())

	if err := e.writeResponse(ctx, st, requested); err != nil {
		return nil, e.fail(st, err)
	}

	st.phase = PhaseSending
	st.seq = NewSequencer(1)
	chunk := make([]byte, st.negotiated.BlockSize)

	for {
		if err := ctx.Err(); err != nil {
			return nil, e.fail(st, err)
		}

		n, errR := io.ReadFull(source, chunk)
		if errR != nil && !errors.Is(errR, io.EOF) && !errors.Is(errR, io.ErrUnexpectedEOF) {
			return nil, e.fail(st, fmt.Errorf("%w: reading block#=%d: %w", utils.ErrIO, st.seq.Current(), errR))
		}

		block := st.seq.Next()

		if err := e.send(st, types.NewData(block, chunk[:n])); err != nil {
			return nil, e.fail(st, err)
		}

		if err := e.awaitAck(ctx, st, block); err != nil {
			return nil, e.fail(st, err)
		}

		st.bytes += uint64(n)
		st.retries = 0
		e.report(st, block)

		if n < st.negotiated.BlockSize {
			break
		}
	}

	st.l.Infof("sent %s, %d bytes", r.RemotePath(), st.bytes)

	return e.result(st), nil
}

// writeResponse handles the first answer to a WRQ: an OACK, or ACK 0 from a
// server that ignores options.
func (e *Engine) writeResponse(ctx context.Context, st *state, requested types.Options) error {
	p, err := e.await(ctx, st)
	if err != nil {
		return err
	}

	switch p := p.(type) {
	case *types.OAck:
		neg, err := Negotiate(requested, p.Options)
		if err != nil {
			return err
		}

		st.negotiated = neg
		st.phase = PhaseNegotiated
		st.oack = true

		st.l.Debugf("negotiated blksize=%d timeout=%s tsize=%d", neg.BlockSize, neg.Timeout, neg.TransferSize)
	case *types.Ack:
		if p.BlockNum != 0 {
			return fmt.Errorf("%w: write request answered with ack block#=%d", utils.ErrUnexpectedPacket, p.BlockNum)
		}

		st.l.Debug("server ignored options, using defaults")

		st.negotiated = DefaultNegotiated()
	case *types.Error:
		return p.Err()
	default:
		return unexpected(p, st.phase)
	}

	st.retries = 0

	return nil
}

// awaitAck waits until block is acknowledged. A repeated ack of the previous
// block is ignored without retransmitting. A repeated OACK means the first
// DATA block was lost and it is sent again.
func (e *Engine) awaitAck(ctx context.Context, st *state, block uint16) error {
	for {
		p, err := e.await(ctx, st)
		if err != nil {
			if errors.Is(err, utils.ErrTimeout) {
				return fmt.Errorf("%w: block#=%d: %w", utils.ErrUnacknowledgedBlock, block, err)
			}

			return err
		}

		switch p := p.(type) {
		case *types.Ack:
			if Matches(p.BlockNum, block) {
				return nil
			}

			if Matches(p.BlockNum, block-1) {
				st.l.Debugf("ignoring duplicate ack block#=%d", p.BlockNum)

				continue
			}

			return fmt.Errorf("%w: got ack block#=%d, expected block#=%d",
				utils.ErrUnacknowledgedBlock, p.BlockNum, block)
		case *types.OAck:
			if !st.oack || block != 1 {
				return unexpected(p, st.phase)
			}

			st.l.Debug("oack repeated, resending block#=1")

			if err := e.transport.Send(st.last); err != nil {
				return err
			}
		case *types.Error:
			return p.Err()
		default:
			return unexpected(p, st.phase)
		}
	}
}
