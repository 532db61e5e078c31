package transfer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/Wa4h1h/tftp-client/pkg/types"
	"github.com/Wa4h1h/tftp-client/pkg/utils"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Phase int

const (
	PhaseRequested Phase = iota + 1
	PhaseNegotiated
	PhaseReceiving
	PhaseSending
	PhaseComplete
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseRequested:
		return "requested"
	case PhaseNegotiated:
		return "negotiated"
	case PhaseReceiving:
		return "receiving"
	case PhaseSending:
		return "sending"
	case PhaseComplete:
		return "complete"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Progress is reported after every acknowledged block.
type Progress struct {
	ID          string
	Direction   Direction
	Block       uint16
	Transferred uint64
	// Total is UnknownSize when the size was not announced.
	Total int64
}

type ProgressFunc func(Progress)

type Result struct {
	ID          string
	Transferred uint64
	Negotiated  Negotiated
	Elapsed     time.Duration
}

// Engine drives a single transfer at a time over its transport. Every wait for
// the peer is bounded by a timeout and the last packet is retransmitted up to
// numTries times before the transfer fails.
type Engine struct {
	transport Transport
	l         *zap.SugaredLogger
	progress  ProgressFunc
	timeout   time.Duration
	numTries  int
	trace     bool
}

func NewEngine(transport Transport, logger *zap.SugaredLogger,
	timeout time.Duration, numTries int, trace bool,
) *Engine {
	return &Engine{
		transport: transport, l: logger, timeout: timeout,
		numTries: numTries, trace: trace,
	}
}

func (e *Engine) SetProgress(fn ProgressFunc) {
	e.progress = fn
}

// state belongs to exactly one transfer and is dropped when it ends.
type state struct {
	l          *zap.SugaredLogger
	seq        *Sequencer
	id         string
	direction  Direction
	buf        []byte
	last       []byte
	negotiated Negotiated
	bytes      uint64
	total      int64
	retries    int
	phase      Phase
	answered   bool
	oack       bool
	started    time.Time
}

func (e *Engine) newState(r *Request) *state {
	id := uuid.NewString()
	size := max(r.BlockSize(), types.DefaultBlockSize)

	return &state{
		l:          e.l.With("transfer", id),
		id:         id,
		direction:  r.Direction(),
		buf:        make([]byte, size+types.HeaderSize+1),
		negotiated: DefaultNegotiated(),
		total:      UnknownSize,
		phase:      PhaseRequested,
		started:    time.Now(),
	}
}

func (e *Engine) result(st *state) *Result {
	st.phase = PhaseComplete

	return &Result{
		ID:          st.id,
		Transferred: st.bytes,
		Negotiated:  st.negotiated,
		Elapsed:     time.Since(st.started),
	}
}

// send encodes p, sends it and remembers it for retransmission.
func (e *Engine) send(st *state, p types.Packet) error {
	b, err := types.Encode(p, len(st.buf)-1)
	if err != nil {
		return err
	}

	if err := e.transport.Send(b); err != nil {
		return err
	}

	if e.trace {
		st.l.Debugf("sent --> %v", p)
	}

	st.last = b

	return nil
}

// await waits for the next packet from the peer, retransmitting the last sent
// packet on every timeout until the retry budget is spent.
func (e *Engine) await(ctx context.Context, st *state) (types.Packet, error) {
	for {
		n, err := e.transport.Receive(ctx, st.buf, e.receiveTimeout(st))
		if err != nil {
			if !errors.Is(err, os.ErrDeadlineExceeded) {
				return nil, err
			}

			if st.retries >= e.numTries {
				return nil, fmt.Errorf("%w: no answer after %d retransmissions", utils.ErrTimeout, st.retries)
			}

			st.retries++
			st.l.Debugf("timed out in phase %s, retransmitting (%d/%d)", st.phase, st.retries, e.numTries)

			if err := e.transport.Send(st.last); err != nil {
				return nil, err
			}

			continue
		}

		st.answered = true

		p, err := types.Decode(st.buf[:n])
		if err != nil {
			return nil, err
		}

		if e.trace {
			st.l.Debugf("received <-- %v", p)
		}

		return p, nil
	}
}

func (e *Engine) receiveTimeout(st *state) time.Duration {
	if st.negotiated.Timeout > 0 {
		return st.negotiated.Timeout
	}

	return e.timeout
}

// fail records the failure and, once the server has answered, tells it why
// the transfer is abandoned. Server errors are never answered.
func (e *Engine) fail(st *state, err error) error {
	st.phase = PhaseFailed

	var serr *types.ServerError
	if !st.answered || errors.As(err, &serr) {
		return err
	}

	code := types.ErrNotDefined
	msg := "transfer aborted"

	switch {
	case errors.Is(err, utils.ErrOptionNegotiation):
		code, msg = types.ErrOptionRefused, "option negotiation failed"
	case errors.Is(err, utils.ErrUnexpectedPacket), errors.Is(err, utils.ErrMalformedPacket):
		code, msg = types.ErrIllegalTftpOp, "illegal tftp operation"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		msg = "transfer cancelled"
	case errors.Is(err, utils.ErrIO):
		msg = "client file error"
	case errors.Is(err, utils.ErrTimeout), errors.Is(err, utils.ErrNetwork):
		return err
	}

	b, errM := types.NewError(code, msg).MarshalBinary()
	if errM != nil {
		st.l.Errorf("error while marshalling error packet: %s", errM.Error())

		return err
	}

	if errS := e.transport.Send(b); errS != nil {
		st.l.Debugf("error while notifying server: %s", errS.Error())
	}

	return err
}

func (e *Engine) report(st *state, block uint16) {
	if e.trace {
		st.l.Debugf("%s block#=%d, total #bytes=%d", st.phase, block, st.bytes)
	}

	if e.progress != nil {
		e.progress(Progress{
			ID:          st.id,
			Direction:   st.direction,
			Block:       block,
			Transferred: st.bytes,
			Total:       st.total,
		})
	}
}

func unexpected(p types.Packet, phase Phase) error {
	return fmt.Errorf("%w: %s in phase %s", utils.ErrUnexpectedPacket, p.Op(), phase)
}
