package transfer

import (
	"bytes"
	"context"
	"os"
	"testing"
	"time"

	"github.com/Wa4h1h/tftp-client/pkg/types"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// scriptedPeer answers Receive calls from a fixed list of datagrams. A nil
// entry, or an exhausted script, is a receive timeout.
type scriptedPeer struct {
	t        *testing.T
	replies  [][]byte
	sent     [][]byte
	timeouts []time.Duration
	closed   bool
}

func newScriptedPeer(t *testing.T, replies ...[]byte) *scriptedPeer {
	return &scriptedPeer{t: t, replies: replies}
}

func (s *scriptedPeer) Send(packet []byte) error {
	s.sent = append(s.sent, append([]byte(nil), packet...))

	return nil
}

func (s *scriptedPeer) Receive(ctx context.Context, buf []byte, timeout time.Duration) (int, error) {
	s.timeouts = append(s.timeouts, timeout)

	if err := ctx.Err(); err != nil {
		return 0, err
	}

	if len(s.replies) == 0 {
		return 0, os.ErrDeadlineExceeded
	}

	next := s.replies[0]
	s.replies = s.replies[1:]

	if next == nil {
		return 0, os.ErrDeadlineExceeded
	}

	return copy(buf, next), nil
}

func (s *scriptedPeer) Close() error {
	s.closed = true

	return nil
}

// sentPackets decodes everything the engine sent.
func (s *scriptedPeer) sentPackets() []types.Packet {
	s.t.Helper()

	packets := make([]types.Packet, 0, len(s.sent))

	for _, b := range s.sent {
		p, err := types.Decode(b)
		require.NoError(s.t, err)

		packets = append(packets, p)
	}

	return packets
}

func encode(t *testing.T, p types.Packet) []byte {
	t.Helper()

	b, err := p.MarshalBinary()
	require.NoError(t, err)

	return b
}

func payload(n int, fill byte) []byte {
	return bytes.Repeat([]byte{fill}, n)
}

// memFile is an in-memory sink/source that remembers being closed.
type memFile struct {
	bytes.Buffer
	closed bool
}

func (m *memFile) Close() error {
	m.closed = true

	return nil
}

func newEngine(peer Transport) *Engine {
	return NewEngine(peer, zap.NewNop().Sugar(), time.Second, 3, true)
}

func mustRequest(t *testing.T, p RequestParams) *Request {
	t.Helper()

	r, err := NewRequest(p)
	require.NoError(t, err)

	return r
}
