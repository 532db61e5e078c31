package transfer

import (
	"context"
	"testing"
	"time"

	"github.com/Wa4h1h/tftp-client/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNegotiatedTimeoutDrivesReceiveTimeout(t *testing.T) {
	tests := []struct {
		name    string
		replies func(t *testing.T) [][]byte
		want    []time.Duration
	}{
		{
			name: "server accepts timeout",
			replies: func(t *testing.T) [][]byte {
				return [][]byte{
					encode(t, types.NewOAck(types.Options{{Name: types.OptTimeout, Value: "2"}})),
					nil,
					encode(t, types.NewData(1, payload(5, 'a'))),
				}
			},
			want: []time.Duration{time.Second, 2 * time.Second, 2 * time.Second},
		},
		{
			name: "server ignores options",
			replies: func(t *testing.T) [][]byte {
				return [][]byte{
					encode(t, types.NewData(1, payload(512, 'a'))),
					nil,
					encode(t, types.NewData(2, payload(5, 'b'))),
				}
			},
			want: []time.Duration{time.Second, time.Second, time.Second},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			peer := newScriptedPeer(t, tt.replies(t)...)

			r := mustRequest(t, RequestParams{
				Direction:  Read,
				RemotePath: "boot.img",
				LocalPath:  "boot.img",
				Timeout:    2,
			})

			_, err := newEngine(peer).Read(context.Background(), r, new(memFile))
			require.NoError(t, err)

			assert.Equal(t, tt.want, peer.timeouts)
		})
	}
}

func TestNegotiatedTimeoutOnWrite(t *testing.T) {
	peer := newScriptedPeer(t,
		encode(t, types.NewOAck(types.Options{{Name: types.OptTimeout, Value: "7"}})),
		encode(t, types.NewAck(1)),
	)

	r := mustRequest(t, RequestParams{
		Direction:  Write,
		RemotePath: "upload.bin",
		LocalPath:  "upload.bin",
		Timeout:    7,
	})

	res, err := newEngine(peer).Write(context.Background(), r, source(payload(3, 'w')), 3)
	require.NoError(t, err)

	assert.Equal(t, 7*time.Second, res.Negotiated.Timeout)
	assert.Equal(t, []time.Duration{time.Second, 7 * time.Second}, peer.timeouts)
}
