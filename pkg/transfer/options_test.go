package transfer

import (
	"testing"
	"time"

	"github.com/Wa4h1h/tftp-client/pkg/types"
	"github.com/Wa4h1h/tftp-client/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildRequestOptions(t *testing.T) {
	tests := []struct {
		name   string
		params RequestParams
		size   int64
		want   types.Options
	}{
		{
			name:   "read with defaults only asks for tsize",
			params: RequestParams{Direction: Read, RemotePath: "a", LocalPath: "a"},
			want:   types.Options{{Name: types.OptTransferSize, Value: "0"}},
		},
		{
			name:   "read ignores the local size",
			params: RequestParams{Direction: Read, RemotePath: "a", LocalPath: "a", BlockSize: 1024, Timeout: 5},
			size:   99,
			want: types.Options{
				{Name: types.OptTransferSize, Value: "0"},
				{Name: types.OptBlockSize, Value: "1024"},
				{Name: types.OptTimeout, Value: "5"},
			},
		},
		{
			name:   "write announces its size",
			params: RequestParams{Direction: Write, RemotePath: "a", LocalPath: "a", BlockSize: 512, Timeout: 1},
			size:   4096,
			want: types.Options{
				{Name: types.OptTransferSize, Value: "4096"},
				{Name: types.OptTimeout, Value: "1"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BuildRequestOptions(mustRequest(t, tt.params), tt.size))
		})
	}
}

func TestNegotiate(t *testing.T) {
	requested := types.Options{
		{Name: types.OptTransferSize, Value: "0"},
		{Name: types.OptBlockSize, Value: "1024"},
		{Name: types.OptTimeout, Value: "5"},
	}

	tests := []struct {
		name string
		oack types.Options
		want Negotiated
	}{
		{
			name: "missing options fall back to defaults",
			oack: types.Options{{Name: types.OptBlockSize, Value: "1024"}},
			want: Negotiated{BlockSize: 1024, TransferSize: UnknownSize},
		},
		{
			name: "everything acknowledged",
			oack: types.Options{
				{Name: types.OptTransferSize, Value: "2348"},
				{Name: types.OptBlockSize, Value: "1024"},
				{Name: types.OptTimeout, Value: "5"},
			},
			want: Negotiated{BlockSize: 1024, Timeout: 5 * time.Second, TransferSize: 2348},
		},
		{
			name: "smaller block size is adopted",
			oack: types.Options{{Name: types.OptBlockSize, Value: "1000"}},
			want: Negotiated{BlockSize: 1000, TransferSize: UnknownSize},
		},
		{
			name: "empty oack",
			want: DefaultNegotiated(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Negotiate(requested, tt.oack)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNegotiateDropsUnacknowledgedTimeout(t *testing.T) {
	requested := types.Options{
		{Name: types.OptBlockSize, Value: "1024"},
		{Name: types.OptTimeout, Value: "5"},
	}

	got, err := Negotiate(requested, types.Options{{Name: types.OptBlockSize, Value: "1024"}})
	require.NoError(t, err)
	assert.Equal(t, 1024, got.BlockSize)
	assert.Zero(t, got.Timeout)
}

func TestNegotiateFailures(t *testing.T) {
	requested := types.Options{
		{Name: types.OptTransferSize, Value: "0"},
		{Name: types.OptBlockSize, Value: "1024"},
		{Name: types.OptTimeout, Value: "5"},
	}

	tests := []struct {
		name string
		oack types.Options
	}{
		{"non numeric blksize", types.Options{{Name: types.OptBlockSize, Value: "big"}}},
		{"blksize too small", types.Options{{Name: types.OptBlockSize, Value: "4"}}},
		{"blksize larger than requested", types.Options{{Name: types.OptBlockSize, Value: "2048"}}},
		{"timeout out of range", types.Options{{Name: types.OptTimeout, Value: "0"}}},
		{"negative tsize", types.Options{{Name: types.OptTransferSize, Value: "-3"}}},
		{"unrequested option", types.Options{{Name: "windowsize", Value: "4"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Negotiate(requested, tt.oack)
			assert.ErrorIs(t, err, utils.ErrOptionNegotiation)
			assert.ErrorIs(t, err, utils.ErrProtocol)
		})
	}
}
