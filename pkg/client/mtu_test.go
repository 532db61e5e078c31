package client

import (
	"net"
	"testing"

	"github.com/Wa4h1h/tftp-client/pkg/types"
	"github.com/stretchr/testify/assert"
)

func TestBlockSizeLimit(t *testing.T) {
	tests := []struct {
		name   string
		ifaces []net.Interface
		want   int
	}{
		{"no interfaces", nil, types.MaxBlockSize},
		{"ethernet", []net.Interface{{MTU: 1500, Flags: net.FlagUp}}, 1468},
		{"smallest up interface wins", []net.Interface{
			{MTU: 65536, Flags: net.FlagUp | net.FlagLoopback},
			{MTU: 1500, Flags: net.FlagUp},
			{MTU: 576, Flags: 0},
		}, 1468},
		{"loopback only", []net.Interface{{MTU: 65536, Flags: net.FlagUp | net.FlagLoopback}}, types.MaxBlockSize},
		{"tiny mtu", []net.Interface{{MTU: 30, Flags: net.FlagUp}}, types.MinBlockSize},
		{"down interfaces ignored", []net.Interface{{MTU: 1500}}, types.MaxBlockSize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, blockSizeLimit(tt.ifaces))
		})
	}
}

func TestClampBlockSize(t *testing.T) {
	size, clamped := clampBlockSize(1024, 1468)
	assert.Equal(t, 1024, size)
	assert.False(t, clamped)

	size, clamped = clampBlockSize(9000, 1468)
	assert.Equal(t, 1468, size)
	assert.True(t, clamped)

	size, clamped = clampBlockSize(1468, 1468)
	assert.Equal(t, 1468, size)
	assert.False(t, clamped)
}
