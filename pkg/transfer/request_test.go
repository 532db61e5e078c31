package transfer

import (
	"testing"
	"time"

	"github.com/Wa4h1h/tftp-client/pkg/types"
	"github.com/Wa4h1h/tftp-client/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRequestDefaults(t *testing.T) {
	r, err := NewRequest(RequestParams{Direction: Read, RemotePath: "/srv/a.txt", LocalPath: "a.txt"})
	require.NoError(t, err)

	assert.Equal(t, DefaultHost, r.Host())
	assert.Equal(t, DefaultPort, r.Port())
	assert.Equal(t, types.ModeOctet, r.Mode())
	assert.Equal(t, types.DefaultBlockSize, r.BlockSize())
	assert.Zero(t, r.Timeout())
}

func TestNewRequestKeepsValues(t *testing.T) {
	r, err := NewRequest(RequestParams{
		Direction:  Write,
		RemotePath: "a.txt",
		LocalPath:  "/home/me/a.txt",
		Host:       "10.0.0.5",
		Port:       "6969",
		Mode:       types.ModeNetASCII,
		BlockSize:  8,
		Timeout:    255,
	})
	require.NoError(t, err)

	assert.Equal(t, Write, r.Direction())
	assert.Equal(t, "10.0.0.5", r.Host())
	assert.Equal(t, "6969", r.Port())
	assert.Equal(t, 8, r.BlockSize())
	assert.Equal(t, 255*time.Second, r.Timeout())
}

func TestNewRequestValidation(t *testing.T) {
	valid := RequestParams{Direction: Read, RemotePath: "a", LocalPath: "a"}

	tests := []struct {
		name   string
		modify func(p *RequestParams)
	}{
		{"no direction", func(p *RequestParams) { p.Direction = 0 }},
		{"no remote path", func(p *RequestParams) { p.RemotePath = "" }},
		{"no local path", func(p *RequestParams) { p.LocalPath = "" }},
		{"null in remote path", func(p *RequestParams) { p.RemotePath = "a\x00" }},
		{"unknown mode", func(p *RequestParams) { p.Mode = "mail" }},
		{"block size too small", func(p *RequestParams) { p.BlockSize = 7 }},
		{"block size too big", func(p *RequestParams) { p.BlockSize = 65465 }},
		{"negative timeout", func(p *RequestParams) { p.Timeout = -1 }},
		{"timeout too big", func(p *RequestParams) { p.Timeout = 256 }},
		{"port not a number", func(p *RequestParams) { p.Port = "tftp" }},
		{"port zero", func(p *RequestParams) { p.Port = "0" }},
		{"port too big", func(p *RequestParams) { p.Port = "70000" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := valid
			tt.modify(&p)

			_, err := NewRequest(p)
			assert.ErrorIs(t, err, utils.ErrValidation)
		})
	}
}
