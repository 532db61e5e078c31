package transfer

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/Wa4h1h/tftp-client/pkg/types"
	"github.com/Wa4h1h/tftp-client/pkg/utils"
	"go.uber.org/zap"
)

// Transport exchanges datagrams with one remote peer. Receive returns an error
// matching os.ErrDeadlineExceeded when nothing arrives within timeout.
type Transport interface {
	Send(packet []byte) error
	Receive(ctx context.Context, buf []byte, timeout time.Duration) (int, error)
	Close() error
}

// UDPTransport sends the request to the server's well known port and then
// locks onto the address the first reply came from (the server's transfer ID).
type UDPTransport struct {
	conn         *net.UDPConn
	server       *net.UDPAddr
	peer         *net.UDPAddr
	l            *zap.SugaredLogger
	writeTimeout time.Duration
}

func NewUDPTransport(host, port string, l *zap.SugaredLogger, writeTimeout time.Duration) (*UDPTransport, error) {
	addr, err := net.ResolveUDPAddr("udp", net.JoinHostPort(host, port))
	if err != nil {
		return nil, fmt.Errorf("%w: resolving %s:%s: %w", utils.ErrNetwork, host, port, err)
	}

	conn, err := net.ListenUDP("udp", nil)
	if err != nil {
		return nil, fmt.Errorf("%w: opening udp socket: %w", utils.ErrNetwork, err)
	}

	return &UDPTransport{conn: conn, server: addr, l: l, writeTimeout: writeTimeout}, nil
}

func (u *UDPTransport) LocalAddr() net.Addr {
	return u.conn.LocalAddr()
}

func (u *UDPTransport) Send(packet []byte) error {
	dst := u.server
	if u.peer != nil {
		dst = u.peer
	}

	if err := u.conn.SetWriteDeadline(time.Now().Add(u.writeTimeout)); err != nil {
		return fmt.Errorf("%w: setting write timeout: %w", utils.ErrNetwork, err)
	}

	if _, err := u.conn.WriteToUDP(packet, dst); err != nil {
		return fmt.Errorf("%w: writing to %s: %w", utils.ErrNetwork, dst, err)
	}

	return nil
}

func (u *UDPTransport) Receive(ctx context.Context, buf []byte, timeout time.Duration) (int, error) {
	deadline := time.Now().Add(timeout)

	stop := context.AfterFunc(ctx, func() {
		_ = u.conn.SetReadDeadline(time.Now())
	})
	defer stop()

	for {
		if err := u.conn.SetReadDeadline(deadline); err != nil {
			return 0, fmt.Errorf("%w: setting read timeout: %w", utils.ErrNetwork, err)
		}

		if err := ctx.Err(); err != nil {
			return 0, err
		}

		n, addr, err := u.conn.ReadFromUDP(buf)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return 0, ctxErr
			}

			if errors.Is(err, os.ErrDeadlineExceeded) {
				return 0, err
			}

			return 0, fmt.Errorf("%w: reading datagram: %w", utils.ErrNetwork, err)
		}

		switch {
		case u.peer == nil && addr.IP.Equal(u.server.IP):
			u.peer = addr
			u.l.Debugf("server transfer id is %s", addr)
		case u.peer == nil:
			u.l.Debugf("ignoring datagram from %s while waiting for %s", addr, u.server.IP)

			continue
		case !sameAddr(addr, u.peer):
			u.rejectStranger(addr)

			continue
		}

		return n, nil
	}
}

func (u *UDPTransport) Close() error {
	if err := u.conn.Close(); err != nil {
		return fmt.Errorf("%w: closing udp socket: %w", utils.ErrNetwork, err)
	}

	return nil
}

func (u *UDPTransport) rejectStranger(addr *net.UDPAddr) {
	u.l.Debugf("datagram from unknown transfer id %s", addr)

	b, err := types.NewError(types.ErrUnknownTransferId, "unknown transfer ID").MarshalBinary()
	if err != nil {
		u.l.Errorf("error while marshalling error packet: %s", err.Error())

		return
	}

	if _, err := u.conn.WriteToUDP(b, addr); err != nil {
		u.l.Debugf("error while answering unknown transfer id %s: %s", addr, err.Error())
	}
}

func sameAddr(a, b *net.UDPAddr) bool {
	return a.Port == b.Port && a.IP.Equal(b.IP)
}
