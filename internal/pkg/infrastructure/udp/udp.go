package udp

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync/atomic"

	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
)

// maxDatagramSize bounds the receive buffer. Sensor payloads are a few
// hundred bytes, anything larger is truncated by the network stack anyway.
const maxDatagramSize = 65507

// Handler processes the payload of a single datagram. It is invoked on its
// own goroutine so that a slow handler never blocks receipt of the next
// datagram.
type Handler func(ctx context.Context, payload []byte, sender net.Addr)

// Listener is a connectionless datagram receive loop. The OS socket buffer
// is the only queue; there is no application level backpressure.
type Listener interface {
	Start(ctx context.Context) error
	Stop()
	LocalAddr() net.Addr
}

type listener struct {
	host    string
	port    string
	handler Handler

	conn    *net.UDPConn
	stopped atomic.Bool
}

func New(host, port string, handler Handler) Listener {
	return &listener{
		host:    host,
		port:    port,
		handler: handler,
	}
}

// Start binds the socket and begins receiving. A bind failure is returned to
// the caller; it is the only fatal error this package produces.
func (l *listener) Start(ctx context.Context) error {
	addr, err := net.ResolveUDPAddr("udp", net.JoinHostPort(l.host, l.port))
	if err != nil {
		return fmt.Errorf("could not resolve udp address: %w", err)
	}

	conn, err := net.ListenUDP("udp", addr)
	if err != nil {
		return fmt.Errorf("could not bind udp socket: %w", err)
	}

	l.conn = conn

	log := logging.GetFromContext(ctx)
	log.Info("udp listener started", "addr", conn.LocalAddr().String())

	go l.receiveLoop(ctx)

	return nil
}

func (l *listener) receiveLoop(ctx context.Context) {
	log := logging.GetFromContext(ctx)

	buf := make([]byte, maxDatagramSize)

	for {
		n, sender, err := l.conn.ReadFromUDP(buf)
		if err != nil {
			if l.stopped.Load() || errors.Is(err, net.ErrClosed) {
				log.Info("udp listener stopped")
				return
			}

			log.Error("udp receive error", "err", err.Error())
			continue
		}

		payload := make([]byte, n)
		copy(payload, buf[:n])

		go l.handler(ctx, payload, sender)
	}
}

func (l *listener) Stop() {
	l.stopped.Store(true)

	if l.conn != nil {
		l.conn.Close()
	}
}

func (l *listener) LocalAddr() net.Addr {
	if l.conn == nil {
		return nil
	}
	return l.conn.LocalAddr()
}
