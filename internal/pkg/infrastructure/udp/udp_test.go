package udp

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/matryer/is"
)

func TestListenerDeliversDatagramsToHandler(t *testing.T) {
	is := is.New(t)

	received := make(chan []byte, 1)

	l := New("127.0.0.1", "0", func(ctx context.Context, payload []byte, sender net.Addr) {
		received <- payload
	})

	err := l.Start(context.Background())
	is.NoErr(err)
	defer l.Stop()

	conn, err := net.Dial("udp", l.LocalAddr().String())
	is.NoErr(err)
	defer conn.Close()

	_, err = conn.Write([]byte(`{"deviceId":"dev-1"}`))
	is.NoErr(err)

	select {
	case payload := <-received:
		is.Equal(string(payload), `{"deviceId":"dev-1"}`)
	case <-time.After(time.Second):
		t.Fatal("datagram was never delivered")
	}
}

func TestListenerSurvivesMultipleSenders(t *testing.T) {
	is := is.New(t)

	received := make(chan []byte, 10)

	l := New("127.0.0.1", "0", func(ctx context.Context, payload []byte, sender net.Addr) {
		received <- payload
	})

	err := l.Start(context.Background())
	is.NoErr(err)
	defer l.Stop()

	for i := 0; i < 5; i++ {
		conn, err := net.Dial("udp", l.LocalAddr().String())
		is.NoErr(err)

		_, err = conn.Write([]byte("payload"))
		is.NoErr(err)
		conn.Close()
	}

	count := 0
	timeout := time.After(2 * time.Second)
	for count < 5 {
		select {
		case <-received:
			count++
		case <-timeout:
			t.Fatalf("only %d of 5 datagrams were delivered", count)
		}
	}
}

func TestStartFailsWhenPortIsTaken(t *testing.T) {
	is := is.New(t)

	first := New("127.0.0.1", "0", func(ctx context.Context, payload []byte, sender net.Addr) {})
	err := first.Start(context.Background())
	is.NoErr(err)
	defer first.Stop()

	_, port, err := net.SplitHostPort(first.LocalAddr().String())
	is.NoErr(err)

	second := New("127.0.0.1", port, func(ctx context.Context, payload []byte, sender net.Addr) {})
	err = second.Start(context.Background())
	is.True(err != nil)
}

func TestStopIsIdempotent(t *testing.T) {
	is := is.New(t)

	l := New("127.0.0.1", "0", func(ctx context.Context, payload []byte, sender net.Addr) {})
	err := l.Start(context.Background())
	is.NoErr(err)

	l.Stop()
	l.Stop()
}
