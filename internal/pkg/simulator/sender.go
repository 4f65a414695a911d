package simulator

import (
	"encoding/json"
	"fmt"
	"net"

	"github.com/rs/zerolog"

	"github.com/optdev/iot-monsys/pkg/types"
)

// Sender pushes readings as JSON datagrams to the ingest service.
type Sender struct {
	conn *net.UDPConn
	log  zerolog.Logger
}

func NewSender(host, port string, log zerolog.Logger) (*Sender, error) {
	addr, err := net.ResolveUDPAddr("udp", net.JoinHostPort(host, port))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve target address: %w", err)
	}

	conn, err := net.DialUDP("udp", nil, addr)
	if err != nil {
		return nil, fmt.Errorf("failed to open udp socket: %w", err)
	}

	return &Sender{conn: conn, log: log}, nil
}

func (s *Sender) Send(reading types.Reading) error {
	payload, err := json.Marshal(reading)
	if err != nil {
		return fmt.Errorf("failed to marshal reading: %w", err)
	}

	if _, err := s.conn.Write(payload); err != nil {
		return fmt.Errorf("failed to send reading: %w", err)
	}

	s.log.Debug().Str("device_id", reading.DeviceID).Float64("value", reading.Value).Msg("data sent")
	return nil
}

func (s *Sender) Close() error {
	return s.conn.Close()
}
