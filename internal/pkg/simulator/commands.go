package simulator

import (
	"context"
	"encoding/json"
	"fmt"
	"net"

	"github.com/rs/zerolog"

	"github.com/optdev/iot-monsys/internal/pkg/infrastructure/udp"
)

// Command is a control message sent to the simulator over its command port.
type Command struct {
	Type     string  `json:"type"`
	Value    float64 `json:"value,omitempty"`
	DeviceID string  `json:"deviceId,omitempty"`
	Action   string  `json:"action,omitempty"`
}

// CommandReceiver listens on a UDP port for control commands and applies
// them to the generator.
type CommandReceiver struct {
	listener udp.Listener
	gen      *Generator
	log      zerolog.Logger
}

func NewCommandReceiver(host, port string, gen *Generator, log zerolog.Logger) *CommandReceiver {
	r := &CommandReceiver{
		gen: gen,
		log: log,
	}
	r.listener = udp.New(host, port, r.handle)
	return r
}

func (r *CommandReceiver) Start(ctx context.Context) error {
	return r.listener.Start(ctx)
}

func (r *CommandReceiver) Stop() {
	r.listener.Stop()
	r.log.Info().Msg("command server stopped")
}

func (r *CommandReceiver) handle(ctx context.Context, payload []byte, sender net.Addr) {
	cmd := Command{}
	if err := json.Unmarshal(payload, &cmd); err != nil {
		r.log.Error().Err(err).Str("sender", sender.String()).Msg("command processing error")
		return
	}

	r.log.Debug().Str("sender", sender.String()).Str("type", cmd.Type).Msg("received command")

	if err := r.Dispatch(cmd); err != nil {
		r.log.Warn().Err(err).Msg("command rejected")
	}
}

// Dispatch applies a single command to the generator.
func (r *CommandReceiver) Dispatch(cmd Command) error {
	switch cmd.Type {
	case "reset":
		r.gen.Reset()
		r.log.Info().Msg("devices have been reset")
	case "setAnomaly":
		r.gen.SetAnomalyRate(cmd.Value)
	case "deviceCommand":
		if cmd.DeviceID == "" {
			return fmt.Errorf("deviceCommand requires a deviceId")
		}
		if !r.gen.HandleDeviceCommand(cmd.DeviceID, cmd.Action) {
			return fmt.Errorf("command %s was not accepted by device %s", cmd.Action, cmd.DeviceID)
		}
	default:
		return fmt.Errorf("unknown command type %q", cmd.Type)
	}

	return nil
}
