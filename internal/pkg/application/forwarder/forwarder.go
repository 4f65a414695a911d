package forwarder

import (
	"context"
	"errors"
	"fmt"
	"io"

	cloudevents "github.com/cloudevents/sdk-go/v2"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
	"golang.org/x/sys/unix"
	yaml "gopkg.in/yaml.v2"

	"github.com/optdev/iot-monsys/pkg/types"
)

//go:generate moq -rm -out forwarder_mock.go . Forwarder

// Forwarder pushes accepted readings onto a downstream analytics stream.
// Forwarding is best effort and a failure never affects ingestion.
type Forwarder interface {
	Forward(ctx context.Context, reading types.Reading) error
}

type Config struct {
	Enabled    bool     `yaml:"enabled"`
	StreamName string   `yaml:"streamName"`
	Endpoints  []string `yaml:"endpoints"`
}

func LoadConfiguration(data io.Reader) (*Config, error) {
	buf, err := io.ReadAll(data)
	if err != nil {
		return nil, err
	}

	cfg := Config{}
	if err := yaml.Unmarshal(buf, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

type forwarder struct {
	streamName string
	endpoints  []string
}

// New creates a stream forwarder from cfg. A nil or disabled configuration
// yields a forwarder that silently discards everything.
func New(cfg *Config) Forwarder {
	if cfg == nil || !cfg.Enabled || len(cfg.Endpoints) == 0 {
		return &noop{}
	}

	return &forwarder{
		streamName: cfg.StreamName,
		endpoints:  cfg.Endpoints,
	}
}

func (f *forwarder) Forward(ctx context.Context, reading types.Reading) error {
	log := logging.GetFromContext(ctx)

	partitionKey := reading.DeviceID
	if partitionKey == "" {
		partitionKey = fmt.Sprintf("ts:%d", reading.Timestamp.UnixNano())
		log.Warn("reading has no device id, using timestamp derived partition key", "partition_key", partitionKey)
	}

	c, err := cloudevents.NewClientHTTP()
	if err != nil {
		return err
	}

	event := cloudevents.NewEvent()
	event.SetID(fmt.Sprintf("%s:%d", partitionKey, reading.Timestamp.Unix()))
	event.SetTime(reading.Timestamp)
	event.SetSource("github.com/optdev/iot-monsys")
	event.SetType("iotmonsys.sensorreading")
	event.SetExtension("partitionkey", partitionKey)

	if err := event.SetData(cloudevents.ApplicationJSON, reading); err != nil {
		return err
	}

	for _, endpoint := range f.endpoints {
		ctxWithTarget := cloudevents.ContextWithTarget(ctx, endpoint)

		result := c.Send(ctxWithTarget, event)
		if cloudevents.IsUndelivered(result) || errors.Is(result, unix.ECONNREFUSED) {
			log.Error("failed to forward reading",
				"stream", f.streamName, "endpoint", endpoint, "partition_key", partitionKey,
				"err", result.Error())
			err = fmt.Errorf("%w", result)
		}
	}

	return err
}

type noop struct{}

func (n *noop) Forward(ctx context.Context, reading types.Reading) error {
	return nil
}
