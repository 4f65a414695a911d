package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/tracing"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"

	"github.com/optdev/iot-monsys/pkg/types"
)

// MonitoringClient talks to the sensor ingest service's REST API. It is
// intended for other services that need to look up devices or drive
// discovery mode remotely.
type MonitoringClient interface {
	FindDeviceFromDeviceID(ctx context.Context, deviceID string) (types.Device, error)
	DiscoveryMode(ctx context.Context) (types.DiscoveryState, error)
	SetDiscoveryMode(ctx context.Context, enabled bool, durationSeconds int) (types.DiscoveryState, error)
}

type monitoringClient struct {
	url   string
	token string
}

var tracer = otel.Tracer("iot-monsys-client")

func New(url, token string) MonitoringClient {
	return &monitoringClient{
		url:   url,
		token: token,
	}
}

func (c *monitoringClient) do(ctx context.Context, method, path string, body io.Reader) ([]byte, error) {
	httpClient := http.Client{
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}

	req, err := http.NewRequestWithContext(ctx, method, c.url+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create http request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("request failed with status code %d", resp.StatusCode)
	}

	return respBody, nil
}

func (c *monitoringClient) FindDeviceFromDeviceID(ctx context.Context, deviceID string) (types.Device, error) {
	var err error
	ctx, span := tracer.Start(ctx, "find-device-from-id")
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	log := logging.GetFromContext(ctx)
	log.Debug("looking up device", "device_id", deviceID)

	respBody, err := c.do(ctx, http.MethodGet, "/api/v0/devices/"+deviceID, nil)
	if err != nil {
		return types.Device{}, err
	}

	device := types.Device{}
	if err = json.Unmarshal(respBody, &device); err != nil {
		return types.Device{}, fmt.Errorf("failed to unmarshal response body: %w", err)
	}

	return device, nil
}

func (c *monitoringClient) DiscoveryMode(ctx context.Context) (types.DiscoveryState, error) {
	var err error
	ctx, span := tracer.Start(ctx, "get-discovery-mode")
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	respBody, err := c.do(ctx, http.MethodGet, "/api/v0/discovery", nil)
	if err != nil {
		return types.DiscoveryState{}, err
	}

	state := types.DiscoveryState{}
	if err = json.Unmarshal(respBody, &state); err != nil {
		return types.DiscoveryState{}, fmt.Errorf("failed to unmarshal response body: %w", err)
	}

	return state, nil
}

func (c *monitoringClient) SetDiscoveryMode(ctx context.Context, enabled bool, durationSeconds int) (types.DiscoveryState, error) {
	var err error
	ctx, span := tracer.Start(ctx, "set-discovery-mode")
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	request := map[string]any{"enabled": enabled}
	if durationSeconds > 0 {
		request["duration"] = durationSeconds
	}

	b, err := json.Marshal(request)
	if err != nil {
		return types.DiscoveryState{}, err
	}

	respBody, err := c.do(ctx, http.MethodPost, "/api/v0/discovery", bytes.NewReader(b))
	if err != nil {
		return types.DiscoveryState{}, err
	}

	state := types.DiscoveryState{}
	if err = json.Unmarshal(respBody, &state); err != nil {
		return types.DiscoveryState{}, fmt.Errorf("failed to unmarshal response body: %w", err)
	}

	return state, nil
}
