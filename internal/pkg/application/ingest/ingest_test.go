package ingest

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/matryer/is"

	"github.com/optdev/iot-monsys/internal/pkg/application/devicemanagement"
	"github.com/optdev/iot-monsys/internal/pkg/application/discovery"
	"github.com/optdev/iot-monsys/internal/pkg/application/forwarder"
	"github.com/optdev/iot-monsys/pkg/types"
)

func testService(devices *devicemanagement.DeviceManagementMock, store *ReadingStoreMock, disc *discovery.Controller, fwd *forwarder.ForwarderMock) SensorDataIngest {
	if disc == nil {
		disc = discovery.New()
	}
	if fwd.ForwardFunc == nil {
		fwd.ForwardFunc = func(ctx context.Context, reading types.Reading) error { return nil }
	}
	return New(store, devices, disc, fwd, false)
}

func knownDevice(deviceID string, status types.DeviceStatus) types.Device {
	return types.Device{
		DeviceID:   deviceID,
		Name:       "Temperature Sensor 1",
		Type:       types.SensorTypeTemperature,
		Status:     status,
		Thresholds: types.DefaultThresholds(),
	}
}

func TestIngestStoresReadingFromKnownDevice(t *testing.T) {
	is := is.New(t)

	device := knownDevice("dev-1", types.DeviceStatusInactive)

	devices := &devicemanagement.DeviceManagementMock{
		GetByDeviceIDFunc: func(ctx context.Context, deviceID string) (types.Device, error) {
			return device, nil
		},
		RecordObservationFunc: func(ctx context.Context, d types.Device, timestamp time.Time) error {
			return nil
		},
	}
	store := &ReadingStoreMock{
		AddFunc: func(ctx context.Context, reading types.Reading) error { return nil },
	}
	fwd := &forwarder.ForwarderMock{}

	svc := testService(devices, store, nil, fwd)

	payload := []byte(`{"deviceId":"dev-1","type":"temperature","value":22.5,"timestamp":"2025-03-01T10:00:00.000Z"}`)
	err := svc.Ingest(context.Background(), payload)
	is.NoErr(err)

	is.Equal(len(store.AddCalls()), 1)
	is.Equal(store.AddCalls()[0].Reading.DeviceID, "dev-1")
	is.Equal(store.AddCalls()[0].Reading.Value, 22.5)

	is.Equal(len(devices.RecordObservationCalls()), 1)
	is.Equal(devices.RecordObservationCalls()[0].Timestamp.UTC(), time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC))
}

func TestIngestKeepsReadingWhenProvisioningRacesAnotherWriter(t *testing.T) {
	is := is.New(t)

	// the first lookup misses, the create collides with a concurrent
	// provisioner, the second lookup finds the device that writer created
	devices := &devicemanagement.DeviceManagementMock{
		GetByDeviceIDFunc: func(ctx context.Context, deviceID string) (types.Device, error) {
			return types.Device{}, devicemanagement.ErrDeviceNotFound
		},
		CreateFunc: func(ctx context.Context, device types.Device) error {
			return devicemanagement.ErrDeviceAlreadyExist
		},
		RecordObservationFunc: func(ctx context.Context, d types.Device, timestamp time.Time) error {
			return nil
		},
	}
	devices.GetByDeviceIDFunc = func(ctx context.Context, deviceID string) (types.Device, error) {
		if len(devices.GetByDeviceIDCalls()) > 1 {
			return knownDevice(deviceID, types.DeviceStatusPending), nil
		}
		return types.Device{}, devicemanagement.ErrDeviceNotFound
	}

	store := &ReadingStoreMock{
		AddFunc: func(ctx context.Context, reading types.Reading) error { return nil },
	}

	disc := discovery.New()
	disc.Set(context.Background(), true, time.Minute)

	svc := testService(devices, store, disc, &forwarder.ForwarderMock{})

	payload := []byte(`{"deviceId":"dev-9","type":"temperature","value":21,"timestamp":"2025-03-01T10:00:00.000Z"}`)
	err := svc.Ingest(context.Background(), payload)
	is.NoErr(err)

	is.Equal(len(devices.GetByDeviceIDCalls()), 2)
	is.Equal(len(store.AddCalls()), 1)
}

func TestIngestDropsUnknownDeviceWhenDiscoveryIsOff(t *testing.T) {
	is := is.New(t)

	devices := &devicemanagement.DeviceManagementMock{
		GetByDeviceIDFunc: func(ctx context.Context, deviceID string) (types.Device, error) {
			return types.Device{}, devicemanagement.ErrDeviceNotFound
		},
	}
	store := &ReadingStoreMock{
		AddFunc: func(ctx context.Context, reading types.Reading) error { return nil },
	}

	svc := testService(devices, store, nil, &forwarder.ForwarderMock{})

	payload := []byte(`{"deviceId":"dev-unknown","type":"temperature","value":20,"timestamp":"2025-03-01T10:00:00.000Z"}`)
	err := svc.Ingest(context.Background(), payload)

	is.True(errors.Is(err, ErrUnknownDevice))
	is.Equal(len(store.AddCalls()), 0)
}

func TestIngestProvisionsPendingDeviceWhenDiscoveryIsOn(t *testing.T) {
	is := is.New(t)

	var created types.Device

	devices := &devicemanagement.DeviceManagementMock{
		GetByDeviceIDFunc: func(ctx context.Context, deviceID string) (types.Device, error) {
			return types.Device{}, devicemanagement.ErrDeviceNotFound
		},
		CreateFunc: func(ctx context.Context, device types.Device) error {
			created = device
			return nil
		},
		RecordObservationFunc: func(ctx context.Context, d types.Device, timestamp time.Time) error {
			return nil
		},
	}
	store := &ReadingStoreMock{
		AddFunc: func(ctx context.Context, reading types.Reading) error { return nil },
	}

	disc := discovery.New()
	disc.Set(context.Background(), true, time.Minute)

	svc := testService(devices, store, disc, &forwarder.ForwarderMock{})

	payload := []byte(`{"deviceId":"dev-new","type":"humidity","value":55,"timestamp":"2025-03-01T10:00:00.000Z"}`)
	err := svc.Ingest(context.Background(), payload)
	is.NoErr(err)

	is.Equal(len(devices.CreateCalls()), 1)
	is.Equal(created.DeviceID, "dev-new")
	is.Equal(created.Status, types.DeviceStatusPending)
	is.Equal(created.Name, "New Humidity Device")

	is.Equal(len(store.AddCalls()), 1)
}

func TestIngestDropsReadingFromBrokenDevice(t *testing.T) {
	is := is.New(t)

	devices := &devicemanagement.DeviceManagementMock{
		GetByDeviceIDFunc: func(ctx context.Context, deviceID string) (types.Device, error) {
			return knownDevice(deviceID, types.DeviceStatusBroken), nil
		},
	}
	store := &ReadingStoreMock{
		AddFunc: func(ctx context.Context, reading types.Reading) error { return nil },
	}

	svc := testService(devices, store, nil, &forwarder.ForwarderMock{})

	payload := []byte(`{"deviceId":"dev-9","type":"temperature","value":21,"timestamp":"2025-03-01T10:00:00.000Z"}`)
	err := svc.Ingest(context.Background(), payload)

	is.True(errors.Is(err, ErrDeviceBroken))
	is.Equal(len(store.AddCalls()), 0)
}

func TestIngestRejectsInvalidPayloadWithoutPersisting(t *testing.T) {
	is := is.New(t)

	devices := &devicemanagement.DeviceManagementMock{}
	store := &ReadingStoreMock{}

	svc := testService(devices, store, nil, &forwarder.ForwarderMock{})

	payload := []byte(`{"type":"temperature","value":21,"timestamp":"2025-03-01T10:00:00.000Z"}`)
	err := svc.Ingest(context.Background(), payload)

	is.True(errors.Is(err, ErrInvalidPayload))
	is.True(strings.Contains(err.Error(), "deviceId"))
	is.Equal(len(store.AddCalls()), 0)
	is.Equal(len(devices.GetByDeviceIDCalls()), 0)
}

func TestIngestRejectsMalformedJson(t *testing.T) {
	is := is.New(t)

	svc := testService(&devicemanagement.DeviceManagementMock{}, &ReadingStoreMock{}, nil, &forwarder.ForwarderMock{})

	err := svc.Ingest(context.Background(), []byte(`this is not json`))
	is.True(errors.Is(err, ErrInvalidPayload))
}

func TestIngestPropagatesStoreErrors(t *testing.T) {
	is := is.New(t)

	devices := &devicemanagement.DeviceManagementMock{
		GetByDeviceIDFunc: func(ctx context.Context, deviceID string) (types.Device, error) {
			return knownDevice(deviceID, types.DeviceStatusActive), nil
		},
	}
	store := &ReadingStoreMock{
		AddFunc: func(ctx context.Context, reading types.Reading) error {
			return errors.New("connection refused")
		},
	}

	svc := testService(devices, store, nil, &forwarder.ForwarderMock{})

	payload := []byte(`{"deviceId":"dev-1","type":"temperature","value":21,"timestamp":"2025-03-01T10:00:00.000Z"}`)
	err := svc.Ingest(context.Background(), payload)

	is.True(err != nil)
	is.True(strings.Contains(err.Error(), "connection refused"))
}

func TestIngestForwardsAcceptedReadings(t *testing.T) {
	is := is.New(t)

	devices := &devicemanagement.DeviceManagementMock{
		GetByDeviceIDFunc: func(ctx context.Context, deviceID string) (types.Device, error) {
			return knownDevice(deviceID, types.DeviceStatusActive), nil
		},
		RecordObservationFunc: func(ctx context.Context, d types.Device, timestamp time.Time) error {
			return nil
		},
	}
	store := &ReadingStoreMock{
		AddFunc: func(ctx context.Context, reading types.Reading) error { return nil },
	}

	forwarded := make(chan types.Reading, 1)
	fwd := &forwarder.ForwarderMock{
		ForwardFunc: func(ctx context.Context, reading types.Reading) error {
			forwarded <- reading
			return nil
		},
	}

	svc := testService(devices, store, nil, fwd)

	payload := []byte(`{"deviceId":"dev-1","type":"temperature","value":22.5,"timestamp":"2025-03-01T10:00:00.000Z"}`)
	err := svc.Ingest(context.Background(), payload)
	is.NoErr(err)

	select {
	case reading := <-forwarded:
		is.Equal(reading.DeviceID, "dev-1")
	case <-time.After(time.Second):
		t.Fatal("reading was never forwarded")
	}
}

func TestIngestSucceedsEvenIfForwardingFails(t *testing.T) {
	is := is.New(t)

	devices := &devicemanagement.DeviceManagementMock{
		GetByDeviceIDFunc: func(ctx context.Context, deviceID string) (types.Device, error) {
			return knownDevice(deviceID, types.DeviceStatusActive), nil
		},
		RecordObservationFunc: func(ctx context.Context, d types.Device, timestamp time.Time) error {
			return nil
		},
	}
	store := &ReadingStoreMock{
		AddFunc: func(ctx context.Context, reading types.Reading) error { return nil },
	}

	delivered := make(chan struct{}, 1)
	fwd := &forwarder.ForwarderMock{
		ForwardFunc: func(ctx context.Context, reading types.Reading) error {
			delivered <- struct{}{}
			return errors.New("stream unavailable")
		},
	}

	svc := testService(devices, store, nil, fwd)

	payload := []byte(`{"deviceId":"dev-1","type":"temperature","value":22.5,"timestamp":"2025-03-01T10:00:00.000Z"}`)
	err := svc.Ingest(context.Background(), payload)
	is.NoErr(err)

	select {
	case <-delivered:
	case <-time.After(time.Second):
		t.Fatal("forwarder was never invoked")
	}
}
