package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"

	"github.com/optdev/iot-monsys/internal/pkg/application/devicemanagement"
	"github.com/optdev/iot-monsys/internal/pkg/application/discovery"
	"github.com/optdev/iot-monsys/internal/pkg/application/forwarder"
	"github.com/optdev/iot-monsys/internal/pkg/infrastructure/storage"
	"github.com/optdev/iot-monsys/pkg/types"
)

var (
	ErrInvalidPayload = errors.New("invalid payload")
	ErrUnknownDevice  = errors.New("unknown device")
	ErrDeviceBroken   = errors.New("device is broken")
)

//go:generate moq -rm -out readingstore_mock.go . ReadingStore

// ReadingStore persists time series readings. Readings are append only and
// are never updated after being stored.
type ReadingStore interface {
	Add(ctx context.Context, reading types.Reading) error
	Query(ctx context.Context, conditions ...storage.ConditionFunc) (types.Collection[types.Reading], error)
}

type SensorDataIngest interface {
	Ingest(ctx context.Context, payload []byte) error
}

type service struct {
	readings  ReadingStore
	devices   devicemanagement.DeviceManagement
	discovery *discovery.Controller
	forwarder forwarder.Forwarder
	strict    bool
	now       func() time.Time
}

func New(readings ReadingStore, devices devicemanagement.DeviceManagement, disc *discovery.Controller, fwd forwarder.Forwarder, strict bool) SensorDataIngest {
	return &service{
		readings:  readings,
		devices:   devices,
		discovery: disc,
		forwarder: fwd,
		strict:    strict,
		now:       time.Now,
	}
}

// Ingest runs a single sensor payload through decode, validation, device
// resolution and persistence. Forwarding to the downstream stream happens
// asynchronously and never affects the outcome.
func (s *service) Ingest(ctx context.Context, payload []byte) error {
	log := logging.GetFromContext(ctx)

	data := map[string]any{}
	if err := json.Unmarshal(payload, &data); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidPayload, err.Error())
	}

	if verdict := ValidateReading(data, s.strict); !verdict.IsValid {
		return fmt.Errorf("%w: %s", ErrInvalidPayload, verdict.Error())
	}

	reading := readingFromData(data, s.now().UTC())

	device, err := s.devices.GetByDeviceID(ctx, reading.DeviceID)
	if err != nil {
		if !errors.Is(err, devicemanagement.ErrDeviceNotFound) {
			return fmt.Errorf("could not resolve device %s: %w", reading.DeviceID, err)
		}

		if !s.discovery.Get().Enabled {
			return fmt.Errorf("%w: %s", ErrUnknownDevice, reading.DeviceID)
		}

		device = types.NewPendingDevice(reading.DeviceID, reading.Type, reading.Timestamp)
		if err := s.devices.Create(ctx, device); err != nil {
			if !errors.Is(err, devicemanagement.ErrDeviceAlreadyExist) {
				return fmt.Errorf("could not provision device %s: %w", reading.DeviceID, err)
			}
			// concurrent discovery of the same device, the other writer won
			device, err = s.devices.GetByDeviceID(ctx, reading.DeviceID)
			if err != nil {
				return fmt.Errorf("could not resolve device %s: %w", reading.DeviceID, err)
			}
		} else {
			log.Info("discovered new device", "device_id", device.DeviceID, "type", device.Type)
		}
	}

	if device.Status == types.DeviceStatusBroken {
		return fmt.Errorf("%w: dropping reading from %s", ErrDeviceBroken, device.DeviceID)
	}

	if err := s.readings.Add(ctx, reading); err != nil {
		return fmt.Errorf("could not store reading from %s: %w", reading.DeviceID, err)
	}

	if err := s.devices.RecordObservation(ctx, device, reading.Timestamp); err != nil {
		log.Error("could not record observation", "device_id", device.DeviceID, "err", err.Error())
	}

	go func() {
		if err := s.forwarder.Forward(context.WithoutCancel(ctx), reading); err != nil {
			log.Warn("stream forwarding failed", "device_id", reading.DeviceID, "err", err.Error())
		}
	}()

	return nil
}

type readingStoreImpl struct {
	storage *storage.Storage
}

func NewReadingStore(s *storage.Storage) ReadingStore {
	return &readingStoreImpl{storage: s}
}

func (r *readingStoreImpl) Add(ctx context.Context, reading types.Reading) error {
	return r.storage.AddReading(ctx, reading)
}

func (r *readingStoreImpl) Query(ctx context.Context, conditions ...storage.ConditionFunc) (types.Collection[types.Reading], error) {
	return r.storage.QueryReadings(ctx, conditions...)
}
