package devicemanagement

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/diwise/messaging-golang/pkg/messaging"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
	"github.com/optdev/iot-monsys/internal/pkg/infrastructure/storage"
	"github.com/optdev/iot-monsys/pkg/types"
)

var ErrDeviceNotFound = fmt.Errorf("device not found")
var ErrDeviceAlreadyExist = fmt.Errorf("device already exists")

//go:generate moq -rm -out devicemanagement_mock.go . DeviceManagement
type DeviceManagement interface {
	GetByDeviceID(ctx context.Context, deviceID string) (types.Device, error)
	Query(ctx context.Context, params map[string][]string) (types.Collection[types.Device], error)

	Create(ctx context.Context, device types.Device) error
	Update(ctx context.Context, deviceID string, fields map[string]any) error

	// RecordObservation updates registry metadata after a reading was
	// accepted: lastDataReceived, the data points counter and, for inactive
	// devices only, the transition back to active.
	RecordObservation(ctx context.Context, device types.Device, timestamp time.Time) error

	// MarkNotObserved transitions a silent active device to inactive.
	MarkNotObserved(ctx context.Context, deviceID string) error

	QueryStale(ctx context.Context, before time.Time) (types.Collection[types.Device], error)
}

//go:generate moq -rm -out devicerepository_mock.go . DeviceRepository
type DeviceRepository interface {
	Get(ctx context.Context, conditions ...storage.ConditionFunc) (types.Device, error)
	Query(ctx context.Context, conditions ...storage.ConditionFunc) (types.Collection[types.Device], error)
	Add(ctx context.Context, device types.Device) error
	Update(ctx context.Context, device types.Device) error
	SetStatus(ctx context.Context, deviceID string, status types.DeviceStatus) error
	MarkDataReceived(ctx context.Context, deviceID string, timestamp time.Time) error
}

type deviceRepositoryImpl struct {
	s *storage.Storage
}

func (d deviceRepositoryImpl) Get(ctx context.Context, conditions ...storage.ConditionFunc) (types.Device, error) {
	return d.s.GetDevice(ctx, conditions...)
}
func (d deviceRepositoryImpl) Query(ctx context.Context, conditions ...storage.ConditionFunc) (types.Collection[types.Device], error) {
	return d.s.QueryDevices(ctx, conditions...)
}
func (d deviceRepositoryImpl) Add(ctx context.Context, device types.Device) error {
	return d.s.AddDevice(ctx, device)
}
func (d deviceRepositoryImpl) Update(ctx context.Context, device types.Device) error {
	return d.s.UpdateDevice(ctx, device)
}
func (d deviceRepositoryImpl) SetStatus(ctx context.Context, deviceID string, status types.DeviceStatus) error {
	return d.s.SetDeviceStatus(ctx, deviceID, status)
}
func (d deviceRepositoryImpl) MarkDataReceived(ctx context.Context, deviceID string, timestamp time.Time) error {
	return d.s.MarkDataReceived(ctx, deviceID, timestamp)
}

func NewDeviceRepository(s *storage.Storage) DeviceRepository {
	return &deviceRepositoryImpl{s: s}
}

type service struct {
	storage   DeviceRepository
	messenger messaging.MsgContext
}

func New(storage DeviceRepository, messenger messaging.MsgContext) DeviceManagement {
	return service{
		storage:   storage,
		messenger: messenger,
	}
}

func (s service) GetByDeviceID(ctx context.Context, deviceID string) (types.Device, error) {
	device, err := s.storage.Get(ctx, storage.WithDeviceID(deviceID))
	if err != nil {
		if errors.Is(err, storage.ErrNoRows) {
			return types.Device{}, ErrDeviceNotFound
		}
		return types.Device{}, err
	}

	return device, nil
}

func (s service) Query(ctx context.Context, params map[string][]string) (types.Collection[types.Device], error) {
	conditions := make([]storage.ConditionFunc, 0)

	for k, v := range params {
		switch strings.ToLower(k) {
		case "device_id":
			conditions = append(conditions, storage.WithDeviceID(v[0]))
		case "status":
			statuses := make([]types.DeviceStatus, 0, len(v))
			for _, status := range v {
				statuses = append(statuses, types.DeviceStatus(status))
			}
			conditions = append(conditions, storage.WithStatus(statuses...))
		case "type":
			conditions = append(conditions, storage.WithTypes(v))
		case "search":
			conditions = append(conditions, storage.WithSearch(v[0]))
		case "limit":
			limit, _ := strconv.Atoi(v[0])
			conditions = append(conditions, storage.WithLimit(limit))
		case "offset":
			offset, _ := strconv.Atoi(v[0])
			conditions = append(conditions, storage.WithOffset(offset))
		case "sortby":
			conditions = append(conditions, storage.WithSortBy(v[0]))
		case "sortorder":
			conditions = append(conditions, storage.WithSortDesc(strings.EqualFold(v[0], "desc")))
		}
	}

	return s.storage.Query(ctx, conditions...)
}

func (s service) Create(ctx context.Context, device types.Device) error {
	if device.DeviceID == "" {
		return fmt.Errorf("no deviceId is set on device")
	}

	_, err := s.storage.Get(ctx, storage.WithDeviceID(device.DeviceID))
	if err == nil {
		return ErrDeviceAlreadyExist
	}
	if !errors.Is(err, storage.ErrNoRows) {
		return err
	}

	if !device.Status.IsValid() {
		device.Status = types.DeviceStatusInactive
	}
	if device.Thresholds == nil {
		device.Thresholds = types.DefaultThresholds()
	}

	err = s.storage.Add(ctx, device)
	if err != nil {
		// a concurrent writer may have created the device after our
		// existence check
		if errors.Is(err, storage.ErrAlreadyExist) {
			return ErrDeviceAlreadyExist
		}
		return err
	}

	if device.Status == types.DeviceStatusPending {
		err = s.messenger.PublishOnTopic(ctx, &types.DeviceDiscovered{
			Device:    device,
			Timestamp: time.Now().UTC(),
		})
		if err != nil {
			logging.GetFromContext(ctx).Error("could not publish discovered device", "device_id", device.DeviceID, "err", err.Error())
		}
	}

	return nil
}

func (s service) Update(ctx context.Context, deviceID string, fields map[string]any) error {
	log := logging.GetFromContext(ctx)

	device, err := s.GetByDeviceID(ctx, deviceID)
	if err != nil {
		return err
	}

	asString := func(name string, v any) (string, error) {
		s, ok := v.(string)
		if !ok {
			return "", fmt.Errorf("field %q must be a string", name)
		}
		return s, nil
	}

	for k, v := range fields {
		switch k {
		case "deviceId":
			continue
		case "name":
			if device.Name, err = asString(k, v); err != nil {
				return err
			}
		case "type":
			if device.Type, err = asString(k, v); err != nil {
				return err
			}
		case "location":
			if device.Location, err = asString(k, v); err != nil {
				return err
			}
		case "brandName":
			if device.BrandName, err = asString(k, v); err != nil {
				return err
			}
		case "model":
			if device.Model, err = asString(k, v); err != nil {
				return err
			}
		case "status":
			status, _ := v.(string)
			if !types.DeviceStatus(status).IsValid() {
				return fmt.Errorf("invalid device status %q", status)
			}
			device.Status = types.DeviceStatus(status)
		case "thresholds":
			thresholds, err := thresholdsFromField(v)
			if err != nil {
				return err
			}
			device.Thresholds = thresholds
		default:
			log.Debug("field not mapped for update", "device_id", deviceID, "name", k)
		}
	}

	return s.storage.Update(ctx, device)
}

// RecordObservation is invoked by the ingestion path for every accepted
// reading. Operator-set states (pending, broken, maintenance) are never
// overridden here.
func (s service) RecordObservation(ctx context.Context, device types.Device, timestamp time.Time) error {
	err := s.storage.MarkDataReceived(ctx, device.DeviceID, timestamp)
	if err != nil {
		return err
	}

	if device.Status != types.DeviceStatusInactive {
		return nil
	}

	err = s.storage.SetStatus(ctx, device.DeviceID, types.DeviceStatusActive)
	if err != nil {
		return err
	}

	s.publishStatusChange(ctx, device.DeviceID, types.DeviceStatusActive)

	return nil
}

func (s service) MarkNotObserved(ctx context.Context, deviceID string) error {
	err := s.storage.SetStatus(ctx, deviceID, types.DeviceStatusInactive)
	if err != nil {
		return err
	}

	s.publishStatusChange(ctx, deviceID, types.DeviceStatusInactive)

	return nil
}

func (s service) QueryStale(ctx context.Context, before time.Time) (types.Collection[types.Device], error) {
	return s.storage.Query(ctx,
		storage.WithStatus(types.DeviceStatusActive),
		storage.WithSeenBefore(before),
	)
}

func (s service) publishStatusChange(ctx context.Context, deviceID string, status types.DeviceStatus) {
	err := s.messenger.PublishOnTopic(ctx, &types.DeviceStatusChanged{
		DeviceID:  deviceID,
		Status:    status,
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		logging.GetFromContext(ctx).Error("could not publish device status change", "device_id", deviceID, "err", err.Error())
	}
}

func thresholdsFromField(v any) (map[string]types.Threshold, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("thresholds must be an object")
	}

	thresholds := map[string]types.Threshold{}

	for sensorType, bounds := range m {
		b, ok := bounds.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("threshold for %q must be an object", sensorType)
		}

		min, _ := b["min"].(float64)
		max, _ := b["max"].(float64)

		thresholds[sensorType] = types.Threshold{Min: min, Max: max}
	}

	return thresholds, nil
}
