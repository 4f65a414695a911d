package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/optdev/iot-monsys/pkg/types"
)

func deviceData(device types.Device) string {
	b, _ := json.Marshal(device)

	var m map[string]any
	json.Unmarshal(b, &m)

	delete(m, "deviceId")
	delete(m, "status")
	delete(m, "lastDataReceived")
	delete(m, "dataPointsCount")
	delete(m, "createdOn")
	delete(m, "modifiedOn")

	b, _ = json.Marshal(m)

	return string(b)
}

func (s *Storage) AddDevice(ctx context.Context, device types.Device) error {
	if device.DeviceID == "" {
		return ErrNoID
	}

	args := pgx.NamedArgs{
		"device_id":          device.DeviceID,
		"data":               deviceData(device),
		"status":             string(device.Status),
		"last_data_received": device.LastDataReceived,
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO devices (device_id, data, status, last_data_received)
		VALUES (@device_id, @data, @status, @last_data_received)
	`, args)
	if err != nil {
		var pgErr *pgconn.PgError
		// 23505 = unique_violation
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrAlreadyExist
		}
		return fmt.Errorf("%w: %s", ErrStoreFailed, err.Error())
	}

	return nil
}

func (s *Storage) UpdateDevice(ctx context.Context, device types.Device) error {
	args := pgx.NamedArgs{
		"device_id": device.DeviceID,
		"data":      deviceData(device),
		"status":    string(device.Status),
	}

	_, err := s.pool.Exec(ctx, `
		UPDATE devices
		SET data = @data, status = @status, modified_on = CURRENT_TIMESTAMP
		WHERE device_id = @device_id
	`, args)
	if err != nil {
		return err
	}

	return nil
}

func (s *Storage) GetDevice(ctx context.Context, conditions ...ConditionFunc) (types.Device, error) {
	condition := &Condition{}
	for _, f := range conditions {
		f(condition)
	}

	query := fmt.Sprintf(`
		SELECT device_id, data, status, last_data_received, data_points_count, created_on, modified_on
		FROM devices
		WHERE %s
	`, condition.Where())

	row := s.pool.QueryRow(ctx, query, condition.NamedArgs())

	device, err := scanDevice(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return types.Device{}, ErrNoRows
		}
		return types.Device{}, err
	}

	return device, nil
}

func (s *Storage) QueryDevices(ctx context.Context, conditions ...ConditionFunc) (types.Collection[types.Device], error) {
	condition := &Condition{}
	for _, f := range conditions {
		f(condition)
	}

	query := fmt.Sprintf(`
		SELECT device_id, data, status, last_data_received, data_points_count, created_on, modified_on, count(*) OVER () AS count
		FROM devices
		WHERE %s
		ORDER BY %s %s
		OFFSET @offset LIMIT @limit
	`, condition.Where(), condition.SortBy(), condition.SortOrder())

	args := condition.NamedArgs()
	args["offset"] = condition.Offset()
	args["limit"] = condition.Limit()

	rows, err := s.pool.Query(ctx, query, args)
	if err != nil {
		return types.Collection[types.Device]{}, err
	}
	defer rows.Close()

	devices := make([]types.Device, 0)
	var total int64

	for rows.Next() {
		var deviceID, status string
		var data json.RawMessage
		var lastDataReceived *time.Time
		var dataPointsCount int64
		var createdOn, modifiedOn time.Time

		err := rows.Scan(&deviceID, &data, &status, &lastDataReceived, &dataPointsCount, &createdOn, &modifiedOn, &total)
		if err != nil {
			return types.Collection[types.Device]{}, err
		}

		device, err := assembleDevice(deviceID, data, status, lastDataReceived, dataPointsCount, createdOn, modifiedOn)
		if err != nil {
			return types.Collection[types.Device]{}, err
		}

		devices = append(devices, device)
	}

	return types.Collection[types.Device]{
		Data:       devices,
		Count:      uint64(len(devices)),
		Offset:     uint64(condition.Offset()),
		Limit:      uint64(condition.Limit()),
		TotalCount: uint64(total),
	}, nil
}

func (s *Storage) SetDeviceStatus(ctx context.Context, deviceID string, status types.DeviceStatus) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE devices
		SET status = @status, modified_on = CURRENT_TIMESTAMP
		WHERE device_id = @device_id
	`, pgx.NamedArgs{
		"device_id": deviceID,
		"status":    string(status),
	})
	if err != nil {
		return err
	}

	return nil
}

// MarkDataReceived records that a reading was accepted for the device. The
// data points counter increments monotonically.
func (s *Storage) MarkDataReceived(ctx context.Context, deviceID string, timestamp time.Time) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE devices
		SET last_data_received = @last_data_received,
			data_points_count = data_points_count + 1,
			modified_on = CURRENT_TIMESTAMP
		WHERE device_id = @device_id
	`, pgx.NamedArgs{
		"device_id":          deviceID,
		"last_data_received": timestamp,
	})
	if err != nil {
		return err
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDevice(row rowScanner) (types.Device, error) {
	var deviceID, status string
	var data json.RawMessage
	var lastDataReceived *time.Time
	var dataPointsCount int64
	var createdOn, modifiedOn time.Time

	err := row.Scan(&deviceID, &data, &status, &lastDataReceived, &dataPointsCount, &createdOn, &modifiedOn)
	if err != nil {
		return types.Device{}, err
	}

	return assembleDevice(deviceID, data, status, lastDataReceived, dataPointsCount, createdOn, modifiedOn)
}

func assembleDevice(deviceID string, data json.RawMessage, status string, lastDataReceived *time.Time, dataPointsCount int64, createdOn, modifiedOn time.Time) (types.Device, error) {
	var device types.Device

	err := json.Unmarshal(data, &device)
	if err != nil {
		return types.Device{}, err
	}

	device.DeviceID = deviceID
	device.Status = types.DeviceStatus(status)
	device.LastDataReceived = lastDataReceived
	device.DataPointsCount = dataPointsCount
	device.CreatedOn = createdOn
	device.ModifiedOn = modifiedOn

	return device, nil
}
