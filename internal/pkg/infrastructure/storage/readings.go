package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/optdev/iot-monsys/pkg/types"
)

func (s *Storage) AddReading(ctx context.Context, reading types.Reading) error {
	args := pgx.NamedArgs{
		"time":            reading.Timestamp,
		"device_id":       reading.DeviceID,
		"type":            reading.Type,
		"value":           reading.Value,
		"battery_level":   reading.BatteryLevel,
		"is_anomaly":      reading.IsAnomaly,
		"anomaly_details": nilIfEmpty(reading.AnomalyDetails),
		"received_at":     reading.ReceivedAt,
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO readings (time, device_id, type, value, battery_level, is_anomaly, anomaly_details, received_at)
		VALUES (@time, @device_id, @type, @value, @battery_level, @is_anomaly, @anomaly_details, @received_at)
	`, args)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrStoreFailed, err.Error())
	}

	return nil
}

func (s *Storage) QueryReadings(ctx context.Context, conditions ...ConditionFunc) (types.Collection[types.Reading], error) {
	condition := &Condition{}
	for _, f := range conditions {
		f(condition)
	}

	query := fmt.Sprintf(`
		SELECT time, device_id, type, value, battery_level, is_anomaly, anomaly_details, received_at, count(*) OVER () AS count
		FROM readings
		WHERE %s
		ORDER BY time DESC
		OFFSET @offset LIMIT @limit
	`, condition.WhereReadings())

	args := condition.NamedArgs()
	args["offset"] = condition.Offset()
	args["limit"] = condition.Limit()

	rows, err := s.pool.Query(ctx, query, args)
	if err != nil {
		return types.Collection[types.Reading]{}, err
	}
	defer rows.Close()

	readings := make([]types.Reading, 0)
	var total int64

	for rows.Next() {
		var r types.Reading
		var timestamp, receivedAt time.Time
		var anomalyDetails *string

		err := rows.Scan(&timestamp, &r.DeviceID, &r.Type, &r.Value, &r.BatteryLevel, &r.IsAnomaly, &anomalyDetails, &receivedAt, &total)
		if err != nil {
			return types.Collection[types.Reading]{}, err
		}

		r.Timestamp = timestamp
		r.ReceivedAt = receivedAt
		if anomalyDetails != nil {
			r.AnomalyDetails = *anomalyDetails
		}

		readings = append(readings, r)
	}

	return types.Collection[types.Reading]{
		Data:       readings,
		Count:      uint64(len(readings)),
		Offset:     uint64(condition.Offset()),
		Limit:      uint64(condition.Limit()),
		TotalCount: uint64(total),
	}, nil
}

func nilIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
