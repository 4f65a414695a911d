package storage

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
	"github.com/optdev/iot-monsys/pkg/types"
)

// SeedDevices provisions the initial device fleet from a CSV file with the
// columns deviceId;name;type;location;brandName;model;status. Existing
// devices are updated in place, readings are never touched.
func SeedDevices(ctx context.Context, s *Storage, reader io.ReadCloser) error {
	defer reader.Close()

	r := csv.NewReader(reader)
	r.Comma = ';'

	rows, err := r.ReadAll()
	if err != nil {
		return err
	}

	log := logging.GetFromContext(ctx)

	devices, err := devicesFromRows(rows)
	if err != nil {
		return err
	}

	log.Info("loaded devices from file", "count", len(devices))

	for _, device := range devices {
		_, err := s.GetDevice(ctx, WithDeviceID(device.DeviceID))
		if err != nil {
			if !errors.Is(err, ErrNoRows) {
				return err
			}

			err = s.AddDevice(ctx, device)
			if err != nil {
				log.Error("could not seed new device", "device_id", device.DeviceID, "err", err.Error())
				continue
			}

			log.Debug("seeded new device", "device_id", device.DeviceID)
			continue
		}

		err = s.UpdateDevice(ctx, device)
		if err != nil {
			log.Error("could not update seeded device", "device_id", device.DeviceID, "err", err.Error())
			continue
		}

		log.Debug("updated existing device", "device_id", device.DeviceID)
	}

	return nil
}

func devicesFromRows(rows [][]string) ([]types.Device, error) {
	const columnCount = 7

	devices := make([]types.Device, 0, len(rows))

	for i, row := range rows {
		if i == 0 {
			// header
			continue
		}

		if len(row) != columnCount {
			return nil, fmt.Errorf("row %d contains %d columns, expected %d", i, len(row), columnCount)
		}

		status := types.DeviceStatus(row[6])
		if !status.IsValid() {
			return nil, fmt.Errorf("row %d contains invalid device status %q", i, row[6])
		}

		devices = append(devices, types.Device{
			DeviceID:   row[0],
			Name:       row[1],
			Type:       row[2],
			Location:   row[3],
			BrandName:  row[4],
			Model:      row[5],
			Status:     status,
			Thresholds: types.DefaultThresholds(),
		})
	}

	return devices, nil
}
