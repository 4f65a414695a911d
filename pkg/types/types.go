package types

import (
	"fmt"
	"strings"
	"time"
)

// DeviceStatus is the operator-visible lifecycle state of a device.
// Pending devices were auto-discovered and await approval. Broken and
// maintenance are operator-set and are never changed by the ingestion path.
type DeviceStatus string

const (
	DeviceStatusPending     DeviceStatus = "pending"
	DeviceStatusActive      DeviceStatus = "active"
	DeviceStatusInactive    DeviceStatus = "inactive"
	DeviceStatusBroken      DeviceStatus = "broken"
	DeviceStatusMaintenance DeviceStatus = "maintenance"
)

func (s DeviceStatus) IsValid() bool {
	switch s {
	case DeviceStatusPending, DeviceStatusActive, DeviceStatusInactive, DeviceStatusBroken, DeviceStatusMaintenance:
		return true
	}
	return false
}

const (
	SensorTypeTemperature = "temperature"
	SensorTypeHumidity    = "humidity"
	SensorTypeLight       = "light"
	SensorTypePressure    = "pressure"
	SensorTypeSound       = "sound"
	SensorTypeVibration   = "vibration"
	SensorTypeOpening     = "opening"
	SensorTypeAirQuality  = "air_quality"
	SensorTypeBattery     = "battery"
)

// SensorTypes is the closed enumeration of reading types. Membership is only
// enforced at ingestion when strict validation is configured.
var SensorTypes = []string{
	SensorTypeTemperature,
	SensorTypeHumidity,
	SensorTypeLight,
	SensorTypePressure,
	SensorTypeSound,
	SensorTypeVibration,
	SensorTypeOpening,
	SensorTypeAirQuality,
	SensorTypeBattery,
}

func IsSensorType(t string) bool {
	for _, s := range SensorTypes {
		if s == t {
			return true
		}
	}
	return false
}

type Device struct {
	DeviceID  string `json:"deviceId"`
	Name      string `json:"name"`
	Type      string `json:"type"`
	Location  string `json:"location,omitempty"`
	BrandName string `json:"brandName,omitempty"`
	Model     string `json:"model,omitempty"`

	Status DeviceStatus `json:"status"`

	Thresholds map[string]Threshold `json:"thresholds,omitempty"`

	LastDataReceived *time.Time `json:"lastDataReceived,omitempty"`
	DataPointsCount  int64      `json:"dataPointsCount"`

	CreatedOn  time.Time `json:"createdOn,omitempty"`
	ModifiedOn time.Time `json:"modifiedOn,omitempty"`
}

type Threshold struct {
	Min float64 `json:"min" yaml:"min"`
	Max float64 `json:"max" yaml:"max"`
}

// DefaultThresholds returns the per-type alerting bounds a device gets when
// none were provisioned explicitly.
func DefaultThresholds() map[string]Threshold {
	return map[string]Threshold{
		SensorTypeTemperature: {Min: -30, Max: 50},
		SensorTypeHumidity:    {Min: 0, Max: 100},
		SensorTypeLight:       {Min: 0, Max: 10000},
		SensorTypePressure:    {Min: 970, Max: 1040},
		SensorTypeSound:       {Min: 0, Max: 80},
		SensorTypeVibration:   {Min: 0, Max: 2},
		SensorTypeOpening:     {Min: 0, Max: 1},
		SensorTypeAirQuality:  {Min: 0, Max: 200},
	}
}

// NewPendingDevice creates the registry entry for a device first seen on the
// ingestion socket while discovery mode is active.
func NewPendingDevice(deviceID, sensorType string, observedAt time.Time) Device {
	name := fmt.Sprintf("New %s Device", capitalize(sensorType))

	return Device{
		DeviceID:         deviceID,
		Name:             name,
		Type:             sensorType,
		Status:           DeviceStatusPending,
		Thresholds:       DefaultThresholds(),
		LastDataReceived: &observedAt,
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// Reading is a single sensor observation. Readings are append-only and are
// never updated or deleted once accepted.
type Reading struct {
	DeviceID       string    `json:"deviceId"`
	Type           string    `json:"type"`
	Value          float64   `json:"value"`
	Timestamp      time.Time `json:"timestamp"`
	BatteryLevel   *float64  `json:"batteryLevel,omitempty"`
	IsAnomaly      *bool     `json:"isAnomaly,omitempty"`
	AnomalyDetails string    `json:"anomalyDetails,omitempty"`
	ReceivedAt     time.Time `json:"receivedAt"`
}

// DiscoveryState mirrors the process-wide discovery mode over the API.
type DiscoveryState struct {
	Enabled  bool  `json:"enabled"`
	Duration int64 `json:"duration,omitempty"`
}

type Collection[T any] struct {
	Data       []T    `json:"data"`
	Count      uint64 `json:"count"`
	Offset     uint64 `json:"offset"`
	Limit      uint64 `json:"limit"`
	TotalCount uint64 `json:"totalCount"`
}
