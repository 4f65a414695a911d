package ingest

import (
	"fmt"
	"strings"
	"time"

	"github.com/optdev/iot-monsys/pkg/types"
)

// Verdict is the outcome of validating a decoded candidate reading. Errors
// holds one entry per violated rule, in rule order.
type Verdict struct {
	IsValid bool
	Errors  []string
}

// Error aggregates every violation into a single operator readable string.
func (v Verdict) Error() string {
	if len(v.Errors) == 0 {
		return ""
	}
	return fmt.Sprintf("found %d error(s): %s", len(v.Errors), strings.Join(v.Errors, ", "))
}

// ValidateReading checks a decoded candidate reading against the schema
// contract. All rules are checked independently so the verdict lists every
// violation, not just the first. The function has no side effects and never
// panics on malformed input.
//
// Membership of 'type' in the sensor type enumeration is only enforced in
// strict mode; unrecognized types are otherwise tolerated so new device
// types can appear before the enumeration is updated.
func ValidateReading(data map[string]any, strict bool) Verdict {
	errs := []string{}

	deviceID, hasDeviceID := data["deviceId"]
	if !hasDeviceID || deviceID == nil {
		errs = append(errs, "'deviceId' field is missing")
	} else if _, ok := deviceID.(string); !ok {
		errs = append(errs, "incorrect format: 'deviceId' must be a string")
	}

	sensorType, hasType := data["type"]
	if !hasType || sensorType == nil {
		errs = append(errs, "'type' field is missing")
	} else if s, ok := sensorType.(string); !ok {
		errs = append(errs, "incorrect format: 'type' must be a string")
	} else if strict && !types.IsSensorType(s) {
		errs = append(errs, fmt.Sprintf("'type' value %q is not a known sensor type", s))
	}

	value, hasValue := data["value"]
	if !hasValue || value == nil {
		errs = append(errs, "'value' field is missing")
	} else if !isNumber(value) {
		errs = append(errs, "incorrect format: 'value' must be a number")
	}

	timestamp, hasTimestamp := data["timestamp"]
	if !hasTimestamp || timestamp == nil {
		errs = append(errs, "'timestamp' field is missing")
	} else if s, ok := timestamp.(string); !ok {
		errs = append(errs, "incorrect format: 'timestamp' must be a string")
	} else if _, err := time.Parse(time.RFC3339Nano, s); err != nil {
		errs = append(errs, "incorrect format: 'timestamp' must be a valid timestamp")
	}

	if batteryLevel, ok := data["batteryLevel"]; ok && batteryLevel != nil && !isNumber(batteryLevel) {
		errs = append(errs, "incorrect format: 'batteryLevel' must be a number")
	}

	if isAnomaly, ok := data["isAnomaly"]; ok && isAnomaly != nil {
		if _, ok := isAnomaly.(bool); !ok {
			errs = append(errs, "incorrect format: 'isAnomaly' must be a boolean")
		}
	}

	return Verdict{
		IsValid: len(errs) == 0,
		Errors:  errs,
	}
}

func isNumber(v any) bool {
	switch v.(type) {
	case float64, float32, int, int32, int64:
		return true
	}
	return false
}

// readingFromData converts a validated candidate into a Reading. It must
// only be called after ValidateReading returned a valid verdict.
func readingFromData(data map[string]any, receivedAt time.Time) types.Reading {
	timestamp, _ := time.Parse(time.RFC3339Nano, data["timestamp"].(string))

	r := types.Reading{
		DeviceID:   data["deviceId"].(string),
		Type:       data["type"].(string),
		Value:      asFloat(data["value"]),
		Timestamp:  timestamp,
		ReceivedAt: receivedAt,
	}

	if batteryLevel, ok := data["batteryLevel"]; ok && batteryLevel != nil {
		b := asFloat(batteryLevel)
		r.BatteryLevel = &b
	}

	if isAnomaly, ok := data["isAnomaly"].(bool); ok {
		r.IsAnomaly = &isAnomaly
	}

	if details, ok := data["anomalyDetails"].(string); ok {
		r.AnomalyDetails = details
	}

	return r
}

func asFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	}
	return 0
}
