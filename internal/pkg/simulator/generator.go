package simulator

import (
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/optdev/iot-monsys/pkg/types"
)

type simulatedDevice struct {
	DeviceID     string
	Type         string
	Location     string
	Status       string
	BatteryLevel float64
	LastValue    float64
	AnomalyMode  bool
}

var locations = []string{"Kitchen", "Guest Room", "Sleep Room", "Bathroom", "Cabinet"}

// Generator maintains a fleet of simulated sensor devices and produces one
// reading per device per generation round. Most of the fleet consists of the
// common sensor types, with a small tail of random ones.
type Generator struct {
	mu          sync.Mutex
	deviceCount int
	anomalyRate float64
	devices     []*simulatedDevice
	log         zerolog.Logger
}

func NewGenerator(deviceCount int, anomalyRate float64, log zerolog.Logger) *Generator {
	g := &Generator{
		deviceCount: deviceCount,
		anomalyRate: anomalyRate,
		log:         log,
	}
	g.devices = g.initializeDevices()
	log.Info().Msgf("initialized %d devices", deviceCount)
	return g
}

func (g *Generator) initializeDevices() []*simulatedDevice {
	devices := make([]*simulatedDevice, 0, g.deviceCount)

	for i := 0; i < g.deviceCount; i++ {
		var deviceType string
		switch {
		case float64(i) < float64(g.deviceCount)*0.4:
			deviceType = types.SensorTypeTemperature
		case float64(i) < float64(g.deviceCount)*0.7:
			deviceType = types.SensorTypeHumidity
		case float64(i) < float64(g.deviceCount)*0.9:
			deviceType = types.SensorTypeLight
		default:
			deviceType = types.SensorTypes[rand.Intn(len(types.SensorTypes))]
		}

		device := &simulatedDevice{
			DeviceID:     "dev-" + uuid.NewString()[:8],
			Type:         deviceType,
			Location:     locations[rand.Intn(len(locations))],
			Status:       "active",
			BatteryLevel: math.Floor(rand.Float64() * 100),
			LastValue:    initialValue(deviceType),
		}

		devices = append(devices, device)
		g.log.Debug().Str("device_id", device.DeviceID).Str("type", device.Type).Msg("created device")
	}

	return devices
}

func initialValue(sensorType string) float64 {
	switch sensorType {
	case types.SensorTypeTemperature:
		return 20 + rand.Float64()*5
	case types.SensorTypeHumidity:
		return 40 + rand.Float64()*20
	case types.SensorTypeLight:
		return 200 + rand.Float64()*300
	case types.SensorTypePressure:
		return 1000 + rand.Float64()*20
	case types.SensorTypeSound:
		return 30 + rand.Float64()*20
	case types.SensorTypeVibration:
		return rand.Float64()
	case types.SensorTypeOpening:
		if rand.Float64() > 0.8 {
			return 1
		}
		return 0
	case types.SensorTypeAirQuality:
		return 50 + rand.Float64()*100
	case types.SensorTypeBattery:
		return 50 + rand.Float64()*50
	}
	return rand.Float64() * 100
}

func anomalousValue(device *simulatedDevice) (float64, string) {
	switch device.Type {
	case types.SensorTypeTemperature:
		value := 40 + rand.Float64()*20
		if rand.Float64() > 0.5 {
			value = -10 + rand.Float64()*10
		}
		if value < 0 {
			return value, "Temperature critically low"
		}
		return value, "Temperature critically high"
	case types.SensorTypeHumidity:
		value := 90 + rand.Float64()*15
		if rand.Float64() > 0.5 {
			value = rand.Float64() * 10
		}
		if value < 10 {
			return value, "Humidity critically low"
		}
		return value, "Humidity critically high"
	case types.SensorTypeLight:
		if rand.Float64() > 0.7 {
			return 5000 + rand.Float64()*5000, "Too bright lighting"
		}
		return 0, "No lighting"
	case types.SensorTypePressure:
		if rand.Float64() > 0.5 {
			return 950 + rand.Float64()*10, "Abnormally low pressure"
		}
		return 1050 + rand.Float64()*10, "Abnormally high pressure"
	case types.SensorTypeSound:
		return 80 + rand.Float64()*40, "High noise level"
	case types.SensorTypeVibration:
		return 5 + rand.Float64()*5, "High vibration level"
	case types.SensorTypeOpening:
		// binary sensors misbehave by flapping
		if device.LastValue == 1 {
			return 0, "Frequent change of state"
		}
		return 1, "Frequent change of state"
	case types.SensorTypeAirQuality:
		return 200 + rand.Float64()*300, "Low quality of air"
	case types.SensorTypeBattery:
		return rand.Float64() * 10, "Critical low battery charge"
	}
	return rand.Float64() * 1000, "Anomaly value"
}

func deviation(sensorType string) float64 {
	switch sensorType {
	case types.SensorTypeTemperature:
		return 0.5
	case types.SensorTypeHumidity:
		return 2
	case types.SensorTypeLight:
		return 50
	case types.SensorTypePressure:
		return 1
	case types.SensorTypeSound:
		return 3
	case types.SensorTypeVibration:
		return 0.1
	case types.SensorTypeOpening:
		return 0
	case types.SensorTypeAirQuality:
		return 10
	case types.SensorTypeBattery:
		return 0.5
	}
	return 5
}

func normalize(sensorType string, value float64) float64 {
	clamp := func(lo, hi float64) float64 {
		return math.Max(lo, math.Min(hi, value))
	}

	switch sensorType {
	case types.SensorTypeTemperature:
		return clamp(-10, 40)
	case types.SensorTypeHumidity:
		return clamp(0, 100)
	case types.SensorTypeLight:
		return clamp(0, 2000)
	case types.SensorTypePressure:
		return clamp(970, 1040)
	case types.SensorTypeSound:
		return clamp(0, 80)
	case types.SensorTypeVibration:
		return clamp(0, 2)
	case types.SensorTypeOpening:
		if value > 0.5 {
			return 1
		}
		return 0
	case types.SensorTypeAirQuality:
		return clamp(0, 200)
	case types.SensorTypeBattery:
		return clamp(0, 100)
	}
	return value
}

func (g *Generator) updateValue(device *simulatedDevice) types.Reading {
	var isAnomaly bool
	var anomalyDetails string
	var newValue float64

	if device.AnomalyMode || rand.Float64()*100 < g.anomalyRate {
		isAnomaly = true
		newValue, anomalyDetails = anomalousValue(device)
		g.log.Debug().Str("device_id", device.DeviceID).Str("details", anomalyDetails).Msg("generated anomaly")
	} else {
		newValue = device.LastValue + (rand.Float64()*2-1)*deviation(device.Type)
		newValue = normalize(device.Type, newValue)
	}

	device.BatteryLevel = math.Max(0, device.BatteryLevel-rand.Float64()*0.2)
	device.LastValue = newValue

	batteryLevel := device.BatteryLevel

	return types.Reading{
		DeviceID:       device.DeviceID,
		Type:           device.Type,
		Value:          newValue,
		Timestamp:      time.Now().UTC(),
		BatteryLevel:   &batteryLevel,
		IsAnomaly:      &isAnomaly,
		AnomalyDetails: anomalyDetails,
	}
}

// Generate advances every device one step and returns the resulting
// readings.
func (g *Generator) Generate() []types.Reading {
	g.mu.Lock()
	defer g.mu.Unlock()

	readings := make([]types.Reading, 0, len(g.devices))
	for _, device := range g.devices {
		readings = append(readings, g.updateValue(device))
	}

	return readings
}

// Reset replaces the fleet with freshly initialized devices.
func (g *Generator) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.devices = g.initializeDevices()
}

func (g *Generator) SetAnomalyRate(rate float64) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.anomalyRate = rate
	g.log.Info().Msgf("frequency of anomalies set to %.1f%%", rate)
}

// DeviceIDs returns the ids of the current fleet.
func (g *Generator) DeviceIDs() []string {
	g.mu.Lock()
	defer g.mu.Unlock()

	ids := make([]string, 0, len(g.devices))
	for _, device := range g.devices {
		ids = append(ids, device.DeviceID)
	}
	return ids
}

// HandleDeviceCommand applies a per device action and reports whether it was
// accepted. Unknown devices and unknown actions are rejected.
func (g *Generator) HandleDeviceCommand(deviceID, action string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	var device *simulatedDevice
	for _, d := range g.devices {
		if d.DeviceID == deviceID {
			device = d
			break
		}
	}

	if device == nil {
		g.log.Warn().Str("device_id", deviceID).Msg("device not found")
		return false
	}

	switch action {
	case "toggleAnomaly":
		device.AnomalyMode = !device.AnomalyMode
		g.log.Info().Str("device_id", deviceID).Bool("anomaly_mode", device.AnomalyMode).Msg("anomaly mode toggled")
	case "reset":
		device.LastValue = initialValue(device.Type)
		device.BatteryLevel = math.Floor(rand.Float64() * 100)
		device.AnomalyMode = false
		g.log.Info().Str("device_id", deviceID).Msg("device has been reset")
	case "toggleStatus":
		if device.Status == "active" {
			device.Status = "inactive"
		} else {
			device.Status = "active"
		}
		g.log.Info().Str("device_id", deviceID).Str("status", device.Status).Msg("device status changed")
	default:
		g.log.Warn().Str("action", action).Msg("unknown command")
		return false
	}

	return true
}
