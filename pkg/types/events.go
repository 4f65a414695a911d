package types

import "time"

type DeviceDiscovered struct {
	Device    Device    `json:"device"`
	Timestamp time.Time `json:"timestamp"`
}

func (d *DeviceDiscovered) ContentType() string {
	return "application/json"
}
func (d *DeviceDiscovered) TopicName() string {
	return "device.discovered"
}

type DeviceStatusChanged struct {
	DeviceID  string       `json:"deviceId"`
	Status    DeviceStatus `json:"status"`
	Timestamp time.Time    `json:"timestamp"`
}

func (d *DeviceStatusChanged) ContentType() string {
	return "application/json"
}
func (d *DeviceStatusChanged) TopicName() string {
	return "device.statusChanged"
}

type DeviceNotObserved struct {
	DeviceID   string    `json:"deviceId"`
	ObservedAt time.Time `json:"observedAt"`
}

func (d *DeviceNotObserved) ContentType() string {
	return "application/json"
}
func (d *DeviceNotObserved) TopicName() string {
	return "watchdog.deviceNotObserved"
}
