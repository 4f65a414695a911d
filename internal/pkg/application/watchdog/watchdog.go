package watchdog

import (
	"context"
	"time"

	"github.com/diwise/messaging-golang/pkg/messaging"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"

	"github.com/optdev/iot-monsys/internal/pkg/application/devicemanagement"
	"github.com/optdev/iot-monsys/pkg/types"
)

const DefaultInterval = 10 * time.Minute
const DefaultMaxSilence = 1 * time.Hour

// Watchdog periodically scans for active devices that have stopped sending
// data and marks them inactive.
type Watchdog interface {
	Start(ctx context.Context)
	Stop(ctx context.Context)
}

type watchdogImpl struct {
	done       chan bool
	devices    devicemanagement.DeviceManagement
	messenger  messaging.MsgContext
	interval   time.Duration
	maxSilence time.Duration
}

func New(devices devicemanagement.DeviceManagement, messenger messaging.MsgContext, interval, maxSilence time.Duration) Watchdog {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if maxSilence <= 0 {
		maxSilence = DefaultMaxSilence
	}

	return &watchdogImpl{
		done:       make(chan bool),
		devices:    devices,
		messenger:  messenger,
		interval:   interval,
		maxSilence: maxSilence,
	}
}

func (w *watchdogImpl) Start(ctx context.Context) {
	go w.run(ctx)
}

// Stop terminates the sweep loop. Safe to call even if the loop already
// exited because its context was cancelled.
func (w *watchdogImpl) Stop(ctx context.Context) {
	close(w.done)
}

func (w *watchdogImpl) run(ctx context.Context) {
	log := logging.GetFromContext(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.done:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			cutoff := time.Now().UTC().Add(-w.maxSilence)

			stale, err := w.devices.QueryStale(ctx, cutoff)
			if err != nil {
				log.Error("could not query for stale devices", "err", err.Error())
				continue
			}

			for _, device := range stale.Data {
				log.Info("device has not been observed recently, marking inactive",
					"device_id", device.DeviceID, "cutoff", cutoff.Format(time.RFC3339))

				if err := w.devices.MarkNotObserved(ctx, device.DeviceID); err != nil {
					log.Error("could not mark device as not observed", "device_id", device.DeviceID, "err", err.Error())
					continue
				}

				observedAt := time.Now().UTC()
				if device.LastDataReceived != nil {
					observedAt = *device.LastDataReceived
				}

				err = w.messenger.PublishOnTopic(ctx, &types.DeviceNotObserved{
					DeviceID:   device.DeviceID,
					ObservedAt: observedAt,
				})
				if err != nil {
					log.Error("could not publish event", "device_id", device.DeviceID, "err", err.Error())
				}
			}
		}
	}
}
