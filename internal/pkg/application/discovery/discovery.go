package discovery

import (
	"context"
	"sync"
	"time"

	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
	"github.com/optdev/iot-monsys/pkg/types"
)

// DefaultDuration is how long discovery mode stays enabled when no explicit
// duration is requested.
const DefaultDuration = 60 * time.Second

// Controller is the process-wide discovery mode toggle. Enabling it permits
// auto-registration of unknown devices until the duration expires or it is
// explicitly disabled. All transitions, including the expiry timer firing,
// happen under a single mutex.
type Controller struct {
	mu      sync.Mutex
	enabled bool
	timer   *time.Timer
	gen     uint64
}

func New() *Controller {
	return &Controller{}
}

// Set toggles discovery mode. Enabling schedules an automatic disable after
// the given duration; calling Set again with the same value resets the timer.
func (c *Controller) Set(ctx context.Context, enabled bool, duration time.Duration) types.DiscoveryState {
	log := logging.GetFromContext(ctx)

	if duration <= 0 {
		duration = DefaultDuration
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}

	// invalidate any expiry callback that already fired but has not yet
	// acquired the mutex
	c.gen++

	c.enabled = enabled

	if enabled {
		gen := c.gen
		c.timer = time.AfterFunc(duration, func() {
			c.expire(ctx, gen)
		})

		log.Info("discovery mode enabled", "duration", duration.String())
	} else {
		log.Info("discovery mode disabled")
	}

	return types.DiscoveryState{
		Enabled:  c.enabled,
		Duration: duration.Milliseconds(),
	}
}

// Get returns the current discovery state with no side effects.
func (c *Controller) Get() types.DiscoveryState {
	c.mu.Lock()
	defer c.mu.Unlock()

	return types.DiscoveryState{Enabled: c.enabled}
}

func (c *Controller) expire(ctx context.Context, gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.gen {
		return
	}

	c.enabled = false
	c.timer = nil

	logging.GetFromContext(ctx).Info("discovery mode disabled automatically")
}
