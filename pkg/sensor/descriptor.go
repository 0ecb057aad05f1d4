package sensor

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/janael-pinheiro/bic-telemetry-golang/pkg/driver"
	"github.com/janael-pinheiro/bic-telemetry-golang/pkg/entities"
	"github.com/pkg/errors"
)

// AccessFunc reports whether the sensor may be touched right now.
type AccessFunc func() bool

// PreHook runs right before the bus transaction. Returning false aborts the
// read; a hook that fails must not leave anything acquired.
type PreHook func(ctx context.Context, d *Descriptor) bool

// PostHook runs once after every attempted transaction. reading is nil when
// the driver failed, and may be modified in place on success.
type PostHook func(ctx context.Context, d *Descriptor, reading *entities.Reading) bool

type cacheCell struct {
	value  entities.Reading
	status entities.Status
}

// Descriptor is the runtime state of one sensor.
type Descriptor struct {
	Config   entities.SensorConfig
	Access   AccessFunc
	PreHook  PreHook
	PostHook PostHook

	init driver.InitFunc
	read driver.ReadFunc

	// mu serializes FromSensor transactions and polling changes.
	mu      sync.Mutex
	cell    atomic.Pointer[cacheCell]
	polling atomic.Bool
	retry   atomic.Int32
}

func NewDescriptor(cfg entities.SensorConfig) *Descriptor {
	d := &Descriptor{Config: cfg}
	d.cell.Store(&cacheCell{value: entities.ReadingFail, status: entities.InitStatus})
	d.polling.Store(!cfg.DisablePolling)
	return d
}

func (d *Descriptor) ID() entities.SensorID {
	return d.Config.ID
}

// Snapshot returns the (value, status) pair as last committed.
func (d *Descriptor) Snapshot() (entities.Reading, entities.Status) {
	cell := d.cell.Load()
	return cell.value, cell.status
}

func (d *Descriptor) Status() entities.Status {
	return d.cell.Load().status
}

// SetStatus overrides the cache status and keeps the stored value. Pre hooks
// use it to mark a sensor NotPresent.
func (d *Descriptor) SetStatus(status entities.Status) {
	d.update(func(c cacheCell) cacheCell {
		c.status = status
		return c
	})
}

func (d *Descriptor) PollingEnabled() bool {
	return d.polling.Load()
}

// Supported reports whether a driver was resolved for the sensor kind.
func (d *Descriptor) Supported() bool {
	return d.read != nil
}

func (d *Descriptor) Retry() int {
	return int(d.retry.Load())
}

func (d *Descriptor) accessible() bool {
	return d.Access == nil || d.Access()
}

func (d *Descriptor) store(value entities.Reading, status entities.Status) {
	d.cell.Store(&cacheCell{value: value, status: status})
}

func (d *Descriptor) update(fn func(cacheCell) cacheCell) {
	for {
		old := d.cell.Load()
		next := fn(*old)
		if d.cell.CompareAndSwap(old, &next) {
			return
		}
	}
}

// clearUnaccessible drops the cached value unless the sensor never produced one.
func (d *Descriptor) clearUnaccessible() {
	d.update(func(c cacheCell) cacheCell {
		if c.status != entities.InitStatus {
			c.value = entities.ReadingFail
		}
		c.status = entities.NotAccessible
		return c
	})
}

// DescriptorFromConfig builds a descriptor whose access predicate is resolved
// by name against power.
func DescriptorFromConfig(cfg entities.SensorConfig, power PowerStatus) (*Descriptor, error) {
	access, err := AccessByName(cfg.Access, power)
	if err != nil {
		return nil, errors.Wrapf(err, "sensor 0x%02x", cfg.ID)
	}
	d := NewDescriptor(cfg)
	d.Access = access
	return d, nil
}
