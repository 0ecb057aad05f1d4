// Package sensor keeps the per-sensor cache and drives the polling sweeps.
package sensor

import (
	"context"
	"sync"

	"github.com/janael-pinheiro/bic-telemetry-golang/pkg/driver"
	"github.com/janael-pinheiro/bic-telemetry-golang/pkg/entities"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// ReadRetryMax is the number of tolerated consecutive failures before the
// driver status is committed.
const ReadRetryMax = 3

// Mode selects between a bus transaction and the cached value.
type Mode uint8

const (
	FromSensor Mode = iota
	FromCache
)

var (
	ErrNotFound  = errors.New("sensor not found")
	ErrCapacity  = errors.New("sensor table is full")
	ErrInvalidID = errors.New("invalid sensor number")
)

// Engine owns the sensor descriptors.
type Engine struct {
	registry *driver.Registry
	capacity int
	log      *logrus.Entry

	mu          sync.RWMutex
	descriptors []*Descriptor
	index       map[entities.SensorID]int
	initialized bool
}

func NewEngine(registry *driver.Registry, capacity int, log *logrus.Entry) *Engine {
	if capacity <= 0 || capacity > entities.SensorNumMax {
		capacity = entities.SensorNumMax
	}
	return &Engine{
		registry: registry,
		capacity: capacity,
		log:      log,
		index:    map[entities.SensorID]int{},
	}
}

// AddSensor replaces the descriptor with the same id, or appends d if the
// table has room. Once the engine is initialized the new driver is
// initialized right away.
func (e *Engine) AddSensor(ctx context.Context, d *Descriptor) error {
	if d.ID() == entities.SensorNumMax {
		return errors.Wrapf(ErrInvalidID, "sensor 0x%02x", d.ID())
	}
	e.resolve(d)

	e.mu.Lock()
	if i, ok := e.index[d.ID()]; ok {
		e.descriptors[i] = d
	} else {
		if len(e.descriptors)+1 > e.capacity {
			e.mu.Unlock()
			return errors.Wrapf(ErrCapacity, "add sensor 0x%02x", d.ID())
		}
		e.descriptors = append(e.descriptors, d)
	}
	e.rebuildIndex()
	initialized := e.initialized
	e.mu.Unlock()

	if initialized {
		e.initDescriptor(ctx, d)
	}
	return nil
}

func (e *Engine) rebuildIndex() {
	e.index = make(map[entities.SensorID]int, len(e.descriptors))
	for i, d := range e.descriptors {
		e.index[d.ID()] = i
	}
}

func (e *Engine) resolve(d *Descriptor) {
	capability, ok := e.registry.Lookup(d.Config.Kind)
	if !ok || capability.Read == nil {
		e.log.Errorf("sensor 0x%02x: kind %q not supported", d.ID(), d.Config.Kind)
		d.init, d.read = nil, nil
		d.SetStatus(entities.ReadAPIUnregister)
		return
	}
	d.init, d.read = capability.Init, capability.Read
}

// Init runs every driver init once.
func (e *Engine) Init(ctx context.Context) {
	e.mu.Lock()
	e.initialized = true
	e.mu.Unlock()

	for _, d := range e.Descriptors() {
		e.initDescriptor(ctx, d)
	}
	e.log.Infof("%d sensors initialized", len(e.Descriptors()))
}

func (e *Engine) initDescriptor(ctx context.Context, d *Descriptor) {
	if d.read == nil || d.init == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.PreHook != nil && !d.PreHook(ctx, d) {
		e.log.Errorf("sensor 0x%02x: pre hook failed during init", d.ID())
		return
	}
	if err := d.init(ctx, &d.Config); err != nil {
		e.log.WithError(err).Errorf("sensor 0x%02x: init failed", d.ID())
	}
	if d.PostHook != nil && !d.PostHook(ctx, d, nil) {
		e.log.Errorf("sensor 0x%02x: post hook failed during init", d.ID())
	}
}

// Descriptor returns the descriptor registered under id.
func (e *Engine) Descriptor(id entities.SensorID) (*Descriptor, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	i, ok := e.index[id]
	if !ok {
		return nil, false
	}
	return e.descriptors[i], true
}

// Descriptors returns the descriptors in registration order.
func (e *Engine) Descriptors() []*Descriptor {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]*Descriptor, len(e.descriptors))
	copy(out, e.descriptors)
	return out
}

// Read returns the sensor value and status. FromSensor performs the bus
// transaction; FromCache never blocks on hardware. The value is zero unless
// the status is a success.
func (e *Engine) Read(ctx context.Context, id entities.SensorID, mode Mode) (entities.Reading, entities.Status, error) {
	d, ok := e.Descriptor(id)
	if !ok {
		return 0, entities.NotFound, errors.Wrapf(ErrNotFound, "sensor 0x%02x", id)
	}

	switch mode {
	case FromSensor:
		return e.readFromSensor(ctx, d)
	case FromCache:
		value, status := readFromCache(d)
		return value, status, nil
	default:
		return 0, entities.UnspecifiedError, errors.Errorf("invalid read mode %d", mode)
	}
}

func (e *Engine) readFromSensor(ctx context.Context, d *Descriptor) (entities.Reading, entities.Status, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	switch d.Status() {
	case entities.NotPresent, entities.ReadAPIUnregister:
		return 0, d.Status(), nil
	}

	if !d.accessible() {
		d.clearUnaccessible()
		return 0, entities.NotAccessible, nil
	}

	if d.PreHook != nil {
		if !d.PreHook(ctx, d) {
			e.log.Warnf("sensor 0x%02x: pre read hook failed", d.ID())
			d.SetStatus(entities.PreReadError)
			return 0, entities.PreReadError, nil
		}
		if d.Status() == entities.NotPresent {
			return 0, entities.NotPresent, nil
		}
	}

	reading, err := d.read(ctx, &d.Config)
	if err == nil {
		d.retry.Store(0)
		postOK := true
		if d.PostHook != nil {
			postOK = d.PostHook(ctx, d, &reading)
		}
		// Power may have dropped during the transaction.
		if !d.accessible() {
			d.SetStatus(entities.NotAccessible)
			return 0, entities.NotAccessible, nil
		}
		if !postOK {
			e.log.Warnf("sensor 0x%02x: post read hook failed", d.ID())
			d.SetStatus(entities.PostReadError)
			return 0, entities.PostReadError, nil
		}
		d.store(reading, entities.Read4ByteAccurateSuccess)
		e.log.Debugf("sensor 0x%02x: %.3f", d.ID(), reading.Float())
		return reading, entities.Read4ByteAccurateSuccess, nil
	}

	if d.PostHook != nil && !d.PostHook(ctx, d, nil) {
		e.log.Warnf("sensor 0x%02x: read and post read hook failed", d.ID())
	}
	if d.Retry() >= ReadRetryMax {
		status := driver.StatusOf(err)
		e.log.WithError(err).Debugf("sensor 0x%02x: read failed, status %s", d.ID(), status)
		d.SetStatus(status)
	} else {
		d.retry.Add(1)
	}

	value, status := d.Snapshot()
	if !status.IsSuccess() {
		value = 0
	}
	return value, status, nil
}

func readFromCache(d *Descriptor) (entities.Reading, entities.Status) {
	cell := d.cell.Load()
	if cell.status.IsSuccess() {
		return cell.value, cell.status
	}
	if cell.value != entities.ReadingFail {
		d.cell.CompareAndSwap(cell, &cacheCell{value: entities.ReadingFail, status: cell.status})
	}
	return 0, cell.status
}

// EnablePolling turns polling on or off. Disabling drops the cached value
// and reports PollingDisable; enabling restarts the sensor from Init. A
// NotPresent sensor only has its flag changed and waits for SetPresence.
func (e *Engine) EnablePolling(id entities.SensorID, on bool) error {
	d, ok := e.Descriptor(id)
	if !ok {
		return errors.Wrapf(ErrNotFound, "sensor 0x%02x", id)
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	d.polling.Store(on)
	if d.Status() == entities.NotPresent {
		return nil
	}
	if on {
		d.retry.Store(0)
		d.store(entities.ReadingFail, entities.InitStatus)
	} else {
		d.store(entities.ReadingFail, entities.PollingDisable)
	}
	return nil
}

// SetPresence records the outcome of an external re-scan. It is the only way
// out of NotPresent.
func (e *Engine) SetPresence(id entities.SensorID, present bool) error {
	d, ok := e.Descriptor(id)
	if !ok {
		return errors.Wrapf(ErrNotFound, "sensor 0x%02x", id)
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	switch {
	case !present:
		d.store(entities.ReadingFail, entities.NotPresent)
	case d.Status() != entities.NotPresent:
	case d.PollingEnabled():
		d.retry.Store(0)
		d.store(entities.ReadingFail, entities.InitStatus)
	default:
		d.store(entities.ReadingFail, entities.PollingDisable)
	}
	return nil
}
