package pldm

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/janael-pinheiro/bic-telemetry-golang/pkg/driver"
	"github.com/janael-pinheiro/bic-telemetry-golang/pkg/entities"
	"github.com/janael-pinheiro/bic-telemetry-golang/pkg/sensor"
)

type cacheCell struct {
	value entities.Reading
	state entities.OperationalState
}

// Sensor couples a sensor descriptor with its numeric PDR. Its cache and
// update time are owned by the thread polling it.
type Sensor struct {
	Descriptor *sensor.Descriptor

	init driver.InitFunc
	read driver.ReadFunc

	mu  sync.RWMutex
	pdr entities.NumericSensorPDR

	cell       atomic.Pointer[cacheCell]
	updateTime atomic.Pointer[time.Time]
}

func newSensor(d *sensor.Descriptor, pdr entities.NumericSensorPDR) *Sensor {
	s := &Sensor{Descriptor: d, pdr: pdr}
	s.cell.Store(&cacheCell{state: entities.StateInitializing})
	return s
}

func (s *Sensor) ID() uint16 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pdr.SensorID
}

// PDR returns a copy of the numeric sensor record.
func (s *Sensor) PDR() entities.NumericSensorPDR {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pdr
}

func (s *Sensor) Snapshot() (entities.Reading, entities.OperationalState) {
	cell := s.cell.Load()
	return cell.value, cell.state
}

func (s *Sensor) State() entities.OperationalState {
	return s.cell.Load().state
}

// UpdateTime is the time of the last attempted read, zero before the first.
func (s *Sensor) UpdateTime() time.Time {
	if t := s.updateTime.Load(); t != nil {
		return *t
	}
	return time.Time{}
}

func (s *Sensor) sensorEnabled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pdr.SensorInit == entities.PDRSensorEnable
}

func (s *Sensor) enableSensor() {
	s.mu.Lock()
	s.pdr.SensorInit = entities.PDRSensorEnable
	s.mu.Unlock()
}

func (s *Sensor) updateInterval() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return time.Duration(float64(s.pdr.UpdateInterval) * float64(time.Second))
}

func (s *Sensor) setState(state entities.OperationalState) {
	for {
		old := s.cell.Load()
		next := cacheCell{value: old.value, state: state}
		if s.cell.CompareAndSwap(old, &next) {
			return
		}
	}
}

func (s *Sensor) store(value entities.Reading) {
	s.cell.Store(&cacheCell{value: value, state: entities.StateEnabled})
}

func (s *Sensor) touch(now time.Time) {
	s.updateTime.Store(&now)
}

// intervalReady reports whether the update interval has elapsed since the
// last read.
func (s *Sensor) intervalReady(now time.Time) bool {
	last := s.UpdateTime()
	if last.IsZero() {
		return true
	}
	return s.updateInterval() <= now.Sub(last)
}

func (s *Sensor) accessible() bool {
	return s.Descriptor.Access == nil || s.Descriptor.Access()
}

func (s *Sensor) preHook(ctx context.Context) bool {
	return s.Descriptor.PreHook == nil || s.Descriptor.PreHook(ctx, s.Descriptor)
}

func (s *Sensor) postHook(ctx context.Context, reading *entities.Reading) bool {
	return s.Descriptor.PostHook == nil || s.Descriptor.PostHook(ctx, s.Descriptor, reading)
}
