// Package pldm runs the PLDM sensor poll threads and converts their cached
// readings with the numeric PDR resolution, offset and unit modifier.
package pldm

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/janael-pinheiro/bic-telemetry-golang/pkg/clock"
	"github.com/janael-pinheiro/bic-telemetry-golang/pkg/driver"
	"github.com/janael-pinheiro/bic-telemetry-golang/pkg/entities"
	"github.com/janael-pinheiro/bic-telemetry-golang/pkg/sensor"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// DefaultPollInterval is the sleep between two sweeps of a thread.
const DefaultPollInterval = time.Second

var (
	ErrInvalidSensorID = errors.New("invalid sensor id")
	ErrInvalidData     = errors.New("invalid data")
	ErrEmptyThread     = errors.New("thread has no sensors")
)

// Info is the conversion data and cache of one sensor.
type Info struct {
	Resolution   float32
	Offset       float32
	UnitModifier int8
	Cache        entities.Reading
	State        entities.OperationalState
}

type Option func(*Service)

func WithClock(c clock.Clock) Option {
	return func(s *Service) { s.clock = c }
}

func WithInterval(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.interval = d
		}
	}
}

// Service owns the poll threads.
type Service struct {
	threads  []*Thread
	byID     map[uint16]*Sensor
	clock    clock.Clock
	interval time.Duration
	log      *logrus.Entry
}

// NewService builds one thread per configured sensor list. Descriptor
// predicates are resolved against power and drivers against registry.
func NewService(threads []entities.PldmThreadConfig, registry *driver.Registry, power sensor.PowerStatus,
	log *logrus.Entry, opts ...Option) (*Service, error) {
	s := &Service{
		byID:     map[uint16]*Sensor{},
		clock:    clock.Real(),
		interval: DefaultPollInterval,
		log:      log,
	}
	for _, opt := range opts {
		opt(s)
	}

	seen := map[int]bool{}
	for _, tc := range threads {
		if seen[tc.ID] {
			log.Errorf("duplicate thread id %d (%s), skipped", tc.ID, tc.Name)
			continue
		}
		seen[tc.ID] = true

		t := &Thread{ID: tc.ID, Name: tc.Name, svc: s, log: log.WithField("thread", tc.Name)}
		for _, sc := range tc.Sensors {
			d, err := sensor.DescriptorFromConfig(sc.Sensor, power)
			if err != nil {
				return nil, errors.Wrapf(err, "thread %s", tc.Name)
			}
			snr := newSensor(d, sc.PDR)
			if c, ok := registry.Lookup(sc.Sensor.Kind); ok {
				snr.init, snr.read = c.Init, c.Read
			} else {
				log.Errorf("sensor 0x%x kind %q not supported", sc.PDR.SensorID, sc.Sensor.Kind)
				snr.setState(entities.StateDisabled)
			}
			if _, dup := s.byID[sc.PDR.SensorID]; dup {
				log.Warnf("sensor 0x%x listed twice, lookups use the first", sc.PDR.SensorID)
			} else {
				s.byID[sc.PDR.SensorID] = snr
			}
			t.Sensors = append(t.Sensors, snr)
		}
		s.threads = append(s.threads, t)
	}
	return s, nil
}

func (s *Service) Threads() []*Thread {
	return s.threads
}

// Sensors returns every sensor in thread order.
func (s *Service) Sensors() []*Sensor {
	var all []*Sensor
	for _, t := range s.threads {
		all = append(all, t.Sensors...)
	}
	return all
}

func (s *Service) Sensor(sensorID uint16) (*Sensor, bool) {
	snr, ok := s.byID[sensorID]
	return snr, ok
}

// Run starts every thread and waits for them to stop.
func (s *Service) Run(ctx context.Context) error {
	s.log.Infof("starting %d pldm sensor threads", len(s.threads))
	var wg sync.WaitGroup
	for _, t := range s.threads {
		wg.Add(1)
		go func(t *Thread) {
			defer wg.Done()
			if err := t.Run(ctx); err != nil && ctx.Err() == nil {
				s.log.WithError(err).Errorf("thread %s stopped", t.Name)
			}
		}(t)
	}
	wg.Wait()
	return ctx.Err()
}

func (s *Service) Info(sensorID uint16) (Info, error) {
	snr, ok := s.byID[sensorID]
	if !ok {
		return Info{}, errors.Wrapf(ErrInvalidSensorID, "sensor 0x%x", sensorID)
	}
	pdr := snr.PDR()
	value, state := snr.Snapshot()
	return Info{
		Resolution:   pdr.Resolution,
		Offset:       pdr.Offset,
		UnitModifier: pdr.UnitModifier,
		Cache:        value,
		State:        state,
	}, nil
}

// ReadingFromCache returns the cached reading in the register units reported
// to the management controller, with the sensor operational state.
func (s *Service) ReadingFromCache(sensorID uint16) (int32, entities.OperationalState, error) {
	info, err := s.Info(sensorID)
	if err != nil {
		return 0, 0, err
	}
	raw, err := Inverse(info.Cache.Float(), info.Resolution, info.Offset, info.UnitModifier)
	if err != nil {
		return 0, info.State, errors.Wrapf(err, "sensor 0x%x resolution", sensorID)
	}
	return int32(raw), info.State, nil
}

// Engineering returns the cached reading of sensorID converted to
// engineering units.
func (s *Service) Engineering(sensorID uint16) (float64, entities.OperationalState, error) {
	info, err := s.Info(sensorID)
	if err != nil {
		return 0, 0, err
	}
	return Forward(info.Cache, info.Resolution, info.Offset, info.UnitModifier), info.State, nil
}

// Setpoint translates a desired engineering value of sensorID to the nearest
// register value.
func (s *Service) Setpoint(sensorID uint16, engineering float64) (int32, error) {
	info, err := s.Info(sensorID)
	if err != nil {
		return 0, err
	}
	raw, err := Inverse(engineering, info.Resolution, info.Offset, info.UnitModifier)
	if err != nil {
		return 0, errors.Wrapf(err, "sensor 0x%x setpoint", sensorID)
	}
	return int32(math.Round(raw)), nil
}
