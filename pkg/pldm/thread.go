package pldm

import (
	"context"
	"runtime"

	"github.com/janael-pinheiro/bic-telemetry-golang/pkg/entities"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Thread polls one platform sensor list.
type Thread struct {
	ID      int
	Name    string
	Sensors []*Sensor

	svc *Service
	log *logrus.Entry
}

// Run sweeps the list until ctx is done, sleeping the service interval
// between sweeps.
func (t *Thread) Run(ctx context.Context) error {
	if len(t.Sensors) == 0 {
		return errors.Wrapf(ErrEmptyThread, "thread %d", t.ID)
	}
	t.log.Infof("polling %d sensors", len(t.Sensors))
	for {
		t.Sweep(ctx)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.svc.clock.After(t.svc.interval):
		}
	}
}

// Sweep runs one pass over the thread sensors.
func (t *Thread) Sweep(ctx context.Context) {
	for _, s := range t.Sensors {
		if ctx.Err() != nil {
			return
		}
		t.poll(ctx, s)
		runtime.Gosched()
	}
}

func (t *Thread) poll(ctx context.Context, s *Sensor) {
	if s.read == nil {
		return
	}
	if s.State() == entities.StateInitializing && !t.preCheck(ctx, s) {
		return
	}
	if !s.sensorEnabled() {
		s.setState(entities.StateDisabled)
		return
	}
	if !s.intervalReady(t.svc.clock.Now()) {
		return
	}
	t.read(ctx, s)

	value, state := s.Snapshot()
	t.log.Debugf("sensor 0x%x value 0x%x state %s", s.ID(), uint32(value), state)
}

// preCheck runs the one time driver init. A false return skips the sensor
// for this sweep.
func (t *Thread) preCheck(ctx context.Context, s *Sensor) bool {
	if !s.accessible() {
		return false
	}
	if !s.preHook(ctx) {
		s.setState(entities.StateFailed)
		return false
	}
	if s.init != nil {
		if err := s.init(ctx, &s.Descriptor.Config); err != nil {
			s.setState(entities.StateFailed)
			t.log.WithError(err).Errorf("failed to init sensor 0x%x", s.ID())
		} else {
			s.enableSensor()
		}
	} else {
		s.enableSensor()
	}
	if !s.postHook(ctx, nil) {
		s.setState(entities.StateFailed)
		return false
	}
	return true
}

func (t *Thread) read(ctx context.Context, s *Sensor) {
	if !s.accessible() {
		s.setState(entities.StateUnavailable)
		return
	}
	if !s.preHook(ctx) {
		s.setState(entities.StateFailed)
		s.touch(t.svc.clock.Now())
		t.log.Debugf("failed to pre read sensor 0x%x", s.ID())
		return
	}

	reading, err := s.read(ctx, &s.Descriptor.Config)
	if err != nil {
		s.setState(entities.StateFailed)
		s.touch(t.svc.clock.Now())
		t.log.WithError(err).Errorf("failed to read sensor 0x%x", s.ID())
		if !s.postHook(ctx, nil) {
			t.log.Debugf("failed to post read sensor 0x%x", s.ID())
		}
		return
	}

	if !s.postHook(ctx, &reading) {
		s.setState(entities.StateFailed)
		s.touch(t.svc.clock.Now())
		t.log.Debugf("failed to post read sensor 0x%x", s.ID())
		return
	}
	s.touch(t.svc.clock.Now())
	s.store(reading)
}
