package sensor

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/janael-pinheiro/bic-telemetry-golang/pkg/clock"
	"github.com/janael-pinheiro/bic-telemetry-golang/pkg/entities"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	DefaultPollInterval = time.Second
	DefaultStartDelay   = time.Second
)

// SweepHook runs around each sensor read of a group sweep.
type SweepHook func(ctx context.Context, d *Descriptor) error

// MonitorGroup is a batch of sensors polled under one access gate.
type MonitorGroup struct {
	Name      string
	Sensors   []entities.SensorID
	Access    AccessFunc
	PreSweep  SweepHook
	PostSweep SweepHook
}

// GroupsFromConfig resolves the configured groups.
func GroupsFromConfig(configs []entities.MonitorGroupConfig, power PowerStatus) ([]MonitorGroup, error) {
	groups := make([]MonitorGroup, 0, len(configs))
	for _, c := range configs {
		access, err := AccessByName(c.Access, power)
		if err != nil {
			return nil, errors.Wrapf(err, "monitor group %s", c.Name)
		}
		groups = append(groups, MonitorGroup{Name: c.Name, Sensors: c.Sensors, Access: access})
	}
	return groups, nil
}

type SchedulerOption func(*Scheduler)

func WithClock(c clock.Clock) SchedulerOption {
	return func(s *Scheduler) { s.clock = c }
}

func WithInterval(d time.Duration) SchedulerOption {
	return func(s *Scheduler) {
		if d > 0 {
			s.interval = d
		}
	}
}

func WithStartDelay(d time.Duration) SchedulerOption {
	return func(s *Scheduler) {
		if d >= 0 {
			s.startDelay = d
		}
	}
}

// WithRecordCheck skips sensors for which hasRecord returns false, typically
// sensors missing from the SDR table.
func WithRecordCheck(hasRecord func(entities.SensorID) bool) SchedulerOption {
	return func(s *Scheduler) { s.hasRecord = hasRecord }
}

// Scheduler sweeps the monitor groups in registration order.
type Scheduler struct {
	engine     *Engine
	groups     []MonitorGroup
	clock      clock.Clock
	interval   time.Duration
	startDelay time.Duration
	hasRecord  func(entities.SensorID) bool
	log        *logrus.Entry

	enabled atomic.Bool
	ready   atomic.Bool

	sweepMu  sync.Mutex
	lastPoll map[entities.SensorID]time.Time
}

// NewScheduler creates a scheduler. Without groups every engine sensor is
// swept as one group.
func NewScheduler(engine *Engine, groups []MonitorGroup, log *logrus.Entry, opts ...SchedulerOption) *Scheduler {
	s := &Scheduler{
		engine:     engine,
		groups:     groups,
		clock:      clock.Real(),
		interval:   DefaultPollInterval,
		startDelay: DefaultStartDelay,
		log:        log,
		lastPoll:   map[entities.SensorID]time.Time{},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.enabled.Store(true)
	return s
}

// Enable and Disable switch polling for all groups.
func (s *Scheduler) Enable()  { s.enabled.Store(true) }
func (s *Scheduler) Disable() { s.enabled.Store(false) }

func (s *Scheduler) Enabled() bool {
	return s.enabled.Load()
}

// Ready reports whether a full sweep has completed.
func (s *Scheduler) Ready() bool {
	return s.ready.Load()
}

// Run sweeps until ctx is done.
func (s *Scheduler) Run(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-s.clock.After(s.startDelay):
	}
	s.log.Infof("polling started, interval %s", s.interval)

	for {
		if s.enabled.Load() {
			s.Sweep(ctx)
			s.ready.Store(true)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.clock.After(s.interval):
		}
	}
}

// Sweep runs one pass over every group.
func (s *Scheduler) Sweep(ctx context.Context) {
	s.sweepMu.Lock()
	defer s.sweepMu.Unlock()

	for _, group := range s.sweepGroups() {
		if ctx.Err() != nil {
			return
		}
		if group.Access != nil && !group.Access() {
			s.log.Debugf("group %s not accessible, skipped", group.Name)
			continue
		}
		for _, id := range group.Sensors {
			d, ok := s.engine.Descriptor(id)
			if !ok || !s.due(d) {
				continue
			}
			s.poll(ctx, group, d)
		}
		runtime.Gosched()
	}
}

func (s *Scheduler) sweepGroups() []MonitorGroup {
	if len(s.groups) > 0 {
		return s.groups
	}
	all := MonitorGroup{Name: "default"}
	for _, d := range s.engine.Descriptors() {
		all.Sensors = append(all.Sensors, d.ID())
	}
	return []MonitorGroup{all}
}

func (s *Scheduler) due(d *Descriptor) bool {
	if d.Status() == entities.NotPresent || !d.Supported() || !d.PollingEnabled() {
		return false
	}
	if s.hasRecord != nil && !s.hasRecord(d.ID()) {
		return false
	}
	if d.Config.PollInterval <= 0 {
		return true
	}
	last, polled := s.lastPoll[d.ID()]
	return !polled || s.clock.Now().Sub(last) >= d.Config.PollInterval
}

func (s *Scheduler) poll(ctx context.Context, group MonitorGroup, d *Descriptor) {
	if group.PreSweep != nil {
		if err := group.PreSweep(ctx, d); err != nil {
			s.log.WithError(err).Warnf("group %s: pre sweep hook failed for sensor 0x%02x", group.Name, d.ID())
		}
	}
	if _, _, err := s.engine.Read(ctx, d.ID(), FromSensor); err != nil {
		s.log.WithError(err).Warnf("group %s: read sensor 0x%02x", group.Name, d.ID())
	}
	s.lastPoll[d.ID()] = s.clock.Now()
	if group.PostSweep != nil {
		if err := group.PostSweep(ctx, d); err != nil {
			s.log.WithError(err).Warnf("group %s: post sweep hook failed for sensor 0x%02x", group.Name, d.ID())
		}
	}
}
