package sensor

import (
	"context"
	"testing"
	"time"

	"github.com/janael-pinheiro/bic-telemetry-golang/pkg/clock"
	"github.com/janael-pinheiro/bic-telemetry-golang/pkg/driver"
	"github.com/janael-pinheiro/bic-telemetry-golang/pkg/entities"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var schedulerEpoch = time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)

func newSchedulerFixture(t *testing.T, configs ...entities.SensorConfig) (*Engine, *scriptedDriver) {
	drv := newScriptedDriver(entities.NewReading(30, 0))
	engine := NewEngine(driver.NewRegistry(drv.capability()), 0, nullLogger())
	for _, cfg := range configs {
		cfg.Kind = fakeKind
		require.NoError(t, engine.AddSensor(context.Background(), NewDescriptor(cfg)))
	}
	engine.Init(context.Background())
	return engine, drv
}

func TestGivenGroupPredicateFalseThenSkipWholeGroup(t *testing.T) {
	engine, drv := newSchedulerFixture(t,
		entities.SensorConfig{ID: 1},
		entities.SensorConfig{ID: 2},
		entities.SensorConfig{ID: 3},
	)
	hostOn := false
	groups := []MonitorGroup{
		{Name: "standby", Sensors: []entities.SensorID{1}, Access: Always},
		{Name: "host", Sensors: []entities.SensorID{2, 3}, Access: func() bool { return hostOn }},
	}
	scheduler := NewScheduler(engine, groups, nullLogger())

	scheduler.Sweep(context.Background())
	assert.Equal(t, 1, drv.readCount(1))
	assert.Equal(t, 0, drv.readCount(2))
	assert.Equal(t, 0, drv.readCount(3))

	hostOn = true
	scheduler.Sweep(context.Background())
	assert.Equal(t, 2, drv.readCount(1))
	assert.Equal(t, 1, drv.readCount(2))
	assert.Equal(t, 1, drv.readCount(3))
}

func TestGivenPollingDisabledOrNotPresentThenSensorIsSkipped(t *testing.T) {
	engine, drv := newSchedulerFixture(t,
		entities.SensorConfig{ID: 1},
		entities.SensorConfig{ID: 2, DisablePolling: true},
		entities.SensorConfig{ID: 3},
	)
	require.NoError(t, engine.SetPresence(3, false))
	scheduler := NewScheduler(engine, nil, nullLogger())

	scheduler.Sweep(context.Background())
	assert.Equal(t, 1, drv.readCount(1))
	assert.Equal(t, 0, drv.readCount(2))
	assert.Equal(t, 0, drv.readCount(3))

	require.NoError(t, engine.EnablePolling(1, false))
	scheduler.Sweep(context.Background())
	assert.Equal(t, 1, drv.readCount(1))
	_, status, err := engine.Read(context.Background(), 1, FromCache)
	require.NoError(t, err)
	assert.Equal(t, entities.PollingDisable, status)
}

func TestGivenPollIntervalThenReadOnlyWhenElapsed(t *testing.T) {
	engine, drv := newSchedulerFixture(t,
		entities.SensorConfig{ID: 1, PollInterval: 5 * time.Second},
		entities.SensorConfig{ID: 2},
	)
	fake := clock.Fake(schedulerEpoch)
	scheduler := NewScheduler(engine, nil, nullLogger(), WithClock(fake))

	scheduler.Sweep(context.Background())
	scheduler.Sweep(context.Background())
	assert.Equal(t, 1, drv.readCount(1))
	assert.Equal(t, 2, drv.readCount(2))

	fake.Advance(4 * time.Second)
	scheduler.Sweep(context.Background())
	assert.Equal(t, 1, drv.readCount(1))

	fake.Advance(time.Second)
	scheduler.Sweep(context.Background())
	assert.Equal(t, 2, drv.readCount(1))
}

func TestGivenSweepHooksFailThenSweepContinues(t *testing.T) {
	engine, drv := newSchedulerFixture(t,
		entities.SensorConfig{ID: 1},
		entities.SensorConfig{ID: 2},
	)
	var order []string
	group := MonitorGroup{
		Name:    "board",
		Sensors: []entities.SensorID{1, 2},
		PreSweep: func(_ context.Context, d *Descriptor) error {
			order = append(order, "pre")
			return errors.New("mux busy")
		},
		PostSweep: func(_ context.Context, d *Descriptor) error {
			order = append(order, "post")
			return errors.New("mux stuck")
		},
	}
	scheduler := NewScheduler(engine, []MonitorGroup{group}, nullLogger())

	scheduler.Sweep(context.Background())
	assert.Equal(t, 1, drv.readCount(1))
	assert.Equal(t, 1, drv.readCount(2))
	assert.Equal(t, []string{"pre", "post", "pre", "post"}, order)
}

func TestGivenRecordCheckThenSkipSensorsWithoutRecord(t *testing.T) {
	engine, drv := newSchedulerFixture(t,
		entities.SensorConfig{ID: 1},
		entities.SensorConfig{ID: 2},
	)
	scheduler := NewScheduler(engine, nil, nullLogger(), WithRecordCheck(func(id entities.SensorID) bool {
		return id == 2
	}))

	scheduler.Sweep(context.Background())
	assert.Equal(t, 0, drv.readCount(1))
	assert.Equal(t, 1, drv.readCount(2))
}

func TestGivenRunThenWaitStartDelayAndReportReady(t *testing.T) {
	engine, drv := newSchedulerFixture(t, entities.SensorConfig{ID: 1})
	fake := clock.Fake(schedulerEpoch)
	scheduler := NewScheduler(engine, nil, nullLogger(),
		WithClock(fake), WithStartDelay(time.Second), WithInterval(500*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- scheduler.Run(ctx) }()

	fake.WaitForWaiters(1)
	assert.False(t, scheduler.Ready())
	assert.Equal(t, 0, drv.readCount(1))

	fake.Advance(time.Second)
	fake.WaitForWaiters(1)
	assert.True(t, scheduler.Ready())
	assert.Equal(t, 1, drv.readCount(1))

	scheduler.Disable()
	fake.Advance(500 * time.Millisecond)
	fake.WaitForWaiters(1)
	assert.Equal(t, 1, drv.readCount(1))
	assert.False(t, scheduler.Enabled())

	scheduler.Enable()
	fake.Advance(500 * time.Millisecond)
	fake.WaitForWaiters(1)
	assert.Equal(t, 2, drv.readCount(1))

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestGivenGroupConfigThenResolvePredicates(t *testing.T) {
	power := NewPowerState(entities.PowerConfig{DCOn: false})
	groups, err := GroupsFromConfig([]entities.MonitorGroupConfig{
		{Name: "host", Access: "dc", Sensors: []entities.SensorID{1}},
	}, power)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.False(t, groups[0].Access())

	_, err = GroupsFromConfig([]entities.MonitorGroupConfig{{Name: "bad", Access: "x"}}, power)
	assert.Error(t, err)
}
