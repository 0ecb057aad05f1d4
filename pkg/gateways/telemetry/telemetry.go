// Package telemetry exports cached sensor readings to the host management
// controller and applies the control messages it sends back.
package telemetry

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	bloomFilter "github.com/bits-and-blooms/bloom/v3"
	"github.com/janael-pinheiro/bic-telemetry-golang/pkg/clock"
	"github.com/janael-pinheiro/bic-telemetry-golang/pkg/entities"
	"github.com/janael-pinheiro/bic-telemetry-golang/pkg/gateways/telemetry/network"
	"github.com/janael-pinheiro/bic-telemetry-golang/pkg/pldm"
	"github.com/janael-pinheiro/bic-telemetry-golang/pkg/sensor"
	"github.com/janael-pinheiro/bic-telemetry-golang/pkg/utils"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	DUPLICATION_FILTER            = "0"
	FILTER_CAPACITY               = "1000000"
	DUPLICATION_PROBABILITY       = "0.01"
	RESET_FILTER_USAGE_PERCENTAGE = "0.75"
)

const (
	SourceEngine = "engine"
	SourcePLDM   = "pldm"

	DefaultInterval = 10 * time.Second
)

// SensorCache is the cache engine side of the export.
type SensorCache interface {
	Descriptors() []*sensor.Descriptor
	Read(ctx context.Context, id entities.SensorID, mode sensor.Mode) (entities.Reading, entities.Status, error)
	EnablePolling(id entities.SensorID, on bool) error
}

// PldmCache is the PLDM poll thread side of the export.
type PldmCache interface {
	Sensors() []*pldm.Sensor
	Engineering(sensorID uint16) (float64, entities.OperationalState, error)
}

// ThresholdStore holds the numeric sensor thresholds.
type ThresholdStore interface {
	SetCriticalHigh(sensorID uint16, value float64) error
	SetCriticalLow(sensorID uint16, value float64) error
}

type Option func(*Integration)

func WithClock(c clock.Clock) Option {
	return func(i *Integration) { i.clock = c }
}

func WithInterval(d time.Duration) Option {
	return func(i *Integration) {
		if d > 0 {
			i.interval = d
		}
	}
}

// WithPldm adds the PLDM sensors to the export.
func WithPldm(p PldmCache) Option {
	return func(i *Integration) { i.pldm = p }
}

// WithThresholds lets control messages change the PDR thresholds.
func WithThresholds(t ThresholdStore) Option {
	return func(i *Integration) { i.thresholds = t }
}

type Integration struct {
	engine     SensorCache
	pldm       PldmCache
	thresholds ThresholdStore
	publisher  network.Publisher
	subscriber network.Subscriber
	clock      clock.Clock
	interval   time.Duration
	log        *logrus.Entry

	duplicationMutex             sync.Mutex
	filters                      map[string]*bloomFilter.BloomFilter
	maximumPercentageFilterUsage float32
	filterCapacity               uint
	duplicationProbability       float64
	isSampleDuplicatedFunction   func(source string, sensorID int, timestamp int64) bool
	actions                      map[string]func(network.InMsg) error
}

func NewIntegration(engine SensorCache, publisher network.Publisher, subscriber network.Subscriber, log *logrus.Entry, opts ...Option) (*Integration, error) {
	i := &Integration{
		engine:     engine,
		publisher:  publisher,
		subscriber: subscriber,
		clock:      clock.Real(),
		interval:   DefaultInterval,
		log:        log,
	}
	for _, opt := range opts {
		opt(i)
	}

	maximumPercentageFilterUsage, err := strconv.ParseFloat(utils.GetValueFromEnvironmentVariable("RESET_FILTER_USAGE_PERCENTAGE", RESET_FILTER_USAGE_PERCENTAGE), 32)
	if err != nil {
		return nil, errors.Wrap(err, "RESET_FILTER_USAGE_PERCENTAGE")
	}
	i.maximumPercentageFilterUsage = float32(maximumPercentageFilterUsage)
	filterCapacity, err := strconv.ParseUint(utils.GetValueFromEnvironmentVariable("FILTER_CAPACITY", FILTER_CAPACITY), 10, 0)
	if err != nil || filterCapacity == 0 {
		return nil, errors.Errorf("FILTER_CAPACITY must be a positive integer")
	}
	i.filterCapacity = uint(filterCapacity)
	duplicationProbability, err := strconv.ParseFloat(utils.GetValueFromEnvironmentVariable("DUPLICATION_PROBABILITY", DUPLICATION_PROBABILITY), 64)
	if err != nil || duplicationProbability <= 0 || duplicationProbability >= 1 {
		return nil, errors.Errorf("DUPLICATION_PROBABILITY must be in (0, 1)")
	}
	i.duplicationProbability = duplicationProbability

	i.filters = map[string]*bloomFilter.BloomFilter{
		SourceEngine: bloomFilter.NewWithEstimates(i.filterCapacity, i.duplicationProbability),
		SourcePLDM:   bloomFilter.NewWithEstimates(i.filterCapacity, i.duplicationProbability),
	}

	duplicationFilterFunctionMapping := map[string]func(string, int, int64) bool{
		DUPLICATION_FILTER: func(string, int, int64) bool { return false },
		"1":                i.isSampleDuplicated,
	}
	enableDuplicationFilter := utils.GetValueFromEnvironmentVariable("DUPLICATION_FILTER", DUPLICATION_FILTER)
	filterFunction, ok := duplicationFilterFunctionMapping[enableDuplicationFilter]
	if !ok {
		return nil, errors.Errorf("DUPLICATION_FILTER must be 0 or 1, got %q", enableDuplicationFilter)
	}
	i.isSampleDuplicatedFunction = filterFunction

	i.actions = map[string]func(network.InMsg) error{
		network.BindingKeyPollingSet:   i.handlePollingSet,
		network.BindingKeyThresholdSet: i.handleThresholdSet,
	}
	return i, nil
}

// Run exports the caches every interval and serves control messages until
// ctx is done.
func (i *Integration) Run(ctx context.Context) error {
	msgChan := make(chan network.InMsg)
	if i.subscriber != nil {
		if err := i.subscriber.SubscribeToControlMessages(msgChan); err != nil {
			return errors.Wrap(err, "subscribe to control messages")
		}
	}
	i.log.Infof("exporting telemetry every %s", i.interval)

	tick := i.clock.After(i.interval)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg := <-msgChan:
			if err := i.HandleMessage(msg); err != nil {
				i.log.WithError(err).Warnf("control message %s", msg.RoutingKey)
			}
		case <-tick:
			if err := i.Transmit(i.Collect(ctx)); err != nil {
				i.log.WithError(err).Warn("export telemetry")
			}
			tick = i.clock.After(i.interval)
		}
	}
}

// Collect snapshots every cached reading without touching the hardware.
func (i *Integration) Collect(ctx context.Context) []entities.Sample {
	now := i.clock.Now().Unix()
	var samples []entities.Sample
	for _, d := range i.engine.Descriptors() {
		value, status, err := i.engine.Read(ctx, d.ID(), sensor.FromCache)
		if err != nil {
			continue
		}
		samples = append(samples, entities.Sample{
			SensorID:  int(d.ID()),
			Source:    SourceEngine,
			Status:    status.String(),
			Value:     value.Float(),
			Timestamp: now,
		})
	}
	if i.pldm == nil {
		return samples
	}
	for _, s := range i.pldm.Sensors() {
		updated := s.UpdateTime()
		if updated.IsZero() {
			continue
		}
		value, state, err := i.pldm.Engineering(s.ID())
		if err != nil {
			continue
		}
		samples = append(samples, entities.Sample{
			SensorID:  int(s.ID()),
			Source:    SourcePLDM,
			Status:    state.String(),
			Value:     value,
			Timestamp: updated.Unix(),
		})
	}
	return samples
}

// Transmit drops the samples already published and publishes the rest, one
// message per source. Samples only enter the duplication filter once their
// message is published.
func (i *Integration) Transmit(samples []entities.Sample) error {
	bySource := map[string][]entities.Sample{}
	var order []string
	for _, s := range samples {
		if i.isSampleDuplicatedFunction(s.Source, s.SensorID, s.Timestamp) {
			continue
		}
		if _, ok := bySource[s.Source]; !ok {
			order = append(order, s.Source)
		}
		bySource[s.Source] = append(bySource[s.Source], s)
	}

	for _, source := range order {
		if err := i.publisher.PublishSamples(source, bySource[source]); err != nil {
			return errors.Wrapf(err, "publish %s samples", source)
		}
		for _, s := range bySource[source] {
			i.updateDuplicationFilter(s.Source, s.SensorID, s.Timestamp)
		}
		i.log.Debugf("published %d %s samples", len(bySource[source]), source)
	}
	return nil
}

func duplicationKey(sensorID int, timestamp int64) []byte {
	return []byte(fmt.Sprintf("%d_%d", timestamp, sensorID))
}

func (i *Integration) filter(source string) *bloomFilter.BloomFilter {
	f, ok := i.filters[source]
	if !ok {
		f = bloomFilter.NewWithEstimates(i.filterCapacity, i.duplicationProbability)
		i.filters[source] = f
	}
	return f
}

func (i *Integration) isSampleDuplicated(source string, sensorID int, timestamp int64) bool {
	// Checks if the timestamp of the current sample is different from the previous ones.
	i.duplicationMutex.Lock()
	defer i.duplicationMutex.Unlock()
	return i.filter(source).Test(duplicationKey(sensorID, timestamp))
}

func (i *Integration) updateDuplicationFilter(source string, sensorID int, timestamp int64) {
	i.duplicationMutex.Lock()
	defer i.duplicationMutex.Unlock()
	i.resetDuplicationFilter(source)
	i.filter(source).Add(duplicationKey(sensorID, timestamp))
}

func (i *Integration) resetDuplicationFilter(source string) {
	f := i.filter(source)
	currentFilterUsage := float32(f.ApproximatedSize()) / float32(i.filterCapacity)
	if currentFilterUsage >= i.maximumPercentageFilterUsage {
		i.log.Debugf("%s duplication filter reset", source)
		f.ClearAll()
	}
}
