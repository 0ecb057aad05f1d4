package sensor

import (
	"context"
	"sync"

	"github.com/janael-pinheiro/bic-telemetry-golang/pkg/driver"
	"github.com/janael-pinheiro/bic-telemetry-golang/pkg/entities"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

const fakeKind entities.Kind = "fake"

// scriptedDriver returns the queued errors in order, then succeeds with value.
type scriptedDriver struct {
	mu      sync.Mutex
	value   entities.Reading
	results []error
	reads   map[entities.SensorID]int
	inits   int
	initErr error
}

func newScriptedDriver(value entities.Reading) *scriptedDriver {
	return &scriptedDriver{value: value, reads: map[entities.SensorID]int{}}
}

func (s *scriptedDriver) capability() driver.Capability {
	return driver.Capability{Kind: fakeKind, Init: s.init, Read: s.read}
}

func (s *scriptedDriver) init(context.Context, *entities.SensorConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inits++
	return s.initErr
}

func (s *scriptedDriver) read(_ context.Context, cfg *entities.SensorConfig) (entities.Reading, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reads[cfg.ID]++
	if len(s.results) > 0 {
		err := s.results[0]
		s.results = s.results[1:]
		if err != nil {
			return 0, err
		}
	}
	return s.value, nil
}

func (s *scriptedDriver) fail(errs ...error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = append(s.results, errs...)
}

func (s *scriptedDriver) setValue(v entities.Reading) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.value = v
}

func (s *scriptedDriver) readCount(id entities.SensorID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reads[id]
}

func nullLogger() *logrus.Entry {
	logger, _ := test.NewNullLogger()
	return logrus.NewEntry(logger)
}
