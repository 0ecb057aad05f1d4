package driver

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/janael-pinheiro/bic-telemetry-golang/pkg/entities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGivenBuiltinRegistryThenLookupCompiledKinds(t *testing.T) {
	registry := Builtin()
	_, ok := registry.Lookup(entities.KindStatic)
	assert.True(t, ok)
	_, ok = registry.Lookup(entities.KindHwmon)
	assert.True(t, ok)
	_, ok = registry.Lookup("tmp75")
	assert.False(t, ok)
}

func TestGivenSameKindThenRegisterReplacesEntry(t *testing.T) {
	first := Capability{Kind: "tmp75", Read: func(context.Context, *entities.SensorConfig) (entities.Reading, error) {
		return entities.NewReading(1, 0), nil
	}}
	second := Capability{Kind: "tmp75", Read: func(context.Context, *entities.SensorConfig) (entities.Reading, error) {
		return entities.NewReading(2, 0), nil
	}}
	registry := NewRegistry(first, second)
	assert.Equal(t, []entities.Kind{"tmp75"}, registry.Kinds())

	capability, ok := registry.Lookup("tmp75")
	require.True(t, ok)
	reading, err := capability.Read(context.Background(), &entities.SensorConfig{})
	require.NoError(t, err)
	assert.Equal(t, int16(2), reading.Integer())
}

func TestGivenDriverErrorThenMapToStatus(t *testing.T) {
	assert.Equal(t, entities.ReadSuccess, StatusOf(nil))
	assert.Equal(t, entities.FailToAccess, StatusOf(ErrFailToAccess))
	assert.Equal(t, entities.FailToAccess, StatusOf(errors.Join(errors.New("bus 2"), ErrFailToAccess)))
	assert.Equal(t, entities.NotPresent, StatusOf(&StatusError{Status: entities.NotPresent}))
	assert.Equal(t, entities.UnspecifiedError, StatusOf(errors.New("boom")))
}

func TestGivenStaticValueThenReadReturnsIt(t *testing.T) {
	cfg := &entities.SensorConfig{ID: 1, Kind: entities.KindStatic, Args: map[string]string{"value": "-12.5"}}
	require.NoError(t, initStatic(context.Background(), cfg))
	reading, err := readStatic(context.Background(), cfg)
	require.NoError(t, err)
	assert.InDelta(t, -12.5, reading.Float(), 1e-9)
}

func TestGivenStaticWithoutValueThenInitFails(t *testing.T) {
	cfg := &entities.SensorConfig{ID: 1, Kind: entities.KindStatic}
	assert.Error(t, initStatic(context.Background(), cfg))
	_, err := readStatic(context.Background(), cfg)
	assert.Equal(t, entities.UnspecifiedError, StatusOf(err))
}

func TestGivenHwmonAttributeThenReadScaledValue(t *testing.T) {
	path := filepath.Join(t.TempDir(), "temp1_input")
	require.NoError(t, os.WriteFile(path, []byte("45250\n"), 0o600))
	cfg := &entities.SensorConfig{ID: 2, Kind: entities.KindHwmon, Args: map[string]string{"path": path}}

	require.NoError(t, initHwmon(context.Background(), cfg))
	reading, err := readHwmon(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, int16(45), reading.Integer())
	assert.Equal(t, int16(250), reading.Fraction())
}

func TestGivenHwmonValueOutsideReadingRangeThenUnspecifiedError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "power1_input")
	require.NoError(t, os.WriteFile(path, []byte("40000000\n"), 0o600))
	cfg := &entities.SensorConfig{ID: 4, Kind: entities.KindHwmon, Args: map[string]string{"path": path}}

	_, err := readHwmon(context.Background(), cfg)
	assert.Equal(t, entities.UnspecifiedError, StatusOf(err))

	require.NoError(t, os.WriteFile(path, []byte("32767999\n"), 0o600))
	reading, err := readHwmon(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, int16(32767), reading.Integer())
	assert.Equal(t, int16(999), reading.Fraction())
}

func TestGivenStaticValueOutsideReadingRangeThenUnspecifiedError(t *testing.T) {
	cfg := &entities.SensorConfig{ID: 1, Kind: entities.KindStatic, Args: map[string]string{"value": "-40000"}}
	_, err := readStatic(context.Background(), cfg)
	assert.Equal(t, entities.UnspecifiedError, StatusOf(err))
}

func TestGivenMissingHwmonAttributeThenFailToAccess(t *testing.T) {
	cfg := &entities.SensorConfig{ID: 2, Kind: entities.KindHwmon, Args: map[string]string{"path": filepath.Join(t.TempDir(), "absent")}}
	assert.Error(t, initHwmon(context.Background(), cfg))
	_, err := readHwmon(context.Background(), cfg)
	assert.Equal(t, entities.FailToAccess, StatusOf(err))
}

func TestGivenInvalidHwmonScaleThenInitFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in1_input")
	require.NoError(t, os.WriteFile(path, []byte("1200"), 0o600))
	cfg := &entities.SensorConfig{ID: 3, Kind: entities.KindHwmon, Args: map[string]string{"path": path, "scale": "0"}}
	assert.Error(t, initHwmon(context.Background(), cfg))
}
