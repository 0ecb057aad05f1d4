//go:build !nostatic

package driver

import (
	"context"
	"strconv"

	"github.com/janael-pinheiro/bic-telemetry-golang/pkg/entities"
	"github.com/pkg/errors"
)

// The static driver reports the fixed value in args["value"]. It backs
// virtual sensors and bring-up configurations.
func init() {
	builtin = append(builtin, Capability{Kind: entities.KindStatic, Init: initStatic, Read: readStatic})
}

func staticValue(cfg *entities.SensorConfig) (float64, error) {
	raw, ok := cfg.Args["value"]
	if !ok {
		return 0, errors.Errorf("sensor 0x%02x: static driver needs a value argument", cfg.ID)
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "sensor 0x%02x: static value", cfg.ID)
	}
	return value, nil
}

func initStatic(_ context.Context, cfg *entities.SensorConfig) error {
	_, err := staticValue(cfg)
	return err
}

func readStatic(_ context.Context, cfg *entities.SensorConfig) (entities.Reading, error) {
	value, err := staticValue(cfg)
	if err != nil {
		return 0, &StatusError{Status: entities.UnspecifiedError, Err: err}
	}
	if !entities.ReadingInRange(value) {
		return 0, &StatusError{
			Status: entities.UnspecifiedError,
			Err:    errors.Errorf("sensor 0x%02x: static value %g out of reading range", cfg.ID, value),
		}
	}
	return entities.ReadingFromFloat(value), nil
}
