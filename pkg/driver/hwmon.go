//go:build !nohwmon

package driver

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/janael-pinheiro/bic-telemetry-golang/pkg/entities"
	"github.com/pkg/errors"
)

const defaultHwmonScale = 1000

// The hwmon driver reads a Linux hwmon attribute such as temp1_input. The
// attribute path comes from args["path"]; the value is divided by
// args["scale"] (1000 when unset, hwmon reports milli-units).
func init() {
	builtin = append(builtin, Capability{Kind: entities.KindHwmon, Init: initHwmon, Read: readHwmon})
}

func hwmonPath(cfg *entities.SensorConfig) (string, error) {
	path, ok := cfg.Args["path"]
	if !ok || path == "" {
		return "", errors.Errorf("sensor 0x%02x: hwmon driver needs a path argument", cfg.ID)
	}
	return filepath.Clean(path), nil
}

func hwmonScale(cfg *entities.SensorConfig) (float64, error) {
	raw, ok := cfg.Args["scale"]
	if !ok {
		return defaultHwmonScale, nil
	}
	scale, err := strconv.ParseFloat(raw, 64)
	if err != nil || scale == 0 {
		return 0, errors.Errorf("sensor 0x%02x: invalid hwmon scale %q", cfg.ID, raw)
	}
	return scale, nil
}

func initHwmon(_ context.Context, cfg *entities.SensorConfig) error {
	path, err := hwmonPath(cfg)
	if err != nil {
		return err
	}
	if _, err := hwmonScale(cfg); err != nil {
		return err
	}
	if _, err := os.Stat(path); err != nil {
		return errors.Wrap(err, "hwmon attribute")
	}
	return nil
}

func readHwmon(ctx context.Context, cfg *entities.SensorConfig) (entities.Reading, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	path, err := hwmonPath(cfg)
	if err != nil {
		return 0, &StatusError{Status: entities.UnspecifiedError, Err: err}
	}
	scale, err := hwmonScale(cfg)
	if err != nil {
		return 0, &StatusError{Status: entities.UnspecifiedError, Err: err}
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return 0, errors.Wrapf(ErrFailToAccess, "read %s: %v", path, err)
	}
	raw, err := strconv.ParseInt(strings.TrimSpace(string(content)), 10, 64)
	if err != nil {
		return 0, errors.Wrapf(ErrFailToAccess, "parse %s: %v", path, err)
	}
	value := float64(raw) / scale
	if !entities.ReadingInRange(value) {
		return 0, &StatusError{
			Status: entities.UnspecifiedError,
			Err:    errors.Errorf("%s: %g out of reading range", path, value),
		}
	}
	return entities.ReadingFromFloat(value), nil
}
