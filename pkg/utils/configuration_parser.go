package utils

import (
	"os"
	"path/filepath"

	"github.com/janael-pinheiro/bic-telemetry-golang/pkg/entities"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

type config interface {
	entities.PlatformConfig | []entities.SensorConfig | []entities.FullSensorRecord
}

func readTextFile(filepathName string) ([]byte, error) {
	fileContent, err := os.ReadFile(filepath.Clean(filepathName))
	return fileContent, err
}

func ConfigurationParser[T config](filepathName string, configEntity T) (T, error) {
	fileContent, err := readTextFile(filepath.Clean(filepathName))
	if err != nil {
		return configEntity, errors.Wrap(err, "read configuration")
	}

	err = yaml.Unmarshal(fileContent, &configEntity)
	if err != nil {
		return configEntity, errors.Wrapf(err, "parse configuration %s", filepathName)
	}
	return configEntity, nil
}

// GetValueFromEnvironmentVariable returns the variable value, or defaultValue
// when it is unset or empty.
func GetValueFromEnvironmentVariable(variableName, defaultValue string) string {
	value := os.Getenv(variableName)
	if value != "" {
		return value
	}
	return defaultValue
}
