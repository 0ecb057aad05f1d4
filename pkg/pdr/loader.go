package pdr

import (
	"github.com/janael-pinheiro/bic-telemetry-golang/pkg/entities"
)

var englishTag = [3]byte{'e', 'n', 0}

// ConfigLoader serves the records described by the platform configuration.
// Numeric sensor records come from the PLDM threads in thread order.
type ConfigLoader struct {
	threads     []entities.PldmThreadConfig
	sensorNames []entities.AuxNameConfig
	entityNames []entities.EntityNameConfig
}

func NewConfigLoader(conf entities.PlatformConfig) *ConfigLoader {
	return &ConfigLoader{
		threads:     conf.PldmThreads,
		sensorNames: conf.SensorNames,
		entityNames: conf.EntityNames,
	}
}

func (l *ConfigLoader) Count(pdrType uint8) int {
	switch pdrType {
	case entities.PDRTypeNumericSensor:
		total := 0
		for _, t := range l.threads {
			total += len(t.Sensors)
		}
		return total
	case entities.PDRTypeSensorAuxiliaryName:
		return len(l.sensorNames)
	case entities.PDRTypeEntityAuxiliaryName:
		return len(l.entityNames)
	default:
		return 0
	}
}

func (l *ConfigLoader) LoadNumericSensors(dst []entities.NumericSensorPDR) {
	i := 0
	for _, t := range l.threads {
		for _, s := range t.Sensors {
			if i == len(dst) {
				return
			}
			dst[i] = s.PDR
			i++
		}
	}
}

func (l *ConfigLoader) LoadSensorAuxNames(dst []entities.SensorAuxiliaryNamesPDR) {
	for i := range dst {
		if i == len(l.sensorNames) {
			return
		}
		n := l.sensorNames[i]
		dst[i] = entities.SensorAuxiliaryNamesPDR{
			SensorID:        n.SensorID,
			SensorCount:     1,
			NameStringCount: 1,
			NameLanguageTag: englishTag,
			SensorName:      EncodeName(n.Name),
		}
	}
}

func (l *ConfigLoader) LoadEntityAuxNames(dst []entities.EntityAuxiliaryNamesPDR) {
	for i := range dst {
		if i == len(l.entityNames) {
			return
		}
		n := l.entityNames[i]
		dst[i] = entities.EntityAuxiliaryNamesPDR{
			EntityType:      n.EntityType,
			EntityInstance:  n.EntityInstance,
			ContainerID:     n.ContainerID,
			NameStringCount: 1,
			NameLanguageTag: englishTag,
			EntityName:      EncodeName(n.Name),
		}
	}
}
