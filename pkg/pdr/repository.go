// Package pdr builds and serves the platform descriptor record repository.
package pdr

import (
	"math"
	"sync"

	"github.com/janael-pinheiro/bic-telemetry-golang/pkg/entities"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// UnknownSensorName is returned by SensorName when the sensor has no name
// record.
const UnknownSensorName = "Unknown sensor"

const nameSeparator = "_"

// rangeFormatSint32 marks threshold fields holding signed values.
const rangeFormatSint32 uint8 = 5

var (
	ErrInvalidHandle  = errors.New("invalid record handle")
	ErrNotFound       = errors.New("sensor has no record")
	ErrBufferTooSmall = errors.New("name buffer too small")
	ErrOutOfRange     = errors.New("threshold out of range")
)

// Loader is the platform side of the repository build.
type Loader interface {
	Count(pdrType uint8) int
	LoadNumericSensors(dst []entities.NumericSensorPDR)
	LoadSensorAuxNames(dst []entities.SensorAuxiliaryNamesPDR)
	LoadEntityAuxNames(dst []entities.EntityAuxiliaryNamesPDR)
}

type State uint8

const (
	StateAvailable State = iota
	StateUpdateInProgress
	StateFailed
)

// Info describes the repository, as returned by GetPDRRepositoryInfo.
type Info struct {
	State             State
	RecordCount       uint32
	RepositorySize    uint32
	LargestRecordSize uint32
}

// Repository holds the records in handle order: numeric sensors, sensor
// names, then entity names.
type Repository struct {
	mu          sync.RWMutex
	numeric     []entities.NumericSensorPDR
	sensorNames []entities.SensorAuxiliaryNamesPDR
	entityNames []entities.EntityAuxiliaryNamesPDR
	info        Info
	log         *logrus.Entry
}

// Build loads every record kind from the platform and assigns handles.
func Build(loader Loader, log *logrus.Entry) *Repository {
	r := &Repository{log: log}
	r.numeric = make([]entities.NumericSensorPDR, loader.Count(entities.PDRTypeNumericSensor))
	r.sensorNames = make([]entities.SensorAuxiliaryNamesPDR, loader.Count(entities.PDRTypeSensorAuxiliaryName))
	r.entityNames = make([]entities.EntityAuxiliaryNamesPDR, loader.Count(entities.PDRTypeEntityAuxiliaryName))
	loader.LoadNumericSensors(r.numeric)
	loader.LoadSensorAuxNames(r.sensorNames)
	loader.LoadEntityAuxNames(r.entityNames)

	var handle uint32
	for i := range r.numeric {
		rec := &r.numeric[i]
		fixHeader(&rec.Header, handle, entities.PDRTypeNumericSensor, numericSensorDataLength)
		r.account(NumericSensorPDRSize)
		handle++
	}
	for i := range r.sensorNames {
		rec := &r.sensorNames[i]
		fixHeader(&rec.Header, handle, entities.PDRTypeSensorAuxiliaryName, sensorAuxNamesDataLength)
		copy(rec.SensorName[:], ToWire(rec.SensorName[:]))
		r.account(SensorAuxNamesPDRSize)
		handle++
	}
	for i := range r.entityNames {
		rec := &r.entityNames[i]
		size := entityAuxNamesSize(rec)
		fixHeader(&rec.Header, handle, entities.PDRTypeEntityAuxiliaryName, uint16(size-entities.PDRHeaderSize))
		copy(rec.EntityName[:], ToWire(rec.EntityName[:]))
		r.account(size)
		handle++
	}
	r.info.State = StateAvailable
	log.Infof("pdr repository ready: %d numeric, %d sensor names, %d entity names",
		len(r.numeric), len(r.sensorNames), len(r.entityNames))
	return r
}

func fixHeader(h *entities.PDRHeader, handle uint32, pdrType uint8, dataLength uint16) {
	h.RecordHandle = handle
	h.Type = pdrType
	h.DataLength = dataLength
	if h.Version == 0 {
		h.Version = entities.PDRHeaderVersion
	}
}

func (r *Repository) account(size int) {
	r.info.RecordCount++
	r.info.RepositorySize += uint32(size)
	if uint32(size) > r.info.LargestRecordSize {
		r.info.LargestRecordSize = uint32(size)
	}
}

func (r *Repository) Info() Info {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.info
}

// RecordByHandle returns the on-wire bytes of a record.
func (r *Repository) RecordByHandle(handle uint32) ([]byte, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	numeric := uint32(len(r.numeric))
	names := numeric + uint32(len(r.sensorNames))
	entityNames := names + uint32(len(r.entityNames))
	switch {
	case handle < numeric:
		return encode(&r.numeric[handle], NumericSensorPDRSize), nil
	case handle < names:
		return encode(&r.sensorNames[handle-numeric], SensorAuxNamesPDRSize), nil
	case handle < entityNames:
		rec := &r.entityNames[handle-names]
		return encode(rec, entityAuxNamesSize(rec)), nil
	default:
		return nil, errors.Wrapf(ErrInvalidHandle, "handle %d", handle)
	}
}

// NextRecordHandle returns the handle following handle, or 0 after the last.
func (r *Repository) NextRecordHandle(handle uint32) uint32 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if handle+1 >= r.info.RecordCount {
		return 0
	}
	return handle + 1
}

// SensorName composes "<entity>_<sensor>" for sensorID, cut to maxLen bytes
// when maxLen > 0. Without a name record it returns UnknownSensorName and
// ErrNotFound.
func (r *Repository) SensorName(sensorID uint16, maxLen int) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var sensorName *entities.SensorAuxiliaryNamesPDR
	for i := range r.sensorNames {
		if r.sensorNames[i].SensorID == sensorID {
			sensorName = &r.sensorNames[i]
			break
		}
	}
	if sensorName == nil {
		return UnknownSensorName, errors.Wrapf(ErrNotFound, "sensor 0x%x name", sensorID)
	}

	name, err := decodeWireName(sensorName.SensorName[:])
	if err != nil {
		return UnknownSensorName, err
	}
	if entity := r.entityFor(sensorID); entity != nil {
		entityName, err := decodeWireName(entity.EntityName[:])
		if err != nil {
			return UnknownSensorName, err
		}
		if entityName != "" {
			name = entityName + nameSeparator + name
		}
	}
	truncated := truncateUTF8(name, maxLen)
	if truncated == "" && name != "" {
		return "", errors.Wrapf(ErrBufferTooSmall, "%d bytes", maxLen)
	}
	return truncated, nil
}

// entityFor returns the entity name record matching the sensor entity, or
// the first entity record.
func (r *Repository) entityFor(sensorID uint16) *entities.EntityAuxiliaryNamesPDR {
	if len(r.entityNames) == 0 {
		return nil
	}
	if numeric := r.numericByID(sensorID); numeric != nil {
		for i := range r.entityNames {
			e := &r.entityNames[i]
			if e.EntityType == numeric.EntityType && e.EntityInstance == numeric.EntityInstance &&
				e.ContainerID == numeric.ContainerID {
				return e
			}
		}
	}
	return &r.entityNames[0]
}

func (r *Repository) numericByID(sensorID uint16) *entities.NumericSensorPDR {
	for i := range r.numeric {
		if r.numeric[i].SensorID == sensorID {
			return &r.numeric[i]
		}
	}
	return nil
}

// Numeric returns a copy of the numeric sensor record of sensorID.
func (r *Repository) Numeric(sensorID uint16) (entities.NumericSensorPDR, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if rec := r.numericByID(sensorID); rec != nil {
		return *rec, true
	}
	return entities.NumericSensorPDR{}, false
}

func (r *Repository) SetCriticalHigh(sensorID uint16, value float64) error {
	return r.setThreshold(sensorID, value, func(rec *entities.NumericSensorPDR) *uint32 { return &rec.CriticalHigh })
}

func (r *Repository) SetCriticalLow(sensorID uint16, value float64) error {
	return r.setThreshold(sensorID, value, func(rec *entities.NumericSensorPDR) *uint32 { return &rec.CriticalLow })
}

// CriticalHighLow returns both critical thresholds in engineering units.
func (r *Repository) CriticalHighLow(sensorID uint16) (high, low float64, err error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec := r.numericByID(sensorID)
	if rec == nil {
		return 0, 0, errors.Wrapf(ErrNotFound, "sensor 0x%x thresholds", sensorID)
	}
	return fromRaw(rec, rec.CriticalHigh), fromRaw(rec, rec.CriticalLow), nil
}

func (r *Repository) CriticalHigh(sensorID uint16) (float64, error) {
	high, _, err := r.CriticalHighLow(sensorID)
	return high, err
}

func (r *Repository) CriticalLow(sensorID uint16) (float64, error) {
	_, low, err := r.CriticalHighLow(sensorID)
	return low, err
}

func (r *Repository) setThreshold(sensorID uint16, value float64, field func(*entities.NumericSensorPDR) *uint32) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec := r.numericByID(sensorID)
	if rec == nil {
		return errors.Wrapf(ErrNotFound, "sensor 0x%x thresholds", sensorID)
	}
	raw, err := toRaw(rec, value)
	if err != nil {
		return errors.Wrapf(err, "sensor 0x%x", sensorID)
	}
	*field(rec) = raw
	r.log.Infof("sensor 0x%x threshold set to %g", sensorID, value)
	return nil
}

// toRaw stores value * 10^-unit_modifier in the record range format.
func toRaw(rec *entities.NumericSensorPDR, value float64) (uint32, error) {
	scaled := math.Round(value * math.Pow10(-int(rec.UnitModifier)))
	if rec.RangeFieldFormat == rangeFormatSint32 {
		if scaled < math.MinInt32 || scaled > math.MaxInt32 {
			return 0, ErrOutOfRange
		}
		return uint32(int32(scaled)), nil
	}
	if scaled < 0 || scaled > math.MaxUint32 {
		return 0, ErrOutOfRange
	}
	return uint32(scaled), nil
}

func fromRaw(rec *entities.NumericSensorPDR, raw uint32) float64 {
	scale := math.Pow10(int(rec.UnitModifier))
	if rec.RangeFieldFormat == rangeFormatSint32 {
		return float64(int32(raw)) * scale
	}
	return float64(raw) * scale
}
