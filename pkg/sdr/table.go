// Package sdr keeps the IPMI full sensor record table.
package sdr

import (
	"sync"

	"github.com/janael-pinheiro/bic-telemetry-golang/pkg/entities"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	EndID     uint16 = 0xFFFF
	InvalidID uint16 = 0xFFFE

	stringTypeASCII8 uint8 = 0xC0
)

type Threshold uint8

const (
	ThresholdUNR Threshold = iota
	ThresholdUCR
	ThresholdUNC
	ThresholdLNR
	ThresholdLCR
	ThresholdLNC
)

type MBRField uint8

const (
	FieldM MBRField = iota
	FieldB
	FieldR
)

// Reservation selects one of the two independent reservation counters.
type Reservation uint8

const (
	ReservationTable0 Reservation = iota
	ReservationTable1
)

var (
	ErrDuplicate      = errors.New("sensor already has a record")
	ErrNoRecord       = errors.New("no record for sensor")
	ErrInvalidField   = errors.New("invalid field")
	ErrInvalidRecord  = errors.New("invalid record id")
	errNoReservations = errors.New("invalid reservation table")
)

// Table is the SDR repository. It is safe for concurrent use.
type Table struct {
	mu           sync.RWMutex
	records      []entities.FullSensorRecord
	index        map[entities.SensorID]int
	reservations [2]uint16
	log          *logrus.Entry
}

// NewTable assigns record ids 0..n-1 in order. Records with a sensor number
// already present are dropped.
func NewTable(records []entities.FullSensorRecord, log *logrus.Entry) *Table {
	t := &Table{index: map[entities.SensorID]int{}, log: log}
	for _, r := range records {
		if err := t.Add(r); err != nil {
			log.WithError(err).Warn("sdr record skipped")
		}
	}
	return t
}

// Add appends a record with the next record id.
func (t *Table) Add(r entities.FullSensorRecord) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.index[r.SensorNum]; ok {
		return errors.Wrapf(ErrDuplicate, "sensor 0x%02x", r.SensorNum)
	}
	if r.Version == 0 {
		r.Version = entities.SDRVersion
	}
	if r.Type == 0 {
		r.Type = entities.SDRTypeFullSensor
	}
	r.RecordID = uint16(len(t.records))
	r.IDLen = stringTypeASCII8 | uint8(len(r.IDStr))
	r.RecordLen = entities.SDRFullSensorHeaderLen + uint8(len(r.IDStr))
	t.index[r.SensorNum] = len(t.records)
	t.records = append(t.records, r)
	return nil
}

func (t *Table) Count() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.records)
}

// Lookup returns the record of a sensor.
func (t *Table) Lookup(sensor entities.SensorID) (entities.FullSensorRecord, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	i, ok := t.index[sensor]
	if !ok {
		return entities.FullSensorRecord{}, false
	}
	return t.records[i], true
}

func (t *Table) Has(sensor entities.SensorID) bool {
	_, ok := t.Lookup(sensor)
	return ok
}

// Record returns the record by record id.
func (t *Table) Record(id uint16) (entities.FullSensorRecord, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if int(id) >= len(t.records) {
		return entities.FullSensorRecord{}, errors.Wrapf(ErrInvalidRecord, "record 0x%04x", id)
	}
	return t.records[id], nil
}

// NextRecordID returns the id following current, EndID after the last
// record and InvalidID past it.
func (t *Table) NextRecordID(current uint16) uint16 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if len(t.records) == 0 {
		return InvalidID
	}
	last := uint16(len(t.records) - 1)
	switch {
	case current < last:
		return current + 1
	case current == last:
		return EndID
	default:
		return InvalidID
	}
}

// CheckRecordID reports whether id is within the repository.
func (t *Table) CheckRecordID(id uint16) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return int(id) < len(t.records)
}

// Reserve returns a fresh reservation id for the table.
func (t *Table) Reserve(table Reservation) (uint16, error) {
	if int(table) >= len(t.reservations) {
		return 0, errNoReservations
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.reservations[table]++
	return t.reservations[table], nil
}

// CheckReservation reports whether id is the current reservation.
func (t *Table) CheckReservation(id uint16, table Reservation) bool {
	if int(table) >= len(t.reservations) {
		return false
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.reservations[table] == id
}

func (t *Table) ChangeThreshold(sensor entities.SensorID, threshold Threshold, value uint8) error {
	return t.modify(sensor, func(r *entities.FullSensorRecord) error {
		switch threshold {
		case ThresholdUNR:
			r.UNR = value
		case ThresholdUCR:
			r.UCR = value
		case ThresholdUNC:
			r.UNC = value
		case ThresholdLNR:
			r.LNR = value
		case ThresholdLCR:
			r.LCR = value
		case ThresholdLNC:
			r.LNC = value
		default:
			return errors.Wrapf(ErrInvalidField, "threshold %d", threshold)
		}
		return nil
	})
}

// ChangeMBR updates a conversion coefficient. For M and B the high byte of
// value lands in the top two bits of the tolerance and accuracy fields.
func (t *Table) ChangeMBR(sensor entities.SensorID, field MBRField, value uint16) error {
	high := uint8(((value >> 8) << 6) & 0xFF)
	return t.modify(sensor, func(r *entities.FullSensorRecord) error {
		switch field {
		case FieldM:
			r.M = uint8(value)
			r.MTolerance = high
		case FieldB:
			r.B = uint8(value)
			r.BAccuracy = high
		case FieldR:
			r.RexpBexp = uint8(value)
		default:
			return errors.Wrapf(ErrInvalidField, "mbr field %d", field)
		}
		return nil
	})
}

func (t *Table) modify(sensor entities.SensorID, fn func(*entities.FullSensorRecord) error) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	i, ok := t.index[sensor]
	if !ok {
		return errors.Wrapf(ErrNoRecord, "sensor 0x%02x", sensor)
	}
	return fn(&t.records[i])
}

// RawReading converts an engineering value of sensor to its one-byte reading.
func (t *Table) RawReading(sensor entities.SensorID, value int32) (uint8, error) {
	r, ok := t.Lookup(sensor)
	if !ok {
		return 0, errors.Wrapf(ErrNoRecord, "sensor 0x%02x", sensor)
	}
	return uint8(CalculateMBR(&r, value) & 0xFF), nil
}

// AccurateRawReading is the two-byte variant of RawReading.
func (t *Table) AccurateRawReading(sensor entities.SensorID, value int32) (uint16, error) {
	r, ok := t.Lookup(sensor)
	if !ok {
		return 0, errors.Wrapf(ErrNoRecord, "sensor 0x%02x", sensor)
	}
	return uint16(CalculateAccurateMBR(&r, value) & 0xFFFF), nil
}

func (t *Table) EngineeringValue(sensor entities.SensorID, raw uint8) (float32, error) {
	r, ok := t.Lookup(sensor)
	if !ok {
		return 0, errors.Wrapf(ErrNoRecord, "sensor 0x%02x", sensor)
	}
	return ConvertMBRToReading(&r, raw), nil
}
