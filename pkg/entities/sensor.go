package entities

import (
	"math"
	"time"
)

// SensorID is the sensor number used as the external addressing key.
type SensorID uint8

// SensorNumMax is the largest valid sensor number plus one. 0xFF is reserved.
const SensorNumMax = 0xFF

// Kind selects a driver registry entry.
type Kind string

const (
	KindStatic Kind = "static"
	KindHwmon  Kind = "hwmon"
)

type Location struct {
	Bus     uint8 `yaml:"bus"`
	Address uint8 `yaml:"address"`
	Offset  uint8 `yaml:"offset"`
}

// SensorConfig is the static part of a sensor descriptor, as loaded from the
// platform configuration.
type SensorConfig struct {
	ID             SensorID          `yaml:"id"`
	Name           string            `yaml:"name"`
	Kind           Kind              `yaml:"kind"`
	Location       Location          `yaml:"location"`
	Access         string            `yaml:"access"`
	PollInterval   time.Duration     `yaml:"pollInterval"`
	DisablePolling bool              `yaml:"disablePolling"`
	Args           map[string]string `yaml:"args"`
}

type MonitorGroupConfig struct {
	Name    string     `yaml:"name"`
	Access  string     `yaml:"access"`
	Sensors []SensorID `yaml:"sensors"`
}

// Reading is a packed sensor value: the low 16 bits hold the signed integer
// part and the high 16 bits hold the signed fraction in thousandths. The
// fraction always carries the same sign as the value.
type Reading uint32

// ReadingFail is the sentinel stored in a cache that holds no valid value.
const ReadingFail Reading = 0xFF

func NewReading(integer, fraction int16) Reading {
	return Reading(uint32(uint16(integer)) | uint32(uint16(fraction))<<16)
}

// Bounds of a packed reading.
const (
	ReadingMax = math.MaxInt16 + 0.999
	ReadingMin = math.MinInt16 - 0.999
)

// ReadingInRange reports whether v fits a packed reading without clamping.
func ReadingInRange(v float64) bool {
	return v >= ReadingMin && v <= ReadingMax
}

// ReadingFromFloat packs v, rounding the fraction to the nearest thousandth.
// Values outside [ReadingMin, ReadingMax] saturate at the nearest bound.
func ReadingFromFloat(v float64) Reading {
	switch {
	case math.IsNaN(v):
		return ReadingFail
	case v >= ReadingMax:
		return NewReading(math.MaxInt16, 999)
	case v <= ReadingMin:
		return NewReading(math.MinInt16, -999)
	}
	integer := math.Trunc(v)
	fraction := math.Round((v - integer) * 1000)
	if fraction >= 1000 {
		integer++
		fraction -= 1000
	} else if fraction <= -1000 {
		integer--
		fraction += 1000
	}
	switch {
	case integer > math.MaxInt16:
		return NewReading(math.MaxInt16, 999)
	case integer < math.MinInt16:
		return NewReading(math.MinInt16, -999)
	}
	return NewReading(int16(integer), int16(fraction))
}

func (r Reading) Integer() int16 {
	return int16(uint16(r))
}

func (r Reading) Fraction() int16 {
	return int16(uint16(r >> 16))
}

func (r Reading) Float() float64 {
	return float64(r.Integer()) + float64(r.Fraction())/1000
}
