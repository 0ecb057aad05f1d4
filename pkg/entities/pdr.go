package entities

// PDR type codes (DSP0248).
const (
	PDRTypeNumericSensor       uint8 = 0x02
	PDRTypeSensorAuxiliaryName uint8 = 0x06
	PDRTypeEntityAuxiliaryName uint8 = 0x10

	PDRHeaderVersion uint8 = 0x01
	PDRHeaderSize          = 10

	// MaxAuxNameLen is the size of a name buffer in UTF-16 code units,
	// including the terminating zero.
	MaxAuxNameLen = 40
)

// PDRSensorInit values for NumericSensorPDR.SensorInit.
const (
	PDRSensorNoInit  uint8 = 0x00
	PDRSensorUseInit uint8 = 0x01
	PDRSensorEnable  uint8 = 0x02
	PDRSensorDisable uint8 = 0x03
)

type PDRHeader struct {
	RecordHandle uint32 `yaml:"recordHandle"`
	Version      uint8  `yaml:"version"`
	Type         uint8  `yaml:"type"`
	ChangeNumber uint16 `yaml:"changeNumber"`
	DataLength   uint16 `yaml:"dataLength"`
}

// NumericSensorPDR carries the metadata of one numeric sensor. Threshold
// fields are stored in raw units; see pdr.Repository for conversions.
type NumericSensorPDR struct {
	Header                  PDRHeader `yaml:"header"`
	TerminusHandle          uint16    `yaml:"terminusHandle"`
	SensorID                uint16    `yaml:"sensorId"`
	EntityType              uint16    `yaml:"entityType"`
	EntityInstance          uint16    `yaml:"entityInstance"`
	ContainerID             uint16    `yaml:"containerId"`
	SensorInit              uint8     `yaml:"sensorInit"`
	SensorAuxNamesPDR       uint8     `yaml:"sensorAuxNamesPdr"`
	BaseUnit                uint8     `yaml:"baseUnit"`
	UnitModifier            int8      `yaml:"unitModifier"`
	RateUnit                uint8     `yaml:"rateUnit"`
	BaseOEMUnitHandle       uint8     `yaml:"baseOemUnitHandle"`
	AuxUnit                 uint8     `yaml:"auxUnit"`
	AuxUnitModifier         int8      `yaml:"auxUnitModifier"`
	AuxRateUnit             uint8     `yaml:"auxRateUnit"`
	Rel                     uint8     `yaml:"rel"`
	AuxOEMUnitHandle        uint8     `yaml:"auxOemUnitHandle"`
	IsLinear                uint8     `yaml:"isLinear"`
	SensorDataSize          uint8     `yaml:"sensorDataSize"`
	Resolution              float32   `yaml:"resolution"`
	Offset                  float32   `yaml:"offset"`
	Accuracy                uint16    `yaml:"accuracy"`
	PlusTolerance           uint8     `yaml:"plusTolerance"`
	MinusTolerance          uint8     `yaml:"minusTolerance"`
	Hysteresis              uint32    `yaml:"hysteresis"`
	SupportedThresholds     uint8     `yaml:"supportedThresholds"`
	ThresholdVolatility     uint8     `yaml:"thresholdVolatility"`
	StateTransitionInterval float32   `yaml:"stateTransitionInterval"`
	UpdateInterval          float32   `yaml:"updateInterval"`
	MaxReadable             uint32    `yaml:"maxReadable"`
	MinReadable             uint32    `yaml:"minReadable"`
	RangeFieldFormat        uint8     `yaml:"rangeFieldFormat"`
	RangeFieldSupport       uint8     `yaml:"rangeFieldSupport"`
	NominalValue            uint32    `yaml:"nominalValue"`
	NormalMax               uint32    `yaml:"normalMax"`
	NormalMin               uint32    `yaml:"normalMin"`
	WarningHigh             uint32    `yaml:"warningHigh"`
	WarningLow              uint32    `yaml:"warningLow"`
	CriticalHigh            uint32    `yaml:"criticalHigh"`
	CriticalLow             uint32    `yaml:"criticalLow"`
	FatalHigh               uint32    `yaml:"fatalHigh"`
	FatalLow                uint32    `yaml:"fatalLow"`
}

// SensorAuxiliaryNamesPDR names one sensor. SensorName holds UTF-16 code
// units, zero terminated.
type SensorAuxiliaryNamesPDR struct {
	Header          PDRHeader
	TerminusHandle  uint16
	SensorID        uint16
	SensorCount     uint8
	NameStringCount uint8
	NameLanguageTag [3]byte
	SensorName      [MaxAuxNameLen]uint16
}

type EntityAuxiliaryNamesPDR struct {
	Header          PDRHeader
	EntityType      uint16
	EntityInstance  uint16
	ContainerID     uint16
	SharedNameCount uint8
	NameStringCount uint8
	NameLanguageTag [3]byte
	EntityName      [MaxAuxNameLen]uint16
}

// PldmSensorConfig couples a sensor descriptor with its numeric PDR for the
// PLDM poll threads.
type PldmSensorConfig struct {
	PDR    NumericSensorPDR `yaml:"pdr"`
	Sensor SensorConfig     `yaml:"sensor"`
}

type PldmThreadConfig struct {
	ID      int                `yaml:"id"`
	Name    string             `yaml:"name"`
	Sensors []PldmSensorConfig `yaml:"sensors"`
}

type AuxNameConfig struct {
	SensorID uint16 `yaml:"sensorId"`
	Name     string `yaml:"name"`
}

type EntityNameConfig struct {
	EntityType     uint16 `yaml:"entityType"`
	EntityInstance uint16 `yaml:"entityInstance"`
	ContainerID    uint16 `yaml:"containerId"`
	Name           string `yaml:"name"`
}
