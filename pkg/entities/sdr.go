package entities

const (
	SDRTypeFullSensor uint8 = 0x01
	SDRVersion        uint8 = 0x51
	// SDRFullSensorHeaderLen is the length of a full sensor record body
	// without its ID string.
	SDRFullSensorHeaderLen uint8 = 0x2B
)

// FullSensorRecord is an IPMI type 01h sensor data record.
type FullSensorRecord struct {
	RecordID       uint16   `yaml:"-"`
	Version        uint8    `yaml:"version"`
	Type           uint8    `yaml:"type"`
	RecordLen      uint8    `yaml:"-"`
	Owner          uint8    `yaml:"owner"`
	OwnerLUN       uint8    `yaml:"ownerLun"`
	SensorNum      SensorID `yaml:"sensorNum"`
	EntityID       uint8    `yaml:"entityId"`
	EntityInstance uint8    `yaml:"entityInstance"`
	SensorType     uint8    `yaml:"sensorType"`
	UnitType       uint8    `yaml:"unitType"`
	Linear         uint8    `yaml:"linear"`
	M              uint8    `yaml:"m"`
	MTolerance     uint8    `yaml:"mTolerance"`
	B              uint8    `yaml:"b"`
	BAccuracy      uint8    `yaml:"bAccuracy"`
	Accuracy       uint8    `yaml:"accuracy"`
	RexpBexp       uint8    `yaml:"rexpBexp"`
	UNR            uint8    `yaml:"unr"`
	UCR            uint8    `yaml:"ucr"`
	UNC            uint8    `yaml:"unc"`
	LNR            uint8    `yaml:"lnr"`
	LCR            uint8    `yaml:"lcr"`
	LNC            uint8    `yaml:"lnc"`
	IDLen          uint8    `yaml:"-"`
	IDStr          string   `yaml:"idStr"`
}
