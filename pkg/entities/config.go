package entities

import "time"

// PlatformConfig is the platform description loaded at start-up.
type PlatformConfig struct {
	LogLevel      string               `yaml:"logLevel"`
	Capacity      int                  `yaml:"capacity"`
	Power         PowerConfig          `yaml:"power"`
	Scheduler     SchedulerConfig      `yaml:"scheduler"`
	Sensors       []SensorConfig       `yaml:"sensors"`
	MonitorGroups []MonitorGroupConfig `yaml:"monitorGroups"`
	SDR           []FullSensorRecord   `yaml:"sdr"`
	PldmThreads   []PldmThreadConfig   `yaml:"pldmThreads"`
	SensorNames   []AuxNameConfig      `yaml:"sensorNames"`
	EntityNames   []EntityNameConfig   `yaml:"entityNames"`
	Telemetry     TelemetryConfig      `yaml:"telemetry"`
}

// PowerConfig seeds the power state consulted by access predicates.
type PowerConfig struct {
	DCOn         bool `yaml:"dcOn"`
	PostComplete bool `yaml:"postComplete"`
	MENormal     bool `yaml:"meNormal"`
	VRMonitor    bool `yaml:"vrMonitor"`
}

type SchedulerConfig struct {
	Interval     time.Duration `yaml:"interval"`
	StartDelay   time.Duration `yaml:"startDelay"`
	PldmInterval time.Duration `yaml:"pldmInterval"`
}

type TelemetryConfig struct {
	Enabled  bool          `yaml:"enabled"`
	URL      string        `yaml:"url"`
	Token    string        `yaml:"token"`
	Exchange string        `yaml:"exchange"`
	Encoding string        `yaml:"encoding"`
	Interval time.Duration `yaml:"interval"`
}

// Sample is one exported snapshot of a cached reading.
type Sample struct {
	SensorID  int     `json:"sensorId" cbor:"sensorId"`
	Source    string  `json:"source" cbor:"source"`
	Status    string  `json:"status" cbor:"status"`
	Value     float64 `json:"value" cbor:"value"`
	Timestamp int64   `json:"timestamp" cbor:"timestamp"`
}
