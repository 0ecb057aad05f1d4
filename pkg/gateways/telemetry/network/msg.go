package network

import (
	"github.com/janael-pinheiro/bic-telemetry-golang/pkg/entities"
)

type SamplesSent struct {
	Source  string            `json:"source" cbor:"source"`
	Samples []entities.Sample `json:"samples" cbor:"samples"`
}

type PollingSetRequest struct {
	SensorID uint8 `json:"sensorId" cbor:"sensorId"`
	Enabled  bool  `json:"enabled" cbor:"enabled"`
}

type ThresholdSetRequest struct {
	SensorID uint16  `json:"sensorId" cbor:"sensorId"`
	Bound    string  `json:"bound" cbor:"bound"`
	Value    float64 `json:"value" cbor:"value"`
}
