package pdr

import (
	"bytes"
	"encoding/binary"

	"github.com/janael-pinheiro/bic-telemetry-golang/pkg/entities"
)

// On-wire sizes.
const (
	NumericSensorPDRSize     = 105
	SensorAuxNamesPDRSize    = 99
	entityAuxNamesFixedSize  = 21
	entityAuxNamesMaxSize    = entityAuxNamesFixedSize + 2*entities.MaxAuxNameLen
	numericSensorDataLength  = NumericSensorPDRSize - entities.PDRHeaderSize
	sensorAuxNamesDataLength = SensorAuxNamesPDRSize - entities.PDRHeaderSize
)

// entityAuxNamesSize is the true size of an entity record: the fixed part
// plus the name and its terminator.
func entityAuxNamesSize(r *entities.EntityAuxiliaryNamesPDR) int {
	n := nameLen(r.EntityName[:]) + 1
	if n > entities.MaxAuxNameLen {
		n = entities.MaxAuxNameLen
	}
	return entityAuxNamesFixedSize + 2*n
}

// encode writes a fixed layout record in little-endian order. Name buffers
// are already in wire order, so their bytes come out big-endian.
func encode(record interface{}, size int) []byte {
	var buf bytes.Buffer
	buf.Grow(size)
	// Writing fixed-size values to a bytes.Buffer cannot fail.
	_ = binary.Write(&buf, binary.LittleEndian, record)
	out := buf.Bytes()
	if len(out) > size {
		out = out[:size]
	}
	return out
}
