package pldm

import (
	"math"

	"github.com/janael-pinheiro/bic-telemetry-golang/pkg/entities"
)

// Forward converts a packed register reading to engineering units:
// (raw * resolution + offset) * 10^unitModifier.
func Forward(raw entities.Reading, resolution, offset float32, unitModifier int8) float64 {
	return (raw.Float()*float64(resolution) + float64(offset)) * math.Pow10(int(unitModifier))
}

// Inverse converts an engineering value back to register units.
func Inverse(engineering float64, resolution, offset float32, unitModifier int8) (float64, error) {
	if resolution == 0 {
		return 0, ErrInvalidData
	}
	return (engineering*math.Pow10(-int(unitModifier)) - float64(offset)) / float64(resolution), nil
}
