package sdr

import "github.com/janael-pinheiro/bic-telemetry-golang/pkg/entities"

// negativeTenPower is indexed by the R exponent nibble.
var negativeTenPower = [16]int32{
	1, 1, 1, 1, 1, 1, 1,
	1000000000, 100000000, 10000000, 1000000, 100000, 10000, 1000, 100, 10,
}

// M returns the 10-bit multiplier, high bits taken from MTolerance.
func M(r *entities.FullSensorRecord) int32 {
	return (int32(r.MTolerance&0xC0) << 2) | int32(r.M)
}

// R returns the R exponent nibble.
func R(r *entities.FullSensorRecord) uint8 {
	return (r.RexpBexp >> 4) & 0x0F
}

func Rexp(r *entities.FullSensorRecord) int32 {
	return negativeTenPower[R(r)]
}

// RoundAdd is the rounding correction applied by CalculateMBR.
func RoundAdd(r *entities.FullSensorRecord, val int32) int32 {
	if R(r) == 0 {
		return 0
	}
	if negativeTenPower[(R(r)+1)&0x0F]*val%10 > 5 {
		return 1
	}
	return 0
}

// CalculateMBR converts an engineering value to the one-byte raw reading
// scale. Integer arithmetic matches what the management controller expects.
func CalculateMBR(r *entities.FullSensorRecord, val int32) int32 {
	m := M(r)
	if m == 0 {
		return val*Rexp(r) + RoundAdd(r, val)
	}
	return val*Rexp(r)/m + RoundAdd(r, val)
}

// CalculateAccurateMBR is CalculateMBR on a value scaled by 256, for the
// two-byte accurate reading.
func CalculateAccurateMBR(r *entities.FullSensorRecord, val int32) int32 {
	m := M(r)
	if m == 0 {
		return (val << 8) * Rexp(r)
	}
	return (val << 8) / m * Rexp(r)
}

// ConvertMBRToReading converts a raw byte back to engineering units. The
// division is done on integers before the conversion to float.
func ConvertMBRToReading(r *entities.FullSensorRecord, val uint8) float32 {
	v := int32(val)
	m := M(r)
	if m == 0 {
		return float32((v - RoundAdd(r, v)) / Rexp(r))
	}
	return float32((v - RoundAdd(r, v)) * m / Rexp(r))
}
