package pldm

import (
	"testing"

	"github.com/janael-pinheiro/bic-telemetry-golang/pkg/entities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGivenHalfResolutionThenForwardScalesReading(t *testing.T) {
	got := Forward(entities.NewReading(20, 500), 0.5, 0, 0)
	assert.InDelta(t, 10.25, got, 1e-9)
}

func TestGivenOffsetAndUnitModifierThenForwardAppliesBoth(t *testing.T) {
	got := Forward(entities.NewReading(12, 345), 1, 10, -2)
	assert.InDelta(t, 0.22345, got, 1e-6)

	got = Forward(entities.NewReading(-3, -250), 2, 0, 1)
	assert.InDelta(t, -65, got, 1e-6)
}

func TestGivenZeroResolutionThenInverseFails(t *testing.T) {
	_, err := Inverse(12, 0, 0, 0)
	assert.ErrorIs(t, err, ErrInvalidData)
}

func TestGivenNonZeroResolutionThenConversionsRoundTrip(t *testing.T) {
	cases := []struct {
		resolution   float32
		offset       float32
		unitModifier int8
	}{
		{0.5, 0, 0},
		{1, 10, -2},
		{0.125, -3, 1},
		{4, 0.5, -3},
	}
	readings := []entities.Reading{
		entities.NewReading(0, 0),
		entities.NewReading(20, 500),
		entities.NewReading(-7, -125),
		entities.NewReading(1200, 1),
	}
	for _, c := range cases {
		for _, raw := range readings {
			engineering := Forward(raw, c.resolution, c.offset, c.unitModifier)
			back, err := Inverse(engineering, c.resolution, c.offset, c.unitModifier)
			require.NoError(t, err)
			assert.InDelta(t, raw.Float(), back, 1e-3)

			again := Forward(entities.ReadingFromFloat(back), c.resolution, c.offset, c.unitModifier)
			assert.InDelta(t, engineering, again, 1e-3*float64(c.resolution)*10)
		}
	}
}
