package network

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGivenUnknownEncodingThenError(t *testing.T) {
	_, err := NewCodec("xml")
	assert.Error(t, err)
}

func TestGivenEmptyEncodingThenJSON(t *testing.T) {
	codec, err := NewCodec("")
	require.NoError(t, err)
	assert.Equal(t, contentTypeJSON, codec.ContentType())
}

func TestGivenMapPayloadThenCBORIsDeterministic(t *testing.T) {
	codec, err := NewCodec(EncodingCBOR)
	require.NoError(t, err)
	payload := map[string]int{"zeta": 1, "alpha": 2, "mid": 3}

	first, err := codec.Marshal(payload)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := codec.Marshal(payload)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestGivenThresholdRequestThenBothCodecsRoundTrip(t *testing.T) {
	request := ThresholdSetRequest{SensorID: 0x21, Bound: "high", Value: 3.3}
	for _, contentType := range []string{contentTypeJSON, contentTypeCBOR} {
		codec := CodecForContentType(contentType)
		body, err := codec.Marshal(request)
		require.NoError(t, err)
		var decoded ThresholdSetRequest
		require.NoError(t, codec.Unmarshal(body, &decoded))
		assert.Equal(t, request, decoded)
	}
}
