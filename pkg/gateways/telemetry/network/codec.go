package network

import (
	"encoding/json"

	"github.com/fxamacker/cbor/v2"
	"github.com/pkg/errors"
)

const (
	EncodingJSON = "json"
	EncodingCBOR = "cbor"

	contentTypeJSON = "application/json"
	contentTypeCBOR = "application/cbor"
)

// Codec encodes message bodies.
type Codec interface {
	Marshal(v interface{}) ([]byte, error)
	Unmarshal(data []byte, v interface{}) error
	ContentType() string
}

type jsonCodec struct{}

func (jsonCodec) Marshal(v interface{}) ([]byte, error)      { return json.Marshal(v) }
func (jsonCodec) Unmarshal(data []byte, v interface{}) error { return json.Unmarshal(data, v) }
func (jsonCodec) ContentType() string                        { return contentTypeJSON }

type cborCodec struct {
	enc cbor.EncMode
}

func (c cborCodec) Marshal(v interface{}) ([]byte, error)    { return c.enc.Marshal(v) }
func (cborCodec) Unmarshal(data []byte, v interface{}) error { return cbor.Unmarshal(data, v) }
func (cborCodec) ContentType() string                        { return contentTypeCBOR }

// NewCodec returns the codec for a configured encoding name. An empty name
// selects JSON.
func NewCodec(encoding string) (Codec, error) {
	switch encoding {
	case "", EncodingJSON:
		return jsonCodec{}, nil
	case EncodingCBOR:
		enc, err := cbor.CoreDetEncOptions().EncMode()
		if err != nil {
			return nil, errors.Wrap(err, "cbor encoding mode")
		}
		return cborCodec{enc: enc}, nil
	default:
		return nil, errors.Errorf("unknown encoding %q", encoding)
	}
}

// CodecForContentType picks the decoder of an incoming message. Unknown
// content types are read as JSON.
func CodecForContentType(contentType string) Codec {
	if contentType == contentTypeCBOR {
		codec, _ := NewCodec(EncodingCBOR)
		return codec
	}
	return jsonCodec{}
}
