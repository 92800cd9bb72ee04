// Package codec selects the wire encoding for call requests and responses.
// JSON is the default; CBOR is used when a client asks for application/cbor.
package codec

import (
	"bytes"
	"encoding/json"
	"mime"
	"reflect"
	"strings"

	"github.com/fxamacker/cbor/v2"
)

// Content types understood by ForContentType.
const (
	ContentTypeJSON = "application/json"
	ContentTypeCBOR = "application/cbor"
)

// Codec marshals values for one content type.
type Codec interface {
	ContentType() string
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
}

// JSON and CBOR are the two supported codecs.
var (
	JSON Codec = jsonCodec{}
	CBOR Codec = cborCodec{}
)

type jsonCodec struct{}

func (jsonCodec) ContentType() string { return ContentTypeJSON }

func (jsonCodec) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

func (jsonCodec) Unmarshal(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return dec.Decode(v)
}

// encMode uses Core Deterministic Encoding (RFC 8949 §4.2) so equal
// values always produce identical bytes.
var encMode cbor.EncMode

// decMode decodes maps held in any-typed targets as map[string]any so
// call arguments look the same whichever codec carried them.
var decMode cbor.DecMode

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("codec: CBOR encoder initialization failed: " + err.Error())
	}
	decMode, err = cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	}.DecMode()
	if err != nil {
		panic("codec: CBOR decoder initialization failed: " + err.Error())
	}
}

type cborCodec struct{}

func (cborCodec) ContentType() string { return ContentTypeCBOR }

func (cborCodec) Marshal(v any) ([]byte, error) { return encMode.Marshal(v) }

func (cborCodec) Unmarshal(data []byte, v any) error { return decMode.Unmarshal(data, v) }

// ForContentType returns the codec for a Content-Type or Accept header value.
// Parameters are ignored; anything other than CBOR falls back to JSON.
func ForContentType(header string) Codec {
	for _, part := range strings.Split(header, ",") {
		mt, _, err := mime.ParseMediaType(strings.TrimSpace(part))
		if err != nil {
			continue
		}
		if mt == ContentTypeCBOR {
			return CBOR
		}
		if mt == ContentTypeJSON {
			return JSON
		}
	}
	return JSON
}
