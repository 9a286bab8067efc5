package integrator

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Codec decodes a relay configuration document into the untyped
// RawConfig that BuildRelayConfig consumes. Implement this interface
// when configuration arrives in a format other than JSON or YAML.
type Codec interface {
	// Unmarshal decodes a configuration document into v.
	Unmarshal(data []byte, v any) error

	// ContentType returns the MIME type for observability and debugging.
	ContentType() string
}

// JSONCodec decodes JSON configuration documents.
type JSONCodec struct{}

// Unmarshal decodes a JSON document into v.
func (JSONCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

// ContentType returns the JSON MIME type.
func (JSONCodec) ContentType() string {
	return "application/json"
}

var _ Codec = JSONCodec{}

// YAMLCodec decodes YAML configuration documents. This is the usual
// format for file-backed relay configuration.
type YAMLCodec struct{}

// Unmarshal decodes a YAML document into v.
func (YAMLCodec) Unmarshal(data []byte, v any) error {
	return yaml.Unmarshal(data, v)
}

// ContentType returns the YAML MIME type.
func (YAMLCodec) ContentType() string {
	return "application/x-yaml"
}

var _ Codec = YAMLCodec{}

// AutoCodec detects the configuration format from content: a document
// starting with '{' or '[' is parsed as JSON, everything else as YAML
// (which also accepts plain JSON). FileSource uses this by default so a
// relay configuration file needs no format declaration.
type AutoCodec struct{}

// Unmarshal decodes a configuration document into v, detecting the
// format.
func (AutoCodec) Unmarshal(data []byte, v any) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[') {
		return json.Unmarshal(data, v)
	}
	return yaml.Unmarshal(data, v)
}

// ContentType returns a generic MIME type since the format varies.
func (AutoCodec) ContentType() string {
	return "application/octet-stream"
}

var _ Codec = AutoCodec{}

// DecodeRawConfig deserializes a configuration document into a RawConfig
// using the given codec.
func DecodeRawConfig(data []byte, codec Codec) (RawConfig, error) {
	var raw RawConfig
	if err := codec.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return raw, nil
}
