package codec

import (
	"encoding/json"
)

// JSON is a JSON codec backed by encoding/json.
//
// It is the slowest built-in codec but has no third-party dependency.
// Prefer GoJSON unless binary size matters more than throughput.
type JSON struct{}

// Marshal encodes the value to JSON.
func (JSON) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

// Unmarshal decodes the JSON data into v.
func (JSON) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

// Name returns the unique name of the codec ("json").
func (JSON) Name() string { return "json" }
