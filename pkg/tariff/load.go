package tariff

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/tariffkit/tariffkit/pkg/types"
)

// document mirrors the two accepted on-disk shapes: a bare tariff object or
// a `{"items": [tariff]}` wrapper.
type document struct {
	Items []json.RawMessage `json:"items"`
}

// Parse decodes a URDB tariff from raw JSON, accepting both the bare object
// and the items-wrapped form, and validates it.
func Parse(data []byte) (*types.Tariff, error) {
	raw, err := unwrap(data)
	if err != nil {
		return nil, err
	}
	var t types.Tariff
	dec := json.NewDecoder(bytes.NewReader(raw))
	if err := dec.Decode(&t); err != nil {
		return nil, malformedf("decoding tariff: %v", err)
	}
	if err := Validate(&t, types.DefaultVoltage); err != nil {
		return nil, err
	}
	return &t, nil
}

// Load reads and parses a tariff JSON file.
func Load(path string) (*types.Tariff, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, malformedf("reading %s: %v", path, err)
	}
	t, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// unwrap returns the raw tariff object, unwrapping the items array when
// present.
func unwrap(data []byte) (json.RawMessage, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, malformedf("invalid JSON: %v", err)
	}
	if _, ok := probe["items"]; !ok {
		return json.RawMessage(data), nil
	}
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, malformedf("invalid items wrapper: %v", err)
	}
	if len(doc.Items) == 0 {
		return nil, invalidf("items must be a non-empty array")
	}
	return doc.Items[0], nil
}

// Wrap re-serializes a tariff in the items-wrapped URDB form.
func Wrap(t *types.Tariff) ([]byte, error) {
	out := struct {
		Items []*types.Tariff `json:"items"`
	}{Items: []*types.Tariff{t}}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding tariff: %w", err)
	}
	return data, nil
}
