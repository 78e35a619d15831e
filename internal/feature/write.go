// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package feature

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/paulmach/orb/geojson"
)

// indent is the per-level indentation of the written GeoJSON.
const indent = "  "

// rawMarshaler encodes without HTML escaping so "&", "<" and ">" in market
// names are written literally. Non-ASCII text is never escaped by
// encoding/json.
type rawMarshaler struct{}

func (rawMarshaler) Marshal(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

func init() {
	geojson.CustomJSONMarshaler = rawMarshaler{}
}

// Encode returns the collection as indented JSON text. Feature order is
// preserved and object keys are sorted, so equal collections encode to
// identical bytes.
func Encode(fc *geojson.FeatureCollection) ([]byte, error) {
	raw, err := rawMarshaler{}.Marshal(fc)
	if err != nil {
		return nil, fmt.Errorf("marshaling feature collection: %w", err)
	}
	var out bytes.Buffer
	if err := json.Indent(&out, raw, "", indent); err != nil {
		return nil, fmt.Errorf("indenting feature collection: %w", err)
	}
	return out.Bytes(), nil
}

// WriteFile encodes fc and writes it to path, creating or truncating the
// file. A failed write may leave a partial file behind.
func WriteFile(path string, fc *geojson.FeatureCollection) error {
	data, err := Encode(fc)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}
	return nil
}

// ReadFile loads a FeatureCollection previously written by WriteFile.
func ReadFile(path string) (*geojson.FeatureCollection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return fc, nil
}
