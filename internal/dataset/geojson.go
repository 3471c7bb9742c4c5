package dataset

import (
	"bytes"
	"encoding/json"
	"io"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
)

type rawFeature struct {
	Type       string          `json:"type"`
	ID         json.RawMessage `json:"id"`
	Geometry   json.RawMessage `json:"geometry"`
	Properties json.RawMessage `json:"properties"`
}

type rawCollection struct {
	Type     string       `json:"type"`
	Features []rawFeature `json:"features"`
}

// DecodeGeoJSON reads a FeatureCollection (or a single Feature) and builds
// a Dataset. Property order is preserved so series attributes keep the
// order they appear in the file.
func DecodeGeoJSON(r io.Reader, opts Options) (*Dataset, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, eris.Wrap(err, "dataset: read geojson")
	}

	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, eris.Wrap(err, "dataset: decode geojson")
	}

	var raws []rawFeature
	switch head.Type {
	case "FeatureCollection":
		var fc rawCollection
		if err := json.Unmarshal(data, &fc); err != nil {
			return nil, eris.Wrap(err, "dataset: decode feature collection")
		}
		raws = fc.Features
	case "Feature":
		var rf rawFeature
		if err := json.Unmarshal(data, &rf); err != nil {
			return nil, eris.Wrap(err, "dataset: decode feature")
		}
		raws = []rawFeature{rf}
	default:
		return nil, eris.Errorf("dataset: unsupported geojson type %q", head.Type)
	}

	features := make([]*Feature, 0, len(raws))
	for i, rf := range raws {
		f, err := decodeFeature(i, rf)
		if err != nil {
			return nil, err
		}
		features = append(features, f)
	}

	return Build(features, opts)
}

func decodeFeature(index int, rf rawFeature) (*Feature, error) {
	var g geom.T
	if !isNull(rf.Geometry) {
		if err := geojson.Unmarshal(rf.Geometry, &g); err != nil {
			return nil, eris.Wrapf(err, "dataset: decode geometry of feature %d", index)
		}
	}

	props, err := decodeProperties(rf.Properties)
	if err != nil {
		return nil, eris.Wrapf(err, "dataset: decode properties of feature %d", index)
	}

	return NewFeature(index, decodeID(rf.ID), g, props), nil
}

// decodeProperties walks the properties object token by token so key order
// survives decoding.
func decodeProperties(raw json.RawMessage) ([]Property, error) {
	if isNull(raw) {
		return nil, nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil, eris.Wrap(err, "read opening token")
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, eris.Errorf("expected '{', got %v", tok)
	}

	var props []Property
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, eris.Wrap(err, "read key")
		}
		key, ok := tok.(string)
		if !ok {
			return nil, eris.Errorf("expected string key, got %v", tok)
		}
		var v any
		if err := dec.Decode(&v); err != nil {
			return nil, eris.Wrapf(err, "decode value of %q", key)
		}
		props = append(props, NormalizeValue(key, v))
	}

	if _, err := dec.Token(); err != nil {
		return nil, eris.Wrap(err, "read closing token")
	}
	return props, nil
}

func decodeID(raw json.RawMessage) string {
	if isNull(raw) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return strings.TrimSpace(string(raw))
}

func isNull(raw json.RawMessage) bool {
	t := bytes.TrimSpace(raw)
	return len(t) == 0 || bytes.Equal(t, []byte("null"))
}
