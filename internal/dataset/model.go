// Package dataset loads feature collections and validates the attribute
// series used to size proportional symbols.
package dataset

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/twpayne/go-geom"
)

// Kind classifies a normalized property value.
type Kind int

const (
	// Absent marks a null or empty value.
	Absent Kind = iota
	// Number marks a JSON number or a string holding a finite number.
	Number
	// Text marks any other value.
	Text
)

// Property is one named feature attribute after normalization.
type Property struct {
	Name   string
	Kind   Kind
	Number float64
	Text   string
}

// Feature is one read-only record: a geometry plus its properties in
// source order.
type Feature struct {
	Index    int
	ID       string
	Geometry geom.T

	props  []Property
	lookup map[string]int
}

// NewFeature builds a feature from ordered properties. A later property
// with a repeated name replaces the earlier one in place.
func NewFeature(index int, id string, g geom.T, props []Property) *Feature {
	f := &Feature{
		Index:    index,
		ID:       id,
		Geometry: g,
		lookup:   make(map[string]int, len(props)),
	}
	for _, p := range props {
		if i, ok := f.lookup[p.Name]; ok {
			f.props[i] = p
			continue
		}
		f.lookup[p.Name] = len(f.props)
		f.props = append(f.props, p)
	}
	return f
}

// Value returns the numeric value of attribute. The bool is false when the
// attribute is missing, null or not numeric.
func (f *Feature) Value(attribute string) (float64, bool) {
	p, ok := f.Property(attribute)
	if !ok || p.Kind != Number {
		return 0, false
	}
	return p.Number, true
}

// Property returns the named property.
func (f *Feature) Property(name string) (Property, bool) {
	i, ok := f.lookup[name]
	if !ok {
		return Property{}, false
	}
	return f.props[i], true
}

// Keys returns property names in source order.
func (f *Feature) Keys() []string {
	keys := make([]string, len(f.props))
	for i, p := range f.props {
		keys[i] = p.Name
	}
	return keys
}

// Display renders a property for popups and labels.
func (f *Feature) Display(name string) string {
	p, ok := f.Property(name)
	if !ok {
		return ""
	}
	switch p.Kind {
	case Number:
		if p.Text != "" {
			return p.Text
		}
		return strconv.FormatFloat(p.Number, 'f', -1, 64)
	case Text:
		return p.Text
	default:
		return ""
	}
}

// Properties returns the properties as a plain map for encoding.
func (f *Feature) Properties() map[string]any {
	out := make(map[string]any, len(f.props))
	for _, p := range f.props {
		switch p.Kind {
		case Number:
			out[p.Name] = p.Number
		case Text:
			out[p.Name] = p.Text
		default:
			out[p.Name] = nil
		}
	}
	return out
}

// Anchor returns where the feature's symbol is drawn: the point itself, or
// the center of the bounds for other geometries.
func (f *Feature) Anchor() (lng, lat float64, ok bool) {
	if f.Geometry == nil {
		return 0, 0, false
	}
	if p, isPoint := f.Geometry.(*geom.Point); isPoint {
		if len(p.FlatCoords()) < 2 {
			return 0, 0, false
		}
		return p.X(), p.Y(), true
	}
	b := f.Geometry.Bounds()
	if b == nil || b.IsEmpty() {
		return 0, 0, false
	}
	return (b.Min(0) + b.Max(0)) / 2, (b.Min(1) + b.Max(1)) / 2, true
}

// NormalizeValue classifies a decoded JSON value or a raw attribute string.
func NormalizeValue(name string, v any) Property {
	p := Property{Name: name}
	switch t := v.(type) {
	case nil:
		p.Kind = Absent
	case float64:
		p.Kind = Number
		p.Number = t
	case int:
		p.Kind = Number
		p.Number = float64(t)
	case bool:
		p.Kind = Text
		p.Text = strconv.FormatBool(t)
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			p.Kind = Absent
			break
		}
		if n, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(n) && !math.IsInf(n, 0) {
			p.Kind = Number
			p.Number = n
			p.Text = s
			break
		}
		p.Kind = Text
		p.Text = t
	default:
		p.Kind = Text
		b, err := json.Marshal(t)
		if err != nil {
			p.Kind = Absent
			break
		}
		p.Text = string(b)
	}
	return p
}
