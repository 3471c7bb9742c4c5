package dataset

import (
	"math"
	"slices"
	"strings"

	"github.com/rotisserie/eris"
)

var (
	// ErrEmptyDataset is returned when a collection has no features.
	ErrEmptyDataset = eris.New("dataset: collection has no features")
	// ErrNonNumeric is returned when a series or group attribute holds text.
	ErrNonNumeric = eris.New("dataset: attribute value is not numeric")
	// ErrNegativeValue is returned when a series or group attribute holds a
	// negative or infinite number, which no symbol can be sized for.
	ErrNegativeValue = eris.New("dataset: attribute value is negative or infinite")
)

// Options controls attribute discovery.
type Options struct {
	// SeriesMatch selects series attribute names (the slider's steps) by
	// substring, e.g. "_" for "Pop_1985" or "1970_1979".
	SeriesMatch string
	// GroupMatch selects group attribute names (the dropdown filter) by
	// substring. Empty disables groups.
	GroupMatch string
	// LabelProperty names the property shown as a feature's label. Empty
	// picks the first text property of the first feature.
	LabelProperty string
}

// DefaultOptions returns the discovery rules used by the decade and tour
// datasets.
func DefaultOptions() Options {
	return Options{SeriesMatch: "_", GroupMatch: " "}
}

// Dataset is a validated feature collection with its discovered attributes.
type Dataset struct {
	Features      []*Feature
	Series        []string
	Groups        []string
	LabelProperty string
}

// Build discovers attribute names from the first feature and checks that
// every series and group value across the collection is absent or a finite
// number >= 0.
func Build(features []*Feature, opts Options) (*Dataset, error) {
	if len(features) == 0 {
		return nil, ErrEmptyDataset
	}
	if opts.SeriesMatch == "" {
		opts.SeriesMatch = DefaultOptions().SeriesMatch
	}

	ds := &Dataset{Features: features}
	first := features[0]
	for _, key := range first.Keys() {
		switch {
		case strings.Contains(key, opts.SeriesMatch):
			ds.Series = append(ds.Series, key)
		case opts.GroupMatch != "" && strings.Contains(key, opts.GroupMatch):
			ds.Groups = append(ds.Groups, key)
		}
	}

	for _, f := range features {
		for _, attr := range ds.Attributes() {
			p, ok := f.Property(attr)
			if !ok {
				continue
			}
			switch {
			case p.Kind == Text:
				return nil, eris.Wrapf(ErrNonNumeric, "feature %d attribute %q value %q", f.Index, attr, p.Text)
			case p.Kind == Number && (p.Number < 0 || math.IsInf(p.Number, 0)):
				return nil, eris.Wrapf(ErrNegativeValue, "feature %d attribute %q value %v", f.Index, attr, p.Number)
			}
		}
	}

	ds.LabelProperty = opts.LabelProperty
	if ds.LabelProperty == "" {
		ds.LabelProperty = ds.guessLabel()
	}
	return ds, nil
}

func (d *Dataset) guessLabel() string {
	for _, key := range d.Features[0].Keys() {
		if d.HasAttribute(key) {
			continue
		}
		if p, _ := d.Features[0].Property(key); p.Kind == Text {
			return key
		}
	}
	return ""
}

// Attributes returns series then group attribute names.
func (d *Dataset) Attributes() []string {
	out := make([]string, 0, len(d.Series)+len(d.Groups))
	out = append(out, d.Series...)
	return append(out, d.Groups...)
}

// HasSeries reports whether name is a series attribute.
func (d *Dataset) HasSeries(name string) bool { return slices.Contains(d.Series, name) }

// HasGroup reports whether name is a group attribute.
func (d *Dataset) HasGroup(name string) bool { return slices.Contains(d.Groups, name) }

// HasAttribute reports whether name is a series or group attribute.
func (d *Dataset) HasAttribute(name string) bool { return d.HasSeries(name) || d.HasGroup(name) }

// Label returns the display label of f.
func (d *Dataset) Label(f *Feature) string {
	if d.LabelProperty == "" {
		return f.ID
	}
	return f.Display(d.LabelProperty)
}
