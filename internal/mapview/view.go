// Package mapview holds the per-client state of a proportional-symbol map:
// which attribute is shown, which group filter is active, and how symbols
// and popups are produced from a dataset.
package mapview

import (
	"math"
	"sync"

	"github.com/rotisserie/eris"

	"github.com/sells-group/symbolmap/internal/dataset"
	"github.com/sells-group/symbolmap/internal/symbol"
)

var (
	// ErrNoSeries is returned when a dataset has no series attributes to step through.
	ErrNoSeries = eris.New("mapview: dataset has no series attributes")
	// ErrIndexOutOfRange is returned by Seek for an index outside the series.
	ErrIndexOutOfRange = eris.New("mapview: index out of range")
	// ErrUnknownGroup is returned by SelectGroup for a name that is not a group attribute.
	ErrUnknownGroup = eris.New("mapview: unknown group")
	// ErrUnknownAttribute is returned for a name that is neither a series nor a group.
	ErrUnknownAttribute = eris.New("mapview: unknown attribute")
)

// Style holds circle marker paint options, named as a Leaflet path expects.
type Style struct {
	FillColor   string  `json:"fillColor"`
	Color       string  `json:"color"`
	Weight      float64 `json:"weight"`
	Opacity     float64 `json:"opacity"`
	FillOpacity float64 `json:"fillOpacity"`
}

// Options configures a MapView.
type Options struct {
	// ScaleFactor multiplies values into circle areas. Zero uses the popup
	// preset's scale.
	ScaleFactor float64
	// HideZero treats zero values as no data: the symbol is hidden and has
	// no popup.
	HideZero bool
	Style    Style
	Popup    PopupOptions
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		ScaleFactor: symbol.DefaultScaleFactor,
		HideZero:    true,
		Style: Style{
			FillColor:   "#00ccff",
			Color:       "#336699",
			Weight:      1,
			Opacity:     1,
			FillOpacity: 0.8,
		},
		Popup: PopupOptions{Preset: "generic", Precision: -1, Locale: "en"},
	}
}

// State is a snapshot of what a view currently shows.
type State struct {
	Index     int    `json:"index"`
	Count     int    `json:"count"`
	Attribute string `json:"attribute"`
	Group     string `json:"group,omitempty"`
}

// Symbol is one feature's proportional circle.
type Symbol struct {
	FeatureIndex int        `json:"feature_index"`
	Label        string     `json:"label"`
	Lng          float64    `json:"lng"`
	Lat          float64    `json:"lat"`
	Value        float64    `json:"value"`
	HasValue     bool       `json:"has_value"`
	Radius       float64    `json:"radius"`
	Visible      bool       `json:"visible"`
	Popup        string     `json:"popup,omitempty"`
	PopupOffset  [2]float64 `json:"popup_offset"`
}

// MapView is the state a single map client steps through. It is safe for
// concurrent use.
type MapView struct {
	ds         *dataset.Dataset
	opts       Options
	popup      *PopupRenderer
	labelTitle string

	mu    sync.RWMutex
	index int
	group string
}

// New creates a view positioned on the first series attribute.
func New(ds *dataset.Dataset, opts Options) (*MapView, error) {
	popup, err := NewPopupRenderer(opts.Popup)
	if err != nil {
		return nil, err
	}
	return newView(ds, opts, popup)
}

func newView(ds *dataset.Dataset, opts Options, popup *PopupRenderer) (*MapView, error) {
	if ds == nil || len(ds.Series) == 0 {
		return nil, ErrNoSeries
	}
	if opts.ScaleFactor == 0 {
		scale, err := PresetScaleFactor(opts.Popup.Preset)
		if err != nil {
			return nil, err
		}
		opts.ScaleFactor = scale
	}
	if err := symbol.ValidateScale(opts.ScaleFactor); err != nil {
		return nil, err
	}

	title := opts.Popup.LabelTitle
	if title == "" {
		title = ds.LabelProperty
	}

	return &MapView{
		ds:         ds,
		opts:       opts,
		popup:      popup,
		labelTitle: title,
	}, nil
}

// Dataset returns the dataset the view renders.
func (v *MapView) Dataset() *dataset.Dataset { return v.ds }

// Options returns the view's options.
func (v *MapView) Options() Options { return v.opts }

// State returns the current position.
func (v *MapView) State() State {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.stateLocked()
}

func (v *MapView) stateLocked() State {
	return State{
		Index:     v.index,
		Count:     len(v.ds.Series),
		Attribute: v.ds.Series[v.index],
		Group:     v.group,
	}
}

// Step moves to the next or previous series attribute, wrapping at the ends.
// An active group filter is cleared so the series is drawn again.
func (v *MapView) Step(dir symbol.Direction) State {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.index = symbol.Advance(v.index, dir, len(v.ds.Series))
	v.group = ""
	return v.stateLocked()
}

// Seek jumps to a series index, as a slider does, and clears any group
// filter. A rejected index leaves the view untouched.
func (v *MapView) Seek(index int) (State, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if index < 0 || index >= len(v.ds.Series) {
		return v.stateLocked(), eris.Wrapf(ErrIndexOutOfRange, "index %d, count %d", index, len(v.ds.Series))
	}
	v.index = index
	v.group = ""
	return v.stateLocked(), nil
}

// SelectGroup shows a group attribute instead of the current series.
func (v *MapView) SelectGroup(name string) (State, error) {
	if !v.ds.HasGroup(name) {
		return v.State(), eris.Wrapf(ErrUnknownGroup, "%q", name)
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.group = name
	return v.stateLocked(), nil
}

// ClearGroup returns to the current series attribute.
func (v *MapView) ClearGroup() State {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.group = ""
	return v.stateLocked()
}

// shown returns the attribute currently on screen and whether it is a group.
func (v *MapView) shown() (string, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if v.group != "" {
		return v.group, true
	}
	return v.ds.Series[v.index], false
}

// Symbols returns the symbols for whatever the view currently shows.
func (v *MapView) Symbols() ([]Symbol, error) {
	attr, isGroup := v.shown()
	return v.symbols(attr, isGroup)
}

// SymbolsFor returns the symbols for any series or group attribute without
// moving the view.
func (v *MapView) SymbolsFor(attribute string) ([]Symbol, error) {
	switch {
	case v.ds.HasSeries(attribute):
		return v.symbols(attribute, false)
	case v.ds.HasGroup(attribute):
		return v.symbols(attribute, true)
	default:
		return nil, eris.Wrapf(ErrUnknownAttribute, "%q", attribute)
	}
}

func (v *MapView) symbols(attribute string, isGroup bool) ([]Symbol, error) {
	out := make([]Symbol, 0, len(v.ds.Features))
	for _, f := range v.ds.Features {
		lng, lat, ok := f.Anchor()
		if !ok {
			continue
		}

		s := Symbol{
			FeatureIndex: f.Index,
			Label:        v.ds.Label(f),
			Lng:          lng,
			Lat:          lat,
		}
		s.Value, s.HasValue = f.Value(attribute)
		if !s.HasValue || (s.Value == 0 && v.opts.HideZero) || math.IsNaN(s.Value) {
			out = append(out, s)
			continue
		}

		r, err := symbol.Radius(s.Value, v.opts.ScaleFactor)
		if err != nil {
			return nil, eris.Wrapf(err, "mapview: feature %d attribute %q", f.Index, attribute)
		}
		s.Radius = r
		s.Visible = true
		s.PopupOffset = [2]float64{0, -r}

		if isGroup {
			s.Popup, err = v.popup.Group(v.labelTitle, s.Label, attribute, s.Value)
		} else {
			s.Popup, err = v.popup.Series(v.labelTitle, s.Label, attribute, s.Value)
		}
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// Legend returns legend stops for what the view currently shows. ok is
// false when no feature has a usable value.
func (v *MapView) Legend() (symbol.Legend, bool) {
	attr, _ := v.shown()
	return symbol.ComputeLegend(v.ds.Features, attr)
}

// LegendFor returns legend stops for any series or group attribute.
func (v *MapView) LegendFor(attribute string) (symbol.Legend, bool, error) {
	if !v.ds.HasAttribute(attribute) {
		return symbol.Legend{}, false, eris.Wrapf(ErrUnknownAttribute, "%q", attribute)
	}
	l, ok := symbol.ComputeLegend(v.ds.Features, attribute)
	return l, ok, nil
}
