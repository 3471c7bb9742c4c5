package symbol

import "math"

// Valuer exposes a feature's numeric value for an attribute. The bool is
// false when the feature has no value for it.
type Valuer interface {
	Value(attribute string) (float64, bool)
}

// Legend holds the stops of a proportional-symbol legend. Mean is the
// rounded midrange of Min and Max, not an arithmetic mean.
type Legend struct {
	Min   float64 `json:"min" yaml:"min"`
	Mean  float64 `json:"mean" yaml:"mean"`
	Max   float64 `json:"max" yaml:"max"`
	Count int     `json:"count" yaml:"count"`
}

// LegendStop is one nested circle of a rendered legend.
type LegendStop struct {
	Name   string  `json:"name"`
	Value  float64 `json:"value"`
	Radius float64 `json:"radius"`
}

// ComputeLegend scans features for attribute and returns its legend stops.
// Absent, zero and NaN values are skipped, so zero never becomes the
// minimum. ok is false when no feature contributed a value.
func ComputeLegend[V Valuer](features []V, attribute string) (legend Legend, ok bool) {
	lo := math.Inf(1)
	hi := math.Inf(-1)
	n := 0

	for _, f := range features {
		v, present := f.Value(attribute)
		if !present || v == 0 || math.IsNaN(v) {
			continue
		}
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
		n++
	}

	if n == 0 {
		return Legend{}, false
	}

	return Legend{
		Min:   lo,
		Mean:  roundHalfUp((hi + lo) / 2),
		Max:   hi,
		Count: n,
	}, true
}

// Stops returns the legend circles largest first, the order they are drawn
// so smaller circles stay on top.
func (l Legend) Stops(scaleFactor float64) ([]LegendStop, error) {
	stops := []LegendStop{
		{Name: "max", Value: l.Max},
		{Name: "mean", Value: l.Mean},
		{Name: "min", Value: l.Min},
	}
	for i := range stops {
		r, err := Radius(math.Max(stops[i].Value, 0), scaleFactor)
		if err != nil {
			return nil, err
		}
		stops[i].Radius = r
	}
	return stops, nil
}

// roundHalfUp rounds .5 toward positive infinity, unlike math.Round which
// rounds away from zero.
func roundHalfUp(x float64) float64 {
	return math.Floor(x + 0.5)
}
