// Package symbol holds the pure computations behind proportional-symbol maps:
// area-proportional radii, legend statistics and cyclic attribute stepping.
package symbol

import (
	"math"

	"github.com/rotisserie/eris"
)

// DefaultScaleFactor evens out symbol sizes for population-scale values.
const DefaultScaleFactor = 50.0

var (
	// ErrNegativeValue is returned for a negative or non-finite attribute value.
	ErrNegativeValue = eris.New("symbol: value must be a finite number >= 0")
	// ErrInvalidScale is returned for a scale factor that is not a finite number > 0.
	ErrInvalidScale = eris.New("symbol: scale factor must be a finite number > 0")
	// ErrAreaOverflow is returned when value*scaleFactor is not representable.
	ErrAreaOverflow = eris.New("symbol: symbol area overflows float64")
)

// Radius returns the circle radius whose area is value*scaleFactor, so that
// symbol area rather than radius grows linearly with the value.
func Radius(value, scaleFactor float64) (float64, error) {
	if math.IsNaN(value) || math.IsInf(value, 0) || value < 0 {
		return 0, eris.Wrapf(ErrNegativeValue, "got %v", value)
	}
	if err := ValidateScale(scaleFactor); err != nil {
		return 0, err
	}
	area := value * scaleFactor
	if math.IsInf(area, 0) {
		return 0, eris.Wrapf(ErrAreaOverflow, "value %v scale %v", value, scaleFactor)
	}
	return math.Sqrt(area / math.Pi), nil
}

// ValidateScale reports whether scaleFactor can be used with Radius.
func ValidateScale(scaleFactor float64) error {
	if math.IsNaN(scaleFactor) || math.IsInf(scaleFactor, 0) || scaleFactor <= 0 {
		return eris.Wrapf(ErrInvalidScale, "got %v", scaleFactor)
	}
	return nil
}
