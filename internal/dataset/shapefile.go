package dataset

import (
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"
)

// ReadShapefile loads a point (or polygon) shapefile and its DBF attributes
// as a Dataset. Attribute order follows the DBF field order.
func ReadShapefile(path string, opts Options) (*Dataset, error) {
	reader, err := shp.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "dataset: open shapefile %s", path)
	}
	defer func() { _ = reader.Close() }()

	fields := reader.Fields()
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = strings.TrimRight(f.String(), "\x00")
	}

	var features []*Feature
	var skipped int
	for reader.Next() {
		n, shape := reader.Shape()

		props := make([]Property, 0, len(names))
		for i, name := range names {
			val := strings.TrimSpace(strings.TrimRight(reader.Attribute(i), "\x00"))
			props = append(props, NormalizeValue(name, val))
		}

		g := shapeAnchor(shape)
		if g == nil {
			skipped++
		}
		features = append(features, NewFeature(n, "", g, props))
	}

	if skipped > 0 {
		zap.L().Debug("dataset: shapefile records without geometry",
			zap.String("path", path),
			zap.Int("skipped", skipped),
		)
	}

	return Build(features, opts)
}

// shapeAnchor converts a shape to the point its symbol is drawn at.
func shapeAnchor(shape shp.Shape) geom.T {
	switch s := shape.(type) {
	case nil:
		return nil
	case *shp.Null:
		return nil
	case *shp.Point:
		return geom.NewPointFlat(geom.XY, []float64{s.X, s.Y}).SetSRID(4326)
	default:
		box := s.BBox()
		return geom.NewPointFlat(geom.XY, []float64{
			(box.MinX + box.MaxX) / 2,
			(box.MinY + box.MaxY) / 2,
		}).SetSRID(4326)
	}
}
