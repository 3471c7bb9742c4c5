package mapview

import (
	"strconv"

	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
)

// FeatureCollection encodes visible symbols as GeoJSON points carrying
// their radius, popup and paint options, ready for a circle-marker layer.
func FeatureCollection(symbols []Symbol, style Style) *geojson.FeatureCollection {
	fc := &geojson.FeatureCollection{Features: make([]*geojson.Feature, 0, len(symbols))}
	for _, s := range symbols {
		if !s.Visible {
			continue
		}
		fc.Features = append(fc.Features, &geojson.Feature{
			ID:       strconv.Itoa(s.FeatureIndex),
			Geometry: geom.NewPointFlat(geom.XY, []float64{s.Lng, s.Lat}),
			Properties: map[string]any{
				"label":        s.Label,
				"value":        s.Value,
				"radius":       s.Radius,
				"popup":        s.Popup,
				"popup_offset": []float64{s.PopupOffset[0], s.PopupOffset[1]},
				"fillColor":    style.FillColor,
				"color":        style.Color,
				"weight":       style.Weight,
				"opacity":      style.Opacity,
				"fillOpacity":  style.FillOpacity,
			},
		})
	}
	return fc
}
