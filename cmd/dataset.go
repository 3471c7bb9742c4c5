package main

import (
	"context"
	"time"

	"github.com/sells-group/symbolmap/internal/config"
	"github.com/sells-group/symbolmap/internal/dataset"
	"github.com/sells-group/symbolmap/internal/fetcher"
	"github.com/sells-group/symbolmap/internal/mapview"
)

func datasetOptions(c *config.Config) dataset.Options {
	return dataset.Options{
		SeriesMatch:   c.Dataset.SeriesMatch,
		GroupMatch:    c.Dataset.GroupMatch,
		LabelProperty: c.Dataset.LabelProperty,
	}
}

func viewOptions(c *config.Config) mapview.Options {
	return mapview.Options{
		ScaleFactor: c.Symbol.ScaleFactor,
		HideZero:    c.Symbol.HideZero,
		Style: mapview.Style{
			FillColor:   c.Symbol.Style.FillColor,
			Color:       c.Symbol.Style.Color,
			Weight:      c.Symbol.Style.Weight,
			Opacity:     c.Symbol.Style.Opacity,
			FillOpacity: c.Symbol.Style.FillOpacity,
		},
		Popup: mapview.PopupOptions{
			Preset:        c.Popup.Preset,
			Template:      c.Popup.Template,
			GroupTemplate: c.Popup.GroupTemplate,
			LabelTitle:    c.Popup.LabelTitle,
			Unit:          c.Popup.Unit,
			Precision:     c.Popup.Precision,
			Locale:        c.Popup.Locale,
		},
	}
}

func newFetcher(c *config.Config) *fetcher.HTTPFetcher {
	return fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
		UserAgent:  c.Fetch.UserAgent,
		Timeout:    time.Duration(c.Fetch.TimeoutSecs) * time.Second,
		MaxRetries: c.Fetch.MaxRetries,
		RatePerSec: c.Fetch.RatePerSec,
	})
}

// loadDataset reads the configured source.
func loadDataset(ctx context.Context) (*dataset.Dataset, error) {
	return dataset.Load(ctx, cfg.Dataset.Source, newFetcher(cfg), datasetOptions(cfg))
}

// loadView loads the configured source and opens a view over it.
func loadView(ctx context.Context) (*mapview.MapView, error) {
	ds, err := loadDataset(ctx)
	if err != nil {
		return nil, err
	}
	return mapview.New(ds, viewOptions(cfg))
}
