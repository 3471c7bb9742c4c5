package dataset

import (
	"context"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/symbolmap/internal/fetcher"
)

// IsRemote reports whether source is an http(s) URL.
func IsRemote(source string) bool {
	s := strings.ToLower(source)
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// Load reads a dataset from a local path or an http(s) URL. Shapefiles
// (.shp) are read from disk only; anything else is decoded as GeoJSON.
func Load(ctx context.Context, source string, f fetcher.Fetcher, opts Options) (*Dataset, error) {
	if source == "" {
		return nil, eris.New("dataset: no source configured (set dataset.source or --source)")
	}

	log := zap.L().With(zap.String("component", "dataset"), zap.String("source", source))

	var (
		ds  *Dataset
		err error
	)
	switch {
	case IsRemote(source):
		ds, err = loadRemote(ctx, source, f, opts)
	case strings.EqualFold(filepath.Ext(source), ".shp"):
		ds, err = ReadShapefile(source, opts)
	default:
		ds, err = loadFile(source, opts)
	}
	if err != nil {
		return nil, err
	}

	log.Info("dataset loaded",
		zap.Int("features", len(ds.Features)),
		zap.Strings("series", ds.Series),
		zap.Int("groups", len(ds.Groups)),
		zap.String("label_property", ds.LabelProperty),
	)
	return ds, nil
}

func loadRemote(ctx context.Context, source string, f fetcher.Fetcher, opts Options) (*Dataset, error) {
	if f == nil {
		return nil, eris.New("dataset: remote source requires a fetcher")
	}
	if strings.EqualFold(path.Ext(source), ".shp") {
		return nil, eris.Errorf("dataset: remote shapefiles are not supported: %s", source)
	}
	body, err := f.Download(ctx, source)
	if err != nil {
		return nil, eris.Wrapf(err, "dataset: fetch %s", source)
	}
	defer body.Close() //nolint:errcheck

	return DecodeGeoJSON(body, opts)
}

func loadFile(source string, opts Options) (*Dataset, error) {
	file, err := os.Open(source)
	if err != nil {
		return nil, eris.Wrapf(err, "dataset: open %s", source)
	}
	defer file.Close() //nolint:errcheck

	return DecodeGeoJSON(file, opts)
}
