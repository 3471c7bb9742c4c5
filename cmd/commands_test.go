package main

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/symbolmap/internal/export"
)

func TestRadiusCommand(t *testing.T) {
	out, err := executeCommand(t, "radius", "1")
	require.NoError(t, err)

	r, err := strconv.ParseFloat(strings.TrimSpace(out), 64)
	require.NoError(t, err)
	assert.InDelta(t, math.Sqrt(50/math.Pi), r, 1e-12)
}

func TestRadiusCommand_ScaleFlag(t *testing.T) {
	out, err := executeCommand(t, "radius", "4", "--scale", "1")
	require.NoError(t, err)

	r, err := strconv.ParseFloat(strings.TrimSpace(out), 64)
	require.NoError(t, err)
	assert.InDelta(t, math.Sqrt(4/math.Pi), r, 1e-12)
}

func TestRadiusCommand_PresetScale(t *testing.T) {
	t.Setenv("SYMBOLMAP_POPUP_PRESET", "concerts")

	out, err := executeCommand(t, "radius", "1")
	require.NoError(t, err)

	r, err := strconv.ParseFloat(strings.TrimSpace(out), 64)
	require.NoError(t, err)
	assert.InDelta(t, math.Sqrt(30/math.Pi), r, 1e-12)
}

func TestRadiusCommand_RejectsNegative(t *testing.T) {
	_, err := executeCommand(t, "radius", "--", "-3")
	require.Error(t, err)
}

func TestRadiusCommand_RejectsNonNumber(t *testing.T) {
	_, err := executeCommand(t, "radius", "lots")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse value")
}

func TestLegendCommand_JSON(t *testing.T) {
	out, err := executeCommand(t, "legend", "--source", concertsFixture, "--format", "json")
	require.NoError(t, err)

	var rows []export.LegendRow
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	require.Len(t, rows, 1)

	// Wyoming's zero is excluded.
	assert.Equal(t, "1970_1979", rows[0].Attribute)
	assert.True(t, rows[0].OK)
	assert.Equal(t, 12.0, rows[0].Legend.Min)
	assert.Equal(t, 30.0, rows[0].Legend.Mean)
	assert.Equal(t, 48.0, rows[0].Legend.Max)
	assert.Equal(t, 2, rows[0].Legend.Count)
}

func TestLegendCommand_AllYAML(t *testing.T) {
	out, err := executeCommand(t, "legend", "--source", concertsFixture, "--all", "--format", "yaml")
	require.NoError(t, err)

	var rows []export.LegendRow
	require.NoError(t, yaml.Unmarshal([]byte(out), &rows))
	require.Len(t, rows, 7)

	want := []string{"1970_1979", "1980_1989", "1990_1999", "2000_2009", "2010_2016", "Born to Run", "The River"}
	for i, r := range rows {
		assert.Equal(t, want[i], r.Attribute)
		assert.True(t, r.OK, r.Attribute)
	}

	// The numeric string "12" counts; zero and null do not.
	assert.Equal(t, 12.0, rows[2].Legend.Min)
	assert.Equal(t, 12.0, rows[2].Legend.Max)
	assert.Equal(t, 1, rows[2].Legend.Count)
}

func TestLegendCommand_Table(t *testing.T) {
	out, err := executeCommand(t, "legend", "--source", concertsFixture, "--attribute", "1980_1989")
	require.NoError(t, err)

	assert.Contains(t, out, "1980_1989")
	assert.Contains(t, out, "18")
	assert.Contains(t, out, "25")
	assert.Contains(t, out, "31")
}

func TestLegendCommand_XLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "legend.xlsx")

	_, err := executeCommand(t, "legend", "--source", concertsFixture, "--all", "--format", "json", "--xlsx", path)
	require.NoError(t, err)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestLegendCommand_UnknownAttribute(t *testing.T) {
	_, err := executeCommand(t, "legend", "--source", concertsFixture, "--attribute", "Pop_2015")
	require.Error(t, err)
}

func TestLegendCommand_BadFormat(t *testing.T) {
	_, err := executeCommand(t, "legend", "--source", concertsFixture, "--format", "csv")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown format")
}

func TestLegendCommand_AllWithAttribute(t *testing.T) {
	_, err := executeCommand(t, "legend", "--source", concertsFixture, "--all", "--attribute", "1970_1979")
	require.Error(t, err)
}

type geoJSONOut struct {
	Type     string `json:"type"`
	Features []struct {
		Properties map[string]any `json:"properties"`
	} `json:"features"`
}

func TestSymbolsCommand_Attribute(t *testing.T) {
	out, err := executeCommand(t, "symbols", "--source", concertsFixture, "--attribute", "1970_1979")
	require.NoError(t, err)

	var fc geoJSONOut
	require.NoError(t, json.Unmarshal([]byte(out), &fc))
	assert.Equal(t, "FeatureCollection", fc.Type)
	require.Len(t, fc.Features, 2, "zero-valued Wyoming is hidden")

	assert.Equal(t, "New Jersey", fc.Features[0].Properties["label"])
	assert.InDelta(t, math.Sqrt(48*50/math.Pi), fc.Features[0].Properties["radius"], 1e-9)
}

func TestSymbolsCommand_IndexToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "symbols.geojson")

	_, err := executeCommand(t, "symbols", "--source", concertsFixture, "--index", "3", "--out", path)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var fc geoJSONOut
	require.NoError(t, json.Unmarshal(data, &fc))
	assert.Len(t, fc.Features, 3, "every state has a 2000_2009 value")
}

func TestSymbolsCommand_Group(t *testing.T) {
	out, err := executeCommand(t, "symbols", "--source", concertsFixture, "--group", "The River")
	require.NoError(t, err)

	var fc geoJSONOut
	require.NoError(t, json.Unmarshal([]byte(out), &fc))
	require.Len(t, fc.Features, 1)
	assert.Contains(t, fc.Features[0].Properties["popup"], "Filtered")
}

func TestSymbolsCommand_IndexOutOfRange(t *testing.T) {
	_, err := executeCommand(t, "symbols", "--source", concertsFixture, "--index", "5")
	require.Error(t, err)
}

func TestStepCommand(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"forward", []string{"--index", "1"}, "2\t1990_1999"},
		{"forward wraps", []string{"--index", "4"}, "0\t1970_1979"},
		{"reverse wraps", []string{"--index", "0", "--direction", "reverse"}, "4\t2010_2016"},
		{"button alias", []string{"--index", "2", "--direction", "back"}, "1\t1980_1989"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"step", "--source", concertsFixture}, tt.args...)
			out, err := executeCommand(t, args...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, strings.TrimSpace(out))
		})
	}
}

func TestStepCommand_BadDirection(t *testing.T) {
	_, err := executeCommand(t, "step", "--source", concertsFixture, "--direction", "sideways")
	require.Error(t, err)
}

func TestWriteFeatureCollectionFile(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "ok.geojson")
	require.NoError(t, writeFeatureCollectionFile(path, map[string]string{"type": "FeatureCollection"}))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"FeatureCollection"}`, string(data))

	err = writeFeatureCollectionFile(filepath.Join(dir, "missing", "x.geojson"), map[string]string{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "create")

	err = writeFeatureCollectionFile(filepath.Join(dir, "bad.geojson"), func() {})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "encode geojson")
}
