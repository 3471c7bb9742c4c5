package mapview

import (
	"html/template"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/sells-group/symbolmap/internal/symbol"
)

// PopupOptions configures popup fragments. Template and GroupTemplate take
// precedence over the preset.
type PopupOptions struct {
	Preset        string
	Template      string
	GroupTemplate string
	LabelTitle    string
	Unit          string
	// Precision fixes the number of fraction digits; negative keeps as
	// many as the value has.
	Precision int
	Locale    string
}

// PopupData is what popup templates render.
type PopupData struct {
	LabelTitle string
	Label      string
	Attribute  string
	// Period is the attribute name split on "_", e.g. [1970 1979].
	Period []string
	From   string
	To     string
	Value  string
	Unit   string
}

type preset struct {
	series string
	unit   string
	scale  float64
}

var presets = map[string]preset{
	"generic": {
		series: `<p><b>{{.LabelTitle}}:</b> {{.Label}}</p><p><b>{{.Attribute}}:</b> {{.Value}}{{with .Unit}} {{.}}{{end}}</p>`,
		scale:  symbol.DefaultScaleFactor,
	},
	"population": {
		series: `<p><b>{{.LabelTitle}}:</b> {{.Label}}</p><p><b>Population in {{.To}}:</b> {{.Value}}{{with .Unit}} {{.}}{{end}}</p>`,
		unit:   "million",
		scale:  symbol.DefaultScaleFactor,
	},
	"concerts": {
		series: `<p><b>{{.LabelTitle}}:</b> {{.Label}}</p><p><b>Concerts between {{.From}} and {{.To}}:</b> {{.Value}}</p>`,
		scale:  30,
	},
}

// PresetScaleFactor returns the scale factor a popup preset's data is drawn
// at. An empty name is the generic preset.
func PresetScaleFactor(name string) (float64, error) {
	if name == "" {
		name = "generic"
	}
	p, ok := presets[name]
	if !ok {
		return 0, eris.Errorf("mapview: unknown popup preset %q", name)
	}
	return p.scale, nil
}

const defaultGroupTemplate = `<p><b>Filtered</b> {{.Label}}</p>`

// PopupRenderer turns feature values into HTML popup fragments.
type PopupRenderer struct {
	series    *template.Template
	group     *template.Template
	printer   *message.Printer
	precision int
	unit      string
}

// NewPopupRenderer parses the configured templates.
func NewPopupRenderer(opts PopupOptions) (*PopupRenderer, error) {
	name := opts.Preset
	if name == "" {
		name = "generic"
	}
	p, ok := presets[name]
	if !ok {
		return nil, eris.Errorf("mapview: unknown popup preset %q", name)
	}

	seriesSrc := p.series
	if opts.Template != "" {
		seriesSrc = opts.Template
	}
	groupSrc := defaultGroupTemplate
	if opts.GroupTemplate != "" {
		groupSrc = opts.GroupTemplate
	}

	series, err := template.New("series").Parse(seriesSrc)
	if err != nil {
		return nil, eris.Wrap(err, "mapview: parse popup template")
	}
	group, err := template.New("group").Parse(groupSrc)
	if err != nil {
		return nil, eris.Wrap(err, "mapview: parse group popup template")
	}

	tag := language.English
	if opts.Locale != "" {
		parsed, err := language.Parse(opts.Locale)
		if err != nil {
			return nil, eris.Wrapf(err, "mapview: parse locale %q", opts.Locale)
		}
		tag = parsed
	}

	unit := opts.Unit
	if unit == "" {
		unit = p.unit
	}

	return &PopupRenderer{
		series:    series,
		group:     group,
		printer:   message.NewPrinter(tag),
		precision: opts.Precision,
		unit:      unit,
	}, nil
}

// Series renders the popup shown while stepping through series attributes.
func (r *PopupRenderer) Series(labelTitle, label, attribute string, value float64) (string, error) {
	return r.render(r.series, r.data(labelTitle, label, attribute, value))
}

// Group renders the popup shown while a group filter is active.
func (r *PopupRenderer) Group(labelTitle, label, attribute string, value float64) (string, error) {
	return r.render(r.group, r.data(labelTitle, label, attribute, value))
}

// FormatValue formats a number with locale digit grouping.
func (r *PopupRenderer) FormatValue(v float64) string {
	digits := r.precision
	if digits < 0 {
		s := strconv.FormatFloat(v, 'f', -1, 64)
		digits = 0
		if i := strings.IndexByte(s, '.'); i >= 0 {
			digits = len(s) - i - 1
		}
	}
	return r.printer.Sprint(number.Decimal(v,
		number.MinFractionDigits(digits),
		number.MaxFractionDigits(digits),
	))
}

func (r *PopupRenderer) data(labelTitle, label, attribute string, value float64) PopupData {
	period := strings.Split(attribute, "_")
	return PopupData{
		LabelTitle: labelTitle,
		Label:      label,
		Attribute:  attribute,
		Period:     period,
		From:       period[0],
		To:         period[len(period)-1],
		Value:      r.FormatValue(value),
		Unit:       r.unit,
	}
}

func (r *PopupRenderer) render(t *template.Template, data PopupData) (string, error) {
	var sb strings.Builder
	if err := t.Execute(&sb, data); err != nil {
		return "", eris.Wrap(err, "mapview: render popup")
	}
	return sb.String(), nil
}
