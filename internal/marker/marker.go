// Package marker resolves the map marker style for a report.
package marker

import (
	"fmt"
	"html"
	"path"

	"github.com/Zachdehooge/damage-map/internal/report"
)

const (
	ColorRed    = "red"
	ColorOrange = "orange"
	ColorGreen  = "green"
	ColorGray   = "gray"

	ShapeRescue = "▲"
	ShapeNormal = "●"
)

// Style describes how a single report is drawn.
type Style struct {
	Color   string `json:"color"`
	Shape   string `json:"shape"`
	Symbol  string `json:"symbol,omitempty"`
	IconURL string `json:"iconUrl,omitempty"`
}

// Options selects between glyph markers and icon images.
type Options struct {
	// IconBase enables image markers when non-empty: <IconBase>/<color>.png.
	IconBase string
}

var colors = map[report.HealthStatus]string{
	report.HealthSevere:    ColorRed,
	report.HealthMinor:     ColorOrange,
	report.HealthUninjured: ColorGreen,
}

var symbols = map[report.DamageType]string{
	report.DamageFire:        "🔥",
	report.DamageCollapse:    "🏚️",
	report.DamageFlooding:    "💧",
	report.DamageRoadClosure: "🚫",
	report.DamageOther:       "⚙️",
}

// Resolve computes the style from independent lookups on health, rescue
// and damage. It never fails.
func Resolve(r report.Report, opts Options) Style {
	s := Style{
		Color:  Color(r.Health()),
		Shape:  Shape(r.Rescue),
		Symbol: Symbol(r.DamageType()),
	}
	if opts.IconBase != "" {
		s.IconURL = path.Join(opts.IconBase, s.Color+".png")
	}
	return s
}

// Color maps a health status to a marker color, gray when unknown.
func Color(h report.HealthStatus) string {
	if c, ok := colors[h]; ok {
		return c
	}
	return ColorGray
}

// Shape is a triangle when rescue is needed and a circle otherwise.
func Shape(r report.Rescue) string {
	if r == report.RescueYes {
		return ShapeRescue
	}
	return ShapeNormal
}

// Symbol is the damage overlay glyph, empty for unrecognized damage.
func Symbol(d report.DamageType) string {
	return symbols[d]
}

// DivIconHTML renders the glyph marker body used by L.divIcon.
func DivIconHTML(s Style) string {
	return fmt.Sprintf(
		`<div style="position:relative;display:inline-block;color:%s;font-size:28px;transform:translate(-50%%,-50%%);">%s<span style="position:absolute;top:4px;left:6px;font-size:14px;">%s</span></div>`,
		html.EscapeString(s.Color), html.EscapeString(s.Shape), html.EscapeString(s.Symbol),
	)
}

// LegendEntry is one row of the static legend.
type LegendEntry struct {
	Glyph string
	Color string
	Label string
}

// HealthLegend lists the color encoding in severity order.
func HealthLegend() []LegendEntry {
	return []LegendEntry{
		{Glyph: ShapeNormal, Color: ColorRed, Label: string(report.HealthSevere)},
		{Glyph: ShapeNormal, Color: ColorOrange, Label: string(report.HealthMinor)},
		{Glyph: ShapeNormal, Color: ColorGreen, Label: string(report.HealthUninjured)},
		{Glyph: ShapeNormal, Color: ColorGray, Label: string(report.HealthUnknown)},
	}
}

// DamageLegend lists the overlay symbols.
func DamageLegend() []LegendEntry {
	order := []report.DamageType{
		report.DamageFire, report.DamageCollapse, report.DamageFlooding,
		report.DamageRoadClosure, report.DamageOther,
	}
	out := make([]LegendEntry, 0, len(order))
	for _, d := range order {
		out = append(out, LegendEntry{Glyph: symbols[d], Label: string(d)})
	}
	return out
}
