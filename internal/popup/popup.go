// Package popup formats the detail panel attached to each marker.
package popup

import (
	"html"
	"strconv"
	"strings"

	"github.com/Zachdehooge/damage-map/internal/report"
)

// Line is one "label: value" row.
type Line struct {
	Label string
	Value string
}

// Lines is the fixed-layout popup body.
type Lines []Line

// Format lays out a report's fields, substituting placeholders for anything missing.
func Format(r report.Report, loc Locale) Lines {
	people := loc.Unknown
	if r.PeopleCount != nil {
		people = strconv.Itoa(*r.PeopleCount)
	}
	return Lines{
		{loc.DamageLabel, orDefault(r.Damage, loc.Unknown)},
		{loc.HealthLabel, orDefault(r.HealthStatus, loc.Unknown)},
		{loc.RescueLabel, RescueText(r.Rescue, loc)},
		{loc.PeopleLabel, people},
		{loc.AgeLabel, orDefault(r.AgeGroup, loc.Unknown)},
		{loc.CommentLabel, orDefault(r.Comment, loc.None)},
	}
}

// RescueText renders the tri-state rescue flag.
func RescueText(r report.Rescue, loc Locale) string {
	switch r {
	case report.RescueYes:
		return loc.Yes
	case report.RescueNo:
		return loc.No
	default:
		return loc.Unknown
	}
}

// Value returns the value shown for label, or "" when absent.
func (l Lines) Value(label string) string {
	for _, line := range l {
		if line.Label == label {
			return line.Value
		}
	}
	return ""
}

// Text renders plain "label: value" lines.
func (l Lines) Text() string {
	var b strings.Builder
	for i, line := range l {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line.Label)
		b.WriteString(": ")
		b.WriteString(line.Value)
	}
	return b.String()
}

// HTML renders the escaped popup block bound to the Leaflet marker.
func (l Lines) HTML() string {
	var b strings.Builder
	b.WriteString(`<div style="min-width:200px">`)
	for i, line := range l {
		if i > 0 {
			b.WriteString("<br>")
		}
		b.WriteString("<b>")
		b.WriteString(html.EscapeString(line.Label))
		b.WriteString(":</b> ")
		b.WriteString(html.EscapeString(line.Value))
	}
	b.WriteString(`</div>`)
	return b.String()
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
