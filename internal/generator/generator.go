package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"log"
	"time"

	"github.com/natefinch/atomic"

	"github.com/Zachdehooge/damage-map/internal/marker"
	"github.com/Zachdehooge/damage-map/internal/popup"
	"github.com/Zachdehooge/damage-map/internal/report"
)

// Options controls the map view and marker rendering.
type Options struct {
	Locale      popup.Locale
	Legend      bool
	Center      [2]float64 // lat, lng
	Zoom        int
	TileURL     string
	Attribution string
	Marker      marker.Options
	// LiveURL, when set, is the websocket path the page listens on for new markers.
	LiveURL string
}

// MapMarker is a fully resolved marker as consumed by the page script.
type MapMarker struct {
	Lat       float64 `json:"lat"`
	Lng       float64 `json:"lng"`
	Color     string  `json:"color"`
	IconHTML  string  `json:"iconHtml,omitempty"`
	IconURL   string  `json:"iconUrl,omitempty"`
	PopupHTML string  `json:"popupHtml"`
}

// Source is anything that can produce the current reports.
type Source interface {
	FetchReports(ctx context.Context) ([]report.Report, error)
}

// BuildMarkers resolves style and popup for every report. Order is preserved.
func BuildMarkers(reports []report.Report, opts Options) []MapMarker {
	out := make([]MapMarker, 0, len(reports))
	for _, r := range reports {
		out = append(out, BuildMarker(r, opts))
	}
	return out
}

// BuildMarker resolves a single report.
func BuildMarker(r report.Report, opts Options) MapMarker {
	style := marker.Resolve(r, opts.Marker)
	m := MapMarker{
		Lat:       r.Lat,
		Lng:       r.Lng,
		Color:     style.Color,
		IconURL:   style.IconURL,
		PopupHTML: popup.Format(r, opts.Locale).HTML(),
	}
	if style.IconURL == "" {
		m.IconHTML = marker.DivIconHTML(style)
	}
	return m
}

type legendRow struct {
	Glyph string
	Color string
	Label string
}

func legendRows(entries []marker.LegendEntry, label func(marker.LegendEntry) string) []legendRow {
	rows := make([]legendRow, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, legendRow{Glyph: e.Glyph, Color: e.Color, Label: label(e)})
	}
	return rows
}

// RenderMap writes the map page for reports to w.
func RenderMap(w io.Writer, reports []report.Report, opts Options) error {
	markersJSON, err := json.Marshal(BuildMarkers(reports, opts))
	if err != nil {
		return fmt.Errorf("failed to marshal markers to JSON: %w", err)
	}

	loc := opts.Locale
	data := struct {
		Title        string
		Lang         string
		Lat          float64
		Lng          float64
		Zoom         int
		TileURL      string
		Attribution  string
		MarkersJSON  template.JS
		Counter      int
		LastUpdated  string
		Legend       bool
		LegendHealth []legendRow
		LegendDamage []legendRow
		LegendTitles [3]string
		LiveURL      string
	}{
		Title:       loc.Title,
		Lang:        loc.Tag.String(),
		Lat:         opts.Center[0],
		Lng:         opts.Center[1],
		Zoom:        opts.Zoom,
		TileURL:     opts.TileURL,
		Attribution: opts.Attribution,
		MarkersJSON: template.JS(markersJSON),
		Counter:     len(reports),
		LastUpdated: time.Now().UTC().Format("Jan 2, 2006 at 15:04:05 UTC"),
		Legend:      opts.Legend,
		LegendHealth: legendRows(marker.HealthLegend(), func(e marker.LegendEntry) string {
			return loc.Health[report.HealthStatus(e.Label)]
		}),
		LegendDamage: legendRows(marker.DamageLegend(), func(e marker.LegendEntry) string {
			return loc.Damage[report.DamageType(e.Label)]
		}),
		LegendTitles: [3]string{loc.LegendHealth, loc.LegendDamage, loc.LegendRescue},
		LiveURL:      opts.LiveURL,
	}

	return pageTemplate.Execute(w, data)
}

// GenerateMapHTML renders the page and atomically replaces outputPath, so a
// browser never reads a partial file.
func GenerateMapHTML(reports []report.Report, outputPath string, opts Options) error {
	var buf bytes.Buffer
	if err := RenderMap(&buf, reports, opts); err != nil {
		return err
	}
	if err := atomic.WriteFile(outputPath, &buf); err != nil {
		return fmt.Errorf("failed to write %s: %w", outputPath, err)
	}
	return nil
}

// Generate fetches once and writes the page. A failed fetch is logged and the
// page is written with no markers, leaving the map at its initial view.
func Generate(ctx context.Context, src Source, outputPath string, opts Options) (int, error) {
	reports, err := src.FetchReports(ctx)
	if err != nil {
		log.Printf("[fetcher] report load failed: %v", err)
		reports = nil
	}
	if err := GenerateMapHTML(reports, outputPath, opts); err != nil {
		return 0, err
	}
	return len(reports), nil
}
