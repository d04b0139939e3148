package report

import (
	"encoding/json"
	"fmt"
	"math"
)

// FeatureCollection is the GeoJSON envelope served on /data.
type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

// Feature is a single GeoJSON feature.
type Feature struct {
	Type       string         `json:"type"`
	Geometry   *Geometry      `json:"geometry"`
	Properties map[string]any `json:"properties"`
}

// Geometry only needs to describe Points here.
type Geometry struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"` // [lng, lat]
}

// ParseFeatureCollection decodes a FeatureCollection body into reports.
// Features without a usable Point geometry are dropped and counted in skipped.
func ParseFeatureCollection(data []byte) (reports []Report, skipped int, err error) {
	var fc FeatureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, 0, fmt.Errorf("failed to parse GeoJSON: %w", err)
	}
	if fc.Type != "" && fc.Type != "FeatureCollection" {
		return nil, 0, fmt.Errorf("unexpected GeoJSON type %q", fc.Type)
	}

	reports = make([]Report, 0, len(fc.Features))
	for _, f := range fc.Features {
		r, err := f.Report()
		if err != nil {
			skipped++
			continue
		}
		reports = append(reports, r)
	}
	return reports, skipped, nil
}

// ParseFeature decodes a single Feature body.
func ParseFeature(data []byte) (Report, error) {
	var f Feature
	if err := json.Unmarshal(data, &f); err != nil {
		return Report{}, fmt.Errorf("failed to parse feature: %w", err)
	}
	return f.Report()
}

// Report converts the feature, failing when the geometry is not a Point.
func (f Feature) Report() (Report, error) {
	g := f.Geometry
	if g == nil || g.Type != "Point" || len(g.Coordinates) < 2 {
		return Report{}, fmt.Errorf("feature has no point geometry")
	}
	lng, lat := g.Coordinates[0], g.Coordinates[1]
	if !finite(lat) || !finite(lng) || lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return Report{}, fmt.Errorf("invalid coordinates [%v, %v]", lng, lat)
	}
	props := f.Properties
	if props == nil {
		props = map[string]any{}
	}
	return FromProperties(props, lat, lng), nil
}

// ToFeature encodes a report as a Point feature.
func ToFeature(r Report) Feature {
	return Feature{
		Type: "Feature",
		Geometry: &Geometry{
			Type:        "Point",
			Coordinates: []float64{r.Lng, r.Lat},
		},
		Properties: r.Properties(),
	}
}

// ToFeatureCollection encodes reports; an empty input yields an empty, non-null features array.
func ToFeatureCollection(reports []Report) FeatureCollection {
	features := make([]Feature, 0, len(reports))
	for _, r := range reports {
		features = append(features, ToFeature(r))
	}
	return FeatureCollection{
		Type:     "FeatureCollection",
		Features: features,
	}
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
