// Package report holds the disaster report model shared by the loader,
// the renderer and the store.
package report

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// HealthStatus is the normalized health classification of a report.
type HealthStatus string

const (
	HealthUnknown   HealthStatus = "unknown"
	HealthSevere    HealthStatus = "severe"
	HealthMinor     HealthStatus = "minor"
	HealthUninjured HealthStatus = "uninjured"
)

// DamageType is the normalized damage category of a report.
type DamageType string

const (
	DamageUnknown     DamageType = "unknown"
	DamageFire        DamageType = "fire"
	DamageCollapse    DamageType = "collapse"
	DamageFlooding    DamageType = "flooding"
	DamageRoadClosure DamageType = "road-closure"
	DamageOther       DamageType = "other"
)

// Rescue is the tri-state rescue_needed flag.
type Rescue int

const (
	RescueUnknown Rescue = iota
	RescueYes
	RescueNo
)

// Wire values are what the LINE intake and the /data feed send. English
// names are accepted as aliases.
var healthValues = map[string]HealthStatus{
	"重傷":        HealthSevere,
	"軽傷":        HealthMinor,
	"無傷":        HealthUninjured,
	"severe":    HealthSevere,
	"minor":     HealthMinor,
	"uninjured": HealthUninjured,
}

var damageValues = map[string]DamageType{
	"火災":           DamageFire,
	"倒壊":           DamageCollapse,
	"冠水":           DamageFlooding,
	"通行止め":         DamageRoadClosure,
	"その他":          DamageOther,
	"fire":         DamageFire,
	"collapse":     DamageCollapse,
	"flooding":     DamageFlooding,
	"road-closure": DamageRoadClosure,
	"other":        DamageOther,
}

// DamageChoices are the damage labels offered to reporters, in display order.
var DamageChoices = []string{"倒壊", "冠水", "通行止め", "火災", "その他"}

// Report is one geolocated disaster report.
type Report struct {
	ID           string
	Lat          float64
	Lng          float64
	HealthStatus string
	Damage       string
	Rescue       Rescue
	PeopleCount  *int
	AgeGroup     string
	Comment      string

	// Set only on stored reports.
	UserID    string
	CreatedAt time.Time
	Pending   bool
}

// Health normalizes the raw health_status value.
func (r Report) Health() HealthStatus {
	if h, ok := healthValues[normalize(r.HealthStatus)]; ok {
		return h
	}
	return HealthUnknown
}

// DamageType normalizes the raw damage value.
func (r Report) DamageType() DamageType {
	if d, ok := damageValues[normalize(r.Damage)]; ok {
		return d
	}
	return DamageUnknown
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// FromProperties builds a Report from GeoJSON feature properties. Every
// lookup is total: unusable values leave the field empty.
func FromProperties(props map[string]any, lat, lng float64) Report {
	r := Report{
		Lat:          lat,
		Lng:          lng,
		ID:           stringProp(props, "id"),
		HealthStatus: stringProp(props, "health_status"),
		Damage:       firstNonEmpty(stringProp(props, "damage"), stringProp(props, "damage_type")),
		Rescue:       ParseRescue(props["rescue_needed"]),
		PeopleCount:  parseCount(props["people_count"]),
		AgeGroup:     stringProp(props, "age_group"),
		Comment:      stringProp(props, "comment"),
	}
	return r
}

// Properties is the inverse of FromProperties. Absent fields are omitted.
func (r Report) Properties() map[string]any {
	props := make(map[string]any)
	if r.ID != "" {
		props["id"] = r.ID
	}
	if r.HealthStatus != "" {
		props["health_status"] = r.HealthStatus
	}
	if r.Damage != "" {
		props["damage"] = r.Damage
	}
	switch r.Rescue {
	case RescueYes:
		props["rescue_needed"] = true
	case RescueNo:
		props["rescue_needed"] = false
	}
	if r.PeopleCount != nil {
		props["people_count"] = *r.PeopleCount
	}
	if r.AgeGroup != "" {
		props["age_group"] = r.AgeGroup
	}
	if r.Comment != "" {
		props["comment"] = r.Comment
	}
	return props
}

// ParseRescue maps a rescue_needed property onto the tri-state.
func ParseRescue(v any) Rescue {
	switch t := v.(type) {
	case bool:
		if t {
			return RescueYes
		}
		return RescueNo
	case string:
		switch normalize(t) {
		case "はい", "yes", "true":
			return RescueYes
		case "いいえ", "no", "false":
			return RescueNo
		}
	}
	return RescueUnknown
}

func parseCount(v any) *int {
	var n float64
	switch t := v.(type) {
	case float64:
		n = t
	case int:
		n = float64(t)
	case int64:
		n = float64(t)
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return nil
		}
		n = f
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(t))
		if err != nil {
			return nil
		}
		n = float64(i)
	default:
		return nil
	}
	if n < 0 || n != math.Trunc(n) || n > math.MaxInt32 {
		return nil
	}
	c := int(n)
	return &c
}

func stringProp(props map[string]any, key string) string {
	switch t := props[key].(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	}
	return ""
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
