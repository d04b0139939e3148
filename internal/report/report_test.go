package report

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealth(t *testing.T) {
	cases := map[string]HealthStatus{
		"重傷":        HealthSevere,
		"軽傷":        HealthMinor,
		"無傷":        HealthUninjured,
		"Severe":    HealthSevere,
		"uninjured": HealthUninjured,
		"":          HealthUnknown,
		"不明":        HealthUnknown,
		"bruised":   HealthUnknown,
	}
	for raw, want := range cases {
		assert.Equal(t, want, Report{HealthStatus: raw}.Health(), "health_status %q", raw)
	}
}

func TestDamageAlias(t *testing.T) {
	r := FromProperties(map[string]any{"damage_type": "冠水"}, 0, 0)
	assert.Equal(t, "冠水", r.Damage)
	assert.Equal(t, DamageFlooding, r.DamageType())

	r = FromProperties(map[string]any{"damage": "火災", "damage_type": "冠水"}, 0, 0)
	assert.Equal(t, DamageFire, r.DamageType(), "damage wins over damage_type")

	r = FromProperties(map[string]any{"damage": "", "damage_type": "倒壊"}, 0, 0)
	assert.Equal(t, DamageCollapse, r.DamageType(), "empty damage falls through")

	r = FromProperties(map[string]any{"damage": "落石"}, 0, 0)
	assert.Equal(t, "落石", r.Damage)
	assert.Equal(t, DamageUnknown, r.DamageType())
}

func TestParseRescue(t *testing.T) {
	cases := []struct {
		in   any
		want Rescue
	}{
		{true, RescueYes},
		{"はい", RescueYes},
		{"yes", RescueYes},
		{false, RescueNo},
		{"いいえ", RescueNo},
		{"No", RescueNo},
		{nil, RescueUnknown},
		{"たぶん", RescueUnknown},
		{1.0, RescueUnknown},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, ParseRescue(c.in), "rescue_needed %v", c.in)
	}
}

func TestPeopleCount(t *testing.T) {
	r := FromProperties(map[string]any{"people_count": 3.0}, 0, 0)
	require.NotNil(t, r.PeopleCount)
	assert.Equal(t, 3, *r.PeopleCount)

	r = FromProperties(map[string]any{"people_count": "0"}, 0, 0)
	require.NotNil(t, r.PeopleCount)
	assert.Equal(t, 0, *r.PeopleCount)

	for _, bad := range []any{-1.0, 2.5, "many", nil, true} {
		r = FromProperties(map[string]any{"people_count": bad}, 0, 0)
		assert.Nil(t, r.PeopleCount, "people_count %v", bad)
	}
}

func TestParseFeatureCollection(t *testing.T) {
	body := []byte(`{
		"type": "FeatureCollection",
		"features": [
			{"type": "Feature", "geometry": {"type": "Point", "coordinates": [139.6917, 35.6895]},
			 "properties": {"health_status": "重傷", "rescue_needed": true, "damage": "火災", "people_count": 3}},
			{"type": "Feature", "geometry": {"type": "LineString", "coordinates": [[0, 0], [1, 1]]}, "properties": {}},
			{"type": "Feature", "geometry": null, "properties": {}},
			{"type": "Feature", "geometry": {"type": "Point", "coordinates": [10, 95]}, "properties": {}}
		]
	}`)

	reports, skipped, err := ParseFeatureCollection(body)
	require.NoError(t, err)
	assert.Equal(t, 3, skipped)
	require.Len(t, reports, 1)

	r := reports[0]
	assert.InDelta(t, 35.6895, r.Lat, 1e-9)
	assert.InDelta(t, 139.6917, r.Lng, 1e-9)
	assert.Equal(t, HealthSevere, r.Health())
	assert.Equal(t, RescueYes, r.Rescue)
	assert.Equal(t, DamageFire, r.DamageType())
	require.NotNil(t, r.PeopleCount)
	assert.Equal(t, 3, *r.PeopleCount)
}

func TestParseFeatureCollectionEmpty(t *testing.T) {
	reports, skipped, err := ParseFeatureCollection([]byte(`{"type":"FeatureCollection","features":[]}`))
	require.NoError(t, err)
	assert.Zero(t, skipped)
	assert.Empty(t, reports)
}

func TestParseFeatureCollectionErrors(t *testing.T) {
	_, _, err := ParseFeatureCollection([]byte(`<html>`))
	assert.Error(t, err)

	_, _, err = ParseFeatureCollection([]byte(`{"type":"Feature"}`))
	assert.Error(t, err)
}

func TestToFeatureCollection(t *testing.T) {
	n := 2
	fc := ToFeatureCollection([]Report{{
		Lat: 35.0, Lng: 139.0, Damage: "倒壊", Rescue: RescueNo, PeopleCount: &n,
	}})

	b, err := json.Marshal(fc)
	require.NoError(t, err)

	reports, skipped, err := ParseFeatureCollection(b)
	require.NoError(t, err)
	assert.Zero(t, skipped)
	require.Len(t, reports, 1)
	assert.Equal(t, DamageCollapse, reports[0].DamageType())
	assert.Equal(t, RescueNo, reports[0].Rescue)
	assert.Equal(t, 2, *reports[0].PeopleCount)

	empty, err := json.Marshal(ToFeatureCollection(nil))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"FeatureCollection","features":[]}`, string(empty))
}
