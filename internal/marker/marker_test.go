package marker

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Zachdehooge/damage-map/internal/report"
)

func TestResolveColor(t *testing.T) {
	cases := map[string]string{
		"重傷":        ColorRed,
		"軽傷":        ColorOrange,
		"無傷":        ColorGreen,
		"severe":    ColorRed,
		"minor":     ColorOrange,
		"uninjured": ColorGreen,
		"":          ColorGray,
		"unknown":   ColorGray,
		"骨折":        ColorGray,
	}
	for health, want := range cases {
		s := Resolve(report.Report{HealthStatus: health}, Options{})
		assert.Equal(t, want, s.Color, "health_status %q", health)
	}
}

func TestResolveShapeIsTwoValued(t *testing.T) {
	assert.Equal(t, ShapeRescue, Resolve(report.Report{Rescue: report.RescueYes}, Options{}).Shape)
	assert.Equal(t, ShapeNormal, Resolve(report.Report{Rescue: report.RescueNo}, Options{}).Shape)
	assert.Equal(t, ShapeNormal, Resolve(report.Report{Rescue: report.RescueUnknown}, Options{}).Shape)
	assert.NotEqual(t, ShapeRescue, ShapeNormal)
}

func TestResolveSymbol(t *testing.T) {
	cases := map[string]string{
		"火災":   "🔥",
		"倒壊":   "🏚️",
		"冠水":   "💧",
		"通行止め": "🚫",
		"その他":  "⚙️",
		"落石":   "",
		"":     "",
	}
	for damage, want := range cases {
		s := Resolve(report.Report{Damage: damage}, Options{})
		assert.Equal(t, want, s.Symbol, "damage %q", damage)
	}
}

func TestResolveIconImages(t *testing.T) {
	s := Resolve(report.Report{HealthStatus: "軽傷"}, Options{IconBase: "/static/icons"})
	assert.Equal(t, "/static/icons/orange.png", s.IconURL)

	s = Resolve(report.Report{}, Options{})
	assert.Empty(t, s.IconURL)
}

func TestDivIconHTML(t *testing.T) {
	html := DivIconHTML(Style{Color: ColorRed, Shape: ShapeRescue, Symbol: "🔥"})
	assert.Contains(t, html, "color:red")
	assert.Contains(t, html, "▲")
	assert.Contains(t, html, "🔥")
	assert.Contains(t, html, "translate(-50%,-50%)")
}

func TestLegends(t *testing.T) {
	assert.Len(t, HealthLegend(), 4)
	damage := DamageLegend()
	assert.Len(t, damage, 5)
	for _, e := range damage {
		assert.NotEmpty(t, e.Glyph)
	}
}
