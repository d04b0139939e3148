package popup

import (
	"golang.org/x/text/language"

	"github.com/Zachdehooge/damage-map/internal/report"
)

// Locale holds the display strings for popups and the legend.
type Locale struct {
	Tag language.Tag

	Unknown string
	None    string
	Yes     string
	No      string

	DamageLabel  string
	HealthLabel  string
	RescueLabel  string
	PeopleLabel  string
	AgeLabel     string
	CommentLabel string

	Title        string
	LegendHealth string
	LegendDamage string
	LegendRescue string
	Health       map[report.HealthStatus]string
	Damage       map[report.DamageType]string
}

var Japanese = Locale{
	Tag:          language.Japanese,
	Unknown:      "不明",
	None:         "なし",
	Yes:          "はい",
	No:           "いいえ",
	DamageLabel:  "災害種別",
	HealthLabel:  "健康状態",
	RescueLabel:  "救助要否",
	PeopleLabel:  "人数",
	AgeLabel:     "年齢層",
	CommentLabel: "コメント",
	Title:        "被害状況マップ",
	LegendHealth: "健康状態（色）",
	LegendDamage: "被害種別（記号）",
	LegendRescue: "▲ 救助が必要 / ● その他",
	Health: map[report.HealthStatus]string{
		report.HealthSevere:    "重傷",
		report.HealthMinor:     "軽傷",
		report.HealthUninjured: "無傷",
		report.HealthUnknown:   "不明",
	},
	Damage: map[report.DamageType]string{
		report.DamageFire:        "火災",
		report.DamageCollapse:    "倒壊",
		report.DamageFlooding:    "冠水",
		report.DamageRoadClosure: "通行止め",
		report.DamageOther:       "その他",
	},
}

var English = Locale{
	Tag:          language.English,
	Unknown:      "unknown",
	None:         "none",
	Yes:          "yes",
	No:           "no",
	DamageLabel:  "Damage",
	HealthLabel:  "Health",
	RescueLabel:  "Rescue needed",
	PeopleLabel:  "People",
	AgeLabel:     "Age group",
	CommentLabel: "Comment",
	Title:        "Damage Report Map",
	LegendHealth: "Health status (color)",
	LegendDamage: "Damage type (symbol)",
	LegendRescue: "▲ rescue needed / ● other",
	Health: map[report.HealthStatus]string{
		report.HealthSevere:    "severe",
		report.HealthMinor:     "minor",
		report.HealthUninjured: "uninjured",
		report.HealthUnknown:   "unknown",
	},
	Damage: map[report.DamageType]string{
		report.DamageFire:        "fire",
		report.DamageCollapse:    "collapse",
		report.DamageFlooding:    "flooding",
		report.DamageRoadClosure: "road closure",
		report.DamageOther:       "other",
	},
}

var (
	locales = []Locale{Japanese, English}
	matcher = language.NewMatcher([]language.Tag{language.Japanese, language.English})
)

// LocaleFor picks the closest supported locale for a BCP-47 tag list such
// as "en-US" or an Accept-Language value. Japanese is the fallback.
func LocaleFor(tags ...string) Locale {
	_, idx := language.MatchStrings(matcher, tags...)
	if idx < 0 || idx >= len(locales) {
		return Japanese
	}
	return locales[idx]
}
