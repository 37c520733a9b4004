package cdshooks

import (
	"strings"

	"github.com/google/uuid"

	"github.com/astrobsm/criticalcare/internal/platform/result"
)

// Card indicators.
const (
	Info     = "info"
	Warning  = "warning"
	Critical = "critical"
)

const maxSummary = 140

var indicatorRank = map[string]int{Info: 0, Warning: 1, Critical: 2}

// Indicator maps a band tier onto a card indicator.
func Indicator(tier string) string {
	switch tier {
	case "critical":
		return Critical
	case "high", "moderate":
		return Warning
	default:
		return Info
	}
}

// Cards renders a result as one summary card plus a warnings card when the
// result carries warnings. Contraindicated doses always raise the warnings
// card to critical.
func Cards(title string, res *result.Result, source Source) []Card {
	indicator := Info
	var labels []string
	for _, b := range res.Bands {
		labels = append(labels, b.Label)
		if i := Indicator(b.Tier); indicatorRank[i] > indicatorRank[indicator] {
			indicator = i
		}
	}

	summary := title
	if len(labels) > 0 {
		summary += ": " + strings.Join(labels, "; ")
	}

	var detail strings.Builder
	var warnings result.Section
	for _, s := range res.Sections {
		if s.ID == "warnings" {
			warnings = s
			continue
		}
		writeSection(&detail, s)
	}

	cards := []Card{{
		UUID:      uuid.NewString(),
		Summary:   truncate(summary),
		Detail:    strings.TrimSpace(detail.String()),
		Indicator: indicator,
		Source:    source,
	}}

	var contraindicated []string
	for _, d := range res.Doses {
		if d.Contraindicated {
			contraindicated = append(contraindicated, d.Drug+" is contraindicated in the "+d.Band+" band")
		}
	}
	if len(warnings.Lines) > 0 || len(contraindicated) > 0 {
		level := Warning
		if len(contraindicated) > 0 {
			level = Critical
		}
		var w strings.Builder
		writeSection(&w, warnings)
		writeSection(&w, result.Section{Lines: contraindicated})
		cards = append(cards, Card{
			UUID:      uuid.NewString(),
			Summary:   truncate(title + ": warnings"),
			Detail:    strings.TrimSpace(w.String()),
			Indicator: level,
			Source:    source,
		})
	}
	return cards
}

func writeSection(b *strings.Builder, s result.Section) {
	if len(s.Lines) == 0 {
		return
	}
	if s.Title != "" {
		b.WriteString("**" + s.Title + "**\n\n")
	}
	for _, l := range s.Lines {
		b.WriteString("- " + l + "\n")
	}
	b.WriteString("\n")
}

func truncate(s string) string {
	r := []rune(s)
	if len(r) <= maxSummary {
		return s
	}
	return string(r[:maxSummary-3]) + "..."
}
