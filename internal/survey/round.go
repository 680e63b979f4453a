package survey

import (
	"regexp"
	"strings"

	"github.com/noah-isme/rgb-survey-api/internal/models"
)

// DefaultRoundName is used when a period label names no configured round.
// TODO: surface the fallback to the operator instead of silently filling the 第二回 columns.
const DefaultRoundName = "第二回"

var (
	bracketed   = regexp.MustCompile(`[（(](.*?)[）)]`)
	monthPrefix = regexp.MustCompile(`^(\d+月)`)
)

// RoundResolution is the outcome of reading a survey period label.
type RoundResolution struct {
	Name    string
	Matched bool
}

// ResolveRound finds the survey round named by a period label such as "9月(第二回)".
// Configured round names are searched first, then the first bracketed segment, then the
// whole label. Matched is false when the result is not a configured round.
func ResolveRound(period string, rounds []models.Round) RoundResolution {
	for _, r := range rounds {
		if r.Name != "" && strings.Contains(period, r.Name) {
			return RoundResolution{Name: r.Name, Matched: true}
		}
	}

	name := strings.TrimSpace(period)
	if m := bracketed.FindStringSubmatch(period); m != nil {
		name = m[1]
	}

	for _, r := range rounds {
		if r.Name == name {
			return RoundResolution{Name: name, Matched: true}
		}
	}
	return RoundResolution{Name: name, Matched: false}
}

// RoundColumnsFor returns the template columns for a round, falling back to the
// DefaultRoundName columns. The boolean is false when the fallback was used.
func RoundColumnsFor(name string, rounds []models.Round) (models.RoundColumns, bool) {
	var fallback models.RoundColumns
	for _, r := range rounds {
		if r.Name == name {
			return r.Columns, true
		}
		if r.Name == DefaultRoundName {
			fallback = r.Columns
		}
	}
	return fallback, false
}

// MonthLabel extracts the leading month ("9月") from a period label, "" when absent.
func MonthLabel(period string) string {
	if m := monthPrefix.FindStringSubmatch(strings.TrimSpace(period)); m != nil {
		return m[1]
	}
	return ""
}
