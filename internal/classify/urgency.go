package classify

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/chemtalent/jobchain/internal/taxonomy"
)

var digitRun = regexp.MustCompile(`\d+`)

// InferUrgency takes the largest integer in the salary text and compares it
// to the thresholds. Units are ignored: "8-13k", "8000-13000" and "1.5万"
// are all read as bare numbers.
func InferUrgency(salary string, th taxonomy.UrgencyThresholds) taxonomy.Urgency {
	runs := digitRun.FindAllString(salary, -1)
	if len(runs) == 0 {
		return taxonomy.UrgencyLow
	}

	var max int64
	for _, r := range runs {
		n, err := strconv.ParseInt(r, 10, 64)
		if err != nil {
			// only a range error is possible here; such a number is above any threshold
			return taxonomy.UrgencyHigh
		}
		if n > max {
			max = n
		}
	}

	switch {
	case max >= int64(th.High):
		return taxonomy.UrgencyHigh
	case max >= int64(th.Medium):
		return taxonomy.UrgencyMedium
	default:
		return taxonomy.UrgencyLow
	}
}

const maxFallbackNodeLen = 30

// fallbackNodeID builds "<title>-<layer>" from the letters and digits of
// the title, lowercased and capped at 30 runes.
func fallbackNodeID(title, layer string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(title) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	id := b.String()
	if layer != "" {
		if id != "" {
			id += "-"
		}
		id += layer
	}
	if id == "" {
		id = "unassigned"
	}
	if r := []rune(id); len(r) > maxFallbackNodeLen {
		id = string(r[:maxFallbackNodeLen])
	}
	return id
}
