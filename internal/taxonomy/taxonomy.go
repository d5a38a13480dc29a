package taxonomy

import "strings"

// Industry is one of the four supported sub-industries.
type Industry string

const (
	Pharma     Industry = "pharma"
	Battery    Industry = "battery"
	Cosmetics  Industry = "cosmetics"
	Pesticides Industry = "pesticides"
)

// Industries returns the closed set in tie-break order.
func Industries() []Industry {
	return []Industry{Pharma, Battery, Cosmetics, Pesticides}
}

// ParseIndustry accepts the canonical tag plus the legacy page name
// "pharmaceuticals".
func ParseIndustry(s string) (Industry, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pharma", "pharmaceuticals":
		return Pharma, true
	case "battery":
		return Battery, true
	case "cosmetics":
		return Cosmetics, true
	case "pesticides":
		return Pesticides, true
	}
	return "", false
}

func (i Industry) Valid() bool {
	p, ok := ParseIndustry(string(i))
	return ok && p == i
}

// Rank is the position of i in Industries(), or len(Industries()) for an
// unknown tag.
func (i Industry) Rank() int {
	for n, ind := range Industries() {
		if ind == i {
			return n
		}
	}
	return len(Industries())
}

type Urgency string

const (
	UrgencyLow    Urgency = "low"
	UrgencyMedium Urgency = "medium"
	UrgencyHigh   Urgency = "high"
)

func ParseUrgency(s string) (Urgency, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low":
		return UrgencyLow, true
	case "medium":
		return UrgencyMedium, true
	case "high":
		return UrgencyHigh, true
	}
	return "", false
}

func (u Urgency) Valid() bool {
	return u == UrgencyLow || u == UrgencyMedium || u == UrgencyHigh
}
