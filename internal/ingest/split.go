package ingest

import "strings"

// itemDelimiters are tried in order; only the first one present is used.
var itemDelimiters = []string{"\n", ";", "；", "|", ",", "，"}

// SplitItems splits a free-text cell into list items. Items are trimmed and
// blanks dropped. Text without any delimiter becomes a single item, and
// blank text an empty list.
func SplitItems(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return []string{}
	}
	for _, d := range itemDelimiters {
		if !strings.Contains(s, d) {
			continue
		}
		parts := strings.Split(s, d)
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out
	}
	return []string{s}
}
