package app

import "strings"

// ParseFacilities splits the editor's comma-delimited input into trimmed,
// non-empty labels. Order and duplicates are kept; "" yields an empty list.
func ParseFacilities(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// JoinFacilities is the inverse used to prefill the form.
func JoinFacilities(fs []string) string { return strings.Join(fs, ", ") }
