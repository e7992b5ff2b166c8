package domain

import "strings"

// ParseAnglers splits the anglers segment on "/" and trims each name. Order is
// preserved; duplicates and empty names are kept as written.
func ParseAnglers(segment string) []string {
	parts := strings.Split(strings.TrimSpace(segment), "/")
	anglers := make([]string, len(parts))
	for i, p := range parts {
		anglers[i] = strings.TrimSpace(p)
	}
	return anglers
}
