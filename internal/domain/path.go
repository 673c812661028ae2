package domain

import "strings"

// ValidSegment reports whether s can be used as a single archive path
// component (a network, station or channel code).
func ValidSegment(s string) bool {
	if s == "" || s == "." || s == ".." {
		return false
	}
	return !strings.ContainsAny(s, `/\`) && !strings.ContainsRune(s, 0)
}
