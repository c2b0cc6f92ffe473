// Package tweetid compares post identifiers as exact decimal integers.
//
// Identifiers are snowflake IDs that routinely exceed 2^53, so they are never
// converted through float64. Comparison is done on the digit strings.
package tweetid

import "strings"

// Compare orders two decimal identifier strings as unbounded non-negative
// integers. It returns -1 if a < b, 0 if a == b and +1 if a > b.
// Leading zeros are ignored. Non-numeric input is not validated.
func Compare(a, b string) int {
	a = trimZeros(a)
	b = trimZeros(b)

	if len(a) != len(b) {
		if len(a) < len(b) {
			return -1
		}
		return 1
	}
	return strings.Compare(a, b)
}

// AtOrBelow reports whether id is numerically less than or equal to boundary.
func AtOrBelow(id, boundary string) bool {
	return Compare(id, boundary) <= 0
}

// Valid reports whether id is a non-empty string of ASCII digits.
func Valid(id string) bool {
	if id == "" {
		return false
	}
	for i := 0; i < len(id); i++ {
		if id[i] < '0' || id[i] > '9' {
			return false
		}
	}
	return true
}

func trimZeros(s string) string {
	s = strings.TrimLeft(s, "0")
	if s == "" {
		return "0"
	}
	return s
}
