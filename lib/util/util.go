// Package util contains helper functions used around the code.
package util

import "strings"

// In returns true if s is found in ss, false otherwise
func In(ss []string, s string) bool {
	for _, v := range ss {
		if s == v {
			return true
		}
	}

	return false
}

// HasAnyPrefix returns true if s starts with any of the prefixes in ps.
func HasAnyPrefix(s string, ps []string) bool {
	for _, p := range ps {
		if strings.HasPrefix(s, p) {
			return true
		}
	}

	return false
}
