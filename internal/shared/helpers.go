// Package shared provides common utility functions used across multiple
// packages in the schemalens codebase.
package shared

import (
	"fmt"
	"sort"
	"strings"
)

// HTTPStatusError creates a formatted error for non-2xx HTTP responses.
func HTTPStatusError(status int, url string) error {
	return fmt.Errorf("status=%d url=%s", status, url)
}

// SortedSet returns the distinct members of a set-like map in ascending
// order.
func SortedSet(values map[string]struct{}) []string {
	out := make([]string, 0, len(values))
	for key := range values {
		out = append(out, key)
	}
	sort.Strings(out)
	return out
}

// UniqueStrings removes duplicates while keeping first-seen order.
func UniqueStrings(values []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(values))
	for _, value := range values {
		if _, ok := seen[value]; ok {
			continue
		}
		seen[value] = struct{}{}
		out = append(out, value)
	}
	return out
}

// Subtract returns the members of left that are absent from right, sorted
// ascending and de-duplicated.
func Subtract(left []string, right []string) []string {
	exclude := make(map[string]struct{}, len(right))
	for _, value := range right {
		exclude[value] = struct{}{}
	}
	keep := map[string]struct{}{}
	for _, value := range left {
		if _, ok := exclude[value]; ok {
			continue
		}
		keep[value] = struct{}{}
	}
	return SortedSet(keep)
}

// FirstNonEmpty returns the first argument that is not blank.
func FirstNonEmpty(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return strings.TrimSpace(value)
		}
	}
	return ""
}
