package util

import (
	"cmp"
	"slices"
)

// SliceIncludes reports whether val is an element of s
func SliceIncludes[T comparable](s []T, val T) bool {
	for _, v := range s {
		if v == val {
			return true
		}
	}

	return false
}

// SortedUnique returns an ascending copy of s with duplicates removed
func SortedUnique[T cmp.Ordered](s []T) []T {
	out := append([]T{}, s...)

	slices.Sort(out)

	return slices.Compact(out)
}
