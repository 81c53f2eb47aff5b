package internal

import (
	"cmp"
	"iter"
	"maps"
	"slices"
)

// SortedConcat iterates over each map in turn, in key order within each map.
func SortedConcat[K cmp.Ordered, V any](ms ...map[K]V) iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for _, m := range ms {
			for _, key := range slices.Sorted(maps.Keys(m)) {
				if !yield(key, m[key]) {
					return // Stop if the consumer stops
				}
			}
		}
	}
}
