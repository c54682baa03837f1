package fn

import "sort"

// Map applies f to each element.
func Map[T, U any](items []T, f func(T) U) []U {
	out := make([]U, len(items))
	for i, v := range items {
		out[i] = f(v)
	}
	return out
}

// Filter returns elements where pred is true.
func Filter[T any](items []T, pred func(T) bool) []T {
	var out []T
	for _, v := range items {
		if pred(v) {
			out = append(out, v)
		}
	}
	return out
}

// GroupBy groups items by a key function.
func GroupBy[T any, K comparable](items []T, key func(T) K) map[K][]T {
	out := make(map[K][]T)
	for _, v := range items {
		k := key(v)
		out[k] = append(out[k], v)
	}
	return out
}

// Unique returns unique elements preserving first-occurrence order.
func Unique[T comparable](items []T) []T {
	seen := make(map[T]struct{})
	var out []T
	for _, v := range items {
		if _, ok := seen[v]; !ok {
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	return out
}

// FlatMap applies f to each element and flattens the results.
func FlatMap[T, U any](items []T, f func(T) []U) []U {
	var out []U
	for _, v := range items {
		out = append(out, f(v)...)
	}
	return out
}

// CountBy tallies occurrences of each key produced by f.
func CountBy[T any, K comparable](items []T, f func(T) K) map[K]int {
	out := make(map[K]int)
	for _, v := range items {
		out[f(v)]++
	}
	return out
}

// Tally counts occurrences of each element.
func Tally[T comparable](items []T) map[T]int {
	out := make(map[T]int)
	for _, v := range items {
		out[v]++
	}
	return out
}

// Counted is one entry of a ranked tally.
type Counted[K comparable] struct {
	Key   K
	Count int
}

// TopN returns the n highest-count entries of a tally, count descending,
// key order (by less) breaking ties so output is deterministic.
func TopN[K comparable](counts map[K]int, n int, less func(a, b K) bool) []Counted[K] {
	out := make([]Counted[K], 0, len(counts))
	for k, c := range counts {
		out = append(out, Counted[K]{Key: k, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return less(out[i].Key, out[j].Key)
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// SortedKeys returns map keys in sorted order for deterministic iteration.
func SortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
