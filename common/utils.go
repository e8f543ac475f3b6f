// Package common holds small helpers shared by the engine packages.
package common

// Coalesce returns the first value that is not the zero value of T. Descriptor defaults are
// filled with it, so an explicitly set field always wins over the fallback.
//
// Parameters:
//   - values: candidates in priority order
//
// Returns:
//   - T: the first non-zero candidate, or the zero value when every candidate is zero
func Coalesce[T comparable](values ...T) T {
	var zero T
	for _, v := range values {
		if v != zero {
			return v
		}
	}
	return zero
}
