package utils

// FindIndex returns the position of the first item in slice, or -1.
func FindIndex[T comparable](slice []T, item T) int {
	for i, v := range slice {
		if v == item {
			return i
		}
	}
	return -1
}

// Dedupe returns items without repeats, keeping the first occurrence.
func Dedupe[T comparable](items []T) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if FindIndex(out, item) < 0 {
			out = append(out, item)
		}
	}
	return out
}
