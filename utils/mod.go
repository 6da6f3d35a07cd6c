package utils

// FindIndex returns the index of the first item equal to the given one, or -1.
func FindIndex[T comparable](slice []T, item T) int {
	for i, v := range slice {
		if v == item {
			return i
		}
	}
	return -1
}

// Argmax returns the index of the largest value, the first one on ties, or -1
// for an empty slice.
func Argmax(values []float64) int {
	maxIndex := -1
	for i, v := range values {
		if maxIndex < 0 || v > values[maxIndex] {
			maxIndex = i
		}
	}
	return maxIndex
}
