// Package floatutils provides utilities for working with floats
package floatutils

import (
	"math"

	"gonum.org/v1/gonum/spatial/r1"
)

// Clip clips a floating point to within a minimum and maximum value.
// If the floating point exceeds max, then the function returns the max
// If min exceeds the floating point, then the function returns the min
func Clip(value, min, max float64) float64 {
	clipped := math.Min(value, max)
	return math.Max(clipped, min)
}

// ClipInterval is a wrapper to use Clip with an r1.Interval instead of
// a separate max and min value
func ClipInterval(value float64, interval r1.Interval) float64 {
	return Clip(value, interval.Min, interval.Max)
}

// Contains returns whether value lies in the closed interval
// [interval.Min, interval.Max]. NaN is never contained.
func Contains(interval r1.Interval, value float64) bool {
	return value >= interval.Min && value <= interval.Max
}

// MaxSlice gets the maximum value and indices of the maximum values in
// a slice of float64. Indices are returned in increasing order, so
// indices[0] is the first maximum encountered.
//
// MaxSlice panics if values is empty.
func MaxSlice(values []float64) (max float64, indices []int) {
	max, indices = values[0], []int{0}

	for i := 1; i < len(values); i++ {
		value := values[i]
		if value > max {
			max = value
			indices = indices[:0]
			indices = append(indices, i)
		} else if value == max {
			indices = append(indices, i)
		}
	}
	return
}

// ArgMax returns the index of the first maximum value in values.
//
// ArgMax panics if values is empty.
func ArgMax(values []float64) int {
	_, indices := MaxSlice(values)
	return indices[0]
}
