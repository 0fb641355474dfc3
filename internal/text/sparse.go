package text

import "math"

// Vector is a sparse feature vector with strictly increasing indices
type Vector struct {
	Dim     int
	Indices []int
	Values  []float64
}

// NNZ returns the number of stored entries
func (v Vector) NNZ() int {
	return len(v.Indices)
}

// Dot returns the inner product with a dense vector of the same dimension
func (v Vector) Dot(dense []float64) float64 {
	var sum float64
	for k, idx := range v.Indices {
		sum += v.Values[k] * dense[idx]
	}
	return sum
}

// Norm returns the Euclidean norm
func (v Vector) Norm() float64 {
	var sum float64
	for _, x := range v.Values {
		sum += x * x
	}
	return math.Sqrt(sum)
}

// Dense expands the vector
func (v Vector) Dense() []float64 {
	out := make([]float64, v.Dim)
	for k, idx := range v.Indices {
		out[idx] = v.Values[k]
	}
	return out
}
