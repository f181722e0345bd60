package core

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// Distribution1D picks indices with probability proportional to fixed,
// non-negative weights (e.g. triangle areas of an emissive mesh)
type Distribution1D struct {
	weights []float64 // sampling weights, uniform when every input weight is zero
	cdf     []float64
	total   float64 // sum of the input weights
	mass    float64 // sum of the sampling weights
}

// NewDistribution1D normalizes the given weights into a CDF.
// All-zero weights are sampled uniformly but keep a zero Total.
func NewDistribution1D(weights []float64) *Distribution1D {
	if len(weights) == 0 {
		panic("distribution needs at least one weight")
	}
	for i, weight := range weights {
		if weight < 0 {
			panic(fmt.Sprintf("weight %d is negative: %g", i, weight))
		}
	}

	w := make([]float64, len(weights))
	copy(w, weights)

	total := floats.Sum(w)
	mass := total
	if total == 0 {
		for i := range w {
			w[i] = 1
		}
		mass = float64(len(w))
	}

	cdf := make([]float64, len(w))
	floats.CumSum(cdf, w)
	floats.Scale(1/mass, cdf)
	cdf[len(cdf)-1] = 1

	return &Distribution1D{weights: w, cdf: cdf, total: total, mass: mass}
}

// Sample returns the index whose CDF bucket contains u in [0,1) and its probability
func (d *Distribution1D) Sample(u float64) (int, float64) {
	index := sort.Search(len(d.cdf), func(i int) bool { return d.cdf[i] > u })
	if index >= len(d.cdf) {
		index = len(d.cdf) - 1
	}
	return index, d.weights[index] / d.mass
}

// Total returns the sum of the weights, 0 when they are all zero
func (d *Distribution1D) Total() float64 {
	return d.total
}

// Len returns the number of entries
func (d *Distribution1D) Len() int {
	return len(d.weights)
}

// String returns a string representation for debugging
func (d *Distribution1D) String() string {
	return fmt.Sprintf("Distribution1D{%d entries, total %.4g}", len(d.weights), d.total)
}
