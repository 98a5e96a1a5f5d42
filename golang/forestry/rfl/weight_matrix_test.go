package rfl

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/mat"
)

func TestAddLeafWeights(t *testing.T) {
	wm := NewWeightMatrix(2, 3)
	wm.AddLeafWeights([]int{1}, []int{1, 3})
	wm.AddLeafWeights([]int{0, 1}, []int{3})
	wm.AddLeafWeights([]int{0}, nil)

	r, c := wm.Dims()
	assert.Equal(t, 2, r)
	assert.Equal(t, 3, c)
	assert.Equal(t, 0.0, wm.At(0, 0))
	assert.Equal(t, 1.0, wm.At(0, 2))
	assert.Equal(t, 0.5, wm.At(1, 0))
	assert.Equal(t, 1.5, wm.At(1, 2))
}

func TestWeightMatrixConcurrentEqualsSequential(t *testing.T) {
	type leafVisit struct {
		queryRows []int
		rowIds    []int
	}
	var visits []leafVisit
	for p := 0; p < 200; p++ {
		visits = append(visits,
			leafVisit{[]int{p % 5, (p + 1) % 5}, []int{1 + p%7, 1 + (p+3)%7}},
			leafVisit{[]int{p % 5}, []int{1, 2, 3, 4}},
		)
	}

	sequential := NewWeightMatrix(5, 7)
	for _, visit := range visits {
		sequential.AddLeafWeights(visit.queryRows, visit.rowIds)
	}

	concurrent := NewWeightMatrix(5, 7)
	var wg sync.WaitGroup
	for _, visit := range visits {
		wg.Add(1)
		go func(visit leafVisit) {
			defer wg.Done()
			concurrent.AddLeafWeights(visit.queryRows, visit.rowIds)
		}(visit)
	}
	wg.Wait()

	assert.True(t, mat.EqualApprox(sequential.Dense(), concurrent.Dense(), 1e-12))
}
