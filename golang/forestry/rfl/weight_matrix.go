package rfl

import (
	"sync"

	"gonum.org/v1/gonum/mat"
)

//WeightMatrix accumulates leaf membership weights of query rows (rows) over training rows
//(columns). It is shared by all trees predicting the same batch, one mutex guards all writes.
type WeightMatrix struct {
	mu   sync.Mutex
	data *mat.Dense
}

//NewWeightMatrix allocates a zero matrix with queryRows rows and trainingRows columns.
func NewWeightMatrix(queryRows, trainingRows int) *WeightMatrix {
	return &WeightMatrix{data: mat.NewDense(queryRows, trainingRows, nil)}
}

//AddLeafWeights adds 1/len(trainingRowIds) to every (query row, training row) pair. Training row
//ids are 1-based, the column of id k is k-1.
func (wm *WeightMatrix) AddLeafWeights(queryRows []int, trainingRowIds []int) {
	if len(trainingRowIds) == 0 {
		return
	}
	weight := 1.0 / float64(len(trainingRowIds))

	wm.mu.Lock()
	defer wm.mu.Unlock()
	for _, q := range queryRows {
		for _, id := range trainingRowIds {
			wm.data.Set(q, id-1, wm.data.At(q, id-1)+weight)
		}
	}
}

func (wm *WeightMatrix) At(i, j int) float64 {
	wm.mu.Lock()
	defer wm.mu.Unlock()
	return wm.data.At(i, j)
}

func (wm *WeightMatrix) Dims() (r, c int) {
	return wm.data.Dims()
}

//Dense returns a copy of the accumulated weights.
func (wm *WeightMatrix) Dense() *mat.Dense {
	wm.mu.Lock()
	defer wm.mu.Unlock()
	return mat.DenseCopyOf(wm.data)
}
