package rfl

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func mustLeaf(t *testing.T, averagingIndex ...int) *RFNode {
	leaf, err := NewLeafNode(averagingIndex, averagingIndex)
	require.NoError(t, err)
	return leaf
}

func mustSplit(t *testing.T, feature int, value float64, left, right *RFNode) *RFNode {
	node, err := NewSplitNode(feature, value, left, right)
	require.NoError(t, err)
	return node
}

//randomTree grows a tree with random structure. Split values are small integers so that
//categorical equality tests and ties both happen on integer valued queries.
func randomTree(rng *rand.Rand, depth, featuresNum, trainingRows int) *RFNode {
	if depth == 0 || rng.Float64() < 0.25 {
		averagingIndex := make([]int, 1+rng.Intn(trainingRows))
		for p := range averagingIndex {
			averagingIndex[p] = rng.Intn(trainingRows)
		}
		splittingIndex := make([]int, rng.Intn(trainingRows))
		for p := range splittingIndex {
			splittingIndex[p] = rng.Intn(trainingRows)
		}
		leaf, err := NewLeafNode(averagingIndex, splittingIndex)
		HandleError(err)
		return leaf
	}
	left := randomTree(rng, depth-1, featuresNum, trainingRows)
	right := randomTree(rng, depth-1, featuresNum, trainingRows)
	node, err := NewSplitNode(rng.Intn(featuresNum), float64(rng.Intn(4)), left, right)
	HandleError(err)
	return node
}

func randomMatrix(rng *rand.Rand, h, w int) *mat.Dense {
	data := make([]float64, h*w)
	for p := range data {
		data[p] = float64(rng.Intn(4))
	}
	return mat.NewDense(h, w, data)
}

//countingDataset records every leaf evaluation of the wrapped dataset.
type countingDataset struct {
	Dataset
	meanCalls int
}

func (cd *countingDataset) PartitionMean(indices []int) float64 {
	cd.meanCalls++
	return cd.Dataset.PartitionMean(indices)
}

//testFrame is 8 training rows with a continuous feature 0 and a categorical feature 1.
func testFrame(t *testing.T) *DataFrame {
	features := mat.NewDense(8, 2, []float64{
		0.5, 0,
		1.5, 1,
		2.5, 2,
		3.5, 0,
		0.5, 1,
		1.5, 2,
		2.5, 0,
		3.5, 1,
	})
	target := []float64{1, 2, 3, 4, 5, 6, 7, 8}
	df, err := NewDataFrame(features, target, []int{1}, nil)
	require.NoError(t, err)
	return df
}
