package rfl

import (
	"math"
	"math/rand"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestWriteNodeInfoThreeNodes(t *testing.T) {
	tree := mustSplit(t, 2, 1.5, mustLeaf(t, 0, 1), mustLeaf(t, 2))

	treeInfo := WriteNodeInfo(tree)
	assert.Equal(t, []uint64{3, 0, 0}, treeInfo.VarID)
	assert.Equal(t, []float64{1.5, 0, 0}, treeInfo.SplitVal)
	assert.Equal(t, [][]int{{0, 1}, {2}}, treeInfo.LeafAveragingIndex)

	rebuilt, err := ReconstructTree(treeInfo)
	require.NoError(t, err)
	assert.Equal(t, tree, rebuilt)
}

func TestWriteNodeInfoFeatureZero(t *testing.T) {
	tree := mustSplit(t, 0, -2, mustLeaf(t, 0), mustSplit(t, 0, 3, mustLeaf(t, 1), mustLeaf(t, 2)))

	treeInfo := WriteNodeInfo(tree)
	assert.Equal(t, []uint64{1, 0, 1, 0, 0}, treeInfo.VarID)
	assert.Equal(t, []float64{-2, 0, 3, 0, 0}, treeInfo.SplitVal)
}

func TestReconstructRandomTrees(t *testing.T) {
	rng := rand.New(rand.NewSource(17))
	df := testFrame(t)
	xNew := randomMatrix(rng, 30, 2)
	updateIndex := allRows(30)

	for iteration := 0; iteration < 50; iteration++ {
		tree := randomTree(rng, 5, 2, df.NumRows())
		treeInfo := WriteNodeInfo(tree)
		rebuilt, err := ReconstructTree(treeInfo)
		require.NoError(t, err)

		assert.Equal(t, treeInfo, WriteNodeInfo(rebuilt))
		assert.Equal(t, tree.String(), rebuilt.String())

		expected := make([]float64, 30)
		tree.Predict(expected, updateIndex, xNew, df, nil)
		actual := make([]float64, 30)
		rebuilt.Predict(actual, updateIndex, xNew, df, nil)
		assert.Equal(t, expected, actual)

		expectedWeights := NewWeightMatrix(30, df.TrainingRows())
		tree.Predict(expected, updateIndex, xNew, df, expectedWeights)
		actualWeights := NewWeightMatrix(30, df.TrainingRows())
		rebuilt.Predict(actual, updateIndex, xNew, df, actualWeights)
		assert.True(t, mat.Equal(expectedWeights.Dense(), actualWeights.Dense()))
	}
}

func TestReconstructErrors(t *testing.T) {
	leafSets := [][]int{{0}, {1}}
	testCases := []struct {
		name     string
		treeInfo *TreeInfo
	}{
		{"nil", nil},
		{"unequal lengths", &TreeInfo{VarID: []uint64{0}, SplitVal: []float64{0, 0}, LeafAveragingIndex: leafSets[:1], LeafSplittingIndex: leafSets[:1]}},
		{"empty", &TreeInfo{}},
		{"not enough nodes", &TreeInfo{VarID: []uint64{1, 0}, SplitVal: []float64{1, 0}, LeafAveragingIndex: leafSets[:1], LeafSplittingIndex: leafSets[:1]}},
		{"trailing nodes", &TreeInfo{VarID: []uint64{0, 0}, SplitVal: []float64{0, 0}, LeafAveragingIndex: leafSets, LeafSplittingIndex: leafSets}},
		{"missing leaf sets", &TreeInfo{VarID: []uint64{1, 0, 0}, SplitVal: []float64{1, 0, 0}, LeafAveragingIndex: leafSets[:1], LeafSplittingIndex: leafSets[:1]}},
		{"extra leaf sets", &TreeInfo{VarID: []uint64{0}, SplitVal: []float64{0}, LeafAveragingIndex: leafSets, LeafSplittingIndex: leafSets}},
		{"infinite split value", &TreeInfo{VarID: []uint64{1, 0, 0}, SplitVal: []float64{math.Inf(1), 0, 0}, LeafAveragingIndex: leafSets, LeafSplittingIndex: leafSets}},
		{"unequal leaf sets", &TreeInfo{VarID: []uint64{0}, SplitVal: []float64{0}, LeafAveragingIndex: leafSets, LeafSplittingIndex: leafSets[:1]}},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			_, err := ReconstructTree(testCase.treeInfo)
			assert.Error(t, err)
		})
	}

	_, err := ReconstructTree(&TreeInfo{VarID: []uint64{0}, SplitVal: []float64{0}, LeafAveragingIndex: [][]int{{}}, LeafSplittingIndex: [][]int{nil}})
	assert.Equal(t, ErrEmptyLeaf, errors.Cause(err))
}

func TestTreeInfoWriteNpy(t *testing.T) {
	dir := t.TempDir()
	tree := mustSplit(t, 2, 1.5, mustLeaf(t, 0, 1), mustLeaf(t, 2))
	require.NoError(t, WriteNodeInfo(tree).WriteNpy(dir))

	splitVal, err := ReadNpyVector(dir + "/split_val.npy")
	require.NoError(t, err)
	assert.Equal(t, []float64{1.5, 0, 0}, splitVal)
	assert.FileExists(t, dir+"/var_id.npy")

	assert.Error(t, (&TreeInfo{}).WriteNpy(dir))
}
