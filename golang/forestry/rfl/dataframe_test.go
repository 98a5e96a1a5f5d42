package rfl

import (
	"math"
	"os"
	"path"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestNewDataFrameValidation(t *testing.T) {
	features := mat.NewDense(3, 2, nil)

	_, err := NewDataFrame(nil, nil, nil, nil)
	assert.Error(t, err)
	_, err = NewDataFrame(features, []float64{1, 2}, nil, nil)
	assert.Error(t, err)
	_, err = NewDataFrame(features, []float64{1, 2, 3}, []int{2}, nil)
	assert.Error(t, err)
	_, err = NewDataFrame(features, []float64{1, 2, 3}, nil, []int{1, 2})
	assert.Error(t, err)
	_, err = NewDataFrame(features, []float64{1, 2, 3}, nil, []int{0, 1, 2})
	assert.Error(t, err)

	df, err := NewDataFrame(features, []float64{1, 2, 3}, []int{1}, []int{10, 4, 7})
	require.NoError(t, err)
	assert.Equal(t, 10, df.TrainingRows())
	assert.Equal(t, 3, df.NumRows())
	assert.Equal(t, 2, df.NumColumns())
	assert.Equal(t, []int{7, 10}, df.RowIDs([]int{2, 0}))
	assert.Equal(t, []int{1}, df.CategoricalFeatureIDs())
}

func TestPartitionMean(t *testing.T) {
	df := testFrame(t)
	assert.Equal(t, 2.5, df.PartitionMean([]int{0, 3}))
	assert.Equal(t, 3.0, df.PartitionMean([]int{0, 3, 3}))
	assert.True(t, math.IsNaN(df.PartitionMean(nil)))
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7, 8}, df.RowIDs(allRows(8)))
}

func TestReadDataFrame(t *testing.T) {
	dir := t.TempDir()
	df := testFrame(t)
	require.NoError(t, WriteNpy(path.Join(dir, "features.npy"), df.Features()))
	require.NoError(t, WriteNpy(path.Join(dir, "target.npy"), df.Target()))
	require.NoError(t, os.WriteFile(path.Join(dir, "features.yml"), []byte(`
features:
  width: continuous
  color: [0, 1, 2]
`), 0o644))

	loaded, err := ReadDataFrame(path.Join(dir, "features.npy"), path.Join(dir, "target.npy"), path.Join(dir, "features.yml"))
	require.NoError(t, err)
	assert.True(t, mat.Equal(df.Features(), loaded.Features()))
	assert.Equal(t, df.Target(), loaded.Target())
	assert.Equal(t, []int{1}, loaded.CategoricalFeatureIDs())

	require.NoError(t, os.WriteFile(path.Join(dir, "narrow.yml"), []byte("features:\n  width: continuous\n"), 0o644))
	_, err = ReadDataFrame(path.Join(dir, "features.npy"), path.Join(dir, "target.npy"), path.Join(dir, "narrow.yml"))
	assert.Error(t, err)

	_, err = ReadNpy(path.Join(dir, "target.npy"))
	assert.Error(t, err)
}
