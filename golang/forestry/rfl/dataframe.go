package rfl

import (
	"math"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/mat"
)

//Dataset gives a tree read access to its training data.
type Dataset interface {
	//PartitionMean returns the mean target over the given training row positions.
	PartitionMean(indices []int) float64
	//CategoricalFeatureIDs returns the columns whose splits test equality.
	CategoricalFeatureIDs() []int
	//RowIDs translates training row positions into 1-based training row ids.
	RowIDs(indices []int) []int
}

//WeightedDataset is a Dataset that knows its size and the column count of a weight matrix
//over its rows.
type WeightedDataset interface {
	Dataset
	NumRows() int
	NumColumns() int
	TrainingRows() int
}

//DataFrame is an in-memory training set: features, target, categorical columns and row ids.
type DataFrame struct {
	features     *mat.Dense
	target       []float64
	categorical  []int
	rowIds       []int
	trainingRows int
}

//NewDataFrame validates and wraps a training set. A nil rowIds numbers the rows 1..n.
func NewDataFrame(features *mat.Dense, target []float64, categorical []int, rowIds []int) (*DataFrame, error) {
	if features == nil {
		return nil, errors.New("nil training features")
	}
	h, w := features.Dims()
	if len(target) != h {
		return nil, errors.Errorf("the target length %d is not equal to the features height %d", len(target), h)
	}
	for _, f := range categorical {
		if f < 0 || f >= w {
			return nil, errors.Errorf("categorical feature %d is out of range [0, %d)", f, w)
		}
	}

	if rowIds == nil {
		rowIds = make([]int, h)
		for p := range rowIds {
			rowIds[p] = p + 1
		}
	}
	if len(rowIds) != h {
		return nil, errors.Errorf("%d row ids for %d rows", len(rowIds), h)
	}

	trainingRows := 0
	for p, id := range rowIds {
		if id < 1 {
			return nil, errors.Errorf("row id %d at position %d is not 1-based", id, p)
		}
		if id > trainingRows {
			trainingRows = id
		}
	}

	return &DataFrame{
		features:     features,
		target:       target,
		categorical:  categorical,
		rowIds:       rowIds,
		trainingRows: trainingRows,
	}, nil
}

//ReadDataFrame loads a training set from a features npy file, a target npy file and a yml
//feature metadata file.
func ReadDataFrame(fileNameFeatures, fileNameTarget, fileNameMetadata string) (*DataFrame, error) {
	log.Debug().Str("features", fileNameFeatures).Str("target", fileNameTarget).Msg("load training set")
	features, err := ReadNpy(fileNameFeatures)
	if err != nil {
		return nil, err
	}
	target, err := ReadNpyVector(fileNameTarget)
	if err != nil {
		return nil, err
	}
	metadata, err := ReadFeatureMetadata(fileNameMetadata)
	if err != nil {
		return nil, err
	}
	if _, w := features.Dims(); w != len(metadata.Names) {
		return nil, errors.Errorf("%s has %d columns, metadata %s declares %d features",
			fileNameFeatures, w, fileNameMetadata, len(metadata.Names))
	}
	return NewDataFrame(features, target, metadata.Categorical, nil)
}

func (df *DataFrame) PartitionMean(indices []int) float64 {
	if len(indices) == 0 {
		return math.NaN()
	}
	s := 0.0
	for _, ind := range indices {
		s += df.target[ind]
	}
	return s / float64(len(indices))
}

func (df *DataFrame) CategoricalFeatureIDs() []int {
	return df.categorical
}

func (df *DataFrame) RowIDs(indices []int) []int {
	ids := make([]int, len(indices))
	for p, ind := range indices {
		ids[p] = df.rowIds[ind]
	}
	return ids
}

//TrainingRows is the largest row id, the number of columns of a weight matrix over this set.
func (df *DataFrame) TrainingRows() int {
	return df.trainingRows
}

func (df *DataFrame) NumRows() int {
	return Height(df.features)
}

func (df *DataFrame) NumColumns() int {
	_, w := df.features.Dims()
	return w
}

func (df *DataFrame) Features() *mat.Dense { return df.features }

func (df *DataFrame) Target() []float64 { return df.target }
