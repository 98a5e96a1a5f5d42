package rfl

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/mat"
	"gorgonia.org/tensor"
)

//ErrDimensionMismatch is returned when a query batch and the training set differ in width.
var ErrDimensionMismatch = errors.New("query and training features differ in width")

const (
	AggregationAverage      = "average"
	AggregationWeightMatrix = "weightMatrix"
)

//Forest is the model class, an ensemble of independently grown trees.
type Forest struct {
	Trees []*RFNode
}

//NewForest creates a forest from its trees.
func NewForest(trees ...*RFNode) *Forest {
	return &Forest{Trees: trees}
}

//PredictParams collect arguments of a forest prediction.
type PredictParams struct {
	Aggregation string
	ThreadsNum  int
	TreesNumber int // 0 means all trees
}

//ForestPrediction is the result of Forest.Predict. WeightMatrix and Weights are only filled by
//the weightMatrix aggregation: WeightMatrix is the raw accumulator shared by all trees, Weights
//is the same matrix divided by the number of trees so that every row sums to one.
type ForestPrediction struct {
	Predictions  []float64
	WeightMatrix *WeightMatrix
	Weights      *mat.Dense
}

//TaskPredictTree predicts one tree into its own output buffer.
type TaskPredictTree struct {
	tree         *RFNode
	output       []float64
	updateIndex  []int
	xNew         mat.Matrix
	trainingData Dataset
	weightMatrix *WeightMatrix
}

func (task *TaskPredictTree) Execute() {
	task.tree.Predict(task.output, task.updateIndex, task.xNew, task.trainingData, task.weightMatrix)
}

func allRows(h int) []int {
	rows := make([]int, h)
	for p := range rows {
		rows[p] = p
	}
	return rows
}

func (forest *Forest) usedTrees(treesNumber int) ([]*RFNode, error) {
	if treesNumber < 0 || treesNumber > len(forest.Trees) {
		return nil, errors.Errorf("trees number %d is out of range [0, %d]", treesNumber, len(forest.Trees))
	}
	if treesNumber == 0 {
		return forest.Trees, nil
	}
	return forest.Trees[:treesNumber], nil
}

//Validate checks that the forest can be applied to the query matrix and the training set: xNew
//has the width of trainingData, every split feature is a column and every averaging sample is a
//row of trainingData.
func (forest *Forest) Validate(xNew mat.Matrix, trainingData WeightedDataset) error {
	if len(forest.Trees) == 0 {
		return errors.New("empty forest")
	}
	h, w := xNew.Dims()
	if h == 0 {
		return errors.New("no query rows")
	}
	if trainingData.TrainingRows() == 0 {
		return errors.New("no training rows")
	}
	if w != trainingData.NumColumns() {
		return errors.Wrapf(ErrDimensionMismatch, "the query has %d columns, the training set has %d", w, trainingData.NumColumns())
	}
	n := trainingData.NumRows()

	for treeInd, tree := range forest.Trees {
		var err error
		tree.traverse(0, func(current *RFNode, _ int) {
			if err != nil {
				return
			}
			if !current.IsLeaf() {
				if current.splitFeature >= w {
					err = errors.Errorf("tree %d splits on feature %d, the query has %d columns", treeInd, current.splitFeature, w)
				}
				return
			}
			for _, ind := range current.averagingSampleIndex {
				if ind < 0 || ind >= n {
					err = errors.Errorf("tree %d refers to training row %d, the training set has %d rows", treeInd, ind, n)
					return
				}
			}
		})
		if err != nil {
			return err
		}
	}
	return nil
}

//Predict infers the forest prediction for every row of xNew. Trees run in parallel on a pool of
//params.ThreadsNum workers, the prediction is the mean over the used trees.
func (forest *Forest) Predict(xNew mat.Matrix, trainingData WeightedDataset, params PredictParams) (*ForestPrediction, error) {
	aggregation := params.Aggregation
	if aggregation == "" {
		aggregation = AggregationAverage
	}
	if aggregation != AggregationAverage && aggregation != AggregationWeightMatrix {
		return nil, errors.Errorf("unknown aggregation %q", params.Aggregation)
	}
	if err := forest.Validate(xNew, trainingData); err != nil {
		return nil, err
	}
	trees, err := forest.usedTrees(params.TreesNumber)
	if err != nil {
		return nil, err
	}

	h := Height(xNew)
	result := &ForestPrediction{Predictions: make([]float64, h)}
	if aggregation == AggregationWeightMatrix {
		result.WeightMatrix = NewWeightMatrix(h, trainingData.TrainingRows())
	}
	log.Debug().
		Int("trees", len(trees)).
		Int("rows", h).
		Int("threads", params.ThreadsNum).
		Str("aggregation", aggregation).
		Msg("forest predict")

	updateIndex := allRows(h)
	tasks := make([]*TaskPredictTree, len(trees))
	taskPool := NewPool(params.ThreadsNum)
	for treeInd, tree := range trees {
		tasks[treeInd] = &TaskPredictTree{
			tree:         tree,
			output:       make([]float64, h),
			updateIndex:  updateIndex,
			xNew:         xNew,
			trainingData: trainingData,
			weightMatrix: result.WeightMatrix,
		}
		taskPool.AddTask(tasks[treeInd])
	}
	taskPool.Close()
	taskPool.WaitAll()

	for _, task := range tasks {
		for p, val := range task.output {
			result.Predictions[p] += val
		}
	}
	for p := range result.Predictions {
		result.Predictions[p] /= float64(len(trees))
	}

	if result.WeightMatrix != nil {
		result.Weights = result.WeightMatrix.Dense()
		result.Weights.Scale(1/float64(len(trees)), result.Weights)
	}
	return result, nil
}

//PredictTreeWeights returns the weight contribution of every tree as a tensor of shape
//trees x query rows x training rows. The sum over the first axis is the weight matrix of Predict
//with the weightMatrix aggregation.
func (forest *Forest) PredictTreeWeights(xNew mat.Matrix, trainingData WeightedDataset, threadsNum int) (*tensor.Dense, error) {
	if err := forest.Validate(xNew, trainingData); err != nil {
		return nil, err
	}
	h := Height(xNew)
	n := trainingData.TrainingRows()

	updateIndex := allRows(h)
	tasks := make([]*TaskPredictTree, len(forest.Trees))
	taskPool := NewPool(threadsNum)
	for treeInd, tree := range forest.Trees {
		tasks[treeInd] = &TaskPredictTree{
			tree:         tree,
			output:       make([]float64, h),
			updateIndex:  updateIndex,
			xNew:         xNew,
			trainingData: trainingData,
			weightMatrix: NewWeightMatrix(h, n),
		}
		taskPool.AddTask(tasks[treeInd])
	}
	taskPool.Close()
	taskPool.WaitAll()

	treeWeights := tensor.New(tensor.WithShape(len(forest.Trees), h, n), tensor.Of(tensor.Float64))
	backing := treeWeights.Data().([]float64)
	for treeInd, task := range tasks {
		copy(backing[treeInd*h*n:(treeInd+1)*h*n], task.weightMatrix.Dense().RawMatrix().Data)
	}
	return treeWeights, nil
}

type forestDump struct {
	Trees []*TreeInfo `json:"trees"`
}

//Save writes the forest as a json list of flattened trees.
func (forest *Forest) Save(filename string) (err error) {
	dump := forestDump{Trees: make([]*TreeInfo, len(forest.Trees))}
	for treeInd, tree := range forest.Trees {
		dump.Trees[treeInd] = WriteNodeInfo(tree)
	}

	modelByteRepr, err := json.MarshalIndent(dump, "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshal forest")
	}

	dest, err := os.Create(filename)
	if err != nil {
		return errors.Wrapf(err, "can't open file %s to write", filename)
	}
	defer func() {
		if closeErr := dest.Close(); err == nil && closeErr != nil {
			err = errors.Wrapf(closeErr, "close %s", filename)
		}
	}()

	if _, err = dest.Write(modelByteRepr); err != nil {
		return errors.Wrapf(err, "write %s", filename)
	}
	log.Debug().Str("file", filename).Int("trees", len(forest.Trees)).Msg("forest saved")
	return nil
}

//LoadForest reads a forest written by Save.
func LoadForest(filename string) (*Forest, error) {
	source, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", filename)
	}
	defer source.Close()

	var dump forestDump
	if err := json.NewDecoder(source).Decode(&dump); err != nil {
		return nil, errors.Wrapf(err, "decode %s", filename)
	}

	forest := &Forest{Trees: make([]*RFNode, len(dump.Trees))}
	for treeInd, treeInfo := range dump.Trees {
		tree, err := ReconstructTree(treeInfo)
		if err != nil {
			return nil, errors.Wrapf(err, "tree %d of %s", treeInd, filename)
		}
		forest.Trees[treeInd] = tree
	}
	log.Debug().Str("file", filename).Int("trees", len(forest.Trees)).Msg("forest loaded")
	return forest, nil
}
