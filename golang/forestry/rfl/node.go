package rfl

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

//ErrEmptyLeaf is returned when a leaf is created without averaging and splitting samples.
var ErrEmptyLeaf = errors.New("intend to create an empty leaf node")

//NodeKind tells whether a node is a leaf or a split. It is fixed when the node is created.
type NodeKind int

const (
	LeafKind NodeKind = iota
	SplitKind
)

func (kind NodeKind) String() string {
	switch kind {
	case LeafKind:
		return "leaf"
	case SplitKind:
		return "split"
	}
	return fmt.Sprintf("NodeKind(%d)", int(kind))
}

//RFNode is a node of a tree in a random forest. A leaf keeps the training rows whose targets
//are averaged into a prediction, a split keeps the feature test and owns both of its children.
type RFNode struct {
	kind NodeKind

	// leaf attributes
	averagingSampleIndex []int
	splittingSampleIndex []int

	// split attributes
	splitFeature int
	splitValue   float64
	leftChild    *RFNode
	rightChild   *RFNode
}

//NewLeafNode creates a leaf from its averaging and splitting sample sets. At least one of them
//must be non-empty.
func NewLeafNode(averagingSampleIndex, splittingSampleIndex []int) (*RFNode, error) {
	if len(averagingSampleIndex) == 0 && len(splittingSampleIndex) == 0 {
		return nil, ErrEmptyLeaf
	}
	return &RFNode{
		kind:                 LeafKind,
		averagingSampleIndex: averagingSampleIndex,
		splittingSampleIndex: splittingSampleIndex,
	}, nil
}

//NewSplitNode creates a split node which takes the ownership of both children. The split value
//must be finite so that the tree survives a json round trip.
func NewSplitNode(splitFeature int, splitValue float64, leftChild, rightChild *RFNode) (*RFNode, error) {
	if leftChild == nil || rightChild == nil {
		return nil, errors.Errorf("split on feature %d requires two children", splitFeature)
	}
	if splitFeature < 0 {
		return nil, errors.Errorf("negative split feature %d", splitFeature)
	}
	if math.IsNaN(splitValue) || math.IsInf(splitValue, 0) {
		return nil, errors.Errorf("split on feature %d has a non-finite value %v", splitFeature, splitValue)
	}
	return &RFNode{
		kind:         SplitKind,
		splitFeature: splitFeature,
		splitValue:   splitValue,
		leftChild:    leftChild,
		rightChild:   rightChild,
	}, nil
}

func (node *RFNode) Kind() NodeKind { return node.kind }

//IsLeaf returns whether this node was created as a leaf.
func (node *RFNode) IsLeaf() bool {
	return node.kind == LeafKind
}

func (node *RFNode) AveragingIndex() []int { return node.averagingSampleIndex }
func (node *RFNode) SplittingIndex() []int { return node.splittingSampleIndex }
func (node *RFNode) AverageCount() int     { return len(node.averagingSampleIndex) }
func (node *RFNode) SplitCount() int       { return len(node.splittingSampleIndex) }
func (node *RFNode) SplitFeature() int     { return node.splitFeature }
func (node *RFNode) SplitValue() float64   { return node.splitValue }
func (node *RFNode) LeftChild() *RFNode    { return node.leftChild }
func (node *RFNode) RightChild() *RFNode   { return node.rightChild }

//Predict routes the query rows listed in updateIndex down the subtree and writes the mean of
//the reached leaf into outputPrediction. When weightMatrix is not nil every leaf also adds its
//normalized membership weights into it.
func (node *RFNode) Predict(
	outputPrediction []float64,
	updateIndex []int,
	xNew mat.Matrix,
	trainingData Dataset,
	weightMatrix *WeightMatrix,
) {
	if len(updateIndex) == 0 {
		return
	}

	if node.IsLeaf() {
		predictedMean := trainingData.PartitionMean(node.averagingSampleIndex)
		for _, ind := range updateIndex {
			outputPrediction[ind] = predictedMean
		}

		if weightMatrix != nil {
			weightMatrix.AddLeafWeights(updateIndex, trainingData.RowIDs(node.averagingSampleIndex))
		}
		return
	}

	leftIndex, rightIndex := node.partition(updateIndex, xNew, trainingData.CategoricalFeatureIDs())

	if len(leftIndex) > 0 {
		node.leftChild.Predict(outputPrediction, leftIndex, xNew, trainingData, weightMatrix)
	}
	if len(rightIndex) > 0 {
		node.rightChild.Predict(outputPrediction, rightIndex, xNew, trainingData, weightMatrix)
	}
}

//partition splits the rows of updateIndex between the two children. A categorical feature goes
//left on equality with the split value, other features go left when strictly less than it.
func (node *RFNode) partition(updateIndex []int, xNew mat.Matrix, categoricalFeatures []int) (leftIndex, rightIndex []int) {
	leftIndex = make([]int, 0, len(updateIndex))
	rightIndex = make([]int, 0, len(updateIndex))

	if containsFeature(categoricalFeatures, node.splitFeature) {
		for _, ind := range updateIndex {
			if xNew.At(ind, node.splitFeature) == node.splitValue {
				leftIndex = append(leftIndex, ind)
			} else {
				rightIndex = append(rightIndex, ind)
			}
		}
		return
	}

	for _, ind := range updateIndex {
		if xNew.At(ind, node.splitFeature) < node.splitValue {
			leftIndex = append(leftIndex, ind)
		} else {
			rightIndex = append(rightIndex, ind)
		}
	}
	return
}

func containsFeature(features []int, feature int) bool {
	for _, f := range features {
		if f == feature {
			return true
		}
	}
	return false
}

//traverse visits the subtree in pre-order: a node first, then its left and right subtrees.
func (node *RFNode) traverse(depth int, visit func(current *RFNode, depth int)) {
	visit(node, depth)
	if node.IsLeaf() {
		return
	}
	node.leftChild.traverse(depth+1, visit)
	node.rightChild.traverse(depth+1, visit)
}

//PrintSubtree writes a human readable dump of the subtree, children indented by two spaces.
func (node *RFNode) PrintSubtree(w io.Writer, indentSpace int) error {
	var err error
	node.traverse(0, func(current *RFNode, depth int) {
		if err != nil {
			return
		}
		indent := strings.Repeat(" ", indentSpace+2*depth)
		if current.IsLeaf() {
			_, err = fmt.Fprintf(w, "%sLeaf Node: # of split samples = %d, # of average samples = %d\n",
				indent, current.SplitCount(), current.AverageCount())
		} else {
			_, err = fmt.Fprintf(w, "%sTree Node: split feature = %d, split value = %v\n",
				indent, current.splitFeature, current.splitValue)
		}
	})
	return err
}

func (node *RFNode) String() string {
	var sb strings.Builder
	_ = node.PrintSubtree(&sb, 0)
	return sb.String()
}

//NumNodes counts all nodes of the subtree.
func (node *RFNode) NumNodes() (count int) {
	node.traverse(0, func(_ *RFNode, _ int) { count++ })
	return
}

//NumLeaves counts the leaves of the subtree.
func (node *RFNode) NumLeaves() (count int) {
	node.traverse(0, func(current *RFNode, _ int) {
		if current.IsLeaf() {
			count++
		}
	})
	return
}

//Depth is the number of edges on the longest path from the node down to a leaf.
func (node *RFNode) Depth() (maxDepth int) {
	node.traverse(0, func(_ *RFNode, depth int) {
		if depth > maxDepth {
			maxDepth = depth
		}
	})
	return
}
