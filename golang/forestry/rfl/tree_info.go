package rfl

import (
	"path"

	"github.com/pkg/errors"
)

//TreeInfo is the flat pre-order form of a tree. VarID is 0 for a leaf and feature+1 for a split,
//SplitVal is 0 for a leaf and the threshold or category code for a split. Leaves keep their
//sample sets in LeafAveragingIndex and LeafSplittingIndex, one entry per leaf in pre-order.
type TreeInfo struct {
	VarID              []uint64  `json:"var_id"`
	SplitVal           []float64 `json:"split_val"`
	LeafAveragingIndex [][]int   `json:"leaf_averaging_index"`
	LeafSplittingIndex [][]int   `json:"leaf_splitting_index"`
}

//WriteNodeInfo flattens a whole tree into a new TreeInfo.
func WriteNodeInfo(root *RFNode) *TreeInfo {
	treeInfo := &TreeInfo{}
	root.WriteNodeInfo(treeInfo)
	return treeInfo
}

//WriteNodeInfo appends the subtree to treeInfo in pre-order.
func (node *RFNode) WriteNodeInfo(treeInfo *TreeInfo) {
	node.traverse(0, func(current *RFNode, _ int) {
		if current.IsLeaf() {
			treeInfo.VarID = append(treeInfo.VarID, 0)
			treeInfo.SplitVal = append(treeInfo.SplitVal, 0)
			treeInfo.LeafAveragingIndex = append(treeInfo.LeafAveragingIndex, current.averagingSampleIndex)
			treeInfo.LeafSplittingIndex = append(treeInfo.LeafSplittingIndex, current.splittingSampleIndex)
			return
		}
		treeInfo.VarID = append(treeInfo.VarID, uint64(current.splitFeature)+1)
		treeInfo.SplitVal = append(treeInfo.SplitVal, current.splitValue)
	})
}

//treeReader walks a TreeInfo in the order WriteNodeInfo produced it.
type treeReader struct {
	info    *TreeInfo
	nodePos int
	leafPos int
}

//ReconstructTree rebuilds a tree from its flat form. It is the inverse of WriteNodeInfo.
func ReconstructTree(treeInfo *TreeInfo) (*RFNode, error) {
	if treeInfo == nil {
		return nil, errors.New("nil tree info")
	}
	if len(treeInfo.VarID) != len(treeInfo.SplitVal) {
		return nil, errors.Errorf("var_id has %d entries, split_val has %d", len(treeInfo.VarID), len(treeInfo.SplitVal))
	}
	if len(treeInfo.LeafAveragingIndex) != len(treeInfo.LeafSplittingIndex) {
		return nil, errors.Errorf("%d averaging leaf sets, %d splitting leaf sets",
			len(treeInfo.LeafAveragingIndex), len(treeInfo.LeafSplittingIndex))
	}

	reader := &treeReader{info: treeInfo}
	root, err := reader.next()
	if err != nil {
		return nil, err
	}
	if reader.nodePos != len(treeInfo.VarID) {
		return nil, errors.Errorf("%d trailing nodes after the tree", len(treeInfo.VarID)-reader.nodePos)
	}
	if reader.leafPos != len(treeInfo.LeafAveragingIndex) {
		return nil, errors.Errorf("tree has %d leaves, %d leaf sample sets given", reader.leafPos, len(treeInfo.LeafAveragingIndex))
	}
	return root, nil
}

func (reader *treeReader) next() (*RFNode, error) {
	if reader.nodePos >= len(reader.info.VarID) {
		return nil, errors.New("not enough nodes")
	}
	varID := reader.info.VarID[reader.nodePos]
	splitVal := reader.info.SplitVal[reader.nodePos]
	nodeID := reader.nodePos
	reader.nodePos++

	if varID == 0 {
		if reader.leafPos >= len(reader.info.LeafAveragingIndex) {
			return nil, errors.Errorf("no sample sets for the leaf at node %d", nodeID)
		}
		leaf, err := NewLeafNode(reader.info.LeafAveragingIndex[reader.leafPos], reader.info.LeafSplittingIndex[reader.leafPos])
		if err != nil {
			return nil, errors.Wrapf(err, "leaf at node %d", nodeID)
		}
		reader.leafPos++
		return leaf, nil
	}

	leftChild, err := reader.next()
	if err != nil {
		return nil, err
	}
	rightChild, err := reader.next()
	if err != nil {
		return nil, err
	}
	return NewSplitNode(int(varID-1), splitVal, leftChild, rightChild)
}

//WriteNpy dumps var_id.npy (uint64) and split_val.npy (float64) into directory.
func (treeInfo *TreeInfo) WriteNpy(directory string) error {
	if len(treeInfo.VarID) == 0 {
		return errors.New("empty tree info")
	}
	if err := WriteNpy(path.Join(directory, "var_id.npy"), treeInfo.VarID); err != nil {
		return err
	}
	return WriteNpy(path.Join(directory, "split_val.npy"), treeInfo.SplitVal)
}
