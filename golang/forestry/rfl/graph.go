package rfl

import (
	"fmt"
	"path"
	"strings"

	"github.com/goccy/go-graphviz"
	"github.com/goccy/go-graphviz/cgraph"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

//GraphDescription returns the label of a node for tree rendering as a graph.
func (node *RFNode) GraphDescription(categorical bool) string {
	var sb strings.Builder
	if node.IsLeaf() {
		sb.WriteString(fmt.Sprintln("split: ", node.SplitCount()))
		sb.WriteString(fmt.Sprint("average: ", node.AverageCount()))
		return sb.String()
	}
	if categorical {
		sb.WriteString(fmt.Sprintf("f_%d == %v", node.splitFeature, node.splitValue))
	} else {
		sb.WriteString(fmt.Sprintf("f_%d < %6.5f", node.splitFeature, node.splitValue))
	}
	return sb.String()
}

func recurrentDraw(g *cgraph.Graph, node *RFNode, nodeNumber *int, parentNode *cgraph.Node, categoricalFeatures []int) error {
	currentNode, err := g.CreateNode(fmt.Sprint(*nodeNumber))
	if err != nil {
		return errors.Wrapf(err, "create graph node %d", *nodeNumber)
	}
	*nodeNumber++

	if parentNode != nil {
		if _, err := g.CreateEdge("", parentNode, currentNode); err != nil {
			return errors.Wrap(err, "create graph edge")
		}
	}

	if node.IsLeaf() {
		currentNode.Set("label", node.GraphDescription(false))
		currentNode.Set("shape", "box")
		return nil
	}
	currentNode.Set("label", node.GraphDescription(containsFeature(categoricalFeatures, node.splitFeature)))
	if err := recurrentDraw(g, node.leftChild, nodeNumber, currentNode, categoricalFeatures); err != nil {
		return err
	}
	return recurrentDraw(g, node.rightChild, nodeNumber, currentNode, categoricalFeatures)
}

//DrawGraph builds a graphviz graph of the subtree. Splits on the categoricalFeatures are labelled
//as equality tests. The caller closes both returned objects.
func DrawGraph(root *RFNode, categoricalFeatures []int) (*graphviz.Graphviz, *cgraph.Graph, error) {
	graphViz := graphviz.New()
	graph, err := graphViz.Graph()
	if err != nil {
		graphViz.Close()
		return nil, nil, errors.Wrap(err, "create graph")
	}

	nodeNumber := 0
	if err := recurrentDraw(graph, root, &nodeNumber, nil, categoricalFeatures); err != nil {
		graph.Close()
		graphViz.Close()
		return nil, nil, err
	}
	return graphViz, graph, nil
}

var graphvizType = map[string]graphviz.Format{
	"png": graphviz.PNG,
	"svg": graphviz.SVG,
	"jpg": graphviz.JPG,
}

//RenderTrees writes one picture per tree into picturesDirectory, named dumpPrefix_00000.png and so on.
func (forest *Forest) RenderTrees(dumpPrefix, figureType, picturesDirectory string, categoricalFeatures []int) error {
	format, ok := graphvizType[figureType]
	if !ok {
		return errors.Errorf("unknown figure type %q, expected png, svg or jpg", figureType)
	}

	for graphInd, currentTree := range forest.Trees {
		filename := path.Join(picturesDirectory, fmt.Sprintf("%s_%05d.%s", dumpPrefix, graphInd, figureType))
		graphViz, graph, err := DrawGraph(currentTree, categoricalFeatures)
		if err != nil {
			return errors.Wrapf(err, "tree %d", graphInd)
		}
		err = graphViz.RenderFilename(graph, format, filename)
		graph.Close()
		graphViz.Close()
		if err != nil {
			return errors.Wrapf(err, "render %s", filename)
		}
		log.Debug().Str("file", filename).Msg("tree rendered")
	}
	return nil
}
