package engine

import (
	"fmt"

	"github.com/spektr-org/solutions/schema"
)

// ============================================================================
// FLOW — Node/edge lists for sankey-style rendering
// ============================================================================
// Nodes are identified by (column, label), so a label that appears in two
// columns yields two nodes. Nodes and edges keep first-seen order. A three
// column flow is the concatenation of the two pairwise edge lists.
// ============================================================================

// Default flow columns.
var (
	DefaultSimpleFlow  = []string{schema.ColDisplacementStatus, schema.ColSolutionsPathway}
	DefaultChainedFlow = []string{schema.ColDisplacementStatus, schema.ColSolutionsPathway, schema.ColPathwayStage}
)

// Node is one (column, label) vertex.
type Node struct {
	ID     int    `json:"id"`
	Column string `json:"column"`
	Label  string `json:"label"`
	Color  string `json:"color"`
}

// Edge carries the number of records moving from Source to Target.
type Edge struct {
	Source int    `json:"source"`
	Target int    `json:"target"`
	Value  int    `json:"value"`
	Color  string `json:"color"`
}

// Graph is a layered flow graph.
type Graph struct {
	Columns []string `json:"columns"`
	Nodes   []Node   `json:"nodes"`
	Edges   []Edge   `json:"edges"`
}

// Total returns the weight of the edges leaving the first column.
func (g *Graph) Total() int {
	total := 0
	for _, e := range g.Edges {
		if g.Nodes[e.Source].Column == g.Columns[0] {
			total += e.Value
		}
	}
	return total
}

// SimpleFlow builds a two-column flow.
func SimpleFlow(view RecordView, source, target string) (*Graph, error) {
	return Flow(view, source, target)
}

// ChainedFlow builds a three-column flow.
func ChainedFlow(view RecordView, source, middle, target string) (*Graph, error) {
	return Flow(view, source, middle, target)
}

// Flow builds the flow graph across two or three categorical columns.
func Flow(view RecordView, columns ...string) (*Graph, error) {
	if len(columns) < 2 || len(columns) > 3 {
		return nil, fmt.Errorf("flow needs 2 or 3 columns, got %d", len(columns))
	}
	seenCol := make(map[string]bool, len(columns))
	for _, c := range columns {
		if !schema.IsCategorical(c) {
			return nil, fmt.Errorf("flow column %q is not categorical", c)
		}
		if seenCol[c] {
			return nil, fmt.Errorf("flow column %q repeated", c)
		}
		seenCol[c] = true
	}

	g := &Graph{Columns: columns, Nodes: []Node{}, Edges: []Edge{}}

	// Nodes: every column's labels, column by column, first-seen order.
	ids := make([]map[string]int, len(columns))
	for ci, col := range columns {
		ids[ci] = make(map[string]int)
		for i := 0; i < view.Len(); i++ {
			label := view.Dimension(i, col)
			if _, ok := ids[ci][label]; ok {
				continue
			}
			ids[ci][label] = len(g.Nodes)
			g.Nodes = append(g.Nodes, Node{ID: len(g.Nodes), Column: col, Label: label, Color: FlowColor(label)})
		}
	}

	// Edges: one pass per consecutive pair.
	for ci := 0; ci+1 < len(columns); ci++ {
		type pair struct{ s, t int }
		index := make(map[pair]int)
		for i := 0; i < view.Len(); i++ {
			p := pair{
				s: ids[ci][view.Dimension(i, columns[ci])],
				t: ids[ci+1][view.Dimension(i, columns[ci+1])],
			}
			if at, ok := index[p]; ok {
				g.Edges[at].Value++
				continue
			}
			index[p] = len(g.Edges)
			g.Edges = append(g.Edges, Edge{
				Source: p.s,
				Target: p.t,
				Value:  1,
				Color:  Translucent(g.Nodes[p.s].Color, 0.4),
			})
		}
	}

	return g, nil
}
