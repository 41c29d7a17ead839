package query

import (
	"fmt"
	"time"

	"github.com/yash/laeportal/internal/ontology"
	"github.com/yash/laeportal/pkg/models"
)

// ---------------------------------------------------------------------------
// Graph explorer
// ---------------------------------------------------------------------------

// NodeView is a graph node with its properties flattened to plain values.
type NodeView struct {
	ID    string                 `json:"id"`
	Type  string                 `json:"type"`
	Name  string                 `json:"name"`
	Props map[string]interface{} `json:"props"`
}

// EdgeView is a directed relationship between two node IDs.
type EdgeView struct {
	From     string `json:"from"`
	To       string `json:"to"`
	Relation string `json:"relation"`
}

type NodeResult struct {
	Nodes   []NodeView    `json:"nodes"`
	Elapsed time.Duration `json:"elapsed_ns"`
}

// NodeDetail is one node with its outgoing and incoming edges.
type NodeDetail struct {
	NodeView
	Out []EdgeView `json:"out"`
	In  []EdgeView `json:"in"`
}

// OperatorDetail is an operator with the flights and services it runs.
type OperatorDetail struct {
	models.Operator
	Flights  []string `json:"flights"`
	Services []string `json:"services"`
}

// PropValue converts a typed property into a JSON-friendly value. Locations
// become positions.
func PropValue(v ontology.PropVal) interface{} {
	switch v.Type {
	case ontology.PropFloat:
		return v.AsFloat()
	case ontology.PropBool:
		return v.AsBool()
	case ontology.PropList:
		return v.AsList()
	case ontology.PropLocation:
		lat, lng := v.AsLocation()
		return models.Position{Lat: lat, Lng: lng}
	default:
		return v.AsString()
	}
}

func nodeView(n *ontology.Node) NodeView {
	props := make(map[string]interface{}, len(n.Props))
	for _, p := range n.Props {
		if p.Key == ontology.KeyName {
			continue
		}
		props[p.Key] = PropValue(p.Val)
	}
	return NodeView{ID: n.ID, Type: n.Type.String(), Name: n.Name(), Props: props}
}

func edgeViews(edges []ontology.Edge, keep func(ontology.RelationType) bool) []EdgeView {
	out := make([]EdgeView, 0, len(edges))
	for _, e := range edges {
		if keep(e.Relation) {
			out = append(out, EdgeView{From: e.FromID, To: e.ToID, Relation: e.Relation.String()})
		}
	}
	return out
}

// Nodes returns every node of type t in insertion order.
func (e *Engine) Nodes(t ontology.NodeType) NodeResult {
	start := time.Now()
	found := e.ont.FindByType(t)
	nodes := make([]NodeView, 0, len(found))
	for i := range found {
		nodes = append(nodes, nodeView(&found[i]))
	}
	return NodeResult{Nodes: nodes, Elapsed: time.Since(start)}
}

// Node returns a node and its edges. With rels set, only edges of those
// relations are kept.
func (e *Engine) Node(id string, rels ...ontology.RelationType) (NodeDetail, error) {
	n, ok := e.ont.GetNode(id)
	if !ok {
		return NodeDetail{}, fmt.Errorf("node %q: %w", id, ErrNotFound)
	}
	keep := func(r ontology.RelationType) bool {
		if len(rels) == 0 {
			return true
		}
		for _, want := range rels {
			if r == want {
				return true
			}
		}
		return false
	}
	return NodeDetail{
		NodeView: nodeView(&n),
		Out:      edgeViews(e.ont.EdgesFrom(id), keep),
		In:       edgeViews(e.ont.EdgesTo(id), keep),
	}, nil
}

// NodeProp returns a single property of a node.
func (e *Engine) NodeProp(id, key string) (interface{}, error) {
	v, ok := e.ont.Prop(id, key)
	if !ok {
		return nil, fmt.Errorf("node %q property %q: %w", id, key, ErrNotFound)
	}
	return PropValue(v), nil
}

// OperatorDetail returns the named operator with the IDs of its flights and
// services, in edge order.
func (e *Engine) OperatorDetail(name string) (OperatorDetail, error) {
	op, err := e.OperatorByName(name)
	if err != nil {
		return OperatorDetail{}, err
	}
	d := OperatorDetail{Operator: op, Flights: []string{}, Services: []string{}}
	e.ont.ForEachEdgeFrom(op.ID, func(rel ontology.RelationType, nb *ontology.Node) bool {
		switch rel {
		case ontology.RelOperates:
			d.Flights = append(d.Flights, nb.ID)
		case ontology.RelServes:
			d.Services = append(d.Services, nb.ID)
		}
		return true
	})
	return d, nil
}
