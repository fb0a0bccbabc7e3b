package graph

import "github.com/raphaelgruber/simnet/internal/models"

// Link is one renderer edge. Source and target are node ids; the
// force-directed renderer resolves them to node objects itself.
type Link struct {
	Source models.NodeID `json:"source" yaml:"source"`
	Target models.NodeID `json:"target" yaml:"target"`
	Score  float64       `json:"score" yaml:"score"`
}

// RenderGraph is the {nodes, links} payload consumed by the renderer.
type RenderGraph struct {
	Nodes []models.CrimeNode `json:"nodes" yaml:"nodes"`
	Links []Link             `json:"links" yaml:"links"`
}

// Render converts the snapshot into the renderer payload. A nil graph
// renders as empty lists rather than nulls.
func (g *Graph) Render() RenderGraph {
	out := RenderGraph{
		Nodes: []models.CrimeNode{},
		Links: []Link{},
	}
	if g == nil {
		return out
	}

	out.Nodes = g.Nodes()
	out.Links = make([]Link, len(g.edges))
	for i, e := range g.edges {
		out.Links[i] = Link{Source: e.From, Target: e.To, Score: e.Score}
	}
	return out
}
