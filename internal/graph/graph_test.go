package graph

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"testing"

	"github.com/raphaelgruber/simnet/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func node(id string) models.CrimeNode {
	return models.CrimeNode{ID: models.NodeID(id), Label: "Ocorrência " + id}
}

func edge(from, to string, score float64) models.SimilarityEdge {
	return models.SimilarityEdge{From: models.NodeID(from), To: models.NodeID(to), Score: score}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func triangle(t *testing.T) *Graph {
	t.Helper()
	g, err := Build(
		[]models.CrimeNode{node("1"), node("2"), node("3")},
		[]models.SimilarityEdge{edge("1", "2", 0.9), edge("1", "3", 0.4), edge("2", "3", 0.95)},
		discardLogger(),
	)
	require.NoError(t, err)
	return g
}

func TestBuildPreservesCounts(t *testing.T) {
	sizes := []int{0, 1, 2, 5, 20}
	for _, n := range sizes {
		t.Run(fmt.Sprintf("%d nodes", n), func(t *testing.T) {
			nodes := make([]models.CrimeNode, n)
			for i := range nodes {
				nodes[i] = node(fmt.Sprint(i))
			}
			var edges []models.SimilarityEdge
			for i := 0; i < n; i++ {
				for j := i + 1; j < n; j += 2 {
					edges = append(edges, edge(fmt.Sprint(i), fmt.Sprint(j), float64(i+j)))
				}
			}

			g, err := Build(nodes, edges, discardLogger())
			require.NoError(t, err)
			assert.Len(t, g.Nodes(), n)
			assert.Len(t, g.Edges(), len(edges))
			assert.Empty(t, g.Dropped())
		})
	}
}

func TestBuildRejectsDuplicateIDs(t *testing.T) {
	_, err := Build([]models.CrimeNode{node("1"), node("2"), node("1")}, nil, discardLogger())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDuplicateNode))
}

func TestBuildDropsInvalidEdges(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logs, nil))

	g, err := Build(
		[]models.CrimeNode{node("1"), node("2")},
		[]models.SimilarityEdge{
			edge("1", "2", 0.5),
			edge("1", "99", 0.7),
			edge("2", "2", 1.0),
			edge("42", "43", 0.1),
		},
		logger,
	)
	require.NoError(t, err)

	assert.Len(t, g.Edges(), 1)
	dropped := g.Dropped()
	require.Len(t, dropped, 3)
	assert.ErrorIs(t, dropped[0], ErrDanglingEdge)
	assert.ErrorIs(t, dropped[1], ErrSelfLoop)
	assert.ErrorIs(t, dropped[2], ErrDanglingEdge)

	assert.Contains(t, logs.String(), `"dropped":3`)
	assert.Contains(t, logs.String(), `"self_loops":1`)
	assert.Equal(t, 1, g.Degree("2"))
}

func TestBuildDoesNotAliasInput(t *testing.T) {
	nodes := []models.CrimeNode{node("1"), node("2")}
	edges := []models.SimilarityEdge{edge("1", "2", 0.5)}

	g, err := Build(nodes, edges, discardLogger())
	require.NoError(t, err)

	nodes[0].Label = "changed"
	edges[0].Score = 99

	n, ok := g.Node("1")
	require.True(t, ok)
	assert.Equal(t, "Ocorrência 1", n.Label)
	assert.Equal(t, 0.5, g.Edges()[0].Score)
}

func TestStats(t *testing.T) {
	a, b, c := node("1"), node("2"), node("3")
	a.Group, b.Group, c.Group = 1, 1, 2

	g, err := Build([]models.CrimeNode{a, b, c}, []models.SimilarityEdge{edge("1", "2", 1), edge("1", "1", 1)}, discardLogger())
	require.NoError(t, err)

	assert.Equal(t, Stats{Nodes: 3, Edges: 1, Dropped: 1, Groups: 2}, g.Stats())
}

func TestRender(t *testing.T) {
	g := triangle(t)
	out := g.Render()

	assert.Len(t, out.Nodes, 3)
	require.Len(t, out.Links, 3)
	assert.Equal(t, Link{Source: "1", Target: "2", Score: 0.9}, out.Links[0])

	data, err := json.Marshal(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), `{"source":1,"target":2,"score":0.9}`)
}

func TestRenderNilGraph(t *testing.T) {
	var g *Graph
	data, err := json.Marshal(g.Render())
	require.NoError(t, err)
	assert.JSONEq(t, `{"nodes":[],"links":[]}`, string(data))
	assert.True(t, g.Empty())
}
