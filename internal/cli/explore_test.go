package cli

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/raphaelgruber/simnet/internal/explorer"
	"github.com/raphaelgruber/simnet/internal/filter"
	"github.com/raphaelgruber/simnet/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

type fakeBackend struct {
	resp   *models.NetworkResponse
	err    error
	params []filter.Params
}

func (f *fakeBackend) SimilarityNetwork(ctx context.Context, p filter.Params) (*models.NetworkResponse, error) {
	f.params = append(f.params, p)
	return f.resp, f.err
}

func (f *fakeBackend) UniqueBairros(ctx context.Context) ([]string, error) {
	return []string{"Centro", "Boa Viagem"}, nil
}

func (f *fakeBackend) UniqueCrimeTypes(ctx context.Context) ([]string, error) {
	return []string{"Roubo", "Furto"}, nil
}

func newTestModel(t *testing.T, backend *fakeBackend) exploreModel {
	t.Helper()
	if backend.resp == nil {
		backend.resp = &models.NetworkResponse{
			Message: "Rede gerada",
			Nodes: []models.CrimeNode{
				{ID: "1", Label: "Roubo 1", Hora: intPtr(20), ArmaUtilizada: "Faca"},
				{ID: "2", Label: "Roubo 2", Hora: intPtr(22), ArmaUtilizada: "Faca"},
				{ID: "3", Label: "Furto 3"},
			},
			Edges: []models.SimilarityEdge{
				{From: "1", To: "2", Score: 0.9},
				{From: "1", To: "3", Score: 0.4},
			},
		}
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctrl := explorer.NewController(backend, explorer.Options{Logger: logger})
	m := newExploreModel(ctrl, backend, time.Second)

	// Load the filter lists the way Init would.
	msg := m.loadOptions()()
	return update(t, m, msg)
}

func update(t *testing.T, m exploreModel, msg tea.Msg) exploreModel {
	t.Helper()
	next, _ := m.Update(msg)
	em, ok := next.(exploreModel)
	require.True(t, ok)
	return em
}

func press(t *testing.T, m exploreModel, code rune) (exploreModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(tea.KeyPressMsg{Code: code})
	em, ok := next.(exploreModel)
	require.True(t, ok)
	return em, cmd
}

// submitted presses enter on the filters and delivers the fetch result.
func submitted(t *testing.T, m exploreModel) exploreModel {
	t.Helper()
	m, cmd := press(t, m, tea.KeyEnter)
	require.Equal(t, explorer.PhaseLoading, m.state.Phase)
	require.NotNil(t, cmd)
	return update(t, m, cmd())
}

func TestExploreOptionsPreselectFirstBairro(t *testing.T) {
	m := newTestModel(t, &fakeBackend{})

	assert.Equal(t, "Centro", m.bairro())
	assert.Equal(t, []string{"", "Roubo", "Furto"}, m.tipos)
	assert.Contains(t, m.renderContent(), "Bairro:        ‹ Centro ›")
	assert.Contains(t, m.renderContent(), "Tipo de crime: ‹ Todos ›")
}

func TestExploreFilterNavigation(t *testing.T) {
	m := newTestModel(t, &fakeBackend{})

	m, _ = press(t, m, tea.KeyRight)
	assert.Equal(t, "Boa Viagem", m.bairro())
	m, _ = press(t, m, tea.KeyRight)
	assert.Equal(t, "Centro", m.bairro())
	m, _ = press(t, m, tea.KeyLeft)
	assert.Equal(t, "Boa Viagem", m.bairro())

	m, _ = press(t, m, tea.KeyDown)
	m, _ = press(t, m, tea.KeyRight)
	assert.Equal(t, "Roubo", m.tipos[m.tipoIdx])
}

func TestExploreSubmitLoadsNetwork(t *testing.T) {
	backend := &fakeBackend{}
	m := newTestModel(t, backend)
	m, _ = press(t, m, tea.KeyDown)
	m, _ = press(t, m, tea.KeyRight)

	m = submitted(t, m)

	require.Equal(t, explorer.PhaseLoaded, m.state.Phase)
	require.Len(t, backend.params, 1)
	assert.Equal(t, filter.Params{Bairro: "Centro", TipoCrime: "Roubo"}, backend.params[0])
	assert.Equal(t, paneNodes, m.focus)

	out := m.renderContent()
	assert.Contains(t, out, "Rede gerada · 3 ocorrências, 2 conexões")
	assert.Contains(t, out, "[1] Roubo 1 (2)")
}

func TestExploreFetchFailureShowsMessage(t *testing.T) {
	m := newTestModel(t, &fakeBackend{err: errors.New("connection refused")})

	m = submitted(t, m)

	assert.Equal(t, explorer.PhaseFailed, m.state.Phase)
	assert.Equal(t, paneFilters, m.focus)
	assert.Contains(t, m.renderContent(), explorer.MsgFetchFailed)
}

func TestExploreSelectExpandAndClose(t *testing.T) {
	m := submitted(t, newTestModel(t, &fakeBackend{}))

	m, _ = press(t, m, tea.KeyEnter)
	require.NotNil(t, m.state.Selection)
	assert.Equal(t, models.NodeID("1"), m.state.Selection.Node.ID)
	assert.Equal(t, paneDetail, m.focus)

	out := m.renderContent()
	assert.Contains(t, out, "Top 5 Crimes Similares")
	assert.Contains(t, out, "Hora próxima (20h e 22h) · Arma: Faca")

	m, _ = press(t, m, tea.KeyEnter)
	assert.Equal(t, models.NodeID("2"), m.state.Selection.Expanded)
	m, _ = press(t, m, tea.KeyEnter)
	assert.Equal(t, models.NodeID(""), m.state.Selection.Expanded)

	m, _ = press(t, m, tea.KeyEscape)
	assert.Nil(t, m.state.Selection)
	assert.Equal(t, paneNodes, m.focus)
	assert.Equal(t, explorer.PhaseLoaded, m.state.Phase)
}

func TestExploreNodeCursorBounds(t *testing.T) {
	m := submitted(t, newTestModel(t, &fakeBackend{}))

	m, _ = press(t, m, tea.KeyUp)
	assert.Equal(t, 0, m.nodeCursor)
	for range 5 {
		m, _ = press(t, m, tea.KeyDown)
	}
	assert.Equal(t, 2, m.nodeCursor)

	m, _ = press(t, m, tea.KeyEnter)
	require.NotNil(t, m.state.Selection)
	assert.Equal(t, models.NodeID("3"), m.state.Selection.Node.ID)
	require.Len(t, m.state.Selection.Neighbors, 1)
	assert.Equal(t, models.NodeID("1"), m.state.Selection.Neighbors[0].Node.ID)
}

func TestExploreTabCyclesPanes(t *testing.T) {
	m := newTestModel(t, &fakeBackend{})

	m, _ = press(t, m, tea.KeyTab)
	assert.Equal(t, paneNodes, m.focus)
	// No selection: the detail pane is skipped.
	m, _ = press(t, m, tea.KeyTab)
	assert.Equal(t, paneFilters, m.focus)
}

func TestExploreQuit(t *testing.T) {
	m := newTestModel(t, &fakeBackend{})

	_, cmd := m.Update(tea.KeyPressMsg{Code: 'q', Text: "q"})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestWindow(t *testing.T) {
	tests := []struct {
		cursor, n, size int
		start, end      int
	}{
		{0, 3, 10, 0, 3},
		{0, 30, 10, 0, 10},
		{15, 30, 10, 10, 20},
		{29, 30, 10, 20, 30},
	}
	for _, tt := range tests {
		start, end := window(tt.cursor, tt.n, tt.size)
		assert.Equal(t, tt.start, start)
		assert.Equal(t, tt.end, end)
	}
}
