package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/lipgloss"
	"github.com/raphaelgruber/simnet/internal/explorer"
	"github.com/raphaelgruber/simnet/internal/models"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// allCrimeTypes is the label of the empty crime-type filter.
const allCrimeTypes = "Todos"

var exploreCmd = &cobra.Command{
	Use:   "explore",
	Short: "Explore similarity networks interactively",
	Long: `Open the interactive explorer. Pick a neighbourhood and optionally a
crime type, generate the network, then select occurrences to see their most
similar crimes and what they have in common.

Keys:
  tab          switch pane
  up/down      move
  left/right   change filter value
  enter        generate network / select / expand
  esc          close detail
  q, ctrl+c    quit

Logs go to $SIMNET_LOG_FILE only.

Examples:
  simnet explore
  simnet explore -k 10`,
	Args: cobra.NoArgs,
	RunE: runExplore,
}

func runExplore(cmd *cobra.Command, args []string) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return errors.New("explore needs an interactive terminal; use 'simnet network' or 'simnet export' instead")
	}

	model := newExploreModel(newController(), apiClient, cfg.ClientTimeout)
	if _, err := tea.NewProgram(model).Run(); err != nil {
		return fmt.Errorf("run explorer: %w", err)
	}
	return nil
}

// optionSource lists the accepted filter values.
type optionSource interface {
	UniqueBairros(ctx context.Context) ([]string, error)
	UniqueCrimeTypes(ctx context.Context) ([]string, error)
}

type pane int

const (
	paneFilters pane = iota
	paneNodes
	paneDetail
)

// optionsMsg carries the filter values.
type optionsMsg struct {
	bairros []string
	tipos   []string
	err     error
}

// fetchDoneMsg carries the outcome of a network fetch.
type fetchDoneMsg struct {
	event explorer.Event
}

// exploreModel is the bubbletea model of the explorer. The controller owns
// the view state; the model keeps a copy of the latest state plus cursors.
type exploreModel struct {
	ctrl    *explorer.Controller
	options optionSource
	timeout time.Duration
	theme   Theme
	spinner spinner.Model

	bairros   []string
	tipos     []string // tipos[0] is the empty filter
	bairroIdx int
	tipoIdx   int
	optErr    error

	state          explorer.State
	focus          pane
	filterRow      int // 0 bairro, 1 tipo
	nodeCursor     int
	neighborCursor int
	height         int
}

func newExploreModel(ctrl *explorer.Controller, options optionSource, timeout time.Duration) exploreModel {
	return exploreModel{
		ctrl:    ctrl,
		options: options,
		timeout: timeout,
		theme:   defaultTheme,
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
		tipos:   []string{""},
		state:   ctrl.State(),
	}
}

// Init loads the filter values and starts the spinner.
func (m exploreModel) Init() tea.Cmd {
	return tea.Batch(m.loadOptions(), m.spinner.Tick)
}

// Update handles messages and returns the updated model.
func (m exploreModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.height = msg.Height
		return m, nil

	case optionsMsg:
		if msg.err != nil {
			m.optErr = msg.err
			return m, nil
		}
		m.bairros = msg.bairros
		m.tipos = append([]string{""}, msg.tipos...)
		m.bairroIdx, m.tipoIdx = 0, 0
		return m, nil

	case fetchDoneMsg:
		state, _ := m.ctrl.Dispatch(msg.event)
		m.setState(state)
		if state.Phase == explorer.PhaseLoaded && !state.Graph.Empty() {
			m.focus = paneNodes
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m exploreModel) handleKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "tab":
		m.focus = m.nextPane()
		return m, nil
	}

	switch m.focus {
	case paneFilters:
		return m.handleFilterKey(msg.String())
	case paneNodes:
		return m.handleNodeKey(msg.String())
	case paneDetail:
		return m.handleDetailKey(msg.String())
	}
	return m, nil
}

func (m exploreModel) handleFilterKey(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "up", "down":
		m.filterRow = 1 - m.filterRow
	case "left":
		m.shiftFilter(-1)
	case "right":
		m.shiftFilter(1)
	case "enter":
		return m.submit()
	}
	return m, nil
}

func (m *exploreModel) shiftFilter(delta int) {
	if m.filterRow == 0 {
		if len(m.bairros) > 0 {
			m.bairroIdx = wrap(m.bairroIdx+delta, len(m.bairros))
		}
		return
	}
	m.tipoIdx = wrap(m.tipoIdx+delta, len(m.tipos))
}

func (m exploreModel) submit() (tea.Model, tea.Cmd) {
	state, req := m.ctrl.Dispatch(explorer.SubmitFilters{
		Bairro:    m.bairro(),
		TipoCrime: m.tipos[m.tipoIdx],
	})
	m.setState(state)
	if req == nil {
		return m, nil
	}
	return m, m.fetch(*req)
}

func (m exploreModel) handleNodeKey(key string) (tea.Model, tea.Cmd) {
	nodes := m.nodes()
	switch key {
	case "up":
		m.nodeCursor = max(m.nodeCursor-1, 0)
	case "down":
		m.nodeCursor = min(m.nodeCursor+1, max(len(nodes)-1, 0))
	case "enter":
		if m.nodeCursor >= len(nodes) {
			return m, nil
		}
		state := m.ctrl.Select(nodes[m.nodeCursor].ID)
		m.state = state
		m.neighborCursor = 0
		if state.Selection != nil {
			m.focus = paneDetail
		}
	}
	return m, nil
}

func (m exploreModel) handleDetailKey(key string) (tea.Model, tea.Cmd) {
	sel := m.state.Selection
	if sel == nil {
		return m, nil
	}
	switch key {
	case "up":
		m.neighborCursor = max(m.neighborCursor-1, 0)
	case "down":
		m.neighborCursor = min(m.neighborCursor+1, max(len(sel.Neighbors)-1, 0))
	case "enter":
		if m.neighborCursor < len(sel.Neighbors) {
			m.state, _ = m.ctrl.Dispatch(explorer.NeighborClicked{ID: sel.Neighbors[m.neighborCursor].Node.ID})
		}
	case "esc":
		m.state, _ = m.ctrl.Dispatch(explorer.DetailClosed{})
		m.focus = paneNodes
	}
	return m, nil
}

// setState adopts a new state from a submission or fetch; cursors into the
// old graph are reset.
func (m *exploreModel) setState(state explorer.State) {
	m.state = state
	m.nodeCursor = 0
	m.neighborCursor = 0
	if m.focus == paneDetail {
		m.focus = paneNodes
	}
}

func (m exploreModel) nextPane() pane {
	switch m.focus {
	case paneFilters:
		return paneNodes
	case paneNodes:
		if m.state.Selection != nil {
			return paneDetail
		}
	}
	return paneFilters
}

func (m exploreModel) bairro() string {
	if len(m.bairros) == 0 {
		return ""
	}
	return m.bairros[m.bairroIdx]
}

func (m exploreModel) nodes() []models.CrimeNode {
	if m.state.Phase != explorer.PhaseLoaded {
		return nil
	}
	return m.state.Graph.Nodes()
}

// loadOptions fetches the filter values.
// Runs in a separate goroutine (command) to avoid blocking Update().
func (m exploreModel) loadOptions() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
		defer cancel()

		bairros, err := m.options.UniqueBairros(ctx)
		if err != nil {
			return optionsMsg{err: err}
		}
		tipos, err := m.options.UniqueCrimeTypes(ctx)
		if err != nil {
			return optionsMsg{err: err}
		}
		return optionsMsg{bairros: bairros, tipos: tipos}
	}
}

// fetch performs req off the update loop.
func (m exploreModel) fetch(req explorer.Request) tea.Cmd {
	ctrl, timeout := m.ctrl, m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return fetchDoneMsg{event: ctrl.Fetch(ctx, req)}
	}
}

// View renders the explorer.
func (m exploreModel) View() tea.View {
	return tea.NewView(m.renderContent())
}

func (m exploreModel) renderContent() string {
	var b strings.Builder
	b.WriteString(m.theme.titleStyle().Render("Rede de Similaridade de Crimes"))
	b.WriteString("\n\n")
	b.WriteString(m.theme.paneStyle(m.focus == paneFilters).Render(m.renderFilters()))
	b.WriteString("\n")
	b.WriteString(m.renderStatus())
	b.WriteString("\n")

	if m.state.Phase == explorer.PhaseLoaded && !m.state.Graph.Empty() {
		panes := []string{m.theme.paneStyle(m.focus == paneNodes).Render(m.renderNodes())}
		if m.state.Selection != nil {
			panes = append(panes, m.theme.paneStyle(m.focus == paneDetail).Render(m.renderDetail()))
		}
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, panes...))
		b.WriteString("\n")
	}

	b.WriteString(m.theme.hintStyle().Render("tab pane · ↑↓ move · ←→ change · enter select · esc close · q quit"))
	b.WriteString("\n")
	return b.String()
}

func (m exploreModel) renderFilters() string {
	bairro := m.bairro()
	switch {
	case m.optErr != nil:
		bairro = m.theme.errorStyle().Render(explorer.UserMessage(m.optErr))
	case len(m.bairros) == 0:
		bairro = m.theme.hintStyle().Render("carregando...")
	}
	tipo := m.tipos[m.tipoIdx]
	if tipo == "" {
		tipo = allCrimeTypes
	}

	rows := []string{
		fmt.Sprintf("Bairro:        ‹ %s ›", bairro),
		fmt.Sprintf("Tipo de crime: ‹ %s ›", tipo),
	}
	if m.focus == paneFilters {
		rows[m.filterRow] = m.theme.selectedStyle().Render(rows[m.filterRow])
	}
	return strings.Join(rows, "\n")
}

func (m exploreModel) renderStatus() string {
	switch m.state.Phase {
	case explorer.PhaseLoading:
		return m.spinner.View() + " " + explorer.MsgLoading
	case explorer.PhaseFailed:
		return m.theme.errorStyle().Render(explorer.UserMessage(m.state.Err))
	case explorer.PhaseLoaded:
		if m.state.Err != nil {
			return m.theme.errorStyle().Render(explorer.UserMessage(m.state.Err))
		}
		if m.state.Graph.Empty() {
			return m.theme.hintStyle().Render(explorer.MsgNoConnections)
		}
		stats := m.state.Graph.Stats()
		line := fmt.Sprintf("%d ocorrências, %d conexões", stats.Nodes, stats.Edges)
		if m.state.Message != "" {
			line = m.state.Message + " · " + line
		}
		return line
	}
	return m.theme.hintStyle().Render("Selecione os filtros e pressione enter para gerar a rede.")
}

func (m exploreModel) renderNodes() string {
	nodes := m.nodes()
	start, end := window(m.nodeCursor, len(nodes), m.listHeight())

	var b strings.Builder
	b.WriteString(m.theme.titleStyle().Render("Ocorrências"))
	for i := start; i < end; i++ {
		n := nodes[i]
		line := fmt.Sprintf("[%s] %s (%d)", n.ID, nodeTitle(n), m.state.Graph.Degree(n.ID))
		if sel := m.state.Selection; sel != nil && sel.Node.ID == n.ID {
			line = "● " + line
		} else {
			line = "  " + line
		}
		if i == m.nodeCursor && m.focus == paneNodes {
			line = m.theme.selectedStyle().Render(line)
		}
		b.WriteString("\n" + line)
	}
	return b.String()
}

func (m exploreModel) renderDetail() string {
	view := m.state.View().Selection
	if view == nil {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.theme.titleStyle().Render(fmt.Sprintf("[%s] %s", view.Node.ID, nodeTitle(view.Node))))
	b.WriteString("\n")
	printDetails(&b, view.Details, "")

	b.WriteString("\n")
	b.WriteString(m.theme.titleStyle().Render(fmt.Sprintf(explorer.MsgNeighborsHeader, m.ctrl.TopK())))
	if view.Empty != "" {
		b.WriteString("\n" + m.theme.hintStyle().Render(view.Empty))
		return b.String()
	}

	for i, n := range view.Neighbors {
		marker := "▸"
		if n.Expanded {
			marker = "▾"
		}
		line := fmt.Sprintf("%s [%s] %s  %.4f", marker, n.Node.ID, nodeTitle(n.Node), n.Score)
		if i == m.neighborCursor && m.focus == paneDetail {
			line = m.theme.selectedStyle().Render(line)
		}
		b.WriteString("\n" + line)
		if len(n.CommonPoints) > 0 {
			b.WriteString("\n    " + m.theme.hintStyle().Render(strings.Join(n.CommonPoints, " · ")))
		}
		if n.Expanded {
			b.WriteString("\n")
			printDetails(&b, n.Details, "    ")
		}
	}
	return b.String()
}

// listHeight is the number of node rows that fit the terminal.
func (m exploreModel) listHeight() int {
	if m.height <= 0 {
		return 20
	}
	return max(m.height-14, 5)
}

// window returns the visible [start, end) range of a list of n rows that
// keeps cursor in view.
func window(cursor, n, size int) (int, int) {
	if n <= size {
		return 0, n
	}
	start := max(cursor-size/2, 0)
	start = min(start, n-size)
	return start, start + size
}

func wrap(i, n int) int {
	return ((i % n) + n) % n
}
