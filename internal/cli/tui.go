package cli

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/meshsurgery/pkg/errors"
	"github.com/matzehuels/meshsurgery/pkg/mesh"
	"github.com/matzehuels/meshsurgery/pkg/mesh/collapse"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	listErrorStyle    = lipgloss.NewStyle().Foreground(colorRed)
)

// =============================================================================
// EdgeListModel - Interactive edge browser
// =============================================================================

// edgeRow is one half-edge with its collapse classification.
type edgeRow struct {
	h     mesh.HalfedgeID
	p, q  mesh.VertexID
	class string // empty when Classify fails
	err   error  // first failing check: Classify, then CheckLink
}

func (r edgeRow) collapsible() bool { return r.err == nil }

// EdgeListModel is the bubbletea model of the inspect command. It lists
// every half-edge of a mesh with its topology class and link condition and
// collapses the selected one on enter, if it passes the link condition. All
// collapses run in one transaction so they can be undone.
type EdgeListModel struct {
	Mesh *mesh.Mesh

	Cursor int
	Height int
	Offset int

	// OnlyCollapsible hides the half-edges that fail the link condition.
	OnlyCollapsible bool

	// Collapsed counts the collapses still applied.
	Collapsed int

	rows    []edgeRow
	tx      *mesh.Tx
	marks   []int
	status  string
	failed  bool
	surgeon collapse.Collapser
}

// NewEdgeListModel creates an edge browser over m and opens the transaction
// its collapses run in. Call [EdgeListModel.Finish] when done.
func NewEdgeListModel(m *mesh.Mesh) EdgeListModel {
	model := EdgeListModel{
		Mesh:   m,
		Height: 15,
		tx:     m.Begin(),
	}
	model.refresh()
	return model
}

// refresh reclassifies every half-edge.
func (m *EdgeListModel) refresh() {
	m.rows = m.rows[:0]
	for _, h := range m.Mesh.Halfedges() {
		row := edgeRow{h: h, p: m.Mesh.Source(h), q: m.Mesh.Target(h)}
		t, err := collapse.Classify(m.Mesh, h)
		if err == nil {
			row.class = t.Class.String()
			err = collapse.CheckLink(m.Mesh, h)
		}
		row.err = err
		if m.OnlyCollapsible && err != nil {
			continue
		}
		m.rows = append(m.rows, row)
	}
	if m.Cursor >= len(m.rows) {
		m.Cursor = max(len(m.rows)-1, 0)
	}
	m.clampOffset()
}

func (m *EdgeListModel) clampOffset() {
	if m.Cursor < m.Offset {
		m.Offset = m.Cursor
	}
	if m.Cursor >= m.Offset+m.Height {
		m.Offset = m.Cursor - m.Height + 1
	}
}

// Finish commits the collapses still applied.
func (m EdgeListModel) Finish() {
	if m.tx != nil && m.Mesh.InTx() {
		m.tx.Commit()
	}
}

func (m EdgeListModel) Init() tea.Cmd {
	return nil
}

func (m EdgeListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				m.clampOffset()
			}
		case "down", "j":
			if m.Cursor < len(m.rows)-1 {
				m.Cursor++
				m.clampOffset()
			}
		case "f":
			m.OnlyCollapsible = !m.OnlyCollapsible
			m.Cursor = 0
			m.refresh()
		case "enter", "c":
			m.collapseSelected()
		case "u":
			m.undo()
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 8
		if m.Height < 5 {
			m.Height = 5
		}
		m.clampOffset()
	}
	return m, nil
}

func (m *EdgeListModel) collapseSelected() {
	if len(m.rows) == 0 {
		return
	}
	row := m.rows[m.Cursor]
	if row.err != nil {
		m.status, m.failed = fmt.Sprintf("half-edge %d: %s", row.h, errors.UserMessage(row.err)), true
		return
	}
	mark := m.tx.Mark()
	v, err := m.surgeon.Collapse(m.Mesh, row.h)
	if err != nil {
		m.status, m.failed = fmt.Sprintf("half-edge %d: %s", row.h, errors.UserMessage(err)), true
		return
	}
	m.marks = append(m.marks, mark)
	m.Collapsed++
	m.status, m.failed = fmt.Sprintf("collapsed %d → %d (%s), kept vertex %d", row.p, row.q, row.class, v), false
	m.refresh()
}

func (m *EdgeListModel) undo() {
	if len(m.marks) == 0 {
		m.status, m.failed = "nothing to undo", false
		return
	}
	mark := m.marks[len(m.marks)-1]
	m.marks = m.marks[:len(m.marks)-1]
	m.tx.RollbackTo(mark)
	m.Collapsed--
	m.status, m.failed = "undid last collapse", false
	m.refresh()
}

func (m EdgeListModel) View() string {
	var b strings.Builder

	c := m.Mesh.Counts()
	b.WriteString(StyleTitle.Render("Edges"))
	b.WriteString("  ")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("%d vertices · %d edges · %d faces · χ %d",
		c.Vertices, c.Edges, c.Faces, c.EulerCharacteristic())))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ collapse  u undo  f collapsible only  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.rows))

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		r := m.rows[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		class := r.class
		if class == "" {
			class = "-"
		}
		link := "✓"
		if !r.collapsible() {
			link = errorCode(r.err)
		}
		rows = append(rows, []string{cursor, strconv.Itoa(int(r.h)), fmt.Sprintf("%d → %d", r.p, r.q), class, link})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Half-edge", "Edge", "Class", "Link").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			idx := m.Offset + row
			if idx >= len(m.rows) {
				return lipgloss.NewStyle()
			}
			r := m.rows[idx]
			switch {
			case idx == m.Cursor && r.collapsible():
				return listSelectedStyle.Foreground(colorGreen)
			case idx == m.Cursor:
				return listSelectedStyle
			case r.collapsible():
				return lipgloss.NewStyle().Foreground(colorGreen)
			}
			return listDimStyle
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	if len(m.rows) > 0 {
		b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]  %d collapsed", m.Cursor+1, len(m.rows), m.Collapsed)))
	} else {
		b.WriteString(listDimStyle.Render("  no edges"))
	}
	if m.status != "" {
		b.WriteString("\n  ")
		if m.failed {
			b.WriteString(styleIconError.Render(iconError) + " " + listErrorStyle.Render(m.status))
		} else {
			b.WriteString(StyleSuccess.Render(m.status))
		}
	}

	return b.String()
}

// errorCode returns the short code of a classification error.
func errorCode(err error) string {
	if code := errors.GetCode(err); code != "" {
		return string(code)
	}
	return iconError
}
