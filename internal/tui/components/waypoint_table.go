package components

import (
	"strconv"

	groundlink "github.com/allbin/go-groundlink"
	"github.com/allbin/go-groundlink/internal/tui/colors"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/evertras/bubble-table/table"
)

const (
	columnKeyIndex = "index"
	columnKeyX     = "x"
	columnKeyY     = "y"
	columnKeyZ     = "z"
)

// WaypointTable lists the mission and tracks the highlighted waypoint
type WaypointTable struct {
	model    table.Model
	count    int
	pageSize int
}

func NewWaypointTable(pageSize int) *WaypointTable {
	wt := &WaypointTable{pageSize: max(pageSize, 3)}
	wt.model = wt.build(nil, 0)
	return wt
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func (wt *WaypointTable) build(wps []groundlink.Waypoint, highlighted int) table.Model {
	columns := []table.Column{
		table.NewColumn(columnKeyIndex, "#", 4),
		table.NewColumn(columnKeyX, "X", 9),
		table.NewColumn(columnKeyY, "Y", 9),
		table.NewColumn(columnKeyZ, "Z", 7),
	}

	rows := make([]table.Row, len(wps))
	for i, wp := range wps {
		rows[i] = table.NewRow(table.RowData{
			columnKeyIndex: strconv.Itoa(i + 1),
			columnKeyX:     formatCoord(wp.X),
			columnKeyY:     formatCoord(wp.Y),
			columnKeyZ:     formatCoord(wp.Z),
		})
	}

	m := table.New(columns).
		WithRows(rows).
		WithPageSize(wt.pageSize).
		HeaderStyle(lipgloss.NewStyle().Foreground(colors.Mauve).Bold(true)).
		HighlightStyle(lipgloss.NewStyle().Foreground(colors.Text).Background(colors.Surface1)).
		WithBaseStyle(lipgloss.NewStyle().Foreground(colors.Subtext1).BorderForeground(colors.Surface1)).
		Focused(true)
	if len(wps) > 0 {
		m = m.WithHighlightedRow(min(highlighted, len(wps)-1))
	}
	return m
}

// SetWaypoints replaces the rows, keeping the highlight in range
func (wt *WaypointTable) SetWaypoints(wps []groundlink.Waypoint) {
	wt.model = wt.build(wps, max(wt.Selected(), 0))
	wt.count = len(wps)
}

// Selected is the highlighted zero-based index, or -1 when empty
func (wt *WaypointTable) Selected() int {
	if wt.count == 0 {
		return -1
	}
	return wt.model.GetHighlightedRowIndex()
}

func (wt *WaypointTable) Len() int {
	return wt.count
}

func (wt *WaypointTable) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	wt.model, cmd = wt.model.Update(msg)
	return cmd
}

func (wt *WaypointTable) View() string {
	return wt.model.View()
}
