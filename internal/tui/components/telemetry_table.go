package components

import (
	"github.com/allbin/go-groundlink/internal/tui/colors"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

// TelemetryRow is one labelled value in the telemetry panel
type TelemetryRow struct {
	Label string
	Value string
}

// TelemetryTable shows the latest value of every telemetry field
type TelemetryTable struct {
	table table.Model
}

func NewTelemetryTable(width, height int) *TelemetryTable {
	width = max(width, 30)
	height = max(height, 4)

	t := table.New(
		table.WithColumns(telemetryColumns(width)),
		table.WithFocused(false),
		table.WithHeight(height),
		table.WithWidth(width),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(colors.Subtext0).
		BorderBottom(true).
		Bold(true).
		Foreground(colors.Text)
	// nothing is selectable here
	s.Selected = s.Cell
	t.SetStyles(s)

	return &TelemetryTable{table: t}
}

func telemetryColumns(width int) []table.Column {
	labelWidth := 12
	// separators and padding
	valueWidth := max(width-labelWidth-4, 16)
	return []table.Column{
		{Title: "Field", Width: labelWidth},
		{Title: "Value", Width: valueWidth},
	}
}

func (tt *TelemetryTable) SetSize(width, height int) {
	width = max(width, 30)
	tt.table.SetColumns(telemetryColumns(width))
	tt.table.SetHeight(max(height, 4))
	tt.table.SetWidth(width)
	tt.table.UpdateViewport()
}

func (tt *TelemetryTable) SetRows(rows []TelemetryRow) {
	out := make([]table.Row, len(rows))
	for i, r := range rows {
		out[i] = table.Row{r.Label, r.Value}
	}
	tt.table.SetRows(out)
	tt.table.UpdateViewport()
}

func (tt *TelemetryTable) Rows() []TelemetryRow {
	rows := tt.table.Rows()
	out := make([]TelemetryRow, len(rows))
	for i, r := range rows {
		out[i] = TelemetryRow{Label: r[0], Value: r[1]}
	}
	return out
}

func (tt *TelemetryTable) View() string {
	return tt.table.View()
}
