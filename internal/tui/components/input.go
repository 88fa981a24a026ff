package components

import (
	"fmt"
	"strings"

	"github.com/allbin/go-groundlink/internal/tui/colors"
	"github.com/allbin/go-groundlink/internal/tui/styles"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const historyLimit = 100

// ParseWaypointInput splits "x y [z]" (spaces or commas) into the raw
// mapping accepted by groundlink.ParseWaypoint
func ParseWaypointInput(s string) (map[string]any, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == ',' || r == '\t'
	})

	keys := []string{"x", "y", "z"}
	if len(fields) < 2 || len(fields) > len(keys) {
		return nil, fmt.Errorf("expected \"x y [z]\", got %d values", len(fields))
	}

	raw := make(map[string]any, len(fields))
	for i, f := range fields {
		raw[keys[i]] = f
	}
	return raw, nil
}

// WaypointInput is the single line editor used to add waypoints
type WaypointInput struct {
	textInput     textinput.Model
	history       []string
	historyIndex  int
	currentInput  string // kept while browsing history
	terminalWidth int
}

func NewWaypointInput() *WaypointInput {
	ti := textinput.New()
	ti.Placeholder = "x y [z]"
	ti.CharLimit = 64
	ti.Prompt = ""

	return &WaypointInput{
		textInput:    ti,
		historyIndex: -1,
	}
}

func (i *WaypointInput) SetWidth(width int) {
	i.terminalWidth = width
	// border(2) + padding(2) + prompt(1) + space(1)
	i.textInput.Width = max(width-6, 20)
}

func (i *WaypointInput) Focus() {
	i.textInput.Focus()
}

func (i *WaypointInput) Blur() {
	i.textInput.Blur()
}

func (i *WaypointInput) Value() string {
	return i.textInput.Value()
}

func (i *WaypointInput) SetValue(value string) {
	i.textInput.SetValue(value)
}

func (i *WaypointInput) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	i.textInput, cmd = i.textInput.Update(msg)
	return cmd
}

func (i *WaypointInput) View(isInsertMode bool) string {
	prompt := lipgloss.NewStyle().Foreground(colors.Teal).Bold(true).Render("⌖")

	var content string
	if isInsertMode {
		content = lipgloss.JoinHorizontal(lipgloss.Left, prompt, " ", i.textInput.View())
	} else {
		hint := lipgloss.NewStyle().
			Foreground(colors.Overlay0).
			Render("Press 'a' to add a waypoint")
		content = lipgloss.JoinHorizontal(lipgloss.Left, prompt, " ", hint)
	}

	style := styles.InputStyle.
		Width(max(i.terminalWidth-4, 10)).
		AlignHorizontal(lipgloss.Left)
	if isInsertMode {
		style = style.BorderForeground(colors.Green)
	}
	return style.Render(content)
}

// AddToHistory records an entry unless it is blank or repeats the last one
func (i *WaypointInput) AddToHistory(entry string) {
	entry = strings.TrimSpace(entry)
	if entry == "" {
		return
	}
	if len(i.history) > 0 && i.history[len(i.history)-1] == entry {
		return
	}

	i.history = append(i.history, entry)
	if len(i.history) > historyLimit {
		i.history = i.history[1:]
	}

	i.historyIndex = -1
	i.currentInput = ""
}

func (i *WaypointInput) NavigateHistoryUp() {
	if len(i.history) == 0 {
		return
	}

	if i.historyIndex == -1 {
		i.currentInput = i.textInput.Value()
		i.historyIndex = len(i.history) - 1
	} else if i.historyIndex > 0 {
		i.historyIndex--
	}

	i.textInput.SetValue(i.history[i.historyIndex])
}

func (i *WaypointInput) NavigateHistoryDown() {
	if len(i.history) == 0 || i.historyIndex == -1 {
		return
	}

	if i.historyIndex < len(i.history)-1 {
		i.historyIndex++
		i.textInput.SetValue(i.history[i.historyIndex])
		return
	}

	i.historyIndex = -1
	i.textInput.SetValue(i.currentInput)
	i.currentInput = ""
}
