// tasktui is a terminal host for the task tracker: one process, one store
// instance, driven through the same five operations the HTTP server exposes.
package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"tasks-api/store"
)

type mode int

const (
	modeList mode = iota
	modeAdd
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	cursorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("212"))
	doneStyle   = lipgloss.NewStyle().Faint(true).Strikethrough(true)
	helpStyle   = lipgloss.NewStyle().Faint(true)
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("114"))
)

type model struct {
	tasks  *store.Store
	input  textinput.Model
	cursor int
	mode   mode
	status string
}

func newModel() model {
	ti := textinput.New()
	ti.Placeholder = "task title"
	ti.CharLimit = 256
	return model{tasks: store.New(), input: ti}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	if m.mode == modeAdd {
		switch keyMsg.String() {
		case "enter":
			id := m.tasks.Create(m.input.Value())
			m.status = fmt.Sprintf("created task #%d", id)
			m.input.SetValue("")
			m.input.Blur()
			m.mode = modeList
			return m, nil
		case "esc":
			m.input.SetValue("")
			m.input.Blur()
			m.mode = modeList
			return m, nil
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	list := m.tasks.List()
	switch keyMsg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "a":
		m.mode = modeAdd
		m.status = ""
		m.input.Focus()
		return m, textinput.Blink
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(list)-1 {
			m.cursor++
		}
	case "enter", " ":
		if m.cursor < len(list) {
			id := list[m.cursor].ID
			m.tasks.MarkDone(id)
			m.status = fmt.Sprintf("task #%d done", id)
		}
	case "d":
		if m.cursor < len(list) {
			if removed, ok := m.tasks.Delete(list[m.cursor].ID); ok {
				m.status = fmt.Sprintf("deleted task #%d (%s)", removed.ID, removed.Title)
			}
			if m.cursor > 0 && m.cursor >= m.tasks.Len() {
				m.cursor--
			}
		}
	}
	return m, nil
}

func (m model) View() string {
	s := titleStyle.Render("Tasks") + "\n\n"

	list := m.tasks.List()
	if len(list) == 0 {
		s += helpStyle.Render("nothing here yet; press a to add a task") + "\n"
	}
	for i, task := range list {
		cursor := "  "
		if i == m.cursor && m.mode == modeList {
			cursor = cursorStyle.Render("> ")
		}
		mark := "[ ]"
		line := fmt.Sprintf("#%d %s", task.ID, task.Title)
		if task.Done {
			mark = "[x]"
			line = doneStyle.Render(line)
		}
		s += fmt.Sprintf("%s%s %s\n", cursor, mark, line)
	}

	if m.mode == modeAdd {
		s += "\n" + m.input.View() + "\n"
		s += helpStyle.Render("enter: save - esc: cancel")
	} else {
		if m.status != "" {
			s += "\n" + statusStyle.Render(m.status)
		}
		s += "\n" + helpStyle.Render("a: add - enter/space: done - d: delete - j/k: move - q: quit")
	}
	return s + "\n"
}

func main() {
	if _, err := tea.NewProgram(newModel()).Run(); err != nil {
		fmt.Fprintf(os.Stderr, "tasktui: %v\n", err)
		os.Exit(1)
	}
}
