package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/wippyai/nbt-editor/nbt"
	"github.com/wippyai/nbt-editor/session"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	nameStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	typeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type modelState int

const (
	stateBrowse modelState = iota
	stateEditValue
	stateRename
	stateConfirmQuit
)

// treeRow is one visible line of the tree.
type treeRow struct {
	tag   nbt.Tag
	label string
	path  nbt.Path
	depth int
}

type interactiveModel struct {
	err      error
	sess     *session.Session
	expanded map[string]bool
	status   string
	rows     []treeRow
	input    textinput.Model
	selected int
	offset   int
	height   int
	width    int
	state    modelState
}

func newInteractiveModel(s *session.Session) *interactiveModel {
	input := textinput.New()
	input.Width = 60
	m := &interactiveModel{
		sess:     s,
		expanded: map[string]bool{"": true},
		input:    input,
		height:   20,
		state:    stateBrowse,
	}
	m.rebuild()
	return m
}

// rebuild flattens the expanded part of the tree into rows.
func (m *interactiveModel) rebuild() {
	root := m.sess.Root()
	label := root.Name
	if label == "" {
		label = "(root)"
	}
	m.rows = m.rows[:0]
	m.addRows(nil, label, root.Compound, 0)
	if m.selected >= len(m.rows) {
		m.selected = len(m.rows) - 1
	}
	m.scroll()
}

func (m *interactiveModel) addRows(p nbt.Path, label string, t nbt.Tag, depth int) {
	m.rows = append(m.rows, treeRow{path: p, label: label, tag: t, depth: depth})
	if !m.expanded[p.String()] {
		return
	}
	switch v := t.(type) {
	case *nbt.Compound:
		v.Each(func(name string, child nbt.Tag) bool {
			m.addRows(p.Append(nbt.Key(name)), name, child, depth+1)
			return true
		})
	case *nbt.List:
		for i, child := range v.Elems() {
			m.addRows(p.Append(nbt.Index(i)), fmt.Sprintf("[%d]", i), child, depth+1)
		}
	}
}

func (m *interactiveModel) scroll() {
	if m.selected < m.offset {
		m.offset = m.selected
	}
	if m.selected >= m.offset+m.height {
		m.offset = m.selected - m.height + 1
	}
	if m.offset < 0 {
		m.offset = 0
	}
}

func (m *interactiveModel) current() treeRow {
	return m.rows[m.selected]
}

func (m *interactiveModel) Init() tea.Cmd {
	return nil
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.height = max(1, msg.Height-7)
		m.width = msg.Width
		m.scroll()
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.state {
		case stateEditValue, stateRename:
			return m.updateInput(msg)
		case stateConfirmQuit:
			return m.updateConfirmQuit(msg)
		}
		return m.updateBrowse(msg)
	}

	if m.state == stateEditValue || m.state == stateRename {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *interactiveModel) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	row := m.current()
	m.err = nil
	m.status = ""

	switch msg.String() {
	case "q":
		if m.sess.Dirty() {
			m.state = stateConfirmQuit
			return m, nil
		}
		return m, tea.Quit

	case "up", "k":
		if m.selected > 0 {
			m.selected--
		}

	case "down", "j":
		if m.selected < len(m.rows)-1 {
			m.selected++
		}

	case "enter", " ":
		if row.tag.Type().IsContainer() {
			key := row.path.String()
			m.expanded[key] = !m.expanded[key]
			m.rebuild()
			return m, nil
		}
		m.beginEdit(row)

	case "right", "l":
		if row.tag.Type().IsContainer() {
			m.expanded[row.path.String()] = true
			m.rebuild()
		}

	case "left", "h":
		key := row.path.String()
		if row.tag.Type().IsContainer() && m.expanded[key] && len(row.path) > 0 {
			m.expanded[key] = false
			m.rebuild()
			return m, nil
		}
		if parent, _, ok := row.path.Parent(); ok {
			m.selectPath(parent)
		}

	case "e":
		m.beginEdit(row)

	case "r":
		last, ok := lastKey(row.path)
		if !ok {
			m.err = fmt.Errorf("only compound entries can be renamed")
			return m, nil
		}
		m.state = stateRename
		m.input.Prompt = "rename: "
		m.input.SetValue(last)
		m.input.CursorEnd()
		return m, m.input.Focus()

	case "d", "delete":
		if len(row.path) == 0 {
			m.err = fmt.Errorf("the root cannot be deleted")
			return m, nil
		}
		if err := m.sess.Editor().DeleteChild(row.path); err != nil {
			m.err = err
			return m, nil
		}
		m.status = "deleted " + row.path.String()
		m.rebuild()

	case "s":
		m.save()
	}

	m.scroll()
	return m, nil
}

func (m *interactiveModel) beginEdit(row treeRow) {
	if row.tag.Type().IsContainer() {
		m.err = fmt.Errorf("%s is a %s; select a value to edit", displayPath(row.path), row.tag.Type())
		return
	}
	m.state = stateEditValue
	m.input.Prompt = row.tag.Type().String() + ": "
	m.input.SetValue(nbt.EditText(row.tag))
	m.input.CursorEnd()
	m.input.Focus()
}

func (m *interactiveModel) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.endInput()
		return m, nil

	case "enter":
		row := m.current()
		var err error
		if m.state == stateRename {
			err = m.sess.Editor().Rename(row.path, m.input.Value())
		} else {
			err = m.sess.Editor().SetText(row.path, m.input.Value())
		}
		if err != nil {
			m.err = err
			return m, nil
		}
		if m.state == stateRename {
			parent, _, _ := row.path.Parent()
			renamed := parent.Append(nbt.Key(m.input.Value()))
			if m.expanded[row.path.String()] {
				delete(m.expanded, row.path.String())
				m.expanded[renamed.String()] = true
			}
			m.endInput()
			m.rebuild()
			m.selectPath(renamed)
			m.status = "renamed to " + renamed.String()
			return m, nil
		}
		m.endInput()
		m.rebuild()
		m.status = "updated " + displayPath(row.path)
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *interactiveModel) endInput() {
	m.state = stateBrowse
	m.err = nil
	m.input.Blur()
	m.input.SetValue("")
}

func (m *interactiveModel) updateConfirmQuit(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "q":
		return m, tea.Quit
	case "s":
		m.save()
		if m.err == nil {
			return m, tea.Quit
		}
	}
	m.state = stateBrowse
	return m, nil
}

func (m *interactiveModel) save() {
	if err := m.sess.Save(); err != nil {
		m.err = err
		return
	}
	m.status = "saved " + m.sess.Path()
}

func (m *interactiveModel) selectPath(p nbt.Path) {
	want := p.String()
	for i, row := range m.rows {
		if row.path.String() == want {
			m.selected = i
			m.scroll()
			return
		}
	}
}

func lastKey(p nbt.Path) (string, bool) {
	_, last, ok := p.Parent()
	if !ok || last.IsIndex {
		return "", false
	}
	return last.Key, true
}

func (m *interactiveModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("NBT Editor"))
	b.WriteString(" ")
	b.WriteString(m.sess.Path())
	b.WriteString(" ")
	b.WriteString(typeStyle.Render(m.sess.Compression().String()))
	if m.sess.Dirty() {
		b.WriteString(errorStyle.Render(" [modified]"))
	}
	b.WriteString("\n\n")

	end := min(len(m.rows), m.offset+m.height)
	for i := m.offset; i < end; i++ {
		line := m.formatRow(m.rows[i])
		if m.width > 2 {
			line = ansi.Truncate(line, m.width-2, "…")
		}
		if i == m.selected {
			b.WriteString(selectedStyle.Render("> " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")

	switch m.state {
	case stateEditValue, stateRename:
		b.WriteString(m.input.View())
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("enter apply • esc cancel"))
	case stateConfirmQuit:
		b.WriteString(errorStyle.Render("Unsaved changes. Quit anyway? y quit • s save and quit • any other key cancels"))
	default:
		b.WriteString(helpStyle.Render("↑/↓ move • enter expand/edit • e edit • r rename • d delete • s save • q quit"))
	}
	b.WriteString("\n")

	if m.err != nil {
		b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	} else if m.status != "" {
		b.WriteString(statusStyle.Render(m.status))
	}
	return b.String()
}

func (m *interactiveModel) formatRow(row treeRow) string {
	marker := "  "
	if row.tag.Type().IsContainer() {
		marker = "▸ "
		if m.expanded[row.path.String()] {
			marker = "▾ "
		}
	}
	return strings.Repeat("  ", row.depth) + marker +
		nameStyle.Render(row.label) + " " +
		typeStyle.Render(row.tag.Type().String()) + " " +
		nbt.Summary(row.tag)
}

func runInteractive(s *session.Session) error {
	p := tea.NewProgram(newInteractiveModel(s), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
