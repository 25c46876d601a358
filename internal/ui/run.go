package ui

import (
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"pytutor/internal/mockexec"
)

type runModel struct {
	title   string
	results <-chan mockexec.Result
	spinner spinner.Model
	result  mockexec.Result
	done    bool
}

type runDoneMsg struct {
	res mockexec.Result
	ok  bool
}

// NewRunModel shows a spinner until the pending mock run delivers its result.
func NewRunModel(title string, results <-chan mockexec.Result) tea.Model {
	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	return &runModel{title: title, results: results, spinner: sp}
}

// RunResult extracts the result from a finished run model.
func RunResult(m tea.Model) (mockexec.Result, bool) {
	rm, ok := m.(*runModel)
	if !ok || !rm.done {
		return mockexec.Result{}, false
	}
	return rm.result, true
}

func (m *runModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		res, ok := <-m.results
		return runDoneMsg{res: res, ok: ok}
	})
}

func (m *runModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case runDoneMsg:
		m.result = msg.res
		m.done = msg.ok
		return m, tea.Quit
	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View clears itself once the run is done so the output replaces the spinner.
func (m *runModel) View() string {
	if m.done {
		return ""
	}
	return m.spinner.View() + " " + m.title + "\n"
}
