package main

import (
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/matthewhughes934/gha-enforce-sha/internal/errs"
	"github.com/matthewhughes934/gha-enforce-sha/internal/workflow"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true)
	selectedStyle = lipgloss.NewStyle().Bold(true).Underline(true)
)

// confirmFixes lists the pending fixes and asks for a yes/no
// confirmation. Requires a terminal on stdin.
func confirmFixes(out io.Writer, occs []workflow.Occurrence) (bool, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return false, errs.Userf("--interactive requires a terminal")
	}

	fmt.Fprintln(out, titleStyle.Render(fmt.Sprintf("%d unpinned reference(s) will be rewritten:", len(occs))))
	for _, o := range occs {
		fmt.Fprintf(out, "  %s\n", o)
	}

	return promptConfirm("Rewrite these files?")
}

// confirmModel is a bubbletea model for a yes/no confirmation.
type confirmModel struct {
	title   string
	value   bool
	done    bool
	aborted bool
}

func (m confirmModel) Init() tea.Cmd {
	return nil
}

func (m confirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.aborted = true
			return m, tea.Quit
		case "enter":
			m.done = true
			return m, tea.Quit
		case "y", "Y":
			m.value = true
			m.done = true
			return m, tea.Quit
		case "n", "N":
			m.value = false
			m.done = true
			return m, tea.Quit
		case "left", "right", "tab", "h", "l":
			m.value = !m.value
		}
	}
	return m, nil
}

func (m confirmModel) View() string {
	if m.done {
		return ""
	}
	yes := " Yes "
	no := " No "
	if m.value {
		yes = selectedStyle.Render(" Yes ")
	} else {
		no = selectedStyle.Render(" No ")
	}
	return fmt.Sprintf("%s %s / %s\n", titleStyle.Render(m.title), yes, no)
}

func promptConfirm(title string) (bool, error) {
	m := confirmModel{title: title}

	result, err := tea.NewProgram(m).Run()
	if err != nil {
		return false, err
	}
	rm := result.(confirmModel)
	if rm.aborted {
		return false, errs.Userf("aborted by user")
	}
	return rm.value, nil
}
