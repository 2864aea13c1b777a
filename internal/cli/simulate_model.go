package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/alexanderramin/tempo/internal/cli/formatter"
	"github.com/alexanderramin/tempo/internal/contract"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
)

const maxBarWidth = 60

type simProgressMsg struct {
	done  int
	total int
}

type simDoneMsg struct {
	result *contract.SimulationResult
	err    error
}

// simulateModel renders a progress bar while the Monte Carlo run executes
// in the background. Cancelling stops the workers and waits for them to
// report back before quitting.
type simulateModel struct {
	title     string
	bar       progress.Model
	done      int
	total     int
	cancel    context.CancelFunc
	cancelled bool
	finished  bool
	result    *contract.SimulationResult
	err       error
}

func newSimulateModel(title string, total int, cancel context.CancelFunc) simulateModel {
	bar := progress.New(progress.WithGradient(string(formatter.ColorBlue), string(formatter.ColorPurple)))
	bar.Width = 40
	return simulateModel{title: title, bar: bar, total: total, cancel: cancel}
}

func (m simulateModel) Init() tea.Cmd { return nil }

func (m simulateModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.bar.Width = min(maxBarWidth, max(10, msg.Width-20))
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc", "q":
			if !m.cancelled && m.cancel != nil {
				m.cancel()
			}
			m.cancelled = true
		}
	case simProgressMsg:
		if msg.done > m.done {
			m.done = msg.done
		}
		if msg.total > 0 {
			m.total = msg.total
		}
	case simDoneMsg:
		m.finished = true
		m.result = msg.result
		m.err = msg.err
		if m.err == nil && m.result != nil && m.result.Result != nil {
			m.done = m.result.Result.Iterations
		}
		return m, tea.Quit
	}
	return m, nil
}

func (m simulateModel) percent() float64 {
	if m.total <= 0 {
		return 0
	}
	return min(1, float64(m.done)/float64(m.total))
}

func (m simulateModel) View() string {
	if m.finished {
		return ""
	}
	var b strings.Builder
	b.WriteString(formatter.Bold(m.title))
	b.WriteString("\n\n  ")
	b.WriteString(m.bar.ViewAs(m.percent()))
	fmt.Fprintf(&b, "  %d/%d\n\n", m.done, m.total)
	if m.cancelled {
		b.WriteString(formatter.StyleYellow.Render("  cancelling..."))
	} else {
		b.WriteString(formatter.Dim("  ctrl+c to cancel"))
	}
	b.WriteString("\n")
	return b.String()
}
