// Package progress drives a small bubbletea program that renders batch
// translation progress, fed by the orchestrator's done/total callback.
// Everything interactive (keymaps, dashboards) is dropped since this is a
// one-shot batch report, not a TUI.
package progress

import (
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	doneStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
)

type tickMsg time.Time

type countMsg struct {
	done  int
	total int
}

type doneMsg struct{}

type model struct {
	spinner spinner.Model
	done    int
	total   int
	label   string
	closed  bool
}

func newModel(label string) model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = labelStyle
	return model{spinner: s, label: label}
}

func (m model) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case countMsg:
		m.done, m.total = msg.done, msg.total
		return m, nil
	case doneMsg:
		m.closed = true
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	default:
		return m, nil
	}
}

func (m model) View() string {
	if m.closed {
		return doneStyle.Render(fmt.Sprintf("%s: %d/%d batches translated\n", m.label, m.done, m.total))
	}
	return fmt.Sprintf("%s %s %d/%d\n", m.spinner.View(), m.label, m.done, m.total)
}

// Reporter drives a bubbletea program from a background goroutine and
// exposes a callback compatible with orchestrator.ProgressFunc.
type Reporter struct {
	program *tea.Program
	mu      sync.Mutex
	started bool
	wg      sync.WaitGroup
}

// NewReporter builds a Reporter with the given status label (e.g. the
// texture name being translated).
func NewReporter(label string) *Reporter {
	return &Reporter{program: tea.NewProgram(newModel(label))}
}

// Start runs the bubbletea program in the background. Call Stop when the
// job finishes to tear it down.
func (r *Reporter) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.started {
		return
	}
	r.started = true
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		_, _ = r.program.Run()
	}()
}

// Report matches orchestrator.ProgressFunc; safe to call from any worker.
func (r *Reporter) Report(done, total int) {
	r.mu.Lock()
	started := r.started
	r.mu.Unlock()
	if !started {
		return
	}
	r.program.Send(countMsg{done: done, total: total})
}

// Stop signals the program to quit and waits for it to exit.
func (r *Reporter) Stop() {
	r.mu.Lock()
	started := r.started
	r.mu.Unlock()
	if !started {
		return
	}
	r.program.Send(doneMsg{})
	r.wg.Wait()
}
