package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/pidex/pidex/internal/seed"
)

// SeedModel is the standalone progress display for `pidex seed`. The
// seeder runs in its own goroutine and feeds progress through a channel;
// the model re-arms a wait command after each update.
type SeedModel struct {
	progress chan seed.Progress
	done     chan seedOutcome

	current   seed.Progress
	started   bool
	spin      spinner.Model
	width     int
	cancel    func()
	cancelled bool

	result *seed.Result
	err    error
	over   bool
}

type seedOutcome struct {
	result *seed.Result
	err    error
}

type seedProgressMsg seed.Progress

type seedDoneMsg seedOutcome

// NewSeedModel creates the progress model. Feed ReportProgress to the
// seeder's Options.Progress and call Finish when Run returns.
func NewSeedModel() *SeedModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = highlightStyle
	return &SeedModel{
		progress: make(chan seed.Progress, 16),
		done:     make(chan seedOutcome, 1),
		spin:     sp,
		width:    80,
	}
}

// ReportProgress is the seeder progress callback. The send never blocks;
// a dropped frame just means the display skips an id.
func (m *SeedModel) ReportProgress(p seed.Progress) {
	select {
	case m.progress <- p:
	default:
	}
}

// Finish hands the seeder's outcome to the display.
func (m *SeedModel) Finish(result *seed.Result, err error) {
	m.done <- seedOutcome{result: result, err: err}
}

// SetCancel installs the function invoked when the user asks to stop,
// typically the seeder context's cancel.
func (m *SeedModel) SetCancel(fn func()) { m.cancel = fn }

// Cancelled reports whether the user asked to stop.
func (m *SeedModel) Cancelled() bool { return m.cancelled }

// Result returns the run outcome once the display has exited.
func (m *SeedModel) Result() (*seed.Result, error) { return m.result, m.err }

func (m *SeedModel) waitEvent() tea.Cmd {
	return func() tea.Msg {
		select {
		case p := <-m.progress:
			return seedProgressMsg(p)
		case out := <-m.done:
			return seedDoneMsg(out)
		}
	}
}

func (m *SeedModel) Init() tea.Cmd {
	return tea.Batch(m.spin.Tick, m.waitEvent())
}

func (m *SeedModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case spinner.TickMsg:
		if m.over {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case seedProgressMsg:
		m.started = true
		m.current = seed.Progress(msg)
		return m, m.waitEvent()

	case seedDoneMsg:
		m.over = true
		m.result = msg.result
		m.err = msg.err
		return m, tea.Quit

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			// the seeder notices the cancellation, records the partial
			// run, and the final doneMsg quits the display
			m.cancelled = true
			if m.cancel != nil {
				m.cancel()
			}
			return m, nil
		}
	}
	return m, nil
}

func (m *SeedModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Seeding the dex"))
	b.WriteString("\n\n")

	if !m.started {
		b.WriteString(fmt.Sprintf("  %s contacting PokéAPI...\n", m.spin.View()))
		return b.String()
	}

	p := m.current
	pct := 0.0
	if p.Total > 0 {
		pct = float64(p.Done+p.Failed) / float64(p.Total) * 100
	}
	bar := renderSeedBar(pct, m.width-20)
	b.WriteString(fmt.Sprintf("  %s %.1f%%\n", bar, pct))
	b.WriteString(fmt.Sprintf("  %s fetching #%04d · %d done", m.spin.View(), p.CurrentID, p.Done))
	if p.Failed > 0 {
		b.WriteString(errStyle.Render(fmt.Sprintf(" · %d failed", p.Failed)))
	}
	b.WriteString("\n")

	if m.cancelled {
		b.WriteString("\n" + dimStyle.Render("  stopping after the current entry..."))
	} else {
		b.WriteString("\n" + dimStyle.Render("  q: stop"))
	}
	return b.String()
}

func renderSeedBar(pct float64, width int) string {
	if width < 10 {
		width = 10
	}
	filled := int(pct / 100 * float64(width))
	if filled > width {
		filled = width
	}
	return "[" + strings.Repeat("=", filled) + strings.Repeat(" ", width-filled) + "]"
}
