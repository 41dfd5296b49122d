package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pidex/pidex/internal/input"
	"github.com/pidex/pidex/internal/store"
)

// dbStatsScreen summarizes the local database: totals per generation and
// per type, plus the last seed run.
type dbStatsScreen struct {
	total   int
	byGen   []store.GroupCount
	byType  []store.GroupCount
	lastRun *store.SeedRun

	loading bool
	loadErr string
}

type dbStatsMsg struct {
	total   int
	byGen   []store.GroupCount
	byType  []store.GroupCount
	lastRun *store.SeedRun
	err     error
}

func newDBStats() *dbStatsScreen {
	return &dbStatsScreen{loading: true}
}

func (s *dbStatsScreen) Title() string { return "stats" }

func (s *dbStatsScreen) Init(app *App) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		var msg dbStatsMsg
		var err error
		if msg.total, err = app.Store.Count(ctx); err != nil {
			return dbStatsMsg{err: err}
		}
		if msg.byGen, err = app.Store.CountByGeneration(ctx); err != nil {
			return dbStatsMsg{err: err}
		}
		if msg.byType, err = app.Store.CountByType(ctx); err != nil {
			return dbStatsMsg{err: err}
		}
		// missing run history is not an error, the dex may be hand-built
		msg.lastRun, _ = app.Store.LastSeedRun(ctx)
		return msg
	}
}

func (s *dbStatsScreen) Update(app *App, msg tea.Msg) (Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case dbStatsMsg:
		s.loading = false
		if msg.err != nil {
			s.loadErr = "could not read database stats"
			return s, nil
		}
		s.total = msg.total
		s.byGen = msg.byGen
		s.byType = msg.byType
		s.lastRun = msg.lastRun
		return s, nil

	case buttonMsg:
		if msg.button == input.B {
			return s, popScreen()
		}
	}
	return s, nil
}

func (s *dbStatsScreen) View(app *App, width, height int) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Database"))
	b.WriteString("\n\n")

	if s.loading {
		b.WriteString(dimStyle.Render("  loading…"))
		return b.String()
	}
	if s.loadErr != "" {
		b.WriteString(errStyle.Render("  " + s.loadErr))
		return b.String()
	}

	b.WriteString(fmt.Sprintf("  %s Pokémon\n\n", successStyle.Render(fmt.Sprintf("%d", s.total))))

	b.WriteString(selectedStyle.Render("  by generation") + "\n")
	for _, g := range s.byGen {
		b.WriteString(fmt.Sprintf("    gen %-3s %4d %s\n", g.Key, g.Count, statBar(g.Count, s.maxCount(s.byGen), 16)))
	}

	b.WriteString("\n" + selectedStyle.Render("  by type") + "\n")
	for _, t := range s.byType {
		b.WriteString(fmt.Sprintf("    %s %4d\n", padBadge(t.Key, 10), t.Count))
	}

	if s.lastRun != nil {
		b.WriteString("\n" + selectedStyle.Render("  last seed") + "\n")
		b.WriteString(fmt.Sprintf("    %s · #%d–#%d · %d ok, %d failed\n",
			s.lastRun.FinishedAt.Format("2006-01-02 15:04"),
			s.lastRun.FromID, s.lastRun.ToID, s.lastRun.OKCount, s.lastRun.FailCount))
		if s.lastRun.Notes != "" {
			b.WriteString("    " + dimStyle.Render(s.lastRun.Notes) + "\n")
		}
	}

	b.WriteString(dimStyle.Render("\n  B back"))
	return b.String()
}

func (s *dbStatsScreen) maxCount(groups []store.GroupCount) int {
	max := 1
	for _, g := range groups {
		if g.Count > max {
			max = g.Count
		}
	}
	return max
}

// padBadge pads the colored badge to a fixed visual width; the ANSI
// escape codes make %-10s useless here.
func padBadge(name string, width int) string {
	badge := typeBadge(name)
	if pad := width - len(name); pad > 0 {
		badge += strings.Repeat(" ", pad)
	}
	return badge
}
