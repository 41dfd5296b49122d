package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pidex/pidex/internal/input"
)

// menuEntry is one home-menu line.
type menuEntry struct {
	label string
	open  func(app *App) Screen
}

// menuScreen is the home screen; the stack base.
type menuScreen struct {
	entries []menuEntry
	cursor  int

	dexCount int
	loadErr  string
}

type menuCountMsg struct {
	count int
	err   error
}

type randomPickMsg struct {
	id  int
	err error
}

func newMenu() *menuScreen {
	return &menuScreen{
		entries: []menuEntry{
			{label: "Pokédex", open: func(app *App) Screen { return newList(app.Session) }},
			{label: "Search", open: func(app *App) Screen { return newSearch() }},
			{label: "Surprise Me", open: nil}, // resolved via command
			{label: "Stats", open: func(app *App) Screen { return newDBStats() }},
			{label: "Settings", open: func(app *App) Screen { return newSettings() }},
			{label: "About", open: func(app *App) Screen { return newAbout() }},
		},
	}
}

func (s *menuScreen) Title() string { return "pidex" }

func (s *menuScreen) Init(app *App) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		n, err := app.Store.Count(ctx)
		return menuCountMsg{count: n, err: err}
	}
}

func (s *menuScreen) Update(app *App, msg tea.Msg) (Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case menuCountMsg:
		if msg.err != nil {
			s.loadErr = "database unavailable — check ~/.pidex/pidex.db"
		} else {
			s.dexCount = msg.count
		}
		return s, nil

	case randomPickMsg:
		if msg.err != nil {
			s.loadErr = "database empty — run `pidex seed` first"
			return s, nil
		}
		return s, pushScreen(newDetail(msg.id))

	case buttonMsg:
		switch msg.button {
		case input.Up:
			if s.cursor > 0 {
				s.cursor--
			}
		case input.Down:
			if s.cursor < len(s.entries)-1 {
				s.cursor++
			}
		case input.A:
			return s.activate(app)
		case input.B:
			return s, requestQuit()
		}
	}
	return s, nil
}

func (s *menuScreen) activate(app *App) (Screen, tea.Cmd) {
	entry := s.entries[s.cursor]

	if entry.open == nil { // Surprise Me
		return s, func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()
			id, err := app.Store.Random(ctx)
			return randomPickMsg{id: id, err: err}
		}
	}

	if s.dexCount == 0 && s.cursor < 3 {
		// browsing screens are useless without data
		s.loadErr = "database empty — run `pidex seed` first"
		return s, nil
	}
	return s, pushScreen(entry.open(app))
}

func (s *menuScreen) View(app *App, width, height int) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("PIDEX"))
	b.WriteString("\n\n")

	for i, entry := range s.entries {
		cursor := "  "
		label := entry.label
		if i == s.cursor {
			cursor = highlightStyle.Render("> ")
			label = selectedStyle.Render(label)
		}
		b.WriteString(fmt.Sprintf("  %s%s\n", cursor, label))
	}

	b.WriteString("\n")
	if s.loadErr != "" {
		b.WriteString("  " + errStyle.Render(s.loadErr) + "\n")
	} else if s.dexCount > 0 {
		b.WriteString("  " + dimStyle.Render(fmt.Sprintf("%d Pokémon in the dex", s.dexCount)) + "\n")
	}

	b.WriteString("\n" + dimStyle.Render("  ↑/↓ move · A select · B quit"))
	return b.String()
}
