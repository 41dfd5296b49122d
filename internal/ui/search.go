package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/pidex/pidex/internal/input"
	"github.com/pidex/pidex/internal/model"
)

const searchLimit = 20

// searchScreen is a live name search. It consumes raw keys for typing;
// enter opens the highlighted result, esc goes back.
type searchScreen struct {
	box     textinput.Model
	results []model.Summary
	cursor  int
	err     string

	// query whose results are currently shown, to drop stale replies
	shown string
}

type searchResultsMsg struct {
	query   string
	results []model.Summary
	err     error
}

func newSearch() *searchScreen {
	box := textinput.New()
	box.Placeholder = "name…"
	box.CharLimit = 24
	box.Width = 24
	box.Focus()
	return &searchScreen{box: box}
}

func (s *searchScreen) Title() string { return "search" }

func (s *searchScreen) WantsKeys() bool { return true }

func (s *searchScreen) Init(app *App) tea.Cmd { return textinput.Blink }

func (s *searchScreen) query(app *App, q string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		results, err := app.Store.Search(ctx, q, searchLimit)
		return searchResultsMsg{query: q, results: results, err: err}
	}
}

func (s *searchScreen) Update(app *App, msg tea.Msg) (Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case searchResultsMsg:
		if msg.query != strings.TrimSpace(s.box.Value()) {
			return s, nil // stale
		}
		if msg.err != nil {
			s.err = "search failed"
			return s, nil
		}
		s.err = ""
		s.shown = msg.query
		s.results = msg.results
		if s.cursor >= len(s.results) {
			s.cursor = 0
		}
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return s, popScreen()
		case "up":
			if s.cursor > 0 {
				s.cursor--
			}
			return s, nil
		case "down":
			if s.cursor < len(s.results)-1 {
				s.cursor++
			}
			return s, nil
		case "enter":
			if len(s.results) > 0 {
				return s, pushScreen(newDetail(s.results[s.cursor].ID))
			}
			return s, nil
		}

		before := s.box.Value()
		var cmd tea.Cmd
		s.box, cmd = s.box.Update(msg)
		q := strings.TrimSpace(s.box.Value())
		if q == before || q == s.shown {
			return s, cmd
		}
		if q == "" {
			s.results = nil
			s.shown = ""
			s.cursor = 0
			return s, cmd
		}
		return s, tea.Batch(cmd, s.query(app, q))

	case buttonMsg:
		// GPIO navigation still works while the box has focus
		switch msg.button {
		case input.Up:
			if s.cursor > 0 {
				s.cursor--
			}
		case input.Down:
			if s.cursor < len(s.results)-1 {
				s.cursor++
			}
		case input.A:
			if len(s.results) > 0 {
				return s, pushScreen(newDetail(s.results[s.cursor].ID))
			}
		case input.B:
			return s, popScreen()
		}
	}
	return s, nil
}

func (s *searchScreen) View(app *App, width, height int) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Search"))
	b.WriteString("\n\n  " + s.box.View() + "\n\n")

	if s.err != "" {
		b.WriteString(errStyle.Render("  " + s.err))
		return b.String()
	}
	if len(s.results) == 0 {
		if strings.TrimSpace(s.box.Value()) != "" && s.shown != "" {
			b.WriteString(dimStyle.Render("  no matches"))
		} else {
			b.WriteString(dimStyle.Render("  type a name to search"))
		}
		return b.String()
	}

	for i, r := range s.results {
		line := fmt.Sprintf("#%04d %s", r.ID, r.Name)
		if i == s.cursor {
			b.WriteString(highlightStyle.Render("  > ") + selectedStyle.Render(line))
		} else {
			b.WriteString("    " + line)
		}
		b.WriteString("\n")
	}
	b.WriteString(dimStyle.Render("\n  enter open · esc back"))
	return b.String()
}
