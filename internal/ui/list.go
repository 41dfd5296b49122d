package ui

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pidex/pidex/internal/input"
	"github.com/pidex/pidex/internal/model"
	"github.com/pidex/pidex/internal/state"
	"github.com/pidex/pidex/internal/store"
)

// filterChoice is one entry in the Left/Right filter cycle: everything,
// one generation, or one type.
type filterChoice struct {
	label      string
	typeName   string
	generation int
}

// listScreen is the dex list with filter cycling and hold-to-scroll.
type listScreen struct {
	entries []model.Summary
	cursor  int
	offset  int // first visible row

	filters   []filterChoice
	filterIdx int

	loading bool
	loadErr string

	session *state.State
}

type listLoadedMsg struct {
	entries []model.Summary
	err     error
}

type listFiltersMsg struct {
	filters []filterChoice
	err     error
}

func newList(session *state.State) *listScreen {
	s := &listScreen{
		filters: []filterChoice{{label: "all"}},
		loading: true,
		session: session,
	}
	if session != nil {
		s.cursor = session.ListCursor
	}
	return s
}

func (s *listScreen) Title() string {
	return "dex · " + s.filters[s.filterIdx].label
}

func (s *listScreen) Init(app *App) tea.Cmd {
	return tea.Batch(s.loadFilters(app), s.load(app))
}

func (s *listScreen) loadFilters(app *App) tea.Cmd {
	session := s.session
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()

		choices := []filterChoice{{label: "all"}}

		gens, err := app.Store.CountByGeneration(ctx)
		if err != nil {
			return listFiltersMsg{err: err}
		}
		for _, g := range gens {
			n, _ := strconv.Atoi(g.Key)
			if n > 0 {
				choices = append(choices, filterChoice{label: "gen " + g.Key, generation: n})
			}
		}

		types, err := app.Store.TypeNames(ctx)
		if err != nil {
			return listFiltersMsg{err: err}
		}
		for _, t := range types {
			choices = append(choices, filterChoice{label: t, typeName: t})
		}

		// restore the session's filter if it still exists
		if session != nil {
			for i, c := range choices {
				if session.ListTypeFilter != "" && c.typeName == session.ListTypeFilter {
					return listFiltersMsg{filters: rotateToFront(choices, i)}
				}
				if session.ListTypeFilter == "" && session.ListGeneration > 0 &&
					c.generation == session.ListGeneration {
					return listFiltersMsg{filters: rotateToFront(choices, i)}
				}
			}
		}
		return listFiltersMsg{filters: choices}
	}
}

// rotateToFront returns choices with index i first, preserving order.
func rotateToFront(choices []filterChoice, i int) []filterChoice {
	return append(append([]filterChoice{}, choices[i:]...), choices[:i]...)
}

func (s *listScreen) load(app *App) tea.Cmd {
	choice := s.filters[s.filterIdx]
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		entries, err := app.Store.List(ctx, store.Filter{
			TypeName:   choice.typeName,
			Generation: choice.generation,
		})
		return listLoadedMsg{entries: entries, err: err}
	}
}

func (s *listScreen) Update(app *App, msg tea.Msg) (Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case listFiltersMsg:
		if msg.err == nil && len(msg.filters) > 0 {
			s.filters = msg.filters
			// a restored session filter rotated to the front makes the
			// initial unfiltered load stale
			if front := s.filters[0]; s.filterIdx == 0 && (front.typeName != "" || front.generation > 0) {
				s.loading = true
				return s, s.load(app)
			}
		}
		return s, nil

	case listLoadedMsg:
		s.loading = false
		if msg.err != nil {
			s.loadErr = "could not load the dex list"
			return s, nil
		}
		s.loadErr = ""
		s.entries = msg.entries
		if s.cursor >= len(s.entries) {
			s.cursor = 0
			s.offset = 0
		}
		return s, nil

	case buttonMsg:
		return s.handleButton(app, msg.button)
	}
	return s, nil
}

func (s *listScreen) handleButton(app *App, b input.Button) (Screen, tea.Cmd) {
	switch b {
	case input.Up:
		s.move(-1)
	case input.Down:
		s.move(1)
	case input.Left:
		return s.cycleFilter(app, -1)
	case input.Right:
		return s.cycleFilter(app, 1)
	case input.A:
		if len(s.entries) > 0 {
			entry := s.entries[s.cursor]
			s.remember()
			if s.session != nil {
				s.session.LastViewedID = entry.ID
			}
			return s, pushScreen(newDetail(entry.ID))
		}
	case input.B:
		s.remember()
		return s, popScreen()
	}
	return s, nil
}

func (s *listScreen) move(delta int) {
	if len(s.entries) == 0 {
		return
	}
	s.cursor += delta
	if s.cursor < 0 {
		s.cursor = 0
	}
	if s.cursor >= len(s.entries) {
		s.cursor = len(s.entries) - 1
	}
}

func (s *listScreen) cycleFilter(app *App, delta int) (Screen, tea.Cmd) {
	if len(s.filters) < 2 {
		return s, nil
	}
	s.filterIdx = (s.filterIdx + delta + len(s.filters)) % len(s.filters)
	s.cursor = 0
	s.offset = 0
	s.loading = true
	if s.session != nil {
		s.session.ListTypeFilter = s.filters[s.filterIdx].typeName
		s.session.ListGeneration = s.filters[s.filterIdx].generation
	}
	return s, s.load(app)
}

// remember stores the cursor in the session for resume.
func (s *listScreen) remember() {
	if s.session != nil {
		s.session.ListCursor = s.cursor
	}
}

func (s *listScreen) View(app *App, width, height int) string {
	var b strings.Builder

	filter := s.filters[s.filterIdx]
	header := fmt.Sprintf("Pokédex — %s", filter.label)
	b.WriteString(titleStyle.Render(header))
	b.WriteString("\n")

	if s.loading {
		b.WriteString(dimStyle.Render("  loading…"))
		return b.String()
	}
	if s.loadErr != "" {
		b.WriteString(errStyle.Render("  " + s.loadErr))
		return b.String()
	}
	if len(s.entries) == 0 {
		b.WriteString(dimStyle.Render("  nothing here — try another filter"))
		return b.String()
	}

	visible := height - 3
	if visible < 1 {
		visible = 1
	}
	s.scrollTo(visible)

	end := s.offset + visible
	if end > len(s.entries) {
		end = len(s.entries)
	}
	for i := s.offset; i < end; i++ {
		entry := s.entries[i]
		line := fmt.Sprintf("#%04d %-12s", entry.ID, entry.Name)
		badges := make([]string, len(entry.Types))
		for j, t := range entry.Types {
			badges[j] = typeBadge(t)
		}
		if i == s.cursor {
			b.WriteString(highlightStyle.Render("> ") + selectedStyle.Render(line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString(" " + strings.Join(badges, " ") + "\n")
	}

	b.WriteString(dimStyle.Render(fmt.Sprintf("\n  %d/%d · ←/→ filter · A open · B back", s.cursor+1, len(s.entries))))
	return b.String()
}

// scrollTo keeps the cursor inside the visible window.
func (s *listScreen) scrollTo(visible int) {
	if s.cursor < s.offset {
		s.offset = s.cursor
	}
	if s.cursor >= s.offset+visible {
		s.offset = s.cursor - visible + 1
	}
	if s.offset < 0 {
		s.offset = 0
	}
}
