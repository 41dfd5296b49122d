package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pidex/pidex/internal/input"
	"github.com/pidex/pidex/internal/model"
	"github.com/pidex/pidex/internal/sprite"
)

// detail tabs, cycled with Left/Right
const (
	tabInfo = iota
	tabStats
	tabEvolution
	tabCount
)

var tabNames = [tabCount]string{"Info", "Stats", "Evolution"}

// detailScreen shows one Pokémon with its sprite and tabbed panels.
// Up/Down jump to the previous/next dex entry in place.
type detailScreen struct {
	id  int
	tab int

	pokemon *model.Pokemon
	chain   []model.EvolutionEdge
	prev    int
	next    int
	art     string

	loading bool
	loadErr string
}

type detailLoadedMsg struct {
	id      int
	pokemon *model.Pokemon
	chain   []model.EvolutionEdge
	prev    int
	next    int
	art     string
	err     error
}

func newDetail(id int) *detailScreen {
	return &detailScreen{id: id, loading: true}
}

func (s *detailScreen) Title() string {
	if s.pokemon != nil {
		return fmt.Sprintf("#%04d %s", s.pokemon.ID, s.pokemon.Name)
	}
	return fmt.Sprintf("#%04d", s.id)
}

func (s *detailScreen) Init(app *App) tea.Cmd {
	return s.load(app, s.id)
}

func (s *detailScreen) load(app *App, id int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		p, err := app.Store.Get(ctx, id)
		if err != nil {
			return detailLoadedMsg{id: id, err: err}
		}

		msg := detailLoadedMsg{id: id, pokemon: p}

		if p.Species.EvolutionChainID > 0 {
			// chain failures degrade to an empty tab
			msg.chain, _ = app.Store.EvolutionChain(ctx, p.Species.EvolutionChainID)
		}
		msg.prev, msg.next, _ = app.Store.Neighbors(ctx, id)

		width := 24
		if app.Cfg != nil && app.Cfg.UI.SpriteWidth > 0 {
			width = app.Cfg.UI.SpriteWidth
		}
		if app.Sprites != nil {
			msg.art, _ = app.Sprites.Get(id, width)
		} else {
			msg.art = sprite.Placeholder(width)
		}
		return msg
	}
}

func (s *detailScreen) Update(app *App, msg tea.Msg) (Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case detailLoadedMsg:
		if msg.id != s.id {
			return s, nil // stale load from a fast Up/Down jump
		}
		s.loading = false
		if msg.err != nil {
			s.loadErr = "entry unavailable"
			return s, nil
		}
		s.loadErr = ""
		s.pokemon = msg.pokemon
		s.chain = msg.chain
		s.prev = msg.prev
		s.next = msg.next
		s.art = msg.art
		if app.Session != nil {
			app.Session.LastViewedID = s.id
		}
		return s, nil

	case buttonMsg:
		switch msg.button {
		case input.Left:
			s.tab = (s.tab + tabCount - 1) % tabCount
		case input.Right:
			s.tab = (s.tab + 1) % tabCount
		case input.Up:
			return s.jump(app, s.prev)
		case input.Down:
			return s.jump(app, s.next)
		case input.B:
			return s, popScreen()
		}
	}
	return s, nil
}

// jump replaces the shown entry without growing the stack.
func (s *detailScreen) jump(app *App, id int) (Screen, tea.Cmd) {
	if id <= 0 || id == s.id {
		return s, nil
	}
	s.id = id
	s.loading = true
	return s, s.load(app, id)
}

func (s *detailScreen) View(app *App, width, height int) string {
	if s.loading {
		return dimStyle.Render("  loading…")
	}
	if s.loadErr != "" {
		return errStyle.Render("  " + s.loadErr)
	}
	p := s.pokemon

	name := p.Name
	if p.Species.IsLegendary || p.Species.IsMythical {
		name = legendaryStyle.Render(name)
	} else {
		name = selectedStyle.Render(name)
	}
	header := fmt.Sprintf("#%04d %s", p.ID, name)

	badges := make([]string, len(p.Types))
	for i, t := range p.Types {
		badges[i] = typeBadge(t.Name)
	}

	var panel strings.Builder
	panel.WriteString(header + "  " + strings.Join(badges, " ") + "\n")
	panel.WriteString(s.tabBar() + "\n\n")

	switch s.tab {
	case tabInfo:
		panel.WriteString(s.infoPanel(p))
	case tabStats:
		panel.WriteString(s.statsPanel(p))
	case tabEvolution:
		panel.WriteString(s.evolutionPanel(p))
	}

	body := lipgloss.JoinHorizontal(lipgloss.Top, s.art, "  ", panel.String())
	nav := dimStyle.Render("  ↑/↓ prev/next · ←/→ tab · B back")
	return body + "\n" + nav
}

func (s *detailScreen) tabBar() string {
	parts := make([]string, tabCount)
	for i, name := range tabNames {
		if i == s.tab {
			parts[i] = highlightStyle.Render("[" + name + "]")
		} else {
			parts[i] = dimStyle.Render(" " + name + " ")
		}
	}
	return strings.Join(parts, " ")
}

func (s *detailScreen) infoPanel(p *model.Pokemon) string {
	var b strings.Builder
	if p.Species.Genus != "" {
		b.WriteString(dimStyle.Render(p.Species.Genus) + "\n")
	}
	b.WriteString(fmt.Sprintf("height  %.1f m\n", float64(p.Height)/10))
	b.WriteString(fmt.Sprintf("weight  %.1f kg\n", float64(p.Weight)/10))
	if p.Species.Habitat != "" {
		b.WriteString("habitat " + p.Species.Habitat + "\n")
	}
	b.WriteString(fmt.Sprintf("capture rate %d\n", p.Species.CaptureRate))

	for _, a := range p.Abilities {
		line := "ability " + a.Name
		if a.IsHidden {
			line += dimStyle.Render(" (hidden)")
		}
		b.WriteString(line + "\n")
	}

	if p.Species.FlavorText != "" {
		b.WriteString("\n" + wrapText(p.Species.FlavorText, 40))
	}
	return b.String()
}

func (s *detailScreen) statsPanel(p *model.Pokemon) string {
	var b strings.Builder
	for _, name := range model.StatNames {
		base := p.Stat(name)
		b.WriteString(fmt.Sprintf("%-8s %3d %s\n", name, base, statBar(base, model.MaxBaseStat, 20)))
	}
	b.WriteString(fmt.Sprintf("\n%-8s %3d\n", "total", p.StatTotal()))
	return b.String()
}

func (s *detailScreen) evolutionPanel(p *model.Pokemon) string {
	if len(s.chain) == 0 {
		return dimStyle.Render("does not evolve")
	}
	var b strings.Builder
	for _, e := range s.chain {
		from := e.FromName
		to := e.ToName
		if e.FromSpeciesID == p.SpeciesID {
			from = selectedStyle.Render(from)
		}
		if e.ToSpeciesID == p.SpeciesID {
			to = selectedStyle.Render(to)
		}
		b.WriteString(from + " → " + to)
		switch {
		case e.MinLevel > 0:
			b.WriteString(dimStyle.Render(fmt.Sprintf("  (lv %d)", e.MinLevel)))
		case e.Item != "":
			b.WriteString(dimStyle.Render("  (" + e.Item + ")"))
		case e.Trigger != "":
			b.WriteString(dimStyle.Render("  (" + e.Trigger + ")"))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// wrapText is a simple word wrapper for flavor text.
func wrapText(text string, width int) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return ""
	}
	var b strings.Builder
	line := words[0]
	for _, w := range words[1:] {
		if len(line)+1+len(w) > width {
			b.WriteString(line + "\n")
			line = w
			continue
		}
		line += " " + w
	}
	b.WriteString(line)
	return b.String()
}
