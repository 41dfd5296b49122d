package ui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pidex/pidex/internal/input"
)

type aboutScreen struct{}

func newAbout() *aboutScreen { return &aboutScreen{} }

func (s *aboutScreen) Title() string { return "about" }

func (s *aboutScreen) Init(app *App) tea.Cmd { return nil }

func (s *aboutScreen) Update(app *App, msg tea.Msg) (Screen, tea.Cmd) {
	if msg, ok := msg.(buttonMsg); ok && msg.button == input.B {
		return s, popScreen()
	}
	return s, nil
}

func (s *aboutScreen) View(app *App, width, height int) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("About"))
	b.WriteString("\n\n")
	b.WriteString("  " + selectedStyle.Render("pidex") + " — a pocket Pokédex for small screens\n\n")
	b.WriteString("  Data and sprites come from PokéAPI (pokeapi.co) and are\n")
	b.WriteString("  cached locally; browsing needs no network at all.\n\n")
	b.WriteString("  Pokémon and Pokémon character names are trademarks of\n")
	b.WriteString("  Nintendo. This is a fan-made reference tool.\n")
	b.WriteString(dimStyle.Render("\n  B back"))
	return b.String()
}
