package ui

import (
	"fmt"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pidex/pidex/internal/input"
)

// settingsScreen shows the effective configuration, read-only. Editing
// happens in the config file; a six-button device is no place for forms.
type settingsScreen struct{}

func newSettings() *settingsScreen { return &settingsScreen{} }

func (s *settingsScreen) Title() string { return "settings" }

func (s *settingsScreen) Init(app *App) tea.Cmd { return nil }

func (s *settingsScreen) Update(app *App, msg tea.Msg) (Screen, tea.Cmd) {
	if msg, ok := msg.(buttonMsg); ok && msg.button == input.B {
		return s, popScreen()
	}
	return s, nil
}

func (s *settingsScreen) View(app *App, width, height int) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Settings"))
	b.WriteString("\n\n")

	if app.Cfg == nil {
		b.WriteString(dimStyle.Render("  no configuration loaded"))
		return b.String()
	}
	cfg := app.Cfg

	section := func(name string) { b.WriteString(selectedStyle.Render("  "+name) + "\n") }
	row := func(key, value string) { b.WriteString(fmt.Sprintf("    %-18s %s\n", key, value)) }

	section("database")
	row("path", cfg.Database.Path)

	section("sprites")
	row("directory", cfg.Sprites.Directory)
	row("memory entries", fmt.Sprintf("%d", cfg.Sprites.MemoryEntries))
	row("disk limit", fmt.Sprintf("%d MB", cfg.Sprites.DiskLimitMB))

	section("input")
	row("backend", cfg.Input.Backend)
	row("debounce", fmt.Sprintf("%d ms", cfg.Input.DebounceMS))
	if cfg.Input.Backend == "gpio" {
		names := make([]string, 0, len(cfg.Input.GPIOPins))
		for name := range cfg.Input.GPIOPins {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			row("pin "+name, fmt.Sprintf("%d", cfg.Input.GPIOPins[name]))
		}
	}

	section("pokeapi")
	row("base url", cfg.PokeAPI.BaseURL)
	row("rate", fmt.Sprintf("%d req/s", cfg.PokeAPI.RequestsPerSecond))

	section("ui")
	row("sprite width", fmt.Sprintf("%d", cfg.UI.SpriteWidth))
	row("debug overlay", fmt.Sprintf("%v", cfg.UI.ShowDebug))

	section("logging")
	row("level", cfg.Logging.Level)
	row("directory", cfg.Logging.Directory)

	b.WriteString(dimStyle.Render("\n  edit ~/.pidex/config.yaml to change · B back"))
	return b.String()
}
