package ui

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pidex/pidex/internal/config"
	"github.com/pidex/pidex/internal/input"
	"github.com/pidex/pidex/internal/sprite"
	"github.com/pidex/pidex/internal/state"
	"github.com/pidex/pidex/internal/store"
)

// tickInterval drives GPIO polling and hold-to-scroll repeats.
const tickInterval = 100 * time.Millisecond

// App bundles the services screens need.
type App struct {
	Store   *store.Store
	Sprites *sprite.Cache
	Cfg     *config.Config
	Session *state.State
	Log     *slog.Logger
	GPIO    *input.GPIOReader // nil when the keyboard backend is active
}

// Model is the root bubbletea model owning the screen stack.
type Model struct {
	app      *App
	stack    []Screen
	repeater *input.Repeater

	width  int
	height int

	confirmQuit bool
}

type tickMsg time.Time

// quitRequestMsg asks the root for the quit confirmation prompt.
type quitRequestMsg struct{}

// requestQuit returns a command that opens the quit confirmation.
func requestQuit() tea.Cmd {
	return func() tea.Msg { return quitRequestMsg{} }
}

// New builds the root model with the menu as the base screen. When the
// session remembers a last viewed entry, the dex list is restored on top
// so the device reopens where it was closed.
func New(app *App) Model {
	m := Model{
		app:      app,
		repeater: input.NewRepeater(input.DefaultRepeatSchedule),
		width:    80,
		height:   24,
	}
	m.stack = []Screen{newMenu()}
	if app.Session != nil && app.Session.LastViewedID > 0 {
		m.stack = append(m.stack, newList(app.Session))
	}
	return m
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{tick()}
	for _, s := range m.stack {
		if c := s.Init(m.app); c != nil {
			cmds = append(cmds, c)
		}
	}
	return tea.Batch(cmds...)
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m Model) top() Screen {
	return m.stack[len(m.stack)-1]
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tickMsg:
		return m.handleTick(time.Time(msg))

	case tea.KeyMsg:
		return m.handleKey(msg)

	case pushMsg:
		m.stack = append(m.stack, msg.screen)
		return m, msg.screen.Init(m.app)

	case popMsg:
		if len(m.stack) > 1 {
			m.stack = m.stack[:len(m.stack)-1]
		}
		return m, nil

	case quitRequestMsg:
		m.confirmQuit = true
		return m, nil
	}

	return m.forward(msg)
}

// handleTick polls GPIO, advances the repeater, and reschedules itself.
func (m Model) handleTick(now time.Time) (tea.Model, tea.Cmd) {
	cmds := []tea.Cmd{tick()}

	if m.app.GPIO != nil {
		for _, ev := range m.app.GPIO.Poll(now) {
			if ev.Pressed {
				m.repeater.Press(ev.Button, now)
				var c tea.Cmd
				var model tea.Model
				model, c = m.dispatchButton(ev.Button)
				m = model.(Model)
				if c != nil {
					cmds = append(cmds, c)
				}
			} else {
				m.repeater.Release(ev.Button)
			}
		}
	}

	// hold-to-scroll: synthetic repeats for a held direction button
	button, repeats := m.repeater.Tick(now)
	for i := 0; i < repeats; i++ {
		var c tea.Cmd
		var model tea.Model
		model, c = m.dispatchButton(button)
		m = model.(Model)
		if c != nil {
			cmds = append(cmds, c)
		}
	}

	return m, tea.Batch(cmds...)
}

// handleKey translates terminal keys to buttons. Terminal auto-repeat
// already provides hold-to-scroll for keyboards, so the repeater is only
// fed by GPIO edges.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if key == "ctrl+c" {
		return m, tea.Quit
	}

	if m.confirmQuit {
		switch key {
		case "enter", "z", "y":
			return m, tea.Quit
		default:
			m.confirmQuit = false
			return m, nil
		}
	}

	if consumer, ok := m.top().(keyConsumer); ok && consumer.WantsKeys() {
		return m.forward(msg)
	}

	if key == "q" {
		m.confirmQuit = true
		return m, nil
	}

	if button, ok := input.MapKey(key); ok {
		return m.dispatchButton(button)
	}
	return m, nil
}

// dispatchButton delivers one button press to the top screen. The quit
// confirmation is handled here, not only in handleKey, so GPIO buttons
// can complete or cancel it too.
func (m Model) dispatchButton(b input.Button) (tea.Model, tea.Cmd) {
	if m.confirmQuit {
		if b == input.A {
			return m, tea.Quit
		}
		m.confirmQuit = false
		return m, nil
	}
	return m.forward(buttonMsg{button: b})
}

// forward routes a message to the top screen.
func (m Model) forward(msg tea.Msg) (tea.Model, tea.Cmd) {
	top := len(m.stack) - 1
	next, cmd := m.stack[top].Update(m.app, msg)
	m.stack[top] = next
	return m, cmd
}

func (m Model) View() string {
	body := m.top().View(m.app, m.width, m.height-2)

	if m.confirmQuit {
		prompt := highlightStyle.Render("Quit pidex? ") + dimStyle.Render("A confirm · any other key cancel")
		return body + "\n" + prompt
	}

	return body + "\n" + m.statusBar()
}

func (m Model) statusBar() string {
	parts := []string{m.top().Title()}

	parts = append(parts, fmt.Sprintf("depth %d", len(m.stack)))

	if m.app.Cfg != nil && m.app.Cfg.UI.ShowDebug && m.app.Sprites != nil {
		parts = append(parts, m.app.Sprites.Stats().String())
	}

	bar := strings.Join(parts, " · ")
	if runes := []rune(bar); len(runes) > m.width && m.width > 1 {
		bar = string(runes[:m.width-1]) + "…"
	}
	return statusStyle.Width(m.width).Render(bar)
}
