// Package ui is the screen-stack browse interface. The root Model owns a
// stack of Screens; pushing opens a screen, popping (the B button) goes
// back. Every data screen is reachable from the menu in at most three
// presses. All database and sprite work happens in tea.Cmd functions so
// Update never blocks a frame.
package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/pidex/pidex/internal/input"
)

// Screen is one entry in the navigation stack.
type Screen interface {
	// Init is called when the screen is pushed.
	Init(app *App) tea.Cmd
	// Update handles buttonMsg, data messages, and (for screens that
	// declare WantsKeys) raw key messages.
	Update(app *App, msg tea.Msg) (Screen, tea.Cmd)
	// View renders the screen body; the root adds the status bar.
	View(app *App, width, height int) string
	// Title labels the screen in the status bar.
	Title() string
}

// keyConsumer is implemented by screens that need raw key input
// (the search box) instead of translated button events.
type keyConsumer interface {
	WantsKeys() bool
}

// buttonMsg is a translated, debounced button press delivered to the top
// screen. Keyboard and GPIO input both arrive as this.
type buttonMsg struct {
	button input.Button
}

// navigation messages emitted by screens through push/pop commands

type pushMsg struct{ screen Screen }

type popMsg struct{}

// pushScreen returns a command that pushes s onto the stack.
func pushScreen(s Screen) tea.Cmd {
	return func() tea.Msg { return pushMsg{screen: s} }
}

// popScreen returns a command that pops the top screen.
func popScreen() tea.Cmd {
	return func() tea.Msg { return popMsg{} }
}
