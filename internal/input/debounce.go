package input

import "time"

// Debouncer filters contact chatter from raw button samples. An edge is
// only accepted once the new level has held steady for the window.
type Debouncer struct {
	window time.Duration
	states map[Button]*debounceState
}

type debounceState struct {
	pressed      bool // accepted level
	candidate    bool
	candidateSet bool
	since        time.Time
}

// NewDebouncer creates a Debouncer with the given stability window.
func NewDebouncer(window time.Duration) *Debouncer {
	return &Debouncer{
		window: window,
		states: make(map[Button]*debounceState),
	}
}

// Sample feeds one raw reading. It returns an Event exactly when a
// debounced edge is accepted.
func (d *Debouncer) Sample(b Button, pressed bool, now time.Time) (Event, bool) {
	st, ok := d.states[b]
	if !ok {
		st = &debounceState{}
		d.states[b] = st
	}

	if pressed == st.pressed {
		st.candidateSet = false
		return Event{}, false
	}

	if !st.candidateSet || st.candidate != pressed {
		st.candidate = pressed
		st.candidateSet = true
		st.since = now
		// zero window accepts immediately
		if d.window <= 0 {
			st.pressed = pressed
			st.candidateSet = false
			return Event{Button: b, Pressed: pressed}, true
		}
		return Event{}, false
	}

	if now.Sub(st.since) >= d.window {
		st.pressed = pressed
		st.candidateSet = false
		return Event{Button: b, Pressed: pressed}, true
	}
	return Event{}, false
}

// Pressed reports the current debounced level of a button.
func (d *Debouncer) Pressed(b Button) bool {
	if st, ok := d.states[b]; ok {
		return st.pressed
	}
	return false
}
