package input

import "time"

// RepeatSchedule defines the hold-to-scroll acceleration tiers.
type RepeatSchedule struct {
	Initial    time.Duration // delay before the first repeat
	Fast       time.Duration // interval after the first repeat
	Turbo      time.Duration // interval once held past TurboAfter
	TurboAfter time.Duration
}

// DefaultRepeatSchedule matches common handheld key-repeat feel.
var DefaultRepeatSchedule = RepeatSchedule{
	Initial:    400 * time.Millisecond,
	Fast:       120 * time.Millisecond,
	Turbo:      45 * time.Millisecond,
	TurboAfter: 1500 * time.Millisecond,
}

// Repeater turns a held direction button into synthetic repeat events.
// It is a pure state machine driven by Press/Release edges and Tick; the
// caller owns the clock.
type Repeater struct {
	sched     RepeatSchedule
	button    Button
	held      bool
	pressedAt time.Time
	nextAt    time.Time
}

// NewRepeater creates a Repeater with the given schedule.
func NewRepeater(sched RepeatSchedule) *Repeater {
	return &Repeater{sched: sched}
}

// Press records a button press. Only Up and Down repeat; other buttons
// cancel any active hold.
func (r *Repeater) Press(b Button, now time.Time) {
	if b != Up && b != Down {
		r.held = false
		return
	}
	r.button = b
	r.held = true
	r.pressedAt = now
	r.nextAt = now.Add(r.sched.Initial)
}

// Release ends the hold if it matches the held button.
func (r *Repeater) Release(b Button) {
	if r.held && r.button == b {
		r.held = false
	}
}

// Tick returns the held button and how many repeats are due at now.
// A long tick gap yields multiple repeats so scroll speed is independent
// of the frame rate.
func (r *Repeater) Tick(now time.Time) (Button, int) {
	if !r.held || now.Before(r.nextAt) {
		return r.button, 0
	}

	count := 0
	for !now.Before(r.nextAt) {
		count++
		r.nextAt = r.nextAt.Add(r.interval(now))
	}
	return r.button, count
}

func (r *Repeater) interval(now time.Time) time.Duration {
	if now.Sub(r.pressedAt) >= r.sched.TurboAfter {
		return r.sched.Turbo
	}
	return r.sched.Fast
}

// Held reports whether a repeatable button is currently held.
func (r *Repeater) Held() bool {
	return r.held
}
