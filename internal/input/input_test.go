package input

import (
	"os"
	"testing"
	"time"
)

func TestParseButton(t *testing.T) {
	b, err := ParseButton("up")
	if err != nil || b != Up {
		t.Errorf("ParseButton(up) = %v, %v", b, err)
	}
	if _, err := ParseButton("start"); err == nil {
		t.Error("expected error for unknown button")
	}
}

func TestMapKey(t *testing.T) {
	tests := []struct {
		key  string
		want Button
		ok   bool
	}{
		{"up", Up, true},
		{"k", Up, true},
		{"j", Down, true},
		{"h", Left, true},
		{"l", Right, true},
		{"enter", A, true},
		{"z", A, true},
		{"esc", B, true},
		{"x", B, true},
		{"q", 0, false},
	}
	for _, tt := range tests {
		got, ok := MapKey(tt.key)
		if ok != tt.ok || (ok && got != tt.want) {
			t.Errorf("MapKey(%q) = %v, %v", tt.key, got, ok)
		}
	}
}

func TestDebouncerFiltersChatter(t *testing.T) {
	d := NewDebouncer(30 * time.Millisecond)
	t0 := time.Now()

	// edge appears but bounces back before the window elapses
	if _, ok := d.Sample(A, true, t0); ok {
		t.Error("edge should not be accepted immediately")
	}
	if _, ok := d.Sample(A, false, t0.Add(5*time.Millisecond)); ok {
		t.Error("bounce back to the accepted level emits nothing")
	}
	if _, ok := d.Sample(A, true, t0.Add(10*time.Millisecond)); ok {
		t.Error("restarted candidate should not be accepted yet")
	}

	// now the press holds steady past the window
	ev, ok := d.Sample(A, true, t0.Add(45*time.Millisecond))
	if !ok || ev.Button != A || !ev.Pressed {
		t.Fatalf("stable press should be accepted, got %+v, %v", ev, ok)
	}
	if !d.Pressed(A) {
		t.Error("debounced level should be pressed")
	}

	// steady level emits no further events
	if _, ok := d.Sample(A, true, t0.Add(100*time.Millisecond)); ok {
		t.Error("steady level re-emitted")
	}

	// release follows the same rule
	if _, ok := d.Sample(A, false, t0.Add(200*time.Millisecond)); ok {
		t.Error("release accepted immediately")
	}
	ev, ok = d.Sample(A, false, t0.Add(240*time.Millisecond))
	if !ok || ev.Pressed {
		t.Errorf("stable release should be accepted, got %+v, %v", ev, ok)
	}
}

func TestDebouncerZeroWindow(t *testing.T) {
	d := NewDebouncer(0)
	ev, ok := d.Sample(Up, true, time.Now())
	if !ok || !ev.Pressed {
		t.Error("zero window should accept edges immediately")
	}
}

func TestDebouncerIndependentButtons(t *testing.T) {
	d := NewDebouncer(0)
	d.Sample(Up, true, time.Now())
	if d.Pressed(Down) {
		t.Error("buttons should be tracked independently")
	}
}

func TestRepeaterSchedule(t *testing.T) {
	r := NewRepeater(DefaultRepeatSchedule)
	t0 := time.Now()

	r.Press(Down, t0)
	if !r.Held() {
		t.Fatal("down should be held")
	}

	// before the initial delay: nothing
	if _, n := r.Tick(t0.Add(300 * time.Millisecond)); n != 0 {
		t.Errorf("repeat before initial delay, n=%d", n)
	}

	// first repeat at 400ms
	b, n := r.Tick(t0.Add(400 * time.Millisecond))
	if b != Down || n != 1 {
		t.Errorf("first repeat = (%v, %d)", b, n)
	}

	// next at +120ms (fast tier)
	if _, n := r.Tick(t0.Add(460 * time.Millisecond)); n != 0 {
		t.Errorf("fast-tier repeat came early, n=%d", n)
	}
	if _, n := r.Tick(t0.Add(520 * time.Millisecond)); n != 1 {
		t.Errorf("fast-tier repeat missing, n=%d", n)
	}

	// after 1.5s of hold the turbo interval applies: a 200ms gap at that
	// point yields several repeats
	_, _ = r.Tick(t0.Add(1600 * time.Millisecond))
	_, n = r.Tick(t0.Add(1800 * time.Millisecond))
	if n < 3 {
		t.Errorf("turbo tier should produce multiple repeats in 200ms, n=%d", n)
	}
}

func TestRepeaterReleaseStops(t *testing.T) {
	r := NewRepeater(DefaultRepeatSchedule)
	t0 := time.Now()

	r.Press(Up, t0)
	r.Release(Up)
	if r.Held() {
		t.Error("release should end the hold")
	}
	if _, n := r.Tick(t0.Add(time.Second)); n != 0 {
		t.Errorf("released button still repeating, n=%d", n)
	}
}

func TestRepeaterNonDirectionCancels(t *testing.T) {
	r := NewRepeater(DefaultRepeatSchedule)
	t0 := time.Now()

	r.Press(Down, t0)
	r.Press(A, t0.Add(50*time.Millisecond))
	if r.Held() {
		t.Error("pressing a non-direction button should cancel the hold")
	}
}

func TestRepeaterCatchUp(t *testing.T) {
	r := NewRepeater(RepeatSchedule{
		Initial: 100 * time.Millisecond,
		Fast:    50 * time.Millisecond,
		Turbo:   50 * time.Millisecond, TurboAfter: time.Hour,
	})
	t0 := time.Now()

	r.Press(Down, t0)
	// one tick long after several intervals have passed
	_, n := r.Tick(t0.Add(300 * time.Millisecond))
	if n != 5 {
		t.Errorf("catch-up repeats = %d, want 5", n)
	}
}

func TestGPIOPollDebouncedEdges(t *testing.T) {
	levels := map[int]byte{17: '1', 27: '1'} // idle high (active-low)
	r := &GPIOReader{
		pins:      map[Button]int{Up: 17, Down: 27},
		debouncer: NewDebouncer(20 * time.Millisecond),
		readValue: func(pin int) (byte, error) { return levels[pin], nil },
	}

	t0 := time.Now()
	if events := r.Poll(t0); len(events) != 0 {
		t.Errorf("idle poll produced events: %+v", events)
	}

	// press Up: low level must persist for the debounce window
	levels[17] = '0'
	if events := r.Poll(t0.Add(5 * time.Millisecond)); len(events) != 0 {
		t.Errorf("press accepted before debounce window: %+v", events)
	}
	events := r.Poll(t0.Add(30 * time.Millisecond))
	if len(events) != 1 || events[0].Button != Up || !events[0].Pressed {
		t.Fatalf("expected debounced Up press, got %+v", events)
	}

	// steady state: no more events
	if events := r.Poll(t0.Add(60 * time.Millisecond)); len(events) != 0 {
		t.Errorf("steady poll produced events: %+v", events)
	}
}

func TestGPIOPollReadErrorIgnored(t *testing.T) {
	r := &GPIOReader{
		pins:      map[Button]int{A: 22},
		debouncer: NewDebouncer(0),
		readValue: func(pin int) (byte, error) { return 0, os.ErrNotExist },
	}
	if events := r.Poll(time.Now()); len(events) != 0 {
		t.Errorf("read errors should be skipped, got %+v", events)
	}
}
