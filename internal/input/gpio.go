package input

import (
	"fmt"
	"os"
	"strings"
	"time"
)

const gpioRoot = "/sys/class/gpio"

// GPIOReader polls sysfs GPIO pins wired active-low (pressed = pin pulled
// to ground) and produces debounced events. Polling happens on the UI
// tick; there is no background goroutine.
type GPIOReader struct {
	pins      map[Button]int
	debouncer *Debouncer

	// readValue is swapped out in tests.
	readValue func(pin int) (byte, error)
}

// NewGPIOReader maps config pin names to buttons and exports the pins.
func NewGPIOReader(pinsByName map[string]int, debounce time.Duration) (*GPIOReader, error) {
	pins := make(map[Button]int, len(pinsByName))
	for name, pin := range pinsByName {
		b, err := ParseButton(name)
		if err != nil {
			return nil, fmt.Errorf("input.gpio_pins: %w", err)
		}
		pins[b] = pin
	}

	r := &GPIOReader{
		pins:      pins,
		debouncer: NewDebouncer(debounce),
		readValue: readSysfsValue,
	}

	for _, pin := range pins {
		if err := exportPin(pin); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Poll samples every pin once and returns the debounced edges.
func (r *GPIOReader) Poll(now time.Time) []Event {
	var events []Event
	for b, pin := range r.pins {
		raw, err := r.readValue(pin)
		if err != nil {
			// transient sysfs read failures are ignored; the debouncer
			// keeps the last accepted state
			continue
		}
		pressed := raw == '0' // active-low
		if ev, ok := r.debouncer.Sample(b, pressed, now); ok {
			events = append(events, ev)
		}
	}
	return events
}

func readSysfsValue(pin int) (byte, error) {
	data, err := os.ReadFile(fmt.Sprintf("%s/gpio%d/value", gpioRoot, pin))
	if err != nil {
		return 0, err
	}
	if len(data) == 0 {
		return 0, fmt.Errorf("empty value for gpio%d", pin)
	}
	return data[0], nil
}

// exportPin makes a pin visible under sysfs and sets it as input.
// Already-exported pins are fine.
func exportPin(pin int) error {
	pinDir := fmt.Sprintf("%s/gpio%d", gpioRoot, pin)
	if _, err := os.Stat(pinDir); os.IsNotExist(err) {
		err := os.WriteFile(gpioRoot+"/export", []byte(fmt.Sprintf("%d", pin)), 0o644)
		if err != nil && !strings.Contains(err.Error(), "device or resource busy") {
			return fmt.Errorf("exporting gpio%d: %w", pin, err)
		}
	}
	if err := os.WriteFile(pinDir+"/direction", []byte("in"), 0o644); err != nil {
		return fmt.Errorf("setting gpio%d direction: %w", pin, err)
	}
	return nil
}
