// Package device models the pin boards the REST surface enumerates.
//
// Only a mock board ships here, real GPIO wiring is a separate concern,
// but the shapes match what a physical board would expose: numbered pins
// that are either fixed power, ground, or gpio with a mode, a value and
// a pullup setting.
package device

import (
	"fmt"
	"sync"
)

type (
	Mode   string
	Pullup string

	pinKind byte

	// Pin is one header position on a board. Mutations are only legal
	// on gpio pins, power and ground are fixed by the hardware.
	Pin struct {
		mu     sync.Mutex
		number int
		kind   pinKind
		volts  float64
		mode   Mode
		value  bool
		pullup Pullup
	}

	// Board is a fixed set of pins, numbered from 1.
	Board struct {
		pins []*Pin
	}
)

const (
	ModeRead  = Mode("read")
	ModeWrite = Mode("write")

	PullupUp       = Pullup("up")
	PullupDown     = Pullup("down")
	PullupFloating = Pullup("floating")
)

const (
	kindPower = pinKind(iota)
	kindGround
	kindGPIO
)

// Power returns a fixed-voltage pin.
func Power(number int, volts float64) *Pin {
	return &Pin{number: number, kind: kindPower, volts: volts}
}

// Ground returns a ground pin.
func Ground(number int) *Pin {
	return &Pin{number: number, kind: kindGround}
}

// GPIO returns a general purpose pin, starting out reading low with a
// floating pullup.
func GPIO(number int) *Pin {
	return &Pin{number: number, kind: kindGPIO, mode: ModeRead, pullup: PullupFloating}
}

func (p *Pin) Number() int { return p.number }

func (p *Pin) IsGPIO() bool { return p.kind == kindGPIO }

// Volts reports the fixed voltage of a power pin. The bool is false for
// ground and gpio pins.
func (p *Pin) Volts() (float64, bool) {
	return p.volts, p.kind == kindPower
}

func (p *Pin) IsGround() bool { return p.kind == kindGround }

func (p *Pin) Mode() Mode {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.mode
}

func (p *Pin) SetMode(m Mode) error {
	if !p.IsGPIO() {
		return fmt.Errorf("pin %v is not gpio", p.number)
	}
	switch m {
	case ModeRead, ModeWrite:
	default:
		return fmt.Errorf("invalid mode %q for pin %v", m, p.number)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.mode = m
	return nil
}

func (p *Pin) Value() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.value
}

func (p *Pin) SetValue(v bool) error {
	if !p.IsGPIO() {
		return fmt.Errorf("pin %v is not gpio", p.number)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.value = v
	return nil
}

func (p *Pin) Pullup() Pullup {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pullup
}

func (p *Pin) SetPullup(u Pullup) error {
	if !p.IsGPIO() {
		return fmt.Errorf("pin %v is not gpio", p.number)
	}
	switch u {
	case PullupUp, PullupDown, PullupFloating:
	default:
		return fmt.Errorf("invalid pullup %q for pin %v", u, p.number)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pullup = u
	return nil
}

func NewBoard(pins ...*Pin) *Board {
	return &Board{pins: pins}
}

// MockBoard is a small fake header: 5V and 3.3V rails, a ground and four
// gpio pins.
func MockBoard() *Board {
	return NewBoard(
		Power(1, 5.0),
		Power(2, 3.3),
		Ground(3),
		GPIO(4),
		GPIO(5),
		GPIO(6),
		GPIO(7),
	)
}

func (b *Board) Pins() []*Pin {
	out := make([]*Pin, len(b.pins))
	copy(out, b.pins)
	return out
}

// Pin returns the pin with the given number, or false when the board has
// no such position.
func (b *Board) Pin(number int) (*Pin, bool) {
	for _, p := range b.pins {
		if p.number == number {
			return p, true
		}
	}
	return nil, false
}
