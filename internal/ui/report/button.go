// Package report drives the "generate PDF" action: the button state machine shown while a report is fetched, and saving a fetched report to disk.
package report

import (
	"context"
	"errors"
	"sync"
	"time"
)

// State of a report button
type State int

const (
	Idle State = iota
	Generating
	Succeeded
	Failed
)

// DefaultResetDelay is how long the success or error label stays before the button returns to idle
const DefaultResetDelay = 2 * time.Second

var ErrBusy = errors.New("report generation already in progress")

func (s State) String() string {
	switch s {
	case Generating:
		return "generating"
	case Succeeded:
		return "success"
	case Failed:
		return "error"
	default:
		return "idle"
	}
}

// Label is the button text for the state
func (s State) Label() string {
	switch s {
	case Generating:
		return "⏳ Gerando PDF..."
	case Succeeded:
		return "✅ PDF Gerado!"
	case Failed:
		return "❌ Erro ao gerar PDF"
	default:
		return "📄 GERAR RELATÓRIO PDF"
	}
}

// Disabled reports whether the button accepts clicks in this state
func (s State) Disabled() bool {
	return s != Idle
}

// Button is the state machine idle -> generating -> success|error -> idle.
// The return to idle happens resetDelay after the run finished, whatever its outcome.
type Button struct {
	mu         sync.Mutex
	state      State
	gen        uint64 // bumped on every run start and finish, a reset timer only applies to its own generation
	resetDelay time.Duration
	timer      *time.Timer
	onChange   func(State)
}

// NewButton returns an idle button. onChange, when not nil, is called after every transition outside the button lock.
func NewButton(resetDelay time.Duration, onChange func(State)) *Button {
	if resetDelay <= 0 {
		resetDelay = DefaultResetDelay
	}
	return &Button{resetDelay: resetDelay, onChange: onChange}
}

// Run moves the button to generating, runs generate and then moves to success or error according to its result.
// The error of generate is returned unchanged. A run started while another is generating returns ErrBusy without calling generate.
func (b *Button) Run(ctx context.Context, generate func(ctx context.Context) error) error {
	if err := b.begin(); err != nil {
		return err
	}
	b.notify(Generating)

	err := generate(ctx)
	b.finish(err)
	return err
}

// begin moves the button to generating. Callers notify.
func (b *Button) begin() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == Generating {
		return ErrBusy
	}
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
	b.state = Generating
	b.gen++
	return nil
}

func (b *Button) finish(err error) {
	final := Succeeded
	if err != nil {
		final = Failed
	}

	b.mu.Lock()
	b.state = final
	b.gen++
	gen := b.gen
	b.timer = time.AfterFunc(b.resetDelay, func() { b.reset(gen) })
	b.mu.Unlock()
	b.notify(final)
}

// reset returns the button to idle unless another run started or finished since the timer for gen was armed
func (b *Button) reset(gen uint64) {
	b.mu.Lock()
	if b.gen != gen || b.state == Generating {
		b.mu.Unlock()
		return
	}
	b.state = Idle
	b.timer = nil
	b.mu.Unlock()
	b.notify(Idle)
}

func (b *Button) notify(s State) {
	if b.onChange != nil {
		b.onChange(s)
	}
}

// State returns the current state
func (b *Button) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Label returns the current button text
func (b *Button) Label() string {
	return b.State().Label()
}

// Disabled reports whether the button currently ignores clicks
func (b *Button) Disabled() bool {
	return b.State().Disabled()
}

// ResetDelay returns the delay before the button goes back to idle
func (b *Button) ResetDelay() time.Duration {
	return b.resetDelay
}

// Buttons keeps one button per key (for example session and church id) while it is not idle.
type Buttons struct {
	mu         sync.Mutex
	buttons    map[string]*Button
	resetDelay time.Duration
}

func NewButtons(resetDelay time.Duration) *Buttons {
	return &Buttons{
		buttons:    make(map[string]*Button),
		resetDelay: resetDelay,
	}
}

// Run runs generate on the button for key, creating the button if needed.
// The lookup and the move to generating happen under one lock, so a button
// reset to idle concurrently is never run outside the set.
// Buttons are dropped from the set once they are back to idle.
func (bs *Buttons) Run(ctx context.Context, key string, generate func(ctx context.Context) error) error {
	bs.mu.Lock()
	b, ok := bs.buttons[key]
	if !ok {
		b = bs.newButton(key)
		bs.buttons[key] = b
	}
	err := b.begin()
	bs.mu.Unlock()
	if err != nil {
		return err
	}
	b.notify(Generating)

	err = generate(ctx)
	b.finish(err)
	return err
}

func (bs *Buttons) newButton(key string) *Button {
	var b *Button
	b = NewButton(bs.resetDelay, func(s State) {
		if s != Idle {
			return
		}
		bs.mu.Lock()
		defer bs.mu.Unlock()
		// a run may have started again between the reset and this callback
		if bs.buttons[key] == b && b.State() == Idle {
			delete(bs.buttons, key)
		}
	})
	return b
}

// Len returns the number of buttons that are not idle
func (bs *Buttons) Len() int {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	return len(bs.buttons)
}

// State returns the state of the button for key without creating it. Unknown keys are idle.
func (bs *Buttons) State(key string) State {
	bs.mu.Lock()
	b, ok := bs.buttons[key]
	bs.mu.Unlock()
	if !ok {
		return Idle
	}
	return b.State()
}
