// Package hotkey turns a global key combination into start/stop recording
// events using gohook.
//
// In "hold" mode recording lasts while the combination is held down. In
// "toggle" mode each press alternates between start and stop.
package hotkey

import (
	"sync"

	hook "github.com/robotn/gohook"
)

// EventType indicates whether recording should start or stop.
type EventType int

const (
	// EventStart asks for a new note to be recorded.
	EventStart EventType = iota
	// EventStop ends the note being recorded.
	EventStop
)

func (e EventType) String() string {
	if e == EventStart {
		return "start"
	}
	return "stop"
}

// Event is emitted on the channel returned by Events.
type Event struct {
	Type EventType
}

// Listener manages a global hotkey and emits start/stop events.
type Listener struct {
	keys []string
	mode string // "hold" or "toggle"
	ch   chan Event
	done chan struct{}
	once sync.Once

	mu     sync.Mutex
	active bool
}

// NewListener creates a Listener for the given key combo and mode.
// keys are lowercase gohook key names (e.g. ["ctrl", "shift", "n"]).
func NewListener(keys []string, mode string) *Listener {
	return &Listener{
		keys: keys,
		mode: mode,
		ch:   make(chan Event, 16),
		done: make(chan struct{}),
	}
}

// Events returns the channel that receives hotkey events. It is closed
// when Run returns.
func (l *Listener) Events() <-chan Event {
	return l.ch
}

// Run hooks the keyboard and blocks until Stop is called.
func (l *Listener) Run() {
	defer close(l.ch)

	hook.Register(hook.KeyDown, l.keys, func(hook.Event) { l.keyDown() })
	if l.mode == "hold" {
		hook.Register(hook.KeyUp, l.keys, func(hook.Event) { l.keyUp() })
	}

	evChan := hook.Start()
	go func() {
		<-l.done
		hook.End()
	}()
	<-hook.Process(evChan)
}

// Stop terminates the listener. It is safe to call multiple times.
func (l *Listener) Stop() {
	l.once.Do(func() {
		close(l.done)
	})
}

// keyDown starts a recording, or in toggle mode stops the current one.
// Key repeat while holding does not emit duplicate starts.
func (l *Listener) keyDown() {
	l.mu.Lock()
	defer l.mu.Unlock()

	switch {
	case !l.active:
		l.active = true
		l.emit(EventStart)
	case l.mode == "toggle":
		l.active = false
		l.emit(EventStop)
	}
}

// keyUp stops a hold-mode recording.
func (l *Listener) keyUp() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.mode == "hold" && l.active {
		l.active = false
		l.emit(EventStop)
	}
}

// emit never blocks the hook thread; events are dropped when the
// channel is full.
func (l *Listener) emit(t EventType) {
	select {
	case l.ch <- Event{Type: t}:
	default:
	}
}
