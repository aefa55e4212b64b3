// event_bridge.go - Ordered hand-off from key input to the voice registry

/*
 ██▓ ███▄    █ ▄▄▄█████▓ █    ██  ██▓▄▄▄█████▓ ██▓ ▒█████   ███▄    █    ▓█████  ███▄    █   ▄████  ██▓ ███▄    █ ▓█████
▓██▒ ██ ▀█   █ ▓  ██▒ ▓▒ ██  ▓██▒▓██▒▓  ██▒ ▓▒▓██▒▒██▒  ██▒ ██ ▀█   █    ▓█   ▀  ██ ▀█   █  ██▒ ▀█▒▓██▒ ██ ▀█   █ ▓█   ▀
▒██▒▓██  ▀█ ██▒▒ ▓██░ ▒░▓██  ▒██░▒██▒▒ ▓██░ ▒░▒██▒▒██░  ██▒▓██  ▀█ ██▒   ▒███   ▓██  ▀█ ██▒▒██░▄▄▄░▒██▒▓██  ▀█ ██▒▒███
░██░▓██▒  ▐▌██▒░ ▓██▓ ░ ▓▓█  ░██░░██░░ ▓██▓ ░ ░██░▒██   ██░▓██▒  ▐▌██▒   ▒▓█  ▄ ▓██▒  ▐▌██▒░▓█  ██▓░██░▓██▒  ▐▌██▒▒▓█  ▄
░██░▒██░   ▓██░  ▒██▒ ░ ▒▒█████▓ ░██░  ▒██▒ ░ ░██░░ ████▓▒░▒██░   ▓██░   ░▒████▒▒██░   ▓██░░▒▓███▀▒░██░▒██░   ▓██░░▒████▒
░▓  ░ ▒░   ▒ ▒   ▒ ░░   ░▒▓▒ ▒ ▒ ░▓    ▒ ░░   ░▓  ░ ▒░▒░▒░ ░ ▒░   ▒ ▒    ░░ ▒░ ░░ ▒░   ▒ ▒  ░▒   ▒ ░▓  ░ ▒░   ▒ ▒ ░░ ▒░ ░
 ▒ ░░ ░░   ░ ▒░    ░    ░░▒░ ░ ░  ▒ ░    ░     ▒ ░  ░ ▒ ▒░ ░ ░░   ░ ▒░    ░ ░  ░░ ░░   ░ ▒░  ░   ░  ▒ ░░ ░░   ░ ▒░ ░ ░  ░
 ▒ ░   ░   ░ ░   ░       ░░░ ░ ░  ▒ ░  ░       ▒ ░░ ░ ░ ▒     ░   ░ ░       ░      ░   ░ ░ ░ ░   ░  ▒ ░   ░   ░ ░    ░
 ░           ░             ░      ░            ░      ░ ░           ░       ░  ░         ░       ░  ░           ░    ░  ░

(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/IntuitionEngine
License: GPLv3 or later
*/

package main

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
)

type KeyState int

const (
	KeyPressed KeyState = iota
	KeyReleased
)

func (s KeyState) String() string {
	switch s {
	case KeyPressed:
		return "pressed"
	case KeyReleased:
		return "released"
	default:
		return fmt.Sprintf("KeyState(%d)", int(s))
	}
}

// KeyEvent is one key transition from an input source.
type KeyEvent struct {
	Code  int
	State KeyState
}

func (ev KeyEvent) String() string {
	return fmt.Sprintf("key %d %s", ev.Code, ev.State)
}

// EventBridge queues key events and applies them to a VoiceRegistry from a
// single consumer goroutine, strictly in submission order. The queue has no
// bound: a stalled consumer delays events but never drops or reorders them.
type EventBridge struct {
	voices *VoiceRegistry
	log    *slog.Logger

	mu      sync.Mutex
	cond    *sync.Cond // signalled when applied advances
	queue   []KeyEvent
	spare   []KeyEvent
	closed  bool
	started bool
	seq     uint64 // events accepted
	done    uint64 // events applied

	notify   chan struct{}
	finished chan struct{}
	stopOnce sync.Once

	applied   atomic.Uint64
	discarded atomic.Uint64
}

func NewEventBridge(voices *VoiceRegistry, log *slog.Logger) *EventBridge {
	if log == nil {
		log = slog.Default()
	}
	b := &EventBridge{
		voices:   voices,
		log:      log.With(slog.String("component", "bridge")),
		notify:   make(chan struct{}, 1),
		finished: make(chan struct{}),
	}
	b.cond = sync.NewCond(&b.mu)
	return b
}

// Start launches the consumer goroutine. Calling it twice is a no-op.
func (b *EventBridge) Start() {
	b.mu.Lock()
	if b.started {
		b.mu.Unlock()
		return
	}
	b.started = true
	b.mu.Unlock()

	go b.consume()
}

// Submit queues ev. Events for codes outside [0, MAX_KEY_CODES) and events
// submitted after Close are discarded and Submit returns false.
func (b *EventBridge) Submit(ev KeyEvent) bool {
	if ev.Code < 0 || ev.Code >= MAX_KEY_CODES {
		b.discarded.Add(1)
		return false
	}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		b.discarded.Add(1)
		return false
	}
	b.queue = append(b.queue, ev)
	b.seq++
	b.mu.Unlock()

	select {
	case b.notify <- struct{}{}:
	default:
	}
	return true
}

// Flush blocks until every event accepted before the call has been applied.
// It returns immediately when the consumer was never started.
func (b *EventBridge) Flush() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.started {
		return
	}
	target := b.seq
	for b.done < target {
		b.cond.Wait()
	}
}

// Close stops accepting events, lets the consumer drain what is already
// queued and waits for it to exit.
func (b *EventBridge) Close() {
	b.stopOnce.Do(func() {
		b.mu.Lock()
		b.closed = true
		started := b.started
		b.mu.Unlock()

		select {
		case b.notify <- struct{}{}:
		default:
		}
		if started {
			<-b.finished
		}
		b.log.Debug("event bridge closed", slog.Uint64("applied", b.applied.Load()))
	})
}

// Pending reports how many events are waiting for the consumer.
func (b *EventBridge) Pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.queue)
}

func (b *EventBridge) Applied() uint64   { return b.applied.Load() }
func (b *EventBridge) Discarded() uint64 { return b.discarded.Load() }

func (b *EventBridge) consume() {
	defer close(b.finished)

	for {
		b.mu.Lock()
		for len(b.queue) == 0 && !b.closed {
			b.mu.Unlock()
			<-b.notify
			b.mu.Lock()
		}
		if len(b.queue) == 0 && b.closed {
			b.mu.Unlock()
			return
		}
		batch := b.queue
		b.queue = b.spare[:0]
		b.mu.Unlock()

		for _, ev := range batch {
			b.apply(ev)
		}

		b.mu.Lock()
		b.done += uint64(len(batch))
		b.spare = batch[:0]
		b.cond.Broadcast()
		b.mu.Unlock()
	}
}

func (b *EventBridge) apply(ev KeyEvent) {
	switch ev.State {
	case KeyPressed:
		b.voices.Activate(ev.Code)
	case KeyReleased:
		b.voices.Deactivate(ev.Code)
	default:
		b.log.Warn("unknown key state", slog.Int("code", ev.Code), slog.Int("state", int(ev.State)))
		return
	}
	b.applied.Add(1)
}
