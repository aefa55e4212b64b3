package main

import (
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestBridge(t *testing.T) (*EventBridge, *VoiceRegistry) {
	t.Helper()
	voices := NewVoiceRegistry()
	bridge := NewEventBridge(voices, newTestLogger())
	bridge.Start()
	t.Cleanup(bridge.Close)
	return bridge, voices
}

func TestEventBridge_AppliesInOrder(t *testing.T) {
	bridge, voices := newTestBridge(t)

	bridge.Submit(KeyEvent{Code: 10, State: KeyPressed})
	bridge.Submit(KeyEvent{Code: 10, State: KeyReleased})
	bridge.Submit(KeyEvent{Code: 11, State: KeyReleased})
	bridge.Submit(KeyEvent{Code: 11, State: KeyPressed})
	bridge.Flush()

	if voices.Contains(10) {
		t.Fatal("key 10 pressed then released must end silent")
	}
	if !voices.Contains(11) {
		t.Fatal("key 11 released then pressed must end sounding")
	}
	if got := bridge.Applied(); got != 4 {
		t.Fatalf("expected 4 applied events, got %d", got)
	}
}

func TestEventBridge_DiscardsOutOfRange(t *testing.T) {
	bridge, voices := newTestBridge(t)

	for _, code := range []int{-1, MAX_KEY_CODES, 200} {
		if bridge.Submit(KeyEvent{Code: code, State: KeyPressed}) {
			t.Fatalf("code %d: expected submit to be rejected", code)
		}
	}
	bridge.Flush()

	if voices.Len() != 0 {
		t.Fatalf("expected no voices, got %d", voices.Len())
	}
	if got := bridge.Discarded(); got != 3 {
		t.Fatalf("expected 3 discarded events, got %d", got)
	}
	if got := bridge.Applied(); got != 0 {
		t.Fatalf("expected 0 applied events, got %d", got)
	}
}

func TestEventBridge_QueuesWhileConsumerStopped(t *testing.T) {
	voices := NewVoiceRegistry()
	bridge := NewEventBridge(voices, newTestLogger())
	defer bridge.Close()

	for i := 0; i < 1000; i++ {
		bridge.Submit(KeyEvent{Code: i % MAX_KEY_CODES, State: KeyPressed})
	}
	if got := bridge.Pending(); got != 1000 {
		t.Fatalf("expected 1000 queued events, got %d", got)
	}
	if voices.Len() != 0 {
		t.Fatal("no event may be applied before the consumer starts")
	}

	bridge.Start()
	bridge.Flush()
	if voices.Len() != MAX_KEY_CODES {
		t.Fatalf("expected all %d keys sounding, got %d", MAX_KEY_CODES, voices.Len())
	}
	if bridge.Pending() != 0 {
		t.Fatalf("expected empty queue, got %d", bridge.Pending())
	}
}

func TestEventBridge_CloseDrains(t *testing.T) {
	voices := NewVoiceRegistry()
	bridge := NewEventBridge(voices, newTestLogger())
	for code := 0; code < 8; code++ {
		bridge.Submit(KeyEvent{Code: code, State: KeyPressed})
	}
	bridge.Start()
	bridge.Close()

	if voices.Len() != 8 {
		t.Fatalf("expected queued events drained on close, got %d voices", voices.Len())
	}
	if bridge.Submit(KeyEvent{Code: 9, State: KeyPressed}) {
		t.Fatal("submit after close must be rejected")
	}
	bridge.Close()
}

func TestEventBridge_FlushWithoutStart(t *testing.T) {
	bridge := NewEventBridge(NewVoiceRegistry(), newTestLogger())
	bridge.Submit(KeyEvent{Code: 1, State: KeyPressed})

	done := make(chan struct{})
	go func() {
		bridge.Flush()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("flush blocked with no consumer running")
	}
	bridge.Close()
}

// Each producer owns one key and alternates press/release; the final state
// of every key must match its last submitted event.
func TestEventBridge_PerKeyOrderingUnderLoad(t *testing.T) {
	bridge, voices := newTestBridge(t)

	const producers = 8
	const rounds = 2000

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		code := p * 3
		endPressed := p%2 == 0
		wg.Go(func() {
			for i := 0; i < rounds; i++ {
				bridge.Submit(KeyEvent{Code: code, State: KeyPressed})
				bridge.Submit(KeyEvent{Code: code, State: KeyReleased})
			}
			if endPressed {
				bridge.Submit(KeyEvent{Code: code, State: KeyPressed})
			}
		})
	}
	wg.Wait()
	bridge.Flush()

	for p := 0; p < producers; p++ {
		code := p * 3
		want := p%2 == 0
		if voices.Contains(code) != want {
			t.Fatalf("key %d: sounding=%v, want %v", code, voices.Contains(code), want)
		}
	}
	want := uint64(producers*rounds*2 + producers/2)
	if got := bridge.Applied(); got != want {
		t.Fatalf("expected %d applied events, got %d", want, got)
	}
}

func TestKeyEvent_String(t *testing.T) {
	ev := KeyEvent{Code: 5, State: KeyPressed}
	if s := ev.String(); s != "key 5 pressed" {
		t.Fatalf("unexpected string %q", s)
	}
	if s := KeyState(9).String(); s != "KeyState(9)" {
		t.Fatalf("unexpected string %q", s)
	}
}
