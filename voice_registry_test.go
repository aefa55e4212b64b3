package main

import (
	"sync"
	"testing"
	"time"
)

func TestVoiceRegistry_ActivateIdempotent(t *testing.T) {
	vr := NewVoiceRegistry()
	if !vr.Activate(7) {
		t.Fatal("expected first activate to change membership")
	}
	if vr.Activate(7) {
		t.Fatal("expected second activate to be a no-op")
	}
	if n := vr.Len(); n != 1 {
		t.Fatalf("expected 1 voice, got %d", n)
	}
	if !vr.Contains(7) {
		t.Fatal("expected key 7 to be sounding")
	}
}

func TestVoiceRegistry_DeactivateIdempotent(t *testing.T) {
	vr := NewVoiceRegistry()
	if vr.Deactivate(3) {
		t.Fatal("expected deactivate of silent key to be a no-op")
	}
	vr.Activate(3)
	vr.Activate(4)
	if !vr.Deactivate(3) {
		t.Fatal("expected deactivate to remove key 3")
	}
	if vr.Deactivate(3) {
		t.Fatal("expected second deactivate to be a no-op")
	}
	if n := vr.Len(); n != 1 {
		t.Fatalf("expected 1 voice, got %d", n)
	}
	if vr.Contains(3) || !vr.Contains(4) {
		t.Fatal("unexpected membership after deactivate")
	}
}

func TestVoiceRegistry_OutOfRange(t *testing.T) {
	vr := NewVoiceRegistry()
	for _, code := range []int{-1, MAX_KEY_CODES, MAX_KEY_CODES + 5} {
		if vr.Activate(code) {
			t.Fatalf("code %d: activate accepted", code)
		}
		if vr.Contains(code) {
			t.Fatalf("code %d: reported as sounding", code)
		}
	}
	if vr.Len() != 0 {
		t.Fatalf("expected empty registry, got %d", vr.Len())
	}
}

func TestVoiceRegistry_Snapshot(t *testing.T) {
	vr := NewVoiceRegistry()
	for _, code := range []int{63, 0, 31, 32} {
		vr.Activate(code)
	}
	snap := vr.Snapshot()
	vr.Deactivate(31)

	got := snap.Codes(nil)
	want := []int{0, 31, 32, 63}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
	if snap.Len() != 4 {
		t.Fatalf("snapshot changed after registry mutation: len %d", snap.Len())
	}
	if !snap.Contains(31) || vr.Contains(31) {
		t.Fatal("snapshot should keep key 31, registry should not")
	}
	if next := snap.Next(64); next != -1 {
		t.Fatalf("expected -1 past the end, got %d", next)
	}
}

func TestVoiceRegistry_Reset(t *testing.T) {
	vr := NewVoiceRegistry()
	vr.Activate(1)
	vr.Activate(60)
	vr.Reset()
	if vr.Len() != 0 {
		t.Fatalf("expected empty registry after reset, got %d", vr.Len())
	}
}

func TestVoiceRegistry_ConcurrentMutateAndRead(t *testing.T) {
	vr := NewVoiceRegistry()

	var wg sync.WaitGroup
	stop := make(chan struct{})

	// Writer: toggles every key
	wg.Go(func() {
		code := 0
		for {
			select {
			case <-stop:
				return
			default:
			}
			vr.Activate(code)
			vr.Deactivate((code + 17) % MAX_KEY_CODES)
			code = (code + 1) % MAX_KEY_CODES
		}
	})

	// Reader: snapshots must always be self-consistent
	wg.Go(func() {
		for {
			select {
			case <-stop:
				return
			default:
			}
			snap := vr.Snapshot()
			if n := len(snap.Codes(make([]int, 0, MAX_KEY_CODES))); n != snap.Len() {
				t.Errorf("snapshot len %d but iterated %d codes", snap.Len(), n)
				return
			}
		}
	})

	time.Sleep(50 * time.Millisecond)
	close(stop)
	wg.Wait()
}
