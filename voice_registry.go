// voice_registry.go - Lock-free set of sounding key codes

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
	"math/bits"
	"sync/atomic"
)

const voiceWords = (MAX_KEY_CODES + 63) / 64

// VoiceRegistry is the set of keys currently held down. The event bridge
// mutates it and the audio callback reads it; neither side ever takes a lock.
// Each key is one bit, so an insert or remove is a single atomic op and a
// reader can never see a half-applied change.
type VoiceRegistry struct {
	words [voiceWords]atomic.Uint64
}

func NewVoiceRegistry() *VoiceRegistry {
	return &VoiceRegistry{}
}

// Activate marks code as sounding and reports whether it was previously silent.
func (vr *VoiceRegistry) Activate(code int) bool {
	if code < 0 || code >= MAX_KEY_CODES {
		return false
	}
	mask := uint64(1) << uint(code%64)
	old := vr.words[code/64].Or(mask)
	return old&mask == 0
}

// Deactivate removes code and reports whether it was sounding.
func (vr *VoiceRegistry) Deactivate(code int) bool {
	if code < 0 || code >= MAX_KEY_CODES {
		return false
	}
	mask := uint64(1) << uint(code%64)
	old := vr.words[code/64].And(^mask)
	return old&mask != 0
}

func (vr *VoiceRegistry) Contains(code int) bool {
	if code < 0 || code >= MAX_KEY_CODES {
		return false
	}
	return vr.words[code/64].Load()&(uint64(1)<<uint(code%64)) != 0
}

func (vr *VoiceRegistry) Len() int {
	n := 0
	for i := range vr.words {
		n += bits.OnesCount64(vr.words[i].Load())
	}
	return n
}

// Snapshot copies the current membership. With more than one word the copy is
// per-word atomic only; a key changing mid-copy shows up on the next snapshot.
func (vr *VoiceRegistry) Snapshot() VoiceSet {
	var vs VoiceSet
	for i := range vr.words {
		vs[i] = vr.words[i].Load()
	}
	return vs
}

// Reset silences every voice.
func (vr *VoiceRegistry) Reset() {
	for i := range vr.words {
		vr.words[i].Store(0)
	}
}

// VoiceSet is an immutable copy of the registry taken by the render path.
type VoiceSet [voiceWords]uint64

func (vs VoiceSet) Len() int {
	n := 0
	for _, w := range vs {
		n += bits.OnesCount64(w)
	}
	return n
}

func (vs VoiceSet) Contains(code int) bool {
	if code < 0 || code >= MAX_KEY_CODES {
		return false
	}
	return vs[code/64]&(uint64(1)<<uint(code%64)) != 0
}

// Next returns the lowest sounding code >= from, or -1.
func (vs VoiceSet) Next(from int) int {
	if from < 0 {
		from = 0
	}
	for from < MAX_KEY_CODES {
		w := vs[from/64] >> uint(from%64)
		if w != 0 {
			code := from + bits.TrailingZeros64(w)
			if code >= MAX_KEY_CODES {
				return -1
			}
			return code
		}
		from = (from/64 + 1) * 64
	}
	return -1
}

// Codes appends the sounding codes in ascending order to dst.
func (vs VoiceSet) Codes(dst []int) []int {
	for code := vs.Next(0); code >= 0; code = vs.Next(code + 1) {
		dst = append(dst, code)
	}
	return dst
}
