// runtime_status.go - Aggregated view of the running synthesizer

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
	"strings"
)

type runtimeStatusSnapshot struct {
	voices       VoiceSet
	frames       uint64
	applied      uint64
	discarded    uint64
	pending      int
	streamErrors uint64
}

// runtimeStatus gathers counters from the components wired in main. The
// keyboard overlay and telemetry read it; nothing writes through it. Burst
// mode wires only the stream error counter and leaves the rest nil.
type runtimeStatus struct {
	pitch   *PitchTable
	voices  *VoiceRegistry
	bridge  *EventBridge
	engine  *SynthEngine
	streams *streamErrorCounter
}

func newRuntimeStatus(pitch *PitchTable, voices *VoiceRegistry, bridge *EventBridge, engine *SynthEngine, streams *streamErrorCounter) *runtimeStatus {
	return &runtimeStatus{
		pitch:   pitch,
		voices:  voices,
		bridge:  bridge,
		engine:  engine,
		streams: streams,
	}
}

func (s *runtimeStatus) snapshot() runtimeStatusSnapshot {
	var snap runtimeStatusSnapshot
	if s.voices != nil {
		snap.voices = s.voices.Snapshot()
	}
	if s.engine != nil {
		snap.frames = s.engine.FramesRendered()
	}
	if s.bridge != nil {
		snap.applied = s.bridge.Applied()
		snap.discarded = s.bridge.Discarded()
		snap.pending = s.bridge.Pending()
	}
	if s.streams != nil {
		snap.streamErrors = s.streams.Count()
	}
	return snap
}

// chordText lists the sounding keys as "code:Hz" pairs, lowest code first.
func (s *runtimeStatus) chordText(vs VoiceSet) string {
	var sb strings.Builder
	for code := vs.Next(0); code >= 0; code = vs.Next(code + 1) {
		if sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "%d:%.1fHz", code, s.pitch.Frequency(code))
	}
	return sb.String()
}
