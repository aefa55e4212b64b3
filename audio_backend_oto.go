//go:build !headless

// audio_backend_oto.go - OTO v3 audio output implementation

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
	"io"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
)

func init() {
	compiledFeatures = append(compiledFeatures, "audio:oto")
}

// OtoOutput owns the process-wide oto context. oto allows a single context
// per process, so every stream (the polyphonic mix or a burst note) is a
// player created from it.
type OtoOutput struct {
	ctx    *oto.Context
	format StreamFormat

	mutex   sync.Mutex
	streams map[*OtoStream]struct{}
	closed  bool
}

func otoFormat(f SampleFormat) (oto.Format, error) {
	switch f {
	case FormatFloat32LE:
		return oto.FormatFloat32LE, nil
	case FormatSignedInt16LE:
		return oto.FormatSignedInt16LE, nil
	case FormatUnsignedInt8:
		return oto.FormatUnsignedInt8, nil
	default:
		return 0, fmt.Errorf("oto: unsupported sample format %s", f)
	}
}

func NewAudioOutput(cfg AudioConfig) (AudioOutput, error) {
	format, err := cfg.StreamFormat()
	if err != nil {
		return nil, err
	}
	of, err := otoFormat(format.Format)
	if err != nil {
		return nil, err
	}

	op := &oto.NewContextOptions{
		SampleRate:   format.SampleRate,
		ChannelCount: format.Channels,
		Format:       of,
		BufferSize:   time.Duration(cfg.BufferMS) * time.Millisecond,
	}

	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("oto: open default output device: %w", err)
	}
	<-ready
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("oto: output device not ready: %w", err)
	}

	return &OtoOutput{
		ctx:     ctx,
		format:  format,
		streams: make(map[*OtoStream]struct{}),
	}, nil
}

func (out *OtoOutput) Format() StreamFormat { return out.format }

func (out *OtoOutput) NewStream(src io.Reader) (AudioStream, error) {
	out.mutex.Lock()
	defer out.mutex.Unlock()

	if out.closed {
		return nil, ErrOutputClosed
	}
	s := &OtoStream{
		owner:  out,
		player: out.ctx.NewPlayer(src),
	}
	out.streams[s] = struct{}{}
	return s, nil
}

// Close shuts down every stream still open. The oto context itself lives
// until process exit; suspending it releases the device.
func (out *OtoOutput) Close() error {
	out.mutex.Lock()
	if out.closed {
		out.mutex.Unlock()
		return nil
	}
	out.closed = true
	streams := make([]*OtoStream, 0, len(out.streams))
	for s := range out.streams {
		streams = append(streams, s)
	}
	out.mutex.Unlock()

	for _, s := range streams {
		_ = s.Close()
	}
	return out.ctx.Suspend()
}

func (out *OtoOutput) forget(s *OtoStream) {
	out.mutex.Lock()
	delete(out.streams, s)
	out.mutex.Unlock()
}

type OtoStream struct {
	owner  *OtoOutput
	mutex  sync.Mutex // Only for control operations, never taken by Read
	player *oto.Player
}

func (s *OtoStream) Play() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.player != nil && !s.player.IsPlaying() {
		s.player.Play()
	}
}

func (s *OtoStream) Pause() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.player != nil && s.player.IsPlaying() {
		s.player.Pause()
	}
}

func (s *OtoStream) IsPlaying() bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.player != nil && s.player.IsPlaying()
}

func (s *OtoStream) Err() error {
	s.mutex.Lock()
	player := s.player
	s.mutex.Unlock()
	if player == nil {
		return nil
	}
	if err := player.Err(); err != nil {
		return err
	}
	return s.owner.ctx.Err()
}

func (s *OtoStream) Close() error {
	s.mutex.Lock()
	player := s.player
	s.player = nil
	s.mutex.Unlock()

	if player == nil {
		return nil
	}
	s.owner.forget(s)
	return player.Close()
}
