//go:build headless

package main

import (
	"io"
	"sync"
	"time"
)

func init() {
	compiledFeatures = append(compiledFeatures, "audio:headless")
}

// HeadlessOutput has no device. Each playing stream is drained by a goroutine
// at roughly real-time pace so the render path runs exactly as it would
// behind a sound card.
type HeadlessOutput struct {
	format StreamFormat
	period time.Duration

	mutex   sync.Mutex
	streams map[*HeadlessStream]struct{}
	closed  bool
}

func NewAudioOutput(cfg AudioConfig) (AudioOutput, error) {
	format, err := cfg.StreamFormat()
	if err != nil {
		return nil, err
	}
	period := time.Duration(cfg.BufferMS) * time.Millisecond
	if period <= 0 {
		period = 10 * time.Millisecond
	}
	return &HeadlessOutput{
		format:  format,
		period:  period,
		streams: make(map[*HeadlessStream]struct{}),
	}, nil
}

func (out *HeadlessOutput) Format() StreamFormat { return out.format }

func (out *HeadlessOutput) NewStream(src io.Reader) (AudioStream, error) {
	out.mutex.Lock()
	defer out.mutex.Unlock()
	if out.closed {
		return nil, ErrOutputClosed
	}
	frames := int(int64(out.format.SampleRate) * int64(out.period) / int64(time.Second))
	if frames < 1 {
		frames = 1
	}
	s := &HeadlessStream{
		owner:  out,
		src:    src,
		buf:    make([]byte, frames*out.format.FrameBytes()),
		stopCh: make(chan struct{}),
		done:   make(chan struct{}),
	}
	out.streams[s] = struct{}{}
	go s.pump(out.period)
	return s, nil
}

func (out *HeadlessOutput) Close() error {
	out.mutex.Lock()
	if out.closed {
		out.mutex.Unlock()
		return nil
	}
	out.closed = true
	streams := make([]*HeadlessStream, 0, len(out.streams))
	for s := range out.streams {
		streams = append(streams, s)
	}
	out.mutex.Unlock()

	for _, s := range streams {
		_ = s.Close()
	}
	return nil
}

type HeadlessStream struct {
	owner *HeadlessOutput
	src   io.Reader
	buf   []byte

	mutex   sync.Mutex
	playing bool
	err     error

	stopCh  chan struct{}
	done    chan struct{}
	stopped sync.Once
}

func (s *HeadlessStream) pump(period time.Duration) {
	defer close(s.done)
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
		}
		s.mutex.Lock()
		playing := s.playing
		s.mutex.Unlock()
		if !playing {
			continue
		}
		if _, err := s.src.Read(s.buf); err != nil && err != io.EOF {
			s.mutex.Lock()
			s.err = err
			s.mutex.Unlock()
		}
	}
}

func (s *HeadlessStream) Play() {
	s.mutex.Lock()
	s.playing = true
	s.mutex.Unlock()
}

func (s *HeadlessStream) Pause() {
	s.mutex.Lock()
	s.playing = false
	s.mutex.Unlock()
}

func (s *HeadlessStream) IsPlaying() bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.playing
}

func (s *HeadlessStream) Err() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.err
}

func (s *HeadlessStream) Close() error {
	s.stopped.Do(func() {
		close(s.stopCh)
		<-s.done
		s.mutex.Lock()
		s.playing = false
		s.mutex.Unlock()
		s.owner.mutex.Lock()
		delete(s.owner.streams, s)
		s.owner.mutex.Unlock()
	})
	return nil
}
