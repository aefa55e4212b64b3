// audio_output.go - Output device abstraction and stream error reporting

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
	"context"
	"errors"
	"io"
	"reflect"
	"sync/atomic"
	"time"
)

// AudioOutput is an opened output device. Streams created from it pull their
// samples from the supplied reader on the backend's own schedule.
type AudioOutput interface {
	Format() StreamFormat
	NewStream(src io.Reader) (AudioStream, error)
	Close() error
}

// AudioStream is one playing (or paused) pull of samples from a reader.
type AudioStream interface {
	Play()
	Pause()
	IsPlaying() bool
	// Err returns the last driver error seen by the stream, if any.
	Err() error
	Close() error
}

var ErrOutputClosed = errors.New("audio output closed")

const STREAM_ERROR_POLL = 100 * time.Millisecond

// streamErrorCounter counts errors delivered to the sink by watchStreamErrors.
type streamErrorCounter struct {
	n atomic.Uint64
}

func (c *streamErrorCounter) Count() uint64 { return c.n.Load() }

func (c *streamErrorCounter) add() {
	if c != nil {
		c.n.Add(1)
	}
}

// sameError reports whether err repeats last. A new error wrapping last is
// not a repeat. Errors of non-comparable types compare by message.
func sameError(err, last error) bool {
	if err == nil || last == nil {
		return err == last
	}
	et, lt := reflect.TypeOf(err), reflect.TypeOf(last)
	if et != lt {
		return false
	}
	if !et.Comparable() {
		return err.Error() == last.Error()
	}
	return err == last
}

// watchStreamErrors polls stream.Err and hands each new error to sink once.
// It never stops or reopens the stream; it returns when ctx is cancelled.
func watchStreamErrors(ctx context.Context, stream AudioStream, interval time.Duration, counter *streamErrorCounter, sink func(error)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var last error
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		err := stream.Err()
		if err == nil || sameError(err, last) {
			continue
		}
		last = err
		counter.add()
		sink(err)
	}
}
