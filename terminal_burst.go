// terminal_burst.go - Single-voice burst mode driven by raw terminal bytes

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
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"golang.org/x/term"
)

const (
	BURST_KEY_INTERRUPT = 0x03 // Ctrl-C, raw mode does not raise SIGINT
	BURST_KEY_EOT       = 0x04 // Ctrl-D
)

// BurstPlayer plays one short note per input byte. Notes never overlap: each
// gets its own stream which is paused and closed before the next byte is
// taken.
type BurstPlayer struct {
	out   AudioOutput
	hold  time.Duration
	scale float64
	log   *slog.Logger

	// streamErrors counts driver errors seen on note streams, shared with
	// telemetry. May be nil.
	streamErrors *streamErrorCounter

	// onNote, when set, observes each note before it starts.
	onNote func(b byte, frequency float64)
}

func NewBurstPlayer(out AudioOutput, cfg BurstConfig, streamErrors *streamErrorCounter, log *slog.Logger) *BurstPlayer {
	if log == nil {
		log = slog.Default()
	}
	return &BurstPlayer{
		out:   out,
		hold:  time.Duration(cfg.HoldMS) * time.Millisecond,
		scale: cfg.FrequencyScale,
		log:   log.With(slog.String("component", "burst")),

		streamErrors: streamErrors,
	}
}

// NoteFrequency is the pitch a trigger byte plays at.
func (bp *BurstPlayer) NoteFrequency(b byte) float64 {
	return float64(b) * bp.scale
}

// Run consumes r one byte at a time until EOF, Ctrl-C, Ctrl-D or ctx is
// cancelled. A byte is only read once the previous note has been paused and
// closed, so input typed during a note waits in the terminal.
func (bp *BurstPlayer) Run(ctx context.Context, r io.Reader) error {
	type readResult struct {
		b   byte
		err error
	}
	wantCh := make(chan struct{})
	bytesCh := make(chan readResult)
	quitCh := make(chan struct{})
	defer close(quitCh)

	// One Read per request. The goroutine only outlives Run while a Read
	// it was asked for is still blocked.
	go func() {
		buf := make([]byte, 1)
		for {
			select {
			case <-wantCh:
			case <-quitCh:
				return
			}
			var res readResult
			for {
				n, err := r.Read(buf)
				if n > 0 {
					res = readResult{b: buf[0]}
					break
				}
				if err != nil {
					res = readResult{err: err}
					break
				}
			}
			select {
			case bytesCh <- res:
			case <-quitCh:
				return
			}
		}
	}()

	for {
		select {
		case wantCh <- struct{}{}:
		case <-ctx.Done():
			return nil
		}
		var res readResult
		select {
		case <-ctx.Done():
			return nil
		case res = <-bytesCh:
		}
		if res.err != nil {
			if errors.Is(res.err, io.EOF) {
				return nil
			}
			return fmt.Errorf("burst: read input: %w", res.err)
		}
		if res.b == BURST_KEY_INTERRUPT || res.b == BURST_KEY_EOT {
			return nil
		}
		if err := bp.playNote(ctx, res.b); err != nil {
			return err
		}
	}
}

func (bp *BurstPlayer) playNote(ctx context.Context, b byte) error {
	freq := bp.NoteFrequency(b)
	if bp.onNote != nil {
		bp.onNote(b, freq)
	}
	bp.log.Debug("note", slog.Int("byte", int(b)), slog.Float64("hz", freq))

	stream, err := bp.out.NewStream(NewToneSource(freq, bp.out.Format()))
	if err != nil {
		return fmt.Errorf("burst: open stream: %w", err)
	}
	stream.Play()

	timer := time.NewTimer(bp.hold)
	select {
	case <-timer.C:
	case <-ctx.Done():
		timer.Stop()
	}

	stream.Pause()
	if err := stream.Err(); err != nil {
		bp.streamErrors.add()
		bp.log.Error("streaming error", slog.Int("byte", int(b)), slog.String("error", err.Error()))
	}
	return stream.Close()
}

// RunTerminalBurst puts stdin into raw mode for the duration of the burst
// loop and restores it afterwards.
func RunTerminalBurst(ctx context.Context, bp *BurstPlayer) error {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return bp.Run(ctx, os.Stdin)
	}

	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("terminal_burst: failed to set raw mode: %w", err)
	}
	defer func() {
		_ = term.Restore(fd, oldState)
	}()

	fmt.Fprint(os.Stderr, "burst mode: each key plays a note, Ctrl-C or Ctrl-D to quit\r\n")
	return bp.Run(ctx, os.Stdin)
}
