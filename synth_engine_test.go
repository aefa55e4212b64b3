package main

import (
	"encoding/binary"
	"math"
	"sync"
	"testing"
	"time"
)

func testFormat(f SampleFormat, channels int) StreamFormat {
	return StreamFormat{SampleRate: 44100, Channels: channels, Format: f}
}

func TestSynthEngine_SilenceAllFormats(t *testing.T) {
	formats := []SampleFormat{FormatFloat32LE, FormatSignedInt16LE, FormatUnsignedInt8}
	for _, f := range formats {
		engine := NewSynthEngine(NewPitchTable(), NewVoiceRegistry(), testFormat(f, 2))
		buf := make([]byte, 256*engine.Format().FrameBytes())
		n, err := engine.Read(buf)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", f, err)
		}
		if n != len(buf) {
			t.Fatalf("%s: expected %d bytes, got %d", f, len(buf), n)
		}
		bps := f.BytesPerSample()
		for off := 0; off < n; off += bps {
			switch f {
			case FormatFloat32LE:
				if v := math.Float32frombits(binary.LittleEndian.Uint32(buf[off:])); v != 0 {
					t.Fatalf("f32: sample at %d = %f, want 0", off, v)
				}
			case FormatSignedInt16LE:
				if v := int16(binary.LittleEndian.Uint16(buf[off:])); v != 0 {
					t.Fatalf("s16: sample at %d = %d, want 0", off, v)
				}
			case FormatUnsignedInt8:
				if buf[off] != UINT8_CENTER {
					t.Fatalf("u8: sample at %d = %d, want %d", off, buf[off], UINT8_CENTER)
				}
			}
		}
	}
}

func TestSynthEngine_NormalizedMix(t *testing.T) {
	voices := NewVoiceRegistry()
	for code := 0; code < MAX_KEY_CODES; code += 5 {
		voices.Activate(code)
	}
	engine := NewSynthEngine(NewPitchTable(), voices, testFormat(FormatFloat32LE, 1))
	for i := 0; i < 44100; i++ {
		if v := engine.NextSample(); v > 1 || v < -1 {
			t.Fatalf("frame %d: mix %f outside [-1, 1]", i, v)
		}
	}
}

func TestSynthEngine_TwoVoicesAveraged(t *testing.T) {
	var pitch PitchTable
	pitch[1] = 440
	pitch[2] = 550
	voices := NewVoiceRegistry()
	voices.Activate(1)
	voices.Activate(2)

	format := testFormat(FormatFloat32LE, 1)
	engine := NewSynthEngine(&pitch, voices, format)

	for clock := 1; clock <= 64; clock++ {
		got := engine.NextSample()
		phase := float64(clock) * TWO_PI / float64(format.SampleRate)
		a := math.Sin(phase * 440)
		b := math.Sin(phase * 550)
		want := (a + b) / 2
		if math.Abs(float64(got)-want) > 1e-6 {
			t.Fatalf("frame %d: got %f, want average %f", clock, got, want)
		}
	}
}

func TestSynthEngine_ReleaseSilencesNextFrame(t *testing.T) {
	bridge, voices := newTestBridge(t)
	engine := NewSynthEngine(NewPitchTable(), voices, testFormat(FormatFloat32LE, 1))

	bridge.Submit(KeyEvent{Code: 5, State: KeyPressed})
	bridge.Flush()
	sounding := false
	for i := 0; i < 100; i++ {
		if engine.NextSample() != 0 {
			sounding = true
		}
	}
	if !sounding {
		t.Fatal("expected a held key to produce non-zero samples")
	}

	bridge.Submit(KeyEvent{Code: 5, State: KeyReleased})
	bridge.Flush()
	if v := engine.NextSample(); v != 0 {
		t.Fatalf("expected silence on the frame after release, got %f", v)
	}
}

func TestSynthEngine_ClockPersistsAcrossReads(t *testing.T) {
	var pitch PitchTable
	pitch[0] = 1000
	voices := NewVoiceRegistry()
	voices.Activate(0)

	format := testFormat(FormatFloat32LE, 1)
	split := NewSynthEngine(&pitch, voices, format)
	whole := NewSynthEngine(&pitch, voices, format)

	a := make([]byte, 100*4)
	b := make([]byte, 100*4)
	split.Read(a[:40*4])
	split.Read(a[40*4:])
	whole.Read(b)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("byte %d differs: split reads restarted the clock", i)
		}
	}
	if split.FramesRendered() != 100 {
		t.Fatalf("expected 100 frames rendered, got %d", split.FramesRendered())
	}
}

func TestSynthEngine_ClockWrapsAtSampleRate(t *testing.T) {
	format := StreamFormat{SampleRate: 8, Channels: 1, Format: FormatFloat32LE}
	engine := NewSynthEngine(NewPitchTable(), NewVoiceRegistry(), format)
	for i := 1; i <= 20; i++ {
		engine.NextSample()
		if want := i % 8; engine.clock != want {
			t.Fatalf("after %d frames clock = %d, want %d", i, engine.clock, want)
		}
	}
}

func TestSynthEngine_DuplicatesToEveryChannel(t *testing.T) {
	voices := NewVoiceRegistry()
	voices.Activate(20)
	for _, f := range []SampleFormat{FormatFloat32LE, FormatSignedInt16LE, FormatUnsignedInt8} {
		format := testFormat(f, 3)
		engine := NewSynthEngine(NewPitchTable(), voices, format)
		buf := make([]byte, 64*format.FrameBytes())
		engine.Read(buf)
		bps := f.BytesPerSample()
		for frame := 0; frame < 64; frame++ {
			base := frame * format.FrameBytes()
			for ch := 1; ch < 3; ch++ {
				for i := 0; i < bps; i++ {
					if buf[base+ch*bps+i] != buf[base+i] {
						t.Fatalf("%s frame %d: channel %d differs from channel 0", f, frame, ch)
					}
				}
			}
		}
	}
}

func TestSynthEngine_PartialFrameNotWritten(t *testing.T) {
	engine := NewSynthEngine(NewPitchTable(), NewVoiceRegistry(), testFormat(FormatSignedInt16LE, 2))
	buf := make([]byte, 10)
	n, _ := engine.Read(buf)
	if n != 8 {
		t.Fatalf("expected 2 whole frames (8 bytes), got %d", n)
	}
}

func TestSynthEngine_RenderFloat32(t *testing.T) {
	voices := NewVoiceRegistry()
	voices.Activate(40)
	engine := NewSynthEngine(NewPitchTable(), voices, testFormat(FormatFloat32LE, 2))
	dst := make([]float32, 2*32+1)
	if n := engine.RenderFloat32(dst); n != 32 {
		t.Fatalf("expected 32 frames, got %d", n)
	}
	for i := 0; i < 32; i++ {
		if dst[2*i] != dst[2*i+1] {
			t.Fatalf("frame %d: channels differ", i)
		}
	}
}

// The render side must keep running without data races while the bridge
// hammers the registry from another goroutine.
func TestSynthEngine_ConcurrentRenderAndEvents(t *testing.T) {
	bridge, voices := newTestBridge(t)
	engine := NewSynthEngine(NewPitchTable(), voices, testFormat(FormatSignedInt16LE, 2))

	var wg sync.WaitGroup
	stop := make(chan struct{})

	wg.Go(func() {
		code := 0
		for {
			select {
			case <-stop:
				return
			default:
			}
			bridge.Submit(KeyEvent{Code: code, State: KeyPressed})
			bridge.Submit(KeyEvent{Code: (code + 7) % MAX_KEY_CODES, State: KeyReleased})
			code = (code + 1) % MAX_KEY_CODES
		}
	})

	wg.Go(func() {
		buf := make([]byte, 512*engine.Format().FrameBytes())
		for {
			select {
			case <-stop:
				return
			default:
			}
			engine.Read(buf)
		}
	})

	time.Sleep(50 * time.Millisecond)
	close(stop)
	wg.Wait()
}
