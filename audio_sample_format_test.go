package main

import (
	"encoding/binary"
	"math"
	"testing"
)

func TestParseSampleFormat(t *testing.T) {
	cases := map[string]SampleFormat{
		"f32":     FormatFloat32LE,
		"F32LE":   FormatFloat32LE,
		"s16":     FormatSignedInt16LE,
		" int16 ": FormatSignedInt16LE,
		"u8":      FormatUnsignedInt8,
	}
	for in, want := range cases {
		got, err := ParseSampleFormat(in)
		if err != nil {
			t.Fatalf("%q: unexpected error %v", in, err)
		}
		if got != want {
			t.Fatalf("%q: got %s, want %s", in, got, want)
		}
	}
	if _, err := ParseSampleFormat("u16"); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestSampleFormat_EncodeLinear(t *testing.T) {
	buf := make([]byte, 4)

	cases := []struct {
		in  float32
		s16 int16
		u8  uint8
	}{
		{0, 0, 128},
		{1, 32767, 255},
		{-1, -32767, 1},
		{0.5, 16383, 191},
		{2, 32767, 255}, // clamped
		{-3, -32767, 1}, // clamped
	}
	for _, c := range cases {
		FormatSignedInt16LE.encode(buf, c.in)
		if got := int16(binary.LittleEndian.Uint16(buf)); got != c.s16 {
			t.Fatalf("s16(%f) = %d, want %d", c.in, got, c.s16)
		}
		FormatUnsignedInt8.encode(buf, c.in)
		if buf[0] != c.u8 {
			t.Fatalf("u8(%f) = %d, want %d", c.in, buf[0], c.u8)
		}
		FormatFloat32LE.encode(buf, c.in)
		want := float32(math.Max(-1, math.Min(1, float64(c.in))))
		if got := math.Float32frombits(binary.LittleEndian.Uint32(buf)); got != want {
			t.Fatalf("f32(%f) = %f, want %f", c.in, got, want)
		}
	}
}

func TestStreamFormat_FrameBytes(t *testing.T) {
	cases := []struct {
		sf   StreamFormat
		want int
	}{
		{StreamFormat{SampleRate: 48000, Channels: 2, Format: FormatFloat32LE}, 8},
		{StreamFormat{SampleRate: 48000, Channels: 2, Format: FormatSignedInt16LE}, 4},
		{StreamFormat{SampleRate: 48000, Channels: 1, Format: FormatUnsignedInt8}, 1},
	}
	for _, c := range cases {
		if got := c.sf.FrameBytes(); got != c.want {
			t.Fatalf("%s: frame bytes %d, want %d", c.sf, got, c.want)
		}
	}
}
