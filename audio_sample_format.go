// audio_sample_format.go - Output sample representations and frame encoding

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
	"encoding/binary"
	"fmt"
	"math"
	"strings"
)

// SampleFormat is the native sample representation of an output stream.
type SampleFormat int

const (
	FormatFloat32LE SampleFormat = iota
	FormatSignedInt16LE
	FormatUnsignedInt8
)

const (
	INT16_SCALE  = 32767.0
	UINT8_SCALE  = 127.0
	UINT8_CENTER = 128
)

func ParseSampleFormat(s string) (SampleFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "f32", "float32", "f32le":
		return FormatFloat32LE, nil
	case "s16", "i16", "int16", "s16le":
		return FormatSignedInt16LE, nil
	case "u8", "uint8":
		return FormatUnsignedInt8, nil
	default:
		return 0, fmt.Errorf("unsupported sample format %q", s)
	}
}

func (f SampleFormat) String() string {
	switch f {
	case FormatFloat32LE:
		return "f32"
	case FormatSignedInt16LE:
		return "s16"
	case FormatUnsignedInt8:
		return "u8"
	default:
		return fmt.Sprintf("SampleFormat(%d)", int(f))
	}
}

func (f SampleFormat) BytesPerSample() int {
	switch f {
	case FormatFloat32LE:
		return 4
	case FormatSignedInt16LE:
		return 2
	default:
		return 1
	}
}

// encode writes v, clamped to [-1, 1], into dst using the linear mapping of
// the format and returns the bytes written.
func (f SampleFormat) encode(dst []byte, v float32) int {
	if v > 1 {
		v = 1
	} else if v < -1 {
		v = -1
	}
	switch f {
	case FormatFloat32LE:
		binary.LittleEndian.PutUint32(dst, math.Float32bits(v))
		return 4
	case FormatSignedInt16LE:
		binary.LittleEndian.PutUint16(dst, uint16(int16(v*INT16_SCALE)))
		return 2
	default:
		dst[0] = uint8(UINT8_CENTER + int(v*UINT8_SCALE))
		return 1
	}
}

// StreamFormat describes one output stream.
type StreamFormat struct {
	SampleRate int
	Channels   int
	Format     SampleFormat
}

func (sf StreamFormat) FrameBytes() int {
	return sf.Channels * sf.Format.BytesPerSample()
}

func (sf StreamFormat) String() string {
	return fmt.Sprintf("%d Hz, %d ch, %s", sf.SampleRate, sf.Channels, sf.Format)
}

// sampleSource produces one mono sample per call.
type sampleSource interface {
	NextSample() float32
}

// encodeFrames fills whole frames of p from src, duplicating each sample to
// every channel. A trailing partial frame is left untouched and not counted.
func encodeFrames(p []byte, sf StreamFormat, src sampleSource) int {
	frameBytes := sf.FrameBytes()
	if frameBytes == 0 {
		return 0
	}
	frames := len(p) / frameBytes
	bps := sf.Format.BytesPerSample()
	off := 0
	for i := 0; i < frames; i++ {
		sf.Format.encode(p[off:], src.NextSample())
		for ch := 1; ch < sf.Channels; ch++ {
			copy(p[off+ch*bps:off+(ch+1)*bps], p[off:off+bps])
		}
		off += frameBytes
	}
	return off
}
