package main

// ToneSource is a single sine oscillator with its own clock, used by the
// burst mode where each note gets a dedicated stream.
type ToneSource struct {
	format    StreamFormat
	frequency float64
	step      float64
	clock     int
}

func NewToneSource(frequency float64, format StreamFormat) *ToneSource {
	return &ToneSource{
		format:    format,
		frequency: frequency,
		step:      frequency / float64(format.SampleRate),
	}
}

func (ts *ToneSource) Frequency() float64 { return ts.frequency }

func (ts *ToneSource) NextSample() float32 {
	ts.clock++
	if ts.clock >= ts.format.SampleRate {
		ts.clock = 0
	}
	return lutSin(float64(ts.clock) * ts.step)
}

func (ts *ToneSource) Read(p []byte) (int, error) {
	return encodeFrames(p, ts.format, ts), nil
}
