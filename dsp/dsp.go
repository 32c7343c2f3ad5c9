package dsp

import "math"

// Biquad implements a second-order IIR filter (no heap allocations in Process)
type Biquad struct {
	// Coefficients
	b0, b1, b2 float32
	a1, a2     float32

	// State (previous samples)
	x1, x2 float32 // input history
	y1, y2 float32 // output history
}

// NewBiquad creates a new biquad filter with the given coefficients
func NewBiquad(b0, b1, b2, a1, a2 float32) *Biquad {
	return &Biquad{
		b0: b0,
		b1: b1,
		b2: b2,
		a1: a1,
		a2: a2,
	}
}

// Process processes one sample through the biquad filter
func (b *Biquad) Process(input float32) float32 {
	// Direct Form I implementation
	output := b.b0*input + b.b1*b.x1 + b.b2*b.x2 - b.a1*b.y1 - b.a2*b.y2

	// Update state
	b.x2 = b.x1
	b.x1 = input
	b.y2 = b.y1
	b.y1 = output

	return output
}

// Reset clears the filter state
func (b *Biquad) Reset() {
	b.x1, b.x2 = 0, 0
	b.y1, b.y2 = 0, 0
}

// SetCoefficients replaces the filter coefficients without touching state,
// so the response can change while a signal keeps running through the filter.
func (b *Biquad) SetCoefficients(b0, b1, b2, a1, a2 float32) {
	b.b0, b.b1, b.b2 = b0, b1, b2
	b.a1, b.a2 = a1, a2
}

// LowpassCoefficients computes RBJ lowpass coefficients normalized by a0.
func LowpassCoefficients(cutoff, sampleRate, q float32) (b0, b1, b2, a1, a2 float32) {
	w0 := 2.0 * math.Pi * float64(cutoff) / float64(sampleRate)
	alpha := math.Sin(w0) / (2.0 * float64(q))
	cosw0 := math.Cos(w0)

	fb0 := (1.0 - cosw0) / 2.0
	fb1 := 1.0 - cosw0
	fb2 := (1.0 - cosw0) / 2.0
	fa0 := 1.0 + alpha
	fa1 := -2.0 * cosw0
	fa2 := 1.0 - alpha

	return float32(fb0 / fa0), float32(fb1 / fa0), float32(fb2 / fa0),
		float32(fa1 / fa0), float32(fa2 / fa0)
}

// HighpassCoefficients computes RBJ highpass coefficients normalized by a0.
func HighpassCoefficients(cutoff, sampleRate, q float32) (b0, b1, b2, a1, a2 float32) {
	w0 := 2.0 * math.Pi * float64(cutoff) / float64(sampleRate)
	alpha := math.Sin(w0) / (2.0 * float64(q))
	cosw0 := math.Cos(w0)

	fb0 := (1.0 + cosw0) / 2.0
	fb1 := -(1.0 + cosw0)
	fb2 := (1.0 + cosw0) / 2.0
	fa0 := 1.0 + alpha
	fa1 := -2.0 * cosw0
	fa2 := 1.0 - alpha

	return float32(fb0 / fa0), float32(fb1 / fa0), float32(fb2 / fa0),
		float32(fa1 / fa0), float32(fa2 / fa0)
}

// NewLowpass creates a lowpass biquad filter
func NewLowpass(cutoff, sampleRate, q float32) *Biquad {
	return NewBiquad(LowpassCoefficients(cutoff, sampleRate, q))
}

// NewHighpass creates a highpass biquad filter
func NewHighpass(cutoff, sampleRate, q float32) *Biquad {
	return NewBiquad(HighpassCoefficients(cutoff, sampleRate, q))
}

// DelayLine implements a circular buffer for delay
type DelayLine struct {
	buffer   []float32
	writePos int
	size     int
}

// NewDelayLine creates a new delay line with the given size
func NewDelayLine(size int) *DelayLine {
	return &DelayLine{
		buffer: make([]float32, size),
		size:   size,
	}
}

// Write writes a sample to the delay line
func (d *DelayLine) Write(sample float32) {
	d.buffer[d.writePos] = sample
	d.writePos = (d.writePos + 1) % d.size
}

// Read reads a sample from the delay line at the given delay (in samples)
func (d *DelayLine) Read(delay int) float32 {
	readPos := (d.writePos - delay + d.size) % d.size
	return d.buffer[readPos]
}

// ReadFractional reads with fractional delay using linear interpolation
func (d *DelayLine) ReadFractional(delay float32) float32 {
	intDelay := int(delay)
	frac := delay - float32(intDelay)

	sample1 := d.Read(intDelay)
	sample2 := d.Read(intDelay + 1)

	// Linear interpolation
	return sample1 + frac*(sample2-sample1)
}

// Reset clears the delay line
func (d *DelayLine) Reset() {
	for i := range d.buffer {
		d.buffer[i] = 0
	}
	d.writePos = 0
}
