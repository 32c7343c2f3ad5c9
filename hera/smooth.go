package hera

import "math"

// SmoothValue is a one-pole exponential smoother for control values.
// It turns stepwise parameter targets into per-sample continuous
// trajectories so parameter changes do not click.
type SmoothValue struct {
	current float32
	target  float32
	coeff   float32

	timeConstant float32
	sampleRate   float32
}

// NewSmoothValue creates a smoother with the given time constant in
// seconds at the given sample rate.
func NewSmoothValue(timeConstant float32, sampleRate float32) *SmoothValue {
	s := &SmoothValue{}
	s.timeConstant = timeConstant
	s.sampleRate = sampleRate
	s.updateCoeff()
	return s
}

// SetTimeConstant sets the smoothing time constant in seconds.
func (s *SmoothValue) SetTimeConstant(tc float32) {
	s.timeConstant = tc
	s.updateCoeff()
}

// SetSampleRate sets the sample rate in Hz.
func (s *SmoothValue) SetSampleRate(rate float32) {
	s.sampleRate = rate
	s.updateCoeff()
}

func (s *SmoothValue) updateCoeff() {
	if s.timeConstant <= 0 || s.sampleRate <= 0 {
		s.coeff = 0
		return
	}
	s.coeff = float32(math.Exp(-1.0 / (float64(s.timeConstant) * float64(s.sampleRate))))
}

// SetTarget sets the value the smoother converges toward.
func (s *SmoothValue) SetTarget(v float32) {
	s.target = v
}

// SetCurrentAndTarget snaps the smoother to v immediately.
func (s *SmoothValue) SetCurrentAndTarget(v float32) {
	s.current = v
	s.target = v
}

// Target returns the current target value.
func (s *SmoothValue) Target() float32 {
	return s.target
}

// Current returns the last smoothed value without advancing.
func (s *SmoothValue) Current() float32 {
	return s.current
}

// Next advances the smoother by one sample and returns the new value.
func (s *SmoothValue) Next() float32 {
	s.current = s.target + (s.current-s.target)*s.coeff
	return s.current
}
