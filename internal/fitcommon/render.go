package fitcommon

import (
	"errors"
	"math"

	"github.com/charlesvestal/move-anything-hera/hera"
)

// NoteRender describes one offline render of a single note: how long
// the key is held, how long the tail may ring, and when the tail is
// quiet enough to stop early.
type NoteRender struct {
	Note            int
	Velocity        float32 // normalized, 0..1
	ReleaseAfter    float64 // seconds the key stays down
	MinDuration     float64 // seconds rendered before auto-stop may fire
	MaxDuration     float64 // hard cap in seconds
	DecayDBFS       float64 // auto-stop threshold, e.g. -90
	DecayHoldBlocks int     // consecutive quiet blocks required to stop
	BlockSize       int
}

// RenderNote plays one note through the engine's block loop and
// returns interleaved stereo float32. Rendering stops once a block's
// RMS stays below the decay threshold for DecayHoldBlocks blocks in a
// row, or at MaxDuration.
func RenderNote(e *hera.Engine, r NoteRender) ([]float32, error) {
	if e == nil {
		return nil, errors.New("nil engine")
	}

	blockSize := r.BlockSize
	if blockSize < 16 {
		blockSize = 16
	}
	if blockSize > hera.MaxBlockSize {
		blockSize = hera.MaxBlockSize
	}
	holdBlocks := r.DecayHoldBlocks
	if holdBlocks < 1 {
		holdBlocks = 1
	}
	minDuration := math.Max(r.MinDuration, 0)
	maxDuration := math.Max(r.MaxDuration, minDuration)

	minFrames := int(float64(hera.SampleRate) * minDuration)
	maxFrames := int(float64(hera.SampleRate) * maxDuration)
	if maxFrames < 1 {
		return nil, errors.New("max duration too small")
	}
	releaseAt := int(float64(hera.SampleRate) * math.Max(r.ReleaseAfter, 0))
	threshold := math.Pow(10.0, r.DecayDBFS/20.0)

	var outL, outR [hera.MaxBlockSize]float32
	stereo := make([]float32, 0, maxFrames*2)
	e.NoteOn(r.Note, r.Velocity)

	released := false
	below := 0
	for rendered := 0; rendered < maxFrames; {
		n := blockSize
		if rendered+n > maxFrames {
			n = maxFrames - rendered
		}
		if !released && rendered >= releaseAt {
			e.NoteOff(r.Note)
			released = true
		}
		e.RenderFloatBlock(outL[:n], outR[:n], n)
		for i := 0; i < n; i++ {
			stereo = append(stereo, outL[i], outR[i])
		}
		rendered += n

		if rendered >= minFrames {
			if StereoRMS(stereo[len(stereo)-2*n:]) < threshold {
				below++
				if below >= holdBlocks {
					break
				}
			} else {
				below = 0
			}
		}
	}
	return stereo, nil
}
