// Package entropy implements a voice-activity detector that combines three
// per-frame gates: RMS energy against an adaptive noise floor, zero-crossing
// rate, and normalized spectral entropy. Voiced speech is tonal, so its power
// spectrum is concentrated in few bins and its normalized entropy stays low;
// broadband noise spreads power evenly and scores close to 1.
//
// The noise floor is tracked with a rolling window that is fed only by frames
// quiet enough to fail the absolute energy gate, so speech does not inflate
// the floor.
package entropy

import (
	"context"
	"fmt"
	"math"

	"github.com/xaionaro-go/avsync/pkg/dsp/rollingstats"
	"github.com/xaionaro-go/avsync/pkg/dsp/spectrum"
	"github.com/xaionaro-go/avsync/pkg/features"
	"github.com/xaionaro-go/avsync/pkg/vad"
)

const (
	// DefaultEnergyThreshold is the absolute RMS gate below which a frame
	// can never be voiced, regardless of the adaptive floor.
	DefaultEnergyThreshold = 0.01

	// DefaultZCRThreshold rejects frames with a zero-crossing rate above
	// it; voiced speech crosses zero far less often than fricatives or
	// broadband noise.
	DefaultZCRThreshold = 0.35

	// DefaultEntropyThreshold rejects frames whose normalized spectral
	// entropy is at or above it.
	DefaultEntropyThreshold = 0.85
)

// VAD detects voiced frames in mono PCM buffers.
//
// A VAD instance is not safe for concurrent use: it owns one transform and
// one noise-floor window.
type VAD struct {
	EnergyThreshold  float64
	ZCRThreshold     float64
	EntropyThreshold float64

	transform  *spectrum.Transform
	noiseFloor *rollingstats.Window
}

var _ vad.VAD = (*VAD)(nil)

func NewVAD() *VAD {
	transform, err := spectrum.New(features.FrameSize)
	if err != nil {
		// FrameSize is a positive constant, so this cannot happen.
		panic(fmt.Errorf("unable to initialize the transform: %w", err))
	}
	return &VAD{
		EnergyThreshold:  DefaultEnergyThreshold,
		ZCRThreshold:     DefaultZCRThreshold,
		EntropyThreshold: DefaultEntropyThreshold,

		transform:  transform,
		noiseFloor: rollingstats.New(rollingstats.DefaultWindowSize),
	}
}

func (v *VAD) Close() error {
	return nil
}

// DetectVoiceActivity returns one decision per full analysis frame (frame
// size features.FrameSize, hop features.HopSize). Buffers shorter than one
// frame produce an empty mask.
func (v *VAD) DetectVoiceActivity(
	ctx context.Context,
	samples []float32,
	sampleRate float64,
) ([]bool, error) {
	if len(samples) < features.FrameSize {
		return nil, nil
	}
	v.noiseFloor.Reset()

	frameCount := (len(samples)-features.FrameSize)/features.HopSize + 1
	mask := make([]bool, 0, frameCount)
	frame := make([]float64, features.FrameSize)

	for frameIdx := 0; frameIdx < frameCount; frameIdx++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		offset := frameIdx * features.HopSize
		for i := range frame {
			frame[i] = float64(samples[offset+i])
		}

		voiced, err := v.classifyFrame(frame)
		if err != nil {
			return nil, fmt.Errorf("unable to classify frame %d: %w", frameIdx, err)
		}
		mask = append(mask, voiced)
	}
	return mask, nil
}

func (v *VAD) classifyFrame(frame []float64) (bool, error) {
	energy := rmsEnergy(frame)

	// Only quiet frames feed the noise floor, otherwise sustained speech
	// would raise it until the gate swallows the speech itself.
	if energy <= v.EnergyThreshold {
		v.noiseFloor.Update(energy)
		return false, nil
	}

	energyGate := math.Max(
		v.EnergyThreshold,
		v.noiseFloor.Mean()+2*v.noiseFloor.StdDev(),
	)
	if energy <= energyGate {
		return false, nil
	}

	if zeroCrossingRate(frame) >= v.ZCRThreshold {
		return false, nil
	}

	entropy, err := v.spectralEntropy(frame)
	if err != nil {
		return false, err
	}
	return entropy < v.EntropyThreshold, nil
}

// spectralEntropy returns the entropy of the frame's normalized power
// spectrum, divided by the maximum attainable entropy so the result lands in
// [0..1]. An all-zero spectrum counts as maximally flat.
func (v *VAD) spectralEntropy(frame []float64) (float64, error) {
	bins, err := v.transform.Forward(frame)
	if err != nil {
		return 0, fmt.Errorf("unable to compute the spectrum: %w", err)
	}

	power := make([]float64, len(bins))
	var totalPower float64
	for i, bin := range bins {
		p := real(bin)*real(bin) + imag(bin)*imag(bin)
		power[i] = p
		totalPower += p
	}
	if totalPower <= 0 {
		return 1, nil
	}

	var entropy float64
	for _, p := range power {
		if p <= 0 {
			continue
		}
		prob := p / totalPower
		entropy -= prob * math.Log(prob)
	}
	return entropy / math.Log(float64(len(power))), nil
}

func rmsEnergy(frame []float64) float64 {
	var sum float64
	for _, v := range frame {
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(frame)))
}

func zeroCrossingRate(frame []float64) float64 {
	var crossings int
	for i := 1; i < len(frame); i++ {
		if (frame[i-1] >= 0) != (frame[i] >= 0) {
			crossings++
		}
	}
	return float64(crossings) / float64(len(frame)-1)
}
