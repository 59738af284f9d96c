// Package features turns a mono PCM buffer into the per-frame feature series
// the alignment algorithms consume: a cepstral-like coefficient series, the
// spectral centroid, the RMS energy envelope, the zero-crossing rate and a
// set of detected onsets.
//
// The "cepstral" series is an energy-weighted in-frame centroid, a scalar
// per-frame approximation of mel-cepstral coefficients, not a true MFCC
// pipeline. It exists to give the time-warping aligner a cheap scalar cost
// function.
package features

import (
	"math"
)

const (
	// FrameSize and HopSize are the analysis constants every per-frame
	// series is produced with.
	FrameSize = 2048
	HopSize   = 512

	// DefaultSampleRate is the analysis rate the external decoder is
	// expected to deliver.
	DefaultSampleRate = 44100

	onsetWindowSeconds   = 0.02
	onsetEnergyThreshold = 0.1
)

// AudioFeatures bundles the feature series derived from one mono PCM buffer.
//
// Energy and ZCR always hold exactly FrameCount values. Cepstral and
// SpectralCentroid are derived from full FrameSize windows and may be
// slightly shorter at the buffer edges; consumers must index defensively
// instead of assuming equal lengths across all four series.
type AudioFeatures struct {
	Cepstral         []float64
	SpectralCentroid []float64
	Energy           []float64
	ZCR              []float64
	Onsets           []int // ascending sample offsets of detected transients
	SampleRate       float64
	FrameCount       int
}

// HopSeconds returns the duration of one analysis hop.
func (f *AudioFeatures) HopSeconds() float64 {
	if f.SampleRate <= 0 {
		return 0
	}
	return float64(HopSize) / f.SampleRate
}

// Extractor computes AudioFeatures bundles. The zero field values are
// replaced by the analysis constants.
type Extractor struct {
	FrameSize int
	HopSize   int
}

func NewExtractor() *Extractor {
	return &Extractor{
		FrameSize: FrameSize,
		HopSize:   HopSize,
	}
}

// Extract computes the feature bundle for one mono buffer. An empty buffer
// yields a bundle with FrameCount == 0, which consumers must treat as "no
// usable signal" rather than an error.
func (e *Extractor) Extract(samples []float32, sampleRate float64) *AudioFeatures {
	frameSize := e.FrameSize
	if frameSize <= 0 {
		frameSize = FrameSize
	}
	hopSize := e.HopSize
	if hopSize <= 0 {
		hopSize = HopSize
	}

	features := &AudioFeatures{
		SampleRate: sampleRate,
		FrameCount: len(samples) / hopSize,
	}
	if features.FrameCount == 0 {
		return features
	}

	features.Cepstral = extractCepstral(samples, frameSize, hopSize)
	features.SpectralCentroid = extractSpectralCentroid(samples, sampleRate, frameSize, hopSize)

	features.Energy = make([]float64, 0, features.FrameCount)
	features.ZCR = make([]float64, 0, features.FrameCount)
	for frame := 0; frame < features.FrameCount; frame++ {
		start := frame * hopSize
		end := start + hopSize
		if end > len(samples) {
			end = len(samples)
		}

		var energy float64
		for _, v := range samples[start:end] {
			energy += float64(v) * float64(v)
		}
		features.Energy = append(features.Energy, math.Sqrt(energy/float64(end-start)))

		crossings := 0
		for i := start + 1; i < end; i++ {
			if (samples[i] >= 0) != (samples[i-1] >= 0) {
				crossings++
			}
		}
		features.ZCR = append(features.ZCR, float64(crossings)/float64(end-start))
	}

	features.Onsets = detectOnsets(samples, sampleRate)
	return features
}

// extractCepstral computes the magnitude-weighted in-frame sample-index
// centroid of each full analysis frame.
func extractCepstral(samples []float32, frameSize, hopSize int) []float64 {
	if len(samples) < frameSize {
		return nil
	}

	numFrames := (len(samples)-frameSize)/hopSize + 1
	cepstral := make([]float64, 0, numFrames)
	for frame := 0; frame < numFrames; frame++ {
		start := frame * hopSize

		var centroid, totalMagnitude float64
		for i, v := range samples[start : start+frameSize] {
			magnitude := math.Abs(float64(v))
			centroid += float64(i) * magnitude
			totalMagnitude += magnitude
		}
		if totalMagnitude > 0 {
			centroid /= totalMagnitude
		}
		cepstral = append(cepstral, centroid)
	}
	return cepstral
}

// extractSpectralCentroid computes the energy-weighted sample-index centroid
// of each full analysis frame, scaled to Hz.
func extractSpectralCentroid(samples []float32, sampleRate float64, frameSize, hopSize int) []float64 {
	if len(samples) < frameSize {
		return nil
	}

	numFrames := (len(samples)-frameSize)/hopSize + 1
	centroids := make([]float64, 0, numFrames)
	for frame := 0; frame < numFrames; frame++ {
		start := frame * hopSize

		var centroid, totalEnergy float64
		for i, v := range samples[start : start+frameSize] {
			energy := float64(v) * float64(v)
			centroid += float64(i) * energy
			totalEnergy += energy
		}
		if totalEnergy > 0 {
			centroid = (centroid / totalEnergy) * (sampleRate / 2) / float64(frameSize)
		}
		centroids = append(centroids, centroid)
	}
	return centroids
}

// detectOnsets marks local maxima of a coarse energy envelope that exceed a
// fixed absolute threshold.
func detectOnsets(samples []float32, sampleRate float64) []int {
	windowSize := int(sampleRate * onsetWindowSeconds)
	if windowSize < 1 {
		windowSize = 1
	}

	var envelope []float64
	for start := 0; start < len(samples); start += windowSize {
		end := start + windowSize
		if end > len(samples) {
			end = len(samples)
		}
		var energy float64
		for _, v := range samples[start:end] {
			energy += float64(v) * float64(v)
		}
		envelope = append(envelope, energy/float64(end-start))
	}

	var onsets []int
	for i := 1; i+1 < len(envelope); i++ {
		if envelope[i] > onsetEnergyThreshold &&
			envelope[i] > envelope[i-1] &&
			envelope[i] > envelope[i+1] {
			onsets = append(onsets, i*windowSize)
		}
	}
	return onsets
}
