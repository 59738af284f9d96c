// Package crosscorrelation implements an alignment algorithm based on
// normalized cross-correlation of the two sources' energy envelopes.
//
// The correlation is computed in the frequency domain (forward transform,
// multiply by conjugate, inverse transform) over buffers zero-padded to the
// next power of two, and the peak is refined with parabolic interpolation for
// sub-frame precision. When the frequency-domain path cannot produce a
// result, a direct time-domain scan over the valid overlap substitutes
// silently; the caller sees a low confidence, never a failure.
package crosscorrelation

import (
	"context"
	"math"
	"math/cmplx"
	"time"

	"github.com/xaionaro-go/avsync/pkg/dsp/spectrum"
	"github.com/xaionaro-go/avsync/pkg/features"
	"github.com/xaionaro-go/avsync/pkg/syncer"
)

const refinementBonus = 1.1

type Syncer struct{}

var _ syncer.Algorithm = (*Syncer)(nil)

func NewSyncer() *Syncer {
	return &Syncer{}
}

func (s *Syncer) Close() error {
	return nil
}

func (s *Syncer) Name() string {
	return "CrossCorrelation"
}

func (s *Syncer) ExpectedAccuracy(content features.Content) float64 {
	switch content {
	case features.ContentSpeech:
		return 0.85
	case features.ContentMusic:
		return 0.70
	case features.ContentMixed:
		return 0.75
	case features.ContentSilence:
		return 0.10
	case features.ContentNoise:
		return 0.30
	default:
		return 0.60
	}
}

func (s *Syncer) Synchronize(
	ctx context.Context,
	features1, features2 *features.AudioFeatures,
) (result syncer.Result) {
	start := time.Now()
	result = syncer.Result{Algorithm: s.Name()}
	defer func() {
		result.ComputationTime = time.Since(start)
	}()

	signal1 := features1.Energy
	signal2 := features2.Energy
	if len(signal1) == 0 || len(signal2) == 0 {
		return result
	}

	lag, peak, refined, err := correlateFFT(signal1, signal2)
	if err != nil {
		lag, peak = correlateDirect(signal1, signal2)
		refined = false
	}

	// Positive offset means the second source starts later; the peak lag
	// points the other way, hence the negation.
	result.Offset = -lag * features1.HopSeconds()
	result.Confidence = math.Min(1, peak)
	if refined {
		result.Confidence *= refinementBonus
	}
	return result
}

// correlateFFT returns the (possibly fractional) frame lag of the highest
// normalized correlation peak, the peak value, and whether parabolic
// refinement was applied. Zero-norm inputs yield a zero peak rather than an
// error; the error return is reserved for numerical failures of the
// transform path itself.
func correlateFFT(signal1, signal2 []float64) (lag float64, peak float64, refined bool, _ error) {
	n1 := len(signal1)
	n2 := len(signal2)

	// Next power of two that fits the full linear correlation, to avoid
	// circular convolution artifacts.
	fftSize := 1
	for fftSize < n1+n2-1 {
		fftSize <<= 1
	}

	transform, err := spectrum.New(fftSize)
	if err != nil {
		return 0, 0, false, err
	}

	padded1 := make([]float64, fftSize)
	padded2 := make([]float64, fftSize)
	copy(padded1, signal1)
	copy(padded2, signal2)

	spec1, err := transform.Forward(padded1)
	if err != nil {
		return 0, 0, false, err
	}
	spec2, err := transform.Forward(padded2)
	if err != nil {
		return 0, 0, false, err
	}

	cross := make([]complex128, len(spec1))
	for i := range cross {
		cross[i] = spec1[i] * cmplx.Conj(spec2[i])
	}

	correlation, err := transform.Inverse(cross)
	if err != nil {
		return 0, 0, false, err
	}

	norm1 := l2Norm(signal1)
	norm2 := l2Norm(signal2)
	if norm1 == 0 || norm2 == 0 {
		return 0, 0, false, nil
	}
	normFactor := norm1 * norm2

	maxIdx := 0
	maxVal := math.Inf(-1)
	for i, v := range correlation {
		if v > maxVal {
			maxVal = v
			maxIdx = i
		}
	}
	peak = maxVal / normFactor

	lag = float64(maxIdx)
	if maxIdx > 0 && maxIdx < fftSize-1 {
		y1 := correlation[maxIdx-1]
		y2 := maxVal
		y3 := correlation[maxIdx+1]
		a := (y1 - 2*y2 + y3) / 2
		if math.Abs(a) > 1e-9*normFactor {
			lag += -(y3 - y1) / (4 * a)
			refined = true
		}
	}

	// Peaks past the midpoint are negative lags that wrapped around.
	if lag > float64(fftSize)/2 {
		lag -= float64(fftSize)
	}
	return lag, peak, refined, nil
}

// correlateDirect is the time-domain fallback: the mean product over the
// valid overlap at every integer lag.
func correlateDirect(signal1, signal2 []float64) (lag float64, peak float64) {
	bestLag := 0
	bestVal := math.Inf(-1)
	for l := -(len(signal2) - 1); l < len(signal1); l++ {
		var sum float64
		count := 0
		for i := range signal1 {
			j := i - l
			if j >= 0 && j < len(signal2) {
				sum += signal1[i] * signal2[j]
				count++
			}
		}
		if count == 0 {
			continue
		}
		if v := sum / float64(count); v > bestVal {
			bestVal = v
			bestLag = l
		}
	}
	if math.IsInf(bestVal, -1) {
		return 0, 0
	}
	return float64(bestLag), math.Max(0, bestVal)
}

func l2Norm(signal []float64) float64 {
	var sum float64
	for _, v := range signal {
		sum += v * v
	}
	return math.Sqrt(sum)
}
