// Package spectralcorrelation aligns two sources by exhaustively scanning
// integer lags of their spectral-centroid series and picking the lag with
// the highest mean product of the overlapping samples.
//
// The centroid series stands in for a full spectrogram correlation, and the
// score is intentionally not normalized by signal energy, so the reported
// confidence is a raw correlation magnitude rather than a unit-range value.
package spectralcorrelation

import (
	"context"
	"math"
	"time"

	"github.com/xaionaro-go/avsync/pkg/features"
	"github.com/xaionaro-go/avsync/pkg/syncer"
)

// DefaultMaxLagDivisor caps the lag scan at the shorter series length
// divided by this value.
const DefaultMaxLagDivisor = 2

type Syncer struct {
	MaxLagDivisor int
}

var _ syncer.Algorithm = (*Syncer)(nil)

func NewSyncer() *Syncer {
	return &Syncer{
		MaxLagDivisor: DefaultMaxLagDivisor,
	}
}

func (s *Syncer) Close() error {
	return nil
}

func (s *Syncer) Name() string {
	return "SpectralCorrelation"
}

func (s *Syncer) ExpectedAccuracy(content features.Content) float64 {
	switch content {
	case features.ContentSpeech:
		return 0.70
	case features.ContentMusic:
		return 0.90
	case features.ContentMixed:
		return 0.80
	case features.ContentSilence:
		return 0.10
	case features.ContentNoise:
		return 0.25
	default:
		return 0.65
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

	centroid1 := features1.SpectralCentroid
	centroid2 := features2.SpectralCentroid
	if len(centroid1) == 0 || len(centroid2) == 0 {
		return result
	}

	divisor := s.MaxLagDivisor
	if divisor < 1 {
		divisor = DefaultMaxLagDivisor
	}
	maxLag := len(centroid1)
	if len(centroid2) < maxLag {
		maxLag = len(centroid2)
	}
	maxLag /= divisor

	bestCorrelation := -1.0
	bestLag := 0
	for lag := -maxLag; lag <= maxLag; lag++ {
		var correlation float64
		count := 0
		for i := range centroid1 {
			j := i + lag
			if j >= 0 && j < len(centroid2) {
				correlation += centroid1[i] * centroid2[j]
				count++
			}
		}
		if count == 0 {
			continue
		}
		if correlation /= float64(count); correlation > bestCorrelation {
			bestCorrelation = correlation
			bestLag = lag
		}
	}

	result.Offset = float64(bestLag) * features1.HopSeconds()
	result.Confidence = math.Max(0, bestCorrelation)
	return result
}
