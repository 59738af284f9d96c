// Package hybrid implements the top-level alignment engine: it extracts
// features from both sources, classifies the content type, runs four
// independent alignment algorithms on the feature pair and fuses their
// offsets with content-adaptive weights into one confidence-scored result.
//
// The fused offset is negated before being returned: the engine's external
// sign convention is the inverse of the per-algorithm convention. This is
// load-bearing behavior that downstream consumers rely on; do not "fix" it.
package hybrid

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/hashicorp/go-multierror"
	"github.com/xaionaro-go/observability"

	"github.com/xaionaro-go/avsync/pkg/features"
	"github.com/xaionaro-go/avsync/pkg/syncer"
	"github.com/xaionaro-go/avsync/pkg/syncer/implementations/crosscorrelation"
	"github.com/xaionaro-go/avsync/pkg/syncer/implementations/multiscaledtw"
	"github.com/xaionaro-go/avsync/pkg/syncer/implementations/onsetsync"
	"github.com/xaionaro-go/avsync/pkg/syncer/implementations/spectralcorrelation"
)

// AlgorithmName tags results produced by the fusion engine itself.
const AlgorithmName = "Hybrid"

const largeOffsetSeconds = 10

// Syncer is the hybrid alignment engine. Quality and Weights may be
// adjusted between calls, but not concurrently with one.
type Syncer struct {
	Quality syncer.Quality
	Weights WeightTable

	extractor  *features.Extractor
	algorithms []syncer.Algorithm
}

func NewSyncer(quality syncer.Quality) *Syncer {
	dtw := multiscaledtw.NewSyncer()
	spectral := spectralcorrelation.NewSyncer()
	if quality == syncer.QualityRealTime {
		dtw.Scales = []int{8, 4}
		spectral.MaxLagDivisor = 4
	}

	return &Syncer{
		Quality: quality,
		Weights: DefaultWeights(),

		extractor: features.NewExtractor(),
		algorithms: []syncer.Algorithm{
			crosscorrelation.NewSyncer(),
			dtw,
			onsetsync.NewSyncer(),
			spectral,
		},
	}
}

func (s *Syncer) Close() error {
	var result *multierror.Error
	for _, algorithm := range s.algorithms {
		result = multierror.Append(result, algorithm.Close())
	}
	return result.ErrorOrNil()
}

// FindOptimalSync aligns two mono tracks sampled at the same rate and
// returns the fused result. Unusable input (either track yielding zero
// analysis frames) is reported as a zero-confidence result, not an error;
// the only error returned is the caller's expired context.
func (s *Syncer) FindOptimalSync(
	ctx context.Context,
	track1, track2 []float32,
	sampleRate float64,
) (syncer.Result, error) {
	start := time.Now()

	features1 := s.extractor.Extract(track1, sampleRate)
	features2 := s.extractor.Extract(track2, sampleRate)
	if features1.FrameCount == 0 || features2.FrameCount == 0 {
		logger.Debugf(ctx, "no usable signal: frames=%d/%d", features1.FrameCount, features2.FrameCount)
		return syncer.Result{
			Algorithm:       AlgorithmName,
			ComputationTime: time.Since(start),
		}, nil
	}

	content := features.DetectContent(features1)
	logger.Debugf(ctx, "detected content type: %v (quality: %v)", content, s.Quality)

	// The algorithms are mutually independent and only read the shared
	// feature bundles, so they run concurrently, each writing its own slot.
	results := make([]syncer.Result, len(s.algorithms))
	var wg sync.WaitGroup
	for i, algorithm := range s.algorithms {
		wg.Add(1)
		observability.Go(ctx, func() {
			defer wg.Done()
			results[i] = algorithm.Synchronize(ctx, features1, features2)
		})
	}
	wg.Wait()
	if err := ctx.Err(); err != nil {
		return syncer.Result{}, err
	}

	for _, result := range results {
		logger.Debugf(ctx, "%s: offset=%.4fs confidence=%.3f time=%v",
			result.Algorithm, result.Offset, result.Confidence, result.ComputationTime)
	}

	weights := s.Weights[content]
	fused := combineResults(results, weights[:])
	fused.Offset = -fused.Offset // engine-level sign convention, see the package doc
	fused.Confidence = adjustConfidence(fused, features1, features2)
	fused.ComputationTime = time.Since(start)

	logger.Debugf(ctx, "fused result: offset=%.4fs confidence=%.3f time=%v",
		fused.Offset, fused.Confidence, fused.ComputationTime)
	return fused, nil
}

// combineResults fuses the per-algorithm results. Each table weight is
// scaled by that algorithm's own confidence; a zero total weight yields a
// zero result.
func combineResults(results []syncer.Result, weights []float64) syncer.Result {
	combined := syncer.Result{Algorithm: AlgorithmName}

	var totalWeight, weightedOffset, weightedConfidence float64
	for i, result := range results {
		if i >= len(weights) {
			break
		}
		effWeight := weights[i] * result.Confidence
		weightedOffset += result.Offset * effWeight
		weightedConfidence += result.Confidence * effWeight
		totalWeight += effWeight
	}

	if totalWeight > 0 {
		combined.Offset = weightedOffset / totalWeight
		combined.Confidence = weightedConfidence / totalWeight
	}
	return combined
}

// adjustConfidence applies the final feature-quality bonuses and the
// large-offset penalty, then clamps to [0..1].
func adjustConfidence(result syncer.Result, features1, features2 *features.AudioFeatures) float64 {
	confidence := result.Confidence

	if len(features1.Cepstral) > 0 && len(features2.Cepstral) > 0 {
		confidence *= 1.1
	}
	if len(features1.Onsets) > 5 && len(features2.Onsets) > 5 {
		confidence *= 1.05
	}
	if math.Abs(result.Offset) > largeOffsetSeconds {
		confidence *= 0.8
	}

	return math.Max(0, math.Min(1, confidence))
}
