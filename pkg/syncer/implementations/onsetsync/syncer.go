// Package onsetsync aligns two sources by voting over candidate shifts
// between their detected transient events. Each of the first few onsets on
// one side is tried against each of the first few on the other; the shift
// that makes the most onsets land within tolerance of a counterpart wins.
package onsetsync

import (
	"context"
	"math"
	"time"

	"github.com/xaionaro-go/avsync/pkg/features"
	"github.com/xaionaro-go/avsync/pkg/syncer"
)

const (
	// DefaultToleranceSamples is how far a shifted onset may land from a
	// counterpart and still count as a match (about 23ms at 44.1kHz).
	DefaultToleranceSamples = 1000

	// DefaultMaxCandidates bounds how many leading onsets on each side are
	// tried as shift anchors.
	DefaultMaxCandidates = 5

	minOnsets = 3
)

type Syncer struct {
	ToleranceSamples float64
	MaxCandidates    int
}

var _ syncer.Algorithm = (*Syncer)(nil)

func NewSyncer() *Syncer {
	return &Syncer{
		ToleranceSamples: DefaultToleranceSamples,
		MaxCandidates:    DefaultMaxCandidates,
	}
}

func (s *Syncer) Close() error {
	return nil
}

func (s *Syncer) Name() string {
	return "OnsetBased"
}

func (s *Syncer) ExpectedAccuracy(content features.Content) float64 {
	switch content {
	case features.ContentSpeech:
		return 0.60
	case features.ContentMusic:
		return 0.95
	case features.ContentMixed:
		return 0.75
	case features.ContentSilence:
		return 0.05
	case features.ContentNoise:
		return 0.15
	default:
		return 0.50
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

	onsets1 := features1.Onsets
	onsets2 := features2.Onsets
	if len(onsets1) < minOnsets || len(onsets2) < minOnsets {
		return result
	}

	shiftSamples := s.alignOnsets(onsets1, onsets2)
	if features1.SampleRate > 0 {
		result.Offset = shiftSamples / features1.SampleRate
	}

	minCount := len(onsets1)
	if len(onsets2) < minCount {
		minCount = len(onsets2)
	}
	result.Confidence = math.Min(1, float64(minCount)/10)
	return result
}

// alignOnsets exhaustively tries the leading onsets of each side as shift
// anchors and returns the candidate shift (in samples) matching the most
// onsets. The first candidate reaching the best score wins ties.
func (s *Syncer) alignOnsets(onsets1, onsets2 []int) float64 {
	candidates1 := len(onsets1)
	if candidates1 > s.MaxCandidates {
		candidates1 = s.MaxCandidates
	}
	candidates2 := len(onsets2)
	if candidates2 > s.MaxCandidates {
		candidates2 = s.MaxCandidates
	}

	var bestShift float64
	bestScore := 0
	for i := 0; i < candidates1; i++ {
		for j := 0; j < candidates2; j++ {
			shift := float64(onsets2[j] - onsets1[i])

			score := 0
			for _, onset := range onsets1 {
				expected := float64(onset) + shift
				for _, counterpart := range onsets2 {
					if math.Abs(float64(counterpart)-expected) < s.ToleranceSamples {
						score++
						break
					}
				}
			}

			if score > bestScore {
				bestScore = score
				bestShift = shift
			}
		}
	}
	return bestShift
}
