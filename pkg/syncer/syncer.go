// Package syncer defines the types shared by the alignment algorithm
// implementations: the result of one alignment attempt, the capability
// interface every algorithm satisfies, and the processing quality tiers.
package syncer

import (
	"context"
	"io"
	"time"

	"github.com/xaionaro-go/avsync/pkg/features"
)

// Result is the outcome of one alignment attempt.
//
// A Result is constructed fresh per call and never mutated afterwards by its
// producer.
type Result struct {
	// Offset is the signed delay in seconds; positive means the second
	// source starts later than the first.
	Offset float64

	// Confidence is the algorithm's own estimate of Offset correctness,
	// nominally in [0..1]. Individual algorithms may report values above 1
	// (e.g. refinement bonuses, unnormalized correlation scores); only the
	// fused result is clamped.
	Confidence float64

	// Algorithm identifies which strategy produced the result.
	Algorithm string

	// ConfidenceProfile optionally carries a per-frame confidence trace
	// for diagnostics.
	ConfidenceProfile []float64

	// ComputationTime is the wall time spent producing the result.
	ComputationTime time.Duration
}

// Algorithm is one alignment strategy over a pair of feature bundles.
//
// Synchronize always returns a Result: data-quality problems (empty series,
// zero-norm signals, too few onsets) surface as zero confidence, never as a
// panic or error. Implementations must not mutate the shared feature bundles,
// so distinct algorithms may run concurrently on the same pair.
type Algorithm interface {
	io.Closer

	Name() string
	ExpectedAccuracy(content features.Content) float64
	Synchronize(ctx context.Context, features1, features2 *features.AudioFeatures) Result
}

// Quality selects algorithm parameter presets. It trades cost against
// accuracy without changing any algorithmic contract.
type Quality int

const (
	QualityStandard Quality = iota
	QualityRealTime
	QualityHighQuality
)

func (q Quality) String() string {
	switch q {
	case QualityRealTime:
		return "real-time"
	case QualityHighQuality:
		return "high-quality"
	default:
		return "standard"
	}
}
