package hybrid

import (
	"github.com/xaionaro-go/avsync/pkg/features"
)

// NumAlgorithms is the fixed number of strategies the engine fuses, in the
// order CrossCorrelation, DTW, OnsetBased, SpectralCorrelation.
const NumAlgorithms = 4

// WeightTable maps a content type to one fusion weight per algorithm.
// Weights are non-negative and need not sum to 1: normalization happens at
// fusion time, after each weight is scaled by its algorithm's own
// confidence.
type WeightTable map[features.Content][NumAlgorithms]float64

// DefaultWeights returns the stock weight table.
func DefaultWeights() WeightTable {
	return WeightTable{
		features.ContentSpeech:  {0.4, 0.4, 0.1, 0.1},
		features.ContentMusic:   {0.2, 0.3, 0.3, 0.2},
		features.ContentMixed:   {0.3, 0.3, 0.2, 0.2},
		features.ContentSilence: {0.7, 0.2, 0.05, 0.05},
		features.ContentNoise:   {0.5, 0.3, 0.1, 0.1},
		features.ContentUnknown: {0.35, 0.35, 0.15, 0.15},
	}
}
