package onsetsync

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/xaionaro-go/avsync/pkg/features"
)

func onsetFeatures(onsets ...int) *features.AudioFeatures {
	return &features.AudioFeatures{
		Onsets:     onsets,
		SampleRate: 44100,
		FrameCount: 100,
	}
}

func shifted(onsets []int, delta int) []int {
	out := make([]int, len(onsets))
	for i, v := range onsets {
		out[i] = v + delta
	}
	return out
}

func TestSyncer_Synchronize(t *testing.T) {
	s := NewSyncer()
	ctx := context.Background()
	base := []int{10000, 32000, 51000, 74000, 98000, 120000}

	t.Run("second source later", func(t *testing.T) {
		f1 := onsetFeatures(base...)
		f2 := onsetFeatures(shifted(base, 5000)...)

		result := s.Synchronize(ctx, f1, f2)
		assert.InDelta(t, 5000.0/44100, result.Offset, 1e-9)
		assert.InDelta(t, 0.6, result.Confidence, 1e-9)
	})

	t.Run("second source earlier", func(t *testing.T) {
		f1 := onsetFeatures(shifted(base, 20000)...)
		f2 := onsetFeatures(base...)

		result := s.Synchronize(ctx, f1, f2)
		assert.InDelta(t, -20000.0/44100, result.Offset, 1e-9)
	})

	t.Run("too few onsets", func(t *testing.T) {
		f1 := onsetFeatures(10000, 32000)
		f2 := onsetFeatures(base...)

		result := s.Synchronize(ctx, f1, f2)
		assert.Zero(t, result.Confidence)
		assert.Zero(t, result.Offset)
	})

	t.Run("confidence scales with onset count", func(t *testing.T) {
		many := make([]int, 20)
		for i := range many {
			many[i] = 5000 + i*10000
		}
		f1 := onsetFeatures(many...)
		f2 := onsetFeatures(shifted(many, 3000)...)

		result := s.Synchronize(ctx, f1, f2)
		assert.InDelta(t, 1.0, result.Confidence, 1e-9)
	})

	t.Run("partial overlap still finds the dominant shift", func(t *testing.T) {
		f1 := onsetFeatures(base...)
		// One spurious onset inserted, rest shifted consistently.
		f2 := onsetFeatures(append([]int{2000}, shifted(base, 5000)...)...)

		result := s.Synchronize(ctx, f1, f2)
		assert.InDelta(t, 5000.0/44100, result.Offset, 1e-9)
	})
}
