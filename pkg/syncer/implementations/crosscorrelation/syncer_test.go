package crosscorrelation

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/xaionaro-go/avsync/pkg/features"
)

// envelopeFeatures builds a feature bundle whose energy series is a gaussian
// bump centered on the given frame.
func envelopeFeatures(length int, bumpFrame float64) *features.AudioFeatures {
	energy := make([]float64, length)
	for i := range energy {
		d := float64(i) - bumpFrame
		energy[i] = math.Exp(-d * d / 18)
	}
	return &features.AudioFeatures{
		Energy:     energy,
		SampleRate: 44100,
		FrameCount: length,
	}
}

func TestSyncer_Synchronize(t *testing.T) {
	s := NewSyncer()
	ctx := context.Background()
	hopSec := float64(features.HopSize) / 44100

	t.Run("second source later", func(t *testing.T) {
		f1 := envelopeFeatures(200, 50)
		f2 := envelopeFeatures(200, 70)

		result := s.Synchronize(ctx, f1, f2)
		assert.InDelta(t, 20*hopSec, result.Offset, hopSec)
		assert.Greater(t, result.Confidence, 0.5)
	})

	t.Run("second source earlier", func(t *testing.T) {
		f1 := envelopeFeatures(200, 70)
		f2 := envelopeFeatures(200, 50)

		result := s.Synchronize(ctx, f1, f2)
		assert.InDelta(t, -20*hopSec, result.Offset, hopSec)
		assert.Greater(t, result.Confidence, 0.5)
	})

	t.Run("identical sources", func(t *testing.T) {
		f1 := envelopeFeatures(200, 80)
		f2 := envelopeFeatures(200, 80)

		result := s.Synchronize(ctx, f1, f2)
		assert.InDelta(t, 0, result.Offset, hopSec)
		assert.Greater(t, result.Confidence, 0.9)
	})

	t.Run("zero-norm signal", func(t *testing.T) {
		f1 := envelopeFeatures(100, 50)
		f2 := &features.AudioFeatures{
			Energy:     make([]float64, 100),
			SampleRate: 44100,
			FrameCount: 100,
		}

		result := s.Synchronize(ctx, f1, f2)
		assert.Zero(t, result.Confidence)
	})

	t.Run("empty input", func(t *testing.T) {
		result := s.Synchronize(ctx, &features.AudioFeatures{}, &features.AudioFeatures{})
		assert.Zero(t, result.Confidence)
		assert.Zero(t, result.Offset)
	})
}

func TestCorrelateDirect(t *testing.T) {
	f1 := envelopeFeatures(120, 30)
	f2 := envelopeFeatures(120, 45)

	lag, peak := correlateDirect(f1.Energy, f2.Energy)
	assert.InDelta(t, -15, lag, 0.5)
	assert.Greater(t, peak, 0.0)
}

func TestCorrelateFFTMatchesDirect(t *testing.T) {
	f1 := envelopeFeatures(90, 20)
	f2 := envelopeFeatures(110, 60)

	fftLag, _, _, err := correlateFFT(f1.Energy, f2.Energy)
	assert.NoError(t, err)
	directLag, _ := correlateDirect(f1.Energy, f2.Energy)
	assert.InDelta(t, directLag, fftLag, 1.0)
}

func BenchmarkSyncer_Synchronize(b *testing.B) {
	s := NewSyncer()
	ctx := context.Background()
	f1 := envelopeFeatures(2000, 500)
	f2 := envelopeFeatures(2000, 900)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		result := s.Synchronize(ctx, f1, f2)
		if result.Confidence == 0 {
			b.Fatal("unexpected zero confidence")
		}
	}
}
