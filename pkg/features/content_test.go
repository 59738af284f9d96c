package features

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func constSeries(n int, v float64) []float64 {
	series := make([]float64, n)
	for i := range series {
		series[i] = v
	}
	return series
}

func TestDetectContent(t *testing.T) {
	t.Run("unknown on empty bundle", func(t *testing.T) {
		assert.Equal(t, ContentUnknown, DetectContent(nil))
		assert.Equal(t, ContentUnknown, DetectContent(&AudioFeatures{SampleRate: 44100}))
		assert.Equal(t, ContentUnknown, DetectContent(&AudioFeatures{FrameCount: 10}))
	})

	t.Run("silence", func(t *testing.T) {
		f := &AudioFeatures{
			FrameCount: 10,
			Energy:     constSeries(10, 0.005),
			ZCR:        constSeries(10, 0.2),
		}
		assert.Equal(t, ContentSilence, DetectContent(f))
	})

	t.Run("speech", func(t *testing.T) {
		f := &AudioFeatures{
			FrameCount: 10,
			Energy:     constSeries(10, 0.3),
			ZCR:        constSeries(10, 0.2),
			Onsets:     make([]int, 5),
		}
		assert.Equal(t, ContentSpeech, DetectContent(f))
	})

	t.Run("music", func(t *testing.T) {
		f := &AudioFeatures{
			FrameCount: 10,
			Energy:     constSeries(10, 0.3),
			ZCR:        constSeries(10, 0.1),
			Onsets:     make([]int, 25),
		}
		assert.Equal(t, ContentMusic, DetectContent(f))
	})

	t.Run("noise", func(t *testing.T) {
		f := &AudioFeatures{
			FrameCount: 10,
			Energy:     constSeries(10, 0.3),
			ZCR:        constSeries(10, 0.5),
			Onsets:     make([]int, 5),
		}
		assert.Equal(t, ContentNoise, DetectContent(f))
	})

	t.Run("mixed", func(t *testing.T) {
		f := &AudioFeatures{
			FrameCount: 10,
			Energy:     constSeries(10, 0.3),
			ZCR:        constSeries(10, 0.35),
			Onsets:     make([]int, 10),
		}
		assert.Equal(t, ContentMixed, DetectContent(f))
	})

	t.Run("speech rule wins over music rule", func(t *testing.T) {
		// ZCR 0.12 satisfies both the speech band and the music ZCR bound;
		// with few onsets the earlier speech rule must win.
		f := &AudioFeatures{
			FrameCount: 10,
			Energy:     constSeries(10, 0.3),
			ZCR:        constSeries(10, 0.12),
			Onsets:     make([]int, 5),
		}
		assert.Equal(t, ContentSpeech, DetectContent(f))
	})

	t.Run("deterministic", func(t *testing.T) {
		f := &AudioFeatures{
			FrameCount: 10,
			Energy:     constSeries(10, 0.3),
			ZCR:        constSeries(10, 0.2),
			Onsets:     make([]int, 5),
		}
		first := DetectContent(f)
		for i := 0; i < 10; i++ {
			assert.Equal(t, first, DetectContent(f))
		}
	})
}
