package rollingstats

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWindow_NotYetFull(t *testing.T) {
	w := New(10)
	for _, v := range []float64{1, 2, 3} {
		w.Update(v)
	}

	assert.Equal(t, 3, w.Count())
	assert.InDelta(t, 2.0, w.Mean(), 1e-12)
	assert.InDelta(t, 2.0/3.0, w.Variance(), 1e-12)
	assert.InDelta(t, math.Sqrt(2.0/3.0), w.StdDev(), 1e-12)
}

func TestWindow_Eviction(t *testing.T) {
	w := New(3)
	for _, v := range []float64{1, 2, 3, 4, 5} {
		w.Update(v)
	}

	// Window now holds {3, 4, 5}.
	assert.Equal(t, 3, w.Count())
	assert.InDelta(t, 4.0, w.Mean(), 1e-12)
	assert.InDelta(t, 2.0/3.0, w.Variance(), 1e-12)
}

func TestWindow_FewSamples(t *testing.T) {
	w := New(5)
	assert.Zero(t, w.Mean())
	assert.Zero(t, w.Variance())

	w.Update(42)
	assert.InDelta(t, 42.0, w.Mean(), 1e-12)
	assert.Zero(t, w.Variance())
	assert.Zero(t, w.StdDev())
}

func TestWindow_Reset(t *testing.T) {
	w := New(4)
	for _, v := range []float64{7, 8, 9, 10, 11} {
		w.Update(v)
	}

	w.Reset()
	assert.Zero(t, w.Count())
	assert.Zero(t, w.Mean())
	assert.Zero(t, w.Variance())

	w.Update(2)
	w.Update(4)
	assert.InDelta(t, 3.0, w.Mean(), 1e-12)
	assert.InDelta(t, 1.0, w.Variance(), 1e-12)
}

func TestWindow_NonPositiveCapacity(t *testing.T) {
	w := New(0)
	w.Update(1)
	assert.Equal(t, 1, w.Count())
}
