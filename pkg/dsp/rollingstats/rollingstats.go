// Package rollingstats provides a fixed-capacity sliding window over scalar
// observations with O(1) updates of mean, variance and standard deviation.
// Variance uses the biased population estimator E[x²]−E[x]².
package rollingstats

import (
	"math"
)

// DefaultWindowSize is used when a non-positive capacity is requested.
const DefaultWindowSize = 100

// Window is a circular buffer of the last N observations.
//
// A Window is not safe for concurrent use.
type Window struct {
	window       []float64
	currentIndex int
	sum          float64
	sumSquared   float64
	filled       bool
}

func New(windowSize int) *Window {
	if windowSize <= 0 {
		windowSize = DefaultWindowSize
	}
	return &Window{
		window: make([]float64, windowSize),
	}
}

// Update inserts a new observation, evicting the oldest one once the
// window is full.
func (w *Window) Update(value float64) {
	if w.filled {
		oldValue := w.window[w.currentIndex]
		w.sum -= oldValue
		w.sumSquared -= oldValue * oldValue
	}

	w.window[w.currentIndex] = value
	w.sum += value
	w.sumSquared += value * value

	w.currentIndex = (w.currentIndex + 1) % len(w.window)
	if w.currentIndex == 0 {
		w.filled = true
	}
}

// Count returns how many observations the statistics currently cover.
func (w *Window) Count() int {
	if w.filled {
		return len(w.window)
	}
	return w.currentIndex
}

func (w *Window) Mean() float64 {
	count := w.Count()
	if count == 0 {
		return 0
	}
	return w.sum / float64(count)
}

// Variance returns the biased population variance of the current fill
// level, or 0 when fewer than 2 observations are present.
func (w *Window) Variance() float64 {
	count := w.Count()
	if count < 2 {
		return 0
	}

	mean := w.sum / float64(count)
	variance := w.sumSquared/float64(count) - mean*mean
	if variance < 0 {
		// Running sums can drift a hair below zero.
		return 0
	}
	return variance
}

func (w *Window) StdDev() float64 {
	return math.Sqrt(w.Variance())
}

// Reset clears all accumulators and the fill state.
func (w *Window) Reset() {
	w.currentIndex = 0
	w.sum = 0
	w.sumSquared = 0
	w.filled = false
	for i := range w.window {
		w.window[i] = 0
	}
}
