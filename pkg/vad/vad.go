// Package vad provides voice-activity detection over mono PCM buffers.
package vad

import (
	"context"
	"io"
)

type VAD interface {
	io.Closer

	// DetectVoiceActivity returns one voiced/unvoiced decision per
	// analysis frame of the given buffer.
	DetectVoiceActivity(
		ctx context.Context,
		samples []float32,
		sampleRate float64,
	) ([]bool, error)
}
