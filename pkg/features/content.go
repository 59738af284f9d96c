package features

// Content is the coarse acoustic category of a buffer, used to pick
// algorithm weights.
type Content int

const (
	ContentUnknown Content = iota
	ContentSpeech
	ContentMusic
	ContentMixed
	ContentSilence
	ContentNoise
)

func (c Content) String() string {
	switch c {
	case ContentSpeech:
		return "speech"
	case ContentMusic:
		return "music"
	case ContentMixed:
		return "mixed"
	case ContentSilence:
		return "silence"
	case ContentNoise:
		return "noise"
	default:
		return "unknown"
	}
}

// DetectContent classifies a feature bundle with a fixed decision tree.
// The rules are evaluated in order and the first match wins, so the
// classification is deterministic for identical bundles.
func DetectContent(f *AudioFeatures) Content {
	if f == nil || f.FrameCount == 0 || len(f.Energy) == 0 {
		return ContentUnknown
	}

	var avgEnergy, maxEnergy float64
	for _, e := range f.Energy {
		avgEnergy += e
		if e > maxEnergy {
			maxEnergy = e
		}
	}
	avgEnergy /= float64(len(f.Energy))

	var avgZCR float64
	if len(f.ZCR) > 0 {
		for _, z := range f.ZCR {
			avgZCR += z
		}
		avgZCR /= float64(len(f.ZCR))
	}

	switch {
	case avgEnergy < 0.01 && maxEnergy < 0.05:
		return ContentSilence
	case avgZCR > 0.1 && avgZCR < 0.3 && len(f.Onsets) < 20:
		return ContentSpeech
	case avgZCR < 0.15 && len(f.Onsets) > 15:
		return ContentMusic
	case avgZCR > 0.4:
		return ContentNoise
	default:
		return ContentMixed
	}
}
