package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/facebookincubator/go-belt"
	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/facebookincubator/go-belt/tool/logger/implementation/logrus"
	"github.com/jfreymuth/oggvorbis"
	"github.com/spf13/pflag"
	"github.com/xaionaro-go/datacounter"

	"github.com/xaionaro-go/avsync/pkg/audio"
	"github.com/xaionaro-go/avsync/pkg/features"
	"github.com/xaionaro-go/avsync/pkg/syncer"
	"github.com/xaionaro-go/avsync/pkg/syncer/implementations/hybrid"
	"github.com/xaionaro-go/avsync/pkg/vad/implementations/entropy"
)

func main() {
	loggerLevel := logger.LevelWarning
	pflag.Var(&loggerLevel, "log-level", "Log level")
	pcmFormatFlag := pflag.String("pcm-format", "f32le", "Sample format of raw PCM inputs")
	channelsFlag := pflag.Uint("channels", 1, "Channel count of raw PCM inputs")
	sampleRateFlag := pflag.Float64("sample-rate", features.DefaultSampleRate, "Sample rate of both inputs, Hz")
	qualityFlag := pflag.String("quality", "standard", "Sync quality: realtime, standard or high")
	pflag.Parse()
	if pflag.NArg() != 2 {
		fmt.Fprintf(os.Stderr, "syntax: avsync [options] <track1> <track2>\n")
		pflag.PrintDefaults()
		os.Exit(2)
	}

	l := logrus.Default().WithLevel(loggerLevel)
	ctx := logger.CtxWithLogger(context.Background(), l)
	logger.Default = func() logger.Logger {
		return l
	}
	defer belt.Flush(ctx)

	pcmFormat, err := audio.ParsePCMFormat(*pcmFormatFlag)
	assertNoError(err)
	quality, err := parseQuality(*qualityFlag)
	assertNoError(err)

	sampleRate := *sampleRateFlag
	track1, err := loadTrack(ctx, pflag.Arg(0), pcmFormat, int(*channelsFlag), &sampleRate)
	assertNoError(err)
	track2, err := loadTrack(ctx, pflag.Arg(1), pcmFormat, int(*channelsFlag), &sampleRate)
	assertNoError(err)

	if loggerLevel >= logger.LevelDebug {
		reportVoicedRatio(ctx, pflag.Arg(0), track1, sampleRate)
		reportVoicedRatio(ctx, pflag.Arg(1), track2, sampleRate)
	}

	s := hybrid.NewSyncer(quality)
	defer func() {
		assertNoError(s.Close())
	}()

	result, err := s.FindOptimalSync(ctx, track1, track2, sampleRate)
	assertNoError(err)
	logger.Debugf(ctx, "result: %s", spew.Sdump(result))

	fmt.Printf("offset: %.4f seconds\n", result.Offset)
	fmt.Printf("confidence: %.3f\n", result.Confidence)
	fmt.Printf("algorithm: %s\n", result.Algorithm)
	fmt.Printf("computation time: %v\n", result.ComputationTime)
}

// loadTrack reads a whole file and decodes it to mono samples. Ogg/Vorbis
// files carry their own sample rate, which overrides the flag-provided one;
// anything else is treated as raw PCM in the configured format.
func loadTrack(
	ctx context.Context,
	path string,
	pcmFormat audio.PCMFormat,
	channels int,
	sampleRate *float64,
) ([]float32, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("unable to open '%s': %w", path, err)
	}
	defer file.Close()
	rc := datacounter.NewReaderCounter(file)

	if strings.EqualFold(filepath.Ext(path), ".ogg") {
		samples, format, err := oggvorbis.ReadAll(rc)
		if err != nil {
			return nil, fmt.Errorf("unable to decode '%s': %w", path, err)
		}
		logger.Debugf(ctx, "read %d bytes from '%s': %d Hz, %d channel(s)",
			rc.Count(), path, format.SampleRate, format.Channels)
		*sampleRate = float64(format.SampleRate)
		return audio.DownmixFloat32(samples, format.Channels), nil
	}

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("unable to read '%s': %w", path, err)
	}
	logger.Debugf(ctx, "read %d bytes of raw PCM from '%s'", rc.Count(), path)
	return audio.DecodeFloat32(pcmFormat, channels, data)
}

// reportVoicedRatio logs what share of a track's analysis frames carry voice
// activity, a quick sanity signal for whether the inputs hold usable speech.
func reportVoicedRatio(ctx context.Context, name string, samples []float32, sampleRate float64) {
	v := entropy.NewVAD()
	defer func() {
		assertNoError(v.Close())
	}()

	mask, err := v.DetectVoiceActivity(ctx, samples, sampleRate)
	if err != nil || len(mask) == 0 {
		logger.Debugf(ctx, "'%s': no voice activity info: frames=%d, err=%v", name, len(mask), err)
		return
	}

	voiced := 0
	for _, isVoiced := range mask {
		if isVoiced {
			voiced++
		}
	}
	logger.Debugf(ctx, "'%s': voiced frames: %d/%d (%.1f%%)",
		name, voiced, len(mask), 100*float64(voiced)/float64(len(mask)))
}

func parseQuality(s string) (syncer.Quality, error) {
	switch strings.ToLower(s) {
	case "realtime":
		return syncer.QualityRealTime, nil
	case "standard":
		return syncer.QualityStandard, nil
	case "high":
		return syncer.QualityHighQuality, nil
	default:
		return syncer.QualityStandard, fmt.Errorf("unknown quality: '%s'", s)
	}
}

func assertNoError(err error) {
	if err != nil {
		panic(err)
	}
}
