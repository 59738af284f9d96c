package audio

import (
	"encoding/binary"
	"fmt"
	"math"
)

func getFloat32(f PCMFormat, p []byte) float32 {
	switch f {
	case PCMFormatU8:
		return (float32(p[0]) - 128) / 128
	case PCMFormatS16LE:
		return float32(int16(binary.LittleEndian.Uint16(p))) / 32768
	case PCMFormatS16BE:
		return float32(int16(binary.BigEndian.Uint16(p))) / 32768
	case PCMFormatS24LE:
		val := int32(uint32(p[0]) | uint32(p[1])<<8 | uint32(p[2])<<16)
		if val&0x800000 != 0 {
			val |= -16777216
		}
		return float32(val) / 8388608
	case PCMFormatS24BE:
		val := int32(uint32(p[2]) | uint32(p[1])<<8 | uint32(p[0])<<16)
		if val&0x800000 != 0 {
			val |= -16777216
		}
		return float32(val) / 8388608
	case PCMFormatS32LE:
		return float32(float64(int32(binary.LittleEndian.Uint32(p))) / 2147483648)
	case PCMFormatS32BE:
		return float32(float64(int32(binary.BigEndian.Uint32(p))) / 2147483648)
	case PCMFormatS64LE:
		return float32(float64(int64(binary.LittleEndian.Uint64(p))) / 9223372036854775808)
	case PCMFormatS64BE:
		return float32(float64(int64(binary.BigEndian.Uint64(p))) / 9223372036854775808)
	case PCMFormatFloat32LE:
		return math.Float32frombits(binary.LittleEndian.Uint32(p))
	case PCMFormatFloat32BE:
		return math.Float32frombits(binary.BigEndian.Uint32(p))
	case PCMFormatFloat64LE:
		return float32(math.Float64frombits(binary.LittleEndian.Uint64(p)))
	case PCMFormatFloat64BE:
		return float32(math.Float64frombits(binary.BigEndian.Uint64(p)))
	default:
		panic(fmt.Sprintf("unknown format: %v", f))
	}
}

// DecodeFloat32 decodes a raw buffer of interleaved samples into mono
// float32, averaging across channels. The buffer length must be a whole
// number of interleaved frames.
func DecodeFloat32(format PCMFormat, channels int, data []byte) ([]float32, error) {
	sampleSize := format.Size()
	if sampleSize == 0 {
		return nil, fmt.Errorf("unsupported PCM format: %v", format)
	}
	if channels <= 0 {
		return nil, fmt.Errorf("channel count must be positive: got %d", channels)
	}

	frameSize := sampleSize * channels
	if len(data)%frameSize != 0 {
		return nil, fmt.Errorf("buffer length %d is not a multiple of the frame size %d", len(data), frameSize)
	}

	frameCount := len(data) / frameSize
	samples := make([]float32, frameCount)
	for i := 0; i < frameCount; i++ {
		var sum float32
		for ch := 0; ch < channels; ch++ {
			sum += getFloat32(format, data[i*frameSize+ch*sampleSize:])
		}
		samples[i] = sum / float32(channels)
	}
	return samples, nil
}

// DownmixFloat32 averages interleaved multichannel float32 samples into
// mono. Trailing samples of an incomplete frame are dropped.
func DownmixFloat32(samples []float32, channels int) []float32 {
	if channels <= 1 {
		return samples
	}
	mono := make([]float32, len(samples)/channels)
	for i := range mono {
		var sum float32
		for ch := 0; ch < channels; ch++ {
			sum += samples[i*channels+ch]
		}
		mono[i] = sum / float32(channels)
	}
	return mono
}
