// Package spectrum implements a fixed-size transform between a block of real
// samples and its complex half-spectrum.
//
// Forward maps N real samples to the N/2+1 non-redundant frequency bins;
// Inverse reconstructs the N samples from such a half-spectrum, applying the
// divide-by-N normalization, so Inverse(Forward(x)) reproduces x. Power-of-two
// sizes take the in-place radix-2 path; every other size goes through a
// general FFT.
package spectrum

import (
	"fmt"
	"math/cmplx"

	"github.com/brettbuddin/fourier"
	"github.com/mjibson/go-dsp/fft"
)

// SizeMismatchError reports a buffer whose length does not match the
// transform's configured size. It indicates a caller bug, not a data
// condition.
type SizeMismatchError struct {
	Got  int
	Want int
}

func (e *SizeMismatchError) Error() string {
	return fmt.Sprintf("buffer length mismatch: got %d, expected %d", e.Got, e.Want)
}

// Transform converts real sample blocks of one fixed size to and from their
// half-spectra. A Transform is not safe for concurrent use of a single
// instance; each owner must hold its own.
type Transform struct {
	size       int
	powerOfTwo bool
}

func New(size int) (*Transform, error) {
	if size <= 0 {
		return nil, fmt.Errorf("transform size must be positive: got %d", size)
	}
	return &Transform{
		size:       size,
		powerOfTwo: size&(size-1) == 0,
	}, nil
}

func (t *Transform) Size() int {
	return t.size
}

// SpectrumSize returns the number of bins Forward produces and Inverse
// expects.
func (t *Transform) SpectrumSize() int {
	return t.size/2 + 1
}

// Forward transforms a block of exactly Size() real samples into its
// half-spectrum.
func (t *Transform) Forward(samples []float64) ([]complex128, error) {
	if len(samples) != t.size {
		return nil, &SizeMismatchError{Got: len(samples), Want: t.size}
	}

	if t.powerOfTwo {
		coeffs := make([]complex128, t.size)
		for i, v := range samples {
			coeffs[i] = complex(v, 0)
		}
		if err := fourier.Forward(coeffs); err == nil {
			return coeffs[:t.SpectrumSize()], nil
		}
	}

	full := fft.FFTReal(samples)
	half := make([]complex128, t.SpectrumSize())
	copy(half, full)
	return half, nil
}

// Inverse transforms a half-spectrum of exactly SpectrumSize() bins back into
// Size() real samples, normalizing by the transform size.
func (t *Transform) Inverse(halfSpectrum []complex128) ([]float64, error) {
	if len(halfSpectrum) != t.SpectrumSize() {
		return nil, &SizeMismatchError{Got: len(halfSpectrum), Want: t.SpectrumSize()}
	}

	// Rebuild the redundant negative-frequency bins by conjugate symmetry.
	full := make([]complex128, t.size)
	copy(full, halfSpectrum)
	for k := 1; k < (t.size+1)/2; k++ {
		full[t.size-k] = cmplx.Conj(halfSpectrum[k])
	}

	timeDomain := fft.IFFT(full)
	samples := make([]float64, t.size)
	for i := range samples {
		samples[i] = real(timeDomain[i])
	}
	return samples, nil
}
