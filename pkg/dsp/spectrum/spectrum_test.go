package spectrum

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSignal(n int) []float64 {
	samples := make([]float64, n)
	for i := range samples {
		samples[i] = math.Sin(float64(i)*0.37) + 0.5*math.Cos(float64(i)*1.91)
	}
	return samples
}

func TestTransform_RoundTrip(t *testing.T) {
	for _, size := range []int{2, 16, 256, 2048, 15, 100, 1023} {
		tr, err := New(size)
		require.NoError(t, err)

		samples := testSignal(size)
		spec, err := tr.Forward(samples)
		require.NoError(t, err)
		assert.Len(t, spec, size/2+1)

		restored, err := tr.Inverse(spec)
		require.NoError(t, err)
		require.Len(t, restored, size)
		for i := range samples {
			assert.InDelta(t, samples[i], restored[i], 1e-9, "size %d, sample %d", size, i)
		}
	}
}

func TestTransform_SizeMismatch(t *testing.T) {
	tr, err := New(64)
	require.NoError(t, err)

	_, err = tr.Forward(make([]float64, 63))
	var sizeErr *SizeMismatchError
	require.ErrorAs(t, err, &sizeErr)
	assert.Equal(t, 63, sizeErr.Got)
	assert.Equal(t, 64, sizeErr.Want)

	_, err = tr.Inverse(make([]complex128, 64))
	require.ErrorAs(t, err, &sizeErr)
	assert.Equal(t, 33, sizeErr.Want)
}

func TestTransform_InvalidSize(t *testing.T) {
	_, err := New(0)
	assert.Error(t, err)
	_, err = New(-8)
	assert.Error(t, err)
}

func TestTransform_Linearity(t *testing.T) {
	const size = 128
	tr, err := New(size)
	require.NoError(t, err)

	a := testSignal(size)
	b := make([]float64, size)
	sum := make([]float64, size)
	for i := range b {
		b[i] = math.Cos(float64(i) * 0.11)
		sum[i] = a[i] + b[i]
	}

	specA, err := tr.Forward(a)
	require.NoError(t, err)
	specB, err := tr.Forward(b)
	require.NoError(t, err)
	specSum, err := tr.Forward(sum)
	require.NoError(t, err)

	for k := range specSum {
		assert.InDelta(t, real(specA[k])+real(specB[k]), real(specSum[k]), 1e-9)
		assert.InDelta(t, imag(specA[k])+imag(specB[k]), imag(specSum[k]), 1e-9)
	}
}

func BenchmarkTransform_Forward(b *testing.B) {
	tr, err := New(8192)
	if err != nil {
		b.Fatal(err)
	}
	samples := testSignal(8192)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := tr.Forward(samples); err != nil {
			b.Fatal(err)
		}
	}
}
