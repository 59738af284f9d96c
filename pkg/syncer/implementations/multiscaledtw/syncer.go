// Package multiscaledtw aligns the two sources' cepstral-like series with
// dynamic time warping, run coarse-to-fine over several downsampling scales.
//
// The warp is restricted to a slope band: frame i of the first series may
// only map to frames j in [i/slope .. i*slope]. Cells outside the band are
// unreachable (infinite cost), which bounds both the runtime and pathological
// alignments. Each scale's mean path offset is blended 50/50 into the running
// estimate from the coarser scales; confidence is derived from how tightly
// the path offsets cluster around their mean.
package multiscaledtw

import (
	"context"
	"math"
	"time"

	"github.com/xaionaro-go/avsync/pkg/features"
	"github.com/xaionaro-go/avsync/pkg/syncer"
)

const DefaultSlopeConstraint = 2.0

// DefaultScales are the downsampling factors, coarsest first.
var DefaultScales = []int{8, 4, 2, 1}

type Syncer struct {
	SlopeConstraint float64
	Scales          []int
}

var _ syncer.Algorithm = (*Syncer)(nil)

func NewSyncer() *Syncer {
	return &Syncer{
		SlopeConstraint: DefaultSlopeConstraint,
		Scales:          DefaultScales,
	}
}

func (s *Syncer) Close() error {
	return nil
}

func (s *Syncer) Name() string {
	return "DTW"
}

func (s *Syncer) ExpectedAccuracy(content features.Content) float64 {
	switch content {
	case features.ContentSpeech:
		return 0.90
	case features.ContentMusic:
		return 0.85
	case features.ContentMixed:
		return 0.80
	case features.ContentSilence:
		return 0.20
	case features.ContentNoise:
		return 0.40
	default:
		return 0.70
	}
}

func (s *Syncer) Synchronize(
	ctx context.Context,
	features1, features2 *features.AudioFeatures,
) (result syncer.Result) {
	start := time.Now()
	result = syncer.Result{Algorithm: s.Name()}
	defer func() {
		result.ComputationTime = time.Since(start)
	}()

	series1 := features1.Cepstral
	series2 := features2.Cepstral
	if len(series1) == 0 || len(series2) == 0 {
		return result
	}

	var blendedOffset float64
	for _, scale := range s.Scales {
		down1 := downsample(series1, scale)
		down2 := downsample(series2, scale)
		if len(down1) == 0 || len(down2) == 0 {
			continue
		}

		matrix := costMatrix(down1, down2, s.SlopeConstraint)
		path := traceback(matrix)
		if len(path) == 0 {
			continue
		}

		var sum float64
		for _, p := range path {
			sum += float64(p[1] - p[0])
		}
		meanOffset := sum / float64(len(path))
		blendedOffset = (blendedOffset + meanOffset*float64(scale)) / 2

		var pathVariance float64
		for _, p := range path {
			d := float64(p[1]-p[0]) - meanOffset
			pathVariance += d * d
		}
		pathVariance /= float64(len(path))

		if confidence := math.Max(0, 1-pathVariance/100); confidence > result.Confidence {
			result.Confidence = confidence
		}
	}

	result.Offset = blendedOffset * features1.HopSeconds()
	return result
}

func downsample(series []float64, scale int) []float64 {
	if scale <= 1 {
		return series
	}
	down := make([]float64, 0, (len(series)+scale-1)/scale)
	for i := 0; i < len(series); i += scale {
		down = append(down, series[i])
	}
	return down
}

// costMatrix fills the accumulated-cost table, leaving every cell outside
// the slope band at +Inf. The band bounds apply to the borders too, so no
// reachable cell violates j in [i/slope .. i*slope].
func costMatrix(a, b []float64, slope float64) [][]float64 {
	n := len(a)
	m := len(b)
	matrix := make([][]float64, n)
	for i := range matrix {
		row := make([]float64, m)
		for j := range row {
			row[j] = math.Inf(1)
		}
		matrix[i] = row
	}
	matrix[0][0] = math.Abs(a[0] - b[0])

	for i := 0; i < n; i++ {
		jLo := int(float64(i) / slope)
		jHi := int(float64(i) * slope)
		if jHi > m-1 {
			jHi = m - 1
		}
		for j := jLo; j <= jHi; j++ {
			if i == 0 && j == 0 {
				continue
			}
			best := math.Inf(1)
			if i > 0 && matrix[i-1][j] < best {
				best = matrix[i-1][j]
			}
			if j > 0 && matrix[i][j-1] < best {
				best = matrix[i][j-1]
			}
			if i > 0 && j > 0 && matrix[i-1][j-1] < best {
				best = matrix[i-1][j-1]
			}
			if !math.IsInf(best, 1) {
				matrix[i][j] = math.Abs(a[i]-b[j]) + best
			}
		}
	}
	return matrix
}

// traceback walks the optimal path from the bottom-right cell to (0,0),
// preferring diagonal over vertical over horizontal steps on ties. It
// returns nil when the bottom-right cell is unreachable.
func traceback(matrix [][]float64) [][2]int {
	i := len(matrix) - 1
	j := len(matrix[0]) - 1
	if math.IsInf(matrix[i][j], 1) {
		return nil
	}

	var path [][2]int
	for i > 0 || j > 0 {
		path = append(path, [2]int{i, j})
		switch {
		case i == 0:
			j--
		case j == 0:
			i--
		default:
			diagonal := matrix[i-1][j-1]
			vertical := matrix[i-1][j]
			horizontal := matrix[i][j-1]
			switch {
			case diagonal <= vertical && diagonal <= horizontal:
				i--
				j--
			case vertical <= horizontal:
				i--
			default:
				j--
			}
		}
	}
	path = append(path, [2]int{0, 0})

	for l, r := 0, len(path)-1; l < r; l, r = l+1, r-1 {
		path[l], path[r] = path[r], path[l]
	}
	return path
}
