package relight

import (
	"fmt"

	"github.com/codahale/hdrhistogram"
	"github.com/skypies/util/histogram"
	"gonum.org/v1/gonum/stat"

	"github.com/abworrall/olat-relight/pkg/emath"
)

// Linear luma is recorded in thousandths, up to this.
const maxLinearMilli = 100000 * 1000

// FrameStats is a summary of a rendered frame, for judging exposure.
type FrameStats struct {
	Pixels  int
	Clipped int // Display value exceeded 1 in some channel before quantizing

	MeanLuma   float64 // Of the display values
	StdDevLuma float64

	LinearP50 float64 // Percentiles of the pre-tonemap luma
	LinearP99 float64
	LinearMax float64

	Hist histogram.Histogram // Display luma, in 256 buckets of 8 bit values
}

func luma(v emath.Vec3) float64 {
	return 0.2126*v[0] + 0.7152*v[1] + 0.0722*v[2]
}

func ComputeStats(f *Frame) (FrameStats, error) {
	st := FrameStats{
		Hist: histogram.Histogram{NumBuckets: 256, ValMin: 0, ValMax: 256},
	}
	lin := hdrhistogram.New(1, maxLinearMilli, 3)
	lumas := []float64{}

	b := f.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			st.Pixels++
			d := f.DisplayAt(x, y)
			if d.Max() > 1.0 {
				st.Clipped++
			}

			l := luma(d)
			lumas = append(lumas, l)
			st.Hist.Add(histogram.ScalarVal(int(emath.Clamp01(l) * 255.0)))

			ll := luma(f.LinearAt(x, y))
			if err := lin.RecordValue(int64(emath.Clamp(ll*1000, 0, maxLinearMilli))); err != nil {
				return st, fmt.Errorf("frame stats at (%d,%d): %w", x, y, err)
			}
		}
	}

	if st.Pixels > 0 {
		st.MeanLuma, st.StdDevLuma = stat.MeanStdDev(lumas, nil)
		st.LinearP50 = float64(lin.ValueAtQuantile(50)) / 1000
		st.LinearP99 = float64(lin.ValueAtQuantile(99)) / 1000
		st.LinearMax = float64(lin.Max()) / 1000
	}

	return st, nil
}

func (st FrameStats) String() string {
	clippedPct := 0.0
	if st.Pixels > 0 {
		clippedPct = 100 * float64(st.Clipped) / float64(st.Pixels)
	}
	return fmt.Sprintf("%d pixels, %d clipped (%.2f%%), luma %.3f+-%.3f, linear p50=%.3f p99=%.3f max=%.3f\n%v",
		st.Pixels, st.Clipped, clippedPct, st.MeanLuma, st.StdDevLuma, st.LinearP50, st.LinearP99, st.LinearMax, &st.Hist)
}
