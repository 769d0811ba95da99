package rollup

import "math"

// VCR computes the video completion rate as a percentage rounded to two
// decimal places. Zero impressions yield 0. The ratio is not clamped to 100;
// completes exceeding impressions surface as values above 100 so source
// data-quality problems stay visible.
func VCR(completes, impressions int64) float64 {
	if impressions <= 0 {
		return 0
	}
	pct := float64(completes) / float64(impressions) * 100
	return math.Round(pct*100) / 100
}
