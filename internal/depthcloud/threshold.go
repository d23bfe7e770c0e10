package depthcloud

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// SentinelConf is the confidence value forced onto background pixels.
// It sits below every useful base threshold (default 1.05), so marked
// pixels are discarded regardless of the adaptive cutoff.
const SentinelConf = 1.0

// quantile returns the empirical quantile of vals at percentile pct
// (0-100). vals is sorted in place.
func quantile(vals []float64, pct float64) float64 {
	sort.Float64s(vals)
	return stat.Quantile(pct/100, stat.Empirical, vals, nil)
}

// ConfThreshold computes the single confidence cutoff applied across all
// frames. The cutoff is the quantile of the (post-adjustment) confidence
// distribution at confPct, floored at base and clamped above by the
// quantile at ensurePct. Sky pixels are excluded from the population when
// a mask is present: their confidence no longer reflects real geometry
// once the sky filler has rewritten their depth.
//
// A fixed absolute threshold is unstable across scenes; the upper clamp
// keeps near-uniform high-confidence scenes from discarding almost
// everything, and the floor keeps low-confidence scenes from admitting
// pure noise.
func ConfThreshold(conf []float32, skyMask []bool, base, confPct, ensurePct float64) float64 {
	vals := make([]float64, 0, len(conf))
	for i, c := range conf {
		if skyMask != nil && skyMask[i] {
			continue
		}
		vals = append(vals, float64(c))
	}
	if len(vals) == 0 {
		return base
	}
	lo := quantile(vals, confPct)
	hi := stat.Quantile(ensurePct/100, stat.Empirical, vals, nil)
	thr := lo
	if thr < base {
		thr = base
	}
	if thr > hi {
		thr = hi
	}
	return thr
}
