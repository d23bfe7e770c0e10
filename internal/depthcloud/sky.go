package depthcloud

import "math"

// FillSkyDepth rewrites the depth of every sky-masked pixel with the
// pct-percentile depth of the same frame's non-sky pixels. Sky regions
// have unreliable (often unbounded) true depth; substituting a far but
// finite value keeps their back-projections bounded instead of pushing
// NaNs or extreme outliers into the cloud.
//
// The replacement population is per frame, not global: an empirical
// quantile of a frame's own non-sky depths always lies inside that
// frame's depth range. Frames that are entirely sky, or whose non-sky
// depths are all degenerate, are left untouched.
//
// Mutates pred.Depth in place. A nil mask is a no-op.
func FillSkyDepth(pred *Prediction, mask []bool, pct float64) {
	if mask == nil {
		return
	}
	frameLen := pred.Height * pred.Width
	vals := make([]float64, 0, frameLen)
	for f := 0; f < pred.Frames; f++ {
		start := f * frameLen
		vals = vals[:0]
		for i := start; i < start+frameLen; i++ {
			d := float64(pred.Depth[i])
			if mask[i] || !(d > 0) || math.IsInf(d, 0) {
				continue
			}
			vals = append(vals, d)
		}
		if len(vals) == 0 {
			continue
		}
		fill := float32(quantile(vals, pct))
		for i := start; i < start+frameLen; i++ {
			if mask[i] {
				pred.Depth[i] = fill
			}
		}
	}
}
