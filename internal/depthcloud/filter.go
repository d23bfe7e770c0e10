package depthcloud

import (
	"math/rand"
	"sort"
)

// FilterByConf drops every point whose paired confidence falls below
// cutoff, returning the surviving points and their confidences. Points
// at or below SentinelConf are dropped unconditionally: the background
// masker's promise is discard regardless of the computed threshold,
// which the ensure-percentile clamp could otherwise undercut. Input
// order is preserved, so applying the same cutoff to an already
// filtered set is a no-op.
func FilterByConf(cloud *PointCloud, conf []float32, cutoff float64) (*PointCloud, []float32) {
	kept := &PointCloud{Points: make([]Point, 0, cloud.Len())}
	keptConf := make([]float32, 0, len(conf))
	for i, p := range cloud.Points {
		if c := float64(conf[i]); c <= SentinelConf || c < cutoff {
			continue
		}
		kept.Points = append(kept.Points, p)
		keptConf = append(keptConf, conf[i])
	}
	return kept, keptConf
}

// Downsample reduces cloud to at most maxPoints by uniform random
// selection over the whole set; selection has no spatial bias because
// every index is equally likely. The chosen points keep their original
// relative order. Clouds already within budget are returned unchanged.
//
// rng may be nil, in which case the shared global source is used;
// callers that need deterministic output inject their own *rand.Rand.
func Downsample(cloud *PointCloud, maxPoints int, rng *rand.Rand) *PointCloud {
	if maxPoints <= 0 || cloud.Len() <= maxPoints {
		return cloud
	}

	perm := func(n int) []int {
		if rng != nil {
			return rng.Perm(n)
		}
		return rand.Perm(n)
	}(cloud.Len())

	idx := perm[:maxPoints]
	sort.Ints(idx)

	out := &PointCloud{Points: make([]Point, 0, maxPoints)}
	for _, i := range idx {
		out.Points = append(out.Points, cloud.Points[i])
	}
	return out
}
