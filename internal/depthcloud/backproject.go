package depthcloud

import (
	"fmt"
	"math"
)

// Backproject maps every pixel of every frame into world coordinates
// using the pinhole model:
//
//	x_cam = (u - cx) * d / fx
//	y_cam = (v - cy) * d / fy
//	z_cam = d
//
// and the frame's pose. Extrinsics follow the OpenCV convention used by
// the upstream model: each Matrix4 maps world to camera, so the inverse
// carries camera-space points into the shared world frame. The
// convention is pinned by TestBackprojectKnownPose against a translated
// camera fixture.
//
// Pixels with non-positive or non-finite depth are degenerate and are
// dropped here so NaN/Inf can never reach the output file. Confidence
// is NOT applied here; the returned conf slice pairs 1:1 with the
// returned points for the downstream filter.
func Backproject(pred *Prediction) (*PointCloud, []float32, error) {
	cloud := &PointCloud{Points: make([]Point, 0, pred.PixelCount())}
	conf := make([]float32, 0, pred.PixelCount())

	for f := 0; f < pred.Frames; f++ {
		k := pred.Intrinsics[f]
		fx, fy := k.Fx(), k.Fy()
		cx, cy := k.Cx(), k.Cy()
		if fx == 0 || fy == 0 {
			return nil, nil, fmt.Errorf("frame %d: zero focal length in intrinsics", f)
		}

		camToWorld, err := pred.Extrinsics[f].Inverse()
		if err != nil {
			return nil, nil, fmt.Errorf("frame %d: %w", f, err)
		}

		for v := 0; v < pred.Height; v++ {
			for u := 0; u < pred.Width; u++ {
				i := pred.Index(f, v, u)
				d := float64(pred.Depth[i])
				if !(d > 0) || math.IsInf(d, 0) {
					continue
				}
				xc := (float64(u) - cx) * d / fx
				yc := (float64(v) - cy) * d / fy
				wx, wy, wz := camToWorld.Apply(xc, yc, d)

				cloud.Points = append(cloud.Points, Point{
					X: float32(wx), Y: float32(wy), Z: float32(wz),
					R: pred.Images[3*i], G: pred.Images[3*i+1], B: pred.Images[3*i+2],
				})
				conf = append(conf, pred.Conf[i])
			}
		}
	}
	return cloud, conf, nil
}
