package depthcloud

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Matrix3 is a row-major 3x3 camera intrinsic matrix:
// [fx 0 cx, 0 fy cy, 0 0 1].
type Matrix3 [9]float64

// Fx, Fy return the focal lengths; Cx, Cy the principal point.
func (m Matrix3) Fx() float64 { return m[0] }
func (m Matrix3) Fy() float64 { return m[4] }
func (m Matrix3) Cx() float64 { return m[2] }
func (m Matrix3) Cy() float64 { return m[5] }

// Matrix4 is a row-major 4x4 homogeneous transform:
// [m00,m01,m02,m03, m10,m11,m12,m13, m20,m21,m22,m23, m30,m31,m32,m33].
type Matrix4 [16]float64

// IdentityMatrix4 is the identity pose transform.
var IdentityMatrix4 = Matrix4{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1}

// HomogeneousFrom3x4 pads a row-major 3x4 [R|t] matrix to a full 4x4
// homogeneous transform by appending the row [0 0 0 1].
func HomogeneousFrom3x4(rt [12]float64) Matrix4 {
	var m Matrix4
	copy(m[:12], rt[:])
	m[15] = 1
	return m
}

// Apply transforms the point (x,y,z) by m, returning the transformed
// coordinates. The homogeneous w component is assumed to be 1.
func (m Matrix4) Apply(x, y, z float64) (tx, ty, tz float64) {
	tx = m[0]*x + m[1]*y + m[2]*z + m[3]
	ty = m[4]*x + m[5]*y + m[6]*z + m[7]
	tz = m[8]*x + m[9]*y + m[10]*z + m[11]
	return
}

// Inverse returns the inverse of m. Pose matrices from a calibrated
// camera are always invertible; a singular matrix is reported as an
// error rather than propagated as NaNs.
func (m Matrix4) Inverse() (Matrix4, error) {
	src := mat.NewDense(4, 4, m[:])
	var inv mat.Dense
	if err := inv.Inverse(src); err != nil {
		return Matrix4{}, fmt.Errorf("singular pose matrix: %w", err)
	}
	var out Matrix4
	copy(out[:], inv.RawMatrix().Data)
	return out, nil
}

// Prediction is the per-frame output of the depth estimation model, as
// handed to the export pipeline. All per-pixel slices are row-major
// (frame, row, column); Images carries three bytes per pixel (RGB).
//
// Conf and Depth are mutated in place by the sky and background
// adjustment stages, matching the upstream model's contract that the
// record is consumed by at most one export call.
type Prediction struct {
	Frames int
	Height int
	Width  int

	Depth      []float32 // Frames*Height*Width
	Conf       []float32 // Frames*Height*Width
	Images     []uint8   // Frames*Height*Width*3, RGB
	Intrinsics []Matrix3 // per frame
	Extrinsics []Matrix4 // per frame, world-to-camera (see Backproject)
	SkyMask    []bool    // optional, Frames*Height*Width
}

// PixelCount returns the number of pixels across all frames.
func (p *Prediction) PixelCount() int {
	return p.Frames * p.Height * p.Width
}

// Index returns the flat index of pixel (row v, column u) in frame f.
func (p *Prediction) Index(f, v, u int) int {
	return (f*p.Height+v)*p.Width + u
}

// Validate checks that every field required by the export pipeline is
// present and dimensionally consistent. A missing field is a contract
// violation on the caller's side and is reported by name before any
// processing starts.
func (p *Prediction) Validate() error {
	if p == nil {
		return fmt.Errorf("prediction is nil")
	}
	// Zero-area frames are legal and back-project to nothing; only
	// negative dimensions are nonsense.
	if p.Frames < 0 || p.Height < 0 || p.Width < 0 {
		return fmt.Errorf("prediction has negative dimensions %dx%dx%d", p.Frames, p.Height, p.Width)
	}
	n := p.PixelCount()
	switch {
	case p.Depth == nil:
		return fmt.Errorf("prediction.depth is required but not available")
	case p.Conf == nil:
		return fmt.Errorf("prediction.conf is required but not available")
	case p.Intrinsics == nil:
		return fmt.Errorf("prediction.intrinsics is required but not available")
	case p.Extrinsics == nil:
		return fmt.Errorf("prediction.extrinsics is required but not available")
	case p.Images == nil:
		return fmt.Errorf("prediction.images is required but not available")
	}
	if len(p.Depth) != n {
		return fmt.Errorf("depth has %d values, want %d", len(p.Depth), n)
	}
	if len(p.Conf) != n {
		return fmt.Errorf("conf has %d values, want %d", len(p.Conf), n)
	}
	if len(p.Images) != 3*n {
		return fmt.Errorf("images has %d bytes, want %d", len(p.Images), 3*n)
	}
	if len(p.Intrinsics) != p.Frames {
		return fmt.Errorf("intrinsics has %d frames, want %d", len(p.Intrinsics), p.Frames)
	}
	if len(p.Extrinsics) != p.Frames {
		return fmt.Errorf("extrinsics has %d frames, want %d", len(p.Extrinsics), p.Frames)
	}
	if p.SkyMask != nil && len(p.SkyMask) != n {
		return fmt.Errorf("sky mask has %d values, want %d", len(p.SkyMask), n)
	}
	return nil
}

// Point is one colored point of a cloud in world coordinates.
type Point struct {
	X, Y, Z float32
	R, G, B uint8
}

// PointCloud is the transient output of back-projection: an ordered set
// of colored world points. It carries no other metadata and lives only
// for the duration of one export call.
type PointCloud struct {
	Points []Point
}

// Len returns the number of points in the cloud.
func (pc *PointCloud) Len() int {
	if pc == nil {
		return 0
	}
	return len(pc.Points)
}
