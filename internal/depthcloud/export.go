package depthcloud

import (
	"fmt"
	"log"
	"math/rand"
	"path/filepath"
)

// ExportFileName is the canonical output filename; one export call
// writes exactly one file under the chosen directory.
const ExportFileName = "scene.ply"

// Options are the tunable parameters of one export call. Zero value is
// not useful; start from DefaultOptions.
type Options struct {
	// MaxPoints caps the number of points written after filtering.
	MaxPoints int
	// ConfThresh is the base confidence threshold before percentile
	// adjustment. It must sit above SentinelConf for background
	// masking to work.
	ConfThresh float64
	// FilterBlackBg / FilterWhiteBg discard near-black / near-white
	// pixels as backdrop rather than geometry.
	FilterBlackBg bool
	FilterWhiteBg bool
	// ConfThreshPercentile and EnsureThreshPercentile shape the
	// adaptive cutoff; see ConfThreshold.
	ConfThreshPercentile   float64
	EnsureThreshPercentile float64
	// SkyDepthPercentile picks the fill depth for sky pixels.
	SkyDepthPercentile float64
	// Binary selects the packed little-endian encoding over text.
	Binary bool
	// Rand, when set, makes downsampling deterministic.
	Rand *rand.Rand
}

// DefaultOptions returns the tuning used by the upstream model's own
// exports.
func DefaultOptions() Options {
	return Options{
		MaxPoints:              1_000_000,
		ConfThresh:             1.05,
		ConfThreshPercentile:   40.0,
		EnsureThreshPercentile: 90.0,
		SkyDepthPercentile:     98.0,
	}
}

// Result describes one completed export.
type Result struct {
	// Path is the absolute path of the written file.
	Path string
	// RawPoints counts the back-projected points before filtering;
	// KeptPoints the points actually written.
	RawPoints  int
	KeptPoints int
	// ConfCutoff is the adaptive threshold the filter applied.
	ConfCutoff float64
}

// Export runs the full pipeline over pred and writes a colored point
// cloud to exportDir/scene.ply, returning the absolute path of the
// written file.
//
// Stages, in order: validate, fill sky depth, mask background pixels,
// compute the adaptive confidence cutoff, back-project to world
// coordinates, filter by confidence, downsample to budget, serialise.
// pred.Depth and pred.Conf are mutated in place by the adjustment
// stages; the record should not be reused for a second export.
func Export(pred *Prediction, exportDir string, opts Options) (string, error) {
	res, err := ExportWithResult(pred, exportDir, opts)
	if err != nil {
		return "", err
	}
	return res.Path, nil
}

// ExportWithResult is Export plus the run statistics callers persist in
// the export-run log.
func ExportWithResult(pred *Prediction, exportDir string, opts Options) (*Result, error) {
	if err := pred.Validate(); err != nil {
		return nil, fmt.Errorf("export to PLY: %w", err)
	}

	log.Printf("exporting point cloud (max points %d)", opts.MaxPoints)

	if pred.SkyMask != nil {
		FillSkyDepth(pred, pred.SkyMask, opts.SkyDepthPercentile)
	}
	MaskBackground(pred, opts.FilterBlackBg, opts.FilterWhiteBg)

	cutoff := ConfThreshold(pred.Conf, pred.SkyMask,
		opts.ConfThresh, opts.ConfThreshPercentile, opts.EnsureThreshPercentile)

	cloud, conf, err := Backproject(pred)
	if err != nil {
		return nil, fmt.Errorf("export to PLY: %w", err)
	}
	raw := cloud.Len()

	cloud, _ = FilterByConf(cloud, conf, cutoff)
	cloud = Downsample(cloud, opts.MaxPoints, opts.Rand)

	absDir, err := filepath.Abs(exportDir)
	if err != nil {
		return nil, fmt.Errorf("export to PLY: resolving %s: %w", exportDir, err)
	}
	outPath := filepath.Join(absDir, ExportFileName)

	enc := EncodingASCII
	if opts.Binary {
		enc = EncodingBinary
	}
	if err := WritePLY(outPath, cloud, enc); err != nil {
		return nil, fmt.Errorf("export to PLY: %w", err)
	}

	log.Printf("exported %d of %d back-projected points to %s (cutoff %.4f)",
		cloud.Len(), raw, outPath, cutoff)
	return &Result{
		Path:       outPath,
		RawPoints:  raw,
		KeptPoints: cloud.Len(),
		ConfCutoff: cutoff,
	}, nil
}
