// Command depthcloud converts a prediction bundle (depth, confidence,
// camera parameters and colors from the depth estimation model) into a
// colored PLY point cloud.
package main

import (
	"flag"
	"log"
	"math/rand"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/banshee-data/depthcloud/internal/clouddb"
	"github.com/banshee-data/depthcloud/internal/depthcloud"
	"github.com/banshee-data/depthcloud/internal/version"
)

var (
	bundlePath = flag.String("bundle", "", "Path to the gzipped gob prediction bundle (required)")
	exportDir  = flag.String("out", "export", "Output directory for scene.ply")
	dbFile     = flag.String("db", "", "Optional SQLite database recording export runs")
	binaryPLY  = flag.Bool("binary", false, "Write binary little-endian PLY instead of ascii")
	maxPoints  = flag.Int("max-points", 1_000_000, "Maximum number of points retained after downsampling")
	confThresh = flag.Float64("conf-thresh", 1.05, "Base confidence threshold before percentile adjustment")
	confPct    = flag.Float64("conf-percentile", 40.0, "Lower percentile for the adaptive confidence threshold")
	ensurePct  = flag.Float64("ensure-percentile", 90.0, "Upper percentile clamp for the adaptive threshold")
	skyPct     = flag.Float64("sky-percentile", 98.0, "Depth percentile used to fill sky pixels")
	filterBlk  = flag.Bool("filter-black-bg", false, "Discard near-black background pixels")
	filterWht  = flag.Bool("filter-white-bg", false, "Discard near-white background pixels")
	confHist   = flag.String("conf-hist", "", "Optional path for a confidence histogram PNG")
	seed       = flag.Int64("seed", 0, "Random seed for downsampling (0 = time-seeded)")
)

func optionsFromFlags() depthcloud.Options {
	opts := depthcloud.Options{
		MaxPoints:              *maxPoints,
		ConfThresh:             *confThresh,
		ConfThreshPercentile:   *confPct,
		EnsureThreshPercentile: *ensurePct,
		SkyDepthPercentile:     *skyPct,
		FilterBlackBg:          *filterBlk,
		FilterWhiteBg:          *filterWht,
		Binary:                 *binaryPLY,
	}
	if *seed != 0 {
		opts.Rand = rand.New(rand.NewSource(*seed))
	}
	return opts
}

func main() {
	flag.Parse()
	log.Println(version.String())
	if *bundlePath == "" {
		log.Fatal("missing required -bundle flag")
	}

	pred, err := depthcloud.ReadBundle(*bundlePath)
	if err != nil {
		log.Fatalf("loading prediction bundle: %v", err)
	}
	log.Printf("loaded prediction bundle: %d frames of %dx%d from %s",
		pred.Frames, pred.Width, pred.Height, filepath.Base(*bundlePath))

	opts := optionsFromFlags()
	enc := depthcloud.EncodingASCII
	if opts.Binary {
		enc = depthcloud.EncodingBinary
	}

	var db *clouddb.CloudDB
	runID := uuid.NewString()
	if *dbFile != "" {
		db, err = clouddb.Open(*dbFile)
		if err != nil {
			log.Fatalf("opening run-log database: %v", err)
		}
		defer db.Close()
		if err := db.InsertRun(runID, enc.String(), time.Now()); err != nil {
			log.Fatalf("recording export run: %v", err)
		}
	}

	start := time.Now()
	res, err := depthcloud.ExportWithResult(pred, *exportDir, opts)
	if err != nil {
		if db != nil {
			if ferr := db.FailRun(runID, err.Error(), time.Since(start)); ferr != nil {
				log.Printf("recording failed run: %v", ferr)
			}
		}
		log.Fatalf("export failed: %v", err)
	}

	if db != nil {
		if err := db.CompleteRun(runID, res.Path, res.RawPoints, res.KeptPoints,
			res.ConfCutoff, time.Since(start)); err != nil {
			log.Printf("recording completed run: %v", err)
		}
	}

	// pred.Conf now carries the sky/background adjustments the cutoff
	// was computed against, which is the distribution worth plotting.
	if *confHist != "" {
		if err := depthcloud.WriteConfHistogram(*confHist, pred.Conf, res.ConfCutoff); err != nil {
			log.Printf("confidence histogram: %v", err)
		} else {
			log.Printf("wrote confidence histogram to %s", *confHist)
		}
	}

	log.Printf("export %s complete: %s (%d points, %.2fs)",
		runID, res.Path, res.KeptPoints, time.Since(start).Seconds())
}
