package depthcloud

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// WriteConfHistogram renders the confidence distribution and the chosen
// cutoff to a PNG at path. This is a debugging artifact for tuning the
// percentile parameters; it plays no part in the exported cloud.
func WriteConfHistogram(path string, conf []float32, cutoff float64) error {
	if len(conf) == 0 {
		return fmt.Errorf("confidence histogram: no values")
	}

	vals := make(plotter.Values, len(conf))
	lo, hi := float64(conf[0]), float64(conf[0])
	for i, c := range conf {
		v := float64(c)
		vals[i] = v
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}

	p := plot.New()
	p.Title.Text = "confidence distribution"
	p.X.Label.Text = "confidence"
	p.Y.Label.Text = "pixels"

	h, err := plotter.NewHist(vals, 64)
	if err != nil {
		return fmt.Errorf("confidence histogram: %w", err)
	}
	p.Add(h)

	// Vertical marker at the cutoff, full plot height.
	if cutoff >= lo && cutoff <= hi {
		top := 0.0
		for _, bin := range h.Bins {
			if bin.Weight > top {
				top = bin.Weight
			}
		}
		marker, err := plotter.NewLine(plotter.XYs{
			{X: cutoff, Y: 0},
			{X: cutoff, Y: top},
		})
		if err != nil {
			return fmt.Errorf("confidence histogram: %w", err)
		}
		marker.Width = vg.Points(2)
		marker.Color = color.RGBA{R: 200, A: 255}
		p.Add(marker)
		p.Legend.Add(fmt.Sprintf("cutoff %.4f", cutoff), marker)
	}

	if err := p.Save(8*vg.Inch, 5*vg.Inch, path); err != nil {
		return fmt.Errorf("confidence histogram: saving %s: %w", path, err)
	}
	return nil
}
