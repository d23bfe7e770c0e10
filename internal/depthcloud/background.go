package depthcloud

// Channel cutoffs for background detection. A pixel counts as background
// only when all three channels fall on the same side of a cutoff.
const (
	blackBgCutoff = 16  // near-black: every channel < 16
	whiteBgCutoff = 240 // near-white: every channel >= 240
)

// MaskBackground forces the confidence of near-black and/or near-white
// pixels to SentinelConf so they are dropped at the filtering stage no
// matter what cutoff the thresholder computes. Studio and green-screen
// backdrops are capture artifacts, not scene geometry.
//
// Mutates pred.Conf in place.
func MaskBackground(pred *Prediction, filterBlack, filterWhite bool) {
	if !filterBlack && !filterWhite {
		return
	}
	for i := 0; i < pred.PixelCount(); i++ {
		r := pred.Images[3*i]
		g := pred.Images[3*i+1]
		b := pred.Images[3*i+2]
		if filterBlack && r < blackBgCutoff && g < blackBgCutoff && b < blackBgCutoff {
			pred.Conf[i] = SentinelConf
		}
		if filterWhite && r >= whiteBgCutoff && g >= whiteBgCutoff && b >= whiteBgCutoff {
			pred.Conf[i] = SentinelConf
		}
	}
}
