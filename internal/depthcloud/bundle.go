package depthcloud

import (
	"compress/gzip"
	"encoding/gob"
	"fmt"
	"os"
)

// Prediction bundles are the on-disk handoff between the inference side
// and this exporter: one gob-encoded Prediction, gzip-compressed. The
// raw float arrays compress well and gob keeps the codec free of any
// schema files.

// WriteBundle writes pred to path as a gzipped gob blob.
func WriteBundle(path string, pred *Prediction) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating bundle %s: %w", path, err)
	}
	defer f.Close()

	gw := gzip.NewWriter(f)
	if err := gob.NewEncoder(gw).Encode(pred); err != nil {
		return fmt.Errorf("encoding bundle: %w", err)
	}
	if err := gw.Close(); err != nil {
		return fmt.Errorf("closing gzip stream: %w", err)
	}
	return f.Close()
}

// ReadBundle loads a Prediction previously written by WriteBundle.
func ReadBundle(path string) (*Prediction, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening bundle %s: %w", path, err)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("gunzip %s: %w", path, err)
	}
	defer gz.Close()

	var pred Prediction
	if err := gob.NewDecoder(gz).Decode(&pred); err != nil {
		return nil, fmt.Errorf("decoding bundle %s: %w", path, err)
	}
	return &pred, nil
}
