package depthcloud

import (
	"math/rand"
	"os"
	"path/filepath"
	"testing"
)

func TestWriteConfHistogram(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	conf := make([]float32, 2000)
	for i := range conf {
		conf[i] = 1.0 + rng.Float32()
	}

	path := filepath.Join(t.TempDir(), "conf.png")
	if err := WriteConfHistogram(path, conf, 1.4); err != nil {
		t.Fatalf("WriteConfHistogram: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Size() == 0 {
		t.Error("histogram PNG is empty")
	}
}

func TestWriteConfHistogramNoValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf.png")
	if err := WriteConfHistogram(path, nil, 1.0); err == nil {
		t.Fatal("expected error for empty confidence slice")
	}
}
