package depthcloud

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Encoding selects the PLY body encoding.
type Encoding int

const (
	// EncodingASCII writes one space-separated record per line.
	EncodingASCII Encoding = iota
	// EncodingBinary writes packed little-endian records.
	EncodingBinary
)

// String returns the PLY format token for the encoding.
func (e Encoding) String() string {
	if e == EncodingBinary {
		return "binary_little_endian"
	}
	return "ascii"
}

// plyHeader builds the header for a cloud of n vertices. Both encodings
// go through this single builder so the field order and type widths
// cannot drift between the text and binary paths.
func plyHeader(n int, enc Encoding) string {
	var b strings.Builder
	fmt.Fprintf(&b, "ply\nformat %s 1.0\n", enc)
	fmt.Fprintf(&b, "element vertex %d\n", n)
	b.WriteString("property float x\n")
	b.WriteString("property float y\n")
	b.WriteString("property float z\n")
	b.WriteString("property uchar red\n")
	b.WriteString("property uchar green\n")
	b.WriteString("property uchar blue\n")
	b.WriteString("end_header\n")
	return b.String()
}

// WritePLY serialises the cloud to path. Parent directories are created
// as needed and an existing file at path is replaced. The file is
// staged under a temporary name and renamed into place on success, so a
// failed write never leaves a partial file at the destination.
//
// An empty cloud is valid and produces a zero-vertex header with no
// body.
func WritePLY(path string, cloud *PointCloud, enc Encoding) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating export directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".ply-*")
	if err != nil {
		return fmt.Errorf("creating temp file in %s: %w", dir, err)
	}
	defer os.Remove(tmp.Name())

	w := bufio.NewWriter(tmp)
	if err := writePLYBody(w, cloud, enc); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("renaming into place: %w", err)
	}
	return nil
}

func writePLYBody(w io.Writer, cloud *PointCloud, enc Encoding) error {
	if _, err := io.WriteString(w, plyHeader(cloud.Len(), enc)); err != nil {
		return err
	}
	if enc == EncodingBinary {
		rec := make([]byte, 15) // 3x float32 + 3x uint8, no padding
		for _, p := range cloud.Points {
			binary.LittleEndian.PutUint32(rec[0:], math.Float32bits(p.X))
			binary.LittleEndian.PutUint32(rec[4:], math.Float32bits(p.Y))
			binary.LittleEndian.PutUint32(rec[8:], math.Float32bits(p.Z))
			rec[12], rec[13], rec[14] = p.R, p.G, p.B
			if _, err := w.Write(rec); err != nil {
				return err
			}
		}
		return nil
	}
	for _, p := range cloud.Points {
		if _, err := fmt.Fprintf(w, "%.6f %.6f %.6f %d %d %d\n",
			p.X, p.Y, p.Z, p.R, p.G, p.B); err != nil {
			return err
		}
	}
	return nil
}

// ReadPLY parses a PLY file written by WritePLY (either encoding) back
// into a point cloud. It understands exactly the vertex layout this
// package writes; anything else is rejected.
func ReadPLY(path string) (*PointCloud, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	r := bufio.NewReader(f)
	count := -1
	enc := EncodingASCII
	for lineNo := 0; ; lineNo++ {
		line, err := r.ReadString('\n')
		if err != nil {
			return nil, fmt.Errorf("%s: truncated header: %w", path, err)
		}
		line = strings.TrimSpace(line)
		switch {
		case lineNo == 0:
			if line != "ply" {
				return nil, fmt.Errorf("%s: not a PLY file", path)
			}
		case strings.HasPrefix(line, "format "):
			switch line {
			case "format ascii 1.0":
				enc = EncodingASCII
			case "format binary_little_endian 1.0":
				enc = EncodingBinary
			default:
				return nil, fmt.Errorf("%s: unsupported format %q", path, line)
			}
		case strings.HasPrefix(line, "element vertex "):
			count, err = strconv.Atoi(strings.TrimPrefix(line, "element vertex "))
			if err != nil {
				return nil, fmt.Errorf("%s: bad vertex count: %w", path, err)
			}
		case line == "end_header":
			if count < 0 {
				return nil, fmt.Errorf("%s: header missing vertex element", path)
			}
			return readPLYVertices(r, count, enc, path)
		}
	}
}

func readPLYVertices(r *bufio.Reader, count int, enc Encoding, path string) (*PointCloud, error) {
	cloud := &PointCloud{Points: make([]Point, 0, count)}
	if enc == EncodingBinary {
		rec := make([]byte, 15)
		for i := 0; i < count; i++ {
			if _, err := io.ReadFull(r, rec); err != nil {
				return nil, fmt.Errorf("%s: vertex %d: %w", path, i, err)
			}
			cloud.Points = append(cloud.Points, Point{
				X: math.Float32frombits(binary.LittleEndian.Uint32(rec[0:])),
				Y: math.Float32frombits(binary.LittleEndian.Uint32(rec[4:])),
				Z: math.Float32frombits(binary.LittleEndian.Uint32(rec[8:])),
				R: rec[12], G: rec[13], B: rec[14],
			})
		}
		return cloud, nil
	}
	for i := 0; i < count; i++ {
		line, err := r.ReadString('\n')
		if err != nil && !(err == io.EOF && line != "") {
			return nil, fmt.Errorf("%s: vertex %d: %w", path, i, err)
		}
		var p Point
		if _, err := fmt.Sscanf(strings.TrimSpace(line), "%f %f %f %d %d %d",
			&p.X, &p.Y, &p.Z, &p.R, &p.G, &p.B); err != nil {
			return nil, fmt.Errorf("%s: vertex %d: %w", path, i, err)
		}
		cloud.Points = append(cloud.Points, p)
	}
	return cloud, nil
}
