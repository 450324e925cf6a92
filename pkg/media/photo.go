package media

import (
	"bytes"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
)

// PhotoStore writes attendance photos below Dir, compressing large ones.
type PhotoStore struct {
	Dir      string
	MaxBytes int
}

// NewPhotoStore returns a store writing to dir with a 1 MB budget per photo.
func NewPhotoStore(dir string) *PhotoStore {
	return &PhotoStore{Dir: dir, MaxBytes: 1_000_000}
}

var unsafeName = regexp.MustCompile(`[^a-zA-Z0-9]+`)

// Save stores data as <owner>_<kind>_<timestamp>_<id>.jpg and returns the path.
// Images over the budget are downscaled; bytes that do not decode as an
// image are written unchanged.
func (p *PhotoStore) Save(owner, kind string, at time.Time, data []byte) (string, error) {
	if err := os.MkdirAll(p.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create photo dir: %w", err)
	}
	name := fmt.Sprintf("%s_%s_%s_%s.jpg",
		unsafeName.ReplaceAllString(owner, ""), kind, at.Format("20060102_150405"), uuid.NewString()[:8])
	dst := filepath.Join(p.Dir, name)

	if len(data) <= p.MaxBytes {
		return dst, os.WriteFile(dst, data, 0o644)
	}
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return dst, os.WriteFile(dst, data, 0o644)
	}
	// size roughly scales with area
	scale := math.Sqrt(float64(p.MaxBytes) / float64(len(data)))
	if scale < 0.1 {
		scale = 0.1
	}
	w := int(math.Max(1, math.Round(float64(img.Bounds().Dx())*scale)))
	img = imaging.Resize(img, w, 0, imaging.Lanczos)
	if err := imaging.Save(img, dst, imaging.JPEGQuality(75)); err != nil {
		return "", fmt.Errorf("save photo: %w", err)
	}
	return dst, nil
}
