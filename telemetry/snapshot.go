package telemetry

import (
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/anthonynsimon/bild/imgio"
)

// Snapshotter saves composited frames as PNG files at a fixed frame interval.
// A nil Snapshotter is disabled.
type Snapshotter struct {
	dir   string
	every int64
	saved int
}

// NewSnapshotter returns nil when dir is empty or every is not positive.
func NewSnapshotter(dir string, every int64) (*Snapshotter, error) {
	if dir == "" || every <= 0 {
		return nil, nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating snapshot directory: %w", err)
	}
	return &Snapshotter{dir: dir, every: every}, nil
}

// Due reports whether frame should be captured.
func (s *Snapshotter) Due(frame int64) bool {
	return s != nil && frame > 0 && frame%s.every == 0
}

// Path returns the file name used for frame.
func (s *Snapshotter) Path(frame int64) string {
	return filepath.Join(s.dir, fmt.Sprintf("frame_%08d.png", frame))
}

// Save writes img for frame and returns the path written.
func (s *Snapshotter) Save(frame int64, img image.Image) (string, error) {
	if s == nil {
		return "", nil
	}
	path := s.Path(frame)
	if err := imgio.Save(path, img, imgio.PNGEncoder()); err != nil {
		return "", fmt.Errorf("saving snapshot %s: %w", path, err)
	}
	s.saved++
	return path, nil
}

// Saved returns how many snapshots were written.
func (s *Snapshotter) Saved() int {
	if s == nil {
		return 0
	}
	return s.saved
}
