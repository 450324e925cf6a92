package media

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Spool waits for the gateway to drop the media file into a shared
// directory. A file is read once it has stopped changing for Settle.
type Spool struct {
	Dir    string
	Settle time.Duration
}

func (s *Spool) Name() string { return "spool" }

func (s *Spool) Fetch(ctx context.Context, ref Ref) ([]byte, error) {
	if s.Dir == "" || ref.SpoolFile == "" {
		return nil, ErrNotApplicable
	}
	name := filepath.Base(ref.SpoolFile)
	path := filepath.Join(s.Dir, name)
	settle := s.Settle
	if settle <= 0 {
		settle = 300 * time.Millisecond
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	defer w.Close()
	if err := w.Add(s.Dir); err != nil {
		return nil, err
	}
	// the file may have landed before the watch started
	if b, err := os.ReadFile(path); err == nil && len(b) > 0 {
		if fi, err := os.Stat(path); err == nil && time.Since(fi.ModTime()) > settle {
			return b, nil
		}
	}

	lastEvent := time.Now()
	ticker := time.NewTicker(settle / 2)
	defer ticker.Stop()
	seen := fileExists(path)
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case ev, ok := <-w.Events:
			if !ok {
				return nil, errors.New("spool watcher closed")
			}
			if filepath.Base(ev.Name) != name {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) != 0 {
				seen = true
				lastEvent = time.Now()
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil, errors.New("spool watcher closed")
			}
			return nil, err
		case <-ticker.C:
			if seen && time.Since(lastEvent) > settle {
				b, err := os.ReadFile(path)
				if err == nil && len(b) > 0 {
					return b, nil
				}
			}
		}
	}
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
