package logtail

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Follow copies data appended to path into w until ctx is done. It starts
// at the current end of the file, restarts from the beginning when the file
// is truncated or replaced, and waits for the file if it does not exist yet.
func Follow(ctx context.Context, path string, w io.Writer) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve log path: %w", err)
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	// Watch the directory so rotation and late creation are seen.
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	var offset int64
	if fi, err := os.Stat(abs); err == nil {
		offset = fi.Size()
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if ev.Name != abs {
				continue
			}
			switch {
			case ev.Has(fsnotify.Create):
				offset = 0
				fallthrough
			case ev.Has(fsnotify.Write):
				offset, err = copyFrom(abs, offset, w)
				if err != nil {
					return err
				}
			case ev.Has(fsnotify.Remove), ev.Has(fsnotify.Rename):
				offset = 0
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watch log: %w", err)
		}
	}
}

// copyFrom writes the bytes of path after offset to w and returns the new
// offset. A file shorter than offset was truncated and is read from 0.
func copyFrom(path string, offset int64, w io.Writer) (int64, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return offset, fmt.Errorf("open log: %w", err)
	}
	defer func() { _ = f.Close() }()

	fi, err := f.Stat()
	if err != nil {
		return offset, fmt.Errorf("stat log: %w", err)
	}
	if fi.Size() < offset {
		offset = 0
	}
	if _, err := f.Seek(offset, io.SeekStart); err != nil {
		return offset, fmt.Errorf("seek log: %w", err)
	}
	n, err := io.Copy(w, f)
	if err != nil {
		return offset + n, fmt.Errorf("copy log: %w", err)
	}
	return offset + n, nil
}
