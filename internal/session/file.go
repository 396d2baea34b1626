package session

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/coder/quartz"

	"github.com/alextwoods/woodsgames/internal/fileutil"
	"github.com/alextwoods/woodsgames/internal/gameid"
)

// FileStore keeps one JSON file per session under a directory.
type FileStore struct {
	dir   string
	clock quartz.Clock
}

// NewFileStore creates dir if needed.
func NewFileStore(dir string, clock quartz.Clock) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create session dir: %w", err)
	}
	if clock == nil {
		clock = quartz.NewReal()
	}
	return &FileStore{dir: dir, clock: clock}, nil
}

func (f *FileStore) path(id string) (string, error) {
	if err := gameid.Validate(id); err != nil {
		return "", ErrNotFound
	}
	return filepath.Join(f.dir, id+".json"), nil
}

func (f *FileStore) Get(_ context.Context, id string) (*Session, error) {
	path, err := f.path(id)
	if err != nil {
		return nil, err
	}
	return f.read(path)
}

func (f *FileStore) read(path string) (*Session, error) {
	var s Session
	if err := fileutil.ReadJSON(path, &s); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if s.Expired(f.clock.Now()) {
		return nil, ErrNotFound
	}
	return &s, nil
}

func (f *FileStore) Put(_ context.Context, s *Session) error {
	path, err := f.path(s.ID)
	if err != nil {
		return fmt.Errorf("invalid session id %q", s.ID)
	}
	return fileutil.WriteJSONAtomic(path, s)
}

func (f *FileStore) Delete(_ context.Context, id string) error {
	path, err := f.path(id)
	if err != nil {
		return nil
	}
	return fileutil.RemoveIfExists(path)
}

// ListByRoom scans the directory; expired files are skipped, not removed.
func (f *FileStore) ListByRoom(ctx context.Context, room string, kind Kind) ([]*Session, error) {
	entries, err := os.ReadDir(f.dir)
	if err != nil {
		return nil, fmt.Errorf("read session dir: %w", err)
	}

	var out []*Session
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		s, err := f.read(filepath.Join(f.dir, e.Name()))
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if s.Room == room && s.Kind == kind {
			out = append(out, s)
		}
	}
	sortByUpdated(out)
	return out, nil
}
