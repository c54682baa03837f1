package trend

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Store is the injected snapshot history capability. The predictor itself
// never reads or writes; callers load history, predict, then append the
// current batch's snapshot.
type Store interface {
	History(ctx context.Context) ([]Snapshot, error)
	Append(ctx context.Context, s Snapshot) error
}

// maxHistory bounds the retained snapshot window.
const maxHistory = 288

// FileStore keeps snapshot history in a single JSON file. Writes go through
// a temp file plus rename so a crash never leaves a half-written history.
type FileStore struct {
	Path string
}

// NewFileStore creates the parent directory if needed.
func NewFileStore(path string) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create snapshot dir: %w", err)
	}
	return &FileStore{Path: path}, nil
}

func (fs *FileStore) History(_ context.Context) ([]Snapshot, error) {
	data, err := os.ReadFile(fs.Path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot history: %w", err)
	}
	var history []Snapshot
	if err := json.Unmarshal(data, &history); err != nil {
		return nil, fmt.Errorf("parse snapshot history: %w", err)
	}
	return history, nil
}

func (fs *FileStore) Append(ctx context.Context, s Snapshot) error {
	history, err := fs.History(ctx)
	if err != nil {
		return err
	}
	history = append(history, s)
	if len(history) > maxHistory {
		history = history[len(history)-maxHistory:]
	}

	data, err := json.MarshalIndent(history, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot history: %w", err)
	}
	tmp := fs.Path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write snapshot history: %w", err)
	}
	if err := os.Rename(tmp, fs.Path); err != nil {
		return fmt.Errorf("replace snapshot history: %w", err)
	}
	return nil
}
