package main

import (
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"

	"github.com/AgainTri412/gomoku/engine"
)

// ttSnapshotFile is the on-disk form: a gob stream compressed with zstd.
// Entries go back through the normal replacement policy on load, so a
// snapshot from a differently sized table still restores cleanly.
type ttSnapshotFile struct {
	Capacity int
	Entries  []engine.TTEntry
}

func persistTT(tt *engine.TranspositionTable, path string) error {
	if path == "" {
		return nil
	}
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create snapshot directory %s: %w", dir, err)
		}
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create snapshot %s: %w", path, err)
	}
	defer file.Close()

	writer, err := zstd.NewWriter(file, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return fmt.Errorf("create zstd encoder: %w", err)
	}
	snapshot := ttSnapshotFile{
		Capacity: tt.Capacity(),
		Entries:  tt.Snapshot(),
	}
	if err := gob.NewEncoder(writer).Encode(&snapshot); err != nil {
		writer.Close()
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("finish snapshot: %w", err)
	}
	return nil
}

func restoreTT(tt *engine.TranspositionTable, path string) (int, error) {
	if path == "" {
		return 0, nil
	}
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("open snapshot %s: %w", path, err)
	}
	defer file.Close()

	reader, err := zstd.NewReader(file)
	if err != nil {
		return 0, fmt.Errorf("create zstd decoder: %w", err)
	}
	defer reader.Close()

	var snapshot ttSnapshotFile
	if err := gob.NewDecoder(reader).Decode(&snapshot); err != nil {
		return 0, fmt.Errorf("decode snapshot %s: %w", path, err)
	}
	tt.Load(snapshot.Entries)
	return len(snapshot.Entries), nil
}
