package config

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/On-Jun9/NamePipe/internal/filelock"
	"github.com/On-Jun9/NamePipe/pkg/types"
)

// MaxHistoryEntries bounds the run history file.
const MaxHistoryEntries = 100

// HistoryManager records executed runs in dataDir/history.json.
type HistoryManager struct {
	path string
}

// NewHistoryManager uses dataDir, or DefaultDataDir() when empty.
func NewHistoryManager(dataDir string) (*HistoryManager, error) {
	if dataDir == "" {
		dataDir = DefaultDataDir()
	}
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return &HistoryManager{path: filepath.Join(dataDir, "history.json")}, nil
}

// Load returns the stored history, or an empty one when none exists yet.
func (m *HistoryManager) Load() (*types.RunHistory, error) {
	data, err := os.ReadFile(m.path)
	if err != nil {
		if os.IsNotExist(err) {
			return &types.RunHistory{Entries: []types.RunHistoryEntry{}}, nil
		}
		return nil, fmt.Errorf("failed to read history file: %w", err)
	}
	return decodeHistory(data)
}

func decodeHistory(data []byte) (*types.RunHistory, error) {
	history := &types.RunHistory{}
	if len(data) > 0 {
		if err := json.Unmarshal(data, history); err != nil {
			return nil, fmt.Errorf("failed to unmarshal history: %w", err)
		}
	}
	if history.Entries == nil {
		history.Entries = []types.RunHistoryEntry{}
	}
	return history, nil
}

// Add prepends entry, keeping the newest MaxHistoryEntries. Missing ID and
// CreatedAt are filled in. The whole read-modify-write holds the file lock.
func (m *HistoryManager) Add(ctx context.Context, entry types.RunHistoryEntry) (types.RunHistoryEntry, error) {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	err := filelock.Update(ctx, m.path, func(current []byte) ([]byte, error) {
		history, err := decodeHistory(current)
		if err != nil {
			return nil, err
		}

		history.Entries = append([]types.RunHistoryEntry{entry}, history.Entries...)
		if len(history.Entries) > MaxHistoryEntries {
			history.Entries = history.Entries[:MaxHistoryEntries]
		}
		history.UpdatedAt = time.Now()

		return json.MarshalIndent(history, "", "  ")
	})
	if err != nil {
		return entry, fmt.Errorf("failed to save history: %w", err)
	}
	return entry, nil
}

// Recent returns up to limit entries, newest first. limit <= 0 means all.
func (m *HistoryManager) Recent(limit int) ([]types.RunHistoryEntry, error) {
	history, err := m.Load()
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(history.Entries) > limit {
		return history.Entries[:limit], nil
	}
	return history.Entries, nil
}
