package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mark3labs/trove/internal/logger"
	"github.com/spf13/afero"
)

// FileName is the name of the state file inside the data directory.
const FileName = "ui-state.json"

// MaxHistory bounds the number of remembered resolved commands.
const MaxHistory = 50

// UIState holds what trove remembers between runs.
type UIState struct {
	LastNamespace string         `json:"last_namespace,omitempty"`
	History       []HistoryEntry `json:"history"`
}

// HistoryEntry is one resolved command, most recent first in UIState.History.
type HistoryEntry struct {
	Namespace string    `json:"namespace"`
	Name      string    `json:"name"`
	Resolved  string    `json:"resolved"`
	At        time.Time `json:"at"`
}

// DefaultUIState returns the empty state.
func DefaultUIState() *UIState {
	return &UIState{}
}

// Record prepends an entry, updates LastNamespace and trims the history.
func (s *UIState) Record(entry HistoryEntry) {
	if entry.At.IsZero() {
		entry.At = time.Now()
	}
	s.LastNamespace = entry.Namespace
	s.History = append([]HistoryEntry{entry}, s.History...)
	if len(s.History) > MaxHistory {
		s.History = s.History[:MaxHistory]
	}
}

// Recent returns at most limit entries; limit <= 0 returns all of them.
func (s *UIState) Recent(limit int) []HistoryEntry {
	if limit <= 0 || limit > len(s.History) {
		return s.History
	}
	return s.History[:limit]
}

// Rank maps "namespace/name" to its position in the history, most recent
// being 0. Commands never used are absent.
func (s *UIState) Rank() map[string]int {
	rank := make(map[string]int, len(s.History))
	for i, h := range s.History {
		k := h.Namespace + "/" + h.Name
		if _, seen := rank[k]; !seen {
			rank[k] = i
		}
	}
	return rank
}

// Load reads the state from <dataDir>/ui-state.json.
// Returns default state if the file doesn't exist or on error.
func Load(fs afero.Fs, dataDir string) *UIState {
	path := filepath.Join(dataDir, FileName)

	data, err := afero.ReadFile(fs, path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn("Failed to read UI state file: %v", err)
		}
		return DefaultUIState()
	}

	var state UIState
	if err := json.Unmarshal(data, &state); err != nil {
		logger.Warn("Failed to parse UI state JSON: %v", err)
		return DefaultUIState()
	}

	if len(state.History) > MaxHistory {
		state.History = state.History[:MaxHistory]
	}
	return &state
}

// Save writes the state to <dataDir>/ui-state.json.
// Creates the data directory if it doesn't exist.
func Save(fs afero.Fs, dataDir string, state *UIState) error {
	if err := fs.MkdirAll(dataDir, 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	path := filepath.Join(dataDir, FileName)

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling UI state: %w", err)
	}

	if err := afero.WriteFile(fs, path, data, 0644); err != nil {
		return fmt.Errorf("writing UI state file: %w", err)
	}

	logger.Debug("UI state saved to %s", path)
	return nil
}
