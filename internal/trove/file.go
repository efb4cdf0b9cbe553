package trove

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mark3labs/trove/internal/logger"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// FileVersion is the version written to trove files.
const FileVersion = "1.0"

// ErrUnsupportedVersion is returned for trove files of an unknown major version.
var ErrUnsupportedVersion = errors.New("unsupported trove file version")

// Trove is the portable YAML form of a set of commands.
type Trove struct {
	Version  string    `yaml:"version"`
	Commands []Command `yaml:"commands"`
}

// ReadFile reads and checks a trove file.
func ReadFile(fs afero.Fs, path string) (*Trove, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("reading trove file: %w", err)
	}

	var t Trove
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parsing trove file %s: %w", path, err)
	}
	if t.Version != "" && !strings.HasPrefix(t.Version, "1.") && t.Version != "1" {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedVersion, t.Version)
	}
	return &t, nil
}

// WriteFile writes t as YAML, creating parent directories.
func WriteFile(fs afero.Fs, path string, t *Trove) error {
	if t.Version == "" {
		t.Version = FileVersion
	}

	data, err := yaml.Marshal(t)
	if err != nil {
		return fmt.Errorf("marshaling trove: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := fs.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating directory: %w", err)
		}
	}
	if err := afero.WriteFile(fs, path, data, 0644); err != nil {
		return fmt.Errorf("writing trove file: %w", err)
	}
	return nil
}

// ImportResult counts what Import did.
type ImportResult struct {
	Added   int `json:"added"`
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
}

// Import adds the commands of t to the store. Existing commands are skipped
// unless overwrite is set, in which case they are replaced.
func (s *Store) Import(ctx context.Context, t *Trove, overwrite bool) (ImportResult, error) {
	var res ImportResult

	state, err := s.LoadState(ctx)
	if err != nil {
		return res, err
	}

	for i, c := range t.Commands {
		name, namespace := NormalizeName(c.Name), NormalizeNamespace(c.Namespace)
		if name == "" || strings.TrimSpace(c.Command) == "" {
			return res, fmt.Errorf("%w: entry %d (%q)", ErrInvalidName, i+1, c.Name)
		}

		desc := c.Description
		meta := commandMeta{Description: &desc, Tags: normalizeTags(c.Tags)}
		event := Event{Namespace: namespace, Name: name, Data: c.Command, Action: ActionAdd}

		if _, exists := state.Get(namespace, name); exists {
			if !overwrite {
				logger.Debug("Skipping existing command %s", key(namespace, name))
				res.Skipped++
				continue
			}
			event.Action = ActionEdit
			meta.SetCommand = true
			meta.SetTags = true
		}

		if event.Meta, err = json.Marshal(meta); err != nil {
			return res, fmt.Errorf("failed to marshal meta: %w", err)
		}
		event.Timestamp = s.now()
		if _, err := s.PublishEvent(ctx, event); err != nil {
			return res, err
		}
		state.Apply(event)

		if event.Action == ActionEdit {
			res.Updated++
		} else {
			res.Added++
		}
	}

	logger.Info("Imported trove: %d added, %d updated, %d skipped", res.Added, res.Updated, res.Skipped)
	return res, nil
}

// Export returns the commands of namespace, or of every namespace when it
// is empty, as a Trove.
func (s *Store) Export(ctx context.Context, namespace string) (*Trove, error) {
	cmds, err := s.List(ctx, ListParams{Namespace: namespace})
	if err != nil {
		return nil, err
	}

	t := &Trove{Version: FileVersion, Commands: make([]Command, 0, len(cmds))}
	for _, c := range cmds {
		t.Commands = append(t.Commands, *c)
	}
	return t, nil
}
