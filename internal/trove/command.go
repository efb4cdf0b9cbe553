// Package trove stores command templates. Every mutation is appended to a
// JetStream stream as an event and the current set of commands is rebuilt
// by reducing the stream.
package trove

import (
	"encoding/json"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/gosimple/slug"
)

// DefaultNamespace is used when a command is added without a namespace.
const DefaultNamespace = "default"

var (
	// ErrNotFound is returned when a command does not exist.
	ErrNotFound = errors.New("command not found")
	// ErrExists is returned when adding a command whose name is taken.
	ErrExists = errors.New("command already exists")
	// ErrInvalidName is returned for names or commands that normalise to nothing.
	ErrInvalidName = errors.New("invalid command")
)

// Command is a stored command template.
type Command struct {
	Name        string    `json:"name" yaml:"name"`
	Namespace   string    `json:"namespace" yaml:"namespace"`
	Command     string    `json:"command" yaml:"command"`
	Description string    `json:"description,omitempty" yaml:"description,omitempty"`
	Tags        []string  `json:"tags,omitempty" yaml:"tags,omitempty"`
	CreatedAt   time.Time `json:"created_at" yaml:"created_at,omitempty"`
	UpdatedAt   time.Time `json:"updated_at" yaml:"updated_at,omitempty"`
}

// Key returns "namespace/name".
func (c *Command) Key() string {
	return key(c.Namespace, c.Name)
}

// HasTag reports whether the command carries tag.
func (c *Command) HasTag(tag string) bool {
	for _, t := range c.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

func key(namespace, name string) string {
	return namespace + "/" + name
}

// NormalizeName turns a user supplied name into its stored form.
func NormalizeName(name string) string {
	return slug.Make(strings.TrimSpace(name))
}

// NormalizeNamespace is NormalizeName with DefaultNamespace for empty input.
func NormalizeNamespace(namespace string) string {
	if strings.TrimSpace(namespace) == "" {
		return DefaultNamespace
	}
	return NormalizeName(namespace)
}

// normalizeTags slugs, dedupes and sorts tags.
func normalizeTags(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = slug.Make(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	sort.Strings(out)
	if len(out) == 0 {
		return nil
	}
	return out
}

// Event actions.
const (
	ActionAdd    = "add"
	ActionEdit   = "edit"
	ActionRemove = "remove"
)

// Event is a single entry of the command event log.
type Event struct {
	ID        string          `json:"id"`
	Timestamp time.Time       `json:"timestamp"`
	Namespace string          `json:"namespace"`
	Name      string          `json:"name"`
	Action    string          `json:"action"`
	Meta      json.RawMessage `json:"meta,omitempty"`
	Data      string          `json:"data"`
}

// commandMeta carries the fields of add and edit events besides the
// command text. Nil pointers leave a field unchanged on edit.
type commandMeta struct {
	Description *string  `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	SetTags     bool     `json:"set_tags,omitempty"`
	SetCommand  bool     `json:"set_command,omitempty"`
}

// State is the set of commands rebuilt from the event log.
type State struct {
	Commands map[string]*Command `json:"commands"`
}

func newState() *State {
	return &State{Commands: make(map[string]*Command)}
}

// Apply reduces one event into the state.
func (st *State) Apply(event Event) {
	k := key(event.Namespace, event.Name)

	var meta commandMeta
	if len(event.Meta) > 0 {
		_ = json.Unmarshal(event.Meta, &meta)
	}

	switch event.Action {
	case ActionAdd:
		cmd := &Command{
			Name:      event.Name,
			Namespace: event.Namespace,
			Command:   event.Data,
			Tags:      meta.Tags,
			CreatedAt: event.Timestamp,
			UpdatedAt: event.Timestamp,
		}
		if meta.Description != nil {
			cmd.Description = *meta.Description
		}
		st.Commands[k] = cmd

	case ActionEdit:
		cmd, ok := st.Commands[k]
		if !ok {
			return
		}
		if meta.SetCommand {
			cmd.Command = event.Data
		}
		if meta.Description != nil {
			cmd.Description = *meta.Description
		}
		if meta.SetTags {
			cmd.Tags = meta.Tags
		}
		cmd.UpdatedAt = event.Timestamp

	case ActionRemove:
		delete(st.Commands, k)
	}
}

// Get returns the command stored under namespace and name.
func (st *State) Get(namespace, name string) (*Command, bool) {
	cmd, ok := st.Commands[key(namespace, name)]
	return cmd, ok
}

// Sorted returns all commands ordered by namespace, then name.
func (st *State) Sorted() []*Command {
	out := make([]*Command, 0, len(st.Commands))
	for _, c := range st.Commands {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Namespace != out[j].Namespace {
			return out[i].Namespace < out[j].Namespace
		}
		return out[i].Name < out[j].Name
	})
	return out
}
