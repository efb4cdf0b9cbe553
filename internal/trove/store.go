package trove

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/trove/internal/logger"
	"github.com/mark3labs/trove/internal/nats"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/rs/xid"
)

// Store manages commands through JetStream event sourcing.
type Store struct {
	js     jetstream.JetStream
	stream jetstream.Stream
	now    func() time.Time
}

// NewStore creates a Store on an existing JetStream context and stream.
func NewStore(js jetstream.JetStream, stream jetstream.Stream) *Store {
	return &Store{
		js:     js,
		stream: stream,
		now:    time.Now,
	}
}

// PublishEvent appends an event to the log on trove.<namespace>.command.
// Events without an ID get a fresh xid.
func (s *Store) PublishEvent(ctx context.Context, event Event) (*jetstream.PubAck, error) {
	if event.Timestamp.IsZero() {
		event.Timestamp = s.now()
	}
	if event.ID == "" {
		event.ID = xid.New().String()
	}

	data, err := json.Marshal(event)
	if err != nil {
		logger.Error("Failed to marshal event: %v", err)
		return nil, fmt.Errorf("failed to marshal event: %w", err)
	}

	subject := nats.SubjectForCommand(event.Namespace)
	logger.Debug("Publishing event: namespace=%s name=%s action=%s", event.Namespace, event.Name, event.Action)

	ack, err := s.js.Publish(ctx, subject, data)
	if err != nil {
		logger.Error("Failed to publish event to subject %s: %v", subject, err)
		return nil, fmt.Errorf("failed to publish event: %w", err)
	}

	logger.Debug("Event published: seq=%d", ack.Sequence)
	return ack, nil
}

// LoadState rebuilds the set of commands by reducing the whole event log.
// Malformed events are skipped with a warning.
func (s *Store) LoadState(ctx context.Context) (*State, error) {
	consumer, err := s.stream.CreateOrUpdateConsumer(ctx, jetstream.ConsumerConfig{
		FilterSubject:     nats.SubjectForNamespace(""),
		DeliverPolicy:     jetstream.DeliverAllPolicy,
		AckPolicy:         jetstream.AckExplicitPolicy,
		InactiveThreshold: 30 * time.Second,
	})
	if err != nil {
		logger.Error("Failed to create consumer: %v", err)
		return nil, fmt.Errorf("failed to create consumer: %w", err)
	}

	state := newState()

	const batchSize = 1000
	malformed := 0
	total := 0
	for {
		msgs, err := consumer.FetchNoWait(batchSize)
		if err != nil {
			break
		}

		count := 0
		for msg := range msgs.Messages() {
			count++
			total++

			var event Event
			if err := json.Unmarshal(msg.Data(), &event); err != nil {
				malformed++
				if meta, mErr := msg.Metadata(); mErr == nil {
					logger.Warn("Skipping malformed event (seq=%d): %v", meta.Sequence.Stream, err)
				}
				_ = msg.Ack()
				continue
			}

			if event.ID == "" {
				if meta, mErr := msg.Metadata(); mErr == nil {
					event.ID = fmt.Sprintf("%d", meta.Sequence.Stream)
				}
			}

			state.Apply(event)
			_ = msg.Ack()
		}

		if count < batchSize {
			break
		}
	}

	if malformed > 0 {
		logger.Warn("Skipped %d malformed events while loading state", malformed)
	}
	logger.Debug("State loaded: %d events, %d commands", total, len(state.Commands))

	return state, nil
}

// AddParams describes a new command.
type AddParams struct {
	Name        string
	Namespace   string
	Command     string
	Description string
	Tags        []string
}

// Add stores a new command. Name and namespace are normalised; an existing
// command with the same key is an error.
func (s *Store) Add(ctx context.Context, params AddParams) (*Command, error) {
	name := NormalizeName(params.Name)
	namespace := NormalizeNamespace(params.Namespace)
	if name == "" {
		return nil, fmt.Errorf("%w: name %q is empty after normalisation", ErrInvalidName, params.Name)
	}
	if namespace == "" {
		return nil, fmt.Errorf("%w: namespace %q is empty after normalisation", ErrInvalidName, params.Namespace)
	}
	if strings.TrimSpace(params.Command) == "" {
		return nil, fmt.Errorf("%w: command text is empty", ErrInvalidName)
	}

	state, err := s.LoadState(ctx)
	if err != nil {
		return nil, err
	}
	if _, ok := state.Get(namespace, name); ok {
		return nil, fmt.Errorf("%w: %s", ErrExists, key(namespace, name))
	}

	desc := params.Description
	meta, err := json.Marshal(commandMeta{Description: &desc, Tags: normalizeTags(params.Tags)})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal meta: %w", err)
	}

	event := Event{
		Timestamp: s.now(),
		Namespace: namespace,
		Name:      name,
		Action:    ActionAdd,
		Meta:      meta,
		Data:      params.Command,
	}
	if _, err := s.PublishEvent(ctx, event); err != nil {
		return nil, err
	}

	state.Apply(event)
	cmd, _ := state.Get(namespace, name)
	return cmd, nil
}

// EditParams lists the fields to change. Nil fields are left as they are.
type EditParams struct {
	Command     *string
	Description *string
	Tags        *[]string
}

// Edit changes an existing command.
func (s *Store) Edit(ctx context.Context, namespace, name string, params EditParams) (*Command, error) {
	namespace, name = NormalizeNamespace(namespace), NormalizeName(name)

	state, err := s.LoadState(ctx)
	if err != nil {
		return nil, err
	}
	if _, ok := state.Get(namespace, name); !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key(namespace, name))
	}

	meta := commandMeta{Description: params.Description}
	event := Event{
		Timestamp: s.now(),
		Namespace: namespace,
		Name:      name,
		Action:    ActionEdit,
	}
	if params.Command != nil {
		if strings.TrimSpace(*params.Command) == "" {
			return nil, fmt.Errorf("%w: command text is empty", ErrInvalidName)
		}
		meta.SetCommand = true
		event.Data = *params.Command
	}
	if params.Tags != nil {
		meta.SetTags = true
		meta.Tags = normalizeTags(*params.Tags)
	}

	if event.Meta, err = json.Marshal(meta); err != nil {
		return nil, fmt.Errorf("failed to marshal meta: %w", err)
	}
	if _, err := s.PublishEvent(ctx, event); err != nil {
		return nil, err
	}

	state.Apply(event)
	cmd, _ := state.Get(namespace, name)
	return cmd, nil
}

// Remove deletes a command.
func (s *Store) Remove(ctx context.Context, namespace, name string) error {
	namespace, name = NormalizeNamespace(namespace), NormalizeName(name)

	state, err := s.LoadState(ctx)
	if err != nil {
		return err
	}
	if _, ok := state.Get(namespace, name); !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, key(namespace, name))
	}

	_, err = s.PublishEvent(ctx, Event{
		Namespace: namespace,
		Name:      name,
		Action:    ActionRemove,
	})
	return err
}

// Get returns a single command.
func (s *Store) Get(ctx context.Context, namespace, name string) (*Command, error) {
	namespace, name = NormalizeNamespace(namespace), NormalizeName(name)

	state, err := s.LoadState(ctx)
	if err != nil {
		return nil, err
	}
	cmd, ok := state.Get(namespace, name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key(namespace, name))
	}
	return cmd, nil
}

// ListParams filters List. Empty fields match everything. Query is a
// case-insensitive substring of name, namespace, description or command.
type ListParams struct {
	Namespace string
	Tag       string
	Query     string
}

// List returns matching commands ordered by namespace, then name.
func (s *Store) List(ctx context.Context, params ListParams) ([]*Command, error) {
	state, err := s.LoadState(ctx)
	if err != nil {
		return nil, err
	}

	namespace := ""
	if params.Namespace != "" {
		namespace = NormalizeNamespace(params.Namespace)
	}
	tag := ""
	if params.Tag != "" {
		tag = NormalizeName(params.Tag)
	}
	query := strings.ToLower(strings.TrimSpace(params.Query))

	var out []*Command
	for _, cmd := range state.Sorted() {
		if namespace != "" && cmd.Namespace != namespace {
			continue
		}
		if tag != "" && !cmd.HasTag(tag) {
			continue
		}
		if query != "" && !Matches(cmd, query) {
			continue
		}
		out = append(out, cmd)
	}
	return out, nil
}

// Matches reports whether the lower-case query is a substring of one of the
// command's text fields or tags.
func Matches(cmd *Command, query string) bool {
	for _, field := range []string{cmd.Name, cmd.Namespace, cmd.Description, cmd.Command} {
		if strings.Contains(strings.ToLower(field), query) {
			return true
		}
	}
	for _, t := range cmd.Tags {
		if strings.Contains(t, query) {
			return true
		}
	}
	return false
}

// Namespaces returns the sorted set of namespaces holding at least one command.
func (s *Store) Namespaces(ctx context.Context) ([]string, error) {
	state, err := s.LoadState(ctx)
	if err != nil {
		return nil, err
	}

	var out []string
	for _, cmd := range state.Sorted() {
		if len(out) == 0 || out[len(out)-1] != cmd.Namespace {
			out = append(out, cmd.Namespace)
		}
	}
	return out, nil
}
