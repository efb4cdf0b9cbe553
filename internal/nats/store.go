package nats

import (
	"context"
	"fmt"

	"github.com/nats-io/nats.go/jetstream"
)

const (
	// StreamName is the JetStream stream holding every trove event.
	StreamName = "trove_events"

	subjectRoot = "trove"

	// EventTypeCommand is the event type of command mutations.
	EventTypeCommand = "command"
)

// SubjectForNamespace returns the wildcard subject for all events of a
// namespace, e.g. "trove.git.>". An empty namespace matches every namespace.
func SubjectForNamespace(namespace string) string {
	if namespace == "" {
		return subjectRoot + ".>"
	}
	return fmt.Sprintf("%s.%s.>", subjectRoot, namespace)
}

// SubjectForCommand returns the subject command events of a namespace are
// published on, e.g. "trove.git.command".
func SubjectForCommand(namespace string) string {
	return fmt.Sprintf("%s.%s.%s", subjectRoot, namespace, EventTypeCommand)
}

// SetupStream creates or updates the event stream. Commands are kept until
// removed, so the stream has no age limit.
func SetupStream(ctx context.Context, js jetstream.JetStream) (jetstream.Stream, error) {
	return js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:     StreamName,
		Subjects: []string{subjectRoot + ".>"},
		Storage:  jetstream.FileStorage,
	})
}
