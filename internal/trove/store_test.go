package trove

import (
	"context"
	"testing"
	"time"

	"github.com/mark3labs/trove/internal/nats"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestStore opens a store on an embedded server in a temp dir and
// advances its clock by one second per event.
func newTestStore(t *testing.T) *Store {
	t.Helper()

	conn, err := nats.Open(context.Background(), t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	s := NewStore(conn.JetStream, conn.Stream)
	clock := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	s.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	return s
}

func TestStore_Add(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	cmd, err := s.Add(ctx, AddParams{
		Name:        "Git Commit",
		Command:     "git commit -m #msg!",
		Description: "Commit with a message",
		Tags:        []string{"VCS", "git", "vcs"},
	})
	require.NoError(t, err)

	assert.Equal(t, "git-commit", cmd.Name)
	assert.Equal(t, DefaultNamespace, cmd.Namespace)
	assert.Equal(t, "git commit -m #msg!", cmd.Command)
	assert.Equal(t, "Commit with a message", cmd.Description)
	assert.Equal(t, []string{"git", "vcs"}, cmd.Tags)
	assert.False(t, cmd.CreatedAt.IsZero())
	assert.Equal(t, cmd.CreatedAt, cmd.UpdatedAt)

	got, err := s.Get(ctx, "", "git commit")
	require.NoError(t, err)
	assert.Equal(t, cmd, got)
}

func TestStore_AddRejects(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, err := s.Add(ctx, AddParams{Name: "ls", Command: "ls #dir!"})
	require.NoError(t, err)

	tests := []struct {
		name   string
		params AddParams
		want   error
	}{
		{"duplicate", AddParams{Name: "LS", Command: "ls -la"}, ErrExists},
		{"empty name", AddParams{Name: "  ", Command: "ls"}, ErrInvalidName},
		{"symbol-only name", AddParams{Name: "!!!", Command: "ls"}, ErrInvalidName},
		{"empty command", AddParams{Name: "other", Command: " "}, ErrInvalidName},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Add(ctx, tt.params)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	// Same name in another namespace is fine.
	_, err = s.Add(ctx, AddParams{Name: "ls", Namespace: "remote", Command: "ssh #host! ls"})
	assert.NoError(t, err)
}

func TestStore_Edit(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	orig, err := s.Add(ctx, AddParams{Name: "grep", Command: "grep #pattern!", Description: "search", Tags: []string{"text"}})
	require.NoError(t, err)

	text := "grep -rn #pattern! #dir!"
	edited, err := s.Edit(ctx, "", "grep", EditParams{Command: &text})
	require.NoError(t, err)
	assert.Equal(t, text, edited.Command)
	assert.Equal(t, "search", edited.Description, "unset fields are kept")
	assert.Equal(t, []string{"text"}, edited.Tags)
	assert.True(t, edited.UpdatedAt.After(orig.UpdatedAt))
	assert.Equal(t, orig.CreatedAt, edited.CreatedAt)

	desc := ""
	tags := []string{}
	edited, err = s.Edit(ctx, "", "grep", EditParams{Description: &desc, Tags: &tags})
	require.NoError(t, err)
	assert.Empty(t, edited.Description)
	assert.Empty(t, edited.Tags)
	assert.Equal(t, text, edited.Command)

	_, err = s.Edit(ctx, "", "missing", EditParams{Command: &text})
	assert.ErrorIs(t, err, ErrNotFound)

	empty := ""
	_, err = s.Edit(ctx, "", "grep", EditParams{Command: &empty})
	assert.ErrorIs(t, err, ErrInvalidName)
}

func TestStore_Remove(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, err := s.Add(ctx, AddParams{Name: "tmp", Command: "echo tmp"})
	require.NoError(t, err)

	require.NoError(t, s.Remove(ctx, "", "tmp"))
	_, err = s.Get(ctx, "", "tmp")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.Remove(ctx, "", "tmp"), ErrNotFound)

	// A removed name can be reused.
	_, err = s.Add(ctx, AddParams{Name: "tmp", Command: "echo again"})
	assert.NoError(t, err)
}

func TestStore_ListAndNamespaces(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	for _, p := range []AddParams{
		{Name: "status", Namespace: "git", Command: "git status", Tags: []string{"vcs"}},
		{Name: "commit", Namespace: "git", Command: "git commit -m #msg!", Tags: []string{"vcs"}},
		{Name: "ps", Namespace: "docker", Command: "docker ps", Description: "List containers"},
		{Name: "hello", Command: "echo hello"},
	} {
		_, err := s.Add(ctx, p)
		require.NoError(t, err)
	}

	keys := func(cmds []*Command) []string {
		var out []string
		for _, c := range cmds {
			out = append(out, c.Key())
		}
		return out
	}

	tests := []struct {
		name   string
		params ListParams
		want   []string
	}{
		{"all sorted", ListParams{}, []string{"default/hello", "docker/ps", "git/commit", "git/status"}},
		{"namespace", ListParams{Namespace: "Git"}, []string{"git/commit", "git/status"}},
		{"tag", ListParams{Tag: "vcs"}, []string{"git/commit", "git/status"}},
		{"query description", ListParams{Query: "CONTAINERS"}, []string{"docker/ps"}},
		{"query command", ListParams{Query: "#msg"}, []string{"git/commit"}},
		{"no match", ListParams{Namespace: "docker", Tag: "vcs"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.List(ctx, tt.params)
			require.NoError(t, err)
			assert.Equal(t, tt.want, keys(got))
		})
	}

	ns, err := s.Namespaces(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"default", "docker", "git"}, ns)
}

func TestStore_LoadStateSkipsMalformedEvents(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, err := s.js.Publish(ctx, nats.SubjectForCommand("default"), []byte("not json"))
	require.NoError(t, err)
	_, err = s.Add(ctx, AddParams{Name: "ok", Command: "true"})
	require.NoError(t, err)

	state, err := s.LoadState(ctx)
	require.NoError(t, err)
	assert.Len(t, state.Commands, 1)
}

func TestState_ApplyIgnoresEditOfUnknownCommand(t *testing.T) {
	st := newState()
	st.Apply(Event{Namespace: "default", Name: "ghost", Action: ActionEdit, Data: "x"})
	assert.Empty(t, st.Commands)
}

func TestNormalizeNamespace(t *testing.T) {
	assert.Equal(t, DefaultNamespace, NormalizeNamespace(""))
	assert.Equal(t, "my-tools", NormalizeNamespace("My Tools"))
}
