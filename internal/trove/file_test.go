package trove

import (
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleTrove = `version: 1.0
commands:
  - name: Find Large
    namespace: files
    command: "find #dir! -size +#size!"
    description: Find files larger than a size
    tags: [disk]
  - name: uptime
    command: uptime
`

func TestReadFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/in.yml", []byte(sampleTrove), 0644))

	tr, err := ReadFile(fs, "/in.yml")
	require.NoError(t, err)
	assert.Equal(t, "1.0", tr.Version)
	require.Len(t, tr.Commands, 2)
	assert.Equal(t, "find #dir! -size +#size!", tr.Commands[0].Command)
	assert.Equal(t, []string{"disk"}, tr.Commands[0].Tags)
}

func TestWriteFile_KeepsCommentLikeText(t *testing.T) {
	fs := afero.NewMemMapFs()
	in := &Trove{Commands: []Command{
		{Name: "find", Namespace: "files", Command: "find #dir! -size +#size!"},
		{Name: "hash", Namespace: "default", Command: `echo \# #x! # trailing`},
	}}

	require.NoError(t, WriteFile(fs, "/rt.yml", in))
	back, err := ReadFile(fs, "/rt.yml")
	require.NoError(t, err)
	require.Len(t, back.Commands, 2)
	assert.Equal(t, "find #dir! -size +#size!", back.Commands[0].Command)
	assert.Equal(t, `echo \# #x! # trailing`, back.Commands[1].Command)
}

func TestReadFile_Errors(t *testing.T) {
	fs := afero.NewMemMapFs()

	_, err := ReadFile(fs, "/missing.yml")
	assert.Error(t, err)

	require.NoError(t, afero.WriteFile(fs, "/v2.yml", []byte("version: 2.0\ncommands: []\n"), 0644))
	_, err = ReadFile(fs, "/v2.yml")
	assert.ErrorIs(t, err, ErrUnsupportedVersion)

	require.NoError(t, afero.WriteFile(fs, "/bad.yml", []byte("commands: [\n"), 0644))
	_, err = ReadFile(fs, "/bad.yml")
	assert.Error(t, err)
}

func TestImportExport(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/in.yml", []byte(sampleTrove), 0644))

	tr, err := ReadFile(fs, "/in.yml")
	require.NoError(t, err)

	res, err := s.Import(ctx, tr, false)
	require.NoError(t, err)
	assert.Equal(t, ImportResult{Added: 2}, res)

	got, err := s.Get(ctx, "files", "find-large")
	require.NoError(t, err)
	assert.Equal(t, "Find files larger than a size", got.Description)

	// Importing again skips everything.
	res, err = s.Import(ctx, tr, false)
	require.NoError(t, err)
	assert.Equal(t, ImportResult{Skipped: 2}, res)

	// Overwrite replaces existing commands.
	tr.Commands[1].Command = "uptime -p"
	res, err = s.Import(ctx, tr, true)
	require.NoError(t, err)
	assert.Equal(t, ImportResult{Updated: 2}, res)

	got, err = s.Get(ctx, "", "uptime")
	require.NoError(t, err)
	assert.Equal(t, "uptime -p", got.Command)

	out, err := s.Export(ctx, "files")
	require.NoError(t, err)
	require.Len(t, out.Commands, 1)
	assert.Equal(t, "find-large", out.Commands[0].Name)

	require.NoError(t, WriteFile(fs, "/out/all.yml", out))
	back, err := ReadFile(fs, "/out/all.yml")
	require.NoError(t, err)
	assert.Equal(t, FileVersion, back.Version)
	assert.Equal(t, out.Commands[0].Command, back.Commands[0].Command)
	assert.True(t, out.Commands[0].CreatedAt.Equal(back.Commands[0].CreatedAt))
}

func TestImport_RejectsInvalidEntry(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Import(context.Background(), &Trove{Commands: []Command{{Name: "x"}}}, false)
	assert.ErrorIs(t, err, ErrInvalidName)
}
