package source

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeDump(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func collect(t *testing.T, d *Dir, name string) ([]Document, error) {
	t.Helper()
	var docs []Document
	docCh, errCh := d.Stream(context.Background(), name)
	for doc := range docCh {
		docs = append(docs, doc)
	}
	return docs, <-errCh
}

func TestNewDir_RejectsMissing(t *testing.T) {
	_, err := NewDir(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestStream_JSONArray(t *testing.T) {
	dir := t.TempDir()
	writeDump(t, dir, "a_speakers.json", `[{"name":"Jane"},{"name":"Bob"}]`)

	d, err := NewDir(dir)
	require.NoError(t, err)

	docs, err := collect(t, d, "a_speakers")
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "Jane", docs[0]["name"])
	assert.Equal(t, "Bob", docs[1]["name"])
}

func TestStream_NDJSON(t *testing.T) {
	dir := t.TempDir()
	writeDump(t, dir, "speakerhub.ndjson", "{\"name\":\"Jane\"}\n\n{\"name\":\"Bob\"}\n")

	d, err := NewDir(dir)
	require.NoError(t, err)

	docs, err := collect(t, d, "speakerhub")
	require.NoError(t, err)
	assert.Len(t, docs, 2)
}

func TestStream_MissingSource(t *testing.T) {
	d, err := NewDir(t.TempDir())
	require.NoError(t, err)

	docs, err := collect(t, d, "bigspeak")
	assert.Error(t, err)
	assert.Empty(t, docs)
}

func TestStream_MalformedArray(t *testing.T) {
	dir := t.TempDir()
	writeDump(t, dir, "bad.json", `{"name":"not an array"}`)

	d, err := NewDir(dir)
	require.NoError(t, err)

	_, err = collect(t, d, "bad")
	assert.Error(t, err)
}

func TestStream_Cancelled(t *testing.T) {
	dir := t.TempDir()
	writeDump(t, dir, "a_speakers.json", `[{"name":"Jane"},{"name":"Bob"}]`)

	d, err := NewDir(dir)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	docCh, errCh := d.Stream(ctx, "a_speakers")
	for range docCh {
	}
	assert.Error(t, <-errCh)
}

func TestLoadOptional(t *testing.T) {
	dir := t.TempDir()
	writeDump(t, dir, "bigspeak_profiles.json", `[{"speaker_id":"bs-1"}]`)

	d, err := NewDir(dir)
	require.NoError(t, err)

	docs, err := d.LoadOptional(context.Background(), "bigspeak_profiles")
	require.NoError(t, err)
	assert.Len(t, docs, 1)

	docs, err = d.LoadOptional(context.Background(), "sessionize_profiles")
	require.NoError(t, err)
	assert.Nil(t, docs)
}
