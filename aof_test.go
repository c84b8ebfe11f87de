package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAOFAppendWritesVerbatimLines(t *testing.T) {
	dir := t.TempDir()
	aof, err := NewAOFWriter(dir)
	require.NoError(t, err)

	require.NoError(t, aof.Append([]byte("SET a 1\r\n")))
	require.NoError(t, aof.Append([]byte("DELETE b\r\n")))
	require.NoError(t, aof.Close())

	contents, err := os.ReadFile(filepath.Join(dir, "server.aof"))
	require.NoError(t, err)
	assert.Equal(t, "SET a 1\r\nDELETE b\r\n", string(contents))
}

func TestAOFMirrorsOnlyMutatingVerbsThroughDispatch(t *testing.T) {
	dir := t.TempDir()
	aof, err := NewAOFWriter(dir)
	require.NoError(t, err)

	s := &GoFastServer{
		store:    NewStore(),
		stats:    &ServerStats{},
		bytePool: NewBytePool(),
		aof:      aof,
	}

	for _, cmd := range []*Command{
		newCommand("SET", "a", "1"),
		newCommand("GET", "a"),
		newCommand("INCR", "a"),
		newCommand("DELETE", "a"),
	} {
		_, err := dispatchAndCapture(t, s, cmd)
		require.NoError(t, err)
	}
	require.NoError(t, aof.Close())

	contents, err := os.ReadFile(filepath.Join(dir, "server.aof"))
	require.NoError(t, err)
	assert.Equal(t, "SET a 1\r\nDELETE a\r\n", string(contents),
		"GET and INCR must not appear in the log")
}

func TestAOFCreatesDataDirIfMissing(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")
	aof, err := NewAOFWriter(dir)
	require.NoError(t, err)
	defer aof.Close()

	_, err = os.Stat(filepath.Join(dir, "server.aof"))
	assert.NoError(t, err)
}
