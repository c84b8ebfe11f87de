package main

import (
	"bufio"
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer() *GoFastServer {
	return &GoFastServer{
		stats:    &ServerStats{},
		bytePool: NewBytePool(),
	}
}

func TestReadCommandTokenizesAndUppercasesVerb(t *testing.T) {
	s := newTestServer()
	reader := bufio.NewReader(strings.NewReader("set foo bar\r\n"))

	cmd, err := s.readCommand(reader)
	require.NoError(t, err)
	assert.Equal(t, "SET", cmd.Verb)
	require.Len(t, cmd.Args, 2)
	assert.Equal(t, []byte("foo"), cmd.Args[0])
	assert.Equal(t, []byte("bar"), cmd.Args[1])
	assert.Equal(t, []byte("set foo bar\r\n"), cmd.Raw)
}

func TestReadCommandRejectsEmptyLine(t *testing.T) {
	s := newTestServer()
	reader := bufio.NewReader(strings.NewReader("\r\n"))

	_, err := s.readCommand(reader)
	assert.Error(t, err)
}

func TestWriteSimpleString(t *testing.T) {
	s := newTestServer()
	var buf bytes.Buffer
	w := bufio.NewWriter(&buf)

	require.NoError(t, s.writeSimpleString(w, "OK"))
	require.NoError(t, w.Flush())
	assert.Equal(t, "+OK\r\n", buf.String())
}

func TestWriteError(t *testing.T) {
	s := newTestServer()
	var buf bytes.Buffer
	w := bufio.NewWriter(&buf)

	require.NoError(t, s.writeError(w, "ERR unknown command"))
	require.NoError(t, w.Flush())
	assert.Equal(t, "-ERR unknown command\r\n", buf.String())
}

func TestWriteInteger(t *testing.T) {
	s := newTestServer()
	var buf bytes.Buffer
	w := bufio.NewWriter(&buf)

	require.NoError(t, s.writeInteger(w, 42))
	require.NoError(t, w.Flush())
	assert.Equal(t, ":42\r\n", buf.String())
}

func TestWriteBulkStringWithValue(t *testing.T) {
	s := newTestServer()
	var buf bytes.Buffer
	w := bufio.NewWriter(&buf)

	require.NoError(t, s.writeBulkString(w, []byte("hello")))
	require.NoError(t, w.Flush())
	assert.Equal(t, "$5\r\nhello\r\n", buf.String())
}

func TestWriteBulkStringNilIsNullBulk(t *testing.T) {
	s := newTestServer()
	var buf bytes.Buffer
	w := bufio.NewWriter(&buf)

	require.NoError(t, s.writeBulkString(w, nil))
	require.NoError(t, w.Flush())
	assert.Equal(t, "$-1\r\n", buf.String())
}

func TestWriteArrayHeader(t *testing.T) {
	s := newTestServer()
	var buf bytes.Buffer
	w := bufio.NewWriter(&buf)

	require.NoError(t, s.writeArrayHeader(w, 3))
	require.NoError(t, w.Flush())
	assert.Equal(t, "*3\r\n", buf.String())
}

func TestWriteTracksBytesWritten(t *testing.T) {
	s := newTestServer()
	var buf bytes.Buffer
	w := bufio.NewWriter(&buf)

	require.NoError(t, s.writeSimpleString(w, "OK"))
	require.NoError(t, w.Flush())
	assert.Equal(t, uint64(len("+OK\r\n")), s.stats.BytesWritten.Load())
}
