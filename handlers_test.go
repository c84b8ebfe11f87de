package main

import (
	"bufio"
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDispatchTestServer(t *testing.T) *GoFastServer {
	aof, err := NewAOFWriter(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { aof.Close() })

	return &GoFastServer{
		store:    NewStore(),
		stats:    &ServerStats{},
		bytePool: NewBytePool(),
		aof:      aof,
	}
}

func newCommand(verb string, args ...string) *Command {
	argBytes := make([][]byte, len(args))
	for i, a := range args {
		argBytes[i] = []byte(a)
	}
	raw := verb
	for _, a := range args {
		raw += " " + a
	}
	raw += "\r\n"
	return &Command{Verb: verb, Args: argBytes, Raw: []byte(raw)}
}

func dispatchAndCapture(t *testing.T, s *GoFastServer, cmd *Command) (string, error) {
	var buf bytes.Buffer
	w := bufio.NewWriter(&buf)
	err := s.dispatch(w, cmd)
	require.NoError(t, w.Flush())
	return buf.String(), err
}

func TestDispatchSetThenGetRoundTrip(t *testing.T) {
	s := newDispatchTestServer(t)

	reply, err := dispatchAndCapture(t, s, newCommand("SET", "name", "alice"))
	require.NoError(t, err)
	assert.Equal(t, "+OK\r\n", reply)

	reply, err = dispatchAndCapture(t, s, newCommand("GET", "name"))
	require.NoError(t, err)
	assert.Equal(t, "$5\r\nalice\r\n", reply)
}

func TestDispatchDeleteThenGetReturnsNullBulk(t *testing.T) {
	s := newDispatchTestServer(t)

	_, err := dispatchAndCapture(t, s, newCommand("SET", "k", "v"))
	require.NoError(t, err)

	reply, err := dispatchAndCapture(t, s, newCommand("DELETE", "k"))
	require.NoError(t, err)
	assert.Equal(t, ":1\r\n", reply)

	reply, err = dispatchAndCapture(t, s, newCommand("GET", "k"))
	require.NoError(t, err)
	assert.Equal(t, "$-1\r\n", reply)
}

func TestDispatchPreloadThenMGet(t *testing.T) {
	s := newDispatchTestServer(t)

	_, err := dispatchAndCapture(t, s, newCommand("MSET", "a", "1", "b", "2"))
	require.NoError(t, err)

	reply, err := dispatchAndCapture(t, s, newCommand("MGET", "a", "b", "missing"))
	require.NoError(t, err)
	assert.Equal(t, "*3\r\n$1\r\n1\r\n$1\r\n2\r\n$-1\r\n", reply)
}

func TestDispatchIncrNewKey(t *testing.T) {
	s := newDispatchTestServer(t)

	reply, err := dispatchAndCapture(t, s, newCommand("INCR", "counter"))
	require.NoError(t, err)
	assert.Equal(t, ":1\r\n", reply)
}

func TestDispatchIncrExistingNumericKey(t *testing.T) {
	s := newDispatchTestServer(t)

	_, err := dispatchAndCapture(t, s, newCommand("SET", "counter", "10"))
	require.NoError(t, err)

	reply, err := dispatchAndCapture(t, s, newCommand("INCR", "counter"))
	require.NoError(t, err)
	assert.Equal(t, ":11\r\n", reply)
}

func TestDispatchIncrNonNumericRepliesErrorWithoutTerminating(t *testing.T) {
	s := newDispatchTestServer(t)

	_, err := dispatchAndCapture(t, s, newCommand("SET", "word", "hello"))
	require.NoError(t, err)

	reply, err := dispatchAndCapture(t, s, newCommand("INCR", "word"))
	assert.NoError(t, err, "INCR's type error must not terminate the connection")
	assert.Equal(t, "-ERROR: Value is not an integer or out of range\r\n", reply)
}

func TestDispatchSetWithExpiryThenSleepExpires(t *testing.T) {
	s := newDispatchTestServer(t)

	_, err := dispatchAndCapture(t, s, newCommand("SET", "soon", "gone", "EX", "1"))
	require.NoError(t, err)

	reply, err := dispatchAndCapture(t, s, newCommand("GET", "soon"))
	require.NoError(t, err)
	assert.Equal(t, "$4\r\ngone\r\n", reply)

	time.Sleep(1100 * time.Millisecond)

	reply, err = dispatchAndCapture(t, s, newCommand("GET", "soon"))
	require.NoError(t, err)
	assert.Equal(t, "$-1\r\n", reply)
}

func TestDispatchDBSize(t *testing.T) {
	s := newDispatchTestServer(t)

	_, err := dispatchAndCapture(t, s, newCommand("MSET", "a", "1", "b", "2", "c", "3"))
	require.NoError(t, err)

	reply, err := dispatchAndCapture(t, s, newCommand("DBSIZE"))
	require.NoError(t, err)
	assert.Equal(t, ":3\r\n", reply)
}

func TestDispatchKeysIsOrderAgnostic(t *testing.T) {
	s := newDispatchTestServer(t)

	_, err := dispatchAndCapture(t, s, newCommand("MSET", "x", "1", "y", "2"))
	require.NoError(t, err)

	reply, err := dispatchAndCapture(t, s, newCommand("KEYS"))
	require.NoError(t, err)
	assert.Contains(t, reply, "*2\r\n")
	assert.Contains(t, reply, "$1\r\nx\r\n")
	assert.Contains(t, reply, "$1\r\ny\r\n")
}

func TestDispatchUnknownVerbRepliesWithoutTerminating(t *testing.T) {
	s := newDispatchTestServer(t)

	reply, err := dispatchAndCapture(t, s, newCommand("FROBNICATE", "x"))
	assert.NoError(t, err)
	assert.Equal(t, "-ERR unknown command\r\n", reply)
}

func TestDispatchArityMismatchTerminates(t *testing.T) {
	s := newDispatchTestServer(t)

	_, err := dispatchAndCapture(t, s, newCommand("GET", "a", "b"))
	assert.Error(t, err)
}

func TestDispatchFlushEmptiesStore(t *testing.T) {
	s := newDispatchTestServer(t)

	_, err := dispatchAndCapture(t, s, newCommand("MSET", "a", "1", "b", "2"))
	require.NoError(t, err)

	reply, err := dispatchAndCapture(t, s, newCommand("FLUSH"))
	require.NoError(t, err)
	assert.Equal(t, "+OK\r\n", reply)
	assert.Equal(t, 0, s.store.DBSize())
}
