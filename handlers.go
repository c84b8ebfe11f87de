package main

import (
	"bufio"
	"fmt"
	"strconv"
)

// handlerFunc executes a verb's semantics against the Store and writes its
// reply. It returns an error only for faults that should terminate the
// connection (§7) — the INCR type-error path writes its own reply and
// returns nil so the connection stays open.
type handlerFunc func(s *GoFastServer, w *bufio.Writer, args [][]byte) error

// arity bounds a handler's accepted argument count. max = -1 means
// unbounded (variadic).
type arity struct {
	min, max int
	fn       handlerFunc
}

var dispatchTable = map[string]arity{
	"SET":    {2, -1, handleSet},
	"GET":    {1, 1, handleGet},
	"DELETE": {1, 1, handleDelete},
	"FLUSH":  {0, 0, handleFlush},
	"MGET":   {0, -1, handleMGet},
	"MSET":   {0, -1, handleMSet},
	"INCR":   {1, 1, handleIncr},
	"DBSIZE": {0, 0, handleDBSize},
	"KEYS":   {0, 0, handleKeys},
}

// checkArity validates n against a bounds, producing the same class of
// error a handler-level arity mismatch would — terminating the connection.
func checkArity(a arity, n int) error {
	if n < a.min || (a.max >= 0 && n > a.max) {
		return fmt.Errorf("wrong number of arguments")
	}
	return nil
}

// dispatch looks up cmd.Verb, mirrors it to the AOF if the verb is a
// mutating one, then validates arity and invokes the handler. The AOF
// mirror runs before the arity check by design: a malformed mutating
// command still lands in the log even though its handler then rejects
// it, a sharp edge preserved from the source rather than smoothed over.
// An unknown verb is not an error in the connection-terminating sense —
// it replies and continues.
func (s *GoFastServer) dispatch(w *bufio.Writer, cmd *Command) error {
	s.stats.TotalOps.Inc()

	a, ok := dispatchTable[cmd.Verb]
	if !ok {
		return s.writeError(w, "ERR unknown command")
	}

	if writeSet[cmd.Verb] {
		if err := s.aof.Append(cmd.Raw); err != nil {
			return err
		}
	}

	if err := checkArity(a, len(cmd.Args)); err != nil {
		return err
	}

	return a.fn(s, w, cmd.Args)
}

// handleSet implements SET key value [EX seconds]. Any trailing tokens
// beyond a well-formed "EX <seconds>" (malformed EX, or an unrecognized
// option) are ignored; the value is stored and the reply is always +OK.
func handleSet(s *GoFastServer, w *bufio.Writer, args [][]byte) error {
	s.incrementStat("set_ops")

	key := string(args[0])
	value := args[1]

	var ttl *int64
	rest := args[2:]
	if len(rest) == 2 && string(rest[0]) == "EX" {
		if seconds, err := strconv.ParseInt(string(rest[1]), 10, 64); err == nil {
			ttl = &seconds
		}
		// non-integer seconds: EX is silently ignored, value still stored.
	}

	s.store.Set(key, value, ttl)
	return s.writeSimpleString(w, "OK")
}

// handleGet implements GET key.
func handleGet(s *GoFastServer, w *bufio.Writer, args [][]byte) error {
	s.incrementStat("get_ops")

	value, ok := s.store.Get(string(args[0]))
	if !ok {
		return s.writeBulkString(w, nil)
	}
	return s.writeBulkString(w, value)
}

// handleDelete implements DELETE key.
func handleDelete(s *GoFastServer, w *bufio.Writer, args [][]byte) error {
	s.incrementStat("del_ops")

	if s.store.Delete(string(args[0])) {
		return s.writeInteger(w, 1)
	}
	return s.writeInteger(w, 0)
}

// handleFlush implements FLUSH.
func handleFlush(s *GoFastServer, w *bufio.Writer, args [][]byte) error {
	s.store.Flush()
	return s.writeSimpleString(w, "OK")
}

// handleMGet implements MGET key [key ...], preserving absents at their
// position. Zero keys replies with an empty array.
func handleMGet(s *GoFastServer, w *bufio.Writer, args [][]byte) error {
	keys := make([]string, len(args))
	for i, a := range args {
		keys[i] = string(a)
	}

	values := s.store.MGet(keys)
	if err := s.writeArrayHeader(w, len(values)); err != nil {
		return err
	}
	for _, v := range values {
		if err := s.writeBulkString(w, v); err != nil {
			return err
		}
	}
	return nil
}

// handleMSet implements MSET key value [key value ...]. An odd trailing
// argument is dropped rather than treated as an error.
func handleMSet(s *GoFastServer, w *bufio.Writer, args [][]byte) error {
	s.store.MSet(args)
	return s.writeSimpleString(w, "OK")
}

// handleIncr implements INCR key. A non-numeric current value replies with
// the RESP error and leaves the connection open — this is the one handler
// fault that does not terminate the connection (§7).
func handleIncr(s *GoFastServer, w *bufio.Writer, args [][]byte) error {
	s.incrementStat("incr_ops")

	n, err := s.store.Incr(string(args[0]))
	if err != nil {
		return s.writeError(w, "ERROR: Value is not an integer or out of range")
	}
	return s.writeInteger(w, n)
}

// handleDBSize implements DBSIZE.
func handleDBSize(s *GoFastServer, w *bufio.Writer, args [][]byte) error {
	return s.writeInteger(w, int64(s.store.DBSize()))
}

// handleKeys implements KEYS with no pattern argument, returning every key
// in implementation-defined order.
func handleKeys(s *GoFastServer, w *bufio.Writer, args [][]byte) error {
	keys := s.store.Keys()
	if err := s.writeArrayHeader(w, len(keys)); err != nil {
		return err
	}
	for _, k := range keys {
		if err := s.writeBulkString(w, []byte(k)); err != nil {
			return err
		}
	}
	return nil
}
