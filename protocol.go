package main

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"
)

// readCommand reads a single inline request line and tokenizes it into a
// Command. There is no length-prefixed multi-bulk parsing — this is the
// simplified inline protocol, not full RESP.
func (s *GoFastServer) readCommand(reader *bufio.Reader) (*Command, error) {
	line, err := reader.ReadString('\n')
	if err != nil {
		return nil, err
	}

	s.stats.BytesRead.Add(uint64(len(line)))

	raw := make([]byte, len(line))
	copy(raw, line)

	trimmed := strings.TrimRight(line, "\r\n")
	fields := strings.Fields(trimmed)
	if len(fields) == 0 {
		return nil, fmt.Errorf("empty command")
	}

	args := make([][]byte, len(fields)-1)
	for i, f := range fields[1:] {
		args[i] = []byte(f)
	}

	return &Command{
		Verb: strings.ToUpper(fields[0]),
		Args: args,
		Raw:  raw,
	}, nil
}

// writeSimpleString writes a RESP simple string reply, e.g. "+OK\r\n".
func (s *GoFastServer) writeSimpleString(w *bufio.Writer, text string) error {
	return s.writeAndCount(w, "+"+text+"\r\n")
}

// writeError writes a RESP error reply, e.g. "-ERR unknown command\r\n".
func (s *GoFastServer) writeError(w *bufio.Writer, text string) error {
	return s.writeAndCount(w, "-"+text+"\r\n")
}

// writeInteger writes a RESP integer reply, e.g. ":42\r\n".
func (s *GoFastServer) writeInteger(w *bufio.Writer, n int64) error {
	return s.writeAndCount(w, ":"+strconv.FormatInt(n, 10)+"\r\n")
}

// writeBulkString writes a RESP bulk string reply. A nil value writes the
// null bulk "$-1\r\n" instead of sizing it as an empty string. The header
// and trailer are assembled in a buffer drawn from the server's byte pool
// to keep this hot path allocation-light.
func (s *GoFastServer) writeBulkString(w *bufio.Writer, value []byte) error {
	if value == nil {
		return s.writeAndCount(w, "$-1\r\n")
	}

	header := strconv.Itoa(len(value))
	total := 1 + len(header) + 2 + len(value) + 2

	buf := s.bytePool.Get(total)
	defer s.bytePool.Put(buf)

	n := 0
	buf[n] = '$'
	n++
	n += copy(buf[n:], header)
	n += copy(buf[n:], "\r\n")
	n += copy(buf[n:], value)
	copy(buf[n:], "\r\n")

	return s.writeBytesAndCount(w, buf)
}

// writeArrayHeader writes the "*<count>\r\n" prefix of an array reply. The
// caller is responsible for writing count bulk-string elements after it.
func (s *GoFastServer) writeArrayHeader(w *bufio.Writer, count int) error {
	return s.writeAndCount(w, "*"+strconv.Itoa(count)+"\r\n")
}

func (s *GoFastServer) writeAndCount(w *bufio.Writer, text string) error {
	return s.writeBytesAndCount(w, []byte(text))
}

func (s *GoFastServer) writeBytesAndCount(w *bufio.Writer, b []byte) error {
	n, err := w.Write(b)
	s.stats.BytesWritten.Add(uint64(n))
	return err
}
