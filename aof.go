package main

import (
	"fmt"
	"os"
	"path/filepath"
)

// writeSet holds the verbs mirrored to the AOF. INCR is mutating but is
// excluded here, same as the source: byte-identical AOF content takes
// priority over replay-correctness, and replay is not implemented (§9, O2).
var writeSet = map[string]bool{
	"SET":    true,
	"DELETE": true,
	"FLUSH":  true,
	"MSET":   true,
}

// NewAOFWriter opens dataDir/server.aof for append, creating the directory
// and the file if needed.
func NewAOFWriter(dataDir string) (*AOFWriter, error) {
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("aof: create data dir: %w", err)
	}

	path := filepath.Join(dataDir, "server.aof")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("aof: open %s: %w", path, err)
	}

	return &AOFWriter{f: f}, nil
}

// Append writes line verbatim to the AOF. The write reaches the kernel
// before Append returns (os.File.Write is unbuffered); no fsync discipline
// is imposed beyond that, matching the source.
func (a *AOFWriter) Append(line []byte) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, err := a.f.Write(line); err != nil {
		return fmt.Errorf("aof: append: %w", err)
	}
	return nil
}

// Close flushes and closes the underlying file.
func (a *AOFWriter) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.f.Close()
}
