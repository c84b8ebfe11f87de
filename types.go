package main

import (
	"net"
	"os"
	"sync"

	"github.com/sourcegraph/conc/pool"
	"go.uber.org/atomic"
	"go.uber.org/zap"
)

// Command is a single parsed inline request: an upper-cased verb plus its
// raw positional arguments. Args retain the exact bytes the client sent;
// the codec never reinterprets them. Raw is the original request line
// (terminator included) used verbatim when mirroring to the AOF.
type Command struct {
	Verb string
	Args [][]byte
	Raw  []byte
}

// Entry is one stored key's value plus its optional absolute expiry
// deadline. ExpiresAt is zero when the key carries no TTL.
type Entry struct {
	Value     []byte
	ExpiresAt int64
}

// Store is the in-memory key-value map plus its TTL index, guarded by a
// single mutex. A read (GET) can mutate state via lazy eviction, so the
// read and the eviction must be atomic with each other.
type Store struct {
	mu      sync.Mutex
	entries map[string]*Entry
}

// AOFWriter durably mirrors raw mutating request lines to disk. A single
// mutex serializes append+flush so bytes from concurrent connections never
// interleave.
type AOFWriter struct {
	mu sync.Mutex
	f  *os.File
}

type BytePool struct {
	pool sync.Pool
}

// GoFastServer is the main server structure: listener, store, AOF, stats,
// config and logger, plus the pool used to isolate connection handlers
// from each other's panics.
type GoFastServer struct {
	store    *Store
	aof      *AOFWriter
	stats    *ServerStats
	bytePool *BytePool
	listener net.Listener
	config   *Config
	log      *zap.Logger

	connPool *pool.Pool
	running  bool
	runMu    sync.Mutex
}

// ServerStats tracks performance metrics with lock-free atomics so hot-path
// increments never contend with a concurrent snapshot read.
type ServerStats struct {
	TotalOps     atomic.Uint64
	GetOps       atomic.Uint64
	SetOps       atomic.Uint64
	DelOps       atomic.Uint64
	IncrOps      atomic.Uint64
	BytesRead    atomic.Uint64
	BytesWritten atomic.Uint64
	Connections  atomic.Uint64
}
