package main

import (
	"bufio"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/sourcegraph/conc/pool"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// NewGoFastServer wires up the store, AOF, stats and byte pool for a
// freshly configured server. SetConfig must be called before Start.
func NewGoFastServer(log *zap.Logger) *GoFastServer {
	return &GoFastServer{
		store:    NewStore(),
		stats:    &ServerStats{},
		bytePool: NewBytePool(),
		log:      log,
	}
}

func (s *GoFastServer) SetConfig(config *Config) {
	s.config = config
}

// Start opens the AOF, binds the listener, and begins accepting
// connections. Each accepted connection is handled by a goroutine spawned
// from a conc pool configured to recover individual panics, so one
// connection's handler fault cannot take down the acceptor or any other
// connection (§4.6's "error isolation" requirement).
func (s *GoFastServer) Start() error {
	aof, err := NewAOFWriter(s.config.DataDir)
	if err != nil {
		return fmt.Errorf("failed to open AOF: %w", err)
	}
	s.aof = aof

	address := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	s.listener = listener

	s.runMu.Lock()
	s.running = true
	s.runMu.Unlock()

	s.connPool = pool.New().WithMaxGoroutines(s.config.MaxClients)

	s.log.Info("server started", zap.String("address", address))

	go s.cleanupExpiredKeys()

	for s.isRunning() {
		conn, err := s.listener.Accept()
		if err != nil {
			if s.isRunning() {
				s.log.Warn("accept error", zap.Error(err))
			}
			continue
		}

		s.incrementStat("connections")
		s.connPool.Go(func() {
			s.handleConnection(conn)
		})
	}

	s.connPool.Wait()
	return nil
}

func (s *GoFastServer) isRunning() bool {
	s.runMu.Lock()
	defer s.runMu.Unlock()
	return s.running
}

// Stop gracefully shuts down the server: it stops accepting new
// connections, closes the listener and the AOF, aggregating any errors
// from both rather than discarding all but the last.
func (s *GoFastServer) Stop() error {
	s.runMu.Lock()
	s.running = false
	s.runMu.Unlock()

	var errs error
	if s.listener != nil {
		errs = multierr.Append(errs, s.listener.Close())
	}
	if s.aof != nil {
		errs = multierr.Append(errs, s.aof.Close())
	}
	return errs
}

// handleConnection runs the per-connection read/dispatch/write loop
// described in §4.5: Open (read a line) → Dispatching (parse, dispatch,
// reply, flush) → on handler fault, Error (write -ERROR, flush) → Closed.
func (s *GoFastServer) handleConnection(conn net.Conn) {
	defer conn.Close()

	peer := conn.RemoteAddr().String()
	s.log.Info("connection opened", zap.String("peer", peer))

	reader := bufio.NewReader(conn)
	writer := bufio.NewWriter(conn)

	for {
		cmd, err := s.readCommand(reader)
		if err != nil {
			if err != io.EOF {
				s.log.Debug("read error", zap.String("peer", peer), zap.Error(err))
			}
			break
		}

		if err := s.dispatch(writer, cmd); err != nil {
			s.writeError(writer, "ERROR: "+err.Error())
			writer.Flush()
			break
		}

		if err := writer.Flush(); err != nil {
			s.log.Debug("write error", zap.String("peer", peer), zap.Error(err))
			break
		}
	}

	s.log.Info("connection closed", zap.String("peer", peer))
}

// cleanupExpiredKeys runs a periodic sweep over the store's TTL index as an
// enrichment over strict lazy eviction (§4.2). No test may depend on its
// timing; it exists purely to bound memory held by keys nobody ever reads
// again.
func (s *GoFastServer) cleanupExpiredKeys() {
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()

	for s.isRunning() {
		<-ticker.C
		if removed := s.store.sweepExpired(); removed > 0 {
			s.log.Debug("swept expired keys", zap.Int("count", removed))
		}
	}
}
