// Package server ties the listener, the worker pool and the handler
// together into a single owned aggregate. There is no package-level
// state; everything hangs off the Server built at startup.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/safranklin/webpool/internal/config"
	"github.com/safranklin/webpool/internal/handler"
	"github.com/safranklin/webpool/internal/pool"
)

// readBufferSize bounds how much of a request is read before routing.
// Only the request line matters, so one read of this size is enough.
const readBufferSize = 1024

// Server accepts connections serially and hands each one to the worker
// pool as a job that reads the request, writes the canned response and
// closes the connection.
type Server struct {
	cfg      *config.Config
	handler  *handler.Handler
	pool     *pool.Pool
	listener net.Listener
	log      *logrus.Logger

	// closing is closed by Shutdown to make the listener close and the
	// accept loop end.
	closing   chan struct{}
	closeOnce sync.Once
}

// New builds a Server from its configuration and handler. The worker
// pool is started here; the listener is not bound until Listen.
func New(cfg *config.Config, h *handler.Handler, log *logrus.Logger) (*Server, error) {
	p, err := pool.New(cfg.PoolSize, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create worker pool: %w", err)
	}

	return &Server{
		cfg:     cfg,
		handler: h,
		pool:    p,
		log:     log,
		closing: make(chan struct{}),
	}, nil
}

// Listen binds the configured address. A bind failure is fatal to the
// caller; there is nothing to serve without a socket.
func (s *Server) Listen() error {
	ln, err := net.Listen("tcp", s.cfg.Addr())
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.cfg.Addr(), err)
	}
	s.listener = ln
	return nil
}

// Addr reports the bound listener address. Valid only after Listen;
// useful when the configured port is 0.
func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}

// Serve runs the accept loop until ctx is cancelled or Shutdown is
// called, then drains the worker pool before returning. Jobs accepted
// before shutdown all complete; no new connections are taken on.
func (s *Server) Serve(ctx context.Context) error {
	defer s.pool.Shutdown()

	var g errgroup.Group
	g.Go(func() error {
		select {
		case <-ctx.Done():
			s.Shutdown()
		case <-s.closing:
		}
		return s.listener.Close()
	})
	g.Go(func() error {
		err := s.acceptLoop()
		// Wake the watcher even when the loop ends on its own.
		s.Shutdown()
		return err
	})

	if err := g.Wait(); err != nil && !errors.Is(err, net.ErrClosed) {
		return err
	}
	return nil
}

// Run is Listen followed by Serve.
func (s *Server) Run(ctx context.Context) error {
	if err := s.Listen(); err != nil {
		return err
	}
	s.log.WithField("addr", s.Addr().String()).Info("listening")
	return s.Serve(ctx)
}

// Shutdown asks the server to stop accepting connections. Serve then
// drains in-flight jobs and returns. Idempotent.
func (s *Server) Shutdown() {
	s.closeOnce.Do(func() {
		close(s.closing)
	})
}

// acceptLoop accepts connections one at a time and submits each to the
// pool. Transient accept errors are logged and the loop carries on; a
// closed listener ends the loop cleanly.
func (s *Server) acceptLoop() error {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			s.log.WithError(err).Warn("accept failed")
			continue
		}

		if err := s.pool.Submit(s.connJob(conn)); err != nil {
			// Pool already closed; shed the connection.
			s.log.WithError(err).Warn("dropping connection")
			conn.Close()
		}
	}
}

// connJob wraps an accepted connection into the job the pool executes:
// read the request, map it to a response, write it back, close. The job
// owns the connection and always closes it; I/O failures end the job
// without touching the worker.
func (s *Server) connJob(conn net.Conn) pool.Job {
	return pool.JobFunc(func() {
		defer conn.Close()

		log := s.log.WithField("remote_addr", conn.RemoteAddr().String())

		buf := make([]byte, readBufferSize)
		n, err := conn.Read(buf)
		if err != nil {
			log.WithError(err).Debug("read failed")
			return
		}

		resp := s.handler.Handle(buf[:n])
		if _, err := conn.Write(resp); err != nil {
			log.WithError(err).Debug("write failed")
			return
		}

		log.WithField("request_line", handler.RequestLine(buf[:n])).Debug("served request")
	})
}
