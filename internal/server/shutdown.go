package server

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

const defaultShutdownGrace = 30 * time.Second

// shutdownGrace returns how long in-flight requests get to drain,
// falling back to 30s when the config leaves it unset.
func (s *Server) shutdownGrace() time.Duration {
	if secs := s.cfg.Server.ShutdownGraceSeconds; secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return defaultShutdownGrace
}

// Shutdown stops accepting new connections and drains in-flight
// requests. Calling it before the server has started is a no-op.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.RLock()
	srv := s.http
	s.mu.RUnlock()

	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}

// Addr returns the bound listen address, or "" before the server starts.
// Useful when the configured port is 0.
func (s *Server) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// ListenAndServeWithShutdown serves webhook traffic until SIGINT,
// SIGTERM, or a Shutdown call, then drains within the configured
// grace period. It returns nil after a clean shutdown.
func (s *Server) ListenAndServeWithShutdown() error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Server.Host, s.cfg.Server.Port)

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}

	srv := &http.Server{Handler: s.Handler()}

	s.mu.Lock()
	s.http = srv
	s.listener = listener
	s.mu.Unlock()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigs)

	serveDone := make(chan error, 1)
	go func() {
		if err := srv.Serve(listener); err != http.ErrServerClosed {
			serveDone <- err
			return
		}
		serveDone <- nil
	}()

	log.Printf("[server] listening on %s", listener.Addr().String())
	close(s.ready)

	select {
	case sig := <-sigs:
		log.Printf("[server] received %v, shutting down", sig)
	case err := <-serveDone:
		// Serve returned on its own, either an error or a Shutdown call.
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.shutdownGrace())
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("[server] shutdown error: %v", err)
		return err
	}

	log.Printf("[server] shutdown complete")

	<-serveDone
	return nil
}
