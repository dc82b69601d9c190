package main

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"testing"
	"time"
)

// 确保收到取消信号时会触发服务器优雅关闭并断开实时连接。
func TestRunServer_ShutdownOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := &stubCloser{}
	srv := newStubServer()

	done := make(chan error, 1)
	go func() {
		done <- runServer(ctx, srv, hub, 500*time.Millisecond)
	}()

	srv.waitStarted(t)

	cancel()

	srv.waitShutdown(t)

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("runServer returned error: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("runServer did not return after cancel")
	}

	if hub.closed.Load() == 0 {
		t.Fatalf("realtime hub was not closed")
	}
}

func TestRunServer_ListenError(t *testing.T) {
	t.Parallel()

	boom := errors.New("address in use")
	hub := &stubCloser{}
	err := runServer(context.Background(), failingServer{err: boom}, hub, 100*time.Millisecond)
	if !errors.Is(err, boom) {
		t.Fatalf("expected listen error, got %v", err)
	}
	if hub.closed.Load() == 0 {
		t.Fatalf("realtime hub was not closed")
	}
}

func TestApplyEnv(t *testing.T) {
	t.Parallel()

	env := map[string]string{
		"JWT_SECRET":             "company-secret",
		"ADMIN_JWT_SECRET":       "admin-secret",
		"DATABASE_DSN":           "postgres://db",
		"RABBITMQ_URL":           "amqp://mq",
		"INITIAL_ADMIN_EMAIL":    "root@example.com",
		"INITIAL_ADMIN_PASSWORD": "pw",
		"PORT":                   "4000",
	}
	cfg := AppConfig{Server: ServerConfig{Addr: ":8080"}}
	cfg.Identity.Secret = "from-file"
	applyEnv(&cfg, func(k string) string { return env[k] })

	if cfg.Auth.CompanySecret != "company-secret" || cfg.Auth.AdminSecret != "admin-secret" {
		t.Fatalf("secrets not applied: %+v", cfg.Auth)
	}
	if cfg.Database.DSN != "postgres://db" || cfg.Notify.Broker.URL != "amqp://mq" {
		t.Fatalf("dsn not applied: %+v %+v", cfg.Database, cfg.Notify.Broker)
	}
	if cfg.Admin.Email != "root@example.com" || cfg.Admin.Password != "pw" {
		t.Fatalf("admin not applied: %+v", cfg.Admin)
	}
	if cfg.Server.Addr != ":4000" {
		t.Fatalf("expected :4000, got %s", cfg.Server.Addr)
	}
	if cfg.Identity.Secret != "from-file" {
		t.Fatalf("unset env must keep file value, got %q", cfg.Identity.Secret)
	}
}

func TestParseDuration(t *testing.T) {
	t.Parallel()

	if d := parseDuration("", time.Second); d != time.Second {
		t.Fatalf("expected default, got %s", d)
	}
	if d := parseDuration("bogus", time.Second); d != time.Second {
		t.Fatalf("expected default for invalid value, got %s", d)
	}
	if d := parseDuration("168h", time.Second); d != 168*time.Hour {
		t.Fatalf("expected 168h, got %s", d)
	}
}

// --- stubs ---

type stubServer struct {
	started        chan struct{}
	shutdownCalled chan struct{}
	closed         atomic.Bool
}

func newStubServer() *stubServer {
	return &stubServer{
		started:        make(chan struct{}),
		shutdownCalled: make(chan struct{}),
	}
}

func (s *stubServer) ListenAndServe() error {
	close(s.started)
	<-s.shutdownCalled
	return http.ErrServerClosed
}

func (s *stubServer) Shutdown(context.Context) error {
	if s.closed.Swap(true) {
		return nil
	}
	close(s.shutdownCalled)
	return nil
}

func (s *stubServer) waitStarted(t *testing.T) {
	t.Helper()
	select {
	case <-s.started:
	case <-time.After(time.Second):
		t.Fatal("server did not start")
	}
}

func (s *stubServer) waitShutdown(t *testing.T) {
	t.Helper()
	select {
	case <-s.shutdownCalled:
	case <-time.After(time.Second):
		t.Fatal("server shutdown was not called")
	}
}

type failingServer struct {
	err error
}

func (s failingServer) ListenAndServe() error          { return s.err }
func (s failingServer) Shutdown(context.Context) error { return nil }

type stubCloser struct {
	closed atomic.Int32
}

func (s *stubCloser) Close() error {
	s.closed.Add(1)
	return nil
}
