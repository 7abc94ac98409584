package supervisor

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"go.uber.org/zap"
)

type fakeServer struct {
	listenErr  error
	shutdownCh chan struct{}
	shutdowns  int
}

func newFakeServer(listenErr error) *fakeServer {
	return &fakeServer{listenErr: listenErr, shutdownCh: make(chan struct{})}
}

func (f *fakeServer) ListenAndServe() error {
	if f.listenErr != nil {
		return f.listenErr
	}
	<-f.shutdownCh
	return http.ErrServerClosed
}

func (f *fakeServer) Shutdown(context.Context) error {
	f.shutdowns++
	close(f.shutdownCh)
	return nil
}

func TestHTTPService_GracefulShutdown(t *testing.T) {
	srv := newFakeServer(nil)
	svc := NewHTTPService(srv, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Serve(ctx) }()
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve returned %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return")
	}
	if srv.shutdowns != 1 {
		t.Errorf("shutdowns = %d", srv.shutdowns)
	}
}

func TestHTTPService_ListenError(t *testing.T) {
	boom := errors.New("address in use")
	err := NewHTTPService(newFakeServer(boom), 0).Serve(context.Background())
	if !errors.Is(err, boom) {
		t.Fatalf("expected listen error, got %v", err)
	}
}

type stubService struct{ started chan struct{} }

func (s *stubService) Serve(ctx context.Context) error {
	close(s.started)
	<-ctx.Done()
	return ctx.Err()
}

func TestTree_RunsServices(t *testing.T) {
	tree := New(Config{ShutdownTimeout: time.Second}, zap.NewNop())
	svc := &stubService{started: make(chan struct{})}
	tree.Add(svc)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- tree.Serve(ctx) }()

	select {
	case <-svc.started:
	case <-time.After(2 * time.Second):
		t.Fatal("service not started")
	}
	cancel()
	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("tree did not stop")
	}
}
