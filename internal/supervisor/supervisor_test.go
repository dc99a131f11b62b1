package supervisor

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iamNilotpal/epubpress/pkg/logger"
)

type fakeServer struct {
	listenErr error
	shutdowns atomic.Int32
	stop      chan struct{}
}

func newFakeServer() *fakeServer {
	return &fakeServer{stop: make(chan struct{})}
}

func (f *fakeServer) ListenAndServe() error {
	if f.listenErr != nil {
		return f.listenErr
	}
	<-f.stop
	return http.ErrServerClosed
}

func (f *fakeServer) Shutdown(context.Context) error {
	if f.shutdowns.Add(1) == 1 {
		close(f.stop)
	}
	return nil
}

type countingSweeper struct {
	calls atomic.Int32
	err   error
}

func (c *countingSweeper) Sweep(context.Context) error {
	c.calls.Add(1)
	return c.err
}

func TestAPIServiceDrainsOnCancel(t *testing.T) {
	srv := newFakeServer()
	svc := NewAPIService(srv, time.Second, logger.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Serve(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("service did not stop")
	}
	assert.Equal(t, int32(1), srv.shutdowns.Load())
}

func TestAPIServiceReportsListenFailure(t *testing.T) {
	srv := newFakeServer()
	srv.listenErr = errors.New("address already in use")

	err := NewAPIService(srv, time.Second, logger.Nop()).Serve(context.Background())
	assert.ErrorContains(t, err, "address already in use")
}

func TestSweeperServiceTicks(t *testing.T) {
	sweeper := &countingSweeper{err: errors.New("redis down")}
	svc := NewSweeperService(sweeper, 10*time.Millisecond, logger.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Serve(ctx) }()

	require.Eventually(t, func() bool { return sweeper.calls.Load() >= 3 }, 2*time.Second, 5*time.Millisecond)
	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestTreeRunsServices(t *testing.T) {
	tree := NewTree(logger.Nop(), TreeConfig{ShutdownTimeout: time.Second})

	srv := newFakeServer()
	sweeper := &countingSweeper{}
	tree.AddAPIService(NewAPIService(srv, time.Second, logger.Nop()))
	tree.AddMaintenanceService(NewSweeperService(sweeper, 10*time.Millisecond, logger.Nop()))

	ctx, cancel := context.WithCancel(context.Background())
	errCh := tree.ServeBackground(ctx)

	require.Eventually(t, func() bool { return sweeper.calls.Load() >= 1 }, 2*time.Second, 5*time.Millisecond)
	cancel()

	select {
	case <-errCh:
	case <-time.After(5 * time.Second):
		t.Fatal("tree did not stop")
	}
	assert.Equal(t, int32(1), srv.shutdowns.Load())
}
