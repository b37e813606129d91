package server

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/config"
	"github.com/dmitrijs2005/gophauth/internal/server/notifications"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type blockingRunner struct {
	err     error
	started atomic.Bool
}

func (r *blockingRunner) Run(ctx context.Context) error {
	r.started.Store(true)
	if r.err != nil {
		return r.err
	}
	<-ctx.Done()
	return nil
}

type blockingWorker struct {
	started atomic.Bool
}

func (w *blockingWorker) Run(ctx context.Context, d notifications.Deliverer) error {
	w.started.Store(true)
	<-ctx.Done()
	return nil
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	return cfg
}

func runApp(t *testing.T, app *App, ctx context.Context) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		app.Run(ctx)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("app did not stop")
	}
}

func TestApp_RunStopsOnCancel(t *testing.T) {
	http := &blockingRunner{}
	queue := &blockingWorker{}
	app := &App{config: testConfig(), logger: logging.NewDiscardLogger(), http: http, queue: queue}

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(50*time.Millisecond, cancel)

	runApp(t, app, ctx)
	assert.True(t, http.started.Load())
	assert.True(t, queue.started.Load())
}

func TestApp_HTTPFailureStopsWorker(t *testing.T) {
	queue := &blockingWorker{}
	app := &App{
		config: testConfig(),
		logger: logging.NewDiscardLogger(),
		http:   &blockingRunner{err: errors.New("address in use")},
		queue:  queue,
	}

	runApp(t, app, context.Background())
}

func TestApp_NoQueue(t *testing.T) {
	app := &App{config: testConfig(), logger: logging.NewDiscardLogger(), http: &blockingRunner{}}

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(20*time.Millisecond, cancel)
	runApp(t, app, ctx)
}

func TestInitializeApp_MemoryBackend(t *testing.T) {
	cfg := testConfig()
	cfg.StoreBackend = config.StoreMemory

	app, cleanup, err := InitializeApp(context.Background(), cfg)
	require.NoError(t, err)
	defer cleanup()

	assert.NotNil(t, app.http)
	assert.Nil(t, app.queue, "no redis configured")
	assert.NotNil(t, app.mailer)
}

func TestProvideSender(t *testing.T) {
	logger := logging.NewDiscardLogger()
	assert.IsType(t, &notifications.LogSender{}, ProvideSender(nil, logger))

	q := notifications.NewRedisQueue(nil, "k", 1, logger)
	assert.Same(t, q, ProvideSender(q, logger))
}

func TestProvideRedisClient(t *testing.T) {
	cfg := testConfig()
	client, cleanup := ProvideRedisClient(cfg)
	assert.Nil(t, client)
	cleanup()

	cfg.RedisAddr = "127.0.0.1:0"
	client, cleanup = ProvideRedisClient(cfg)
	assert.NotNil(t, client)
	cleanup()

	assert.Nil(t, ProvideQueue(cfg, nil, logging.NewDiscardLogger()))
}
