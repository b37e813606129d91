// Package server assembles and runs the gophauth process: the HTTP API and,
// when a Redis queue is configured, the mail worker that drains it. Both stop
// on SIGINT, SIGTERM or SIGQUIT.
package server

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/config"
	"github.com/dmitrijs2005/gophauth/internal/server/httpapi"
	"github.com/dmitrijs2005/gophauth/internal/server/notifications"
)

// worker drains the notification queue.
type worker interface {
	Run(ctx context.Context, d notifications.Deliverer) error
}

// runner serves requests until ctx is done.
type runner interface {
	Run(ctx context.Context) error
}

type App struct {
	config *config.Config
	logger logging.Logger
	http   runner
	queue  worker
	mailer notifications.Deliverer
}

func newApp(c *config.Config, logger logging.Logger, srv *httpapi.HTTPServer, queue *notifications.RedisQueue, mailer *notifications.Mailer) *App {
	app := &App{config: c, logger: logger, http: srv, mailer: mailer}
	if queue != nil {
		app.queue = queue
	}
	return app
}

// NewApp wires every component from c. The returned cleanup closes the store
// and the Redis client and must be called after Run returns.
func NewApp(ctx context.Context, c *config.Config) (*App, func(), error) {
	return InitializeApp(ctx, c)
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.http.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startMailWorker(ctx context.Context) {
	app.logger.Info(ctx, "Starting mail worker", "queue", app.config.NotificationQueue)
	if err := app.queue.Run(ctx, app.mailer); err != nil {
		app.logger.Error(ctx, err.Error())
	}
}

// Run blocks until a shutdown signal arrives, ctx is cancelled or the HTTP
// server fails.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	if app.queue != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			app.startMailWorker(ctx)
		}()
	}

	wg.Wait()
	app.logger.Info(ctx, "App stopped")
}
