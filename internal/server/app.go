// Package server initializes and runs the authentication service: it opens
// the database, applies migrations, selects the verification-code dispatcher,
// and serves the HTTP API with graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/mbortnikov/marketauth/internal/logging"
	"github.com/mbortnikov/marketauth/internal/server/auth"
	"github.com/mbortnikov/marketauth/internal/server/config"
	"github.com/mbortnikov/marketauth/internal/server/httpapi"
	"github.com/mbortnikov/marketauth/internal/server/metrics"
	"github.com/mbortnikov/marketauth/internal/server/notify"
	"github.com/mbortnikov/marketauth/internal/server/repositories/repomanager"
	"github.com/mbortnikov/marketauth/internal/server/services"
)

type App struct {
	config    *config.Config
	logger    logging.Logger
	db        *sql.DB
	registry  *prometheus.Registry
	collector *metrics.Collector
	service   *services.AccountService
}

func NewApp(c *config.Config) (*App, error) {
	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	db, err := sql.Open("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	manager := repomanager.NewPostgresRepositoryManager()
	if err := manager.RunMigrations(context.Background(), db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	dispatcher, err := selectDispatcher(c, logger)
	if err != nil {
		return nil, err
	}

	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	tokens := auth.NewCodec([]byte(c.SecretKey), c.TokenTTL)
	svc := services.NewAccountService(db, manager, tokens, dispatcher, c, collector, logger)

	return &App{
		config:    c,
		logger:    logger,
		db:        db,
		registry:  registry,
		collector: collector,
		service:   svc,
	}, nil
}

func selectDispatcher(c *config.Config, logger logging.Logger) (notify.Dispatcher, error) {
	switch c.SMSProvider {
	case config.SMSProviderSNS:
		return notify.NewSNSDispatcher(c.SNSRegion, c.SNSAccessKeyID,
			c.SNSSecretAccessKey, c.VerificationCodeWindow), nil
	case config.SMSProviderTwilio:
		return notify.NewTwilioDispatcher(c.TwilioAccountSID, c.TwilioAuthToken,
			c.TwilioFromNumber, c.VerificationCodeWindow), nil
	case config.SMSProviderLog:
		return notify.NewLogDispatcher(logger, c.VerificationCodeWindow), nil
	default:
		return nil, fmt.Errorf("unknown sms provider: %s", c.SMSProvider)
	}
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	limiter := httpapi.NewRateLimiter(app.config.AuthRatePerMinute, app.config.AuthRateBurst)

	srv := httpapi.NewServer(app.config.EndpointAddr, app.service,
		app.collector, limiter, app.registry, app.logger)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := srv.Run(ctx); err != nil {
			app.logger.Error(ctx, err.Error())
			cancelFunc()
		}
	}()

	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		app.logger.Error(shutdownCtx, err.Error())
	}

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(context.Background(), err.Error())
	}
}
