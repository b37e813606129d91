package server

import (
	"context"
	"log/slog"

	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/dmitrijs2005/gophauth/internal/server/config"
	"github.com/dmitrijs2005/gophauth/internal/server/httpapi"
	"github.com/dmitrijs2005/gophauth/internal/server/issuer"
	"github.com/dmitrijs2005/gophauth/internal/server/notifications"
	"github.com/dmitrijs2005/gophauth/internal/server/password"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophauth/internal/server/services"
	"github.com/google/wire"
	"github.com/redis/go-redis/v9"
)

// ProviderSet builds an App from a *config.Config.
var ProviderSet = wire.NewSet(
	ProvideLogger,
	ProvideRepositoryManager,
	ProvideRedisClient,
	ProvideQueue,
	ProvideSender,
	ProvideMailer,
	ProvideHasher,
	ProvideSigner,
	ProvideIssuer,
	auth.NewAuthenticator,
	services.OptionsFromConfig,
	services.NewAuthService,
	ProvideHTTPServer,
	newApp,
	wire.Bind(new(services.PasswordHasher), new(*password.Hasher)),
	wire.Bind(new(services.AccessTokenSigner), new(*auth.Signer)),
)

func ProvideLogger() logging.Logger {
	return logging.NewJSONLogger(slog.LevelInfo)
}

func ProvideRepositoryManager(ctx context.Context, cfg *config.Config) (repomanager.RepositoryManager, func(), error) {
	m, err := repomanager.New(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	return m, func() { _ = m.Close() }, nil
}

// ProvideRedisClient returns nil when no Redis address is configured.
func ProvideRedisClient(cfg *config.Config) (*redis.Client, func()) {
	if cfg.RedisAddr == "" {
		return nil, func() {}
	}
	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	return client, func() { _ = client.Close() }
}

// ProvideQueue returns nil without a Redis client.
func ProvideQueue(cfg *config.Config, client *redis.Client, logger logging.Logger) *notifications.RedisQueue {
	if client == nil {
		return nil
	}
	return notifications.NewRedisQueue(client, cfg.NotificationQueue, cfg.NotificationMaxAttempts, logger.With("module", "notifications"))
}

// ProvideSender enqueues to Redis when available and falls back to logging.
func ProvideSender(queue *notifications.RedisQueue, logger logging.Logger) notifications.Sender {
	if queue == nil {
		return notifications.NewLogSender(logger.With("module", "notifications"))
	}
	return queue
}

func ProvideMailer(cfg *config.Config) (*notifications.Mailer, error) {
	return notifications.NewMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPFrom)
}

func ProvideHasher(cfg *config.Config) *password.Hasher {
	return password.NewHasher(cfg.BcryptCost, cfg.HashWorkers)
}

func ProvideSigner(cfg *config.Config) *auth.Signer {
	return auth.NewSigner([]byte(cfg.SecretKey), cfg.AccessTokenValidityDuration)
}

func ProvideIssuer() *issuer.Issuer {
	return issuer.New()
}

func ProvideHTTPServer(cfg *config.Config, logger logging.Logger, svc *services.AuthService, a *auth.Authenticator) *httpapi.HTTPServer {
	return httpapi.NewHTTPServer(cfg.EndpointAddrHTTP, logger, svc, a)
}
