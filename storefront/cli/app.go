package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/yashrajoria/course-store/storefront/cart"
	"github.com/yashrajoria/course-store/storefront/clients"
	"github.com/yashrajoria/course-store/storefront/session"
	"github.com/yashrajoria/course-store/storefront/storage"
	"github.com/yashrajoria/course-store/storefront/view"
)

// App is one CLI invocation's wiring.
type App struct {
	Session *session.Store
	Cart    *cart.Store
	View    *view.Terminal
	log     *zap.Logger
	close   func() error
}

func newLogger(verbose bool) *zap.Logger {
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	l, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return l
}

func openStorage(ctx context.Context, cfg *Config) (storage.Storage, func() error, error) {
	switch cfg.Storage {
	case "memory":
		return storage.NewMemory(), func() error { return nil }, nil
	case "redis":
		client, err := storage.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		return storage.NewRedis(client, cfg.Scope, cfg.RedisTTL), client.Close, nil
	default:
		if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o700); err != nil {
			return nil, nil, err
		}
		s, err := storage.OpenSQLite(cfg.DBPath, cfg.Scope)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	}
}

func newApp(cfg *Config, store storage.Storage, closer func() error, out io.Writer, log *zap.Logger) *App {
	term := view.NewTerminal(out, cfg.Currency)
	api := clients.NewAuthClient(cfg.APIBaseURL, cfg.Timeout)

	app := &App{
		Session: session.NewStore(session.NewRepository(store), api,
			session.WithLogger(log.Named("session")),
			session.WithView(term),
			session.WithNavigator(term),
		),
		Cart: cart.NewStore(cart.NewRepository(store),
			cart.WithLogger(log.Named("cart")),
			cart.WithBadge(term),
		),
		View:  term,
		log:   log,
		close: closer,
	}
	return app
}

// Refresh re-projects both stores and prints the header.
func (a *App) Refresh() {
	a.Session.RefreshUI()
	a.Cart.RefreshUI()
	a.View.Header()
}

func (a *App) Close() error {
	_ = a.log.Sync()
	if a.close == nil {
		return nil
	}
	return a.close()
}
