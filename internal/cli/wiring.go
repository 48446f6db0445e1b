package cli

import (
	"context"
	"os"
	"time"

	"evaluation-console/internal/app"
	"evaluation-console/internal/backend"
	"evaluation-console/internal/config"
	"evaluation-console/internal/infra/memory"
	"evaluation-console/internal/infra/postgres"
	infraredis "evaluation-console/internal/infra/redis"
	"evaluation-console/internal/logging"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"golang.org/x/text/language"
)

// optionCache loads option lists and can drop one once it is stale.
type optionCache interface {
	app.OptionLoader
	Invalidate(ctx context.Context, level int, parent string) error
}

// console groups the collaborators shared by the CLI commands.
type console struct {
	logger    logging.Logger
	client    *backend.Client
	notifier  *app.Notifier
	options   optionCache
	validator *app.Validator
	prefs     app.PreferenceStore
	archive   app.SnapshotStore
	results   *app.ResultsService
	questions *app.QuestionService
	dashboard *app.DashboardService

	closers []func()
}

func (c *console) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
}

func newLogger(cfg config.Config) logging.Logger {
	local := logging.NewStdLogger(os.Stderr, cfg.Log.Env == "development")
	if cfg.Log.RollbarToken == "" {
		return local
	}
	host, _ := os.Hostname()
	return logging.NewRollbarLogger(local, cfg.Log.RollbarToken, cfg.Log.Env, host)
}

// buildConsole connects the backend client, caches and stores described by
// cfg. Redis and Postgres are optional; in-memory stores replace them.
func buildConsole(ctx context.Context, cfg config.Config) (*console, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	c := &console{logger: newLogger(cfg)}
	if rl, ok := c.logger.(*logging.RollbarLogger); ok {
		c.closers = append(c.closers, rl.Close)
	}

	timeout := config.TTLDuration(cfg.Backend.Timeout, 15*time.Second)
	c.client = backend.NewClient(cfg.Backend.BaseURL, cfg.Backend.Role, cfg.Backend.Token, timeout)
	c.notifier = app.NewNotifier(50, c.logger)

	cacheTTL := config.TTLDuration(cfg.Cache.TTL, 2*time.Minute)
	prefTTL := config.TTLDuration(cfg.Redis.TTL, 30*24*time.Hour)
	if cfg.Redis.Addr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		c.closers = append(c.closers, func() { _ = redisClient.Close() })
		c.options = infraredis.NewOptionCache(redisClient, c.client, cacheTTL)
		c.prefs = infraredis.NewPreferenceStore(redisClient, prefTTL)
	} else {
		c.options = memory.NewOptionCache(c.client, cacheTTL)
		c.prefs = memory.NewPreferenceStore()
	}

	if cfg.Postgres.URL != "" {
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			c.Close()
			return nil, err
		}
		c.closers = append(c.closers, pool.Close)
		c.archive = postgres.NewSnapshotStore(pool)
	} else {
		c.archive = memory.NewSnapshotStore()
	}

	c.results = app.NewResultsService(c.client, c.archive, app.NewRanker(language.French), c.notifier, c.logger)
	c.validator = app.NewValidator()
	c.questions = app.NewQuestionService(c.client, c.validator, c.notifier)
	c.dashboard = app.NewDashboardService(c.client, c.notifier)
	return c, nil
}
