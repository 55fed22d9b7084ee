package ioc

import (
	"context"
	"log/slog"

	"llm-benchmark/internal/adapter/client"
	"llm-benchmark/internal/adapter/secrets"
	"llm-benchmark/internal/adapter/store"
	"llm-benchmark/internal/config"
	"llm-benchmark/internal/domain/docpath"
	"llm-benchmark/internal/domain/repository"
	"llm-benchmark/internal/infra"
	"llm-benchmark/internal/usecase"

	"github.com/cockroachdb/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
)

// App holds every long-lived component. It lives as long as the process.
type App struct {
	Config       *config.Config
	Logger       *slog.Logger
	Registry     *prometheus.Registry
	Catalog      []config.ProviderConfig
	Gateway      *usecase.ProviderGateway
	Store        *store.BlobResultStore
	Orchestrator *usecase.Orchestrator

	closers []func() error
}

func InitApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (_ *App, err error) {
	app := &App{Config: cfg, Logger: logger, Registry: prometheus.NewRegistry()}
	defer func() {
		if err != nil {
			app.Close()
		}
	}()

	app.Registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := infra.NewMetrics(app.Registry)

	app.Catalog, err = config.LoadProviders(cfg.ProvidersFile)
	if err != nil {
		return nil, err
	}
	providers := InitProviders(cfg, app.Catalog, secrets.NewRuntimeVarProvider(cfg.SecretsURLTemplate))
	app.Gateway, err = usecase.NewProviderGateway(providers, cfg.ProviderTimeout, logger, metrics)
	if err != nil {
		return nil, err
	}

	keys, err := docpath.NewDeriver(cfg.ResultsPrefix, docpath.Scheme(cfg.KeyScheme))
	if err != nil {
		return nil, err
	}

	bucket, err := store.OpenBucket(ctx, cfg.BucketURL)
	if err != nil {
		return nil, err
	}
	app.closers = append(app.closers, bucket.Close)

	locker, err := app.initLocker(ctx)
	if err != nil {
		return nil, err
	}

	app.Store = store.NewBlobResultStore(bucket, keys.Prefix(), locker, logger, metrics)
	app.Orchestrator = usecase.NewOrchestrator(app.Gateway, app.Store, keys, logger).
		WithParallelism(cfg.CompareParallelism)
	return app, nil
}

// InitProviders builds one client per catalog entry.
func InitProviders(cfg *config.Config, catalog []config.ProviderConfig, sp repository.SecretProvider) []repository.AIProvider {
	params := client.GenerationParams{Temperature: cfg.Temperature, MaxOutputTokens: cfg.MaxOutputTokens}
	providers := make([]repository.AIProvider, 0, len(catalog))
	for _, p := range catalog {
		switch p.Kind {
		case config.KindGemini:
			providers = append(providers, client.NewGeminiProvider(client.GeminiOptions{
				Name:         p.Name,
				Prefixes:     p.Prefixes,
				Project:      cfg.GoogleProject,
				Location:     cfg.GoogleLocation,
				APIKeySecret: p.APIKeySecret,
				BaseURL:      p.BaseURL,
				Params:       params,
			}, sp))
		default:
			providers = append(providers, client.NewOpenAIProvider(client.OpenAIOptions{
				Name:         p.Name,
				Prefixes:     p.Prefixes,
				BaseURL:      p.BaseURL,
				APIKeySecret: p.APIKeySecret,
				Params:       params,
			}, sp))
		}
	}
	return providers
}

// initLocker returns a redis-backed locker when REDIS_ADDR is set, so that
// several replicas serialize writes to the same document; otherwise locks
// only cover this process.
func (a *App) initLocker(ctx context.Context) (repository.Locker, error) {
	if a.Config.RedisAddr == "" {
		a.Logger.Info("document locks are process-local; set REDIS_ADDR when running several replicas")
		return store.NewMemoryLocker(), nil
	}

	rdb := redis.NewClient(&redis.Options{Addr: a.Config.RedisAddr})
	a.closers = append(a.closers, rdb.Close)
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, errors.Wrapf(err, "failed to connect to redis at %s", a.Config.RedisAddr)
	}
	return store.NewRedisLocker(rdb, a.Config.LockTTL, a.Logger), nil
}

func (a *App) Close() error {
	var errs error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = errors.CombineErrors(errs, a.closers[i]())
	}
	a.closers = nil
	return errs
}
