package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
	"github.com/stripe/stripe-go/v82"

	billingmod "github.com/nextweekend/nextweekend/modules/billing"
	"github.com/nextweekend/nextweekend/modules/weekend"
	"github.com/nextweekend/nextweekend/pkg/auth"
	"github.com/nextweekend/nextweekend/pkg/billing"
	"github.com/nextweekend/nextweekend/pkg/config"
	"github.com/nextweekend/nextweekend/pkg/httpserver"
	"github.com/nextweekend/nextweekend/pkg/logger"
	"github.com/nextweekend/nextweekend/pkg/pg"
	"github.com/nextweekend/nextweekend/pkg/profile"
	"github.com/nextweekend/nextweekend/pkg/ratelimiter"
	"github.com/nextweekend/nextweekend/pkg/redis"
)

// Store backends.
const (
	storeSupabase = "supabase"
	storePostgres = "postgres"
	storeMemory   = "memory"

	limiterMemory = "memory"
	limiterRedis  = "redis"
)

type serveConfig struct {
	Base baseConfig

	SiteURL                string `env:"SITE_URL,required"`
	SupabaseURL            string `env:"SUPABASE_URL,required"`
	SupabaseServiceRoleKey string `env:"SUPABASE_SERVICE_ROLE_KEY,required"`
	ProfileStore           string `env:"PROFILE_STORE" envDefault:"supabase"`
	MigrateOnStart         bool   `env:"PG_MIGRATE_ON_START" envDefault:"false"`

	RateLimitStore     string        `env:"RATE_LIMIT_STORE" envDefault:"memory"`
	CheckoutRateLimit  int           `env:"CHECKOUT_RATE_LIMIT" envDefault:"10"`
	CheckoutRateWindow time.Duration `env:"CHECKOUT_RATE_WINDOW" envDefault:"1m"`

	HTTP   httpserver.Config
	Stripe billing.Config
	Auth   auth.Config
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load[serveConfig]()
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg, newLogger(cfg.Base))
		},
	}
}

func serve(ctx context.Context, cfg serveConfig, log *slog.Logger) error {
	var closers []io.Closer
	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i].Close(); err != nil {
				log.Warn("close dependency", logger.Error(err))
			}
		}
	}()

	store, checks, closer, err := openProfileStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	if closer != nil {
		closers = append(closers, closer)
	}

	limiter, limiterChecks, closer, err := openLimiter(ctx, cfg)
	if err != nil {
		return err
	}
	if closer != nil {
		closers = append(closers, closer)
	}
	checks = append(checks, limiterChecks...)

	provider := billing.NewStripeProvider(stripe.NewClient(cfg.Stripe.SecretKey), log)
	verifier, err := billing.NewVerifier(cfg.Stripe.WebhookSecret)
	if err != nil {
		return err
	}
	checkout, err := billing.NewCheckoutInitiator(provider, cfg.SiteURL)
	if err != nil {
		return err
	}
	router := billing.NewRouter(billing.NewReconciler(store, provider, billing.WithReconcilerLogger(log)), log)

	tokens, err := auth.NewVerifier(cfg.Auth.JWTSecret, auth.WithLeeway(cfg.Auth.Leeway))
	if err != nil {
		return err
	}
	weekendModule, err := weekend.New(store, tokens, weekend.WithLogger(log))
	if err != nil {
		return err
	}

	handler := newRouter(log,
		billingmod.New(verifier, router, checkout,
			billingmod.WithCheckoutLimiter(limiter),
			billingmod.WithPlans(cfg.Stripe.Plans),
			billingmod.WithLogger(log),
		),
		weekendModule,
		checks...,
	)

	log.Info("starting service",
		slog.String("profile_store", cfg.ProfileStore),
		slog.String("rate_limit_store", cfg.RateLimitStore),
	)
	srv := httpserver.NewFromConfig(cfg.HTTP, httpserver.WithLogger(log))
	return srv.Run(ctx, handler)
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

func openProfileStore(ctx context.Context, cfg serveConfig, log *slog.Logger) (profile.Store, []httpserver.Check, io.Closer, error) {
	switch cfg.ProfileStore {
	case storeSupabase:
		s, err := profile.NewSupabaseStore(cfg.SupabaseURL, cfg.SupabaseServiceRoleKey, profile.WithLogger(log))
		if err != nil {
			return nil, nil, nil, err
		}
		return s, []httpserver.Check{{Name: "profiles", Fn: s.Ping}}, nil, nil

	case storePostgres:
		pgCfg, err := config.Load[pg.Config]()
		if err != nil {
			return nil, nil, nil, err
		}
		pool, err := pg.Connect(ctx, pgCfg)
		if err != nil {
			return nil, nil, nil, err
		}
		if cfg.MigrateOnStart {
			if err := pg.Migrate(ctx, pool, migrationsFS, pgCfg, log); err != nil {
				pool.Close()
				return nil, nil, nil, err
			}
		}
		closer := closerFunc(func() error { pool.Close(); return nil })
		return profile.NewPostgresStore(pool), []httpserver.Check{{Name: "profiles", Fn: pg.Healthcheck(pool)}}, closer, nil

	case storeMemory:
		log.Warn("using in-memory profile store, data is lost on restart")
		return profile.NewMemoryStore(), nil, nil, nil

	default:
		return nil, nil, nil, fmt.Errorf("unknown PROFILE_STORE %q", cfg.ProfileStore)
	}
}

func openLimiter(ctx context.Context, cfg serveConfig) (*ratelimiter.Limiter, []httpserver.Check, io.Closer, error) {
	rlCfg := ratelimiter.Config{Limit: cfg.CheckoutRateLimit, Window: cfg.CheckoutRateWindow}

	switch cfg.RateLimitStore {
	case limiterMemory:
		store := ratelimiter.NewMemoryStore()
		l, err := ratelimiter.New(store, rlCfg)
		if err != nil {
			store.Close()
			return nil, nil, nil, err
		}
		return l, nil, closerFunc(func() error { store.Close(); return nil }), nil

	case limiterRedis:
		redisCfg, err := config.Load[redis.Config]()
		if err != nil {
			return nil, nil, nil, err
		}
		client, err := redis.Connect(ctx, redisCfg)
		if err != nil {
			return nil, nil, nil, err
		}
		l, err := ratelimiter.New(ratelimiter.NewRedisStore(client, redisCfg.KeyPrefix), rlCfg)
		if err != nil {
			return nil, nil, nil, errors.Join(err, client.Close())
		}
		return l, []httpserver.Check{{Name: "redis", Fn: redis.Healthcheck(client)}}, client, nil

	default:
		return nil, nil, nil, fmt.Errorf("unknown RATE_LIMIT_STORE %q", cfg.RateLimitStore)
	}
}
