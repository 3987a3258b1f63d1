package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/bryanwahyu/complyhub/internal/application"
	"github.com/bryanwahyu/complyhub/internal/application/analysis"
	"github.com/bryanwahyu/complyhub/internal/application/assessments"
	"github.com/bryanwahyu/complyhub/internal/application/contact"
	"github.com/bryanwahyu/complyhub/internal/application/matching"
	"github.com/bryanwahyu/complyhub/internal/application/reports"
	"github.com/bryanwahyu/complyhub/internal/config"
	"github.com/bryanwahyu/complyhub/internal/domain/ai"
	"github.com/bryanwahyu/complyhub/internal/domain/marketplace"
	aiopenai "github.com/bryanwahyu/complyhub/internal/infra/ai/openai"
	"github.com/bryanwahyu/complyhub/internal/infra/cache"
	"github.com/bryanwahyu/complyhub/internal/infra/httpserver"
	"github.com/bryanwahyu/complyhub/internal/infra/storage"
	"github.com/bryanwahyu/complyhub/internal/logging"
	"github.com/bryanwahyu/complyhub/internal/middleware"
)

func newServeCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(c *cobra.Command, _ []string) error {
			cfg, log, err := opts.load()
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()
			return serve(c.Context(), cfg, log)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config, log logging.Logger) error {
	repos, err := openRepositories(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer repos.close()

	checks := map[string]middleware.Checker{"database": middleware.CheckerFunc(repos.ping)}

	var vendors marketplace.Repository = repos.vendors
	if cfg.Redis.Enabled {
		rdb := cache.NewClient(cache.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		defer rdb.Close()
		vc := cache.NewVendorCache(repos.vendors, rdb, cfg.Redis.TTL, log)
		vendors = vc
		checks["redis"] = middleware.CheckerFunc(vc.Ping)
	}

	var store reports.ObjectStore
	if cfg.Minio.Enabled {
		s, err := storage.New(ctx, storage.Config{
			Endpoint:   cfg.Minio.Endpoint,
			Region:     cfg.Minio.Region,
			BucketName: cfg.Minio.BucketName,
			AccessKey:  cfg.Minio.AccessKey,
			SecretKey:  cfg.Minio.SecretKey,
			UseSSL:     cfg.Minio.UseSSL,
		})
		if err != nil {
			return fmt.Errorf("minio init: %w", err)
		}
		store = s
		checks["storage"] = middleware.CheckerFunc(s.Ping)
	}

	var briefer ai.Client
	if cfg.OpenAI.Enabled {
		briefer = aiopenai.NewClient(cfg.OpenAI.APIKey, cfg.OpenAI.Model)
	}

	clock := application.SystemClock{}
	metrics := middleware.NewMetrics()

	analysisSvc := analysis.NewService(repos.assessments, clock, log)
	analysisSvc.Metrics = metrics

	matchingSvc := matching.NewService(repos.gaps, vendors, log)
	matchingSvc.DefaultLimit = cfg.Matching.DefaultLimit
	matchingSvc.MaxLimit = cfg.Matching.MaxLimit

	completion := assessments.NewService(repos.assessments, repos.credits, clock, log)
	completion.CreditCost = cfg.Billing.AssessmentCreditCost

	handler := httpserver.NewRouter(httpserver.Services{
		Analysis:    analysisSvc,
		Matching:    matchingSvc,
		Contact:     contact.NewService(vendors, repos.contacts, repos.plans, clock, log),
		Assessments: completion,
		Reports:     reports.NewService(repos.assessments, store, briefer, clock, log),
	}, httpserver.Options{
		APIKeys:        cfg.Auth.APIKeys,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		Limiter:        middleware.NewRateLimiter(cfg.RateLimit.Capacity, cfg.RateLimit.RefillRate),
		Metrics:        metrics,
		Checks:         checks,
		Log:            log,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening",
			logging.String("addr", srv.Addr),
			logging.String("driver", cfg.Database.Driver),
			logging.Bool("redis", cfg.Redis.Enabled),
			logging.Bool("minio", cfg.Minio.Enabled),
			logging.Bool("openai", cfg.OpenAI.Enabled),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.Server.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
