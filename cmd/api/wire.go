package main

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/bryanwahyu/complyhub/internal/application/matching"
	"github.com/bryanwahyu/complyhub/internal/config"
	"github.com/bryanwahyu/complyhub/internal/domain/assessment"
	"github.com/bryanwahyu/complyhub/internal/domain/billing"
	"github.com/bryanwahyu/complyhub/internal/domain/marketplace"
	"github.com/bryanwahyu/complyhub/internal/infra/cache"
	"github.com/bryanwahyu/complyhub/internal/infra/db/memory"
	"github.com/bryanwahyu/complyhub/internal/infra/db/migrations"
	"github.com/bryanwahyu/complyhub/internal/infra/db/mysql"
	"github.com/bryanwahyu/complyhub/internal/infra/db/postgres"
	"github.com/bryanwahyu/complyhub/internal/logging"
)

// repositories is one storage backend seen through the service ports.
type repositories struct {
	assessments assessment.Repository
	gaps        matching.GapSource
	vendors     cache.Source
	contacts    marketplace.ContactRepository
	plans       billing.SubscriptionLookup
	credits     billing.Credits
	ping        func(ctx context.Context) error
	close       func() error
}

func openSQL(ctx context.Context, cfg *config.Config) (*sql.DB, error) {
	switch cfg.Database.Driver {
	case config.DriverMySQL:
		return mysql.Connect(ctx, cfg.DSN())
	case config.DriverPostgres:
		return postgres.Connect(ctx, cfg.DSN())
	default:
		return nil, fmt.Errorf("no SQL connection for driver %q", cfg.Database.Driver)
	}
}

func openRepositories(ctx context.Context, cfg *config.Config, log logging.Logger) (*repositories, error) {
	if cfg.Database.Driver == config.DriverMemory {
		log.Warn("using the in-memory store; data is lost on restart")
		s := memory.NewStore()
		a := memory.NewAssessmentRepository(s)
		v := memory.NewVendorRepository(s)
		b := memory.NewBillingRepository(s)
		return &repositories{
			assessments: a, gaps: a, vendors: v, contacts: v, plans: b, credits: b,
			ping:  func(context.Context) error { return s.Ping() },
			close: func() error { return nil },
		}, nil
	}

	db, err := openSQL(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("%s connect: %w", cfg.Database.Driver, err)
	}
	if cfg.Database.AutoMigrate {
		n, err := migrations.Up(ctx, db, cfg.Database.Driver)
		if err != nil {
			db.Close()
			return nil, err
		}
		log.Info("migrations applied", logging.Int("count", n))
	}

	r := &repositories{ping: db.PingContext, close: db.Close}
	switch cfg.Database.Driver {
	case config.DriverMySQL:
		a := mysql.NewAssessmentRepository(db)
		v := mysql.NewVendorRepository(db)
		b := mysql.NewBillingRepository(db)
		r.assessments, r.gaps, r.vendors, r.contacts, r.plans, r.credits = a, a, v, v, b, b
	case config.DriverPostgres:
		a := postgres.NewAssessmentRepository(db)
		v := postgres.NewVendorRepository(db)
		b := postgres.NewBillingRepository(db)
		r.assessments, r.gaps, r.vendors, r.contacts, r.plans, r.credits = a, a, v, v, b, b
	}
	return r, nil
}
