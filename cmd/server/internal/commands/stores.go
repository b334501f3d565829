package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/membership/internal/audit"
	"github.com/wolfeidau/membership/internal/service"
	"github.com/wolfeidau/membership/internal/store"
	memorystore "github.com/wolfeidau/membership/internal/store/memory"
	postgresstore "github.com/wolfeidau/membership/internal/store/postgres"
)

type PostgresStoreFlags struct {
	// Connection Configuration
	ConnString string `help:"PostgreSQL connection string" env:"POSTGRES_CONNECTION_STRING"`

	// Connection Pool Configuration
	MaxConns        int32 `help:"maximum number of connections in pool" default:"20"`
	MinConns        int32 `help:"minimum number of connections in pool" default:"5"`
	MaxConnLifetime int32 `help:"maximum connection lifetime in seconds" default:"3600"`
	MaxConnIdleTime int32 `help:"maximum connection idle time in seconds" default:"1800"`

	// Migration Configuration
	AutoMigrate bool `help:"run database migrations on startup" default:"false" env:"MEMBERSHIP_POSTGRES_AUTO_MIGRATE"`

	StatsInterval time.Duration `help:"interval between connection pool stats log lines" default:"1m"`
}

func (s *PostgresStoreFlags) Validate() error {
	if s.ConnString == "" {
		return errors.New("PostgreSQL connection string is required (--postgres-conn-string or POSTGRES_CONNECTION_STRING)")
	}
	return nil
}

func (s *PostgresStoreFlags) open(ctx context.Context) (*pgxpool.Pool, error) {
	pool, err := postgresstore.NewPool(ctx, &postgresstore.PoolConfig{
		ConnString:      s.ConnString,
		MaxConns:        s.MaxConns,
		MinConns:        s.MinConns,
		MaxConnLifetime: s.MaxConnLifetime,
		MaxConnIdleTime: s.MaxConnIdleTime,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	return pool, nil
}

type rawStores struct {
	users         store.UserStore
	organizations store.OrganizationStore
	invitations   store.InvitationStore
	auditLogs     store.AuditLogStore
}

// openStores builds the selected backend and wraps it with audit capture.
// The returned func releases the backend.
func openStores(ctx context.Context, storeType string, pg *PostgresStoreFlags) (service.Stores, func(), error) {
	var (
		raw     rawStores
		release = func() {}
	)

	switch storeType {
	case "postgres":
		if err := pg.Validate(); err != nil {
			return service.Stores{}, nil, err
		}

		pool, err := pg.open(ctx)
		if err != nil {
			return service.Stores{}, nil, err
		}

		if pg.AutoMigrate {
			if err := postgresstore.RunMigrations(ctx, pool); err != nil {
				pool.Close()
				return service.Stores{}, nil, fmt.Errorf("failed to run migrations: %w", err)
			}
			log.Info().Msg("Database migrations completed")
		}

		monitorCtx, cancel := context.WithCancel(ctx)
		if pg.StatsInterval > 0 {
			go postgresstore.MonitorPool(monitorCtx, pool, pg.StatsInterval)
		}

		raw = rawStores{
			users:         postgresstore.NewUserStore(pool),
			organizations: postgresstore.NewOrganizationStore(pool),
			invitations:   postgresstore.NewInvitationStore(pool),
			auditLogs:     postgresstore.NewAuditLogStore(pool),
		}
		release = func() {
			cancel()
			pool.Close()
		}

		log.Info().Msg("Using PostgreSQL stores with shared connection pool")

	default:
		db := memorystore.NewDB()
		raw = rawStores{
			users:         db.Users(),
			organizations: db.Organizations(),
			invitations:   db.Invitations(),
			auditLogs:     memorystore.NewAuditLogStore(),
		}

		log.Info().Msg("Using in-memory stores")
	}

	rec := audit.NewRecorder(raw.auditLogs)

	return service.Stores{
		Users:         audit.NewUserStore(raw.users, rec),
		Organizations: audit.NewOrganizationStore(raw.organizations, rec),
		Invitations:   audit.NewInvitationStore(raw.invitations, rec),
		AuditLogs:     raw.auditLogs,
	}, release, nil
}
