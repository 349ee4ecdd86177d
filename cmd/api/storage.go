package main

import (
	"context"
	"fmt"

	"talentlink-appointments/config"
	"talentlink-appointments/internal/domain"
	"talentlink-appointments/internal/repository/postgres"
	"talentlink-appointments/internal/repository/sqlite"
	"talentlink-appointments/internal/usecase"
	"talentlink-appointments/pkg/database"
)

type storage struct {
	tx           domain.Transactor
	appointments domain.AppointmentRepository
	eligibility  domain.EligibilityRepository
	health       usecase.HealthCheck
	close        func()
}

func openStorage(ctx context.Context, cfg *config.Config) (*storage, error) {
	switch cfg.DBDriver {
	case config.DriverPostgres:
		pool, err := database.NewPostgresConnection(ctx, cfg.DBUrl)
		if err != nil {
			return nil, err
		}
		return &storage{
			tx:           database.NewTxManager(pool),
			appointments: postgres.NewAppointmentRepository(pool),
			eligibility:  postgres.NewEligibilityRepository(pool),
			health:       pool.Ping,
			close:        pool.Close,
		}, nil

	case config.DriverSQLite:
		db, err := database.NewSQLiteConnection(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		if err := sqlite.AutoMigrate(db); err != nil {
			return nil, fmt.Errorf("failed to migrate sqlite schema: %w", err)
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		return &storage{
			tx:           database.NewGormTxManager(db),
			appointments: sqlite.NewAppointmentRepository(db),
			eligibility:  sqlite.NewEligibilityRepository(db),
			health:       sqlDB.PingContext,
			close:        func() { _ = sqlDB.Close() },
		}, nil
	}
	return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
}
