package cmd

import (
	"fmt"

	"github.com/frahmantamala/photo-fundraising/internal"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const dbDriver = "pgx"

// openDatabase returns one pgx pool seen two ways: sqlx for the read models
// and gorm for the repositories.
func openDatabase(cfg internal.DatabaseConfig) (*sqlx.DB, *gorm.DB, error) {
	sqlxDB, err := sqlx.Connect(dbDriver, cfg.GetDSN())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlxDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlxDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlxDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlxDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlxDB.DB}), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		_ = sqlxDB.Close()
		return nil, nil, fmt.Errorf("failed to open gorm session: %w", err)
	}

	return sqlxDB, gormDB, nil
}
