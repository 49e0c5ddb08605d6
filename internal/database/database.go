package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"videoquiz/internal/config"

	_ "github.com/jackc/pgx/v4/stdlib" // PostgreSQL driver, registered as "pgx"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/reflectx"
	_ "github.com/sijms/go-ora/v2" // Oracle driver, registered as "oracle"
)

const (
	DriverOracle   = "oracle"
	DriverPostgres = "pgx"
)

func init() {
	// sqlx does not know go-ora's driver name; Oracle takes :name placeholders.
	sqlx.BindDriver(DriverOracle, sqlx.NAMED)
}

// Open connects to the configured database and verifies the connection.
func Open(ctx context.Context, cfg *config.Config) (*sqlx.DB, error) {
	driver := cfg.DB.Driver
	if driver != DriverOracle && driver != DriverPostgres {
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := sqlx.Open(driver, cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", driver, err)
	}
	if driver == DriverOracle {
		// Oracle reports unquoted column names in upper case.
		db.Mapper = reflectx.NewMapperTagFunc("db", strings.ToUpper, strings.ToUpper)
	}
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping %s database: %w", driver, err)
	}
	return db, nil
}
