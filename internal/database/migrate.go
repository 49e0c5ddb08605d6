package database

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	migratepgx "github.com/golang-migrate/migrate/v4/database/pgx"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

//go:embed migrations
var migrationsFS embed.FS

// RunMigrations applies all pending schema migrations for the driver db was
// opened with.
func RunMigrations(ctx context.Context, db *sqlx.DB, logger *zap.Logger) error {
	switch db.DriverName() {
	case DriverPostgres:
		return migratePostgres(db, logger)
	case DriverOracle:
		return migrateOracle(ctx, db, migrationsFS, "migrations/oracle", logger)
	default:
		return fmt.Errorf("no migrations for driver %q", db.DriverName())
	}
}

func migratePostgres(db *sqlx.DB, logger *zap.Logger) error {
	src, err := iofs.New(migrationsFS, "migrations/postgres")
	if err != nil {
		return fmt.Errorf("could not open embedded migrations: %w", err)
	}
	drv, err := migratepgx.WithInstance(db.DB, &migratepgx.Config{})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "pgx", drv)
	if err != nil {
		return fmt.Errorf("could not create migrator: %w", err)
	}
	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			logger.Info("Database schema is up to date")
			return nil
		}
		return fmt.Errorf("could not apply migrations: %w", err)
	}
	version, _, _ := m.Version()
	logger.Info("Migrations completed successfully", zap.Uint("version", version))
	return nil
}

const oracleVersionTable = `CREATE TABLE schema_migrations (
    version VARCHAR2(255) PRIMARY KEY,
    applied_at TIMESTAMP WITH TIME ZONE DEFAULT SYSTIMESTAMP NOT NULL
)`

// migrateOracle runs every *.up.sql file in name order that is not yet
// recorded in schema_migrations. Statements are separated by ";" at line end
// since go-ora executes one statement per call.
func migrateOracle(ctx context.Context, db *sqlx.DB, fsys fs.FS, dir string, logger *zap.Logger) error {
	if _, err := db.ExecContext(ctx, oracleVersionTable); err != nil && !isOracleAlreadyExists(err) {
		return fmt.Errorf("could not create schema_migrations: %w", err)
	}

	var applied []string
	if err := db.SelectContext(ctx, &applied, "SELECT version FROM schema_migrations"); err != nil {
		return fmt.Errorf("could not read applied migrations: %w", err)
	}
	done := make(map[string]bool, len(applied))
	for _, v := range applied {
		done[v] = true
	}

	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return fmt.Errorf("could not read migrations directory: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".up.sql") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	for _, name := range names {
		version := strings.TrimSuffix(name, ".up.sql")
		if done[version] {
			continue
		}
		content, err := fs.ReadFile(fsys, dir+"/"+name)
		if err != nil {
			return fmt.Errorf("could not read migration file %s: %w", name, err)
		}
		for _, stmt := range splitStatements(string(content)) {
			if _, err := db.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("could not execute migration %s: %w", name, err)
			}
		}
		if _, err := db.ExecContext(ctx, db.Rebind("INSERT INTO schema_migrations (version) VALUES (?)"), version); err != nil {
			return fmt.Errorf("could not record migration %s: %w", name, err)
		}
		logger.Info("Executed migration", zap.String("file", name))
	}

	logger.Info("Migrations completed successfully")
	return nil
}

func splitStatements(script string) []string {
	var (
		stmts []string
		cur   strings.Builder
	)
	for _, line := range strings.Split(script, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "--") {
			continue
		}
		cur.WriteString(line)
		cur.WriteString("\n")
		if strings.HasSuffix(trimmed, ";") {
			stmt := strings.TrimSuffix(strings.TrimSpace(cur.String()), ";")
			if stmt != "" {
				stmts = append(stmts, stmt)
			}
			cur.Reset()
		}
	}
	if rest := strings.TrimSpace(cur.String()); rest != "" {
		stmts = append(stmts, rest)
	}
	return stmts
}

// ORA-00955: name is already used by an existing object
func isOracleAlreadyExists(err error) bool {
	return strings.Contains(err.Error(), "ORA-00955")
}
