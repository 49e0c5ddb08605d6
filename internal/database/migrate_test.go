package database

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"testing/fstest"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSplitStatements(t *testing.T) {
	script := `-- users
CREATE TABLE a (
    id NUMBER
);

CREATE INDEX idx_a ON a (id);
CREATE TABLE b (id NUMBER)`

	stmts := splitStatements(script)
	require.Len(t, stmts, 3)
	assert.Equal(t, "CREATE TABLE a (\n    id NUMBER\n)", stmts[0])
	assert.Equal(t, "CREATE INDEX idx_a ON a (id)", stmts[1])
	assert.Equal(t, "CREATE TABLE b (id NUMBER)", stmts[2])
}

func TestMigrateOracle_AppliesPendingOnly(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()
	db := sqlx.NewDb(mockDB, DriverOracle)

	fsys := fstest.MapFS{
		"m/000001_init.up.sql":   {Data: []byte("CREATE TABLE a (id NUMBER);")},
		"m/000001_init.down.sql": {Data: []byte("DROP TABLE a;")},
		"m/000002_more.up.sql":   {Data: []byte("CREATE TABLE b (id NUMBER);\nCREATE INDEX ib ON b (id);")},
	}

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE schema_migrations")).
		WillReturnError(errors.New("ORA-00955: name is already used by an existing object"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT version FROM schema_migrations")).
		WillReturnRows(sqlmock.NewRows([]string{"version"}).AddRow("000001_init"))
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE b (id NUMBER)")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("CREATE INDEX ib ON b (id)")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO schema_migrations (version) VALUES (:arg1)")).
		WithArgs("000002_more").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, migrateOracle(context.Background(), db, fsys, "m", zap.NewNop()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrateOracle_StatementFailure(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()
	db := sqlx.NewDb(mockDB, DriverOracle)

	fsys := fstest.MapFS{"m/000001_init.up.sql": {Data: []byte("CREATE TABLE a (id NUMBER);")}}

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE schema_migrations")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT version FROM schema_migrations")).
		WillReturnRows(sqlmock.NewRows([]string{"version"}))
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE a")).WillReturnError(errors.New("ORA-01031: insufficient privileges"))

	err = migrateOracle(context.Background(), db, fsys, "m", zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "000001_init.up.sql")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEmbeddedMigrationsPresent(t *testing.T) {
	for _, dir := range []string{"migrations/postgres", "migrations/oracle"} {
		entries, err := migrationsFS.ReadDir(dir)
		require.NoError(t, err)
		assert.NotEmpty(t, entries, dir)
	}
	stmts := func() []string {
		b, err := migrationsFS.ReadFile("migrations/oracle/000001_init.up.sql")
		require.NoError(t, err)
		return splitStatements(string(b))
	}()
	assert.Len(t, stmts, 6)
}

func TestRunMigrations_UnknownDriver(t *testing.T) {
	mockDB, _, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()

	err = RunMigrations(context.Background(), sqlx.NewDb(mockDB, "sqlite3"), zap.NewNop())
	assert.Error(t, err)
}
