// pkg/connector/postgres.go
package connector

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v4/stdlib"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/David-Botos/movie-cleaning/pkg/config"
	"github.com/David-Botos/movie-cleaning/pkg/model"
)

// maxBindParameters is the PostgreSQL limit on placeholders per statement
const maxBindParameters = 65535

// PostgresConnector implements the DatabaseConnector interface for PostgreSQL
type PostgresConnector struct {
	db     *sql.DB
	logger *zap.Logger
	cfg    *config.PostgresConfig
}

// execer lets batchInsert run inside a transaction or directly on the pool
type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// NewPostgresConnector creates and initializes a new PostgreSQL connector
func NewPostgresConnector(ctx context.Context, cfg *config.PostgresConfig) (*PostgresConnector, error) {
	logger := zap.L().Named("postgres-connector")

	logger.Info("Connecting to PostgreSQL",
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port),
		zap.String("database", cfg.Database),
		zap.String("user", cfg.User))

	db, err := sql.Open("pgx", cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize PostgreSQL connection: %w", err)
	}

	ApplyConnectionSettings(
		db,
		cfg.MaxOpenConns,
		cfg.MaxIdleConns,
		cfg.ConnMaxLifetime,
		cfg.ConnMaxIdleTime,
	)

	if err := PingWithTimeout(ctx, db, 5*time.Second); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}

	if cfg.StatementTimeout > 0 {
		_, err = db.ExecContext(
			ctx,
			fmt.Sprintf("SET statement_timeout = %d", cfg.StatementTimeout.Milliseconds()),
		)
		if err != nil {
			logger.Warn("Failed to set statement timeout", zap.Error(err))
		}
	}

	connector := &PostgresConnector{
		db:     db,
		logger: logger,
		cfg:    cfg,
	}

	LogConnectionStats(logger, cfg.Database, db)
	return connector, nil
}

// DB returns the underlying database connection
func (c *PostgresConnector) DB() *sql.DB {
	return c.db
}

// Validate verifies the PostgreSQL connection
func (c *PostgresConnector) Validate(ctx context.Context) error {
	var version string
	if err := c.db.QueryRowContext(ctx, "SELECT version()").Scan(&version); err != nil {
		return fmt.Errorf("failed to query PostgreSQL version: %w", err)
	}

	c.logger.Info("PostgreSQL connection validated",
		zap.String("version", version),
		zap.String("database", c.cfg.Database),
		zap.String("host", c.cfg.Host),
		zap.Int("port", c.cfg.Port))

	return nil
}

// Close closes the database connection
func (c *PostgresConnector) Close() error {
	c.logger.Info("Closing PostgreSQL connection")
	LogConnectionStats(c.logger, c.cfg.Database, c.db)
	return c.db.Close()
}

// EnsureSchema creates a schema if it doesn't exist
func (c *PostgresConnector) EnsureSchema(ctx context.Context, schema string) error {
	_, err := c.db.ExecContext(ctx, "CREATE SCHEMA IF NOT EXISTS "+pq.QuoteIdentifier(schema))
	if err != nil {
		return fmt.Errorf("failed to create schema %s: %w", schema, err)
	}
	return nil
}

// WriteTable replaces the contents of schema.table with the cleaned rows.
// The table is created from columnDefs when absent. Rows must already be
// converted into metadata column order.
func (c *PostgresConnector) WriteTable(
	ctx context.Context,
	metadata *model.TableMetadata,
	columnDefs []string,
	valueRows [][]interface{},
	batchSize int,
) (int64, error) {
	if metadata.Schema != "" {
		if err := c.EnsureSchema(ctx, metadata.Schema); err != nil {
			return 0, err
		}
	}

	if err := c.CreateTableIfNotExists(ctx, metadata.Schema, metadata.Table, columnDefs); err != nil {
		return 0, err
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	fullTableName := qualifiedName(metadata.Schema, metadata.Table)
	if _, err := tx.ExecContext(ctx, "TRUNCATE TABLE "+fullTableName); err != nil {
		return 0, fmt.Errorf("failed to truncate %s: %w", fullTableName, err)
	}

	inserted, err := batchInsert(ctx, tx, metadata.Schema, metadata.Table, metadata.ColumnNames(), valueRows, batchSize)
	if err != nil {
		return inserted, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit %s: %w", fullTableName, err)
	}

	c.logger.Info("Wrote cleaned table",
		zap.String("table", fullTableName),
		zap.Int64("rows", inserted))

	return inserted, nil
}

func batchInsert(
	ctx context.Context,
	db execer,
	schema string,
	table string,
	columns []string,
	valueRows [][]interface{},
	batchSize int,
) (int64, error) {
	if len(valueRows) == 0 || len(columns) == 0 {
		return 0, nil
	}

	batchSize = insertBatchSize(batchSize, len(columns))

	var totalRowsInserted int64
	for i := 0; i < len(valueRows); i += batchSize {
		end := min(i+batchSize, len(valueRows))

		query, args, err := buildInsert(schema, table, columns, valueRows[i:end])
		if err != nil {
			return totalRowsInserted, err
		}

		result, err := db.ExecContext(ctx, query, args...)
		if err != nil {
			return totalRowsInserted, fmt.Errorf("batch insert failed at row %d: %w", i, err)
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			rowsAffected = int64(end - i)
		}
		totalRowsInserted += rowsAffected
	}

	return totalRowsInserted, nil
}

// insertBatchSize keeps a batch under the bind parameter limit
func insertBatchSize(requested, columns int) int {
	if requested <= 0 {
		requested = 1000
	}
	if limit := maxBindParameters / columns; requested > limit {
		return limit
	}
	return requested
}

// buildInsert renders a multi-row INSERT with numbered placeholders
func buildInsert(schema, table string, columns []string, rows [][]interface{}) (string, []interface{}, error) {
	quoted := make([]string, len(columns))
	for i, col := range columns {
		quoted[i] = pq.QuoteIdentifier(col)
	}

	placeholders := make([]string, len(rows))
	args := make([]interface{}, 0, len(rows)*len(columns))
	for j, row := range rows {
		if len(row) != len(columns) {
			return "", nil, fmt.Errorf("row has %d values for %d columns", len(row), len(columns))
		}

		rowPlaceholders := make([]string, len(columns))
		for k, val := range row {
			rowPlaceholders[k] = fmt.Sprintf("$%d", j*len(columns)+k+1)
			args = append(args, val)
		}
		placeholders[j] = "(" + strings.Join(rowPlaceholders, ", ") + ")"
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES %s",
		qualifiedName(schema, table),
		strings.Join(quoted, ", "),
		strings.Join(placeholders, ", "))

	return query, args, nil
}

// CreateTableIfNotExists creates a table with the specified columns if it doesn't exist
func (c *PostgresConnector) CreateTableIfNotExists(
	ctx context.Context,
	schema string,
	table string,
	columnDefs []string,
) error {
	fullTableName := qualifiedName(schema, table)

	createSQL := createTableSQL(schema, table, columnDefs)
	if _, err := c.db.ExecContext(ctx, createSQL); err != nil {
		return fmt.Errorf("failed to create table %s: %w", fullTableName, err)
	}

	c.logger.Debug("Ensured table", zap.String("table", fullTableName))
	return nil
}

func createTableSQL(schema, table string, columnDefs []string) string {
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n\t%s\n)",
		qualifiedName(schema, table),
		strings.Join(columnDefs, ",\n\t"))
}

func qualifiedName(schema, table string) string {
	if schema == "" {
		return pq.QuoteIdentifier(table)
	}
	return pq.QuoteIdentifier(schema) + "." + pq.QuoteIdentifier(table)
}
