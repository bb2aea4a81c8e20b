// pkg/connector/adapters.go
package connector

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/David-Botos/movie-cleaning/pkg/converter"
	"github.com/David-Botos/movie-cleaning/pkg/model"
)

// ErrEmptyQuery is returned when a database source has nothing to run
var ErrEmptyQuery = errors.New("source query is empty")

// tableFetcher is the part of SnowflakeConnector a source needs
type tableFetcher interface {
	FetchTable(ctx context.Context, name, query string) (*model.Table, error)
}

// tableLoader is the part of PostgresConnector a sink needs
type tableLoader interface {
	WriteTable(ctx context.Context, metadata *model.TableMetadata, columnDefs []string, valueRows [][]interface{}, batchSize int) (int64, error)
}

// SnowflakeSource loads raw movie rows with a query
type SnowflakeSource struct {
	conn  tableFetcher
	name  string
	query string
}

// NewSnowflakeSource creates a source reading query into a table called name
func NewSnowflakeSource(conn tableFetcher, name, query string) *SnowflakeSource {
	return &SnowflakeSource{conn: conn, name: name, query: query}
}

// Load runs the query
func (s *SnowflakeSource) Load(ctx context.Context) (*model.Table, error) {
	if s.query == "" {
		return nil, ErrEmptyQuery
	}
	return s.conn.FetchTable(ctx, s.name, s.query)
}

// PostgresSink replaces a PostgreSQL table with the cleaned rows
type PostgresSink struct {
	conn      tableLoader
	converter *converter.TypeConverter
	schema    string
	table     string
	batchSize int
	logger    *zap.Logger
}

// NewPostgresSink creates a sink writing to schema.table
func NewPostgresSink(conn tableLoader, conv *converter.TypeConverter, schema, table string, batchSize int, logger *zap.Logger) *PostgresSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PostgresSink{
		conn:      conn,
		converter: conv,
		schema:    schema,
		table:     table,
		batchSize: batchSize,
		logger:    logger,
	}
}

// Write maps the table onto PostgreSQL types and loads it
func (s *PostgresSink) Write(ctx context.Context, table *model.Table) error {
	metadata := s.converter.ColumnMetadata(table, s.schema, s.table)

	for _, note := range s.converter.AnalyzeTableForOptimization(metadata, table) {
		s.logger.Info(note, zap.String("table", s.table))
	}

	defs, err := s.converter.GenerateColumnDefinitions(metadata)
	if err != nil {
		return fmt.Errorf("failed to generate column definitions: %w", err)
	}

	values, err := s.converter.RowValues(table, metadata)
	if err != nil {
		return fmt.Errorf("failed to convert rows for %s: %w", s.table, err)
	}

	inserted, err := s.conn.WriteTable(ctx, metadata, defs, values, s.batchSize)
	if err != nil {
		return err
	}

	if inserted != int64(len(table.Rows)) {
		s.logger.Warn("Row count mismatch after load",
			zap.String("table", s.table),
			zap.Int("expected", len(table.Rows)),
			zap.Int64("inserted", inserted))
	}
	return nil
}
