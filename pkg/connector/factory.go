// pkg/connector/factory.go
package connector

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/David-Botos/movie-cleaning/pkg/config"
	"github.com/David-Botos/movie-cleaning/pkg/converter"
	"github.com/David-Botos/movie-cleaning/pkg/tableio"
)

// ConnectorFactory creates the configured source, sink and database
// connectors. Connectors are shared and closed together.
type ConnectorFactory struct {
	cfg    *config.Config
	logger *zap.Logger

	snowflake *SnowflakeConnector
	postgres  *PostgresConnector
}

// NewConnectorFactory creates a new connector factory
func NewConnectorFactory(cfg *config.Config, logger *zap.Logger) *ConnectorFactory {
	return &ConnectorFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateSnowflakeConnector returns the Snowflake connector, connecting on first use
func (f *ConnectorFactory) CreateSnowflakeConnector(ctx context.Context) (*SnowflakeConnector, error) {
	if f.snowflake != nil {
		return f.snowflake, nil
	}
	if f.cfg.Snowflake == nil {
		return nil, fmt.Errorf("%w: snowflake configuration", config.ErrMissingSetting)
	}

	f.logger.Info("Creating Snowflake connector")
	conn, err := NewSnowflakeConnector(ctx, f.cfg.Snowflake)
	if err != nil {
		return nil, fmt.Errorf("failed to create Snowflake connector: %w", err)
	}
	f.snowflake = conn
	return conn, nil
}

// CreatePostgresConnector returns the PostgreSQL connector, connecting on first use
func (f *ConnectorFactory) CreatePostgresConnector(ctx context.Context) (*PostgresConnector, error) {
	if f.postgres != nil {
		return f.postgres, nil
	}
	if f.cfg.Postgres == nil {
		return nil, fmt.Errorf("%w: postgreSQL configuration", config.ErrMissingSetting)
	}

	f.logger.Info("Creating PostgreSQL connector")
	conn, err := NewPostgresConnector(ctx, f.cfg.Postgres)
	if err != nil {
		return nil, fmt.Errorf("failed to create PostgreSQL connector: %w", err)
	}
	f.postgres = conn
	return conn, nil
}

// CreateSource returns the loader for the configured source kind
func (f *ConnectorFactory) CreateSource(ctx context.Context) (tableio.Loader, error) {
	if f.cfg.SourceKind != config.KindSnowflake {
		return tableio.NewLoader(f.cfg.SourceKind, f.cfg.InputPath)
	}

	conn, err := f.CreateSnowflakeConnector(ctx)
	if err != nil {
		return nil, err
	}
	if err := conn.Validate(ctx); err != nil {
		return nil, err
	}
	return NewSnowflakeSource(conn, f.cfg.SourceTable, f.cfg.SourceQuery), nil
}

// CreateSink returns the writer for the configured sink kind
func (f *ConnectorFactory) CreateSink(ctx context.Context) (tableio.Writer, error) {
	if f.cfg.SinkKind != config.KindPostgres {
		return tableio.NewWriter(f.cfg.SinkKind, f.cfg.OutputPath)
	}

	conn, err := f.CreatePostgresConnector(ctx)
	if err != nil {
		return nil, err
	}
	if err := conn.Validate(ctx); err != nil {
		return nil, err
	}

	conv := converter.NewTypeConverter(f.logger.Named("converter"))
	return NewPostgresSink(conn, conv, f.cfg.TargetSchema, f.cfg.TargetTable, f.cfg.ChunkSize, f.logger.Named("postgres-sink")), nil
}

// Close closes every connector the factory opened
func (f *ConnectorFactory) Close() error {
	var errs []error
	if f.snowflake != nil {
		errs = append(errs, f.snowflake.Close())
		f.snowflake = nil
	}
	if f.postgres != nil {
		errs = append(errs, f.postgres.Close())
		f.postgres = nil
	}
	return errors.Join(errs...)
}
