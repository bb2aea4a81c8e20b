// pkg/converter/converter.go
package converter

import (
	"fmt"

	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/David-Botos/movie-cleaning/pkg/model"
)

// TypeConverter maps cleaned columns onto PostgreSQL types and values
type TypeConverter struct {
	logger *zap.Logger
	config TypeConverterConfig
}

// TypeConverterConfig provides configuration options for type conversion
type TypeConverterConfig struct {
	// Whether to narrow column types from the observed values
	OptimizeStorage bool
	// Whether to treat empty strings as NULL
	EmptyStringAsNull bool
	// Rows inspected when inferring a passthrough column's kind, 0 means all
	SampleSize int
}

// DefaultConfig returns the default configuration
func DefaultConfig() TypeConverterConfig {
	return TypeConverterConfig{
		OptimizeStorage:   true,
		EmptyStringAsNull: true,
		SampleSize:        1000,
	}
}

// NewTypeConverter creates a new TypeConverter with default configuration
func NewTypeConverter(logger *zap.Logger) *TypeConverter {
	return NewTypeConverterWithConfig(logger, DefaultConfig())
}

// NewTypeConverterWithConfig creates a TypeConverter with custom configuration
func NewTypeConverterWithConfig(logger *zap.Logger, config TypeConverterConfig) *TypeConverter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TypeConverter{
		logger: logger,
		config: config,
	}
}

// ColumnMetadata describes a cleaned table for the given target schema and table name
func (c *TypeConverter) ColumnMetadata(table *model.Table, schema, name string) *model.TableMetadata {
	metadata := &model.TableMetadata{
		Schema:  schema,
		Table:   name,
		Columns: make([]model.Column, 0, len(table.Columns)),
	}

	for _, col := range table.Columns {
		kind := knownKind(col)
		if kind == model.KindPassthrough {
			kind = c.inferKind(table, col)
		}

		metadata.Columns = append(metadata.Columns, model.Column{
			Name:     col,
			Kind:     kind,
			PgType:   MapKindToPostgres(kind),
			Nullable: true,
		})
	}

	if c.config.OptimizeStorage {
		metadata = c.OptimizeTableMetadata(metadata, table)
	}

	c.logger.Debug("Built column metadata",
		zap.String("table", name),
		zap.Int("columns", len(metadata.Columns)))

	return metadata
}

// GenerateColumnDefinitions creates PostgreSQL column definitions
func (c *TypeConverter) GenerateColumnDefinitions(metadata *model.TableMetadata) ([]string, error) {
	definitions := make([]string, 0, len(metadata.Columns))

	for _, col := range metadata.Columns {
		if col.Name == "" {
			return nil, fmt.Errorf("column %d of %s has no name", len(definitions), metadata.Table)
		}

		pgType := col.PgType
		if pgType == "" {
			pgType = MapKindToPostgres(col.Kind)
		}

		nullability := "NULL"
		if !col.Nullable {
			nullability = "NOT NULL"
		}

		definitions = append(definitions, fmt.Sprintf("%s %s %s",
			pq.QuoteIdentifier(col.Name),
			pgType,
			nullability))
	}

	return definitions, nil
}
