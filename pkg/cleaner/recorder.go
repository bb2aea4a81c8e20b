// pkg/cleaner/recorder.go
package cleaner

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/David-Botos/movie-cleaning/pkg/model"
)

// OperationRecorder persists cleaning operations for later auditing
type OperationRecorder interface {
	RecordCleaningOperations(ctx context.Context, operations []model.CleaningOperation) error
}

const createCleaningTableSQL = `
	CREATE TABLE IF NOT EXISTS public.cleaned_on_ingress (
		id SERIAL PRIMARY KEY,
		run_id TEXT NOT NULL,
		table_name TEXT NOT NULL,
		column_name TEXT NOT NULL,
		row_index INTEGER NOT NULL,
		original_value TEXT,
		new_value TEXT NOT NULL,
		cleaning_operation TEXT NOT NULL,
		cleaning_reason TEXT NOT NULL,
		cleaned_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
	)
`

const insertCleaningOperationSQL = `
	INSERT INTO public.cleaned_on_ingress
	(run_id, table_name, column_name, row_index, original_value, new_value,
	 cleaning_operation, cleaning_reason, cleaned_at)
	VALUES (:run_id, :table_name, :column_name, :row_index, :original_value, :new_value,
	 :cleaning_operation, :cleaning_reason, :cleaned_at)
`

// operationRow is the database shape of a model.CleaningOperation
type operationRow struct {
	RunID             string    `db:"run_id"`
	TableName         string    `db:"table_name"`
	ColumnName        string    `db:"column_name"`
	RowIndex          int       `db:"row_index"`
	OriginalValue     *string   `db:"original_value"`
	NewValue          string    `db:"new_value"`
	CleaningOperation string    `db:"cleaning_operation"`
	CleaningReason    string    `db:"cleaning_reason"`
	CleanedAt         time.Time `db:"cleaned_at"`
}

func toOperationRow(op model.CleaningOperation) operationRow {
	return operationRow{
		RunID:             op.RunID,
		TableName:         op.TableName,
		ColumnName:        op.ColumnName,
		RowIndex:          op.RowIndex,
		OriginalValue:     toNullableString(op.OriginalValue),
		NewValue:          op.NewValue,
		CleaningOperation: op.CleaningOperation,
		CleaningReason:    op.CleaningReason,
		CleanedAt:         op.CleanedAt,
	}
}

// SQLRecorder writes cleaning operations to the cleaned_on_ingress table
type SQLRecorder struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewSQLRecorder wraps an open connection and ensures the tracking table exists
func NewSQLRecorder(ctx context.Context, db *sql.DB, driverName string, logger *zap.Logger) (*SQLRecorder, error) {
	if db == nil {
		return nil, errors.New("database connection cannot be nil")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	recorder := &SQLRecorder{
		db:     sqlx.NewDb(db, driverName),
		logger: logger,
	}

	if err := recorder.setupCleaningTable(ctx); err != nil {
		return nil, fmt.Errorf("failed to setup cleaning table: %w", err)
	}

	return recorder, nil
}

// setupCleaningTable ensures the cleaned_on_ingress tracking table exists
func (r *SQLRecorder) setupCleaningTable(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if _, err := r.db.ExecContext(ctx, createCleaningTableSQL); err != nil {
		return fmt.Errorf("failed to create tracking table: %w", err)
	}

	r.logger.Info("Ensured cleaned_on_ingress table exists")
	return nil
}

// RecordCleaningOperations inserts operations into the tracking table in one transaction
func (r *SQLRecorder) RecordCleaningOperations(ctx context.Context, operations []model.CleaningOperation) (err error) {
	if len(operations) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				r.logger.Error("Failed to rollback transaction",
					zap.Error(rbErr),
					zap.NamedError("cause", err))
			}
		}
	}()

	stmt, err := tx.PrepareNamedContext(ctx, insertCleaningOperationSQL)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, op := range operations {
		if _, err = stmt.ExecContext(ctx, toOperationRow(op)); err != nil {
			return fmt.Errorf("failed to insert cleaning operation: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	r.logger.Info("Recorded cleaning operations", zap.Int("count", len(operations)))
	return nil
}

// toNullableString safely converts an interface to a nullable string
func toNullableString(v interface{}) *string {
	if isMissing(v) {
		return nil
	}
	s := toString(v)
	return &s
}
