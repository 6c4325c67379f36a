package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ericfisherdev/reviewrot/internal/domain/model"
	"github.com/ericfisherdev/reviewrot/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.ThresholdStore = (*ThresholdRepo)(nil)

// ThresholdRepo is the SQLite implementation of the ThresholdStore port interface.
type ThresholdRepo struct {
	db *DB
}

// NewThresholdRepo creates a new ThresholdRepo backed by the given DB.
func NewThresholdRepo(db *DB) *ThresholdRepo {
	return &ThresholdRepo{db: db}
}

// List returns the stored severity thresholds ordered by minimum age.
// Returns an empty table when nothing has been saved.
func (r *ThresholdRepo) List(ctx context.Context) (model.SeverityTable, error) {
	const query = `SELECT severity, min_age_seconds FROM severity_thresholds ORDER BY min_age_seconds, severity`

	rows, err := r.db.Reader.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query severity_thresholds: %w", err)
	}
	defer rows.Close()

	table := model.SeverityTable{}
	for rows.Next() {
		var name string
		var seconds int64
		if err := rows.Scan(&name, &seconds); err != nil {
			return nil, fmt.Errorf("scan severity_thresholds row: %w", err)
		}

		severity, err := model.ParseSeverity(name)
		if err != nil {
			return nil, fmt.Errorf("severity_thresholds row: %w", err)
		}

		table = append(table, model.SeverityThreshold{
			Severity: severity,
			MinAge:   time.Duration(seconds) * time.Second,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate severity_thresholds: %w", err)
	}

	return table, nil
}

// Replace swaps the stored thresholds for table in a single transaction.
// Passing an empty table clears the stored thresholds.
func (r *ThresholdRepo) Replace(ctx context.Context, table model.SeverityTable) error {
	const insert = `INSERT INTO severity_thresholds (severity, min_age_seconds) VALUES (?, ?)`

	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM severity_thresholds`); err != nil {
			return fmt.Errorf("clear severity_thresholds: %w", err)
		}
		for _, th := range table {
			seconds := int64(th.MinAge / time.Second)
			if _, err := tx.ExecContext(ctx, insert, string(th.Severity), seconds); err != nil {
				return fmt.Errorf("insert severity threshold %q: %w", th.Severity, err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("replace severity thresholds: %w", err)
	}
	return nil
}
