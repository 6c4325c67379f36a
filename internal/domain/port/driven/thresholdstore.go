package driven

import (
	"context"

	"github.com/ericfisherdev/reviewrot/internal/domain/model"
)

// ThresholdStore defines the driven port for severity threshold persistence.
type ThresholdStore interface {
	// List returns the stored threshold table ordered by minimum age.
	// An empty table means no thresholds have been saved.
	List(ctx context.Context) (model.SeverityTable, error)

	// Replace atomically swaps the stored table for the given one.
	Replace(ctx context.Context, table model.SeverityTable) error
}
