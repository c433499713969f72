package settlement

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// WeeklyTargetRepository defines the interface for weekly target persistence,
// bound to a tenant scope at construction time.
type WeeklyTargetRepository interface {
	// FindByID finds a weekly target by ID within the bound scope
	FindByID(ctx context.Context, id uuid.UUID) (*WeeklyTarget, error)

	// FindByDriverWeek finds the target row for a driver and ISO week
	FindByDriverWeek(ctx context.Context, driverID uuid.UUID, week Week) (*WeeklyTarget, error)

	// CreateIfAbsent inserts the target unless a row for its (driver, week)
	// already exists, then returns the row that won. Two concurrent summary
	// reads racing to materialize the same week both get the same row back.
	CreateIfAbsent(ctx context.Context, target *WeeklyTarget) (*WeeklyTarget, error)

	// FindOpenEndedBefore lists OPEN targets whose period has ended as of cutoff
	FindOpenEndedBefore(ctx context.Context, cutoff time.Time) ([]WeeklyTarget, error)

	// FindClosedByDriver lists the most recent CLOSED targets for a driver,
	// newest first, up to limit
	FindClosedByDriver(ctx context.Context, driverID uuid.UUID, limit int) ([]WeeklyTarget, error)

	// Save updates a weekly target
	Save(ctx context.Context, target *WeeklyTarget) error
}
