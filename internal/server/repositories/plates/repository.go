package plates

import (
	"context"

	"github.com/dmitrijs2005/plateledger/internal/server/models"
)

// Repository is the plate registry. Lock* methods take a row lock and are
// only meaningful inside a transaction.
type Repository interface {
	Resolve(ctx context.Context, plate string) (*models.Plate, error)
	CreateIfAbsent(ctx context.Context, plate string, isOwn bool) (int64, error)
	LockByID(ctx context.Context, id int64) (*models.Plate, error)
	LockByPlate(ctx context.Context, plate string) (*models.Plate, error)
	LockOwn(ctx context.Context) ([]*models.Plate, error)
	LockRoster(ctx context.Context) error
	Reactivate(ctx context.Context, id int64) error
	Archive(ctx context.Context, id int64) error
	MarkOwn(ctx context.Context, id int64) error
}
