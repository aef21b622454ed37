package bulkchanges

import (
	"context"

	"github.com/dmitrijs2005/plateledger/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, c *models.BulkChange) error
	List(ctx context.Context, limit, offset int) ([]*models.BulkChange, error)
	Count(ctx context.Context) (int, error)
}
