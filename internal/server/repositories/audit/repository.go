package audit

import (
	"context"

	"github.com/dmitrijs2005/plateledger/internal/server/models"
)

// Repository is the append-only audit trail.
type Repository interface {
	Append(ctx context.Context, e *models.AuditEntry) error
	ListByPlate(ctx context.Context, plate string) ([]*models.AuditEntry, error)
}
