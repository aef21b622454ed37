package sightings

import (
	"context"
	"time"

	"github.com/dmitrijs2005/plateledger/internal/server/models"
)

type Repository interface {
	LastObservedAt(ctx context.Context, plateID int64) (time.Time, bool, error)
	Create(ctx context.Context, s *models.Sighting) error
	ListByPlate(ctx context.Context, plate string) ([]time.Time, error)
}
