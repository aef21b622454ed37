package models

import "time"

// Sighting is one accepted observation of a plate.
type Sighting struct {
	ID         int64
	ObserverID int64
	PlateID    int64
	ObservedAt time.Time
}

// SightingOutcome tells the caller whether a sighting counted as a new
// parking event.
type SightingOutcome int

const (
	SightingAccepted SightingOutcome = iota + 1
	SightingDeduplicated
)

func (o SightingOutcome) String() string {
	switch o {
	case SightingAccepted:
		return "accepted"
	case SightingDeduplicated:
		return "deduplicated"
	default:
		return "unknown"
	}
}

// SightingResult is returned by the ledger's submit path.
type SightingResult struct {
	Outcome SightingOutcome
	Plate   string
	IsOwn   bool
	// Reactivated is set when the sighting brought an archived plate back.
	Reactivated bool
	ObservedAt  time.Time
}
