// Package models defines the ledger's persisted records and the typed
// outcomes its operations return.
package models

import "time"

// Plate is one row of the plate registry. Plate holds the canonical string
// and is unique for the lifetime of the system; rows are never deleted.
type Plate struct {
	ID                int64
	Plate             string
	IsOwn             bool
	IsArchived        bool
	ReactivationCount int
	CreatedAt         time.Time
}

// PlateState is the externally visible position of a plate.
type PlateState int

const (
	ActiveForeign PlateState = iota
	ActiveOwn
	Archived
)

func (s PlateState) String() string {
	switch s {
	case ActiveOwn:
		return "active_own"
	case Archived:
		return "archived"
	default:
		return "active_foreign"
	}
}

// State derives the lifecycle state: archived wins over ownership.
func (p *Plate) State() PlateState {
	switch {
	case p.IsArchived:
		return Archived
	case p.IsOwn:
		return ActiveOwn
	default:
		return ActiveForeign
	}
}

// PlateHistory is the detail view of one plate: its registry row and every
// accepted sighting, newest first.
type PlateHistory struct {
	Plate     Plate
	Sightings []time.Time
}
