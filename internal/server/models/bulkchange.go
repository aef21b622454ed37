package models

import (
	"strings"
	"time"
)

// BulkChange summarises one completed roster reconciliation.
type BulkChange struct {
	ID        int64
	ActorID   int64
	Added     []string
	Removed   []string
	CreatedAt time.Time
}

// JoinPlates serialises a plate list the way bulk_changes stores it.
func JoinPlates(plates []string) string {
	return strings.Join(plates, " ")
}

// SplitPlates is the inverse of JoinPlates.
func SplitPlates(s string) []string {
	return strings.Fields(s)
}

// RosterSummary is what a reconciliation reports back to its caller.
type RosterSummary struct {
	Added   []string
	Removed []string
}
