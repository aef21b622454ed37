package models

import (
	"fmt"
	"time"
)

// AuditAction is the kind of ownership or archive change recorded.
type AuditAction string

const (
	AuditAdd     AuditAction = "add"
	AuditDelete  AuditAction = "delete"
	AuditArchive AuditAction = "archive"
)

// ParseAuditAction maps a stored value back to an AuditAction.
func ParseAuditAction(s string) (AuditAction, error) {
	switch a := AuditAction(s); a {
	case AuditAdd, AuditDelete, AuditArchive:
		return a, nil
	default:
		return "", fmt.Errorf("unknown audit action %q", s)
	}
}

// AuditEntry references the plate by value so history outlives any change
// to the registry row.
type AuditEntry struct {
	ID        int64
	ActorID   int64
	Action    AuditAction
	Plate     string
	CreatedAt time.Time
}

// ArchiveOutcome is the result of an explicit archive request.
type ArchiveOutcome int

const (
	ArchiveDone ArchiveOutcome = iota + 1
	ArchiveAlreadyArchived
)

func (o ArchiveOutcome) String() string {
	switch o {
	case ArchiveDone:
		return "archived"
	case ArchiveAlreadyArchived:
		return "already_archived"
	default:
		return "unknown"
	}
}
