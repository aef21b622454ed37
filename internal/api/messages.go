package api

import "time"

type PingRequest struct{}

type PingResponse struct {
	Status string `json:"status"`
}

// SubmitSightingRequest reports one plate seen by an observer. A zero
// ObserverID means the caller's own actor id.
type SubmitSightingRequest struct {
	ObserverID int64  `json:"observer_id,omitempty"`
	Plate      string `json:"plate"`
}

// SubmitSightingResponse carries "accepted" or "deduplicated" in Outcome.
// For a duplicate ObservedAt is the time of the sighting it duplicates.
type SubmitSightingResponse struct {
	Outcome     string    `json:"outcome"`
	Plate       string    `json:"plate"`
	IsOwn       bool      `json:"is_own"`
	Reactivated bool      `json:"reactivated"`
	ObservedAt  time.Time `json:"observed_at"`
}

type SubmitRosterRequest struct {
	ActorID int64    `json:"actor_id,omitempty"`
	Rows    []string `json:"rows"`
}

// RowError points at a rejected roster row; Row is 1-based.
type RowError struct {
	Row   int    `json:"row"`
	Value string `json:"value"`
}

// SubmitRosterResponse either reports the applied change or, with Applied
// unset, every invalid row.
type SubmitRosterResponse struct {
	Applied   bool       `json:"applied"`
	Added     []string   `json:"added"`
	Removed   []string   `json:"removed"`
	RowErrors []RowError `json:"row_errors,omitempty"`
}

type ArchivePlateRequest struct {
	ActorID int64  `json:"actor_id,omitempty"`
	Plate   string `json:"plate"`
}

// ArchivePlateResponse carries "archived" or "already_archived".
type ArchivePlateResponse struct {
	Outcome string `json:"outcome"`
}

// Report kinds accepted by RequestReport.
const (
	ReportRepeatForeign   = "repeat_foreign"
	ReportRepeatOwn       = "repeat_own"
	ReportRepeatArchived  = "repeat_archived"
	ReportDailyTotals     = "daily_totals"
	ReportUserActivity    = "user_activity"
	ReportEndOfDay        = "end_of_day"
	ReportBulkChanges     = "bulk_changes"
	ReportActiveObservers = "active_observers"
)

type ReportRequest struct {
	Kind string `json:"kind"`
	Page int    `json:"page,omitempty"`
}

// ReportResponse fills the section matching Kind. Paged kinds also set
// Page, PageSize, Total and Pages.
type ReportResponse struct {
	Kind     string `json:"kind"`
	Page     int    `json:"page,omitempty"`
	PageSize int    `json:"page_size,omitempty"`
	Total    int    `json:"total,omitempty"`
	Pages    int    `json:"pages,omitempty"`

	RepeatCounts []RepeatCount      `json:"repeat_counts,omitempty"`
	DailyTotals  []DailyTotal       `json:"daily_totals,omitempty"`
	UserActivity []ObserverActivity `json:"user_activity,omitempty"`
	EndOfDay     *DayReport         `json:"end_of_day,omitempty"`
	BulkChanges  []BulkChange       `json:"bulk_changes,omitempty"`
	Observers    []int64            `json:"observers,omitempty"`
}

type RepeatCount struct {
	Plate             string `json:"plate"`
	Sightings         int    `json:"sightings"`
	ReactivationCount int    `json:"reactivation_count"`
}

// DailyTotal.Day is formatted "2006-01-02".
type DailyTotal struct {
	Day   string `json:"day"`
	Count int    `json:"count"`
}

type ObserverActivity struct {
	ObserverID int64 `json:"observer_id"`
	Sightings  int   `json:"sightings"`
}

type DayReport struct {
	Day          string `json:"day"`
	Today        int    `json:"today"`
	AllTime      int    `json:"all_time"`
	ForeignToday int    `json:"foreign_today"`
}

type BulkChange struct {
	ActorID   int64     `json:"actor_id"`
	Added     []string  `json:"added"`
	Removed   []string  `json:"removed"`
	CreatedAt time.Time `json:"created_at"`
}

type PlateHistoryRequest struct {
	Plate string `json:"plate"`
}

type PlateHistoryResponse struct {
	Plate             string      `json:"plate"`
	State             string      `json:"state"`
	ReactivationCount int         `json:"reactivation_count"`
	Sightings         []time.Time `json:"sightings"`
}

type AuditHistoryRequest struct {
	Plate string `json:"plate"`
}

type AuditEntry struct {
	ActorID   int64     `json:"actor_id"`
	Action    string    `json:"action"`
	Plate     string    `json:"plate"`
	CreatedAt time.Time `json:"created_at"`
}

type AuditHistoryResponse struct {
	Entries []AuditEntry `json:"entries"`
}
