package models

import "time"

// RepeatCount is one line of the repeat-sightings report.
type RepeatCount struct {
	PlateID           int64
	Plate             string
	Sightings         int
	ReactivationCount int
}

// DailyTotal is the number of sightings recorded on one local calendar day.
type DailyTotal struct {
	Day   time.Time
	Count int
}

// ObserverActivity is the number of sightings submitted by one observer.
type ObserverActivity struct {
	ObserverID int64
	Sightings  int
}

// DayReport is the end-of-day summary. Today figures are zero when nothing
// was recorded on Day.
type DayReport struct {
	Day          time.Time
	Today        int
	AllTime      int
	ForeignToday int
}

// Page is one page of a paged report along with the total item count.
type Page[T any] struct {
	Items    []T
	Page     int
	PageSize int
	Total    int
}

// Pages returns the number of pages needed for Total items.
func (p Page[T]) Pages() int {
	if p.PageSize <= 0 {
		return 0
	}
	return (p.Total + p.PageSize - 1) / p.PageSize
}
