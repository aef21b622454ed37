// Package plates turns raw plate text into the canonical form the ledger
// stores, and validates whole rosters before they reach reconciliation.
// Everything here is pure; nothing touches storage.
package plates

import (
	"regexp"
	"sort"
	"strings"
)

// Cyrillic letters that look like Latin ones on Russian plates.
var lookAlikes = strings.NewReplacer(
	"А", "A", "В", "B", "Е", "E", "К", "K", "М", "M", "Н", "H",
	"О", "O", "Р", "P", "С", "C", "Т", "T", "У", "Y", "Х", "X",
)

var (
	sightingFormat = regexp.MustCompile(`^[А-ЯA-Zа-яa-z][0-9]{3}[А-ЯA-Zа-яa-z]{2}[0-9]{1,3}$`)
	rosterFormat   = regexp.MustCompile(`^[А-ЯA-Zа-яa-z][0-9]{3}[А-ЯA-Zа-яa-z]{2}[0-9]{2,3}$`)
)

// Canonicalize trims, upper-cases and transliterates Cyrillic look-alikes
// to Latin. It does not validate.
func Canonicalize(raw string) string {
	return lookAlikes.Replace(strings.ToUpper(strings.TrimSpace(raw)))
}

// ValidSighting reports whether raw is an acceptable plate in a sighting.
// The region part may be one to three digits.
func ValidSighting(raw string) bool {
	return sightingFormat.MatchString(strings.TrimSpace(raw))
}

// ValidRoster reports whether raw is an acceptable roster row. Roster rows
// need a full two- or three-digit region.
func ValidRoster(raw string) bool {
	return rosterFormat.MatchString(strings.TrimSpace(raw))
}

// RowError points at one rejected roster row. Row numbers are 1-based.
type RowError struct {
	Row   int
	Value string
}

// ParseRoster validates every row and returns the sorted, de-duplicated
// canonical roster. Blank rows are skipped. If any row is invalid the roster
// is nil and every offending row is reported, so a partially valid roster
// can never be applied.
func ParseRoster(rows []string) ([]string, []RowError) {
	var errs []RowError
	seen := make(map[string]struct{}, len(rows))

	for i, row := range rows {
		if strings.TrimSpace(row) == "" {
			continue
		}
		if !ValidRoster(row) {
			errs = append(errs, RowError{Row: i + 1, Value: row})
			continue
		}
		seen[Canonicalize(row)] = struct{}{}
	}
	if len(errs) > 0 {
		return nil, errs
	}

	roster := make([]string, 0, len(seen))
	for p := range seen {
		roster = append(roster, p)
	}
	sort.Strings(roster)
	return roster, nil
}
