package listview

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-kontakt/pkg/schema"
)

// SortBy sorts by the named column. Clicking the same column again flips the
// direction; switching columns resets to ascending.
func (v *View) SortBy(column string) {
	if v.sortColumn == column {
		v.sortAsc = !v.sortAsc
		return
	}
	v.sortColumn = column
	v.sortAsc = true
}

// SortColumn returns the active sort column, empty when unsorted.
func (v *View) SortColumn() string { return v.sortColumn }

// SortAscending reports the active sort direction.
func (v *View) SortAscending() bool { return v.sortAsc }

// Entities returns the projection: a shallow copy of the entity list, sorted
// by the active column. The underlying store order is never mutated.
func (v *View) Entities() []schema.Entity {
	out := append([]schema.Entity(nil), v.entities...)
	if v.sortColumn == "" {
		return out
	}

	column := v.sortColumn
	asc := v.sortAsc
	sort.SliceStable(out, func(i, j int) bool {
		cmp := compareValues(out[i].Value(column), out[j].Value(column))
		if asc {
			return cmp < 0
		}
		return cmp > 0
	})
	return out
}

// compareValues implements the column comparison policy: dates when both
// values parse as dd.mm.yyyy, else numbers when both parse, else
// case-sensitive lexicographic strings. Missing values arrive as "".
func compareValues(a, b string) int {
	if aDate, aOK := parseDate(a); aOK {
		if bDate, bOK := parseDate(b); bOK {
			switch {
			case aDate.Before(bDate):
				return -1
			case aDate.After(bDate):
				return 1
			default:
				return 0
			}
		}
	}
	if aNum, aOK := parseNumber(a); aOK {
		if bNum, bOK := parseNumber(b); bOK {
			switch {
			case aNum < bNum:
				return -1
			case aNum > bNum:
				return 1
			default:
				return 0
			}
		}
	}
	return strings.Compare(a, b)
}

func parseDate(raw string) (time.Time, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return time.Time{}, false
	}
	parsed, err := time.Parse(schema.DateLayout, trimmed)
	if err != nil {
		return time.Time{}, false
	}
	return parsed, true
}

func parseNumber(raw string) (float64, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return 0, false
	}
	parsed, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return 0, false
	}
	return parsed, true
}
