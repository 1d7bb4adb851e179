package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pfrederiksen/cfp-events/internal/cfp"
)

// SortOrder represents the available sorting options
type SortOrder string

const (
	SortByListing SortOrder = "listing"
	SortByDate    SortOrder = "date"
	SortByTitle   SortOrder = "title"
)

// ParseSortOrder validates a --sort value
func ParseSortOrder(s string) (SortOrder, error) {
	order := SortOrder(strings.ToLower(strings.TrimSpace(s)))
	switch order {
	case SortByListing, SortByDate, SortByTitle:
		return order, nil
	}
	return "", fmt.Errorf("invalid sort order: %s (must be 'listing', 'date' or 'title')", s)
}

// sortEvents reorders events in place. Listing order is kept for ties and
// for SortByListing.
func sortEvents(events []*ListedEvent, order SortOrder) {
	switch order {
	case SortByDate:
		sort.SliceStable(events, func(i, j int) bool {
			return compareByDate(events[i].Event, events[j].Event)
		})
	case SortByTitle:
		sort.SliceStable(events, func(i, j int) bool {
			return strings.ToLower(events[i].Title) < strings.ToLower(events[j].Title)
		})
	}
}

// compareByDate reports whether i starts before j.
// Events with a parseable date come first.
func compareByDate(i, j *cfp.Event) bool {
	dateI := cfp.ParseDate(cfp.Value(i.Date))
	dateJ := cfp.ParseDate(cfp.Value(j.Date))

	switch {
	case !dateI.IsZero() && !dateJ.IsZero():
		return dateI.Before(dateJ)
	case !dateI.IsZero():
		return true
	default:
		return false
	}
}
