package cfp

import (
	"crypto/sha1"
	"fmt"
)

// Event is one open CFP as shown on a listing page
type Event struct {
	Title     string  `json:"title"`
	Link      string  `json:"link"`
	Date      *string `json:"date,omitempty"`
	Location  *string `json:"location,omitempty"`
	EventType *string `json:"event_type,omitempty"`
	Status    *string `json:"status,omitempty"` // only set by label-less "is-info" meta items
}

// Detail is the record extracted from a single event page
type Detail struct {
	Title             *string `json:"title,omitempty"`
	EventStarts       *string `json:"event_starts,omitempty"`
	EventEnds         *string `json:"event_ends,omitempty"`
	Location          *string `json:"location,omitempty"`
	CFPOpens          *string `json:"cfp_opens,omitempty"`
	CFPCloses         *string `json:"cfp_closes,omitempty"`
	CFPTimezone       *string `json:"cfp_timezone,omitempty"`
	CFPNotifications  *string `json:"cfp_notifications,omitempty"`
	ScheduleAnnounced *string `json:"schedule_announced,omitempty"`
}

// Str returns a pointer to s, or nil when s is empty
func Str(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Value dereferences an optional field, returning "" when it is absent
func Value(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// ID returns a deterministic identifier for an event.
// The link is the stable part of a listing entry; entries without a link
// fall back to their title.
func ID(evt *Event) string {
	key := "link|" + evt.Link
	if evt.Link == "" {
		key = "title|" + evt.Title
	}
	h := sha1.New()
	h.Write([]byte(key))
	return fmt.Sprintf("%x", h.Sum(nil))
}

// detailFieldNames are the json names of the Detail fields, in the order
// returned by values
var detailFieldNames = []string{
	"title",
	"event_starts",
	"event_ends",
	"location",
	"cfp_opens",
	"cfp_closes",
	"cfp_timezone",
	"cfp_notifications",
	"schedule_announced",
}

func (d *Detail) values() []*string {
	return []*string{
		d.Title,
		d.EventStarts,
		d.EventEnds,
		d.Location,
		d.CFPOpens,
		d.CFPCloses,
		d.CFPTimezone,
		d.CFPNotifications,
		d.ScheduleAnnounced,
	}
}

// MissingFields returns the json names of the detail fields that are absent
func (d *Detail) MissingFields() []string {
	var missing []string
	for i, v := range d.values() {
		if v == nil {
			missing = append(missing, detailFieldNames[i])
		}
	}
	return missing
}
