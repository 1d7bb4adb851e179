package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/pfrederiksen/cfp-events/internal/cfp"
)

// OutputFormat specifies the output format
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

// ParseFormat validates a --format value
func ParseFormat(s string) (OutputFormat, error) {
	format := OutputFormat(strings.ToLower(strings.TrimSpace(s)))
	if format != FormatText && format != FormatJSON {
		return "", fmt.Errorf("invalid format: %s (must be 'text' or 'json')", s)
	}
	return format, nil
}

// ListedEvent is an event with its 1-based position in the full listing
type ListedEvent struct {
	Index int `json:"index"`
	*cfp.Event
	Detail *cfp.Detail `json:"detail,omitempty"`
}

// ListResult contains the data rendered by the list command
type ListResult struct {
	CheckedAt  time.Time      `json:"checked_at"`
	ListingURL string         `json:"listing_url"`
	OnlyNew    bool           `json:"only_new,omitempty"`
	Events     []*ListedEvent `json:"events"`
	EventCount int            `json:"event_count"`
}

// DetailResult contains the data rendered by the detail command
type DetailResult struct {
	Link   string      `json:"link"`
	Cached bool        `json:"cached"`
	Detail *cfp.Detail `json:"detail"`
}

// WriteList writes a listing in the given format. Text output renders at
// most limit events; limit <= 0 renders all of them.
func WriteList(w io.Writer, result *ListResult, format OutputFormat, limit int) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, result)
	case FormatText:
		return writeListText(w, result, limit)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// WriteDetail writes one detail record in the given format
func WriteDetail(w io.Writer, result *DetailResult, format OutputFormat) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, result)
	case FormatText:
		return writeDetailText(w, result)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

func writeJSON(w io.Writer, v interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func writeListText(w io.Writer, result *ListResult, limit int) error {
	if len(result.Events) == 0 {
		if result.OnlyNew {
			_, err := fmt.Fprintln(w, "No new CFPs found.")
			return err
		}
		_, err := fmt.Fprintln(w, "No open CFPs found.")
		return err
	}

	shown := result.Events
	if limit > 0 && len(shown) > limit {
		shown = shown[:limit]
	}

	blocks := make([]string, 0, len(shown))
	for _, le := range shown {
		blocks = append(blocks, formatListed(le))
	}
	if _, err := fmt.Fprintln(w, strings.Join(blocks, "\n\n")); err != nil {
		return err
	}

	if hidden := len(result.Events) - len(shown); hidden > 0 {
		_, err := fmt.Fprintf(w, "\n... and %d more (use --limit 0 or --format json to see all)\n", hidden)
		return err
	}
	return nil
}

// FormatEvent renders an event on one line:
// "Title | Date: … | Location: … | Type: … | Status: … | Link: …"
func FormatEvent(evt *cfp.Event) string {
	parts := []string{evt.Title}
	parts = appendField(parts, "Date", evt.Date)
	parts = appendField(parts, "Location", evt.Location)
	parts = appendField(parts, "Type", evt.EventType)
	parts = appendField(parts, "Status", evt.Status)
	parts = append(parts, "Link: "+evt.Link)
	return strings.Join(parts, " | ")
}

func formatListed(le *ListedEvent) string {
	line := fmt.Sprintf("[%d] %s", le.Index, FormatEvent(le.Event))
	if le.Detail == nil {
		return line
	}

	var b strings.Builder
	b.WriteString(line)
	if le.Detail.CFPCloses != nil {
		b.WriteString("\n    CFP closes: " + *le.Detail.CFPCloses)
		if le.Detail.CFPTimezone != nil {
			b.WriteString(" (" + *le.Detail.CFPTimezone + ")")
		}
	}
	if le.Detail.CFPNotifications != nil {
		b.WriteString("\n    Notifications: " + *le.Detail.CFPNotifications)
	}
	return b.String()
}

func appendField(parts []string, label string, value *string) []string {
	if value == nil {
		return parts
	}
	return append(parts, label+": "+*value)
}

func writeDetailText(w io.Writer, result *DetailResult) error {
	d := result.Detail
	lines := FormatDetail(d)
	if len(lines) == 0 {
		lines = []string{"No details found on the event page."}
	}
	lines = append(lines, "Link: "+result.Link)

	_, err := fmt.Fprintln(w, strings.Join(lines, "\n"))
	return err
}

// FormatDetail renders the present fields of a detail record, one per line
func FormatDetail(d *cfp.Detail) []string {
	fields := []struct {
		label string
		value *string
	}{
		{"Event starts", d.EventStarts},
		{"Event ends", d.EventEnds},
		{"Location", d.Location},
		{"CFP opens", d.CFPOpens},
		{"CFP closes", d.CFPCloses},
		{"Timezone", d.CFPTimezone},
		{"Notifications", d.CFPNotifications},
		{"Schedule announced", d.ScheduleAnnounced},
	}

	var lines []string
	if d.Title != nil {
		lines = append(lines, *d.Title)
	}
	for _, f := range fields {
		if f.value != nil {
			lines = append(lines, f.label+": "+*f.value)
		}
	}
	return lines
}
