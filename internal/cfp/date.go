package cfp

import (
	"strings"
	"time"
)

var dateLayouts = []string{
	"2 Jan 2006",
	"02 Jan 2006",
	"2 January 2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"Jan 2 2006",
	"2006-01-02",
	"1/2/2006",
}

// ParseDate attempts to parse listing date text into a time.Time.
// Returns time.Time{} (zero value) if parsing fails.
// Supports single dates ("12 Dec 2024", "Dec 12, 2024") and ranges
// ("12 Dec 2024 - 14 Dec 2024", "12 - 14 Dec 2024"), where the start of the
// range is returned.
func ParseDate(dateText string) time.Time {
	text := strings.Join(strings.Fields(dateText), " ")
	if text == "" {
		return time.Time{}
	}

	if t := parseSingle(text); !t.IsZero() {
		return t
	}

	// Ranges: normalize the en dash and take the start
	text = strings.ReplaceAll(text, "–", "-")
	parts := strings.Split(text, "-")
	if len(parts) < 2 {
		return time.Time{}
	}
	start := strings.TrimSpace(parts[0])
	end := strings.TrimSpace(parts[len(parts)-1])

	if t := parseSingle(start); !t.IsZero() {
		return t
	}

	// "12 - 14 Dec 2024" or "12 Dec - 14 Dec 2024": borrow the missing
	// month and year from the end of the range
	endFields := strings.Fields(end)
	startFields := strings.Fields(start)
	if len(endFields) < 2 || len(startFields) == 0 {
		return time.Time{}
	}
	switch len(startFields) {
	case 1:
		start = strings.Join(append(startFields, endFields[len(endFields)-2:]...), " ")
	default:
		start = start + " " + endFields[len(endFields)-1]
	}
	return parseSingle(start)
}

func parseSingle(text string) time.Time {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, text); err == nil {
			return t
		}
	}
	return time.Time{}
}

// FormatDateNice formats date text as "Mon, Jan 2 2006" when it parses,
// and returns it unchanged otherwise
func FormatDateNice(dateText string) string {
	t := ParseDate(dateText)
	if t.IsZero() {
		return dateText
	}
	return t.Format("Mon, Jan 2 2006")
}
