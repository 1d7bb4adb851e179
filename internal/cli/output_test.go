package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/pfrederiksen/cfp-events/internal/cfp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleEvents() []*ListedEvent {
	return []*ListedEvent{
		{Index: 1, Event: &cfp.Event{
			Title:     "OSS Summit",
			Link:      "https://sessionize.com/oss",
			Date:      cfp.Str("23 Jun 2025"),
			Location:  cfp.Str("Denver"),
			EventType: cfp.Str("In-person"),
			Status:    cfp.Str("Closing Soon"),
		}},
		{Index: 2, Event: &cfp.Event{Title: "KubeCon", Link: "https://sessionize.com/kubecon"}},
		{Index: 3, Event: &cfp.Event{Title: "OSS Japan", Link: "https://sessionize.com/japan"}},
	}
}

func TestFormatEvent(t *testing.T) {
	events := sampleEvents()

	assert.Equal(t,
		"OSS Summit | Date: 23 Jun 2025 | Location: Denver | Type: In-person | Status: Closing Soon | Link: https://sessionize.com/oss",
		FormatEvent(events[0].Event))
	assert.Equal(t, "KubeCon | Link: https://sessionize.com/kubecon", FormatEvent(events[1].Event))
}

func TestWriteList_Text(t *testing.T) {
	tests := []struct {
		name     string
		result   *ListResult
		limit    int
		contains []string
		excludes []string
	}{
		{
			name:     "empty listing",
			result:   &ListResult{},
			contains: []string{"No open CFPs found."},
		},
		{
			name:     "empty diff",
			result:   &ListResult{OnlyNew: true},
			contains: []string{"No new CFPs found."},
		},
		{
			name:     "all events",
			result:   &ListResult{Events: sampleEvents()},
			contains: []string{"[1] OSS Summit | Date: 23 Jun 2025", "[2] KubeCon", "[3] OSS Japan"},
			excludes: []string{"more"},
		},
		{
			name:     "capped",
			result:   &ListResult{Events: sampleEvents()},
			limit:    2,
			contains: []string{"[1] OSS Summit", "[2] KubeCon", "... and 1 more"},
			excludes: []string{"OSS Japan"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, WriteList(&buf, tt.result, FormatText, tt.limit))
			for _, s := range tt.contains {
				assert.Contains(t, buf.String(), s)
			}
			for _, s := range tt.excludes {
				assert.NotContains(t, buf.String(), s)
			}
		})
	}
}

func TestWriteList_TextWithDetail(t *testing.T) {
	events := sampleEvents()[:1]
	events[0].Detail = &cfp.Detail{
		CFPCloses:        cfp.Str("9 Feb 2025"),
		CFPTimezone:      cfp.Str("UTC"),
		CFPNotifications: cfp.Str("Monday, 24 March"),
	}

	var buf bytes.Buffer
	require.NoError(t, WriteList(&buf, &ListResult{Events: events}, FormatText, 0))
	assert.Contains(t, buf.String(), "\n    CFP closes: 9 Feb 2025 (UTC)")
	assert.Contains(t, buf.String(), "\n    Notifications: Monday, 24 March")
}

func TestWriteList_JSON(t *testing.T) {
	result := &ListResult{
		CheckedAt:  time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		ListingURL: "https://sessionize.com/linux-foundation-events?opencfs=true",
		Events:     sampleEvents(),
		EventCount: 3,
	}

	var buf bytes.Buffer
	require.NoError(t, WriteList(&buf, result, FormatJSON, 1))

	var decoded struct {
		EventCount int `json:"event_count"`
		Events     []struct {
			Index    int     `json:"index"`
			Title    string  `json:"title"`
			Link     string  `json:"link"`
			Date     *string `json:"date"`
			Location *string `json:"location"`
		} `json:"events"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))

	assert.Equal(t, 3, decoded.EventCount)
	require.Len(t, decoded.Events, 3, "limit only applies to text output")
	assert.Equal(t, 2, decoded.Events[1].Index)
	assert.Equal(t, "OSS Summit", decoded.Events[0].Title)
	assert.Equal(t, cfp.Str("23 Jun 2025"), decoded.Events[0].Date)
	assert.Nil(t, decoded.Events[1].Location)
	assert.NotContains(t, buf.String(), `"detail"`)
}

func TestWriteDetail(t *testing.T) {
	result := &DetailResult{
		Link: "https://sessionize.com/oss",
		Detail: &cfp.Detail{
			Title:     cfp.Str("OSS Summit"),
			CFPCloses: cfp.Str("9 Feb 2025"),
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteDetail(&buf, result, FormatText))
	assert.Equal(t, "OSS Summit\nCFP closes: 9 Feb 2025\nLink: https://sessionize.com/oss\n", buf.String())

	buf.Reset()
	require.NoError(t, WriteDetail(&buf, &DetailResult{Link: "x", Detail: &cfp.Detail{}}, FormatText))
	assert.True(t, strings.HasPrefix(buf.String(), "No details found"))

	buf.Reset()
	require.NoError(t, WriteDetail(&buf, result, FormatJSON))
	assert.Contains(t, buf.String(), `"cfp_closes": "9 Feb 2025"`)
	assert.NotContains(t, buf.String(), "cfp_opens")
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat(" JSON ")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f)

	_, err = ParseFormat("yaml")
	assert.Error(t, err)
}
