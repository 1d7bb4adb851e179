package scraper

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/pfrederiksen/cfp-events/internal/cfp"
	"github.com/pfrederiksen/cfp-events/internal/query"
)

// Event page layout
var (
	containerSel      = query.Compile("div.ibox-content")
	primaryHeadingSel = query.Compile("h4")
	cfpHeadingSel     = query.Compile("h2")
	subBlockSel       = query.Compile("div.col-sm-6, div.col-sm-12")
	twoColumnSel      = query.Compile("div.col-sm-6")
	fullWidthSel      = query.Compile("div.col-sm-12")
	blockLabelSel     = query.Compile(".font-bold")
	blockValueSel     = query.Compile(".text-large")
	valueSegmentSel   = query.Compile("span")
	timezoneNoteSel   = query.Compile(".text-muted.small")
	timezoneEmphSel   = query.Compile("em")
	listItemSel       = query.Compile("li")
)

const cfpHeading = "call for papers"

// ExtractDetail extracts the detail record of a single event page.
// It never fails: fields whose markup is missing stay nil.
func ExtractDetail(root *goquery.Selection) *cfp.Detail {
	detail := &cfp.Detail{}

	if primary := primaryContainer(root); primary != nil {
		extractEventInfo(primary, detail)
	}
	if secondary := cfpContainer(root); secondary != nil {
		extractCFPInfo(secondary, detail)
	}

	return detail
}

// primaryContainer returns the first container with a populated heading,
// falling back to the first container in the document
func primaryContainer(root *goquery.Selection) *goquery.Selection {
	containers := query.All(root, containerSel)
	if len(containers) == 0 {
		return nil
	}
	for _, c := range containers {
		if _, ok := query.Text(query.First(c, primaryHeadingSel)); ok {
			return c
		}
	}
	return containers[0]
}

// cfpContainer returns the first container whose heading mentions the call
// for papers, or nil
func cfpContainer(root *goquery.Selection) *goquery.Selection {
	for _, c := range query.All(root, containerSel) {
		heading, ok := query.Text(query.First(c, cfpHeadingSel))
		if ok && strings.Contains(strings.ToLower(heading), cfpHeading) {
			return c
		}
	}
	return nil
}

// subBlock is a bold label and its large-text value
type subBlock struct {
	label string // lower-cased
	value *goquery.Selection
}

func subBlocks(container *goquery.Selection, m query.Matcher) []subBlock {
	var blocks []subBlock
	for _, sel := range query.All(container, m) {
		label, _ := query.Text(query.First(sel, blockLabelSel))
		blocks = append(blocks, subBlock{
			label: strings.ToLower(label),
			value: query.First(sel, blockValueSel),
		})
	}
	return blocks
}

// labeledValue assigns the block's value to field when the label contains
// key. A later match overwrites an earlier one.
func labeledValue(b subBlock, key string, field **string) {
	if !strings.Contains(b.label, key) {
		return
	}
	if v, ok := query.Text(b.value); ok {
		*field = cfp.Str(v)
	}
}

func extractEventInfo(c *goquery.Selection, d *cfp.Detail) {
	if title, ok := query.Text(query.First(c, primaryHeadingSel)); ok {
		d.Title = cfp.Str(title)
	}

	for _, b := range subBlocks(c, subBlockSel) {
		labeledValue(b, "event starts", &d.EventStarts)
		labeledValue(b, "event ends", &d.EventEnds)
	}

	for _, b := range subBlocks(c, fullWidthSel) {
		if !strings.Contains(b.label, "location") {
			continue
		}
		d.Location = locationText(b.value)
		break
	}
}

// locationText returns the last inline segment of the value, which holds
// the address or city; earlier segments name the venue
func locationText(value *goquery.Selection) *string {
	if segments := query.All(value, valueSegmentSel); len(segments) > 0 {
		if text, ok := query.Text(segments[len(segments)-1]); ok {
			return cfp.Str(text)
		}
	}
	text, _ := query.Text(value)
	return cfp.Str(text)
}

func extractCFPInfo(c *goquery.Selection, d *cfp.Detail) {
	for _, b := range subBlocks(c, twoColumnSel) {
		labeledValue(b, "call opens", &d.CFPOpens)
		labeledValue(b, "call closes", &d.CFPCloses)
	}

	if note := timezoneNote(c); note != nil {
		text, ok := query.Text(query.First(note, timezoneEmphSel))
		if !ok {
			text, _ = query.Text(note)
		}
		d.CFPTimezone = cfp.Str(text)
	}

	for _, li := range query.All(c, listItemSel) {
		text := query.Flatten(li)
		lower := strings.ToLower(text)
		value := afterColon(text)
		if value == nil {
			continue
		}
		switch {
		case strings.Contains(lower, "notifications"):
			d.CFPNotifications = value
		case strings.Contains(lower, "schedule announced"):
			d.ScheduleAnnounced = value
		}
	}
}

// timezoneNote returns the first muted note held by a full-width block of
// the container. Ancestors outside the container are not considered.
func timezoneNote(c *goquery.Selection) *goquery.Selection {
	for _, block := range query.All(c, fullWidthSel) {
		if note := query.First(block, timezoneNoteSel); note != nil {
			return note
		}
	}
	return nil
}

// afterColon returns the trimmed text after the first colon, or the whole
// text when there is none
func afterColon(text string) *string {
	if _, rest, found := strings.Cut(text, ":"); found {
		return cfp.Str(strings.TrimSpace(rest))
	}
	return cfp.Str(strings.TrimSpace(text))
}
