package scraper

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/pfrederiksen/cfp-events/internal/cfp"
	"github.com/pfrederiksen/cfp-events/internal/query"
)

// Listing page layout
var (
	entrySel     = query.Compile("div.c-entry")
	entryLinkSel = query.Compile(".c-entry__title a")
	metaItemSel  = query.Compile("ul.c-entry__meta li.c-entry__meta-item")
	metaLabelSel = query.Compile(".c-entry__meta-label")
	metaValueSel = query.Compile(".c-entry__meta-value")
)

// infoMarker marks a meta item that shows a status value without a label
const infoMarker = "is-info"

// metaItem is one label/value pair attached to a listing entry
type metaItem struct {
	sel      *goquery.Selection
	label    string
	hasLabel bool
	value    string
	hasValue bool
}

// metaRule applies to a meta item when match returns true.
// Rules are evaluated in order and the first match handles the item.
type metaRule struct {
	name  string
	match func(item metaItem) bool
	apply func(evt *cfp.Event, item metaItem)
}

// labeledFields maps label substrings to the field they fill, in priority
// order: a label containing both "date" and "type" sets Date.
var labeledFields = []struct {
	key   string
	field func(evt *cfp.Event) **string
}{
	{"date", func(evt *cfp.Event) **string { return &evt.Date }},
	{"location", func(evt *cfp.Event) **string { return &evt.Location }},
	{"type", func(evt *cfp.Event) **string { return &evt.EventType }},
}

var metaRules = []metaRule{
	{
		name:  "labeled",
		match: func(item metaItem) bool { return item.hasLabel },
		apply: func(evt *cfp.Event, item metaItem) {
			label := strings.ToLower(item.label)
			for _, lf := range labeledFields {
				if strings.Contains(label, lf.key) {
					setIfPresent(lf.field(evt), item)
					return
				}
			}
		},
	},
	{
		name:  "status",
		match: func(item metaItem) bool { return !item.hasLabel && query.HasClass(item.sel, infoMarker) },
		apply: func(evt *cfp.Event, item metaItem) { setIfPresent(&evt.Status, item) },
	},
}

// setIfPresent overwrites an earlier value only when the item carries one
func setIfPresent(field **string, item metaItem) {
	if item.hasValue {
		*field = cfp.Str(item.value)
	}
}

// ExtractListing extracts one event per entry container in document order.
// Path-only links are resolved against origin. A page without entries
// yields an empty, non-nil slice.
func ExtractListing(root *goquery.Selection, origin string) []*cfp.Event {
	events := make([]*cfp.Event, 0)
	for _, entry := range query.All(root, entrySel) {
		events = append(events, extractEntry(entry, origin))
	}
	return events
}

func extractEntry(entry *goquery.Selection, origin string) *cfp.Event {
	titleLink := query.First(entry, entryLinkSel)

	title, _ := query.Text(titleLink)
	evt := &cfp.Event{
		Title: title,
		Link:  resolveLink(titleLink, origin),
	}

	for _, sel := range query.All(entry, metaItemSel) {
		item := readMetaItem(sel)
		for _, rule := range metaRules {
			if rule.match(item) {
				rule.apply(evt, item)
				break
			}
		}
	}

	return evt
}

func readMetaItem(sel *goquery.Selection) metaItem {
	item := metaItem{sel: sel}
	item.label, item.hasLabel = query.Text(query.First(sel, metaLabelSel))
	item.value, item.hasValue = query.Text(query.First(sel, metaValueSel))
	return item
}

// resolveLink returns the entry's href, prefixing path-only values with
// origin. A missing node or attribute resolves to "".
func resolveLink(sel *goquery.Selection, origin string) string {
	href, _ := query.Attr(sel, "href")
	href = strings.TrimSpace(href)
	if strings.HasPrefix(href, "/") {
		return strings.TrimRight(origin, "/") + href
	}
	return href
}
