// Package cfp provides the record types produced by the scraper and the
// bookkeeping built around them.
//
// Event is the summary record of one open call for papers on a listing page;
// Detail is the richer record extracted from an event's own page. Optional
// fields are pointers: a nil field means the page did not carry the value,
// and a non-nil field always holds non-empty trimmed text.
//
// Snapshots and Diff track which CFPs are new since the previous run, and
// DetailCache keeps recently fetched detail records around for a TTL.
package cfp
