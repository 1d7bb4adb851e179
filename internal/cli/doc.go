// Package cli implements the command-line interface for cfp-events.
//
// The Cobra-based CLI lists the open CFPs of a Sessionize listing page
// (optionally only those new since the last run, optionally enriched with
// each event's detail record) and looks up the detail record of a single
// event by link or by its position in the last listing. Output is plain text
// or JSON.
package cli
