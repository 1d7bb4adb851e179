// Package scraper fetches Sessionize CFP pages and extracts records from them.
//
// ExtractListing turns a listing page into ordered cfp.Event summaries and
// ExtractDetail turns a single event page into a cfp.Detail. Both are pure
// functions of the parsed tree: missing markup leaves the affected field nil
// and never produces an error. Only the fetch path (Scraper) fails, when the
// page cannot be retrieved or parsed.
package scraper
