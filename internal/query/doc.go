// Package query provides the small set of read-only tree helpers the
// extractors are built on.
//
// Every "is this field present" decision in the scraper goes through Text,
// which reports all-whitespace or empty text as absent rather than as "".
// Selectors are precompiled with cascadia so a malformed selector fails at
// package init instead of silently matching nothing.
package query
