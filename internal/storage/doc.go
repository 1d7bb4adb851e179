// Package storage provides JSON-based persistence between runs.
//
// The data directory (default ~/.local/share/cfp-events/) holds the last
// listing snapshot (snapshot.json), used to report CFPs that are new since
// the previous check, and the detail cache (details.json).
package storage
