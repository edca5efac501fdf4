// Package main hosts the episodekit CLI entrypoint and command graph.
//
// The Cobra-based command tree maps range, index, and key-set arguments onto
// the curation workflows in internal/curate, inspection helpers for episodes,
// the run journal, object storage publishing, and configuration scaffolding.
// It centralizes configuration resolution, logger construction, and journal
// bookkeeping so subcommands only translate flags and render results.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
