// Package preflight provides readiness checks for the directories and
// services episodekit depends on.
//
// The CLI "episodekit doctor" command runs RunAll and renders the results;
// the curation commands call CheckDirectoryAccess on the task root before
// planning so permission problems surface before any destination is created.
//
// Each check is gated by its config toggle -- disabled features are reported
// as passing with a "disabled" detail.
package preflight
