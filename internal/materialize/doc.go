// Package materialize writes a transformed episode and its asset closure to a
// fresh destination directory.
//
// Materialize refuses to touch a destination that already holds anything;
// clearing one is a separate call to Clear that callers make only when the
// user asked for it. Auxiliary root files are copied first, then every asset
// in the reference set, then the metadata document is written exactly once.
// A referenced file that is missing at the source is logged and recorded in
// the Report as OutcomeSkippedMissing; it never fails the run.
package materialize
