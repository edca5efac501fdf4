// Package textutil provides small text helpers shared by the CLI and the
// curation workflows.
//
// The primary use cases are:
//   - Parsing comma-separated key lists such as camera or joint group names
//   - Rendering byte counts for humans
package textutil
