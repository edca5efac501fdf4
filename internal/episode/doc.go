// Package episode models teleoperation episode records on disk.
//
// An episode is a directory named after a zero-padded index (episode_0012)
// holding a metadata document (data.json) plus the image, depth, and audio
// assets its frames reference by relative path. The package locates episodes
// under a task root (Store), decodes and encodes the metadata document
// (Load/Save), and defines the error taxonomy shared by the transform,
// materialize, and curate packages.
//
// # Key Types
//
// Episode: Info block, ordered Frames, and pass-through top-level fields.
//
// Frame: idx plus the colors/depths/audios asset references, per-group
// states/actions records, and opaque tactile payloads. Unknown keys at every
// level are preserved verbatim so an untouched episode round-trips losslessly.
//
// AssetRefs: one stream section; accepts the mapping form, the single-path
// form, and null.
//
// # Entry Points
//
// Store.Resolve / Store.List: deterministic path construction and discovery.
// Load / Save: metadata document I/O.
// ResolveFrames: absolute-path view of frames for viewers.
package episode
