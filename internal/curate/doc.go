// Package curate orchestrates the episode curation workflows on top of the
// transform, assetref, and materialize packages.
//
// Three workflows are provided:
//   - CutEpisode trims one episode into a new episode index of the same task root.
//   - Prepare + Plan.Run copies an inclusive range of episodes into a sibling
//     dataset, optionally dropping cameras and joint groups.
//   - The same plan with Verbatim set copies episode directories as-is.
//
// Every workflow validates its inputs and the destination before the first
// filesystem mutation. Metadata is written once per episode, after all
// transformation decisions are final.
package curate
