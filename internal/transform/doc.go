// Package transform derives new episodes from loaded ones.
//
// Every operation is a pure function: inputs are never mutated and outputs
// share no maps or slices with them, so the source episode can be reused or
// discarded freely. Cut slices a frame range and optionally reindexes it,
// FilterCameras and FilterJointGroups remove streams and joint groups, and
// SelectRange picks whole episodes out of a discovered listing. The filters
// commute with each other and with Cut.
package transform
