package transform

import (
	"episodekit/internal/episode"
)

// OpenEnd selects through the last discovered episode when passed as last.
const OpenEnd = -1

// SelectRange returns the handles whose index lies in [first, last]. last may
// be OpenEnd. handles must be sorted by index, as returned by Store.List.
func SelectRange(handles []episode.Handle, first, last int) ([]episode.Handle, error) {
	if first < 0 || last < OpenEnd || (last != OpenEnd && first > last) {
		return nil, episode.InvalidRange("invalid episode range init=%d, end=%d", first, last)
	}
	if len(handles) == 0 {
		return nil, episode.MissingEpisodeDirectory("no episode directories discovered")
	}
	if last == OpenEnd {
		last = handles[len(handles)-1].Index
	}
	var selected []episode.Handle
	for _, h := range handles {
		if h.Index >= first && h.Index <= last {
			selected = append(selected, h)
		}
	}
	if len(selected) == 0 {
		return nil, episode.MissingEpisodeDirectory(
			"no episode directories in range [%d, %d]; discovered indices span [%d, %d]",
			first, last, handles[0].Index, handles[len(handles)-1].Index,
		)
	}
	return selected, nil
}
