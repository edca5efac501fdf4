package textutil

import (
	"maps"
	"slices"
	"strings"
)

// ParseKeySet splits comma-separated values into a set. Whitespace around
// each key is trimmed and empty keys are dropped. Multiple values are merged,
// so repeated flags and comma lists behave the same.
func ParseKeySet(values ...string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, value := range values {
		for _, key := range strings.Split(value, ",") {
			key = strings.TrimSpace(key)
			if key != "" {
				set[key] = struct{}{}
			}
		}
	}
	return set
}

// SortedKeys returns the keys of set in ascending order.
func SortedKeys(set map[string]struct{}) []string {
	return slices.Sorted(maps.Keys(set))
}

// JoinKeys renders a set as a sorted comma-separated list, or "-" when empty.
func JoinKeys(set map[string]struct{}) string {
	if len(set) == 0 {
		return "-"
	}
	return strings.Join(SortedKeys(set), ",")
}
