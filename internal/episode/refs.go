package episode

import (
	"bytes"
	"encoding/json"
	"errors"
	"maps"
	"slices"
)

type refForm uint8

const (
	refAbsent refForm = iota
	refNull
	refPath
	refKeyed
)

// AssetRefs is one asset-bearing frame section (colors, depths, audios).
//
// The metadata document stores a section either as a mapping from stream key
// to relative path, as a single relative path, or as null. All forms resolve
// to the same set-of-paths semantics through Paths; the original form is kept
// so encoding reproduces it.
type AssetRefs struct {
	form  refForm
	path  string
	keyed map[string]json.RawMessage
}

// KeyedRefs builds a mapping-form section. Empty values mean "not captured".
func KeyedRefs(paths map[string]string) AssetRefs {
	keyed := make(map[string]json.RawMessage, len(paths))
	for key, value := range paths {
		raw, _ := json.Marshal(value)
		keyed[key] = raw
	}
	return AssetRefs{form: refKeyed, keyed: keyed}
}

// PathRef builds a single-path section.
func PathRef(path string) AssetRefs {
	return AssetRefs{form: refPath, path: path}
}

// NullRefs builds an explicit null section.
func NullRefs() AssetRefs {
	return AssetRefs{form: refNull}
}

// IsAbsent reports whether the section was missing from the frame.
func (r AssetRefs) IsAbsent() bool { return r.form == refAbsent }

// IsKeyed reports whether the section uses the mapping form.
func (r AssetRefs) IsKeyed() bool { return r.form == refKeyed }

// Keys returns the sorted stream keys of a mapping-form section.
func (r AssetRefs) Keys() []string {
	if r.form != refKeyed {
		return nil
	}
	return slices.Sorted(maps.Keys(r.keyed))
}

// Get returns the relative path stored under key, or "" when absent, empty,
// or not a string.
func (r AssetRefs) Get(key string) string {
	if r.form != refKeyed {
		return ""
	}
	return rawString(r.keyed[key])
}

// Paths returns every non-empty relative path in the section, sorted and
// deduplicated.
func (r AssetRefs) Paths() []string {
	switch r.form {
	case refPath:
		if r.path == "" {
			return nil
		}
		return []string{r.path}
	case refKeyed:
		seen := make(map[string]struct{}, len(r.keyed))
		for _, raw := range r.keyed {
			if value := rawString(raw); value != "" {
				seen[value] = struct{}{}
			}
		}
		if len(seen) == 0 {
			return nil
		}
		return slices.Sorted(maps.Keys(seen))
	default:
		return nil
	}
}

// Without returns a copy with the given stream keys removed. Non-mapping
// forms are returned unchanged.
func (r AssetRefs) Without(drop map[string]struct{}) AssetRefs {
	out := r.Clone()
	if out.form != refKeyed {
		return out
	}
	for key := range drop {
		delete(out.keyed, key)
	}
	return out
}

// Clone returns a deep copy.
func (r AssetRefs) Clone() AssetRefs {
	out := AssetRefs{form: r.form, path: r.path}
	if r.keyed != nil {
		out.keyed = cloneRawMap(r.keyed)
	}
	return out
}

// MarshalJSON encodes the section in its original form.
func (r AssetRefs) MarshalJSON() ([]byte, error) {
	switch r.form {
	case refPath:
		return encodeJSON(r.path)
	case refKeyed:
		if r.keyed == nil {
			return []byte("{}"), nil
		}
		return encodeJSON(r.keyed)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON accepts the mapping, single-path, and null forms.
func (r *AssetRefs) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	switch {
	case len(trimmed) == 0:
		return errors.New("empty asset reference")
	case isNull(trimmed):
		*r = AssetRefs{form: refNull}
	case trimmed[0] == '"':
		var path string
		if err := json.Unmarshal(trimmed, &path); err != nil {
			return err
		}
		*r = AssetRefs{form: refPath, path: path}
	case trimmed[0] == '{':
		keyed := make(map[string]json.RawMessage)
		if err := json.Unmarshal(trimmed, &keyed); err != nil {
			return err
		}
		*r = AssetRefs{form: refKeyed, keyed: keyed}
	default:
		return errors.New("asset reference must be an object, a string, or null")
	}
	return nil
}

func rawString(raw json.RawMessage) string {
	if len(raw) == 0 || raw[0] != '"' {
		return ""
	}
	var value string
	if err := json.Unmarshal(raw, &value); err != nil {
		return ""
	}
	return value
}
