package episode

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
)

// Metadata document keys.
const (
	keyInfo         = "info"
	keyData         = "data"
	keyJointNames   = "joint_names"
	keyTactileNames = "tactile_names"
	keyIdx          = "idx"
	keyColors       = "colors"
	keyDepths       = "depths"
	keyAudios       = "audios"
	keyStates       = "states"
	keyActions      = "actions"
	keyTactiles     = "tactiles"
	keyQPos         = "qpos"
)

// Stream section names, also used as asset subdirectories.
const (
	SectionColors = keyColors
	SectionDepths = keyDepths
	SectionAudios = keyAudios
)

// StreamSections lists the asset-bearing frame sections in a stable order.
var StreamSections = []string{SectionColors, SectionDepths, SectionAudios}

// Episode is the decoded metadata document of one episode.
type Episode struct {
	Info   *Info
	Frames []Frame
	// Extra holds top-level keys other than info and data.
	Extra map[string]json.RawMessage
}

// Info is the episode-level metadata block.
type Info struct {
	JointNames   map[string]json.RawMessage
	TactileNames map[string]json.RawMessage
	Extra        map[string]json.RawMessage
}

// Frame is one captured time step.
type Frame struct {
	Idx      int
	Colors   AssetRefs
	Depths   AssetRefs
	Audios   AssetRefs
	States   map[string]*JointRecord
	Actions  map[string]*JointRecord
	Tactiles map[string]json.RawMessage
	Extra    map[string]json.RawMessage
}

// JointRecord is the per-group state or action sample.
type JointRecord struct {
	QPos  []float64
	Extra map[string]json.RawMessage
}

// Len returns the number of frames.
func (e *Episode) Len() int {
	if e == nil {
		return 0
	}
	return len(e.Frames)
}

// Clone returns a deep copy that shares no mutable state with e.
func (e *Episode) Clone() *Episode {
	if e == nil {
		return nil
	}
	out := &Episode{
		Info:  e.Info.Clone(),
		Extra: cloneRawMap(e.Extra),
	}
	if e.Frames != nil {
		out.Frames = make([]Frame, len(e.Frames))
		for i := range e.Frames {
			out.Frames[i] = e.Frames[i].Clone()
		}
	}
	return out
}

// CloneEnvelope returns a deep copy of the info block and top-level fields
// with no frames.
func (e *Episode) CloneEnvelope() *Episode {
	if e == nil {
		return nil
	}
	return &Episode{Info: e.Info.Clone(), Extra: cloneRawMap(e.Extra)}
}

// JointGroups returns the sorted union of state and action group keys.
func (e *Episode) JointGroups() []string {
	seen := make(map[string]struct{})
	if e != nil {
		for i := range e.Frames {
			for key := range e.Frames[i].States {
				seen[key] = struct{}{}
			}
			for key := range e.Frames[i].Actions {
				seen[key] = struct{}{}
			}
		}
	}
	return slices.Sorted(maps.Keys(seen))
}

// ColorKeys returns the sorted union of color stream keys across frames.
func (e *Episode) ColorKeys() []string {
	seen := make(map[string]struct{})
	if e != nil {
		for i := range e.Frames {
			for _, key := range e.Frames[i].Colors.Keys() {
				seen[key] = struct{}{}
			}
		}
	}
	return slices.Sorted(maps.Keys(seen))
}

// Clone returns a deep copy of the info block.
func (i *Info) Clone() *Info {
	if i == nil {
		return nil
	}
	return &Info{
		JointNames:   cloneRawMap(i.JointNames),
		TactileNames: cloneRawMap(i.TactileNames),
		Extra:        cloneRawMap(i.Extra),
	}
}

// Clone returns a deep copy of the frame.
func (f Frame) Clone() Frame {
	return Frame{
		Idx:      f.Idx,
		Colors:   f.Colors.Clone(),
		Depths:   f.Depths.Clone(),
		Audios:   f.Audios.Clone(),
		States:   cloneJointMap(f.States),
		Actions:  cloneJointMap(f.Actions),
		Tactiles: cloneRawMap(f.Tactiles),
		Extra:    cloneRawMap(f.Extra),
	}
}

// Clone returns a deep copy of the record.
func (r *JointRecord) Clone() *JointRecord {
	if r == nil {
		return nil
	}
	return &JointRecord{QPos: slices.Clone(r.QPos), Extra: cloneRawMap(r.Extra)}
}

// MarshalJSON encodes the episode with info first-class and extras passed through.
func (e Episode) MarshalJSON() ([]byte, error) {
	out := cloneRawMap(e.Extra)
	if out == nil {
		out = make(map[string]json.RawMessage, 2)
	}
	if e.Info != nil {
		raw, err := encodeJSON(e.Info)
		if err != nil {
			return nil, fmt.Errorf("encode info: %w", err)
		}
		out[keyInfo] = raw
	}
	frames := e.Frames
	if frames == nil {
		frames = []Frame{}
	}
	raw, err := encodeJSON(frames)
	if err != nil {
		return nil, fmt.Errorf("encode data: %w", err)
	}
	out[keyData] = raw
	return encodeJSON(out)
}

// UnmarshalJSON decodes the episode envelope.
func (e *Episode) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	*e = Episode{}
	if raw, ok := takeSection(fields, keyInfo); ok {
		var info Info
		if err := json.Unmarshal(raw, &info); err != nil {
			return fmt.Errorf("decode info: %w", err)
		}
		e.Info = &info
	}
	if raw, ok := takeSection(fields, keyData); ok {
		if err := json.Unmarshal(raw, &e.Frames); err != nil {
			return fmt.Errorf("decode data: %w", err)
		}
	}
	e.Extra = nilIfEmpty(fields)
	return nil
}

// MarshalJSON encodes the info block.
func (i Info) MarshalJSON() ([]byte, error) {
	out := cloneRawMap(i.Extra)
	if out == nil {
		out = make(map[string]json.RawMessage, 2)
	}
	if err := putSection(out, keyJointNames, i.JointNames); err != nil {
		return nil, err
	}
	if err := putSection(out, keyTactileNames, i.TactileNames); err != nil {
		return nil, err
	}
	return encodeJSON(out)
}

// UnmarshalJSON decodes the info block.
func (i *Info) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	*i = Info{}
	if err := takeObject(fields, keyJointNames, &i.JointNames); err != nil {
		return err
	}
	if err := takeObject(fields, keyTactileNames, &i.TactileNames); err != nil {
		return err
	}
	i.Extra = nilIfEmpty(fields)
	return nil
}

// MarshalJSON encodes the frame.
func (f Frame) MarshalJSON() ([]byte, error) {
	out := cloneRawMap(f.Extra)
	if out == nil {
		out = make(map[string]json.RawMessage, 7)
	}
	idx, err := encodeJSON(f.Idx)
	if err != nil {
		return nil, err
	}
	out[keyIdx] = idx
	for _, section := range []struct {
		key  string
		refs AssetRefs
	}{{keyColors, f.Colors}, {keyDepths, f.Depths}, {keyAudios, f.Audios}} {
		if section.refs.IsAbsent() {
			continue
		}
		raw, err := encodeJSON(section.refs)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", section.key, err)
		}
		out[section.key] = raw
	}
	if err := putSection(out, keyStates, f.States); err != nil {
		return nil, err
	}
	if err := putSection(out, keyActions, f.Actions); err != nil {
		return nil, err
	}
	if err := putSection(out, keyTactiles, f.Tactiles); err != nil {
		return nil, err
	}
	return encodeJSON(out)
}

// UnmarshalJSON decodes the frame.
func (f *Frame) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	*f = Frame{}
	if raw, ok := takeSection(fields, keyIdx); ok {
		if err := json.Unmarshal(raw, &f.Idx); err != nil {
			return fmt.Errorf("decode idx: %w", err)
		}
	}
	for _, section := range []struct {
		key  string
		refs *AssetRefs
	}{{keyColors, &f.Colors}, {keyDepths, &f.Depths}, {keyAudios, &f.Audios}} {
		raw, ok := fields[section.key]
		if !ok {
			continue
		}
		delete(fields, section.key)
		if err := section.refs.UnmarshalJSON(raw); err != nil {
			return fmt.Errorf("decode %s: %w", section.key, err)
		}
	}
	if err := takeObject(fields, keyStates, &f.States); err != nil {
		return err
	}
	if err := takeObject(fields, keyActions, &f.Actions); err != nil {
		return err
	}
	if err := takeObject(fields, keyTactiles, &f.Tactiles); err != nil {
		return err
	}
	f.Extra = nilIfEmpty(fields)
	return nil
}

// MarshalJSON encodes the record, emitting qpos only when present.
func (r JointRecord) MarshalJSON() ([]byte, error) {
	out := cloneRawMap(r.Extra)
	if out == nil {
		out = make(map[string]json.RawMessage, 1)
	}
	if r.QPos != nil {
		raw, err := encodeJSON(r.QPos)
		if err != nil {
			return nil, err
		}
		out[keyQPos] = raw
	}
	return encodeJSON(out)
}

// UnmarshalJSON decodes the record.
func (r *JointRecord) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	*r = JointRecord{}
	if raw, ok := takeSection(fields, keyQPos); ok {
		if err := json.Unmarshal(raw, &r.QPos); err != nil {
			return fmt.Errorf("decode qpos: %w", err)
		}
	}
	r.Extra = nilIfEmpty(fields)
	return nil
}

// takeSection removes key from fields and returns its raw value. A JSON null
// is left in fields so it passes through unchanged on encode.
func takeSection(fields map[string]json.RawMessage, key string) (json.RawMessage, bool) {
	raw, ok := fields[key]
	if !ok || isNull(raw) {
		return nil, false
	}
	delete(fields, key)
	return raw, true
}

func takeObject[V any](fields map[string]json.RawMessage, key string, dst *map[string]V) error {
	raw, ok := takeSection(fields, key)
	if !ok {
		return nil
	}
	out := make(map[string]V)
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	*dst = out
	return nil
}

func putSection[V any](out map[string]json.RawMessage, key string, section map[string]V) error {
	if section == nil {
		return nil
	}
	raw, err := encodeJSON(section)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	out[key] = raw
	return nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// encodeJSON marshals without HTML escaping so paths and names stay readable.
func encodeJSON(v any) (json.RawMessage, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func cloneRawMap(in map[string]json.RawMessage) map[string]json.RawMessage {
	if in == nil {
		return nil
	}
	out := make(map[string]json.RawMessage, len(in))
	for key, value := range in {
		out[key] = bytes.Clone(value)
	}
	return out
}

func cloneJointMap(in map[string]*JointRecord) map[string]*JointRecord {
	if in == nil {
		return nil
	}
	out := make(map[string]*JointRecord, len(in))
	for key, value := range in {
		out[key] = value.Clone()
	}
	return out
}

func nilIfEmpty(fields map[string]json.RawMessage) map[string]json.RawMessage {
	if len(fields) == 0 {
		return nil
	}
	return fields
}
