package episode

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// Layout defaults.
const (
	DefaultPrefix       = "episode_"
	DefaultIndexWidth   = 4
	DefaultMetadataName = "data.json"
)

// Layout describes how episode directories and metadata files are named.
type Layout struct {
	Prefix       string
	IndexWidth   int
	MetadataName string
}

// DefaultLayout returns the episode_NNNN/data.json layout.
func DefaultLayout() Layout {
	return Layout{Prefix: DefaultPrefix, IndexWidth: DefaultIndexWidth, MetadataName: DefaultMetadataName}
}

func (l Layout) normalized() Layout {
	if l.Prefix == "" {
		l.Prefix = DefaultPrefix
	}
	if l.IndexWidth <= 0 {
		l.IndexWidth = DefaultIndexWidth
	}
	if l.MetadataName == "" {
		l.MetadataName = DefaultMetadataName
	}
	return l
}

// DirName formats the directory name for index, e.g. episode_0012.
func (l Layout) DirName(index int) string {
	l = l.normalized()
	return fmt.Sprintf("%s%0*d", l.Prefix, l.IndexWidth, index)
}

// ParseDirName extracts the index from a directory name made of the layout
// prefix followed by decimal digits only.
func (l Layout) ParseDirName(name string) (int, bool) {
	l = l.normalized()
	digits, ok := strings.CutPrefix(name, l.Prefix)
	if !ok || digits == "" {
		return 0, false
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	index, err := strconv.Atoi(digits)
	if err != nil {
		return 0, false
	}
	return index, true
}

// Handle identifies one episode directory.
type Handle struct {
	Index        int
	Dir          string
	MetadataName string
}

// Name returns the directory base name.
func (h Handle) Name() string { return filepath.Base(h.Dir) }

// MetadataPath returns the path of the metadata document.
func (h Handle) MetadataPath() string {
	name := h.MetadataName
	if name == "" {
		name = DefaultMetadataName
	}
	return filepath.Join(h.Dir, name)
}

// Store locates episodes under a task root.
type Store struct {
	root   string
	layout Layout
}

// NewStore returns a store rooted at taskRoot.
func NewStore(taskRoot string, layout Layout) *Store {
	return &Store{root: taskRoot, layout: layout.normalized()}
}

// Root returns the task root directory.
func (s *Store) Root() string { return s.root }

// Layout returns the naming layout in effect.
func (s *Store) Layout() Layout { return s.layout }

// Resolve builds the handle for index without checking that it exists.
func (s *Store) Resolve(index int) Handle {
	return Handle{
		Index:        index,
		Dir:          filepath.Join(s.root, s.layout.DirName(index)),
		MetadataName: s.layout.MetadataName,
	}
}

// List returns the episode directories directly under the task root, sorted
// by index. Entries that do not match the naming pattern are ignored.
func (s *Store) List() ([]Handle, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("read task root %s: %w", s.root, err)
	}
	var handles []Handle
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		index, ok := s.layout.ParseDirName(entry.Name())
		if !ok {
			continue
		}
		handles = append(handles, Handle{
			Index:        index,
			Dir:          filepath.Join(s.root, entry.Name()),
			MetadataName: s.layout.MetadataName,
		})
	}
	sort.SliceStable(handles, func(i, j int) bool {
		if handles[i].Index != handles[j].Index {
			return handles[i].Index < handles[j].Index
		}
		return handles[i].Dir < handles[j].Dir
	})
	return handles, nil
}
