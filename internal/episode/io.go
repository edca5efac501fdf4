package episode

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Load reads and decodes the metadata document of h.
func Load(h Handle) (*Episode, error) {
	path := h.MetadataPath()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, MissingMetadata(path)
		}
		return nil, fmt.Errorf("read metadata: %w", err)
	}
	ep, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if ep.Len() == 0 {
		return nil, EmptyEpisode(path)
	}
	return ep, nil
}

// Decode parses a metadata document.
func Decode(data []byte) (*Episode, error) {
	var ep Episode
	if err := json.Unmarshal(data, &ep); err != nil {
		return nil, err
	}
	return &ep, nil
}

// Encode renders ep as an indented metadata document.
func Encode(ep *Episode) ([]byte, error) {
	if ep == nil {
		return nil, errors.New("encode episode: nil episode")
	}
	raw, err := encodeJSON(ep)
	if err != nil {
		return nil, fmt.Errorf("encode episode: %w", err)
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return nil, fmt.Errorf("indent episode: %w", err)
	}
	return buf.Bytes(), nil
}

// Save writes ep to the metadata document of h, creating the episode
// directory when needed. The document is written to a temporary file and
// renamed into place.
func Save(h Handle, ep *Episode) error {
	data, err := Encode(ep)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(h.Dir, 0o755); err != nil {
		return fmt.Errorf("create episode directory: %w", err)
	}
	target := h.MetadataPath()
	tmp, err := os.CreateTemp(h.Dir, "."+filepath.Base(target)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp metadata: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("write metadata: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("close metadata: %w", err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("chmod metadata: %w", err)
	}
	if err := os.Rename(tmpPath, target); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename metadata: %w", err)
	}
	return nil
}
