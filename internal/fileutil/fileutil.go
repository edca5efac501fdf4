package fileutil

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"hash"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// CopyOptions controls how a single file is copied.
type CopyOptions struct {
	// Verify hashes the source while copying, re-reads dst from disk, and
	// removes dst when its size or digest differs.
	Verify bool
	// PreserveTimes copies the source modification time onto dst.
	PreserveTimes bool
}

// CopyFile streams src to dst with the source permission bits and returns
// the number of bytes written. dst is truncated if it exists.
func CopyFile(src, dst string) (int64, error) {
	return Copy(src, dst, CopyOptions{})
}

// Copy streams src to dst according to opts and returns the number of bytes
// written.
func Copy(src, dst string, opts CopyOptions) (int64, error) {
	in, err := os.Open(src)
	if err != nil {
		return 0, err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return 0, fmt.Errorf("stat source: %w", err)
	}
	if !info.Mode().IsRegular() {
		return 0, fmt.Errorf("copy %s: not a regular file", src)
	}

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return 0, err
	}
	defer func() {
		_ = out.Close()
	}()

	var (
		reader    io.Reader = in
		srcHasher hash.Hash
	)
	if opts.Verify {
		srcHasher = sha256.New()
		reader = io.TeeReader(in, srcHasher)
	}

	written, err := io.Copy(out, reader)
	if err != nil {
		return written, err
	}
	if err := out.Close(); err != nil {
		return written, err
	}

	if opts.Verify {
		if err := checkCopy(dst, info.Size(), srcHasher.Sum(nil)); err != nil {
			_ = os.Remove(dst)
			return written, err
		}
	}
	if opts.PreserveTimes {
		if err := os.Chtimes(dst, info.ModTime(), info.ModTime()); err != nil {
			return written, fmt.Errorf("preserve times: %w", err)
		}
	}
	return written, nil
}

// checkCopy re-reads dst and compares it with the expected size and sha256.
func checkCopy(dst string, size int64, sum []byte) error {
	f, err := os.Open(dst)
	if err != nil {
		return fmt.Errorf("verify copy: %w", err)
	}
	defer f.Close()
	h := sha256.New()
	n, err := io.Copy(h, f)
	if err != nil {
		return fmt.Errorf("verify copy: %w", err)
	}
	if n != size {
		return fmt.Errorf("copy size mismatch: source %d bytes, %s has %d bytes", size, dst, n)
	}
	if !bytes.Equal(h.Sum(nil), sum) {
		return fmt.Errorf("copy hash mismatch: %s differs from its source", dst)
	}
	return nil
}

// CopyTree recursively copies the directory src to dst, creating dst and
// every intermediate directory. Symlinks and other special files are
// skipped. It returns the number of files and bytes copied.
func CopyTree(src, dst string, opts CopyOptions) (int, int64, error) {
	var (
		files int
		total int64
	)
	err := filepath.WalkDir(src, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		switch {
		case d.IsDir():
			return os.MkdirAll(target, 0o755)
		case d.Type().IsRegular():
			n, err := Copy(path, target, opts)
			if err != nil {
				return fmt.Errorf("copy %s: %w", rel, err)
			}
			files++
			total += n
		}
		return nil
	})
	return files, total, err
}

// DirSize returns the total size of regular files under root.
func DirSize(root string) (int64, error) {
	_, total, err := DirStats(root)
	return total, err
}

// DirStats returns the number and total size of regular files under root.
func DirStats(root string) (int, int64, error) {
	var (
		files int
		total int64
	)
	err := filepath.WalkDir(root, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		files++
		total += info.Size()
		return nil
	})
	return files, total, err
}

// IsEmptyDir reports whether path is a directory with no entries. A missing
// path is reported as empty.
func IsEmptyDir(path string) (bool, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		if os.IsNotExist(err) {
			return true, nil
		}
		return false, err
	}
	return len(entries) == 0, nil
}
