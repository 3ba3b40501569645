// Package abspath provides Path, a string type that is guaranteed to hold a
// clean absolute file system path.
package abspath

import (
	"fmt"
	"os"
	"path/filepath"
)

// ErrNotAbsolute is returned from New when given a relative path.
type ErrNotAbsolute string

func (e ErrNotAbsolute) Error() string {
	return fmt.Sprintf("path '%s' is not absolute", string(e))
}

// Path is a clean absolute path.
type Path string

// New returns p as a Path, p must be absolute.
func New(p string) (Path, error) {
	if !filepath.IsAbs(p) {
		return "", ErrNotAbsolute(p)
	}
	return Path(filepath.Clean(p)), nil
}

// Resolve returns p as a Path, resolving relative paths against the current
// working directory.
func Resolve(p string) (Path, error) {
	result, err := filepath.Abs(p)
	if err != nil {
		return "", fmt.Errorf("unable to resolve absolute path for: %s, error: %s", p, err)
	}
	return Path(result), nil
}

func (p Path) String() string {
	return string(p)
}

// Exists returns true, if something exists at p.
func (p Path) Exists() bool {
	_, err := os.Stat(string(p))
	return err == nil
}

// IsDir returns true, if p is an existing directory.
func (p Path) IsDir() bool {
	info, err := os.Stat(string(p))
	return err == nil && info.IsDir()
}

// Open p for reading.
func (p Path) Open() (*os.File, error) {
	return os.Open(string(p))
}

// Create or truncate the file at p.
func (p Path) Create() (*os.File, error) {
	return os.Create(string(p))
}

// Remove the file or empty directory at p.
func (p Path) Remove() error {
	return os.Remove(string(p))
}

// Combine returns p joined with elem.
func (p Path) Combine(elem ...string) Path {
	return Path(filepath.Join(append([]string{string(p)}, elem...)...))
}
