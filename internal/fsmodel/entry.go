// Package fsmodel defines the canonical file-entry shapes used across the
// client and isolates all tolerance for the panel's inconsistent wire formats
// (optional nested timestamp objects, backslash-prefixed paths) in one
// decoding layer. Everything outside this package consumes canonical entries
// only.
package fsmodel

import (
	"strings"
	"time"
)

// Entry is a normalized file-or-directory record returned by listing and
// search operations. Identity is (Path, Name).
type Entry struct {
	Name        string
	Path        string
	Size        int64
	IsDirectory bool

	// CreatedAt and ModifiedAt are zero when the server omitted the
	// corresponding timestamp. They are never defaulted to the current time.
	CreatedAt  time.Time
	ModifiedAt time.Time

	// TypeLabel is "Folder" for directories, otherwise deduced from the
	// file extension (fallback "File").
	TypeLabel string
}

// Listing is the contents of one directory. A fresh Listing is produced on
// every fetch; listings are never mutated in place.
type Listing struct {
	// ParentPath is nil for the filesystem root.
	ParentPath *string
	Entries    []Entry
}

// TrimLeadingSeparator strips a single leading path separator (forward or
// backward slash) to match server-side path expectations. Only the first
// occurrence is removed: `//x` becomes `/x`.
func TrimLeadingSeparator(p string) string {
	if strings.HasPrefix(p, "/") || strings.HasPrefix(p, "\\") {
		return p[1:]
	}
	return p
}

// Normalize returns the canonical form of e: a single leading backslash is
// stripped from the path and the type label is recomputed. Normalizing an
// already-canonical entry is a no-op.
func Normalize(e Entry) Entry {
	e.Path = strings.TrimPrefix(e.Path, "\\")
	e.TypeLabel = TypeLabel(e.Name, e.IsDirectory)
	return e
}
