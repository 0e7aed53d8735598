package volume

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"time"
)

// Volume errors.
var (
	ErrVolumeExists      = errors.New("volume already mounted")
	ErrVolumeNotFound    = errors.New("volume not found")
	ErrVolumeUnavailable = errors.New("volume unavailable")
	ErrNotInVolume       = errors.New("path is not inside a mounted volume")

	// ErrNotFound wraps fs.ErrNotExist so callers can test for either.
	ErrNotFound = fmt.Errorf("entry not found: %w", fs.ErrNotExist)
)

// Type classifies a volume. The numeric order is the display order.
type Type uint8

const (
	TypeDownloads Type = iota
	TypeRemovable
	TypeArchive
	TypeProvided
	TypeNetwork
)

// String returns the volume type name.
func (t Type) String() string {
	switch t {
	case TypeDownloads:
		return "downloads"
	case TypeRemovable:
		return "removable"
	case TypeArchive:
		return "archive"
	case TypeProvided:
		return "provided"
	case TypeNetwork:
		return "network"
	default:
		return "unknown"
	}
}

// ParseType parses a volume type name.
func ParseType(s string) (Type, error) {
	switch s {
	case "downloads":
		return TypeDownloads, nil
	case "removable":
		return TypeRemovable, nil
	case "archive":
		return TypeArchive, nil
	case "provided":
		return TypeProvided, nil
	case "network":
		return TypeNetwork, nil
	default:
		return 0, errors.New("unknown volume type: " + s)
	}
}

// Info describes a volume.
type Info struct {
	// VolumeID uniquely identifies the volume.
	VolumeID string `yaml:"id" json:"id"`

	// Label is the display name.
	Label string `yaml:"label" json:"label"`

	// Type is the volume type.
	Type Type `yaml:"-" json:"type"`

	// MountPath is the absolute path of the volume root.
	MountPath string `yaml:"path" json:"mount_path"`

	// Error is the mount error, empty while the volume is usable.
	Error string `yaml:"-" json:"error,omitempty"`

	// Source describes where the volume came from (device, archive file...).
	Source string `yaml:"source,omitempty" json:"source,omitempty"`
}

// IsMounted reports whether the volume is usable.
func (i *Info) IsMounted() bool {
	return i != nil && i.Error == ""
}

// Contains reports whether path lies inside the volume.
func (i *Info) Contains(path string) bool {
	rel, err := filepath.Rel(i.MountPath, filepath.Clean(path))
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !startsWithParent(rel))
}

func startsWithParent(rel string) bool {
	return len(rel) >= 3 && rel[:3] == ".."+string(filepath.Separator)
}

// Entry is a resolved file system entry.
type Entry struct {
	// Path is the absolute path.
	Path string

	// Name is the base name.
	Name string

	// IsDir reports whether the entry is a directory.
	IsDir bool

	// Size in bytes (0 for directories).
	Size int64

	// ModTime is the last modification time.
	ModTime time.Time

	// VolumeID identifies the volume containing the entry.
	VolumeID string
}
