package capability

import (
	"errors"
	"fmt"
	"strings"
)

// Capability errors.
var (
	ErrUnknownType     = errors.New("unknown capability type")
	ErrUnknownFormat   = errors.New("unknown document format")
	ErrUnknownEncoding = errors.New("unknown descriptor encoding")
	ErrInvalidOptions  = errors.New("feature capability needs exactly two options")
	ErrTypeMismatch    = errors.New("capability type mismatch")
	ErrDuplicate       = errors.New("duplicate capability")
)

// Type is the kind of a capability.
type Type uint8

const (
	// TypeFeature is a capability with a fixed set of options.
	TypeFeature Type = iota
	// TypeParameterDef is a capability with a free-form value.
	TypeParameterDef
)

// String returns the type name used in descriptor documents.
func (t Type) String() string {
	switch t {
	case TypeFeature:
		return "Feature"
	case TypeParameterDef:
		return "ParameterDef"
	default:
		return fmt.Sprintf("Type(%d)", uint8(t))
	}
}

// ParseType parses a type name (case-insensitive).
func ParseType(s string) (Type, error) {
	switch strings.ToLower(s) {
	case "feature":
		return TypeFeature, nil
	case "parameterdef":
		return TypeParameterDef, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownType, s)
	}
}

// Format is the document format a destination accepts.
type Format uint8

const (
	FormatHP Format = iota
	FormatPPD
	FormatXPS
)

// Formats lists all formats.
var Formats = []Format{FormatHP, FormatPPD, FormatXPS}

// String returns the format name.
func (f Format) String() string {
	switch f {
	case FormatHP:
		return "HP"
	case FormatPPD:
		return "PPD"
	case FormatXPS:
		return "XPS"
	default:
		return fmt.Sprintf("Format(%d)", uint8(f))
	}
}

// ParseFormat parses a format name (case-insensitive).
func ParseFormat(s string) (Format, error) {
	for _, f := range Formats {
		if strings.EqualFold(f.String(), s) {
			return f, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}
