package log

import (
	"strings"
	"time"
)

// Event represents a model event.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// ModelID identifies the model instance that produced the event (UUID).
	ModelID string `cbor:"2,keyasint"`

	// Layer where the event was captured.
	Layer Layer `cbor:"3,keyasint"`

	// Category classifies the event type.
	Category Category `cbor:"4,keyasint"`

	// Type-specific payload (one of these will be set).
	Permutation *PermutationEvent `cbor:"10,keyasint,omitempty"`
	Resolve     *ResolveEvent     `cbor:"11,keyasint,omitempty"`
	StateChange *StateChangeEvent `cbor:"12,keyasint,omitempty"`
	Error       *ErrorEventData   `cbor:"13,keyasint,omitempty"`
}

// Layer indicates which component captured the event.
type Layer uint8

const (
	// LayerVolume is the volume manager.
	LayerVolume Layer = 0
	// LayerShortcut is the shortcut list.
	LayerShortcut Layer = 1
	// LayerNavList is the combined navigation list.
	LayerNavList Layer = 2
	// LayerCapability is the print capability model.
	LayerCapability Layer = 3
	// LayerPrinter is print destination discovery.
	LayerPrinter Layer = 4
)

// String returns the layer name.
func (l Layer) String() string {
	switch l {
	case LayerVolume:
		return "VOLUME"
	case LayerShortcut:
		return "SHORTCUT"
	case LayerNavList:
		return "NAVLIST"
	case LayerCapability:
		return "CAPABILITY"
	case LayerPrinter:
		return "PRINTER"
	default:
		return "UNKNOWN"
	}
}

// ParseLayer parses a layer name (case-insensitive).
func ParseLayer(s string) (Layer, bool) {
	for l := LayerVolume; l <= LayerPrinter; l++ {
		if strings.EqualFold(l.String(), s) {
			return l, true
		}
	}
	return 0, false
}

// Category classifies the event type.
type Category uint8

const (
	// CategoryPermutation indicates a list permutation.
	CategoryPermutation Category = 0
	// CategoryResolve indicates a path resolution.
	CategoryResolve Category = 1
	// CategoryState indicates a state change.
	CategoryState Category = 2
	// CategoryError indicates an error event.
	CategoryError Category = 3
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryPermutation:
		return "PERMUTATION"
	case CategoryResolve:
		return "RESOLVE"
	case CategoryState:
		return "STATE"
	case CategoryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseCategory parses a category name (case-insensitive).
func ParseCategory(s string) (Category, bool) {
	for c := CategoryPermutation; c <= CategoryError; c++ {
		if strings.EqualFold(c.String(), s) {
			return c, true
		}
	}
	return 0, false
}

// PermutationEvent captures a list change.
type PermutationEvent struct {
	// Trigger is the source list whose change caused the permutation.
	Trigger Layer `cbor:"1,keyasint"`

	// Permutation maps old indices to new indices (-1 = removed).
	Permutation []int `cbor:"2,keyasint"`

	// NewLength is the list length after the change.
	NewLength int `cbor:"3,keyasint"`
}

// ResolveEvent captures the outcome of resolving an item's path.
type ResolveEvent struct {
	// Path is the resolved path.
	Path string `cbor:"1,keyasint"`

	// Found reports whether an entry exists at Path.
	Found bool `cbor:"2,keyasint"`

	// Duration is how long the resolution took. Stored as nanoseconds.
	Duration time.Duration `cbor:"3,keyasint,omitempty"`
}

// StateChangeEvent captures lifecycle changes of volumes, shortcuts and
// print destinations.
type StateChangeEvent struct {
	// Entity being changed.
	Entity StateEntity `cbor:"1,keyasint"`

	// ID identifies the entity (volume ID, shortcut path, destination ID).
	ID string `cbor:"2,keyasint"`

	// OldState is the previous state (may be empty).
	OldState string `cbor:"3,keyasint,omitempty"`

	// NewState is the new state.
	NewState string `cbor:"4,keyasint"`

	// Reason for the change (if available).
	Reason string `cbor:"5,keyasint,omitempty"`
}

// StateEntity indicates what entity changed state.
type StateEntity uint8

const (
	// StateEntityVolume indicates a volume state change.
	StateEntityVolume StateEntity = 0
	// StateEntityShortcut indicates a shortcut state change.
	StateEntityShortcut StateEntity = 1
	// StateEntityDestination indicates a print destination state change.
	StateEntityDestination StateEntity = 2
)

// String returns the state entity name.
func (s StateEntity) String() string {
	switch s {
	case StateEntityVolume:
		return "VOLUME"
	case StateEntityShortcut:
		return "SHORTCUT"
	case StateEntityDestination:
		return "DESTINATION"
	default:
		return "UNKNOWN"
	}
}

// ErrorEventData captures errors at any layer.
type ErrorEventData struct {
	// Layer where the error occurred.
	Layer Layer `cbor:"1,keyasint"`

	// Message is the error message.
	Message string `cbor:"2,keyasint"`

	// Path is the affected path (if applicable).
	Path string `cbor:"3,keyasint,omitempty"`

	// Context describes what operation was being performed.
	Context string `cbor:"4,keyasint,omitempty"`
}
