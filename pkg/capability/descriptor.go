package capability

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fxamacker/cbor/v2"
	"gopkg.in/yaml.v3"
)

// Encoding is the serialization of a descriptor document.
type Encoding uint8

const (
	EncodingJSON Encoding = iota
	EncodingYAML
	EncodingCBOR
)

// String returns the encoding name.
func (e Encoding) String() string {
	switch e {
	case EncodingJSON:
		return "json"
	case EncodingYAML:
		return "yaml"
	case EncodingCBOR:
		return "cbor"
	default:
		return fmt.Sprintf("Encoding(%d)", uint8(e))
	}
}

// ParseEncoding parses an encoding name. "yml" is accepted for YAML.
func ParseEncoding(s string) (Encoding, error) {
	switch strings.ToLower(s) {
	case "json":
		return EncodingJSON, nil
	case "yaml", "yml":
		return EncodingYAML, nil
	case "cbor":
		return EncodingCBOR, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownEncoding, s)
	}
}

// EncodingForPath picks the encoding from a file extension.
func EncodingForPath(path string) (Encoding, error) {
	return ParseEncoding(strings.TrimPrefix(filepath.Ext(path), "."))
}

// Document is a capability descriptor document.
type Document struct {
	Capabilities []CapabilityDoc `json:"capabilities" yaml:"capabilities" cbor:"capabilities"`
}

// CapabilityDoc describes one capability.
type CapabilityDoc struct {
	Name    string      `json:"name" yaml:"name" cbor:"name"`
	Type    string      `json:"type,omitempty" yaml:"type,omitempty" cbor:"type,omitempty"`
	Options []OptionDoc `json:"options,omitempty" yaml:"options,omitempty" cbor:"options,omitempty"`
}

// OptionDoc describes one option of a feature.
type OptionDoc struct {
	Name    string `json:"name" yaml:"name" cbor:"name"`
	Default bool   `json:"default,omitempty" yaml:"default,omitempty" cbor:"default,omitempty"`
}

// Parse decodes a descriptor document and builds the capabilities that apply
// to format f. Capabilities with unknown names are ignored.
//
// Feature options are positional: collate lists collate then no-collate,
// color lists color then black and white, duplex lists simplex then long
// edge.
func Parse(data []byte, enc Encoding, f Format) (*CloudCapabilities, error) {
	var doc Document
	var err error
	switch enc {
	case EncodingJSON:
		err = json.Unmarshal(data, &doc)
	case EncodingYAML:
		err = yaml.Unmarshal(data, &doc)
	case EncodingCBOR:
		err = cbor.Unmarshal(data, &doc)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownEncoding, enc)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s descriptor: %w", enc, err)
	}
	return FromDocument(doc, f)
}

// FromDocument builds the capabilities of doc that apply to format f.
func FromDocument(doc Document, f Format) (*CloudCapabilities, error) {
	var (
		collate *CollateCapability
		color   *ColorCapability
		copies  *CopiesCapability
		duplex  *DuplexCapability
	)
	seen := make(map[string]bool, len(doc.Capabilities))

	for _, d := range doc.Capabilities {
		var want Type
		switch d.Name {
		case CollateID[f], ColorID[f], DuplexID[f]:
			want = TypeFeature
		case CopiesID[f]:
			want = TypeParameterDef
		default:
			continue
		}
		if d.Name == "" {
			continue
		}
		if seen[d.Name] {
			return nil, fmt.Errorf("%w: %s", ErrDuplicate, d.Name)
		}
		seen[d.Name] = true
		if err := d.checkType(want); err != nil {
			return nil, err
		}
		if want == TypeParameterDef {
			copies = NewCopiesCapability(d.Name)
			continue
		}

		if len(d.Options) != 2 {
			return nil, fmt.Errorf("%w: %s has %d", ErrInvalidOptions, d.Name, len(d.Options))
		}
		first, second := d.Options[0], d.Options[1]
		switch d.Name {
		case CollateID[f]:
			collate = NewCollateCapability(d.Name, first.Name, second.Name, first.Default)
		case ColorID[f]:
			color = NewColorCapability(d.Name, first.Name, second.Name, first.Default)
		case DuplexID[f]:
			duplex = NewDuplexCapability(d.Name, first.Name, second.Name, second.Default)
		}
	}
	return NewCloudCapabilities(collate, color, copies, duplex), nil
}

func (d CapabilityDoc) checkType(want Type) error {
	if d.Type == "" {
		return nil
	}
	got, err := ParseType(d.Type)
	if err != nil {
		return fmt.Errorf("capability %s: %w", d.Name, err)
	}
	if got != want {
		return fmt.Errorf("%w: %s is %s, want %s", ErrTypeMismatch, d.Name, got, want)
	}
	return nil
}

// ToDocument describes caps for format f. Capabilities without an ID for f
// are left out.
func ToDocument(caps *CloudCapabilities, f Format) Document {
	var doc Document
	feature := func(table map[Format]string, first, second string, firstDefault bool) {
		id, ok := table[f]
		if !ok {
			return
		}
		doc.Capabilities = append(doc.Capabilities, CapabilityDoc{
			Name: id,
			Type: TypeFeature.String(),
			Options: []OptionDoc{
				{Name: first, Default: firstDefault},
				{Name: second, Default: !firstDefault},
			},
		})
	}

	if c := caps.Collate(); c != nil {
		feature(CollateID, c.CollateOption(), c.NoCollateOption(), c.IsCollateDefault())
	}
	if c := caps.Color(); c != nil {
		feature(ColorID, c.ColorOption(), c.BWOption(), c.IsColorDefault())
	}
	if caps.HasCopies() {
		if id, ok := CopiesIDFor(f); ok {
			doc.Capabilities = append(doc.Capabilities, CapabilityDoc{
				Name: id,
				Type: TypeParameterDef.String(),
			})
		}
	}
	if c := caps.Duplex(); c != nil {
		feature(DuplexID, c.SimplexOption(), c.LongEdgeOption(), !c.IsDuplexDefault())
	}
	return doc
}

// Encode writes caps as a descriptor document for format f.
func Encode(caps *CloudCapabilities, enc Encoding, f Format) ([]byte, error) {
	doc := ToDocument(caps, f)
	switch enc {
	case EncodingJSON:
		return json.MarshalIndent(doc, "", "  ")
	case EncodingYAML:
		return yaml.Marshal(doc)
	case EncodingCBOR:
		return cbor.Marshal(doc)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownEncoding, enc)
	}
}
