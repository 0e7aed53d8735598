package printer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cros-webui/webui-go/pkg/capability"
)

// TXT record keys.
const (
	TXTKeyType    = "ty"
	TXTKeyPDL     = "pdl"
	TXTKeyNote    = "note"
	TXTKeyColor   = "Color"
	TXTKeyDuplex  = "Duplex"
	TXTKeyCopies  = "Copies"
	TXTKeyCollate = "Collate"
)

// Errors returned when decoding TXT records.
var (
	ErrMissingPDL        = errors.New("missing pdl key")
	ErrUnsupportedFormat = errors.New("no supported document format")
)

// TXTRecordMap is a map of TXT record key-value pairs.
type TXTRecordMap map[string]string

// StringsToTXTRecords converts "key=value" strings to a map. Keys without a
// value map to the empty string.
func StringsToTXTRecords(strs []string) TXTRecordMap {
	txt := make(TXTRecordMap, len(strs))
	for _, s := range strs {
		key, value, _ := strings.Cut(s, "=")
		if key != "" {
			txt[key] = value
		}
	}
	return txt
}

// Flag reports whether a boolean key is set to "T".
func (t TXTRecordMap) Flag(key string) bool {
	return strings.EqualFold(t[key], "T")
}

// pdlFormats maps accepted MIME types to document formats.
var pdlFormats = map[string]capability.Format{
	"application/postscript":         capability.FormatPPD,
	"application/vnd.hp-pcl":         capability.FormatHP,
	"application/vnd.ms-xpsdocument": capability.FormatXPS,
	"application/oxps":               capability.FormatXPS,
}

// FormatFromPDL returns the format of the first supported MIME type in a pdl
// value.
func FormatFromPDL(pdl string) (capability.Format, bool) {
	for _, mime := range strings.Split(pdl, ",") {
		if f, ok := pdlFormats[strings.ToLower(strings.TrimSpace(mime))]; ok {
			return f, true
		}
	}
	return 0, false
}

// optionNames holds the option identifiers of the two-option features for
// one format.
type optionNames struct {
	collate, noCollate string
	color, bw          string
	simplex, longEdge  string
}

var formatOptions = map[capability.Format]optionNames{
	capability.FormatHP: {
		collate: "collate", noCollate: "no-collate",
		color: "color", bw: "monochrome",
		simplex: "one-sided", longEdge: "two-sided-long-edge",
	},
	capability.FormatPPD: {
		collate: "True", noCollate: "False",
		color: "RGB", bw: "Gray",
		simplex: "None", longEdge: "DuplexNoTumble",
	},
	capability.FormatXPS: {
		collate: "psk:Collated", noCollate: "psk:Uncollated",
		color: "psk:Color", bw: "psk:Monochrome",
		simplex: "psk:OneSided", longEdge: "psk:TwoSidedLongEdge",
	},
}

// CapabilitiesFromTXT builds the capabilities advertised in txt for format
// f. Keys without a capability ID for f are skipped. Color and collate are
// on by default, duplex is off.
func CapabilitiesFromTXT(txt TXTRecordMap, f capability.Format) *capability.CloudCapabilities {
	names := formatOptions[f]

	var collate *capability.CollateCapability
	if id, ok := capability.CollateIDFor(f); ok && txt.Flag(TXTKeyCollate) {
		collate = capability.NewCollateCapability(id, names.collate, names.noCollate, true)
	}
	var color *capability.ColorCapability
	if id, ok := capability.ColorIDFor(f); ok && txt.Flag(TXTKeyColor) {
		color = capability.NewColorCapability(id, names.color, names.bw, true)
	}
	var copies *capability.CopiesCapability
	if id, ok := capability.CopiesIDFor(f); ok && txt.Flag(TXTKeyCopies) {
		copies = capability.NewCopiesCapability(id)
	}
	var duplex *capability.DuplexCapability
	if id, ok := capability.DuplexIDFor(f); ok && txt.Flag(TXTKeyDuplex) {
		duplex = capability.NewDuplexCapability(id, names.simplex, names.longEdge, false)
	}
	return capability.NewCloudCapabilities(collate, color, copies, duplex)
}

// DecodeIPPTXT decodes the TXT record of an IPP service into a destination
// without network details.
func DecodeIPPTXT(instance string, txt TXTRecordMap) (*Destination, error) {
	pdl, ok := txt[TXTKeyPDL]
	if !ok {
		return nil, fmt.Errorf("%s: %w", instance, ErrMissingPDL)
	}
	format, ok := FormatFromPDL(pdl)
	if !ok {
		return nil, fmt.Errorf("%s: %w: %s", instance, ErrUnsupportedFormat, pdl)
	}

	name := txt[TXTKeyType]
	if name == "" {
		name = instance
	}
	return &Destination{
		ID:           instance,
		DisplayName:  name,
		Location:     txt[TXTKeyNote],
		Format:       format,
		Capabilities: CapabilitiesFromTXT(txt, format),
	}, nil
}
