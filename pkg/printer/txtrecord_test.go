package printer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cros-webui/webui-go/pkg/capability"
)

func TestStringsToTXTRecords(t *testing.T) {
	txt := StringsToTXTRecords([]string{"ty=Brother HL", "Color=T", "note=Room 2=east", "air", ""})
	assert.Equal(t, TXTRecordMap{
		"ty":    "Brother HL",
		"Color": "T",
		"note":  "Room 2=east",
		"air":   "",
	}, txt)
	assert.True(t, txt.Flag(TXTKeyColor))
	assert.False(t, txt.Flag(TXTKeyDuplex))
}

func TestFormatFromPDL(t *testing.T) {
	tests := []struct {
		pdl  string
		want capability.Format
		ok   bool
	}{
		{"application/postscript", capability.FormatPPD, true},
		{"application/pdf, application/vnd.hp-PCL", capability.FormatHP, true},
		{"application/oxps,application/postscript", capability.FormatXPS, true},
		{"image/urf,application/pdf", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.pdl, func(t *testing.T) {
			got, ok := FormatFromPDL(tt.pdl)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCapabilitiesFromTXT(t *testing.T) {
	txt := TXTRecordMap{"Color": "T", "Duplex": "T", "Copies": "T", "Collate": "F"}

	ppd := CapabilitiesFromTXT(txt, capability.FormatPPD)
	require.True(t, ppd.HasColor())
	assert.Equal(t, "ColorModel", ppd.Color().ID())
	assert.Equal(t, "RGB", ppd.Color().ColorOption())
	assert.True(t, ppd.Color().IsColorDefault())
	require.True(t, ppd.HasDuplex())
	assert.Equal(t, "Duplex", ppd.Duplex().ID())
	assert.False(t, ppd.Duplex().IsDuplexDefault())
	// PPD has no copies capability.
	assert.False(t, ppd.HasCopies())
	assert.False(t, ppd.HasCollate())

	xps := CapabilitiesFromTXT(txt, capability.FormatXPS)
	require.True(t, xps.HasCopies())
	assert.Equal(t, "psk:JobCopiesAllDocuments", xps.Copies().ID())
}

func TestDecodeIPPTXT(t *testing.T) {
	dest, err := DecodeIPPTXT("Office._ipp._tcp", TXTRecordMap{
		"pdl":     "application/postscript",
		"Collate": "T",
		"note":    "2nd floor",
	})
	require.NoError(t, err)
	assert.Equal(t, "Office._ipp._tcp", dest.ID)
	assert.Equal(t, "Office._ipp._tcp", dest.DisplayName)
	assert.Equal(t, "2nd floor", dest.Location)
	assert.Equal(t, capability.FormatPPD, dest.Format)
	assert.Equal(t, "Collate", dest.Capabilities.Collate().ID())

	_, err = DecodeIPPTXT("x", TXTRecordMap{"ty": "Printer"})
	assert.ErrorIs(t, err, ErrMissingPDL)

	_, err = DecodeIPPTXT("x", TXTRecordMap{"pdl": "image/pwg-raster"})
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}
