package printer

import (
	"strings"

	"github.com/cros-webui/webui-go/pkg/capability"
)

// Destination is a discovered print destination.
type Destination struct {
	// ID is the mDNS instance name.
	ID string

	// DisplayName is the make and model, or the instance name.
	DisplayName string

	// Location is the free-form location note, if advertised.
	Location string

	Host      string
	Port      uint16
	Addresses []string

	// Format is the document format used to print to the destination.
	Format capability.Format

	Capabilities *capability.CloudCapabilities
}

// compareDestinations orders destinations by display name, then ID.
func compareDestinations(a, b *Destination) int {
	if c := strings.Compare(strings.ToLower(a.DisplayName), strings.ToLower(b.DisplayName)); c != 0 {
		return c
	}
	return strings.Compare(a.ID, b.ID)
}
