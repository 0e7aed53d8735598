package capability

// CloudCapabilities is the set of capabilities of one destination. Any
// member may be nil. Values are not modified after construction.
type CloudCapabilities struct {
	collate *CollateCapability
	color   *ColorCapability
	copies  *CopiesCapability
	duplex  *DuplexCapability
}

// NewCloudCapabilities aggregates the given capabilities.
func NewCloudCapabilities(collate *CollateCapability, color *ColorCapability, copies *CopiesCapability, duplex *DuplexCapability) *CloudCapabilities {
	return &CloudCapabilities{collate: collate, color: color, copies: copies, duplex: duplex}
}

// Collate returns the collate capability, or nil.
func (c *CloudCapabilities) Collate() *CollateCapability {
	if c == nil {
		return nil
	}
	return c.collate
}

// Color returns the color capability, or nil.
func (c *CloudCapabilities) Color() *ColorCapability {
	if c == nil {
		return nil
	}
	return c.color
}

// Copies returns the copies capability, or nil.
func (c *CloudCapabilities) Copies() *CopiesCapability {
	if c == nil {
		return nil
	}
	return c.copies
}

// Duplex returns the duplex capability, or nil.
func (c *CloudCapabilities) Duplex() *DuplexCapability {
	if c == nil {
		return nil
	}
	return c.duplex
}

// HasCollate reports whether the destination supports collation.
func (c *CloudCapabilities) HasCollate() bool { return c.Collate() != nil }

// HasColor reports whether the destination offers a color choice.
func (c *CloudCapabilities) HasColor() bool { return c.Color() != nil }

// HasCopies reports whether the destination accepts a copy count.
func (c *CloudCapabilities) HasCopies() bool { return c.Copies() != nil }

// HasDuplex reports whether the destination supports two-sided printing.
func (c *CloudCapabilities) HasDuplex() bool { return c.Duplex() != nil }

// All returns the non-nil capabilities in collate, color, copies, duplex
// order.
func (c *CloudCapabilities) All() []Capability {
	var out []Capability
	if c.HasCollate() {
		out = append(out, c.collate)
	}
	if c.HasColor() {
		out = append(out, c.color)
	}
	if c.HasCopies() {
		out = append(out, c.copies)
	}
	if c.HasDuplex() {
		out = append(out, c.duplex)
	}
	return out
}
