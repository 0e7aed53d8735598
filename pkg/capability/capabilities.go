package capability

// Capability is implemented by every capability kind.
type Capability interface {
	ID() string
	Type() Type
}

// base carries the fields shared by all capabilities.
type base struct {
	id  string
	typ Type
}

// ID returns the capability ID.
func (b base) ID() string { return b.id }

// Type returns the capability type.
func (b base) Type() Type { return b.typ }

// CollateCapability selects whether copies are collated.
type CollateCapability struct {
	base
	collateOption    string
	noCollateOption  string
	isCollateDefault bool
}

// NewCollateCapability creates a collate capability.
func NewCollateCapability(id, collateOption, noCollateOption string, isCollateDefault bool) *CollateCapability {
	return &CollateCapability{
		base:             base{id: id, typ: TypeFeature},
		collateOption:    collateOption,
		noCollateOption:  noCollateOption,
		isCollateDefault: isCollateDefault,
	}
}

// CollateOption returns the option value that turns collation on.
func (c *CollateCapability) CollateOption() string { return c.collateOption }

// NoCollateOption returns the option value that turns collation off.
func (c *CollateCapability) NoCollateOption() string { return c.noCollateOption }

// IsCollateDefault reports whether copies are collated unless the user
// chooses otherwise.
func (c *CollateCapability) IsCollateDefault() bool { return c.isCollateDefault }

// ColorCapability selects color or black and white output.
type ColorCapability struct {
	base
	colorOption    string
	bwOption       string
	isColorDefault bool
}

// NewColorCapability creates a color capability.
func NewColorCapability(id, colorOption, bwOption string, isColorDefault bool) *ColorCapability {
	return &ColorCapability{
		base:           base{id: id, typ: TypeFeature},
		colorOption:    colorOption,
		bwOption:       bwOption,
		isColorDefault: isColorDefault,
	}
}

// ColorOption returns the option value for color output.
func (c *ColorCapability) ColorOption() string { return c.colorOption }

// BWOption returns the option value for black and white output.
func (c *ColorCapability) BWOption() string { return c.bwOption }

// IsColorDefault reports whether color output is preselected.
func (c *ColorCapability) IsColorDefault() bool { return c.isColorDefault }

// CopiesCapability sets the number of copies. It has no options.
type CopiesCapability struct {
	base
}

// NewCopiesCapability creates a copies capability.
func NewCopiesCapability(id string) *CopiesCapability {
	return &CopiesCapability{base: base{id: id, typ: TypeParameterDef}}
}

// DuplexCapability selects one-sided or two-sided (long edge) printing.
type DuplexCapability struct {
	base
	simplexOption   string
	longEdgeOption  string
	isDuplexDefault bool
}

// NewDuplexCapability creates a duplex capability. isDuplexDefault selects
// the long edge option by default.
func NewDuplexCapability(id, simplexOption, longEdgeOption string, isDuplexDefault bool) *DuplexCapability {
	return &DuplexCapability{
		base:            base{id: id, typ: TypeFeature},
		simplexOption:   simplexOption,
		longEdgeOption:  longEdgeOption,
		isDuplexDefault: isDuplexDefault,
	}
}

// SimplexOption returns the option value for one-sided printing.
func (c *DuplexCapability) SimplexOption() string { return c.simplexOption }

// LongEdgeOption returns the option value for two-sided printing bound on
// the long edge.
func (c *DuplexCapability) LongEdgeOption() string { return c.longEdgeOption }

// IsDuplexDefault reports whether long edge printing is preselected.
func (c *DuplexCapability) IsDuplexDefault() bool { return c.isDuplexDefault }

var (
	_ Capability = (*CollateCapability)(nil)
	_ Capability = (*ColorCapability)(nil)
	_ Capability = (*CopiesCapability)(nil)
	_ Capability = (*DuplexCapability)(nil)
)
