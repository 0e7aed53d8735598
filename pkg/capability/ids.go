package capability

// Capability IDs per document format. A missing entry means the capability
// does not apply to that format.
var (
	CollateID = map[Format]string{
		FormatHP:  "collate",
		FormatPPD: "Collate",
		FormatXPS: "psk:DocumentCollate",
	}

	ColorID = map[Format]string{
		FormatHP:  "color",
		FormatPPD: "ColorModel",
		FormatXPS: "psk:PageOutputColor",
	}

	CopiesID = map[Format]string{
		FormatHP:  "copies",
		FormatXPS: "psk:JobCopiesAllDocuments",
	}

	DuplexID = map[Format]string{
		FormatHP:  "duplex",
		FormatPPD: "Duplex",
		FormatXPS: "psk:JobDuplexAllDocumentsContiguously",
	}
)

// CollateIDFor returns the collate capability ID for f.
func CollateIDFor(f Format) (string, bool) { return lookup(CollateID, f) }

// ColorIDFor returns the color capability ID for f.
func ColorIDFor(f Format) (string, bool) { return lookup(ColorID, f) }

// CopiesIDFor returns the copies capability ID for f.
func CopiesIDFor(f Format) (string, bool) { return lookup(CopiesID, f) }

// DuplexIDFor returns the duplex capability ID for f.
func DuplexIDFor(f Format) (string, bool) { return lookup(DuplexID, f) }

func lookup(table map[Format]string, f Format) (string, bool) {
	id, ok := table[f]
	return id, ok
}
