package entities

// SourceKind tells where the units of a transfer come from
type SourceKind int

const (
	FromWarehouse SourceKind = iota
	FromStoreExcess
)

// String method for SourceKind enum
func (k SourceKind) String() string {
	switch k {
	case FromWarehouse:
		return "Warehouse"
	case FromStoreExcess:
		return "StoreExcess"
	default:
		return "Unknown"
	}
}

// MarshalText renders the source kind by name
func (k SourceKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Transfer is a planned movement of units from a physical source to a store
type Transfer struct {
	SKU         SKU
	Size        string
	Color       string
	Origin      string
	Destination string
	Units       Quantity
	Reason      string
	Priority    int
	Season      string
	Source      SourceKind
}
