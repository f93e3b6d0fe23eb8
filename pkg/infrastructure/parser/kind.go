package parser

import "strings"

// Kind classifies an input table by its header
type Kind int

const (
	KindUnknown Kind = iota
	KindStock
	KindParticipation
	KindPriority
)

// String method for Kind enum
func (k Kind) String() string {
	switch k {
	case KindStock:
		return "stock"
	case KindParticipation:
		return "participation"
	case KindPriority:
		return "priority"
	default:
		return "unknown"
	}
}

// DetectKind classifies a header by keyword presence
func DetectKind(header []string) Kind {
	has := func(fragments ...string) bool {
		for _, h := range header {
			n := Normalise(h)
			for _, f := range fragments {
				if strings.Contains(n, f) {
					return true
				}
			}
		}
		return false
	}

	size := has("medida", "talle", "talla", "size")
	color := has("color")
	quantity := has("cantidad", "stock")
	store := has("sucursal", "local", "tienda")
	share := has("participacion", "vta", "venta", "%")
	priority := has("prioridad", "priorid", "priority")
	category := has("tipologia", "categoria", "category")

	switch {
	case size && color && quantity && !priority:
		return KindStock
	case store && share && !size && !color && !priority:
		return KindParticipation
	case priority && category && !size && !color && !share:
		return KindPriority
	default:
		return KindUnknown
	}
}
