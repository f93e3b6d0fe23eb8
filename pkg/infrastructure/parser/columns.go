package parser

import (
	"strings"
)

// Field is a canonical input column
type Field string

// Stock fields
const (
	FieldWarehouseCode Field = "warehouse_code"
	FieldWarehouseName Field = "warehouse_name"
	FieldColorCode     Field = "color_code"
	FieldColorName     Field = "color_name"
	FieldSize          Field = "size"
	FieldQuantity      Field = "quantity"
	FieldCategory      Field = "category"
	FieldOrigin        Field = "origin"
	FieldSeason        Field = "season"
)

// Participation and priority fields
const (
	FieldStore    Field = "store"
	FieldShare    Field = "share"
	FieldPriority Field = "priority"
)

// Alias is an accepted header fragment. Exact aliases must match the whole
// normalised header; the others match anywhere inside it.
type Alias struct {
	Fragment string
	Exact    bool
}

// FieldAliases lists the accepted aliases of one field
type FieldAliases struct {
	Field    Field
	Aliases  []Alias
	Optional bool
}

// ColumnResolver maps header cells to canonical fields
type ColumnResolver struct {
	fields []FieldAliases
}

// NewColumnResolver creates a resolver; fields are resolved in the given order
func NewColumnResolver(fields ...FieldAliases) *ColumnResolver {
	return &ColumnResolver{fields: fields}
}

func contains(fragments ...string) []Alias {
	aliases := make([]Alias, len(fragments))
	for i, f := range fragments {
		aliases[i] = Alias{Fragment: f}
	}
	return aliases
}

// StockColumns resolves the stock table layout
func StockColumns() *ColumnResolver {
	return NewColumnResolver(
		FieldAliases{Field: FieldWarehouseCode, Aliases: contains("coddep")},
		FieldAliases{Field: FieldColorName, Aliases: contains("nombrecolor")},
		FieldAliases{Field: FieldColorCode, Aliases: []Alias{{Fragment: "color", Exact: true}, {Fragment: "codcolor", Exact: true}}},
		FieldAliases{Field: FieldWarehouseName, Aliases: contains("deposito")},
		FieldAliases{Field: FieldSize, Aliases: contains("medida", "talle")},
		FieldAliases{Field: FieldQuantity, Aliases: contains("cantidad")},
		FieldAliases{Field: FieldCategory, Aliases: contains("tipologia")},
		FieldAliases{Field: FieldOrigin, Aliases: contains("origen")},
		FieldAliases{Field: FieldSeason, Aliases: contains("temporada")},
	)
}

// ParticipationColumns resolves the participation table layout
func ParticipationColumns() *ColumnResolver {
	return NewColumnResolver(
		FieldAliases{Field: FieldStore, Aliases: contains("sucursal", "local", "tienda")},
		FieldAliases{Field: FieldShare, Aliases: contains("participacion", "vta", "venta", "%")},
	)
}

// PriorityColumns resolves the priority table layout
func PriorityColumns() *ColumnResolver {
	return NewColumnResolver(
		FieldAliases{Field: FieldPriority, Aliases: contains("prioridad", "priorid", "priority")},
		FieldAliases{Field: FieldCategory, Aliases: contains("tipologia", "categoria", "category")},
	)
}

// Columns is a resolved header: field to column index
type Columns map[Field]int

// Index returns the column of a field, or -1 when unresolved
func (c Columns) Index(field Field) int {
	if i, ok := c[field]; ok {
		return i
	}
	return -1
}

// Resolve matches the header against every field. Each header cell is used at most
// once. Required fields that cannot be matched are returned as missing.
func (r *ColumnResolver) Resolve(header []string) (Columns, []Field) {
	normalised := make([]string, len(header))
	for i, h := range header {
		normalised[i] = Normalise(h)
	}

	columns := make(Columns, len(r.fields))
	used := make(map[int]bool, len(header))
	var missing []Field

	for _, fa := range r.fields {
		index := -1
		for _, exact := range []bool{true, false} {
			for _, alias := range fa.Aliases {
				if alias.Exact != exact {
					continue
				}
				if index = findColumn(normalised, used, alias); index >= 0 {
					break
				}
			}
			if index >= 0 {
				break
			}
		}

		if index < 0 {
			if !fa.Optional {
				missing = append(missing, fa.Field)
			}
			continue
		}
		columns[fa.Field] = index
		used[index] = true
	}

	return columns, missing
}

func findColumn(normalised []string, used map[int]bool, alias Alias) int {
	for i, h := range normalised {
		if used[i] {
			continue
		}
		if alias.Exact && h == alias.Fragment {
			return i
		}
		if !alias.Exact && strings.Contains(h, alias.Fragment) {
			return i
		}
	}
	return -1
}

var accents = strings.NewReplacer(
	"á", "a", "é", "e", "í", "i", "ó", "o", "ú", "u", "ñ", "n",
	" ", "", "_", "", "-", "", ".", "",
)

// Normalise lowercases a header, folds accents and drops separators
func Normalise(header string) string {
	return accents.Replace(strings.ToLower(strings.TrimSpace(header)))
}
