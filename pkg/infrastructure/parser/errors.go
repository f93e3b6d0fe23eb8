package parser

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyTable is returned for a table without a header and at least one data row
	ErrEmptyTable = errors.New("table is empty")
	// ErrMissingColumn is returned when a required column cannot be resolved
	ErrMissingColumn = errors.New("missing required column")
	// ErrNoValidRows is returned when every data row was discarded
	ErrNoValidRows = errors.New("no valid rows")
	// ErrParticipationSum is returned when participation weights do not add up to 100
	ErrParticipationSum = errors.New("participation weights must sum to 100%")
	// ErrDuplicateStore is returned when a store appears twice in the participation table
	ErrDuplicateStore = errors.New("duplicate store")
	// ErrWrongTableKind is returned when a table looks like a different input
	ErrWrongTableKind = errors.New("wrong table kind")
	// ErrInvalidPriorityFile is returned for a priority table without usable rows
	ErrInvalidPriorityFile = errors.New("invalid priority file")
)

// ParseError locates a parsing failure in its table
type ParseError struct {
	Table  string
	Row    int
	Column string
	Err    error
}

func (e *ParseError) Error() string {
	switch {
	case e.Row > 0 && e.Column != "":
		return fmt.Sprintf("%s row %d column %s: %v", e.Table, e.Row, e.Column, e.Err)
	case e.Row > 0:
		return fmt.Sprintf("%s row %d: %v", e.Table, e.Row, e.Err)
	case e.Column != "":
		return fmt.Sprintf("%s column %s: %v", e.Table, e.Column, e.Err)
	default:
		return fmt.Sprintf("%s: %v", e.Table, e.Err)
	}
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
