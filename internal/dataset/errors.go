package dataset

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound indicates no primary file, fallback match or upload was available.
	ErrNotFound = errors.New("dataset not found")
	// ErrEmptyFile indicates a zero-byte, blank or header-only source.
	ErrEmptyFile = errors.New("dataset file is empty")
)

// ParseError indicates the source is not valid delimited text.
type ParseError struct {
	Source Source
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse dataset from %s: %v", e.Source, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// MissingColumnsError indicates a well-formed table lacking required columns.
type MissingColumnsError struct {
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("missing columns [%s] in the dataset", strings.Join(e.Columns, ", "))
}
