package dataset

// Outcome tags the variant held by a Result.
type Outcome int

const (
	OutcomeLoaded Outcome = iota
	OutcomeNotFound
	OutcomeEmptyFile
	OutcomeParseError
	OutcomeMissingColumns
)

func (o Outcome) String() string {
	switch o {
	case OutcomeLoaded:
		return "loaded"
	case OutcomeNotFound:
		return "not_found"
	case OutcomeEmptyFile:
		return "empty_file"
	case OutcomeParseError:
		return "parse_error"
	case OutcomeMissingColumns:
		return "missing_columns"
	default:
		return "unknown"
	}
}

// SourceKind says which input satisfied a request.
type SourceKind int

const (
	SourceNone SourceKind = iota
	SourcePrimary
	SourceDiscovered
	SourceUploaded
)

// Source records where a table came from.
type Source struct {
	Kind SourceKind
	// Path is the file read for primary and discovered sources, and the
	// client-side file name (possibly empty) for uploads.
	Path string
}

// String is the human-readable source description shown next to a loaded
// table.
func (s Source) String() string {
	switch s.Kind {
	case SourcePrimary:
		return s.Path
	case SourceDiscovered:
		return "discovered: " + s.Path
	case SourceUploaded:
		return "uploaded"
	default:
		return "none"
	}
}

// Result is the outcome of Locator.Locate. Table is non-nil only for
// OutcomeLoaded; Missing is set only for OutcomeMissingColumns.
type Result struct {
	Outcome Outcome
	Table   *Table
	Source  Source
	Message string
	Missing []string
}

// OK reports whether a validated table was produced.
func (r Result) OK() bool { return r.Outcome == OutcomeLoaded && r.Table != nil }

// Err converts a failed Result into an error value for callers that prefer
// error handling; it returns nil for OutcomeLoaded.
func (r Result) Err() error {
	switch r.Outcome {
	case OutcomeLoaded:
		return nil
	case OutcomeNotFound:
		return ErrNotFound
	case OutcomeEmptyFile:
		return ErrEmptyFile
	case OutcomeParseError:
		return &ParseError{Source: r.Source, Err: messageError(r.Message)}
	case OutcomeMissingColumns:
		return &MissingColumnsError{Columns: append([]string(nil), r.Missing...)}
	default:
		return ErrNotFound
	}
}

type messageError string

func (m messageError) Error() string { return string(m) }
