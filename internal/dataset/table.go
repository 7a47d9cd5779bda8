package dataset

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// naTokens are the cell values read as missing.
var naTokens = map[string]struct{}{
	"": {}, "#N/A": {}, "#N/A N/A": {}, "#NA": {}, "-1.#IND": {}, "-1.#QNAN": {},
	"-NaN": {}, "-nan": {}, "1.#IND": {}, "1.#QNAN": {}, "<NA>": {}, "N/A": {},
	"NA": {}, "NULL": {}, "NaN": {}, "None": {}, "n/a": {}, "nan": {}, "null": {},
}

// Cell is one table value. Raw keeps the text as read; Num is set when the
// text parses as a finite number.
type Cell struct {
	Raw   string
	Num   float64
	IsNum bool
}

// Missing reports whether the cell holds a missing-value marker.
func (c Cell) Missing() bool {
	_, ok := naTokens[strings.TrimSpace(c.Raw)]
	return ok
}

func newCell(raw string) Cell {
	c := Cell{Raw: raw}
	if c.Missing() {
		return c
	}
	// Infinite values stay text.
	if f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64); err == nil && !math.IsInf(f, 0) {
		c.Num = f
		c.IsNum = true
	}
	return c
}

// Table is a validated dataset: trimmed, unique column names and rows of
// cells. Tables are only produced by Locator.Locate after validation passed,
// so every Table carries the locator's required columns.
type Table struct {
	columns []string
	index   map[string]int
	rows    [][]Cell
}

// Columns returns the column names in file order.
func (t *Table) Columns() []string {
	out := make([]string, len(t.columns))
	copy(out, t.columns)
	return out
}

// Len returns the number of data rows.
func (t *Table) Len() int { return len(t.rows) }

// Has reports whether the table has the named column.
func (t *Table) Has(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Row returns a copy of row i.
func (t *Table) Row(i int) []Cell {
	out := make([]Cell, len(t.rows[i]))
	copy(out, t.rows[i])
	return out
}

// Head returns copies of up to n leading rows.
func (t *Table) Head(n int) [][]Cell {
	if n > len(t.rows) {
		n = len(t.rows)
	}
	if n < 0 {
		n = 0
	}
	out := make([][]Cell, n)
	for i := 0; i < n; i++ {
		out[i] = t.Row(i)
	}
	return out
}

// Column returns every cell of the named column.
func (t *Table) Column(name string) ([]Cell, bool) {
	j, ok := t.index[name]
	if !ok {
		return nil, false
	}
	out := make([]Cell, len(t.rows))
	for i, row := range t.rows {
		out[i] = row[j]
	}
	return out, true
}

// IsNumeric reports whether every non-missing cell of the column is a number
// and at least one such cell exists.
func (t *Table) IsNumeric(name string) bool {
	cells, ok := t.Column(name)
	if !ok {
		return false
	}
	seen := false
	for _, c := range cells {
		if c.Missing() {
			continue
		}
		if !c.IsNum {
			return false
		}
		seen = true
	}
	return seen
}

// Floats returns the non-missing numeric values of a column, in row order.
func (t *Table) Floats(name string) []float64 {
	cells, ok := t.Column(name)
	if !ok {
		return nil
	}
	out := make([]float64, 0, len(cells))
	for _, c := range cells {
		if c.IsNum {
			out = append(out, c.Num)
		}
	}
	return out
}

// Strings returns the raw values of a column with surrounding space removed;
// missing cells come back as "".
func (t *Table) Strings(name string) []string {
	cells, ok := t.Column(name)
	if !ok {
		return nil
	}
	out := make([]string, len(cells))
	for i, c := range cells {
		if c.Missing() {
			continue
		}
		out[i] = strings.TrimSpace(c.Raw)
	}
	return out
}

// rawTable is the unvalidated result of parsing delimited text.
type rawTable struct {
	header  []string
	records [][]string
}

var (
	errEmptySource = errors.New("no columns to parse from file")
	errNoRows      = errors.New("no data rows after header")
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// parseCSV reads comma-separated text. Zero-byte, blank and header-only
// input report errEmptySource or errNoRows; any other failure is a syntax
// problem with the text itself.
func parseCSV(r io.Reader) (*rawTable, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read source: %w", err)
	}
	data = bytes.TrimPrefix(data, utf8BOM)
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errEmptySource
	}
	cr := csv.NewReader(bytes.NewReader(data))
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	ncol := len(header)
	rt := &rawTable{header: header}
	for {
		rec, err := cr.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("read row %d: %w", len(rt.records)+1, err)
		}
		if len(rec) > ncol {
			line, _ := cr.FieldPos(0)
			return nil, fmt.Errorf("expected %d fields in line %d, saw %d", ncol, line, len(rec))
		}
		if len(rec) < ncol {
			tmp := make([]string, ncol)
			copy(tmp, rec)
			rec = tmp
		}
		rt.records = append(rt.records, rec)
	}
	if len(rt.records) == 0 {
		return nil, errNoRows
	}
	return rt, nil
}

// TrimColumnNames strips surrounding whitespace from every name. Applying it
// twice gives the same result as applying it once.
func TrimColumnNames(names []string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = strings.TrimSpace(n)
	}
	return out
}

// dedupeColumnNames suffixes repeated names with ".1", ".2", ... so columns
// stay addressable by name.
func dedupeColumnNames(names []string) []string {
	seen := make(map[string]int, len(names))
	taken := make(map[string]struct{}, len(names))
	for _, n := range names {
		taken[n] = struct{}{}
	}
	out := make([]string, len(names))
	for i, n := range names {
		cnt := seen[n]
		seen[n] = cnt + 1
		if cnt == 0 {
			out[i] = n
			continue
		}
		cand := fmt.Sprintf("%s.%d", n, cnt)
		for {
			if _, dup := taken[cand]; !dup {
				break
			}
			cnt++
			cand = fmt.Sprintf("%s.%d", n, cnt)
		}
		seen[n] = cnt + 1
		taken[cand] = struct{}{}
		out[i] = cand
	}
	return out
}

func newTable(columns []string, records [][]string) *Table {
	t := &Table{
		columns: columns,
		index:   make(map[string]int, len(columns)),
		rows:    make([][]Cell, len(records)),
	}
	for j, c := range columns {
		t.index[c] = j
	}
	for i, rec := range records {
		row := make([]Cell, len(columns))
		for j := range columns {
			row[j] = newCell(rec[j])
		}
		t.rows[i] = row
	}
	return t
}
