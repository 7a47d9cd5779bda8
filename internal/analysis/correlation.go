package analysis

import (
	"math"

	"github.com/KaramelBytes/heartstat-cli/internal/dataset"
	"gonum.org/v1/gonum/stat"
)

// CorrMatrix holds a symmetric Pearson correlation matrix across numeric columns.
type CorrMatrix struct {
	Columns []string
	Values  [][]float64 // row-major, Values[i][j]; NaN when undefined
}

// Correlations computes Pearson r for every pair of numeric columns using
// only the rows where both values are present. Pairs with fewer than two
// such rows or zero variance get NaN.
func Correlations(t *dataset.Table) *CorrMatrix {
	var names []string
	var cols [][]dataset.Cell
	for _, name := range t.Columns() {
		if !t.IsNumeric(name) {
			continue
		}
		cells, _ := t.Column(name)
		names = append(names, name)
		cols = append(cols, cells)
	}
	n := len(names)
	m := &CorrMatrix{Columns: names, Values: make([][]float64, n)}
	for i := range m.Values {
		m.Values[i] = make([]float64, n)
	}
	for a := 0; a < n; a++ {
		for b := a; b < n; b++ {
			r := pairwise(cols[a], cols[b])
			if a == b && !math.IsNaN(r) {
				r = 1
			}
			m.Values[a][b] = r
			m.Values[b][a] = r
		}
	}
	return m
}

func pairwise(xc, yc []dataset.Cell) float64 {
	x := make([]float64, 0, len(xc))
	y := make([]float64, 0, len(yc))
	for i := range xc {
		if xc[i].IsNum && yc[i].IsNum {
			x = append(x, xc[i].Num)
			y = append(y, yc[i].Num)
		}
	}
	if len(x) < 2 {
		return math.NaN()
	}
	r := stat.Correlation(x, y, nil)
	if math.IsInf(r, 0) {
		return math.NaN()
	}
	return math.Max(-1, math.Min(1, r))
}
