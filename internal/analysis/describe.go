package analysis

import (
	"math"
	"sort"

	"github.com/KaramelBytes/heartstat-cli/internal/dataset"
	"github.com/montanaflynn/stats"
)

// NumericSummary is one column of the describe table.
type NumericSummary struct {
	Name  string
	Count int
	Mean  float64
	Std   float64 // sample standard deviation; NaN when Count < 2
	Min   float64
	Q1    float64
	Q2    float64
	Q3    float64
	Max   float64
}

// MissingCount is the number of missing cells in one column.
type MissingCount struct {
	Name  string
	Count int
}

// Describe summarizes every numeric column in table order.
func Describe(t *dataset.Table) []NumericSummary {
	var out []NumericSummary
	for _, name := range t.Columns() {
		if !t.IsNumeric(name) {
			continue
		}
		s, ok := summarize(name, t.Floats(name))
		if ok {
			out = append(out, s)
		}
	}
	return out
}

func summarize(name string, vals []float64) (NumericSummary, bool) {
	s := NumericSummary{Name: name, Count: len(vals)}
	var err error
	if s.Mean, err = stats.Mean(vals); err != nil {
		return s, false
	}
	if s.Min, err = stats.Min(vals); err != nil {
		return s, false
	}
	if s.Max, err = stats.Max(vals); err != nil {
		return s, false
	}
	s.Std = math.NaN()
	if len(vals) > 1 {
		if sd, err := stats.StandardDeviationSample(vals); err == nil {
			s.Std = sd
		}
	}
	sorted := sortedCopy(vals)
	s.Q1 = quantile(sorted, 0.25)
	s.Q2 = quantile(sorted, 0.5)
	s.Q3 = quantile(sorted, 0.75)
	return s, true
}

// MissingValues lists columns that have at least one missing cell.
func MissingValues(t *dataset.Table) []MissingCount {
	var out []MissingCount
	for _, name := range t.Columns() {
		cells, _ := t.Column(name)
		n := 0
		for _, c := range cells {
			if c.Missing() {
				n++
			}
		}
		if n > 0 {
			out = append(out, MissingCount{Name: name, Count: n})
		}
	}
	return out
}

func sortedCopy(vals []float64) []float64 {
	cp := make([]float64, len(vals))
	copy(cp, vals)
	sort.Float64s(cp)
	return cp
}

// quantile interpolates linearly between closest ranks of a sorted slice.
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return math.NaN()
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	w := pos - float64(lo)
	return sorted[lo]*(1-w) + sorted[hi]*w
}
