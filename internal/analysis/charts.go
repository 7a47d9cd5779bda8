package analysis

import (
	"fmt"
	"math"

	"github.com/KaramelBytes/heartstat-cli/internal/dataset"
	"github.com/montanaflynn/stats"
)

// Histogram holds equal-width bin counts for a numeric column. Bin i covers
// [Edges[i], Edges[i+1]); the last bin also includes its upper edge.
type Histogram struct {
	Column string
	Edges  []float64
	Counts []int
}

// NewHistogram bins the numeric values of column into bins equal-width bins.
func NewHistogram(t *dataset.Table, column string, bins int) (*Histogram, error) {
	if !t.Has(column) {
		return nil, fmt.Errorf("column %q not in dataset", column)
	}
	if !t.IsNumeric(column) {
		return nil, fmt.Errorf("column %q is not numeric", column)
	}
	if bins <= 0 {
		return nil, fmt.Errorf("bins must be positive, got %d", bins)
	}
	vals := t.Floats(column)
	lo, _ := stats.Min(vals)
	hi, _ := stats.Max(vals)
	if lo == hi {
		lo -= 0.5
		hi += 0.5
	}
	width := (hi - lo) / float64(bins)
	h := &Histogram{Column: column, Edges: make([]float64, bins+1), Counts: make([]int, bins)}
	for i := range h.Edges {
		h.Edges[i] = lo + float64(i)*width
	}
	h.Edges[bins] = hi
	for _, v := range vals {
		idx := int((v - lo) / width)
		if idx >= bins {
			idx = bins - 1
		}
		if idx < 0 {
			idx = 0
		}
		h.Counts[idx]++
	}
	return h, nil
}

// GroupedCounts counts rows by an x category split by a hue category.
// Categories keep their order of first appearance; rows missing either value
// are skipped.
type GroupedCounts struct {
	X, Hue    string
	XValues   []string
	HueValues []string
	Counts    [][]int // Counts[x][hue]
	Total     int
}

// CountBy builds GroupedCounts for columns x and hue.
func CountBy(t *dataset.Table, x, hue string) (*GroupedCounts, error) {
	for _, c := range []string{x, hue} {
		if !t.Has(c) {
			return nil, fmt.Errorf("column %q not in dataset", c)
		}
	}
	xs := t.Strings(x)
	hs := t.Strings(hue)
	g := &GroupedCounts{X: x, Hue: hue}
	xIdx := map[string]int{}
	hIdx := map[string]int{}
	for i := range xs {
		if xs[i] == "" || hs[i] == "" {
			continue
		}
		xi, ok := xIdx[xs[i]]
		if !ok {
			xi = len(g.XValues)
			xIdx[xs[i]] = xi
			g.XValues = append(g.XValues, xs[i])
			g.Counts = append(g.Counts, make([]int, len(g.HueValues)))
		}
		hi, ok := hIdx[hs[i]]
		if !ok {
			hi = len(g.HueValues)
			hIdx[hs[i]] = hi
			g.HueValues = append(g.HueValues, hs[i])
			for k := range g.Counts {
				g.Counts[k] = append(g.Counts[k], 0)
			}
		}
		g.Counts[xi][hi]++
		g.Total++
	}
	return g, nil
}

// BoxGroup is the five-number summary drawn by one box.
type BoxGroup struct {
	Key          string
	N            int
	Mean         float64
	Q1           float64
	Median       float64
	Q3           float64
	LowerWhisker float64
	UpperWhisker float64
	Outliers     int
}

// BoxPlot holds one box per group value.
type BoxPlot struct {
	Value  string
	By     string
	Groups []BoxGroup
}

// BoxStats computes box statistics of the numeric column value grouped by
// column by. Whiskers reach the furthest data point within 1.5 IQR of the box.
func BoxStats(t *dataset.Table, value, by string) (*BoxPlot, error) {
	for _, c := range []string{value, by} {
		if !t.Has(c) {
			return nil, fmt.Errorf("column %q not in dataset", c)
		}
	}
	if !t.IsNumeric(value) {
		return nil, fmt.Errorf("column %q is not numeric", value)
	}
	cells, _ := t.Column(value)
	keys := t.Strings(by)
	var order []string
	groups := map[string][]float64{}
	for i, c := range cells {
		if !c.IsNum || keys[i] == "" {
			continue
		}
		if _, ok := groups[keys[i]]; !ok {
			order = append(order, keys[i])
		}
		groups[keys[i]] = append(groups[keys[i]], c.Num)
	}
	bp := &BoxPlot{Value: value, By: by}
	for _, k := range order {
		bp.Groups = append(bp.Groups, boxGroup(k, groups[k]))
	}
	return bp, nil
}

func boxGroup(key string, vals []float64) BoxGroup {
	sorted := sortedCopy(vals)
	g := BoxGroup{Key: key, N: len(sorted)}
	g.Mean, _ = stats.Mean(sorted)
	g.Q1 = quantile(sorted, 0.25)
	g.Median = quantile(sorted, 0.5)
	g.Q3 = quantile(sorted, 0.75)
	iqr := g.Q3 - g.Q1
	lo, hi := g.Q1-1.5*iqr, g.Q3+1.5*iqr
	g.LowerWhisker, g.UpperWhisker = math.Inf(1), math.Inf(-1)
	for _, v := range sorted {
		if v < lo || v > hi {
			g.Outliers++
			continue
		}
		g.LowerWhisker = math.Min(g.LowerWhisker, v)
		g.UpperWhisker = math.Max(g.UpperWhisker, v)
	}
	return g
}
