// Package analysis computes the dashboard sections for a validated dataset:
// preview rows, descriptive statistics, missing values, and the numbers
// behind the age histogram, grouped bar charts, cholesterol boxplot and
// correlation heatmap.
package analysis

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/KaramelBytes/heartstat-cli/internal/dataset"
)

// Options controls which columns feed each section and how much is shown.
type Options struct {
	// SampleRows determines how many leading rows to include in the report.
	SampleRows int
	// AgeBins is the number of equal-width bins for the age histogram.
	AgeBins int

	AgeColumn         string
	GenderColumn      string
	CholesterolColumn string
	StatusColumn      string
	SmokingColumn     string
}

// DefaultOptions returns the column names of the heart-disease dataset.
func DefaultOptions() Options {
	return Options{
		SampleRows:        5,
		AgeBins:           30,
		AgeColumn:         "Age",
		GenderColumn:      "Gender",
		CholesterolColumn: "Cholesterol",
		StatusColumn:      "Heart Disease Status",
		SmokingColumn:     "Smoking",
	}
}

// Report is a markdown-friendly analysis of a validated dataset.
type Report struct {
	Name     string
	Source   string
	Rows     int
	Columns  []string
	Samples  [][]string
	Describe []NumericSummary
	Missing  []MissingCount
	Age      *Histogram
	Gender   *GroupedCounts
	Chol     *BoxPlot
	Smoking  *GroupedCounts
	Corr     *CorrMatrix
	Warnings []string
}

// BuildReport runs every section over t. Sections whose columns are absent
// or unusable are skipped and noted in Warnings.
func BuildReport(t *dataset.Table, name, source string, opt Options) *Report {
	def := DefaultOptions()
	if opt.SampleRows < 0 {
		opt.SampleRows = 0
	}
	if opt.AgeBins <= 0 {
		opt.AgeBins = def.AgeBins
	}
	rep := &Report{
		Name:    name,
		Source:  source,
		Rows:    t.Len(),
		Columns: t.Columns(),
	}
	for _, row := range t.Head(opt.SampleRows) {
		vals := make([]string, len(row))
		for i, c := range row {
			vals[i] = c.Raw
		}
		rep.Samples = append(rep.Samples, vals)
	}
	rep.Describe = Describe(t)
	rep.Missing = MissingValues(t)

	var err error
	if rep.Age, err = NewHistogram(t, opt.AgeColumn, opt.AgeBins); err != nil {
		rep.Warnings = append(rep.Warnings, "age distribution skipped: "+err.Error())
	}
	if rep.Gender, err = CountBy(t, opt.GenderColumn, opt.StatusColumn); err != nil {
		rep.Warnings = append(rep.Warnings, "gender breakdown skipped: "+err.Error())
	}
	if rep.Chol, err = BoxStats(t, opt.CholesterolColumn, opt.StatusColumn); err != nil {
		rep.Warnings = append(rep.Warnings, "cholesterol boxplot skipped: "+err.Error())
	}
	if rep.Smoking, err = CountBy(t, opt.SmokingColumn, opt.StatusColumn); err != nil {
		rep.Warnings = append(rep.Warnings, "lifestyle factors skipped: "+err.Error())
	}
	if corr := Correlations(t); len(corr.Columns) >= 2 {
		rep.Corr = corr
	} else {
		rep.Warnings = append(rep.Warnings, "correlation heatmap skipped: fewer than two numeric columns")
	}
	return rep
}

// Markdown renders the report as plain-text sections.
func (r *Report) Markdown() string {
	var b strings.Builder
	b.WriteString("[DATASET SUMMARY]\n")
	if r.Name != "" {
		b.WriteString(fmt.Sprintf("File: %s\n", r.Name))
	}
	if r.Source != "" {
		b.WriteString(fmt.Sprintf("Source: %s\n", r.Source))
	}
	b.WriteString(fmt.Sprintf("Rows: %d\n", r.Rows))
	b.WriteString(fmt.Sprintf("Columns: %d\n", len(r.Columns)))

	if len(r.Samples) > 0 {
		b.WriteString("\n[HEAD AND SAMPLE ROWS]\n")
		header := make([]string, len(r.Columns))
		for i, c := range r.Columns {
			header[i] = safeName(c)
		}
		writeTable(&b, header, r.Samples)
	}

	if len(r.Describe) > 0 {
		b.WriteString("\n[DESCRIBE]\n")
		header := []string{"stat"}
		for _, d := range r.Describe {
			header = append(header, safeName(d.Name))
		}
		stats := []struct {
			label string
			get   func(NumericSummary) string
		}{
			{"count", func(d NumericSummary) string { return fmt.Sprintf("%d", d.Count) }},
			{"mean", func(d NumericSummary) string { return num(d.Mean) }},
			{"std", func(d NumericSummary) string { return num(d.Std) }},
			{"min", func(d NumericSummary) string { return num(d.Min) }},
			{"25%", func(d NumericSummary) string { return num(d.Q1) }},
			{"50%", func(d NumericSummary) string { return num(d.Q2) }},
			{"75%", func(d NumericSummary) string { return num(d.Q3) }},
			{"max", func(d NumericSummary) string { return num(d.Max) }},
		}
		rows := make([][]string, 0, len(stats))
		for _, s := range stats {
			row := []string{s.label}
			for _, d := range r.Describe {
				row = append(row, s.get(d))
			}
			rows = append(rows, row)
		}
		writeTable(&b, header, rows)
	}

	b.WriteString("\n[MISSING VALUES]\n")
	if len(r.Missing) == 0 {
		b.WriteString("(none)\n")
	}
	for _, m := range r.Missing {
		b.WriteString(fmt.Sprintf("- %s: %d\n", safeName(m.Name), m.Count))
	}

	if r.Age != nil {
		b.WriteString("\n[AGE DISTRIBUTION]\n")
		rows := make([][]string, len(r.Age.Counts))
		for i, c := range r.Age.Counts {
			closing := ")"
			if i == len(r.Age.Counts)-1 {
				closing = "]"
			}
			rows[i] = []string{fmt.Sprintf("[%s, %s%s", num(r.Age.Edges[i]), num(r.Age.Edges[i+1]), closing), fmt.Sprintf("%d", c)}
		}
		writeTable(&b, []string{safeName(r.Age.Column), "count"}, rows)
	}

	if r.Gender != nil {
		b.WriteString("\n[HEART DISEASE BY GENDER]\n")
		writeGrouped(&b, r.Gender)
	}

	if r.Chol != nil && len(r.Chol.Groups) > 0 {
		b.WriteString(fmt.Sprintf("\n[%s BY %s]\n", strings.ToUpper(r.Chol.Value), strings.ToUpper(r.Chol.By)))
		rows := make([][]string, len(r.Chol.Groups))
		for i, g := range r.Chol.Groups {
			rows[i] = []string{
				safeVal(g.Key), fmt.Sprintf("%d", g.N), num(g.LowerWhisker), num(g.Q1),
				num(g.Median), num(g.Q3), num(g.UpperWhisker), num(g.Mean), fmt.Sprintf("%d", g.Outliers),
			}
		}
		writeTable(&b, []string{safeName(r.Chol.By), "n", "lower", "q1", "median", "q3", "upper", "mean", "outliers"}, rows)
	}

	if r.Smoking != nil {
		b.WriteString("\n[LIFESTYLE FACTORS]\n")
		writeGrouped(&b, r.Smoking)
	}

	if r.Corr != nil {
		b.WriteString("\n[CORRELATIONS]\n")
		header := []string{""}
		for _, c := range r.Corr.Columns {
			header = append(header, safeName(c))
		}
		rows := make([][]string, len(r.Corr.Columns))
		for i, c := range r.Corr.Columns {
			row := []string{safeName(c)}
			for _, v := range r.Corr.Values[i] {
				if math.IsNaN(v) {
					row = append(row, "n/a")
				} else {
					row = append(row, fmt.Sprintf("%.2f", v))
				}
			}
			rows[i] = row
		}
		writeTable(&b, header, rows)
	}

	if len(r.Warnings) > 0 {
		b.WriteString("\n[NOTES]\n")
		for _, w := range r.Warnings {
			b.WriteString("- ")
			b.WriteString(w)
			b.WriteString("\n")
		}
	}
	return b.String()
}

func writeGrouped(b *strings.Builder, g *GroupedCounts) {
	header := []string{safeName(g.X)}
	for _, h := range g.HueValues {
		header = append(header, fmt.Sprintf("%s=%s", g.Hue, safeVal(h)))
	}
	rows := make([][]string, len(g.XValues))
	for i, x := range g.XValues {
		row := []string{safeVal(x)}
		for _, c := range g.Counts[i] {
			row = append(row, fmt.Sprintf("%d", c))
		}
		rows[i] = row
	}
	writeTable(b, header, rows)
}

func writeTable(b *strings.Builder, header []string, rows [][]string) {
	b.WriteString("| ")
	b.WriteString(strings.Join(header, " | "))
	b.WriteString(" |\n|")
	for range header {
		b.WriteString(" --- |")
	}
	b.WriteString("\n")
	for _, row := range rows {
		b.WriteString("| ")
		for i := range header {
			if i > 0 {
				b.WriteString(" | ")
			}
			val := ""
			if i < len(row) {
				val = row[i]
			}
			if utf8.RuneCountInString(val) > 80 {
				val = string([]rune(val)[:77]) + "..."
			}
			b.WriteString(safeVal(val))
		}
		b.WriteString(" |\n")
	}
}

func num(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "n/a"
	}
	return fmt.Sprintf("%.4g", v)
}

func safeName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "(unnamed)"
	}
	return s
}

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }
