package analysis

import (
	"math"
	"sort"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/KaramelBytes/heartstat-cli/internal/dataset"
	"github.com/KaramelBytes/heartstat-cli/internal/logging"
)

var heartRows = []string{
	"Age,Gender,Cholesterol,Heart Disease Status,Smoking,BloodPressure",
	"63,Male,233,No,Never,145",
	"37,Male,250,Yes,Current,130",
	"41,Female,204,No,Never,130",
	"56,Male,236,Yes,Former,120",
	"57,Female,354,Yes,Current,120",
	"57,Male,192,No,Never,140",
	"56,Female,,No,Never,140",
	"44,Male,263,No,Current,120",
}

var (
	ages        = []float64{63, 37, 41, 56, 57, 57, 56, 44}
	cholesterol = []float64{233, 250, 204, 236, 354, 192, 263}
	pressure    = []float64{145, 130, 130, 120, 120, 140, 140, 120}
)

func loadTable(t *testing.T, rows []string) *dataset.Table {
	t.Helper()
	loc := dataset.NewLocator(dataset.WithLogger(logging.Discard()))
	res := loc.Locate(dataset.Request{Upload: []byte(strings.Join(rows, "\n") + "\n")})
	if !res.OK() {
		t.Fatalf("locate: %s (%s)", res.Outcome, res.Message)
	}
	return res.Table
}

func TestDescribe(t *testing.T) {
	tbl := loadTable(t, heartRows)
	got := Describe(tbl)
	if len(got) != 3 {
		t.Fatalf("numeric columns = %d, want 3: %#v", len(got), got)
	}
	names := []string{got[0].Name, got[1].Name, got[2].Name}
	if !equalStrings(names, []string{"Age", "Cholesterol", "BloodPressure"}) {
		t.Fatalf("names = %#v", names)
	}
	checkSummary(t, got[0], ages)
	checkSummary(t, got[1], cholesterol)
	checkSummary(t, got[2], pressure)
}

func TestDescribeSingleValueHasUndefinedStd(t *testing.T) {
	tbl := loadTable(t, []string{"Cholesterol,Heart Disease Status", "200,No"})
	got := Describe(tbl)
	if len(got) != 1 {
		t.Fatalf("got %#v", got)
	}
	if !math.IsNaN(got[0].Std) {
		t.Fatalf("std = %f, want NaN", got[0].Std)
	}
	if got[0].Q1 != 200 || got[0].Q3 != 200 {
		t.Fatalf("quartiles = %f/%f", got[0].Q1, got[0].Q3)
	}
}

func TestMissingValues(t *testing.T) {
	got := MissingValues(loadTable(t, heartRows))
	if len(got) != 1 || got[0].Name != "Cholesterol" || got[0].Count != 1 {
		t.Fatalf("missing = %#v", got)
	}
}

func TestHistogram(t *testing.T) {
	tbl := loadTable(t, heartRows)
	h, err := NewHistogram(tbl, "Age", 3)
	if err != nil {
		t.Fatalf("histogram: %v", err)
	}
	want := []int{3, 0, 5}
	for i := range want {
		if h.Counts[i] != want[i] {
			t.Fatalf("counts = %v, want %v", h.Counts, want)
		}
	}
	if len(h.Edges) != 4 || h.Edges[0] != 37 || h.Edges[3] != 63 {
		t.Fatalf("edges = %v", h.Edges)
	}

	if _, err := NewHistogram(tbl, "Gender", 3); err == nil {
		t.Fatalf("expected error for non-numeric column")
	}
	if _, err := NewHistogram(tbl, "Weight", 3); err == nil {
		t.Fatalf("expected error for absent column")
	}
}

func TestHistogramConstantColumn(t *testing.T) {
	tbl := loadTable(t, []string{"Age,Cholesterol,Heart Disease Status", "50,200,No", "50,210,Yes"})
	h, err := NewHistogram(tbl, "Age", 2)
	if err != nil {
		t.Fatalf("histogram: %v", err)
	}
	if h.Counts[0]+h.Counts[1] != 2 || h.Edges[0] != 49.5 || h.Edges[2] != 50.5 {
		t.Fatalf("histogram = %#v", h)
	}
}

func TestCountBy(t *testing.T) {
	g, err := CountBy(loadTable(t, heartRows), "Gender", "Heart Disease Status")
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if !equalStrings(g.XValues, []string{"Male", "Female"}) || !equalStrings(g.HueValues, []string{"No", "Yes"}) {
		t.Fatalf("categories = %v / %v", g.XValues, g.HueValues)
	}
	want := [][]int{{3, 2}, {2, 1}}
	for i := range want {
		for j := range want[i] {
			if g.Counts[i][j] != want[i][j] {
				t.Fatalf("counts = %v, want %v", g.Counts, want)
			}
		}
	}
	if g.Total != 8 {
		t.Fatalf("total = %d", g.Total)
	}
}

func TestBoxStats(t *testing.T) {
	bp, err := BoxStats(loadTable(t, heartRows), "Cholesterol", "Heart Disease Status")
	if err != nil {
		t.Fatalf("box: %v", err)
	}
	if len(bp.Groups) != 2 || bp.Groups[0].Key != "No" || bp.Groups[1].Key != "Yes" {
		t.Fatalf("groups = %#v", bp.Groups)
	}
	no := bp.Groups[0]
	if no.N != 4 || !almostEqual(no.Q1, 201, 1e-9) || !almostEqual(no.Median, 218.5, 1e-9) || !almostEqual(no.Q3, 240.5, 1e-9) {
		t.Fatalf("no group = %#v", no)
	}
	if no.LowerWhisker != 192 || no.UpperWhisker != 263 || no.Outliers != 0 {
		t.Fatalf("no whiskers = %#v", no)
	}
	yes := bp.Groups[1]
	if yes.N != 3 || yes.Median != 250 || !almostEqual(yes.Mean, mean([]float64{250, 236, 354}), 1e-9) {
		t.Fatalf("yes group = %#v", yes)
	}
}

func TestBoxGroupOutliers(t *testing.T) {
	g := boxGroup("k", []float64{100, 1, 2, 3, 4})
	if g.Outliers != 1 || g.LowerWhisker != 1 || g.UpperWhisker != 4 {
		t.Fatalf("box = %#v", g)
	}
}

func TestCorrelations(t *testing.T) {
	m := Correlations(loadTable(t, heartRows))
	if !equalStrings(m.Columns, []string{"Age", "Cholesterol", "BloodPressure"}) {
		t.Fatalf("columns = %v", m.Columns)
	}
	for i := range m.Columns {
		if m.Values[i][i] != 1 {
			t.Fatalf("diagonal[%d] = %f", i, m.Values[i][i])
		}
		for j := range m.Columns {
			if m.Values[i][j] != m.Values[j][i] {
				t.Fatalf("matrix not symmetric at %d,%d", i, j)
			}
		}
	}
	if want := correlation(ages, pressure); !almostEqual(m.Values[0][2], want, 1e-9) {
		t.Fatalf("age~pressure = %f, want %f", m.Values[0][2], want)
	}
	// Row 7 has no cholesterol, so the pair drops it.
	agesWithChol := []float64{63, 37, 41, 56, 57, 57, 44}
	if want := correlation(agesWithChol, cholesterol); !almostEqual(m.Values[0][1], want, 1e-9) {
		t.Fatalf("age~cholesterol = %f, want %f", m.Values[0][1], want)
	}
}

func TestCorrelationsConstantColumnIsUndefined(t *testing.T) {
	m := Correlations(loadTable(t, []string{"Age,Cholesterol,Heart Disease Status", "50,200,No", "50,210,Yes", "50,220,No"}))
	if !math.IsNaN(m.Values[0][1]) || !math.IsNaN(m.Values[0][0]) {
		t.Fatalf("values = %v", m.Values)
	}
	if !strings.Contains(reportFor(t, m), "n/a") {
		t.Fatalf("expected n/a in rendered matrix")
	}
}

func reportFor(t *testing.T, m *CorrMatrix) string {
	t.Helper()
	return (&Report{Corr: m}).Markdown()
}

func TestBuildReportAndMarkdown(t *testing.T) {
	opt := DefaultOptions()
	opt.SampleRows = 2
	opt.AgeBins = 3
	rep := BuildReport(loadTable(t, heartRows), "heart_disease.csv", "discovered: data/heart_disease.csv", opt)

	if rep.Rows != 8 || len(rep.Samples) != 2 || len(rep.Warnings) != 0 {
		t.Fatalf("report = rows %d samples %d warnings %v", rep.Rows, len(rep.Samples), rep.Warnings)
	}
	md := rep.Markdown()
	for _, want := range []string{
		"[DATASET SUMMARY]",
		"File: heart_disease.csv",
		"Source: discovered: data/heart_disease.csv",
		"Rows: 8",
		"[HEAD AND SAMPLE ROWS]",
		"| 63 | Male | 233 | No | Never | 145 |",
		"[DESCRIBE]",
		"| count | 8 | 7 | 8 |",
		"[MISSING VALUES]",
		"- Cholesterol: 1",
		"[AGE DISTRIBUTION]",
		"[HEART DISEASE BY GENDER]",
		"| Male | 3 | 2 |",
		"[CHOLESTEROL BY HEART DISEASE STATUS]",
		"[LIFESTYLE FACTORS]",
		"[CORRELATIONS]",
	} {
		if !strings.Contains(md, want) {
			t.Fatalf("markdown missing %q:\n%s", want, md)
		}
	}
	if strings.Contains(md, "[NOTES]") {
		t.Fatalf("unexpected notes:\n%s", md)
	}
}

func TestBuildReportSkipsAbsentColumns(t *testing.T) {
	rep := BuildReport(loadTable(t, []string{"Cholesterol,Heart Disease Status", "200,No", "250,Yes"}), "", "uploaded", DefaultOptions())

	if rep.Age != nil || rep.Gender != nil || rep.Smoking != nil || rep.Corr != nil {
		t.Fatalf("expected skipped sections: %#v", rep)
	}
	if rep.Chol == nil || len(rep.Chol.Groups) != 2 {
		t.Fatalf("cholesterol boxplot = %#v", rep.Chol)
	}
	if len(rep.Warnings) != 4 {
		t.Fatalf("warnings = %v", rep.Warnings)
	}
	md := rep.Markdown()
	if !strings.Contains(md, "[NOTES]") || !strings.Contains(md, "lifestyle factors skipped") {
		t.Fatalf("markdown missing notes:\n%s", md)
	}
	if !strings.Contains(md, "[MISSING VALUES]\n(none)") {
		t.Fatalf("markdown missing empty missing-values section:\n%s", md)
	}
}

func TestHistogramRejectsInfiniteValues(t *testing.T) {
	tbl := loadTable(t, []string{"Age,Cholesterol,Heart Disease Status", "50,200,No", "inf,210,Yes", "60,220,No"})
	if _, err := NewHistogram(tbl, "Age", 3); err == nil {
		t.Fatalf("expected error for a column holding inf")
	}
	h, err := NewHistogram(tbl, "Cholesterol", 2)
	if err != nil {
		t.Fatalf("histogram: %v", err)
	}
	if h.Counts[0] != 1 || h.Counts[1] != 2 {
		t.Fatalf("counts = %v", h.Counts)
	}
}

func TestMarkdownTruncatesOnRuneBoundary(t *testing.T) {
	long := strings.Repeat("é", 100)
	var b strings.Builder
	writeTable(&b, []string{"note"}, [][]string{{long}})

	out := b.String()
	if !utf8.ValidString(out) {
		t.Fatalf("invalid UTF-8 in %q", out)
	}
	if !strings.Contains(out, "| "+strings.Repeat("é", 77)+"... |") {
		t.Fatalf("cell not truncated to 77 runes:\n%s", out)
	}
}

func checkSummary(t *testing.T, s NumericSummary, vals []float64) {
	t.Helper()
	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)
	if s.Count != len(vals) {
		t.Fatalf("%s count = %d, want %d", s.Name, s.Count, len(vals))
	}
	if !almostEqual(s.Mean, mean(vals), 1e-9) {
		t.Fatalf("%s mean = %f, want %f", s.Name, s.Mean, mean(vals))
	}
	if !almostEqual(s.Std, sampleStd(vals), 1e-9) {
		t.Fatalf("%s std = %f, want %f", s.Name, s.Std, sampleStd(vals))
	}
	if s.Min != sorted[0] || s.Max != sorted[len(sorted)-1] {
		t.Fatalf("%s min/max = %f/%f", s.Name, s.Min, s.Max)
	}
	if !almostEqual(s.Q2, quantileValue(sorted, 0.5), 1e-9) {
		t.Fatalf("%s median = %f", s.Name, s.Q2)
	}
	if !almostEqual(s.Q1, quantileValue(sorted, 0.25), 1e-9) || !almostEqual(s.Q3, quantileValue(sorted, 0.75), 1e-9) {
		t.Fatalf("%s quartiles = %f/%f", s.Name, s.Q1, s.Q3)
	}
}

func quantileValue(sortedVals []float64, q float64) float64 {
	pos := q * float64(len(sortedVals)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	w := pos - float64(lo)
	return sortedVals[lo]*(1-w) + sortedVals[hi]*w
}

func mean(vals []float64) float64 {
	var sum float64
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

func sampleStd(vals []float64) float64 {
	if len(vals) < 2 {
		return 0
	}
	m := mean(vals)
	var sum float64
	for _, v := range vals {
		diff := v - m
		sum += diff * diff
	}
	return math.Sqrt(sum / float64(len(vals)-1))
}

func correlation(a, b []float64) float64 {
	if len(a) != len(b) {
		panic("length mismatch")
	}
	ma := mean(a)
	mb := mean(b)
	var num, da2, db2 float64
	for i := range a {
		da := a[i] - ma
		db := b[i] - mb
		num += da * db
		da2 += da * da
		db2 += db * db
	}
	if da2 == 0 || db2 == 0 {
		return 0
	}
	return num / math.Sqrt(da2*db2)
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func almostEqual(a, b, eps float64) bool {
	return math.Abs(a-b) <= eps
}
