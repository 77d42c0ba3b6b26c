package wikidump

import (
	"fmt"
	"io"
	"math"
	"sort"

	"github.com/jedib0t/go-pretty/table"
	"github.com/jedib0t/go-pretty/text"
	"github.com/nao1215/markdown"
	"github.com/pkg/errors"
)

// A Summary describes the distribution of a set of values.
type Summary struct {
	Count int
	Mean  float64
	Std   float64
	Min   float64
	P25   float64
	P50   float64
	P75   float64
	Max   float64
}

// Describe summarizes values.  Std is the sample standard deviation
// and percentiles are linearly interpolated; both are NaN when there
// are too few values.
func Describe(values []float64) Summary {
	s := Summary{Count: len(values)}
	if len(values) == 0 {
		nan := math.NaN()
		s.Mean, s.Std, s.Min, s.P25, s.P50, s.P75, s.Max = nan, nan, nan, nan, nan, nan, nan
		return s
	}

	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	sum := 0.0
	for _, v := range sorted {
		sum += v
	}
	s.Mean = sum / float64(len(sorted))

	if len(sorted) > 1 {
		sq := 0.0
		for _, v := range sorted {
			sq += (v - s.Mean) * (v - s.Mean)
		}
		s.Std = math.Sqrt(sq / float64(len(sorted)-1))
	} else {
		s.Std = math.NaN()
	}

	s.Min = sorted[0]
	s.Max = sorted[len(sorted)-1]
	s.P25 = percentile(sorted, 0.25)
	s.P50 = percentile(sorted, 0.50)
	s.P75 = percentile(sorted, 0.75)
	return s
}

func percentile(sorted []float64, q float64) float64 {
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	return sorted[lo] + (sorted[hi]-sorted[lo])*(pos-float64(lo))
}

func (s Summary) rows() [][2]string {
	f := func(v float64) string { return fmt.Sprintf("%.6f", v) }
	return [][2]string{
		{"count", fmt.Sprintf("%d", s.Count)},
		{"mean", f(s.Mean)},
		{"std", f(s.Std)},
		{"min", f(s.Min)},
		{"25%", f(s.P25)},
		{"50%", f(s.P50)},
		{"75%", f(s.P75)},
		{"max", f(s.Max)},
	}
}

// WriteTable renders the summary as a text table under the given
// column name.
func (s Summary) WriteTable(w io.Writer, column string) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.Style().Format.Header = text.FormatDefault
	t.AppendHeader(table.Row{"", column})
	for _, r := range s.rows() {
		t.AppendRow(table.Row{r[0], r[1]})
	}
	t.Render()
}

// WriteMarkdown writes a markdown report of an ingestion run.
func (s Summary) WriteMarkdown(w io.Writer, title string, st Stats, shards []string) error {
	md := markdown.NewMarkdown(w)
	md.H1(title)
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Pages", "File pages", "Matched", "Attached", "Shards"},
		Rows: [][]string{{
			fmt.Sprintf("%d", st.Pages),
			fmt.Sprintf("%d", st.Files),
			fmt.Sprintf("%d", st.Matched),
			fmt.Sprintf("%d", st.Attached),
			fmt.Sprintf("%d", len(shards)),
		}},
	})
	md.PlainText("")
	md.H2("Images per entity")
	md.PlainText("")
	rows := make([][]string, 0, 8)
	for _, r := range s.rows() {
		rows = append(rows, []string{r[0], r[1]})
	}
	md.Table(markdown.TableSet{
		Header: []string{"statistic", "images"},
		Rows:   rows,
	})
	if err := md.Build(); err != nil {
		return errors.Wrap(err, "writing markdown report")
	}
	return nil
}
