// Package tabular implements the analyze_data computations on CSV files
// using gota dataframes.
package tabular

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-gota/gota/dataframe"

	"mcpdev/internal/domain"
)

// AnalysisKind selects which profile of the loaded dataframe is rendered.
type AnalysisKind string

const (
	AnalysisSummary  AnalysisKind = "summary"
	AnalysisHead     AnalysisKind = "head"
	AnalysisInfo     AnalysisKind = "info"
	AnalysisDescribe AnalysisKind = "describe"
)

// ParseKind maps the wire value to a kind; empty selects summary.
func ParseKind(raw string) (AnalysisKind, bool) {
	switch AnalysisKind(raw) {
	case "":
		return AnalysisSummary, true
	case AnalysisSummary, AnalysisHead, AnalysisInfo, AnalysisDescribe:
		return AnalysisKind(raw), true
	default:
		return "", false
	}
}

// Analyze loads path fully as CSV and renders the requested profile. The
// display name appears in headings so callers see the path they asked for,
// not the resolved sandbox path.
func Analyze(path, display string, kind AnalysisKind) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", domain.E(domain.CodeNotFound, "tabular", "open "+display, err)
	}
	defer f.Close()

	df := dataframe.ReadCSV(f)
	if df.Err != nil {
		return "", domain.E(domain.CodeInvalidArgument, "tabular", "parse "+display, df.Err)
	}

	switch kind {
	case AnalysisSummary:
		return renderSummary(df, display), nil
	case AnalysisHead:
		return renderHead(df, display), nil
	case AnalysisInfo:
		return renderInfo(df, display), nil
	case AnalysisDescribe:
		return renderDescribe(df, display), nil
	default:
		return "", domain.E(domain.CodeInvalidArgument, "tabular", "unknown analysis type: "+string(kind), nil)
	}
}

func renderSummary(df dataframe.DataFrame, display string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Dataset Summary for %s:\n", display)
	fmt.Fprintf(&b, "Shape: (%d, %d)\n", df.Nrow(), df.Ncol())
	fmt.Fprintf(&b, "Columns: %v\n", df.Names())
	b.WriteString("Data types:\n")
	types := df.Types()
	for i, name := range df.Names() {
		fmt.Fprintf(&b, "%s: %s\n", name, types[i])
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderHead(df dataframe.DataFrame, display string) string {
	n := df.Nrow()
	if n > domain.DefaultHeadRows {
		n = domain.DefaultHeadRows
	}
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	head := df.Subset(idx)
	return fmt.Sprintf("First %d rows of %s:\n%s", domain.DefaultHeadRows, display, head.String())
}

func renderInfo(df dataframe.DataFrame, display string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Dataset info for %s:\n", display)
	fmt.Fprintf(&b, "Rows: %d, Columns: %d\n", df.Nrow(), df.Ncol())
	types := df.Types()
	for i, name := range df.Names() {
		col := df.Col(name)
		nonNull := 0
		for j := 0; j < col.Len(); j++ {
			if !col.Elem(j).IsNA() {
				nonNull++
			}
		}
		fmt.Fprintf(&b, "%s  %s  %d non-null\n", name, types[i], nonNull)
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderDescribe(df dataframe.DataFrame, display string) string {
	return fmt.Sprintf("Statistical summary for %s:\n%s", display, df.Describe().String())
}
