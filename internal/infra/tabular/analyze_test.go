package tabular

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const sampleCSV = "name,age,score\nalice,30,91.5\nbob,25,78.0\ncarol,41,88.2\n"

func writeSample(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "people.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0o644))
	return path
}

func TestParseKind(t *testing.T) {
	kind, ok := ParseKind("")
	require.True(t, ok)
	require.Equal(t, AnalysisSummary, kind)

	for _, raw := range []string{"summary", "head", "info", "describe"} {
		kind, ok := ParseKind(raw)
		require.True(t, ok)
		require.Equal(t, AnalysisKind(raw), kind)
	}

	_, ok = ParseKind("median")
	require.False(t, ok)
}

func TestAnalyzeSummary(t *testing.T) {
	out, err := Analyze(writeSample(t), "people.csv", AnalysisSummary)
	require.NoError(t, err)
	require.Contains(t, out, "Dataset Summary for people.csv")
	require.Contains(t, out, "Shape: (3, 3)")
	require.Contains(t, out, "name")
	require.Contains(t, out, "age")
	require.Contains(t, out, "score")
}

func TestAnalyzeHead(t *testing.T) {
	out, err := Analyze(writeSample(t), "people.csv", AnalysisHead)
	require.NoError(t, err)
	require.Contains(t, out, "First 10 rows of people.csv")
	require.Contains(t, out, "alice")
	require.Contains(t, out, "carol")
}

func TestAnalyzeInfo(t *testing.T) {
	out, err := Analyze(writeSample(t), "people.csv", AnalysisInfo)
	require.NoError(t, err)
	require.Contains(t, out, "Dataset info for people.csv")
	require.Contains(t, out, "Rows: 3, Columns: 3")
	require.Contains(t, out, "3 non-null")
}

func TestAnalyzeDescribe(t *testing.T) {
	out, err := Analyze(writeSample(t), "people.csv", AnalysisDescribe)
	require.NoError(t, err)
	require.Contains(t, out, "Statistical summary for people.csv")
	require.Contains(t, out, "mean")
}

func TestAnalyzeMissingFile(t *testing.T) {
	_, err := Analyze(filepath.Join(t.TempDir(), "absent.csv"), "absent.csv", AnalysisSummary)
	require.Error(t, err)
}

func TestAnalyzeMalformedCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.csv")
	require.NoError(t, os.WriteFile(path, []byte("a,b\n1,2,3,4\n\"unterminated\n"), 0o644))

	_, err := Analyze(path, "bad.csv", AnalysisSummary)
	require.Error(t, err)
}
