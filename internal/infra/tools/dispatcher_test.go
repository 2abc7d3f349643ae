package tools

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"mcpdev/internal/domain"
	"mcpdev/internal/infra/sandbox"
)

type fakeDatabase struct {
	rows     []map[string]any
	affected int64
	err      error

	lastQuery string
	lastArgs  []any
	queried   bool
	execed    bool
}

func (f *fakeDatabase) Query(ctx context.Context, query string, args []any) ([]map[string]any, error) {
	f.queried = true
	f.lastQuery = query
	f.lastArgs = args
	return f.rows, f.err
}

func (f *fakeDatabase) Exec(ctx context.Context, query string, args []any) (int64, error) {
	f.execed = true
	f.lastQuery = query
	f.lastArgs = args
	return f.affected, f.err
}

type fakeCache struct {
	values  map[string]string
	lastTTL time.Duration
	err     error
}

func newFakeCache() *fakeCache {
	return &fakeCache{values: make(map[string]string)}
}

func (f *fakeCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if f.err != nil {
		return f.err
	}
	f.values[key] = value
	f.lastTTL = ttl
	return nil
}

func (f *fakeCache) Get(ctx context.Context, key string) (string, bool, error) {
	if f.err != nil {
		return "", false, f.err
	}
	v, ok := f.values[key]
	return v, ok, nil
}

type fixture struct {
	dispatcher *Dispatcher
	root       sandbox.Root
	db         *fakeDatabase
	cache      *fakeCache
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	root, err := sandbox.NewRoot(t.TempDir())
	require.NoError(t, err)
	db := &fakeDatabase{}
	cache := newFakeCache()
	return &fixture{
		dispatcher: NewDispatcher(root, db, cache, nil, zap.NewNop()),
		root:       root,
		db:         db,
		cache:      cache,
	}
}

func call(t *testing.T, d *Dispatcher, name string, args map[string]any) (*mcp.CallToolResult, error) {
	t.Helper()
	raw, err := json.Marshal(args)
	require.NoError(t, err)
	return d.Call(context.Background(), name, raw)
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.Len(t, res.Content, 1)
	text, ok := res.Content[0].(*mcp.TextContent)
	require.True(t, ok)
	return text.Text
}

func TestCallUnknownToolIsHardError(t *testing.T) {
	fx := newFixture(t)

	res, err := fx.dispatcher.Call(context.Background(), "nonexistent_tool", json.RawMessage(`{}`))
	require.Nil(t, res)
	require.Error(t, err)
	require.True(t, errors.Is(err, domain.ErrUnknownTool))
}

func TestWriteFile(t *testing.T) {
	fx := newFixture(t)

	res, err := call(t, fx.dispatcher, "write_file", map[string]any{
		"path":    "notes/hello.txt",
		"content": "héllo",
	})
	require.NoError(t, err)
	require.False(t, res.IsError)
	require.Equal(t, "Successfully wrote 5 characters to notes/hello.txt", resultText(t, res))

	raw, err := os.ReadFile(filepath.Join(fx.root.Dir(), "notes", "hello.txt"))
	require.NoError(t, err)
	require.Equal(t, "héllo", string(raw))
}

func TestWriteFileOverwrites(t *testing.T) {
	fx := newFixture(t)

	_, err := call(t, fx.dispatcher, "write_file", map[string]any{"path": "a.txt", "content": "first"})
	require.NoError(t, err)
	_, err = call(t, fx.dispatcher, "write_file", map[string]any{"path": "a.txt", "content": "second"})
	require.NoError(t, err)

	raw, err := os.ReadFile(filepath.Join(fx.root.Dir(), "a.txt"))
	require.NoError(t, err)
	require.Equal(t, "second", string(raw))
}

func TestWriteFileRejectsEscape(t *testing.T) {
	fx := newFixture(t)

	_, err := call(t, fx.dispatcher, "write_file", map[string]any{
		"path":    "../outside.txt",
		"content": "nope",
	})
	require.Error(t, err)
	require.True(t, errors.Is(err, domain.ErrPathEscapesRoot))
}

func TestWriteFileMissingPath(t *testing.T) {
	fx := newFixture(t)

	_, err := call(t, fx.dispatcher, "write_file", map[string]any{"content": "x"})
	require.Error(t, err)
}

func TestExecuteSQLSelect(t *testing.T) {
	fx := newFixture(t)
	fx.db.rows = []map[string]any{
		{"id": 1, "name": "alice"},
		{"id": 2, "name": "bob"},
	}

	res, err := call(t, fx.dispatcher, "execute_sql", map[string]any{
		"query":      "SELECT id, name FROM users WHERE id > $1",
		"parameters": []any{"0"},
	})
	require.NoError(t, err)
	require.True(t, fx.db.queried)
	require.False(t, fx.db.execed)
	require.Equal(t, []any{"0"}, fx.db.lastArgs)

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &decoded))
	require.Len(t, decoded, 2)
	require.Contains(t, decoded[0], "id")
	require.Contains(t, decoded[0], "name")
}

func TestExecuteSQLUpdate(t *testing.T) {
	fx := newFixture(t)
	fx.db.affected = 3

	res, err := call(t, fx.dispatcher, "execute_sql", map[string]any{
		"query": "UPDATE users SET active = false",
	})
	require.NoError(t, err)
	require.True(t, fx.db.execed)
	require.False(t, fx.db.queried)
	require.Equal(t, "Query executed successfully. Rows affected: 3", resultText(t, res))
}

func TestExecuteSQLBackendErrorPropagates(t *testing.T) {
	fx := newFixture(t)
	fx.db.err = errors.New("relation does not exist")

	_, err := call(t, fx.dispatcher, "execute_sql", map[string]any{"query": "SELECT 1"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "relation does not exist")
}

func TestCacheSetAndGet(t *testing.T) {
	fx := newFixture(t)

	res, err := call(t, fx.dispatcher, "cache_set", map[string]any{
		"key":   "greeting",
		"value": "hello",
		"ttl":   60,
	})
	require.NoError(t, err)
	require.Equal(t, "Set cache key 'greeting' with TTL 60 seconds", resultText(t, res))
	require.Equal(t, time.Minute, fx.cache.lastTTL)

	res, err = call(t, fx.dispatcher, "cache_get", map[string]any{"key": "greeting"})
	require.NoError(t, err)
	require.Equal(t, "Cache value for 'greeting': hello", resultText(t, res))
}

func TestCacheSetDefaultTTL(t *testing.T) {
	fx := newFixture(t)

	res, err := call(t, fx.dispatcher, "cache_set", map[string]any{
		"key":   "k",
		"value": "v",
	})
	require.NoError(t, err)
	require.Equal(t, "Set cache key 'k' with TTL 3600 seconds", resultText(t, res))
	require.Equal(t, time.Hour, fx.cache.lastTTL)
}

func TestCacheSetRejectsNonPositiveTTL(t *testing.T) {
	fx := newFixture(t)

	for _, ttl := range []int{0, -5} {
		_, err := call(t, fx.dispatcher, "cache_set", map[string]any{
			"key":   "k",
			"value": "v",
			"ttl":   ttl,
		})
		require.Error(t, err, "ttl %d", ttl)
	}
	require.Zero(t, fx.cache.lastTTL)
}

func TestCacheGetMissIsSoft(t *testing.T) {
	fx := newFixture(t)

	res, err := call(t, fx.dispatcher, "cache_get", map[string]any{"key": "never_set"})
	require.NoError(t, err)
	require.False(t, res.IsError)
	require.Equal(t, "Cache key 'never_set' not found", resultText(t, res))
}

func TestCacheBackendErrorPropagates(t *testing.T) {
	fx := newFixture(t)
	fx.cache.err = errors.New("connection refused")

	_, err := call(t, fx.dispatcher, "cache_set", map[string]any{"key": "k", "value": "v"})
	require.Error(t, err)

	_, err = call(t, fx.dispatcher, "cache_get", map[string]any{"key": "k"})
	require.Error(t, err)
}

func TestListDirectory(t *testing.T) {
	fx := newFixture(t)
	require.NoError(t, os.WriteFile(filepath.Join(fx.root.Dir(), "file1.txt"), []byte("one"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(fx.root.Dir(), "file2.txt"), []byte("two!"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(fx.root.Dir(), "subdir"), 0o755))

	res, err := call(t, fx.dispatcher, "list_directory", map[string]any{})
	require.NoError(t, err)

	out := resultText(t, res)
	lines := strings.Split(out, "\n")
	require.Equal(t, "Type      Size       Name", lines[0])
	require.Contains(t, out, "file1.txt")
	require.Contains(t, out, "file2.txt")
	require.Contains(t, out, "subdir")

	for _, line := range lines[2:] {
		switch {
		case strings.HasSuffix(line, "subdir"):
			require.True(t, strings.HasPrefix(line, "directory"))
			require.Contains(t, line, "-")
		case strings.HasSuffix(line, "file1.txt"):
			require.True(t, strings.HasPrefix(line, "file"))
			require.Contains(t, line, "3")
		case strings.HasSuffix(line, "file2.txt"):
			require.True(t, strings.HasPrefix(line, "file"))
			require.Contains(t, line, "4")
		}
	}
}

func TestListDirectoryMissingIsSoft(t *testing.T) {
	fx := newFixture(t)

	res, err := call(t, fx.dispatcher, "list_directory", map[string]any{"path": "no/such/dir"})
	require.NoError(t, err)
	require.False(t, res.IsError)
	require.Equal(t, "Directory not found: no/such/dir", resultText(t, res))
}

func TestAnalyzeDataSummary(t *testing.T) {
	fx := newFixture(t)
	csv := "name,age,score\nalice,30,91.5\nbob,25,78.0\ncarol,41,88.2\n"
	require.NoError(t, os.WriteFile(filepath.Join(fx.root.Dir(), "people.csv"), []byte(csv), 0o644))

	res, err := call(t, fx.dispatcher, "analyze_data", map[string]any{"file_path": "people.csv"})
	require.NoError(t, err)
	require.False(t, res.IsError)

	out := resultText(t, res)
	require.Contains(t, out, "Shape: (3, 3)")
	require.Contains(t, out, "name")
	require.Contains(t, out, "age")
	require.Contains(t, out, "score")
}

func TestAnalyzeDataMissingFileIsSoft(t *testing.T) {
	fx := newFixture(t)

	res, err := call(t, fx.dispatcher, "analyze_data", map[string]any{"file_path": "absent.csv"})
	require.NoError(t, err)
	require.False(t, res.IsError)
	require.Equal(t, "File not found: absent.csv", resultText(t, res))
}

func TestAnalyzeDataMalformedIsSoftError(t *testing.T) {
	fx := newFixture(t)
	require.NoError(t, os.WriteFile(filepath.Join(fx.root.Dir(), "bad.csv"), []byte("a,b\n1,2,3\n\"open\n"), 0o644))

	res, err := call(t, fx.dispatcher, "analyze_data", map[string]any{"file_path": "bad.csv"})
	require.NoError(t, err)
	require.True(t, res.IsError)
	require.Contains(t, resultText(t, res), "Error analyzing data:")
}

func TestAnalyzeDataUnknownTypeIsSoftError(t *testing.T) {
	fx := newFixture(t)
	require.NoError(t, os.WriteFile(filepath.Join(fx.root.Dir(), "ok.csv"), []byte("a\n1\n"), 0o644))

	res, err := call(t, fx.dispatcher, "analyze_data", map[string]any{
		"file_path":     "ok.csv",
		"analysis_type": "median",
	})
	require.NoError(t, err)
	require.True(t, res.IsError)
	require.Contains(t, resultText(t, res), "unknown analysis type")
}
