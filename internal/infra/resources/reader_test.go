package resources

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"mcpdev/internal/domain"
)

func TestReadFileResource(t *testing.T) {
	root := newTestRoot(t)
	path := filepath.Join(root.Dir(), "greeting.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello sandbox"), 0o644))

	reader := NewReader(root, nil)
	content, err := reader.Read(context.Background(), "file://"+path)
	require.NoError(t, err)
	require.Equal(t, "hello sandbox", content)
}

func TestReadMissingFileIsHardError(t *testing.T) {
	root := newTestRoot(t)
	reader := NewReader(root, nil)

	_, err := reader.Read(context.Background(), "file://"+filepath.Join(root.Dir(), "absent.txt"))
	require.Error(t, err)
	require.True(t, errors.Is(err, domain.ErrResourceNotFound))
}

func TestReadRejectsPathOutsideSandbox(t *testing.T) {
	root := newTestRoot(t)
	reader := NewReader(root, nil)

	_, err := reader.Read(context.Background(), "file:///etc/passwd")
	require.Error(t, err)
	require.True(t, errors.Is(err, domain.ErrPathEscapesRoot))
}

func TestReadRejectsSymlinkOutsideSandbox(t *testing.T) {
	outside := t.TempDir()
	secret := filepath.Join(outside, "secret.txt")
	require.NoError(t, os.WriteFile(secret, []byte("s"), 0o600))

	root := newTestRoot(t)
	link := filepath.Join(root.Dir(), "alias.txt")
	require.NoError(t, os.Symlink(secret, link))

	reader := NewReader(root, nil)
	_, err := reader.Read(context.Background(), "file://"+link)
	require.Error(t, err)
	require.True(t, errors.Is(err, domain.ErrPathEscapesRoot))
}

func TestReadTableResource(t *testing.T) {
	root := newTestRoot(t)
	store := &fakeTableStore{
		tables: []domain.TableInfo{{Name: "users", Type: "BASE TABLE"}},
		data:   map[string]string{"users": `[{"id": 1}]`},
	}

	reader := NewReader(root, store)
	content, err := reader.Read(context.Background(), "db://table/users")
	require.NoError(t, err)
	require.Equal(t, `[{"id": 1}]`, content)
}

func TestReadUnknownTable(t *testing.T) {
	root := newTestRoot(t)
	reader := NewReader(root, &fakeTableStore{data: map[string]string{}})

	_, err := reader.Read(context.Background(), "db://table/ghost")
	require.Error(t, err)
	require.True(t, errors.Is(err, domain.ErrTableNotFound))
}

func TestReadUnsupportedScheme(t *testing.T) {
	root := newTestRoot(t)
	reader := NewReader(root, nil)

	_, err := reader.Read(context.Background(), "s3://bucket/key")
	require.Error(t, err)
	require.True(t, errors.Is(err, domain.ErrUnsupportedScheme))
}

func TestMIMEForURI(t *testing.T) {
	require.Equal(t, "text/plain", MIMEForURI("file:///data/a.json"))
	require.Equal(t, "application/octet-stream", MIMEForURI("file:///data/a.parquet"))
	require.Equal(t, "application/x-sql", MIMEForURI("db://table/users"))
}
