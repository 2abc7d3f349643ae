package resources

import (
	"context"
	"os"
	"strings"

	"mcpdev/internal/domain"
	"mcpdev/internal/infra/sandbox"
)

// TableReader is the slice of the database client the reader needs.
type TableReader interface {
	ReadTable(ctx context.Context, name string) (string, error)
}

type Reader struct {
	root   sandbox.Root
	tables TableReader
}

func NewReader(root sandbox.Root, tables TableReader) *Reader {
	return &Reader{
		root:   root,
		tables: tables,
	}
}

// Read resolves uri to its content. file:// paths must stay inside the
// sandbox root; db://table/ names are checked against the introspected
// catalog by the database client. Every failure here is a hard error.
func (r *Reader) Read(ctx context.Context, uri string) (string, error) {
	switch {
	case strings.HasPrefix(uri, fileScheme):
		path := strings.TrimPrefix(uri, fileScheme)
		if !r.root.Within(path) || !r.root.WithinReal(path) {
			return "", domain.E(domain.CodePermissionDenied, "read_resource", "path outside sandbox: "+path, domain.ErrPathEscapesRoot)
		}
		raw, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return "", domain.E(domain.CodeNotFound, "read_resource", "file not found: "+path, domain.ErrResourceNotFound)
			}
			return "", domain.E(domain.CodeInternal, "read_resource", "read file", err)
		}
		return string(raw), nil

	case strings.HasPrefix(uri, tableScheme):
		if r.tables == nil {
			return "", domain.E(domain.CodeUnavailable, "read_resource", "database not configured", nil)
		}
		name := strings.TrimPrefix(uri, tableScheme)
		return r.tables.ReadTable(ctx, name)

	default:
		return "", domain.E(domain.CodeInvalidArgument, "read_resource", "unsupported uri scheme: "+uri, domain.ErrUnsupportedScheme)
	}
}
