// Package resources enumerates and reads the two resource namespaces the
// bridge exposes: sandbox files and database tables.
package resources

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"mcpdev/internal/domain"
	"mcpdev/internal/infra/sandbox"
)

const (
	fileScheme  = "file://"
	tableScheme = "db://table/"
)

// TableLister is the slice of the database client the catalog needs.
type TableLister interface {
	ListTables(ctx context.Context) ([]domain.TableInfo, error)
}

type Catalog struct {
	root   sandbox.Root
	tables TableLister
	logger *zap.Logger
}

func NewCatalog(root sandbox.Root, tables TableLister, logger *zap.Logger) *Catalog {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Catalog{
		root:   root,
		tables: tables,
		logger: logger.Named("resource_catalog"),
	}
}

// List enumerates sandbox files and then database tables. A filesystem walk
// failure propagates; database introspection failure only drops the table
// namespace from this enumeration.
func (c *Catalog) List(ctx context.Context) ([]mcp.Resource, error) {
	var out []mcp.Resource

	err := filepath.WalkDir(c.root.Dir(), func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, relErr := filepath.Rel(c.root.Dir(), path)
		if relErr != nil {
			return relErr
		}
		out = append(out, mcp.Resource{
			URI:         fileScheme + path,
			Name:        d.Name(),
			Description: "File: " + rel,
			MIMEType:    mimeForPath(path),
		})
		return nil
	})
	if err != nil {
		return nil, domain.E(domain.CodeInternal, "list_resources", "walk sandbox", err)
	}

	if c.tables != nil {
		tables, err := c.tables.ListTables(ctx)
		if err != nil {
			c.logger.Warn("could not list database tables", zap.Error(err))
			return out, nil
		}
		for _, t := range tables {
			out = append(out, mcp.Resource{
				URI:         tableScheme + t.Name,
				Name:        t.Name,
				Description: fmt.Sprintf("Database %s: %s", strings.ToLower(t.Type), t.Name),
				MIMEType:    "application/x-sql",
			})
		}
	}

	return out, nil
}

func mimeForPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".csv", ".json":
		return "text/plain"
	default:
		return "application/octet-stream"
	}
}

// MIMEForURI reports the mime type a file resource was advertised with.
// Table resources are always application/x-sql.
func MIMEForURI(uri string) string {
	if strings.HasPrefix(uri, tableScheme) {
		return "application/x-sql"
	}
	return mimeForPath(strings.TrimPrefix(uri, fileScheme))
}
