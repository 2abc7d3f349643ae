// Package bridge owns the MCP server: it registers the six tools and the
// resource namespaces, and pumps the stdio transport. Requests arrive one at
// a time per session; handlers run to completion before the next request.
package bridge

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"mcpdev/internal/buildinfo"
	"mcpdev/internal/domain"
	"mcpdev/internal/infra/resources"
	"mcpdev/internal/infra/telemetry"
	"mcpdev/internal/infra/tools"
)

type Bridge struct {
	logger     *zap.Logger
	catalog    *resources.Catalog
	reader     *resources.Reader
	dispatcher *tools.Dispatcher
	metrics    *telemetry.Metrics
	changes    <-chan struct{}
	refresh    time.Duration

	server *mcp.Server

	mu         sync.Mutex
	registered map[string]struct{}
}

// New wires the bridge. changes may be nil; resource refresh then runs on
// the periodic ticker alone.
func New(catalog *resources.Catalog, reader *resources.Reader, dispatcher *tools.Dispatcher, metrics *telemetry.Metrics, changes <-chan struct{}, logger *zap.Logger) *Bridge {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bridge{
		logger:     logger.Named("bridge"),
		catalog:    catalog,
		reader:     reader,
		dispatcher: dispatcher,
		metrics:    metrics,
		changes:    changes,
		refresh:    time.Duration(domain.DefaultResourceRefreshSeconds) * time.Second,
		registered: make(map[string]struct{}),
	}
}

// Run serves the stdio transport until ctx is canceled or the session ends.
// The initial resource enumeration must succeed; later refresh failures are
// logged and the previous snapshot stays registered.
func (b *Bridge) Run(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := b.setup(runCtx); err != nil {
		return err
	}
	go b.refreshLoop(runCtx)

	b.logger.Info("bridge starting (stdio transport)", zap.String("version", buildinfo.Version))
	return b.server.Run(runCtx, &mcp.StdioTransport{})
}

func (b *Bridge) setup(ctx context.Context) error {
	b.server = mcp.NewServer(&mcp.Implementation{
		Name:    domain.ServiceName,
		Version: buildinfo.Version,
	}, &mcp.ServerOptions{
		HasTools:     true,
		HasResources: true,
	})

	for _, tool := range tools.Definitions() {
		tool := tool
		b.server.AddTool(&tool, b.toolHandler(tool.Name))
	}

	return b.syncResources(ctx)
}

func (b *Bridge) refreshLoop(ctx context.Context) {
	ticker := time.NewTicker(b.refresh)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		case <-b.changes:
		}
		if err := b.syncResources(ctx); err != nil {
			b.logger.Warn("resource refresh failed", zap.Error(err))
		}
	}
}

// syncResources enumerates the catalog and diffs it against the registered
// set, re-adding current resources and removing stale URIs. Entries whose
// URI does not parse are skipped: AddResource panics on them, and a sandbox
// filename with a stray "%" must not take the server down.
func (b *Bridge) syncResources(ctx context.Context) error {
	list, err := b.catalog.List(ctx)
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	next := make(map[string]struct{}, len(list))
	for i := range list {
		resource := list[i]
		if !validResourceURI(resource.URI) {
			b.logger.Warn("skip resource with invalid uri", zap.String("uri", resource.URI))
			continue
		}
		b.server.AddResource(&resource, b.resourceHandler(resource.URI))
		next[resource.URI] = struct{}{}
	}

	var remove []string
	for uri := range b.registered {
		if _, ok := next[uri]; !ok {
			remove = append(remove, uri)
		}
	}
	if len(remove) > 0 {
		b.server.RemoveResources(remove...)
	}

	b.registered = next
	return nil
}

func (b *Bridge) toolHandler(name string) mcp.ToolHandler {
	return func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := json.RawMessage(req.Params.Arguments)
		return b.dispatcher.Call(ctx, name, args)
	}
}

func (b *Bridge) resourceHandler(uri string) mcp.ResourceHandler {
	return func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		targetURI := uri
		if req != nil && req.Params != nil && req.Params.URI != "" {
			targetURI = req.Params.URI
		}

		content, err := b.reader.Read(ctx, targetURI)
		b.metrics.ObserveResourceRead(schemeOf(targetURI), err)
		if err != nil {
			return nil, err
		}
		return &mcp.ReadResourceResult{
			Contents: []*mcp.ResourceContents{{
				URI:      targetURI,
				MIMEType: resources.MIMEForURI(targetURI),
				Text:     content,
			}},
		}, nil
	}
}

func validResourceURI(raw string) bool {
	parsed, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return parsed.Scheme != ""
}

func schemeOf(uri string) string {
	if idx := strings.Index(uri, "://"); idx >= 0 {
		return uri[:idx]
	}
	return "unknown"
}
