// Package tools implements the tool catalog and dispatcher: six fixed tools
// routed through a closed Kind enum to handlers that execute against the
// sandbox, the database, the cache, and the tabular analyzer.
package tools

import (
	"context"
	"encoding/json"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"mcpdev/internal/domain"
	"mcpdev/internal/infra/sandbox"
	"mcpdev/internal/infra/telemetry"
)

// Database is the slice of the database client the SQL tool needs.
type Database interface {
	Query(ctx context.Context, query string, args []any) ([]map[string]any, error)
	Exec(ctx context.Context, query string, args []any) (int64, error)
}

// Cache is the slice of the cache client the cache tools need.
type Cache interface {
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, bool, error)
}

type handlerFunc func(ctx context.Context, args json.RawMessage) (*mcp.CallToolResult, error)

type Dispatcher struct {
	root     sandbox.Root
	db       Database
	cache    Cache
	metrics  *telemetry.Metrics
	logger   *zap.Logger
	handlers map[Kind]handlerFunc
}

// NewDispatcher wires every Kind to its handler. All collaborators are
// passed in here; handlers never reach for ambient state.
func NewDispatcher(root sandbox.Root, db Database, cache Cache, metrics *telemetry.Metrics, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	d := &Dispatcher{
		root:    root,
		db:      db,
		cache:   cache,
		metrics: metrics,
		logger:  logger.Named("tool_dispatcher"),
	}
	d.handlers = map[Kind]handlerFunc{
		KindWriteFile:     d.writeFile,
		KindExecuteSQL:    d.executeSQL,
		KindCacheSet:      d.cacheSet,
		KindCacheGet:      d.cacheGet,
		KindListDirectory: d.listDirectory,
		KindAnalyzeData:   d.analyzeData,
	}
	return d
}

// Call routes an invocation by name. Unknown names are the single hard
// dispatch failure; every registered tool either succeeds, returns soft
// text, or propagates its backend error.
func (d *Dispatcher) Call(ctx context.Context, name string, args json.RawMessage) (*mcp.CallToolResult, error) {
	kind, ok := ParseKind(name)
	if !ok {
		return nil, domain.E(domain.CodeNotFound, "call_tool", "unknown tool: "+name, domain.ErrUnknownTool)
	}

	start := time.Now()
	result, err := d.handlers[kind](ctx, args)
	d.metrics.ObserveToolCall(name, time.Since(start), err)
	if err != nil {
		d.logger.Warn("tool call failed", zap.String("tool", name), zap.Error(err))
		return nil, err
	}
	return result, nil
}

func decodeArgs(raw json.RawMessage, into any) error {
	if len(raw) == 0 {
		raw = json.RawMessage("{}")
	}
	if err := json.Unmarshal(raw, into); err != nil {
		return domain.E(domain.CodeInvalidArgument, "call_tool", "decode arguments", err)
	}
	return nil
}

// textResult is the uniform success envelope: exactly one text block.
func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}

// softError reports a failure inside a normal result. Used only where the
// failure is an answer the caller can act on (see DESIGN.md).
func softError(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
		IsError: true,
	}
}
