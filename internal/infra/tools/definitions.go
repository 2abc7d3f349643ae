package tools

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"mcpdev/internal/domain"
)

// Kind is the closed set of tools the dispatcher knows. Dispatch goes
// through this enum so an unhandled kind is a compile-time hole, not a
// runtime string miss.
type Kind int

const (
	KindWriteFile Kind = iota
	KindExecuteSQL
	KindCacheSet
	KindCacheGet
	KindListDirectory
	KindAnalyzeData
)

var kindNames = map[Kind]string{
	KindWriteFile:     "write_file",
	KindExecuteSQL:    "execute_sql",
	KindCacheSet:      "cache_set",
	KindCacheGet:      "cache_get",
	KindListDirectory: "list_directory",
	KindAnalyzeData:   "analyze_data",
}

var kindsByName = func() map[string]Kind {
	m := make(map[string]Kind, len(kindNames))
	for kind, name := range kindNames {
		m[name] = kind
	}
	return m
}()

func (k Kind) String() string {
	return kindNames[k]
}

func ParseKind(name string) (Kind, bool) {
	kind, ok := kindsByName[name]
	return kind, ok
}

// Definitions returns the six static tool descriptors. The schemas are
// advisory metadata for the remote caller; the dispatcher decodes arguments
// itself and does not validate against them.
func Definitions() []mcp.Tool {
	return []mcp.Tool{
		{
			Name:        "write_file",
			Description: "Write content to a file in the data directory",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"path": map[string]any{
						"type":        "string",
						"description": "Relative path within the data directory",
					},
					"content": map[string]any{
						"type":        "string",
						"description": "Content to write to the file",
					},
				},
				"required": []string{"path", "content"},
			},
		},
		{
			Name:        "execute_sql",
			Description: "Execute a SQL query against the PostgreSQL database",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"query": map[string]any{
						"type":        "string",
						"description": "SQL query to execute",
					},
					"parameters": map[string]any{
						"type":        "array",
						"description": "Query parameters",
						"items":       map[string]any{"type": "string"},
					},
				},
				"required": []string{"query"},
			},
		},
		{
			Name:        "cache_set",
			Description: "Set a value in Redis cache",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"key": map[string]any{
						"type":        "string",
						"description": "Cache key",
					},
					"value": map[string]any{
						"type":        "string",
						"description": "Value to cache",
					},
					"ttl": map[string]any{
						"type":        "integer",
						"description": "Time to live in seconds (optional)",
						"default":     domain.DefaultCacheTTLSeconds,
					},
				},
				"required": []string{"key", "value"},
			},
		},
		{
			Name:        "cache_get",
			Description: "Get a value from Redis cache",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"key": map[string]any{
						"type":        "string",
						"description": "Cache key",
					},
				},
				"required": []string{"key"},
			},
		},
		{
			Name:        "list_directory",
			Description: "List contents of a directory",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"path": map[string]any{
						"type":        "string",
						"description": "Directory path (relative to data directory)",
						"default":     ".",
					},
				},
			},
		},
		{
			Name:        "analyze_data",
			Description: "Perform basic analysis on CSV data files",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"file_path": map[string]any{
						"type":        "string",
						"description": "Path to CSV file (relative to data directory)",
					},
					"analysis_type": map[string]any{
						"type":        "string",
						"enum":        []string{"summary", "head", "info", "describe"},
						"description": "Type of analysis to perform",
						"default":     "summary",
					},
				},
				"required": []string{"file_path"},
			},
		},
	}
}
