package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"mcpdev/internal/domain"
	"mcpdev/internal/infra/postgres"
)

type executeSQLArgs struct {
	Query      string `json:"query"`
	Parameters []any  `json:"parameters"`
}

func (d *Dispatcher) executeSQL(ctx context.Context, raw json.RawMessage) (*mcp.CallToolResult, error) {
	var args executeSQLArgs
	if err := decodeArgs(raw, &args); err != nil {
		return nil, err
	}
	if strings.TrimSpace(args.Query) == "" {
		return nil, domain.E(domain.CodeInvalidArgument, "execute_sql", "query is required", nil)
	}

	if returnsRows(args.Query) {
		rows, err := d.db.Query(ctx, args.Query, args.Parameters)
		if err != nil {
			return nil, err
		}
		text, err := postgres.MarshalRows(rows)
		if err != nil {
			return nil, err
		}
		return textResult(text), nil
	}

	affected, err := d.db.Exec(ctx, args.Query, args.Parameters)
	if err != nil {
		return nil, err
	}
	return textResult(fmt.Sprintf("Query executed successfully. Rows affected: %d", affected)), nil
}

// returnsRows classifies a statement by its leading keyword, skipping SQL
// comments. DML with a RETURNING clause still goes through the exec path;
// the affected-row count it reports is correct either way.
func returnsRows(query string) bool {
	rest := strings.TrimSpace(query)
	for {
		switch {
		case strings.HasPrefix(rest, "--"):
			if idx := strings.IndexByte(rest, '\n'); idx >= 0 {
				rest = strings.TrimSpace(rest[idx+1:])
				continue
			}
			return false
		case strings.HasPrefix(rest, "/*"):
			if idx := strings.Index(rest, "*/"); idx >= 0 {
				rest = strings.TrimSpace(rest[idx+2:])
				continue
			}
			return false
		}
		break
	}

	word := rest
	if idx := strings.IndexAny(rest, " \t\r\n("); idx >= 0 {
		word = rest[:idx]
	}
	switch strings.ToUpper(word) {
	case "SELECT", "WITH", "SHOW", "EXPLAIN", "VALUES", "TABLE":
		return true
	default:
		return false
	}
}
