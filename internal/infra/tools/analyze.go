package tools

import (
	"context"
	"encoding/json"
	"os"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"mcpdev/internal/domain"
	"mcpdev/internal/infra/tabular"
)

type analyzeDataArgs struct {
	FilePath     string `json:"file_path"`
	AnalysisType string `json:"analysis_type"`
}

// analyzeData is the one tool whose compute failures come back as soft
// error text: a malformed CSV is an answer about the data, not a fault of
// the bridge.
func (d *Dispatcher) analyzeData(ctx context.Context, raw json.RawMessage) (*mcp.CallToolResult, error) {
	var args analyzeDataArgs
	if err := decodeArgs(raw, &args); err != nil {
		return nil, err
	}
	if args.FilePath == "" {
		return nil, domain.E(domain.CodeInvalidArgument, "analyze_data", "file_path is required", nil)
	}

	kind, ok := tabular.ParseKind(args.AnalysisType)
	if !ok {
		return softError("Error analyzing data: unknown analysis type: " + args.AnalysisType), nil
	}

	path, err := d.root.Resolve(args.FilePath)
	if err != nil {
		return nil, err
	}
	if _, statErr := os.Stat(path); os.IsNotExist(statErr) {
		return textResult("File not found: " + args.FilePath), nil
	}

	result, err := tabular.Analyze(path, args.FilePath, kind)
	if err != nil {
		return softError("Error analyzing data: " + err.Error()), nil
	}
	return textResult(result), nil
}
