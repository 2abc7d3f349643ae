package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"mcpdev/internal/domain"
)

type writeFileArgs struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

func (d *Dispatcher) writeFile(ctx context.Context, raw json.RawMessage) (*mcp.CallToolResult, error) {
	var args writeFileArgs
	if err := decodeArgs(raw, &args); err != nil {
		return nil, err
	}
	if args.Path == "" {
		return nil, domain.E(domain.CodeInvalidArgument, "write_file", "path is required", nil)
	}

	path, err := d.root.Resolve(args.Path)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, domain.E(domain.CodeInternal, "write_file", "create parent directories", err)
	}
	if err := os.WriteFile(path, []byte(args.Content), 0o644); err != nil {
		return nil, domain.E(domain.CodeInternal, "write_file", "write file", err)
	}

	return textResult(fmt.Sprintf("Successfully wrote %d characters to %s",
		utf8.RuneCountInString(args.Content), args.Path)), nil
}

type listDirectoryArgs struct {
	Path string `json:"path"`
}

func (d *Dispatcher) listDirectory(ctx context.Context, raw json.RawMessage) (*mcp.CallToolResult, error) {
	args := listDirectoryArgs{Path: "."}
	if err := decodeArgs(raw, &args); err != nil {
		return nil, err
	}
	if args.Path == "" {
		args.Path = "."
	}

	dir, err := d.root.Resolve(args.Path)
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return textResult("Directory not found: " + args.Path), nil
		}
		return nil, domain.E(domain.CodeInternal, "list_directory", "read directory", err)
	}

	lines := []string{"Type      Size       Name", strings.Repeat("-", 30)}
	for _, entry := range entries {
		entryType := "file"
		size := "-"
		if entry.IsDir() {
			entryType = "directory"
		} else if info, infoErr := entry.Info(); infoErr == nil {
			size = fmt.Sprintf("%d", info.Size())
		}
		lines = append(lines, fmt.Sprintf("%-9s %10s %s", entryType, size, entry.Name()))
	}

	return textResult(strings.Join(lines, "\n")), nil
}
