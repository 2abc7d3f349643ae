package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"mcpdev/internal/domain"
)

type cacheSetArgs struct {
	Key   string `json:"key"`
	Value string `json:"value"`
	TTL   *int   `json:"ttl"`
}

func (d *Dispatcher) cacheSet(ctx context.Context, raw json.RawMessage) (*mcp.CallToolResult, error) {
	var args cacheSetArgs
	if err := decodeArgs(raw, &args); err != nil {
		return nil, err
	}
	if args.Key == "" {
		return nil, domain.E(domain.CodeInvalidArgument, "cache_set", "key is required", nil)
	}

	ttl := domain.DefaultCacheTTLSeconds
	if args.TTL != nil {
		if *args.TTL <= 0 {
			return nil, domain.E(domain.CodeInvalidArgument, "cache_set", "ttl must be a positive number of seconds", nil)
		}
		ttl = *args.TTL
	}

	if err := d.cache.Set(ctx, args.Key, args.Value, time.Duration(ttl)*time.Second); err != nil {
		return nil, err
	}
	return textResult(fmt.Sprintf("Set cache key '%s' with TTL %d seconds", args.Key, ttl)), nil
}

type cacheGetArgs struct {
	Key string `json:"key"`
}

func (d *Dispatcher) cacheGet(ctx context.Context, raw json.RawMessage) (*mcp.CallToolResult, error) {
	var args cacheGetArgs
	if err := decodeArgs(raw, &args); err != nil {
		return nil, err
	}
	if args.Key == "" {
		return nil, domain.E(domain.CodeInvalidArgument, "cache_get", "key is required", nil)
	}

	value, found, err := d.cache.Get(ctx, args.Key)
	if err != nil {
		return nil, err
	}
	if !found {
		return textResult(fmt.Sprintf("Cache key '%s' not found", args.Key)), nil
	}
	return textResult(fmt.Sprintf("Cache value for '%s': %s", args.Key, value)), nil
}
