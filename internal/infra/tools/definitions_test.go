package tools

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefinitionsCoverEveryKind(t *testing.T) {
	defs := Definitions()
	require.Len(t, defs, len(kindNames))

	seen := make(map[string]struct{}, len(defs))
	for _, def := range defs {
		_, dup := seen[def.Name]
		require.False(t, dup, "duplicate tool name %s", def.Name)
		seen[def.Name] = struct{}{}

		kind, ok := ParseKind(def.Name)
		require.True(t, ok, "descriptor %s has no kind", def.Name)
		require.Equal(t, def.Name, kind.String())

		schema, ok := def.InputSchema.(map[string]any)
		require.True(t, ok)
		require.Equal(t, "object", schema["type"])
	}
}

func TestParseKindRejectsUnknown(t *testing.T) {
	_, ok := ParseKind("drop_database")
	require.False(t, ok)
}
