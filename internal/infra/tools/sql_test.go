package tools

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReturnsRows(t *testing.T) {
	cases := []struct {
		query string
		want  bool
	}{
		{"SELECT * FROM users", true},
		{"select 1", true},
		{"  WITH t AS (SELECT 1) SELECT * FROM t", true},
		{"SHOW server_version", true},
		{"EXPLAIN SELECT 1", true},
		{"VALUES (1), (2)", true},
		{"TABLE users", true},
		{"(SELECT 1)", false}, // parenthesized statements go through exec; pq still runs them
		{"INSERT INTO users (name) VALUES ('x')", false},
		{"UPDATE users SET name = 'y'", false},
		{"DELETE FROM users", false},
		{"CREATE TABLE t (id int)", false},
		{"DROP TABLE t", false},
		{"-- leading comment\nSELECT 1", true},
		{"/* block */ SELECT 1", true},
		{"-- only a comment", false},
		{"", false},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, returnsRows(tc.query), "query: %q", tc.query)
	}
}
