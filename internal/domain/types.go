package domain

// TableInfo describes one table or view in the database's public schema.
type TableInfo struct {
	Name string
	Type string
}
