package guard

import "strings"

// Whitelist holds the permitted table, column, and function names.
//
// The sets are loaded once at construction and never mutated, so
// membership checks are safe for concurrent use without locking.
// Table and column names match exactly (case-sensitive); function
// names match case-insensitively, since callers may write either
// lower(x) or LOWER(x).
type Whitelist struct {
	tables    map[string]struct{}
	columns   map[string]struct{}
	functions map[string]struct{} // keys stored uppercase
}

// NewWhitelist builds a Whitelist from the configured identifier sets.
func NewWhitelist(tables, columns, functions []string) *Whitelist {
	w := &Whitelist{
		tables:    make(map[string]struct{}, len(tables)),
		columns:   make(map[string]struct{}, len(columns)),
		functions: make(map[string]struct{}, len(functions)),
	}
	for _, t := range tables {
		w.tables[t] = struct{}{}
	}
	for _, c := range columns {
		w.columns[c] = struct{}{}
	}
	for _, f := range functions {
		w.functions[strings.ToUpper(f)] = struct{}{}
	}
	return w
}

// AllowedTable reports whether name is a permitted table.
func (w *Whitelist) AllowedTable(name string) bool {
	_, ok := w.tables[name]
	return ok
}

// AllowedColumn reports whether name is a permitted column.
func (w *Whitelist) AllowedColumn(name string) bool {
	_, ok := w.columns[name]
	return ok
}

// AllowedFunction reports whether name is a permitted SQL function.
// The comparison is case-insensitive.
func (w *Whitelist) AllowedFunction(name string) bool {
	_, ok := w.functions[strings.ToUpper(name)]
	return ok
}
