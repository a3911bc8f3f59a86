// Package schema provides column metadata to dynq graphs and to the crud
// command builder.
package schema

import (
	"slices"
	"sync"

	"github.com/zoobzio/dynq/internal/types"
)

// Registry is an in-memory metadata provider. It is safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	tables map[string]*table
}

type table struct {
	columns []types.ColumnMeta
	index   map[string]int
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{tables: make(map[string]*table)}
}

// Add registers columns for a table. A column that is already registered is
// replaced in place; new columns keep their declaration order.
func (r *Registry) Add(name string, cols ...types.ColumnMeta) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tables[name]
	if !ok {
		t = &table{index: make(map[string]int)}
		r.tables[name] = t
	}
	for _, c := range cols {
		if i, ok := t.index[c.Name]; ok {
			t.columns[i] = c
			continue
		}
		t.index[c.Name] = len(t.columns)
		t.columns = append(t.columns, c)
	}
}

// Remove drops a table.
func (r *Registry) Remove(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tables, name)
}

// Update applies fn to a registered column. It reports whether the column
// exists.
func (r *Registry) Update(tableName, column string, fn func(*types.ColumnMeta)) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tables[tableName]
	if !ok {
		return false
	}
	i, ok := t.index[column]
	if !ok {
		return false
	}
	fn(&t.columns[i])
	return true
}

// Column returns the metadata of one column.
func (r *Registry) Column(tableName, column string) (types.ColumnMeta, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.tables[tableName]
	if !ok {
		return types.ColumnMeta{}, false
	}
	i, ok := t.index[column]
	if !ok {
		return types.ColumnMeta{}, false
	}
	return t.columns[i], true
}

// Columns returns a table's columns in declaration order.
func (r *Registry) Columns(tableName string) []types.ColumnMeta {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.tables[tableName]
	if !ok {
		return nil
	}
	return slices.Clone(t.columns)
}

// Has reports whether the table is registered.
func (r *Registry) Has(tableName string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.tables[tableName]
	return ok
}

// Tables lists registered tables in sorted order.
func (r *Registry) Tables() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.tables))
	for name := range r.tables {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
