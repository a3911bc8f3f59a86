// Package crud builds INSERT, UPDATE and DELETE commands for one row from
// its original and current column values. UPDATE and DELETE filter by the
// original primary key and, when the table has concurrency columns, by
// their original values, so a row changed by someone else is not
// overwritten.
package crud

import (
	"errors"
	"reflect"
	"strings"

	"github.com/zoobzio/dynq"
	"github.com/zoobzio/dynq/internal/render"
	"github.com/zoobzio/dynq/internal/types"
)

// ErrNothingToSave is returned when a row has no column to write.
var ErrNothingToSave = errors.New("crud: nothing to save")

// State is the pending change of a row.
type State int

// Row states.
const (
	Unchanged State = iota
	Added
	Modified
	Deleted
)

func (s State) String() string {
	switch s {
	case Unchanged:
		return "unchanged"
	case Added:
		return "added"
	case Modified:
		return "modified"
	case Deleted:
		return "deleted"
	default:
		return "unknown"
	}
}

// Row is one table row with its values as loaded and as edited. Columns
// fixes the column order of the generated SQL.
type Row struct {
	Table    string
	Schema   string
	Columns  []dynq.ColumnMeta
	Original map[string]any
	Current  map[string]any
	State    State
}

// Command is a rendered write statement.
type Command struct {
	dynq.QueryResult
	// Concurrency is true when the statement filters by concurrency
	// columns; zero affected rows then means a conflict.
	Concurrency bool
}

// Dialect is the part of a renderer the builder needs. The renderers of the
// dialect packages satisfy it.
type Dialect interface {
	Name() string
	QuoteIdentifier(name string) string
	Placeholder(name string, ordinal int) string
	NamedParameters() bool
}

// Builder renders commands for one dialect.
type Builder struct {
	Dialect Dialect
}

// NewBuilder creates a builder for d.
func NewBuilder(d Dialect) *Builder {
	return &Builder{Dialect: d}
}

// Build renders the command for the row's state.
func (b *Builder) Build(row Row) (Command, error) {
	switch row.State {
	case Added:
		return b.Insert(row)
	case Modified:
		return b.Update(row)
	case Deleted:
		return b.Delete(row)
	case Unchanged:
		return Command{}, ErrNothingToSave
	default:
		return Command{}, types.Errorf(types.ErrInvalidOperand, "build", "unknown row state %d", row.State)
	}
}

// statement accumulates SQL text and bound parameters.
type statement struct {
	d      Dialect
	sql    strings.Builder
	params []types.Param
	names  render.ParamNames
}

func (s *statement) bind(col dynq.ColumnMeta, v any) string {
	kind, _ := types.KindOf(v)
	val := types.Value{Kind: kind, V: v}
	ordinal := len(s.params) + 1
	if s.names == nil {
		s.names = make(render.ParamNames)
	}
	name := s.names.Next(col.Name, ordinal)
	tmpl := col.Template
	if tmpl.Kind == types.KindUnknown {
		tmpl.Kind = col.Kind
	}
	if tmpl.Size == 0 {
		tmpl.Size = col.MaxLength
	}
	p := tmpl.NewParam(name, val)
	p.Placeholder = s.d.Placeholder(name, ordinal)
	s.params = append(s.params, p)
	return p.Placeholder
}

// value renders v as a parameter, or NULL.
func (s *statement) value(col dynq.ColumnMeta, v any) string {
	if isNull(v) {
		return "NULL"
	}
	return s.bind(col, v)
}

// filter renders col = v, or col IS NULL.
func (s *statement) filter(col dynq.ColumnMeta, v any) string {
	name := s.d.QuoteIdentifier(col.Name)
	if isNull(v) {
		return name + " IS NULL"
	}
	return name + " = " + s.bind(col, v)
}

func (s *statement) command(concurrency bool) Command {
	return Command{
		QueryResult: dynq.QueryResult{
			SQL:    s.sql.String(),
			Params: s.params,
			Named:  s.d.NamedParameters(),
		},
		Concurrency: concurrency,
	}
}

func (b *Builder) table(row Row) string {
	name := b.Dialect.QuoteIdentifier(row.Table)
	if row.Schema != "" {
		name = b.Dialect.QuoteIdentifier(row.Schema) + "." + name
	}
	return name
}

// Insert renders INSERT for every current value. Auto-increment and
// computed columns are left to the database.
func (b *Builder) Insert(row Row) (Command, error) {
	if err := b.check(row); err != nil {
		return Command{}, err
	}
	s := &statement{d: b.Dialect}
	var names, values []string
	for _, col := range row.Columns {
		if col.AutoIncrement || col.Computed {
			continue
		}
		v, ok := row.Current[col.Name]
		if !ok {
			continue
		}
		names = append(names, b.Dialect.QuoteIdentifier(col.Name))
		values = append(values, s.value(col, v))
	}
	if len(names) == 0 {
		return Command{}, ErrNothingToSave
	}
	s.sql.WriteString("INSERT INTO ")
	s.sql.WriteString(b.table(row))
	s.sql.WriteString(" (")
	s.sql.WriteString(strings.Join(names, ", "))
	s.sql.WriteString(") VALUES (")
	s.sql.WriteString(strings.Join(values, ", "))
	s.sql.WriteString(")")
	return s.command(false), nil
}

// Update renders UPDATE for the columns whose current value differs from
// the original. Integer concurrency columns are incremented.
func (b *Builder) Update(row Row) (Command, error) {
	if err := b.check(row); err != nil {
		return Command{}, err
	}
	s := &statement{d: b.Dialect}
	var sets []string
	for _, col := range row.Columns {
		if col.PrimaryKey || col.AutoIncrement || col.Computed || col.Concurrency {
			continue
		}
		v, ok := row.Current[col.Name]
		if !ok || reflect.DeepEqual(v, row.Original[col.Name]) {
			continue
		}
		sets = append(sets, b.Dialect.QuoteIdentifier(col.Name)+" = "+s.value(col, v))
	}
	if len(sets) == 0 {
		return Command{}, ErrNothingToSave
	}
	for _, col := range row.Columns {
		if col.Concurrency && col.Kind.Integer() {
			name := b.Dialect.QuoteIdentifier(col.Name)
			sets = append(sets, name+" = "+name+" + 1")
		}
	}

	s.sql.WriteString("UPDATE ")
	s.sql.WriteString(b.table(row))
	s.sql.WriteString(" SET ")
	s.sql.WriteString(strings.Join(sets, ", "))
	concurrency, err := b.where(s, row)
	if err != nil {
		return Command{}, err
	}
	return s.command(concurrency), nil
}

// Delete renders DELETE filtered by the original key and concurrency values.
func (b *Builder) Delete(row Row) (Command, error) {
	if err := b.check(row); err != nil {
		return Command{}, err
	}
	s := &statement{d: b.Dialect}
	s.sql.WriteString("DELETE FROM ")
	s.sql.WriteString(b.table(row))
	concurrency, err := b.where(s, row)
	if err != nil {
		return Command{}, err
	}
	return s.command(concurrency), nil
}

// where appends the WHERE clause and reports whether it checks concurrency
// columns.
func (b *Builder) where(s *statement, row Row) (bool, error) {
	var keys, checks []string
	for _, col := range row.Columns {
		switch {
		case col.PrimaryKey:
			v, ok := row.Original[col.Name]
			if !ok || isNull(v) {
				return false, types.Errorf(types.ErrInvalidOperand, "where", "row of %s has no original value for key %s", row.Table, col.Name)
			}
			keys = append(keys, s.filter(col, v))
		case col.Concurrency:
			checks = append(checks, s.filter(col, row.Original[col.Name]))
		}
	}
	if len(keys) == 0 {
		return false, types.Errorf(types.ErrInvalidOperand, "where", "table %s has no primary key", row.Table)
	}
	s.sql.WriteString(" WHERE ")
	s.sql.WriteString(strings.Join(append(keys, checks...), " AND "))
	return len(checks) > 0, nil
}

func (b *Builder) check(row Row) error {
	switch {
	case b.Dialect == nil:
		return types.Errorf(types.ErrInvalidOperand, "build", "nil dialect")
	case row.Table == "":
		return types.Errorf(types.ErrInvalidOperand, "build", "row has no table")
	case len(row.Columns) == 0:
		return types.Errorf(types.ErrInvalidOperand, "build", "table %s has no columns", row.Table)
	}
	return nil
}

func isNull(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface:
		return rv.IsNil()
	}
	return false
}
