package schema

import (
	"fmt"
	"log/slog"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-openapi/inflect"

	"github.com/zoobzio/dynq/internal/types"
)

// Tabler overrides the table name derived from a struct type name.
type Tabler interface {
	TableName() string
}

// FromStruct registers the columns of struct type T and returns its table
// name. Columns come from `db` tags; fields without one, or tagged "-", are
// skipped. A `dynq` tag adds flags: pk, auto, computed, version, nullable
// and size=N. The table name is the tableized type name ("OrderLine" becomes
// "order_lines") unless T implements Tabler.
func FromStruct[T any](r *Registry) (string, error) {
	var zero T
	rt := reflect.TypeOf(zero)
	if rt == nil {
		return "", fmt.Errorf("schema: cannot register an interface type")
	}
	if rt.Kind() == reflect.Pointer {
		rt = rt.Elem()
	}
	if rt.Kind() != reflect.Struct {
		return "", fmt.Errorf("schema: %s is not a struct", rt)
	}

	name := inflect.Tableize(rt.Name())
	if t, ok := reflect.New(rt).Interface().(Tabler); ok {
		name = t.TableName()
	}
	if !isValidSQLIdentifier(name) {
		return "", fmt.Errorf("schema: unsafe table name %q for %s", name, rt)
	}

	var cols []types.ColumnMeta
	for i := 0; i < rt.NumField(); i++ {
		f := rt.Field(i)
		tag, ok := f.Tag.Lookup("db")
		if !ok || tag == "-" || !f.IsExported() {
			continue
		}
		if !isValidSQLIdentifier(tag) {
			slog.Warn("skipping field with unsafe db tag", "type", rt.Name(), "field", f.Name, "tag", tag)
			continue
		}
		col, err := fieldColumn(tag, f)
		if err != nil {
			return "", fmt.Errorf("schema: %s.%s: %w", rt.Name(), f.Name, err)
		}
		cols = append(cols, col)
	}
	if len(cols) == 0 {
		return "", fmt.Errorf("schema: %s has no db-tagged fields", rt)
	}
	r.Add(name, cols...)
	return name, nil
}

func fieldColumn(name string, f reflect.StructField) (types.ColumnMeta, error) {
	col := types.ColumnMeta{Name: name}
	kind, ok := types.KindOf(reflect.Zero(f.Type).Interface())
	if !ok && f.Type.Kind() == reflect.Pointer {
		kind, _ = types.KindOf(reflect.Zero(f.Type.Elem()).Interface())
		col.Nullable = true
	}
	col.Kind = kind

	for _, opt := range strings.Split(f.Tag.Get("dynq"), ",") {
		opt = strings.TrimSpace(opt)
		switch {
		case opt == "":
		case opt == "pk":
			col.PrimaryKey = true
		case opt == "auto":
			col.AutoIncrement = true
		case opt == "computed":
			col.Computed = true
		case opt == "version":
			col.Concurrency = true
		case opt == "nullable":
			col.Nullable = true
		case strings.HasPrefix(opt, "size="):
			n, err := strconv.Atoi(strings.TrimPrefix(opt, "size="))
			if err != nil || n < 0 {
				return col, fmt.Errorf("invalid size %q", opt)
			}
			col.MaxLength = n
		default:
			return col, fmt.Errorf("unknown dynq tag option %q", opt)
		}
	}
	col.Template = types.ParamTemplate{Kind: col.Kind, Size: col.MaxLength}
	return col, nil
}

// isValidSQLIdentifier allows letters, digits and underscores, starting with
// a letter or underscore.
func isValidSQLIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, ch := range s {
		switch {
		case ch >= 'a' && ch <= 'z', ch >= 'A' && ch <= 'Z', ch == '_':
		case ch >= '0' && ch <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}
