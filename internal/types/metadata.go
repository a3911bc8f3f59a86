package types

// MetadataProvider resolves column metadata for a table.
type MetadataProvider interface {
	Column(table, column string) (ColumnMeta, bool)
}

// ColumnMeta describes one physical column.
type ColumnMeta struct {
	Name          string
	Kind          ScalarKind
	SQLType       string
	PrimaryKey    bool
	AutoIncrement bool
	Computed      bool
	Concurrency   bool
	Nullable      bool
	MaxLength     int
	Template      ParamTemplate
}

// ParamTemplate is cloned into every parameter bound against a column.
type ParamTemplate struct {
	Kind ScalarKind
	Size int
}

// NewParam clones the template into a parameter for v. The template kind
// wins over the value's own kind when set.
func (t ParamTemplate) NewParam(name string, v Value) Param {
	p := Param{Name: name, Value: v.DriverValue(), Kind: v.Kind, Size: t.Size}
	if t.Kind != KindUnknown {
		p.Kind = t.Kind
	}
	return p
}
