package schema

import (
	"fmt"

	"github.com/zoobzio/dbml"

	"github.com/zoobzio/dynq/internal/types"
)

// FromDBML builds a registry from a DBML project. Column kinds and character
// lengths come from the declared column types.
func FromDBML(project *dbml.Project) (*Registry, error) {
	if project == nil {
		return nil, fmt.Errorf("project cannot be nil")
	}

	r := NewRegistry()
	for _, t := range project.Tables {
		cols := make([]types.ColumnMeta, 0, len(t.Columns))
		for _, c := range t.Columns {
			kind, size := KindFromSQL(c.Type)
			cols = append(cols, types.ColumnMeta{
				Name:      c.Name,
				Kind:      kind,
				SQLType:   c.Type,
				MaxLength: size,
				Template:  types.ParamTemplate{Kind: kind, Size: size},
			})
		}
		r.Add(t.Name, cols...)
	}
	return r, nil
}
