package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zoobzio/dbml"

	"github.com/zoobzio/dynq/internal/types"
)

func TestFromDBML(t *testing.T) {
	project := dbml.NewProject("shop")
	users := dbml.NewTable("users")
	users.AddColumn(dbml.NewColumn("id", "bigint"))
	users.AddColumn(dbml.NewColumn("email", "varchar(120)"))
	users.AddColumn(dbml.NewColumn("created_at", "timestamp"))
	project.AddTable(users)

	r, err := FromDBML(project)
	require.NoError(t, err)

	cols := r.Columns("users")
	require.Len(t, cols, 3)
	assert.Equal(t, "id", cols[0].Name)
	assert.Equal(t, types.KindInt64, cols[0].Kind)
	assert.Equal(t, "varchar(120)", cols[1].SQLType)
	assert.Equal(t, 120, cols[1].MaxLength)
	assert.Equal(t, types.KindDateTime, cols[2].Kind)

	_, err = FromDBML(nil)
	assert.Error(t, err)
}
