package schema

import (
	"math/big"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zoobzio/dynq/internal/types"
)

type OrderLine struct {
	ID       int64      `db:"id" dynq:"pk,auto"`
	OrderID  uuid.UUID  `db:"order_id"`
	Product  string     `db:"product" dynq:"size=40"`
	Price    *big.Rat   `db:"price"`
	Shipped  *time.Time `db:"shipped_at"`
	Total    float64    `db:"total" dynq:"computed"`
	Version  int32      `db:"version" dynq:"version"`
	Ignored  string     `db:"-"`
	internal string     `db:"internal"`
}

type account struct {
	ID   int64  `db:"id" dynq:"pk"`
	Name string `db:"name"`
}

func (account) TableName() string { return "tbl_account" }

type badTag struct {
	ID    int64  `db:"id"`
	Other string `db:"other; DROP TABLE x"`
}

type badOption struct {
	ID int64 `db:"id" dynq:"primary"`
}

func TestFromStruct(t *testing.T) {
	r := NewRegistry()
	name, err := FromStruct[OrderLine](r)
	require.NoError(t, err)
	assert.Equal(t, "order_lines", name)

	cols := r.Columns(name)
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.Name
	}
	assert.Equal(t, []string{"id", "order_id", "product", "price", "shipped_at", "total", "version"}, names)

	id, _ := r.Column(name, "id")
	assert.True(t, id.PrimaryKey)
	assert.True(t, id.AutoIncrement)
	assert.Equal(t, types.KindInt64, id.Kind)

	orderID, _ := r.Column(name, "order_id")
	assert.Equal(t, types.KindGUID, orderID.Kind)

	product, _ := r.Column(name, "product")
	assert.Equal(t, 40, product.MaxLength)
	assert.Equal(t, types.ParamTemplate{Kind: types.KindString, Size: 40}, product.Template)

	price, _ := r.Column(name, "price")
	assert.Equal(t, types.KindDecimal, price.Kind)
	assert.False(t, price.Nullable)

	shipped, _ := r.Column(name, "shipped_at")
	assert.Equal(t, types.KindDateTime, shipped.Kind)
	assert.True(t, shipped.Nullable)

	total, _ := r.Column(name, "total")
	assert.True(t, total.Computed)

	version, _ := r.Column(name, "version")
	assert.True(t, version.Concurrency)
}

func TestFromStruct_TableName(t *testing.T) {
	r := NewRegistry()
	name, err := FromStruct[account](r)
	require.NoError(t, err)
	assert.Equal(t, "tbl_account", name)
	assert.True(t, r.Has("tbl_account"))
}

func TestFromStruct_Errors(t *testing.T) {
	r := NewRegistry()

	name, err := FromStruct[badTag](r)
	require.NoError(t, err, "unsafe tags are skipped")
	assert.Len(t, r.Columns(name), 1)

	_, err = FromStruct[badOption](r)
	assert.Error(t, err)

	_, err = FromStruct[int](r)
	assert.Error(t, err)

	_, err = FromStruct[struct{ Name string }](r)
	assert.Error(t, err)
}
