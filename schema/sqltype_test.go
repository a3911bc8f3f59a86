package schema

import (
	"testing"

	"github.com/zoobzio/dynq/internal/types"
)

func TestKindFromSQL(t *testing.T) {
	tests := []struct {
		sqlType  string
		wantKind types.ScalarKind
		wantSize int
	}{
		{"bigint", types.KindInt64, 0},
		{"INT", types.KindInt32, 0},
		{"smallint", types.KindInt16, 0},
		{"boolean", types.KindBool, 0},
		{"varchar(50)", types.KindString, 50},
		{"NVARCHAR(MAX)", types.KindString, 0},
		{"character varying", types.KindString, 0},
		{"text", types.KindString, 0},
		{"char", types.KindChar, 1},
		{"char(1)", types.KindChar, 1},
		{"char(10)", types.KindString, 10},
		{"NUMBER(10, 2)", types.KindDecimal, 0},
		{"numeric", types.KindDecimal, 0},
		{"double precision", types.KindFloat64, 0},
		{"real", types.KindFloat32, 0},
		{"timestamp with time zone", types.KindDateTime, 0},
		{"datetime2(7)", types.KindDateTime, 0},
		{"uuid", types.KindGUID, 0},
		{"uniqueidentifier", types.KindGUID, 0},
		{"jsonb", types.KindUnknown, 0},
		{"", types.KindUnknown, 0},
	}

	for _, tt := range tests {
		t.Run(tt.sqlType, func(t *testing.T) {
			kind, size := KindFromSQL(tt.sqlType)
			if kind != tt.wantKind || size != tt.wantSize {
				t.Errorf("KindFromSQL(%q) = %v, %d, want %v, %d", tt.sqlType, kind, size, tt.wantKind, tt.wantSize)
			}
		})
	}
}
