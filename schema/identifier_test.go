package schema

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKey(t *testing.T) {
	tests := []struct {
		name     string
		prefix   string
		table    string
		values   []string
		expected string
	}{
		// TypeORM names the primary key of user(id) this way.
		{name: "primary key", prefix: "PK_", table: "user", values: []string{"id"}, expected: "PK_cace4a159ff9f2512dd42373760"},
		{name: "unique", prefix: "UQ_", table: "users", values: []string{"email"}, expected: "UQ_97672ac88f789774dd47f7c8be3"},
		{name: "foreign key", prefix: "FK_", table: "orders", values: []string{"user_id"}, expected: "FK_a922b820eeef29ac1c6800e826a"},
		{name: "index", prefix: "IDX_", table: "orders", values: []string{"amount"}, expected: "IDX_d9646fa67dbabdf6c6aa7e6b2f"},
		{name: "multiple columns", prefix: "UQ_", table: "orders", values: []string{"user_id", "amount"}, expected: "UQ_54a7737f8cc015306f05a5e9af8"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Key(tt.prefix, tt.table, tt.values))
		})
	}
}

func TestKeyProperties(t *testing.T) {
	values := []string{"tenant_id", "user_id", "created_at"}

	assert.Equal(t, Key("IDX_", "events", values), Key("IDX_", "events", []string{"created_at", "tenant_id", "user_id"}))
	assert.Equal(t, []string{"tenant_id", "user_id", "created_at"}, values, "input must not be reordered")
	assert.NotEqual(t, Key("IDX_", "events", values), Key("IDX_", "events_archive", values))
	assert.NotEqual(t, Key("UQ_", "events", values), Key("IDX_", "events", values))

	for _, prefix := range []string{"PK_", "FK_", "UQ_", "CHK_", "IDX_", ""} {
		key := Key(prefix, "a_table_with_a_rather_long_name", values)
		assert.Len(t, key, maxKeyLength)
		assert.True(t, strings.HasPrefix(key, prefix))
	}
}

func TestConstraintName(t *testing.T) {
	tests := []struct {
		name       string
		constraint *Constraint
		expected   string
	}{
		{
			name:       "explicit",
			constraint: &Constraint{Type: ConstraintTypePrimaryKey, Name: "PK_users", TableName: "users", ColumnNames: []string{"id"}},
			expected:   "PK_users",
		},
		{
			name:       "primary key",
			constraint: &Constraint{Type: ConstraintTypePrimaryKey, TableName: "user", ColumnNames: []string{"id"}},
			expected:   "PK_cace4a159ff9f2512dd42373760",
		},
		{
			name:       "foreign key",
			constraint: &Constraint{Type: ConstraintTypeForeignKey, TableName: "orders", ColumnNames: []string{"user_id"}},
			expected:   ForeignKeyName("orders", []string{"user_id"}),
		},
		{
			name:       "unique",
			constraint: &Constraint{Type: ConstraintTypeUnique, TableName: "users", ColumnNames: []string{"email"}},
			expected:   "UQ_97672ac88f789774dd47f7c8be3",
		},
		{
			name:       "check",
			constraint: &Constraint{Type: ConstraintTypeCheck, TableName: "orders", Expression: "amount > 0"},
			expected:   "CHK_18fabf49aab551da5a228e305b",
		},
		{
			name:       "unknown type",
			constraint: &Constraint{Type: "exclusion", TableName: "orders", ColumnNames: []string{"period"}},
			expected:   "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ConstraintName(tt.constraint))
		})
	}
}

func TestIndexName(t *testing.T) {
	assert.Equal(t, "IDX_d9646fa67dbabdf6c6aa7e6b2f", IndexName("orders", []string{"amount"}, ""))
	assert.Equal(t, "IDX_1662e4f3f2d295209ce2da2781", IndexName("users", []string{"email"}, "lower(email)"))
}

func TestAssignNames(t *testing.T) {
	s := &DatabaseSchema{Tables: []*Table{{
		Name:    "orders",
		Columns: []*Column{{Name: "amount", Type: "integer"}},
		Constraints: []*Constraint{
			{Type: ConstraintTypeCheck, Expression: "amount > 0"},
			{Type: ConstraintTypeUnique, Name: "orders_amount_key", ColumnNames: []string{"amount"}},
		},
		Indexes: []*Index{{ColumnNames: []string{"amount"}}},
	}}}
	s.AssignNames()

	table := s.Tables[0]
	assert.Equal(t, "orders", table.Columns[0].TableName)
	assert.Equal(t, "orders", table.Constraints[0].TableName)
	assert.Equal(t, "CHK_18fabf49aab551da5a228e305b", table.Constraints[0].Name)
	assert.Equal(t, "orders_amount_key", table.Constraints[1].Name)
	assert.Equal(t, "orders", table.Indexes[0].TableName)
	assert.Equal(t, "IDX_d9646fa67dbabdf6c6aa7e6b2f", table.Indexes[0].Name)

	var empty *DatabaseSchema
	empty.AssignNames()
}
