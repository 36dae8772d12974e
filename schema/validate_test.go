package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidate(t *testing.T) {
	column := func(name string) *Column { return &Column{Name: name, Type: "integer"} }

	tests := []struct {
		name   string
		schema *DatabaseSchema
		errors []string
	}{
		{name: "nil"},
		{
			name: "valid",
			schema: &DatabaseSchema{
				Tables: []*Table{{
					Name:    "orders",
					Columns: []*Column{column("id"), column("user_id")},
					Constraints: []*Constraint{
						{Type: ConstraintTypePrimaryKey, ColumnNames: []string{"id"}},
						{Type: ConstraintTypeForeignKey, ColumnNames: []string{"user_id"}, ReferenceTableName: "users", ReferenceColumnNames: []string{"id"}, OnDelete: ActionTypeCascade},
						{Type: ConstraintTypeCheck, Expression: "id > 0"},
					},
					Indexes: []*Index{{ColumnNames: []string{"user_id"}}, {Expression: "(id + 1)"}},
				}},
				Enums: []*Enum{{Name: "mood", Values: []string{"happy"}}},
			},
		},
		{
			name: "tables",
			schema: &DatabaseSchema{Tables: []*Table{
				{Name: ""},
				{Name: "users"},
				{Name: "users"},
			}},
			errors: []string{"table without a name", "users: duplicate table name"},
		},
		{
			name: "columns",
			schema: &DatabaseSchema{Tables: []*Table{{
				Name:    "users",
				Columns: []*Column{{Name: "id"}, column("name"), column("name"), {Name: "role", EnumName: "user_role_enum"}},
			}}},
			errors: []string{"users.id: column has no type", "users.name: duplicate column name"},
		},
		{
			name: "constraints",
			schema: &DatabaseSchema{Tables: []*Table{{
				Name:    "orders",
				Columns: []*Column{column("id")},
				Constraints: []*Constraint{
					{Type: ConstraintTypePrimaryKey, Name: "pk"},
					{Type: ConstraintTypeUnique, Name: "pk", ColumnNames: []string{"id"}},
					{Type: ConstraintTypeForeignKey, Name: "fk1", ColumnNames: []string{"id"}},
					{Type: ConstraintTypeForeignKey, Name: "fk2", ColumnNames: []string{"id"}, ReferenceTableName: "users"},
					{Type: ConstraintTypeForeignKey, Name: "fk3", ColumnNames: []string{"id"}, ReferenceTableName: "users", ReferenceColumnNames: []string{"id"}, OnUpdate: "EXPLODE"},
					{Type: ConstraintTypeCheck, Name: "chk"},
					{Type: "exclusion", Name: "ex"},
				},
			}}},
			errors: []string{
				"orders.pk: constraint has no columns",
				"orders.pk: duplicate constraint name",
				"orders.fk1: foreign key has no reference table",
				"orders.fk2: foreign key has 1 columns but references 0",
				`orders.fk3: unknown referential action: "EXPLODE"`,
				"orders.chk: check constraint has no expression",
				`orders.ex: unknown constraint type: "exclusion"`,
			},
		},
		{
			name: "indexes share one namespace",
			schema: &DatabaseSchema{Tables: []*Table{
				{Name: "a", Columns: []*Column{column("id")}, Indexes: []*Index{{Name: "idx", ColumnNames: []string{"id"}}}},
				{Name: "b", Columns: []*Column{column("id")}, Indexes: []*Index{{Name: "idx", ColumnNames: []string{"id"}}, {Name: "empty"}}},
			}},
			errors: []string{"b.idx: duplicate index name", "b.empty: index needs columns or an expression"},
		},
		{
			name: "enums",
			schema: &DatabaseSchema{Enums: []*Enum{
				{Name: ""},
				{Name: "mood", Values: []string{"happy"}},
				{Name: "mood", Values: []string{"sad"}},
				{Name: "empty"},
			}},
			errors: []string{"enum without a name", "mood: duplicate enum name", "empty: enum has no values"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.schema.Validate()
			if len(tt.errors) == 0 {
				assert.NoError(t, err)
				return
			}
			if assert.Error(t, err) {
				for _, expected := range tt.errors {
					assert.Contains(t, err.Error(), expected)
				}
			}
		})
	}
}
