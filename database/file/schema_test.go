package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/sqldef/pgschemadiff/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestParseSchemaShorthands(t *testing.T) {
	s, err := ParseSchema([]byte(`
name: app
enums:
  - name: mood
    values: [happy, sad]
tables:
  - name: orders
    synchronize: false
    columns:
      - name: id
        type: integer
        primary: true
        nullable: true
      - name: user_id
        type: integer
        unique: true
        references:
          table: users
          column: id
          on_delete: CASCADE
      - name: mood
        enum: mood
        nullable: true
        default: happy
      - name: created_at
        type: timestamp with time zone
        default_sql: now()
      - name: tags
        type: text
        array: true
        comment: free-form
    indexes:
      - name: IDX_orders_mood
        column_names: [mood]
`))
	require.NoError(t, err)

	assert.Equal(t, &schema.DatabaseSchema{
		Name:  "app",
		Enums: []*schema.Enum{{Name: "mood", Values: []string{"happy", "sad"}}},
		Tables: []*schema.Table{
			{
				Name:        "orders",
				Synchronize: schema.Bool(false),
				Columns: []*schema.Column{
					{TableName: "orders", Name: "id", Type: "integer"},
					{TableName: "orders", Name: "user_id", Type: "integer"},
					{TableName: "orders", Name: "mood", Type: "enum", EnumName: "mood", Nullable: true, Default: strPtr("'happy'")},
					{TableName: "orders", Name: "created_at", Type: "timestamp with time zone", Default: strPtr("now()")},
					{TableName: "orders", Name: "tags", Type: "text", IsArray: true, Comment: "free-form"},
				},
				Constraints: []*schema.Constraint{
					{Type: schema.ConstraintTypeUnique, TableName: "orders", ColumnNames: []string{"user_id"}},
					{
						Type:                 schema.ConstraintTypeForeignKey,
						TableName:            "orders",
						ColumnNames:          []string{"user_id"},
						ReferenceTableName:   "users",
						ReferenceColumnNames: []string{"id"},
						OnDelete:             schema.ActionTypeCascade,
					},
					{Type: schema.ConstraintTypePrimaryKey, TableName: "orders", ColumnNames: []string{"id"}},
				},
				Indexes: []*schema.Index{{Name: "IDX_orders_mood", ColumnNames: []string{"mood"}}},
			},
		},
	}, s)
}

func TestParseSchemaDefaults(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		expected *string
	}{
		{name: "string", value: "'it''s'", expected: strPtr("'it''s'")},
		{name: "integer", value: "42", expected: strPtr("42")},
		{name: "float", value: "1.5", expected: strPtr("1.5")},
		{name: "boolean", value: "true", expected: strPtr("true")},
		{name: "null", value: "null", expected: nil},
		{name: "mapping", value: "{theme: dark, size: 2}", expected: strPtr(`'{"size":2,"theme":"dark"}'::jsonb`)},
		{name: "sequence", value: "[a, b]", expected: strPtr(`'["a","b"]'::jsonb`)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := ParseSchema([]byte("tables:\n  - name: t\n    columns:\n      - name: c\n        type: text\n        default: " + tt.value + "\n"))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, s.Tables[0].Columns[0].Default)
		})
	}
}

func TestParseSchemaErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		err  string
	}{
		{
			name: "exclusive defaults",
			yaml: "tables:\n  - name: t\n    columns:\n      - name: c\n        type: text\n        default: x\n        default_sql: now()\n",
			err:  "t.c: default and default_sql are exclusive",
		},
		{
			name: "unknown field",
			yaml: "tables:\n  - name: t\n    colums: []\n",
		},
		{
			name: "malformed",
			yaml: "tables: [\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSchema([]byte(tt.yaml))
			require.Error(t, err)
			if tt.err != "" {
				assert.EqualError(t, err, tt.err)
			}
		})
	}
}

func TestParseSchemaEmptyDocument(t *testing.T) {
	for _, doc := range []string{"", "\n"} {
		s, err := ParseSchema([]byte(doc))
		require.NoError(t, err)
		assert.Equal(t, &schema.DatabaseSchema{}, s)
	}
}

func TestDatabases(t *testing.T) {
	yaml := "tables:\n  - name: users\n    columns:\n      - name: id\n        type: integer\n"
	path := filepath.Join(t.TempDir(), "schema.yml")
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	db := NewDatabase(path)
	fromFile, err := db.ExportSchema(context.Background())
	require.NoError(t, err)
	require.NoError(t, db.Close())

	fromString, err := StringDatabase(yaml).ExportSchema(context.Background())
	require.NoError(t, err)

	assert.Equal(t, fromString, fromFile)
	assert.Equal(t, "users", fromFile.Tables[0].Name)

	_, err = NewDatabase(filepath.Join(t.TempDir(), "missing.yml")).ExportSchema(context.Background())
	assert.Error(t, err)
}
