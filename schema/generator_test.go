package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func usersSchema() *DatabaseSchema {
	return &DatabaseSchema{
		Tables: []*Table{
			{
				Name:    "users",
				Columns: []*Column{{Name: "id", Type: "integer"}, {Name: "email", Type: "text"}},
				Constraints: []*Constraint{
					{Type: ConstraintTypePrimaryKey, ColumnNames: []string{"id"}},
				},
			},
		},
	}
}

func TestGenerateMigration(t *testing.T) {
	ddls, err := GenerateMigration(usersSchema(), nil, DiffOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{
		`CREATE TABLE "users" ("id" integer NOT NULL, "email" text NOT NULL);`,
		`ALTER TABLE "users" ADD CONSTRAINT "PK_a3ffb1c0c8416b9fc6f907b7433" PRIMARY KEY ("id");`,
	}, ddls)

	ddls, err = GenerateMigration(nil, usersSchema(), DiffOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{`DROP TABLE "users";`}, ddls)

	ddls, err = GenerateMigration(nil, nil, DiffOptions{})
	require.NoError(t, err)
	assert.Empty(t, ddls)
}

func TestGenerateDiffIsStable(t *testing.T) {
	diffs, err := GenerateDiff(usersSchema(), usersSchema(), DiffOptions{})
	require.NoError(t, err)
	assert.Empty(t, diffs)
}

func TestGenerateDiffDoesNotModifyInputs(t *testing.T) {
	source := usersSchema()
	target := &DatabaseSchema{Tables: []*Table{{Name: "users", Columns: []*Column{{Name: "id", Type: "integer"}}}}}

	diffs, err := GenerateDiff(source, target, DiffOptions{})
	require.NoError(t, err)
	require.Len(t, diffs, 2)

	assert.Equal(t, usersSchema(), source)
	assert.Empty(t, source.Tables[0].Constraints[0].Name)
	assert.Empty(t, source.Tables[0].Columns[0].TableName)
	assert.Empty(t, target.Tables[0].Columns[0].TableName)
}

func TestGenerateDiffRejectsInvalidSchemas(t *testing.T) {
	invalid := &DatabaseSchema{Tables: []*Table{{Name: "users", Columns: []*Column{{Name: "id"}}}}}

	_, err := GenerateDiff(invalid, nil, DiffOptions{})
	assert.EqualError(t, err, "invalid source schema: users.id: column has no type")

	_, err = GenerateDiff(nil, invalid, DiffOptions{})
	assert.EqualError(t, err, "invalid target schema: users.id: column has no type")
}

func TestGeneratorToSQLAbortsOnError(t *testing.T) {
	g := NewGenerator(DiffOptions{})
	ddls, err := g.ToSQL([]SchemaDiff{
		&TableDrop{TableName: "users"},
		unknownDiff{},
	})
	assert.Error(t, err)
	assert.Nil(t, ddls)
}
