package pgschemadiff_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/sqldef/pgschemadiff"
	"github.com/sqldef/pgschemadiff/database"
	"github.com/sqldef/pgschemadiff/schema"
	"github.com/sqldef/pgschemadiff/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationCases(t *testing.T) {
	tests, err := testutil.ReadTests("testdata/*.yml")
	require.NoError(t, err)
	require.NotEmpty(t, tests)

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			testutil.RunTest(t, test)
		})
	}
}

func TestParseFiles(t *testing.T) {
	tests := []struct {
		name    string
		files   []string
		desired string
		current string
		wantErr bool
	}{
		{name: "stdin", files: []string{"-"}, desired: "-"},
		{name: "desired only", files: []string{"desired.yml"}, desired: "desired.yml"},
		{name: "current and desired", files: []string{"current.yml", "desired.yml"}, desired: "desired.yml", current: "current.yml"},
		{name: "none", files: nil, wantErr: true},
		{name: "too many", files: []string{"a.yml", "b.yml", "c.yml"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			desired, current, err := pgschemadiff.ParseFiles(tt.files)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.desired, desired)
			assert.Equal(t, tt.current, current)
		})
	}
}

type staticDatabase struct {
	schema *schema.DatabaseSchema
	err    error
}

func (d staticDatabase) ExportSchema(ctx context.Context) (*schema.DatabaseSchema, error) {
	return d.schema, d.err
}

func (d staticDatabase) Close() error {
	return nil
}

func TestRun(t *testing.T) {
	desired := staticDatabase{schema: &schema.DatabaseSchema{
		Tables: []*schema.Table{{
			Name:    "users",
			Columns: []*schema.Column{{Name: "id", Type: "integer"}},
			Constraints: []*schema.Constraint{
				{Type: schema.ConstraintTypePrimaryKey, Name: "PK_users", ColumnNames: []string{"id"}},
			},
		}},
	}}

	t.Run("prints the migration", func(t *testing.T) {
		var out bytes.Buffer
		err := pgschemadiff.Run(context.Background(), desired, staticDatabase{}, database.WriterLogger{W: &out}, &pgschemadiff.Options{})
		require.NoError(t, err)
		assert.Equal(t, "CREATE TABLE \"users\" (\"id\" integer NOT NULL);\n"+
			"ALTER TABLE \"users\" ADD CONSTRAINT \"PK_users\" PRIMARY KEY (\"id\");\n", out.String())
	})

	t.Run("nothing is modified", func(t *testing.T) {
		var out bytes.Buffer
		err := pgschemadiff.Run(context.Background(), desired, desired, database.WriterLogger{W: &out}, &pgschemadiff.Options{Check: true})
		require.NoError(t, err)
		assert.Equal(t, "-- Nothing is modified --\n", out.String())
	})

	t.Run("colored output keeps the statements", func(t *testing.T) {
		var out bytes.Buffer
		err := pgschemadiff.Run(context.Background(), desired, staticDatabase{}, database.WriterLogger{W: &out}, &pgschemadiff.Options{Color: true})
		require.NoError(t, err)
		assert.Contains(t, out.String(), "\x1b[")
		assert.Contains(t, out.String(), "PRIMARY")
	})

	t.Run("debug dump does not change the output", func(t *testing.T) {
		var out bytes.Buffer
		err := pgschemadiff.Run(context.Background(), desired, staticDatabase{}, database.WriterLogger{W: &out}, &pgschemadiff.Options{Debug: true})
		require.NoError(t, err)
		assert.Equal(t, "CREATE TABLE \"users\" (\"id\" integer NOT NULL);\n"+
			"ALTER TABLE \"users\" ADD CONSTRAINT \"PK_users\" PRIMARY KEY (\"id\");\n", out.String())
	})

	t.Run("export errors are wrapped", func(t *testing.T) {
		failing := staticDatabase{err: errors.New("connection refused")}
		err := pgschemadiff.Run(context.Background(), failing, desired, database.NullLogger{}, &pgschemadiff.Options{})
		assert.EqualError(t, err, "reading desired schema: connection refused")

		err = pgschemadiff.Run(context.Background(), desired, failing, database.NullLogger{}, &pgschemadiff.Options{})
		assert.EqualError(t, err, "reading current schema: connection refused")
	})

	t.Run("invalid schemas are rejected", func(t *testing.T) {
		var out bytes.Buffer
		invalid := staticDatabase{schema: &schema.DatabaseSchema{
			Tables: []*schema.Table{{
				Name:    "users",
				Columns: []*schema.Column{{Name: "id"}},
			}},
		}}
		err := pgschemadiff.Run(context.Background(), invalid, staticDatabase{}, database.WriterLogger{W: &out}, &pgschemadiff.Options{})
		assert.EqualError(t, err, "invalid source schema: users.id: column has no type")
		assert.Empty(t, out.String())
	})
}

func TestHighlight(t *testing.T) {
	var b strings.Builder
	require.NoError(t, pgschemadiff.Highlight(&b, `DROP TABLE "users";`))
	assert.Contains(t, b.String(), "\x1b[")
	assert.Contains(t, b.String(), "DROP")
}
