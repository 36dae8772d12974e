package file

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/goccy/go-yaml"
	"github.com/sqldef/pgschemadiff/schema"
)

// The file format mirrors what entity declarations carry: column-level shorthands for
// primary keys, unique keys and references, and defaults given as plain YAML scalars.
type schemaFile struct {
	Name   string      `yaml:"name"`
	Tables []tableFile `yaml:"tables"`
	Enums  []enumFile  `yaml:"enums"`
}

type tableFile struct {
	Name        string               `yaml:"name"`
	Columns     []columnFile         `yaml:"columns"`
	Constraints []*schema.Constraint `yaml:"constraints"`
	Indexes     []*schema.Index      `yaml:"indexes"`
	Synchronize *bool                `yaml:"synchronize"`
	Override    *schema.Override     `yaml:"override"`
}

type columnFile struct {
	Name     string `yaml:"name"`
	Type     string `yaml:"type"`
	Enum     string `yaml:"enum"`
	Length   *int   `yaml:"length"`
	Array    bool   `yaml:"array"`
	Nullable bool   `yaml:"nullable"`
	// Default is a YAML scalar turned into a SQL literal; DefaultSQL is used verbatim.
	Default     any              `yaml:"default"`
	DefaultSQL  string           `yaml:"default_sql"`
	Identity    bool             `yaml:"identity"`
	Comment     string           `yaml:"comment"`
	Primary     bool             `yaml:"primary"`
	Unique      bool             `yaml:"unique"`
	References  *referenceFile   `yaml:"references"`
	Synchronize *bool            `yaml:"synchronize"`
	Override    *schema.Override `yaml:"override"`
}

type referenceFile struct {
	Table    string            `yaml:"table"`
	Column   string            `yaml:"column"`
	OnUpdate schema.ActionType `yaml:"on_update"`
	OnDelete schema.ActionType `yaml:"on_delete"`
}

type enumFile struct {
	Name        string           `yaml:"name"`
	Values      []string         `yaml:"values"`
	Synchronize *bool            `yaml:"synchronize"`
	Override    *schema.Override `yaml:"override"`
}

// ParseSchema decodes a YAML schema description. Unknown keys are rejected, and an
// empty document is an empty schema.
func ParseSchema(buf []byte) (*schema.DatabaseSchema, error) {
	var f schemaFile
	dec := yaml.NewDecoder(bytes.NewReader(buf), yaml.DisallowUnknownField())
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}

	s := &schema.DatabaseSchema{Name: f.Name}
	for _, e := range f.Enums {
		s.Enums = append(s.Enums, &schema.Enum{
			Name:        e.Name,
			Values:      e.Values,
			Synchronize: e.Synchronize,
			Override:    e.Override,
		})
	}
	for _, t := range f.Tables {
		table, err := t.toTable()
		if err != nil {
			return nil, err
		}
		s.Tables = append(s.Tables, table)
	}
	return s, nil
}

func (t tableFile) toTable() (*schema.Table, error) {
	table := &schema.Table{
		Name:        t.Name,
		Constraints: t.Constraints,
		Indexes:     t.Indexes,
		Synchronize: t.Synchronize,
		Override:    t.Override,
	}

	var primaryColumns []string
	for _, c := range t.Columns {
		column, err := c.toColumn(t.Name)
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", t.Name, c.Name, err)
		}
		table.Columns = append(table.Columns, column)

		if c.Primary {
			primaryColumns = append(primaryColumns, c.Name)
		}
		if c.Unique {
			table.Constraints = append(table.Constraints, &schema.Constraint{
				Type:        schema.ConstraintTypeUnique,
				TableName:   t.Name,
				ColumnNames: []string{c.Name},
			})
		}
		if c.References != nil {
			table.Constraints = append(table.Constraints, &schema.Constraint{
				Type:                 schema.ConstraintTypeForeignKey,
				TableName:            t.Name,
				ColumnNames:          []string{c.Name},
				ReferenceTableName:   c.References.Table,
				ReferenceColumnNames: []string{c.References.Column},
				OnUpdate:             c.References.OnUpdate,
				OnDelete:             c.References.OnDelete,
			})
		}
	}

	if len(primaryColumns) > 0 {
		table.Constraints = append(table.Constraints, &schema.Constraint{
			Type:        schema.ConstraintTypePrimaryKey,
			TableName:   t.Name,
			ColumnNames: primaryColumns,
		})
	}
	return table, nil
}

func (c columnFile) toColumn(tableName string) (*schema.Column, error) {
	column := &schema.Column{
		TableName:   tableName,
		Name:        c.Name,
		Type:        c.Type,
		EnumName:    c.Enum,
		Length:      c.Length,
		IsArray:     c.Array,
		Nullable:    c.Nullable && !c.Primary,
		Identity:    c.Identity,
		Comment:     c.Comment,
		Synchronize: c.Synchronize,
		Override:    c.Override,
	}
	if c.Enum != "" && c.Type == "" {
		column.Type = "enum"
	}

	switch {
	case c.DefaultSQL != "" && c.Default != nil:
		return nil, fmt.Errorf("default and default_sql are exclusive")
	case c.DefaultSQL != "":
		column.Default = schema.DefaultOf(schema.RawValue(c.DefaultSQL))
	default:
		value, err := schema.NewColumnValue(c.Default)
		if err != nil {
			return nil, err
		}
		column.Default = schema.DefaultOf(value)
	}
	return column, nil
}
