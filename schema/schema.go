package schema

import (
	"slices"

	"github.com/sqldef/pgschemadiff/util"
)

// ConstraintType is the kind of a table-level constraint.
type ConstraintType string

const (
	ConstraintTypePrimaryKey ConstraintType = "primary-key"
	ConstraintTypeForeignKey ConstraintType = "foreign-key"
	ConstraintTypeUnique     ConstraintType = "unique"
	ConstraintTypeCheck      ConstraintType = "check"
)

// ActionType is a referential action of a foreign key. An empty value means NO ACTION.
type ActionType string

const (
	ActionTypeNoAction   ActionType = "NO ACTION"
	ActionTypeRestrict   ActionType = "RESTRICT"
	ActionTypeCascade    ActionType = "CASCADE"
	ActionTypeSetNull    ActionType = "SET NULL"
	ActionTypeSetDefault ActionType = "SET DEFAULT"
)

func (a ActionType) orDefault() ActionType {
	if a == "" {
		return ActionTypeNoAction
	}
	return a
}

func (a ActionType) valid() bool {
	switch a.orDefault() {
	case ActionTypeNoAction, ActionTypeRestrict, ActionTypeCascade, ActionTypeSetNull, ActionTypeSetDefault:
		return true
	default:
		return false
	}
}

// Object is anything that can be matched by name between two schemas.
type Object interface {
	GetName() string
	// IsSynchronized reports false only when the object explicitly opted out of diffing.
	IsSynchronized() bool
	GetOverride() *Override
}

// Override is a hand-authored definition. Two objects carrying identical overrides are never diffed.
type Override struct {
	Name  string        `yaml:"name"`
	Value OverrideValue `yaml:"value"`
}

type OverrideValue struct {
	Name string `yaml:"name"`
	SQL  string `yaml:"sql"`
}

// DatabaseSchema is one side of a diff.
type DatabaseSchema struct {
	Name   string   `yaml:"name"`
	Tables []*Table `yaml:"tables"`
	Enums  []*Enum  `yaml:"enums"`
}

type Table struct {
	Name        string        `yaml:"name"`
	Columns     []*Column     `yaml:"columns"`
	Constraints []*Constraint `yaml:"constraints"`
	Indexes     []*Index      `yaml:"indexes"`
	Synchronize *bool         `yaml:"synchronize"`
	Override    *Override     `yaml:"override"`
}

type Column struct {
	TableName string `yaml:"table_name"`
	Name      string `yaml:"name"`
	Type      string `yaml:"type"`
	EnumName  string `yaml:"enum_name"`
	Length    *int   `yaml:"length"`
	IsArray   bool   `yaml:"is_array"`
	Nullable  bool   `yaml:"nullable"`
	// Default is a resolved SQL literal or expression; nil means no default.
	Default     *string   `yaml:"default"`
	Identity    bool      `yaml:"identity"`
	Comment     string    `yaml:"comment"`
	Synchronize *bool     `yaml:"synchronize"`
	Override    *Override `yaml:"override"`
}

type Constraint struct {
	Type        ConstraintType `yaml:"type"`
	Name        string         `yaml:"name"`
	TableName   string         `yaml:"table_name"`
	ColumnNames []string       `yaml:"column_names"`

	// foreign-key only
	ReferenceTableName   string     `yaml:"reference_table_name"`
	ReferenceColumnNames []string   `yaml:"reference_column_names"`
	OnUpdate             ActionType `yaml:"on_update"`
	OnDelete             ActionType `yaml:"on_delete"`

	// check only
	Expression string `yaml:"expression"`

	Synchronize *bool     `yaml:"synchronize"`
	Override    *Override `yaml:"override"`
}

type Index struct {
	Name        string   `yaml:"name"`
	TableName   string   `yaml:"table_name"`
	ColumnNames []string `yaml:"column_names"`
	// Expression replaces ColumnNames when set, e.g. lower("email").
	Expression  string    `yaml:"expression"`
	Unique      bool      `yaml:"unique"`
	Using       string    `yaml:"using"`
	Where       string    `yaml:"where"`
	Synchronize *bool     `yaml:"synchronize"`
	Override    *Override `yaml:"override"`
}

type Enum struct {
	Name        string    `yaml:"name"`
	Values      []string  `yaml:"values"`
	Synchronize *bool     `yaml:"synchronize"`
	Override    *Override `yaml:"override"`
}

func isSynchronized(synchronize *bool) bool {
	return synchronize == nil || *synchronize
}

func (t *Table) GetName() string        { return t.Name }
func (t *Table) IsSynchronized() bool   { return isSynchronized(t.Synchronize) }
func (t *Table) GetOverride() *Override { return t.Override }

func (c *Column) GetName() string        { return c.Name }
func (c *Column) IsSynchronized() bool   { return isSynchronized(c.Synchronize) }
func (c *Column) GetOverride() *Override { return c.Override }

func (c *Constraint) GetName() string        { return c.Name }
func (c *Constraint) IsSynchronized() bool   { return isSynchronized(c.Synchronize) }
func (c *Constraint) GetOverride() *Override { return c.Override }

func (i *Index) GetName() string        { return i.Name }
func (i *Index) IsSynchronized() bool   { return isSynchronized(i.Synchronize) }
func (i *Index) GetOverride() *Override { return i.Override }

func (e *Enum) GetName() string        { return e.Name }
func (e *Enum) IsSynchronized() bool   { return isSynchronized(e.Synchronize) }
func (e *Enum) GetOverride() *Override { return e.Override }

// Bool returns a pointer to b, for Synchronize fields.
func Bool(b bool) *bool {
	return &b
}

// FindTable returns the table with the given name, or nil.
func (s *DatabaseSchema) FindTable(name string) *Table {
	if s == nil {
		return nil
	}
	for _, table := range s.Tables {
		if table.Name == name {
			return table
		}
	}
	return nil
}

// Clone returns a deep copy, so normalization never touches the caller's schema.
func (s *DatabaseSchema) Clone() *DatabaseSchema {
	if s == nil {
		return &DatabaseSchema{}
	}
	clone := &DatabaseSchema{Name: s.Name}
	for _, table := range s.Tables {
		t := *table
		t.Columns = util.TransformSlice(table.Columns, func(c *Column) *Column {
			column := *c
			return &column
		})
		t.Constraints = util.TransformSlice(table.Constraints, func(c *Constraint) *Constraint {
			constraint := *c
			constraint.ColumnNames = slices.Clone(c.ColumnNames)
			constraint.ReferenceColumnNames = slices.Clone(c.ReferenceColumnNames)
			return &constraint
		})
		t.Indexes = util.TransformSlice(table.Indexes, func(i *Index) *Index {
			index := *i
			index.ColumnNames = slices.Clone(i.ColumnNames)
			return &index
		})
		clone.Tables = append(clone.Tables, &t)
	}
	for _, enum := range s.Enums {
		e := *enum
		e.Values = slices.Clone(enum.Values)
		clone.Enums = append(clone.Enums, &e)
	}
	return clone
}
