package schema

// DiffType names a concrete SchemaDiff.
type DiffType string

const (
	DiffTypeTableCreate    DiffType = "TableCreate"
	DiffTypeTableDrop      DiffType = "TableDrop"
	DiffTypeColumnAdd      DiffType = "ColumnAdd"
	DiffTypeColumnAlter    DiffType = "ColumnAlter"
	DiffTypeColumnDrop     DiffType = "ColumnDrop"
	DiffTypeConstraintAdd  DiffType = "ConstraintAdd"
	DiffTypeConstraintDrop DiffType = "ConstraintDrop"
	DiffTypeIndexCreate    DiffType = "IndexCreate"
	DiffTypeIndexDrop      DiffType = "IndexDrop"
	DiffTypeEnumCreate     DiffType = "EnumCreate"
	DiffTypeEnumDrop       DiffType = "EnumDrop"
)

// Action is the class of a diff: something to add, drop, or change in place.
type Action int

const (
	ActionAdd = Action(iota)
	ActionDrop
	ActionAlter
)

func (a Action) String() string {
	switch a {
	case ActionAdd:
		return "add"
	case ActionDrop:
		return "drop"
	case ActionAlter:
		return "alter"
	default:
		return "unknown"
	}
}

// SchemaDiff is one reconciling action produced by the differ.
type SchemaDiff interface {
	DiffType() DiffType
	Action() Action
	// GetReason explains why the action was generated.
	GetReason() string
}

type TableCreate struct {
	Table  *Table
	Reason string
}

type TableDrop struct {
	TableName string
	Reason    string
}

type ColumnAdd struct {
	Column *Column
	Reason string
}

// ColumnChanges lists the in-place changes of a column. nil fields are unchanged.
type ColumnChanges struct {
	Nullable *bool
	// Default is the new default; DropDefault removes it.
	Default     *string
	DropDefault bool
	Comment     *string
}

type ColumnAlter struct {
	TableName  string
	ColumnName string
	Changes    ColumnChanges
	Reason     string
}

type ColumnDrop struct {
	TableName  string
	ColumnName string
	Reason     string
}

type ConstraintAdd struct {
	Constraint *Constraint
	Reason     string
}

type ConstraintDrop struct {
	TableName      string
	ConstraintName string
	// Type is the type of the dropped constraint; it only affects ordering.
	Type   ConstraintType
	Reason string
}

type IndexCreate struct {
	Index  *Index
	Reason string
}

type IndexDrop struct {
	IndexName string
	Reason    string
}

type EnumCreate struct {
	Enum   *Enum
	Reason string
}

type EnumDrop struct {
	EnumName string
	Reason   string
}

func (d *TableCreate) DiffType() DiffType    { return DiffTypeTableCreate }
func (d *TableDrop) DiffType() DiffType      { return DiffTypeTableDrop }
func (d *ColumnAdd) DiffType() DiffType      { return DiffTypeColumnAdd }
func (d *ColumnAlter) DiffType() DiffType    { return DiffTypeColumnAlter }
func (d *ColumnDrop) DiffType() DiffType     { return DiffTypeColumnDrop }
func (d *ConstraintAdd) DiffType() DiffType  { return DiffTypeConstraintAdd }
func (d *ConstraintDrop) DiffType() DiffType { return DiffTypeConstraintDrop }
func (d *IndexCreate) DiffType() DiffType    { return DiffTypeIndexCreate }
func (d *IndexDrop) DiffType() DiffType      { return DiffTypeIndexDrop }
func (d *EnumCreate) DiffType() DiffType     { return DiffTypeEnumCreate }
func (d *EnumDrop) DiffType() DiffType       { return DiffTypeEnumDrop }

func (d *TableCreate) Action() Action    { return ActionAdd }
func (d *TableDrop) Action() Action      { return ActionDrop }
func (d *ColumnAdd) Action() Action      { return ActionAdd }
func (d *ColumnAlter) Action() Action    { return ActionAlter }
func (d *ColumnDrop) Action() Action     { return ActionDrop }
func (d *ConstraintAdd) Action() Action  { return ActionAdd }
func (d *ConstraintDrop) Action() Action { return ActionDrop }
func (d *IndexCreate) Action() Action    { return ActionAdd }
func (d *IndexDrop) Action() Action      { return ActionDrop }
func (d *EnumCreate) Action() Action     { return ActionAdd }
func (d *EnumDrop) Action() Action       { return ActionDrop }

func (d *TableCreate) GetReason() string    { return d.Reason }
func (d *TableDrop) GetReason() string      { return d.Reason }
func (d *ColumnAdd) GetReason() string      { return d.Reason }
func (d *ColumnAlter) GetReason() string    { return d.Reason }
func (d *ColumnDrop) GetReason() string     { return d.Reason }
func (d *ConstraintAdd) GetReason() string  { return d.Reason }
func (d *ConstraintDrop) GetReason() string { return d.Reason }
func (d *IndexCreate) GetReason() string    { return d.Reason }
func (d *IndexDrop) GetReason() string      { return d.Reason }
func (d *EnumCreate) GetReason() string     { return d.Reason }
func (d *EnumDrop) GetReason() string       { return d.Reason }

const (
	reasonMissingInTarget = "missing in target"
	reasonMissingInSource = "missing in source"
)
