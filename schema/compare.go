package schema

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
)

type constraintComparer struct{}

func (constraintComparer) OnMissing(source *Constraint) []SchemaDiff {
	return []SchemaDiff{&ConstraintAdd{Constraint: source, Reason: reasonMissingInTarget}}
}

func (constraintComparer) OnExtra(target *Constraint) []SchemaDiff {
	return []SchemaDiff{dropConstraint(target, reasonMissingInSource)}
}

func (constraintComparer) OnCompare(source, target *Constraint) []SchemaDiff {
	reason := constraintDifference(source, target)
	if reason == "" {
		return nil
	}
	// No DDL alters a constraint in place.
	return []SchemaDiff{
		dropConstraint(target, reason),
		&ConstraintAdd{Constraint: source, Reason: reason},
	}
}

func dropConstraint(constraint *Constraint, reason string) *ConstraintDrop {
	return &ConstraintDrop{
		TableName:      constraint.TableName,
		ConstraintName: constraint.Name,
		Type:           constraint.Type,
		Reason:         reason,
	}
}

// constraintDifference returns why two constraints differ, or "" when they are the same.
func constraintDifference(source, target *Constraint) string {
	if source.Type != target.Type {
		return fmt.Sprintf("constraint type is different (%s vs %s)", source.Type, target.Type)
	}

	switch source.Type {
	case ConstraintTypePrimaryKey, ConstraintTypeUnique:
		if !HaveEqualColumns(source.ColumnNames, target.ColumnNames) {
			return columnsDifference(source.ColumnNames, target.ColumnNames)
		}
	case ConstraintTypeForeignKey:
		if !HaveEqualColumns(source.ColumnNames, target.ColumnNames) {
			return columnsDifference(source.ColumnNames, target.ColumnNames)
		}
		if source.ReferenceTableName != target.ReferenceTableName {
			return fmt.Sprintf("reference table is different (%s vs %s)", source.ReferenceTableName, target.ReferenceTableName)
		}
		if !HaveEqualColumns(source.ReferenceColumnNames, target.ReferenceColumnNames) {
			return fmt.Sprintf("reference columns are different (%s vs %s)",
				asColumnList(source.ReferenceColumnNames), asColumnList(target.ReferenceColumnNames))
		}
		if source.OnUpdate.orDefault() != target.OnUpdate.orDefault() {
			return fmt.Sprintf("ON UPDATE action is different (%s vs %s)", source.OnUpdate.orDefault(), target.OnUpdate.orDefault())
		}
		if source.OnDelete.orDefault() != target.OnDelete.orDefault() {
			return fmt.Sprintf("ON DELETE action is different (%s vs %s)", source.OnDelete.orDefault(), target.OnDelete.orDefault())
		}
	case ConstraintTypeCheck:
		if normalizeExpression(source.Expression) != normalizeExpression(target.Expression) {
			return fmt.Sprintf("check expression is different (%s vs %s)", source.Expression, target.Expression)
		}
	}
	return ""
}

func columnsDifference(source, target []string) string {
	return fmt.Sprintf("columns are different (%s vs %s)", asColumnList(source), asColumnList(target))
}

type indexComparer struct{}

func (indexComparer) OnMissing(source *Index) []SchemaDiff {
	return []SchemaDiff{&IndexCreate{Index: source, Reason: reasonMissingInTarget}}
}

func (indexComparer) OnExtra(target *Index) []SchemaDiff {
	return []SchemaDiff{&IndexDrop{IndexName: target.Name, Reason: reasonMissingInSource}}
}

func (indexComparer) OnCompare(source, target *Index) []SchemaDiff {
	reason := indexDifference(source, target)
	if reason == "" {
		return nil
	}
	return []SchemaDiff{
		&IndexDrop{IndexName: target.Name, Reason: reason},
		&IndexCreate{Index: source, Reason: reason},
	}
}

func indexDifference(source, target *Index) string {
	switch {
	case source.TableName != target.TableName:
		return fmt.Sprintf("table is different (%s vs %s)", source.TableName, target.TableName)
	case normalizeExpression(source.Expression) != normalizeExpression(target.Expression):
		return fmt.Sprintf("expression is different (%s vs %s)", source.Expression, target.Expression)
	case source.Expression == "" && !HaveEqualColumns(source.ColumnNames, target.ColumnNames):
		return columnsDifference(source.ColumnNames, target.ColumnNames)
	case source.Unique != target.Unique:
		return fmt.Sprintf("uniqueness is different (%t vs %t)", source.Unique, target.Unique)
	case normalizeUsing(source.Using) != normalizeUsing(target.Using):
		return fmt.Sprintf("using method is different (%s vs %s)", normalizeUsing(source.Using), normalizeUsing(target.Using))
	case normalizeExpression(source.Where) != normalizeExpression(target.Where):
		return fmt.Sprintf("where clause is different (%s vs %s)", source.Where, target.Where)
	default:
		return ""
	}
}

type columnComparer struct{}

func (columnComparer) OnMissing(source *Column) []SchemaDiff {
	return []SchemaDiff{&ColumnAdd{Column: source, Reason: reasonMissingInTarget}}
}

func (columnComparer) OnExtra(target *Column) []SchemaDiff {
	return []SchemaDiff{&ColumnDrop{TableName: target.TableName, ColumnName: target.Name, Reason: reasonMissingInSource}}
}

func (columnComparer) OnCompare(source, target *Column) []SchemaDiff {
	sourceType := ColumnType(source)
	targetType := ColumnType(target)
	if sourceType != targetType || source.Identity != target.Identity {
		reason := fmt.Sprintf("column type is different (%s vs %s)", sourceType, targetType)
		if sourceType == targetType {
			reason = fmt.Sprintf("identity is different (%t vs %t)", source.Identity, target.Identity)
		}
		return []SchemaDiff{
			&ColumnDrop{TableName: target.TableName, ColumnName: target.Name, Reason: reason},
			&ColumnAdd{Column: source, Reason: reason},
		}
	}

	var items []SchemaDiff
	alter := func(changes ColumnChanges, reason string) {
		items = append(items, &ColumnAlter{
			TableName:  source.TableName,
			ColumnName: source.Name,
			Changes:    changes,
			Reason:     reason,
		})
	}

	if source.Nullable != target.Nullable {
		alter(ColumnChanges{Nullable: Bool(source.Nullable)},
			fmt.Sprintf("nullable is different (%t vs %t)", source.Nullable, target.Nullable))
	}

	if !IsDefaultEqual(source, target) {
		reason := fmt.Sprintf("default is different (%s vs %s)", describeDefault(source.Default), describeDefault(target.Default))
		if source.Default == nil {
			alter(ColumnChanges{DropDefault: true}, reason)
		} else {
			alter(ColumnChanges{Default: source.Default}, reason)
		}
	}

	if source.Comment != target.Comment {
		comment := source.Comment
		alter(ColumnChanges{Comment: &comment},
			fmt.Sprintf("comment is different (%s vs %s)", source.Comment, target.Comment))
	}

	return items
}

func describeDefault(value *string) string {
	if value == nil {
		return "undefined"
	}
	return *value
}

type enumComparer struct{}

func (enumComparer) OnMissing(source *Enum) []SchemaDiff {
	return []SchemaDiff{&EnumCreate{Enum: source, Reason: reasonMissingInTarget}}
}

func (enumComparer) OnExtra(target *Enum) []SchemaDiff {
	return []SchemaDiff{&EnumDrop{EnumName: target.Name, Reason: reasonMissingInSource}}
}

func (enumComparer) OnCompare(source, target *Enum) []SchemaDiff {
	if slices.Equal(source.Values, target.Values) {
		return nil
	}
	reason := fmt.Sprintf("enum values are different (%s vs %s)",
		strings.Join(source.Values, ", "), strings.Join(target.Values, ", "))
	return []SchemaDiff{
		&EnumDrop{EnumName: target.Name, Reason: reason},
		&EnumCreate{Enum: source, Reason: reason},
	}
}

type tableComparer struct {
	options DiffOptions
}

func (c tableComparer) OnMissing(source *Table) []SchemaDiff {
	items := []SchemaDiff{&TableCreate{Table: source, Reason: reasonMissingInTarget}}
	for _, constraint := range source.Constraints {
		if constraint.IsSynchronized() {
			items = append(items, &ConstraintAdd{Constraint: constraint, Reason: reasonMissingInTarget})
		}
	}
	for _, index := range source.Indexes {
		if index.IsSynchronized() {
			items = append(items, &IndexCreate{Index: index, Reason: reasonMissingInTarget})
		}
	}
	return items
}

func (c tableComparer) OnExtra(target *Table) []SchemaDiff {
	return []SchemaDiff{&TableDrop{TableName: target.Name, Reason: reasonMissingInSource}}
}

func (c tableComparer) OnCompare(source, target *Table) []SchemaDiff {
	columns := Compare(source.Columns, target.Columns, c.options.Columns, Comparer[*Column](columnComparer{}))
	constraints := Compare(source.Constraints, target.Constraints, c.options.Constraints, Comparer[*Constraint](constraintComparer{}))
	indexes := Compare(source.Indexes, target.Indexes, c.options.Indexes, Comparer[*Index](indexComparer{}))

	// Dropping a column drops the constraints and indexes using it, so unchanged
	// ones on a recreated column have to be created again.
	for _, name := range recreatedColumns(columns) {
		reason := fmt.Sprintf("column %s is recreated", name)
		constraints = append(constraints, recreateDependents(source.Constraints, target.Constraints, name, constraints,
			func(source, target *Constraint) []SchemaDiff {
				return []SchemaDiff{dropConstraint(target, reason), &ConstraintAdd{Constraint: source, Reason: reason}}
			})...)
		indexes = append(indexes, recreateDependents(source.Indexes, target.Indexes, name, indexes,
			func(source, target *Index) []SchemaDiff {
				return []SchemaDiff{&IndexDrop{IndexName: target.Name, Reason: reason}, &IndexCreate{Index: source, Reason: reason}}
			})...)
	}

	var items []SchemaDiff
	items = append(items, columns...)
	items = append(items, constraints...)
	items = append(items, indexes...)
	return items
}

// recreatedColumns returns the columns that are both dropped and added.
func recreatedColumns(diffs []SchemaDiff) []string {
	dropped := map[string]bool{}
	for _, diff := range diffs {
		if drop, ok := diff.(*ColumnDrop); ok {
			dropped[drop.ColumnName] = true
		}
	}
	var names []string
	for _, diff := range diffs {
		if add, ok := diff.(*ColumnAdd); ok && dropped[add.Column.Name] {
			names = append(names, add.Column.Name)
		}
	}
	return names
}

type columnDependent interface {
	Object
	usesColumn(name string) bool
}

// recreateDependents recreates the objects present on both sides that use column and
// have no action in existing yet.
func recreateDependents[T columnDependent](sources, targets []T, column string, existing []SchemaDiff, recreate func(source, target T) []SchemaDiff) []SchemaDiff {
	handled := map[string]bool{}
	for _, diff := range existing {
		switch diff := diff.(type) {
		case *ConstraintDrop:
			handled[diff.ConstraintName] = true
		case *ConstraintAdd:
			handled[diff.Constraint.Name] = true
		case *IndexDrop:
			handled[diff.IndexName] = true
		case *IndexCreate:
			handled[diff.Index.Name] = true
		}
	}

	var items []SchemaDiff
	for _, target := range targets {
		if handled[target.GetName()] || !target.IsSynchronized() || !target.usesColumn(column) {
			continue
		}
		for _, source := range sources {
			if source.GetName() == target.GetName() && source.IsSynchronized() {
				handled[target.GetName()] = true
				items = append(items, recreate(source, target)...)
				break
			}
		}
	}
	return items
}

func (c *Constraint) usesColumn(name string) bool {
	return slices.Contains(c.ColumnNames, name) || mentionsColumn(c.Expression, name)
}

func (i *Index) usesColumn(name string) bool {
	return slices.Contains(i.ColumnNames, name) || mentionsColumn(i.Expression, name) || mentionsColumn(i.Where, name)
}

// mentionsColumn reports whether a SQL expression refers to the column, bare or quoted.
func mentionsColumn(expression, name string) bool {
	if expression == "" {
		return false
	}
	return regexp.MustCompile(`(^|[^\w"])"?` + regexp.QuoteMeta(name) + `"?($|[^\w"])`).MatchString(expression)
}
