package schema

import "slices"

// diffPhase is the position of a diff in the migration. Everything that may be in the
// way of a change is dropped before anything is created, so drop-then-add pairs
// always run in that order.
type diffPhase int

const (
	phaseForeignKeyDrop = diffPhase(iota)
	phaseConstraintDrop
	phaseIndexDrop
	phaseColumnDrop
	phaseTableDrop
	phaseEnumDrop
	phaseEnumCreate
	phaseTableCreate
	phaseColumnAdd
	phaseColumnAlter
	phaseIndexCreate
	phaseConstraintAdd
	phaseForeignKeyAdd
)

func phaseOf(diff SchemaDiff) diffPhase {
	switch diff := diff.(type) {
	case *ConstraintDrop:
		if diff.Type == ConstraintTypeForeignKey {
			return phaseForeignKeyDrop
		}
		return phaseConstraintDrop
	case *IndexDrop:
		return phaseIndexDrop
	case *ColumnDrop:
		return phaseColumnDrop
	case *TableDrop:
		return phaseTableDrop
	case *EnumDrop:
		return phaseEnumDrop
	case *EnumCreate:
		return phaseEnumCreate
	case *TableCreate:
		return phaseTableCreate
	case *ColumnAdd:
		return phaseColumnAdd
	case *ColumnAlter:
		return phaseColumnAlter
	case *IndexCreate:
		return phaseIndexCreate
	case *ConstraintAdd:
		if diff.Constraint.Type == ConstraintTypeForeignKey {
			return phaseForeignKeyAdd
		}
		return phaseConstraintAdd
	default:
		return phaseConstraintAdd
	}
}

// sortDiffs orders diffs by phase, keeping the differ's order within a phase,
// except that created tables follow their foreign key dependencies and dropped
// tables go in the reverse order.
func sortDiffs(diffs []SchemaDiff, source, target *DatabaseSchema) []SchemaDiff {
	sorted := slices.Clone(diffs)
	slices.SortStableFunc(sorted, func(a, b SchemaDiff) int {
		return int(phaseOf(a)) - int(phaseOf(b))
	})

	var creates []*TableCreate
	var drops []*TableDrop
	for _, diff := range sorted {
		switch diff := diff.(type) {
		case *TableCreate:
			creates = append(creates, diff)
		case *TableDrop:
			drops = append(drops, diff)
		}
	}

	creates = sortByDependencies(creates, source, func(d *TableCreate) string { return d.Table.Name })
	drops = sortByDependencies(drops, target, func(d *TableDrop) string { return d.TableName })
	slices.Reverse(drops)

	var createIndex, dropIndex int
	for i, diff := range sorted {
		switch diff.(type) {
		case *TableCreate:
			sorted[i] = creates[createIndex]
			createIndex++
		case *TableDrop:
			sorted[i] = drops[dropIndex]
			dropIndex++
		}
	}
	return sorted
}

// sortByDependencies puts referenced tables before the tables referencing them.
// On circular references the order is left as is.
func sortByDependencies[T any](items []T, s *DatabaseSchema, getName func(T) string) []T {
	if len(items) < 2 {
		return items
	}

	dependencies := make(map[string][]string)
	for _, item := range items {
		name := getName(item)
		table := s.FindTable(name)
		if table == nil {
			continue
		}
		var deps []string
		for _, constraint := range table.Constraints {
			if constraint.Type == ConstraintTypeForeignKey && constraint.ReferenceTableName != name {
				deps = append(deps, constraint.ReferenceTableName)
			}
		}
		dependencies[name] = deps
	}

	sorted := topologicalSort(items, dependencies, getName)
	if len(sorted) == 0 {
		return items
	}
	return sorted
}
