package schema

import (
	"errors"
	"fmt"
)

// Validate rejects descriptions that would render malformed DDL. All problems are reported at once.
func (s *DatabaseSchema) Validate() error {
	if s == nil {
		return nil
	}

	var errs []error
	tableNames := map[string]bool{}
	indexNames := map[string]bool{}
	for _, table := range s.Tables {
		if table.Name == "" {
			errs = append(errs, errors.New("table without a name"))
			continue
		}
		if tableNames[table.Name] {
			errs = append(errs, fmt.Errorf("%s: duplicate table name", table.Name))
		}
		tableNames[table.Name] = true

		columnNames := map[string]bool{}
		for _, column := range table.Columns {
			if err := validateColumn(column); err != nil {
				errs = append(errs, fmt.Errorf("%s.%s: %w", table.Name, column.Name, err))
			}
			if columnNames[column.Name] {
				errs = append(errs, fmt.Errorf("%s.%s: duplicate column name", table.Name, column.Name))
			}
			columnNames[column.Name] = true
		}

		constraintNames := map[string]bool{}
		for _, constraint := range table.Constraints {
			name := ConstraintName(constraint)
			if err := validateConstraint(constraint); err != nil {
				errs = append(errs, fmt.Errorf("%s.%s: %w", table.Name, name, err))
			}
			if constraintNames[name] {
				errs = append(errs, fmt.Errorf("%s.%s: duplicate constraint name", table.Name, name))
			}
			constraintNames[name] = true
		}

		// Index names share the schema namespace in PostgreSQL.
		for _, index := range table.Indexes {
			name := indexNameOf(index)
			if len(index.ColumnNames) == 0 && index.Expression == "" {
				errs = append(errs, fmt.Errorf("%s.%s: index needs columns or an expression", table.Name, name))
			}
			if indexNames[name] {
				errs = append(errs, fmt.Errorf("%s.%s: duplicate index name", table.Name, name))
			}
			indexNames[name] = true
		}
	}

	enumNames := map[string]bool{}
	for _, enum := range s.Enums {
		if enum.Name == "" {
			errs = append(errs, errors.New("enum without a name"))
			continue
		}
		if enumNames[enum.Name] {
			errs = append(errs, fmt.Errorf("%s: duplicate enum name", enum.Name))
		}
		enumNames[enum.Name] = true
		if len(enum.Values) == 0 {
			errs = append(errs, fmt.Errorf("%s: enum has no values", enum.Name))
		}
	}

	return errors.Join(errs...)
}

func validateColumn(column *Column) error {
	if column.Name == "" {
		return errors.New("column without a name")
	}
	if column.Type == "" && column.EnumName == "" {
		return errors.New("column has no type")
	}
	return nil
}

func validateConstraint(constraint *Constraint) error {
	switch constraint.Type {
	case ConstraintTypePrimaryKey, ConstraintTypeUnique:
		if len(constraint.ColumnNames) == 0 {
			return errors.New("constraint has no columns")
		}
	case ConstraintTypeForeignKey:
		if len(constraint.ColumnNames) == 0 {
			return errors.New("constraint has no columns")
		}
		if constraint.ReferenceTableName == "" {
			return errors.New("foreign key has no reference table")
		}
		if len(constraint.ColumnNames) != len(constraint.ReferenceColumnNames) {
			return fmt.Errorf("foreign key has %d columns but references %d",
				len(constraint.ColumnNames), len(constraint.ReferenceColumnNames))
		}
		if !constraint.OnUpdate.valid() {
			return fmt.Errorf("unknown referential action: %q", constraint.OnUpdate)
		}
		if !constraint.OnDelete.valid() {
			return fmt.Errorf("unknown referential action: %q", constraint.OnDelete)
		}
	case ConstraintTypeCheck:
		if constraint.Expression == "" {
			return errors.New("check constraint has no expression")
		}
	default:
		return fmt.Errorf("unknown constraint type: %q", constraint.Type)
	}
	return nil
}
