package schema

import "fmt"

func constraintAdd(constraint *Constraint) (string, error) {
	body, err := constraintBody(constraint)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("ALTER TABLE %s ADD %s;", escapeSQLName(constraint.TableName), body), nil
}

func constraintDrop(tableName, constraintName string) string {
	return fmt.Sprintf("ALTER TABLE %s DROP CONSTRAINT %s;", escapeSQLName(tableName), escapeSQLName(constraintName))
}

// constraintBody renders `CONSTRAINT "name" <definition>`. An unknown type means the
// model and the renderer disagree, and is reported as an error.
func constraintBody(constraint *Constraint) (string, error) {
	base := "CONSTRAINT " + escapeSQLName(ConstraintName(constraint))

	switch constraint.Type {
	case ConstraintTypePrimaryKey:
		return fmt.Sprintf("%s PRIMARY KEY (%s)", base, asColumnList(constraint.ColumnNames)), nil
	case ConstraintTypeForeignKey:
		return fmt.Sprintf("%s FOREIGN KEY (%s) REFERENCES %s (%s) ON UPDATE %s ON DELETE %s",
			base,
			asColumnList(constraint.ColumnNames),
			escapeSQLName(constraint.ReferenceTableName),
			asColumnList(constraint.ReferenceColumnNames),
			constraint.OnUpdate.orDefault(),
			constraint.OnDelete.orDefault(),
		), nil
	case ConstraintTypeUnique:
		return fmt.Sprintf("%s UNIQUE (%s)", base, asColumnList(constraint.ColumnNames)), nil
	case ConstraintTypeCheck:
		return fmt.Sprintf("%s CHECK (%s)", base, constraint.Expression), nil
	default:
		return "", fmt.Errorf("unknown constraint type: %q", constraint.Type)
	}
}
