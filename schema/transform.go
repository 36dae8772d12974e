package schema

import (
	"fmt"
	"strings"

	"github.com/sqldef/pgschemadiff/util"
)

// ToSQL renders one diff into complete, semicolon-terminated statements.
func ToSQL(diff SchemaDiff) ([]string, error) {
	switch diff := diff.(type) {
	case *TableCreate:
		return tableCreate(diff.Table), nil
	case *TableDrop:
		return []string{fmt.Sprintf("DROP TABLE %s;", escapeSQLName(diff.TableName))}, nil
	case *ColumnAdd:
		return columnAdd(diff.Column), nil
	case *ColumnAlter:
		return columnAlter(diff.TableName, diff.ColumnName, diff.Changes), nil
	case *ColumnDrop:
		return []string{fmt.Sprintf("ALTER TABLE %s DROP COLUMN %s;", escapeSQLName(diff.TableName), escapeSQLName(diff.ColumnName))}, nil
	case *ConstraintAdd:
		ddl, err := constraintAdd(diff.Constraint)
		if err != nil {
			return nil, err
		}
		return []string{ddl}, nil
	case *ConstraintDrop:
		return []string{constraintDrop(diff.TableName, diff.ConstraintName)}, nil
	case *IndexCreate:
		return []string{indexCreate(diff.Index)}, nil
	case *IndexDrop:
		return []string{fmt.Sprintf("DROP INDEX %s;", escapeSQLName(diff.IndexName))}, nil
	case *EnumCreate:
		values := strings.Join(util.TransformSlice(diff.Enum.Values, StringConstant), ", ")
		return []string{fmt.Sprintf("CREATE TYPE %s AS ENUM (%s);", escapeSQLName(diff.Enum.Name), values)}, nil
	case *EnumDrop:
		return []string{fmt.Sprintf("DROP TYPE %s;", escapeSQLName(diff.EnumName))}, nil
	default:
		return nil, fmt.Errorf("unexpected diff type in ToSQL: %T", diff)
	}
}

func tableCreate(table *Table) []string {
	columns := util.TransformSlice(table.Columns, columnDefinition)
	ddls := []string{fmt.Sprintf("CREATE TABLE %s (%s);", escapeSQLName(table.Name), strings.Join(columns, ", "))}
	for _, column := range table.Columns {
		if column.Comment != "" {
			ddls = append(ddls, columnComment(table.Name, column.Name, column.Comment))
		}
	}
	return ddls
}

func columnAdd(column *Column) []string {
	ddls := []string{fmt.Sprintf("ALTER TABLE %s ADD %s;", escapeSQLName(column.TableName), columnDefinition(column))}
	if column.Comment != "" {
		ddls = append(ddls, columnComment(column.TableName, column.Name, column.Comment))
	}
	return ddls
}

func columnAlter(tableName, columnName string, changes ColumnChanges) []string {
	base := fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s", escapeSQLName(tableName), escapeSQLName(columnName))

	var ddls []string
	if changes.Nullable != nil {
		if *changes.Nullable {
			ddls = append(ddls, base+" DROP NOT NULL;")
		} else {
			ddls = append(ddls, base+" SET NOT NULL;")
		}
	}
	if changes.Default != nil {
		ddls = append(ddls, fmt.Sprintf("%s SET DEFAULT %s;", base, *changes.Default))
	} else if changes.DropDefault {
		ddls = append(ddls, base+" DROP DEFAULT;")
	}
	if changes.Comment != nil {
		ddls = append(ddls, columnComment(tableName, columnName, *changes.Comment))
	}
	return ddls
}

func indexCreate(index *Index) string {
	var b strings.Builder
	b.WriteString("CREATE ")
	if index.Unique {
		b.WriteString("UNIQUE ")
	}
	fmt.Fprintf(&b, "INDEX %s ON %s", escapeSQLName(indexNameOf(index)), escapeSQLName(index.TableName))
	if index.Using != "" {
		fmt.Fprintf(&b, " USING %s", index.Using)
	}
	if index.Expression != "" {
		fmt.Fprintf(&b, " (%s)", index.Expression)
	} else {
		fmt.Fprintf(&b, " (%s)", asColumnList(index.ColumnNames))
	}
	if index.Where != "" {
		fmt.Fprintf(&b, " WHERE %s", index.Where)
	}
	b.WriteString(";")
	return b.String()
}
