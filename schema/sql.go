package schema

import (
	"strings"

	"github.com/sqldef/pgschemadiff/util"
)

// StringConstant quotes s as a SQL string literal.
func StringConstant(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func escapeSQLName(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// asColumnList quotes and joins columns in the given order.
func asColumnList(columns []string) string {
	return strings.Join(util.TransformSlice(columns, escapeSQLName), ", ")
}

func columnModifiers(column *Column) string {
	var modifiers []string
	if !column.Nullable {
		modifiers = append(modifiers, "NOT NULL")
	}
	if column.Default != nil {
		modifiers = append(modifiers, "DEFAULT "+*column.Default)
	}
	if column.Identity {
		modifiers = append(modifiers, "GENERATED ALWAYS AS IDENTITY")
	}

	if len(modifiers) == 0 {
		return ""
	}
	return " " + strings.Join(modifiers, " ")
}

func columnDefinition(column *Column) string {
	return escapeSQLName(column.Name) + " " + ColumnType(column) + columnModifiers(column)
}

// columnComment renders COMMENT ON COLUMN; an empty comment removes it.
func columnComment(tableName, columnName, comment string) string {
	value := "NULL"
	if comment != "" {
		value = StringConstant(comment)
	}
	return "COMMENT ON COLUMN " + escapeSQLName(tableName) + "." + escapeSQLName(columnName) + " IS " + value + ";"
}
