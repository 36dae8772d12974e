package schema

import (
	"crypto/sha1"
	"encoding/hex"
	"slices"
	"strings"
)

// maxKeyLength is the identifier length limit of TypeORM's default naming strategy.
const maxKeyLength = 30

// Key synthesizes a constraint or index name the same way TypeORM's default naming
// strategy does: prefix + sha1("<table>_<sorted values joined by _>"), cut to 30 characters.
// The result does not depend on the order of values.
func Key(prefix string, tableName string, values []string) string {
	sorted := slices.Clone(values)
	slices.Sort(sorted)

	sum := sha1.Sum([]byte(tableName + "_" + strings.Join(sorted, "_")))
	key := prefix + hex.EncodeToString(sum[:])
	if len(key) > maxKeyLength {
		key = key[:maxKeyLength]
	}
	return key
}

func PrimaryKeyName(tableName string, columnNames []string) string {
	return Key("PK_", tableName, columnNames)
}

func ForeignKeyName(tableName string, columnNames []string) string {
	return Key("FK_", tableName, columnNames)
}

func UniqueName(tableName string, columnNames []string) string {
	return Key("UQ_", tableName, columnNames)
}

func CheckName(tableName string, expression string) string {
	return Key("CHK_", tableName, []string{expression})
}

// IndexName uses the expression in place of the columns for expression indexes.
func IndexName(tableName string, columnNames []string, expression string) string {
	if expression != "" {
		return Key("IDX_", tableName, []string{expression})
	}
	return Key("IDX_", tableName, columnNames)
}

// ConstraintName returns the constraint's name, synthesizing one when it has none.
func ConstraintName(constraint *Constraint) string {
	if constraint.Name != "" {
		return constraint.Name
	}

	switch constraint.Type {
	case ConstraintTypePrimaryKey:
		return PrimaryKeyName(constraint.TableName, constraint.ColumnNames)
	case ConstraintTypeForeignKey:
		return ForeignKeyName(constraint.TableName, constraint.ColumnNames)
	case ConstraintTypeUnique:
		return UniqueName(constraint.TableName, constraint.ColumnNames)
	case ConstraintTypeCheck:
		return CheckName(constraint.TableName, constraint.Expression)
	default:
		return ""
	}
}

func indexNameOf(index *Index) string {
	if index.Name != "" {
		return index.Name
	}
	return IndexName(index.TableName, index.ColumnNames, index.Expression)
}

// AssignNames fills in the names of unnamed constraints and indexes, and the table
// name of every column, constraint and index, so both sides can be matched by name.
func (s *DatabaseSchema) AssignNames() {
	if s == nil {
		return
	}
	for _, table := range s.Tables {
		for _, column := range table.Columns {
			if column.TableName == "" {
				column.TableName = table.Name
			}
		}
		for _, constraint := range table.Constraints {
			if constraint.TableName == "" {
				constraint.TableName = table.Name
			}
			constraint.Name = ConstraintName(constraint)
		}
		for _, index := range table.Indexes {
			if index.TableName == "" {
				index.TableName = table.Name
			}
			index.Name = indexNameOf(index)
		}
	}
}
