package schema

import (
	"fmt"
	"strings"
)

// SetIsEqual reports whether source and target contain the same elements, ignoring order.
func SetIsEqual[T comparable](source, target []T) bool {
	sourceSet := toSet(source)
	targetSet := toSet(target)
	if len(sourceSet) != len(targetSet) {
		return false
	}
	for v := range sourceSet {
		if _, ok := targetSet[v]; !ok {
			return false
		}
	}
	return true
}

func toSet[T comparable](values []T) map[T]struct{} {
	set := make(map[T]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

// HaveEqualColumns compares column lists of constraints or indexes. Reordering is not a change.
func HaveEqualColumns(sourceColumns, targetColumns []string) bool {
	return SetIsEqual(sourceColumns, targetColumns)
}

// HaveEqualOverrides is true only when both sides carry an override with the same name and SQL.
// false means the overrides can't prove equality, not that the objects differ.
func HaveEqualOverrides(source, target Object) bool {
	sourceOverride := source.GetOverride()
	targetOverride := target.GetOverride()
	if sourceOverride == nil || targetOverride == nil {
		return false
	}

	return sourceOverride.Value.Name == targetOverride.Value.Name &&
		sourceOverride.Value.SQL == targetOverride.Value.SQL
}

// IsDefaultEqual tolerates a default being stored with or without an explicit cast,
// e.g. `5` and `'5'::integer`.
func IsDefaultEqual(source, target *Column) bool {
	if source.Default == nil && target.Default == nil {
		return true
	}
	if source.Default == nil || target.Default == nil {
		return false
	}

	sourceDefault := *source.Default
	targetDefault := *target.Default
	if sourceDefault == targetDefault {
		return true
	}

	return withTypeCast(sourceDefault, ColumnType(source)) == targetDefault ||
		sourceDefault == withTypeCast(targetDefault, ColumnType(target))
}

// ColumnType is the type as used in DDL and casts: enum name or base type,
// followed by [length] for arrays or (length) for sized scalars.
func ColumnType(column *Column) string {
	typeName := column.Type
	if column.EnumName != "" {
		typeName = column.EnumName
	}

	if column.IsArray {
		length := ""
		if column.Length != nil {
			length = fmt.Sprint(*column.Length)
		}
		return typeName + "[" + length + "]"
	}
	if column.Length != nil {
		return fmt.Sprintf("%s(%d)", typeName, *column.Length)
	}
	return typeName
}

func withTypeCast(value string, typeName string) string {
	if !strings.HasPrefix(value, "'") {
		value = "'" + value + "'"
	}
	return value + "::" + typeName
}
