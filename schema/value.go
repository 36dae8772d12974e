package schema

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

type ValueType int

const (
	ValueTypeNull = ValueType(iota)
	ValueTypeStr
	ValueTypeInt
	ValueTypeFloat
	ValueTypeBool
	ValueTypeTime
	ValueTypeRaw  // SQL expression, used verbatim
	ValueTypeJSON // encoded JSON document, rendered as a jsonb literal
)

// ColumnValue is a column default as declared by the producer of a schema.
// It is resolved to SQL text with Literal before any comparison happens.
type ColumnValue struct {
	valueType ValueType

	// ValueType-specific
	strVal   string    // ValueTypeStr, ValueTypeRaw, ValueTypeJSON
	intVal   int64     // ValueTypeInt
	floatVal float64   // ValueTypeFloat
	boolVal  bool      // ValueTypeBool
	timeVal  time.Time // ValueTypeTime
}

func NullValue() ColumnValue              { return ColumnValue{valueType: ValueTypeNull} }
func StringValue(s string) ColumnValue    { return ColumnValue{valueType: ValueTypeStr, strVal: s} }
func IntValue(i int64) ColumnValue        { return ColumnValue{valueType: ValueTypeInt, intVal: i} }
func FloatValue(f float64) ColumnValue    { return ColumnValue{valueType: ValueTypeFloat, floatVal: f} }
func BoolValue(b bool) ColumnValue        { return ColumnValue{valueType: ValueTypeBool, boolVal: b} }
func TimeValue(t time.Time) ColumnValue   { return ColumnValue{valueType: ValueTypeTime, timeVal: t} }
func RawValue(sqlExpr string) ColumnValue { return ColumnValue{valueType: ValueTypeRaw, strVal: sqlExpr} }
func JSONValue(doc string) ColumnValue    { return ColumnValue{valueType: ValueTypeJSON, strVal: doc} }

func (v ColumnValue) Type() ValueType { return v.valueType }
func (v ColumnValue) IsNull() bool    { return v.valueType == ValueTypeNull }

// NewColumnValue converts a decoded value (as produced by a YAML or JSON decoder) into a ColumnValue.
// Mappings and sequences become jsonb documents.
func NewColumnValue(v any) (ColumnValue, error) {
	switch v := v.(type) {
	case nil:
		return NullValue(), nil
	case string:
		return StringValue(v), nil
	case bool:
		return BoolValue(v), nil
	case int:
		return IntValue(int64(v)), nil
	case int64:
		return IntValue(v), nil
	case uint64:
		if v > math.MaxInt64 {
			return RawValue(strconv.FormatUint(v, 10)), nil
		}
		return IntValue(int64(v)), nil
	case float64:
		return FloatValue(v), nil
	case time.Time:
		return TimeValue(v), nil
	case map[string]any, []any:
		return newJSONValue(v)
	default:
		return ColumnValue{}, fmt.Errorf("unsupported default value %v (%T)", v, v)
	}
}

// Literal returns the SQL text of the value. ok is false for NULL, which means no default.
func (v ColumnValue) Literal() (literal string, ok bool) {
	switch v.valueType {
	case ValueTypeStr:
		return StringConstant(v.strVal), true
	case ValueTypeInt:
		return strconv.FormatInt(v.intVal, 10), true
	case ValueTypeFloat:
		return strconv.FormatFloat(v.floatVal, 'f', -1, 64), true
	case ValueTypeBool:
		return strconv.FormatBool(v.boolVal), true
	case ValueTypeTime:
		return StringConstant(v.timeVal.UTC().Format("2006-01-02T15:04:05.000Z")), true
	case ValueTypeRaw:
		return v.strVal, true
	case ValueTypeJSON:
		return "'" + jsonEscaper.Replace(v.strVal) + "'::jsonb", true
	default:
		return "", false
	}
}

// DefaultOf resolves v into the representation stored in Column.Default.
func DefaultOf(v ColumnValue) *string {
	literal, ok := v.Literal()
	if !ok {
		return nil
	}
	return &literal
}

func newJSONValue(v any) (ColumnValue, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return ColumnValue{}, fmt.Errorf("unsupported default value %v: %w", v, err)
	}
	return JSONValue(strings.TrimSuffix(buf.String(), "\n")), nil
}

// jsonEscaper makes encoded JSON safe inside a single-quoted literal.
var jsonEscaper = strings.NewReplacer(
	"'", "''",
	`\`, `\\`,
	"\b", `\b`,
	"\f", `\f`,
	"\n", `\n`,
	"\r", `\r`,
	"\t", `\t`,
)
