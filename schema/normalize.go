package schema

import (
	"regexp"
	"strings"
)

var spaces = regexp.MustCompile(`\s+`)

// normalizeExpression makes SQL expressions written by hand comparable with what
// pg_get_constraintdef and pg_get_expr return: whitespace is collapsed, outer
// parentheses are dropped and keywords outside literals are lowercased.
func normalizeExpression(expr string) string {
	expr = strings.TrimSpace(spaces.ReplaceAllString(expr, " "))
	for hasWrappingParens(expr) {
		expr = strings.TrimSpace(expr[1 : len(expr)-1])
	}
	return lowerOutsideQuotes(expr)
}

// hasWrappingParens reports whether the first "(" is closed by the last ")".
func hasWrappingParens(expr string) bool {
	if !strings.HasPrefix(expr, "(") || !strings.HasSuffix(expr, ")") {
		return false
	}
	depth := 0
	for i, r := range expr {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 && i != len(expr)-1 {
				return false
			}
		}
	}
	return depth == 0
}

func lowerOutsideQuotes(expr string) string {
	var b strings.Builder
	var quote rune
	for _, r := range expr {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			}
			b.WriteRune(r)
		case r == '\'' || r == '"':
			quote = r
			b.WriteRune(r)
		default:
			b.WriteString(strings.ToLower(string(r)))
		}
	}
	return b.String()
}

// normalizeUsing treats an empty index method as the default btree.
func normalizeUsing(using string) string {
	using = strings.ToLower(strings.TrimSpace(using))
	if using == "" {
		return "btree"
	}
	return using
}
