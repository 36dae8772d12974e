package pgschemadiff

import (
	"io"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// Highlight writes sql with terminal colour escapes.
func Highlight(w io.Writer, sql string) error {
	lexer := lexers.Get("PostgreSQL")
	if lexer == nil {
		lexer = lexers.Get("SQL")
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	iter, err := lexer.Tokenise(nil, sql)
	if err != nil {
		return err
	}
	return formatters.TTY256.Format(w, styles.Get("monokai"), iter)
}
