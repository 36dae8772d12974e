package postgres

import (
	"fmt"
	"strings"

	pgquery "github.com/pganalyze/pg_query_go/v2"
)

// CheckDDLs parses each generated statement with PostgreSQL's own parser. A statement
// must hold exactly one DDL.
func CheckDDLs(ddls []string) error {
	for _, ddl := range ddls {
		result, err := pgquery.Parse(ddl)
		if err != nil {
			return fmt.Errorf("generated an invalid statement %q: %w", ddl, err)
		}
		if len(result.Stmts) != 1 {
			return fmt.Errorf("expected a single statement but got %d: %q", len(result.Stmts), ddl)
		}
	}
	return nil
}

// StatementKinds lists the parse tree node names of ddls, e.g. "AlterTableStmt".
func StatementKinds(ddls []string) ([]string, error) {
	var kinds []string
	for _, ddl := range ddls {
		result, err := pgquery.Parse(ddl)
		if err != nil {
			return nil, err
		}
		for _, rawStmt := range result.Stmts {
			kinds = append(kinds, nodeKind(rawStmt.Stmt))
		}
	}
	return kinds, nil
}

func nodeKind(node *pgquery.Node) string {
	switch node.Node.(type) {
	case *pgquery.Node_CreateStmt:
		return "CreateStmt"
	case *pgquery.Node_AlterTableStmt:
		return "AlterTableStmt"
	case *pgquery.Node_DropStmt:
		return "DropStmt"
	case *pgquery.Node_IndexStmt:
		return "IndexStmt"
	case *pgquery.Node_CreateEnumStmt:
		return "CreateEnumStmt"
	case *pgquery.Node_CommentStmt:
		return "CommentStmt"
	default:
		return strings.TrimPrefix(fmt.Sprintf("%T", node.Node), "*pg_query.Node_")
	}
}
