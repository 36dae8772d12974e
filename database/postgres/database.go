package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strings"

	"github.com/lib/pq"
	"github.com/sqldef/pgschemadiff/database"
	"github.com/sqldef/pgschemadiff/schema"
)

const defaultSchema = "public"

type PostgresDatabase struct {
	config database.Config
	db     *sql.DB
}

func NewDatabase(config database.Config) (*PostgresDatabase, error) {
	db, err := sql.Open("postgres", postgresBuildDSN(config))
	if err != nil {
		return nil, err
	}

	return &PostgresDatabase{
		db:     db,
		config: config,
	}, nil
}

func (d *PostgresDatabase) targetSchema() string {
	if d.config.TargetSchema == "" {
		return defaultSchema
	}
	return d.config.TargetSchema
}

// ExportSchema introspects the target schema. Tables are read concurrently.
func (d *PostgresDatabase) ExportSchema(ctx context.Context) (*schema.DatabaseSchema, error) {
	result := &schema.DatabaseSchema{Name: d.targetSchema()}

	enums, err := d.enums(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading enums: %w", err)
	}
	result.Enums = enums

	tableNames, err := d.tableNames(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading tables: %w", err)
	}
	slog.Info("Introspecting tables", "schema", d.targetSchema(), "count", len(tableNames))

	tables, err := database.ConcurrentMapFuncWithError(
		ctx,
		tableNames,
		d.config.DumpConcurrency,
		func(ctx context.Context, tableName string) (*schema.Table, error) {
			table, err := d.exportTable(ctx, tableName)
			if err != nil {
				return nil, fmt.Errorf("reading table %s: %w", tableName, err)
			}
			return table, nil
		})
	if err != nil {
		return nil, err
	}
	result.Tables = tables

	return result, nil
}

func (d *PostgresDatabase) exportTable(ctx context.Context, tableName string) (*schema.Table, error) {
	columns, err := d.getColumns(ctx, tableName)
	if err != nil {
		return nil, err
	}
	constraints, err := d.getConstraints(ctx, tableName)
	if err != nil {
		return nil, err
	}
	indexes, err := d.getIndexes(ctx, tableName)
	if err != nil {
		return nil, err
	}
	return &schema.Table{
		Name:        tableName,
		Columns:     columns,
		Constraints: constraints,
		Indexes:     indexes,
	}, nil
}

func (d *PostgresDatabase) tableNames(ctx context.Context) ([]string, error) {
	rows, err := d.db.QueryContext(ctx, `
		select c.relname from pg_catalog.pg_class c
		inner join pg_catalog.pg_namespace n on c.relnamespace = n.oid
		where n.nspname = $1
		and c.relkind in ('r', 'p')
		and c.relispartition = false
		and not exists (select * from pg_catalog.pg_depend d where d.classid = 'pg_class'::regclass and c.oid = d.objid and d.deptype = 'e')
		order by c.relname asc;
	`, d.targetSchema())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tables := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		tables = append(tables, name)
	}
	return tables, rows.Err()
}

func (d *PostgresDatabase) enums(ctx context.Context) ([]*schema.Enum, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT t.typname, array_agg(e.enumlabel ORDER BY e.enumsortorder)
		FROM pg_enum e
		JOIN pg_type t ON e.enumtypid = t.oid
		INNER JOIN pg_catalog.pg_namespace n ON t.typnamespace = n.oid
		WHERE n.nspname = $1
		AND NOT EXISTS (SELECT * FROM pg_depend d WHERE d.classid = 'pg_type'::regclass AND d.objid = t.oid AND d.deptype = 'e')
		GROUP BY t.typname
		ORDER BY t.typname;
	`, d.targetSchema())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var enums []*schema.Enum
	for rows.Next() {
		var name string
		var values []string
		if err := rows.Scan(&name, pq.Array(&values)); err != nil {
			return nil, err
		}
		enums = append(enums, &schema.Enum{Name: name, Values: values})
	}
	return enums, rows.Err()
}

func (d *PostgresDatabase) getColumns(ctx context.Context, table string) ([]*schema.Column, error) {
	const query = `SELECT
	  c.column_name,
	  c.data_type,
	  c.udt_name,
	  c.is_nullable,
	  c.column_default,
	  c.character_maximum_length,
	  c.is_identity,
	  col_description(format('%I.%I', c.table_schema, c.table_name)::regclass::oid, c.ordinal_position::int),
	  t.typtype,
	  CASE WHEN et.typtype = 'e' THEN et.typname ELSE format_type(et.oid, NULL) END,
	  et.typtype
	FROM information_schema.columns c
	LEFT JOIN pg_catalog.pg_namespace tn ON tn.nspname = c.udt_schema
	LEFT JOIN pg_catalog.pg_type t ON t.typname = c.udt_name AND t.typnamespace = tn.oid
	LEFT JOIN pg_catalog.pg_type et ON et.oid = t.typelem AND c.data_type = 'ARRAY'
	WHERE c.table_schema = $1
	AND c.table_name = $2
	ORDER BY c.ordinal_position`

	rows, err := d.db.QueryContext(ctx, query, d.targetSchema(), table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var columns []*schema.Column
	for rows.Next() {
		var r columnRow
		err := rows.Scan(&r.name, &r.dataType, &r.udtName, &r.isNullable, &r.columnDefault,
			&r.maxLength, &r.isIdentity, &r.comment, &r.typeType, &r.elementType, &r.elementTypeType)
		if err != nil {
			return nil, err
		}
		columns = append(columns, r.toColumn(table))
	}
	return columns, rows.Err()
}

type columnRow struct {
	name          string
	dataType      string
	udtName       string
	isNullable    string
	columnDefault sql.NullString
	maxLength     sql.NullInt64
	isIdentity    string
	comment       sql.NullString
	typeType      sql.NullString

	// element type of an array, named like data_type names scalars
	elementType     sql.NullString
	elementTypeType sql.NullString
}

func (r columnRow) toColumn(table string) *schema.Column {
	column := &schema.Column{
		TableName: table,
		Name:      r.name,
		Type:      r.dataType,
		Nullable:  r.isNullable == "YES",
		Identity:  r.isIdentity == "YES",
		Comment:   r.comment.String,
	}

	switch r.dataType {
	case "ARRAY":
		column.IsArray = true
		column.Type = r.arrayElementType()
		if r.elementTypeType.String == "e" {
			column.EnumName = column.Type
			column.Type = "enum"
		}
	case "USER-DEFINED":
		column.Type = r.udtName
		if r.typeType.String == "e" {
			column.Type = "enum"
			column.EnumName = r.udtName
		}
	}

	if r.maxLength.Valid {
		length := int(r.maxLength.Int64)
		column.Length = &length
	}
	if r.columnDefault.Valid && !column.Identity {
		column.Default = &r.columnDefault.String
	}
	return column
}

// internalTypeNames maps pg_type names of built-in types to the names information_schema
// uses in data_type.
var internalTypeNames = map[string]string{
	"bool":        "boolean",
	"bpchar":      "character",
	"float4":      "real",
	"float8":      "double precision",
	"int2":        "smallint",
	"int4":        "integer",
	"int8":        "bigint",
	"interval":    "interval",
	"time":        "time without time zone",
	"timestamp":   "timestamp without time zone",
	"timestamptz": "timestamp with time zone",
	"timetz":      "time with time zone",
	"varbit":      "bit varying",
	"varchar":     "character varying",
}

func (r columnRow) arrayElementType() string {
	if r.elementType.Valid && r.elementType.String != "" {
		return r.elementType.String
	}
	// udt_name of an array is the element type prefixed with an underscore
	name := strings.TrimPrefix(r.udtName, "_")
	if standard, ok := internalTypeNames[name]; ok {
		return standard
	}
	return name
}

func (d *PostgresDatabase) getConstraints(ctx context.Context, table string) ([]*schema.Constraint, error) {
	const query = `SELECT
	  con.conname,
	  con.contype,
	  ARRAY(
	    SELECT a.attname FROM unnest(con.conkey) WITH ORDINALITY AS k(attnum, ord)
	    JOIN pg_attribute a ON a.attrelid = con.conrelid AND a.attnum = k.attnum
	    ORDER BY k.ord
	  ) AS column_names,
	  COALESCE(ref.relname, '') AS reference_table_name,
	  ARRAY(
	    SELECT a.attname FROM unnest(con.confkey) WITH ORDINALITY AS k(attnum, ord)
	    JOIN pg_attribute a ON a.attrelid = con.confrelid AND a.attnum = k.attnum
	    ORDER BY k.ord
	  ) AS reference_column_names,
	  con.confupdtype,
	  con.confdeltype,
	  pg_get_constraintdef(con.oid, true)
	FROM pg_constraint con
	JOIN pg_class cls ON cls.oid = con.conrelid
	JOIN pg_namespace nsp ON nsp.oid = cls.relnamespace
	LEFT JOIN pg_class ref ON ref.oid = con.confrelid
	WHERE con.contype IN ('p', 'f', 'u', 'c')
	AND nsp.nspname = $1
	AND cls.relname = $2
	ORDER BY con.conname`

	rows, err := d.db.QueryContext(ctx, query, d.targetSchema(), table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var constraints []*schema.Constraint
	for rows.Next() {
		var name, conType, referenceTable, updateType, deleteType, definition string
		var columnNames, referenceColumns []string
		err := rows.Scan(&name, &conType, pq.Array(&columnNames), &referenceTable,
			pq.Array(&referenceColumns), &updateType, &deleteType, &definition)
		if err != nil {
			return nil, err
		}

		constraint := &schema.Constraint{
			Name:        name,
			TableName:   table,
			ColumnNames: columnNames,
		}
		switch conType {
		case "p":
			constraint.Type = schema.ConstraintTypePrimaryKey
		case "u":
			constraint.Type = schema.ConstraintTypeUnique
		case "f":
			constraint.Type = schema.ConstraintTypeForeignKey
			constraint.ReferenceTableName = referenceTable
			constraint.ReferenceColumnNames = referenceColumns
			constraint.OnUpdate = referentialAction(updateType)
			constraint.OnDelete = referentialAction(deleteType)
		case "c":
			constraint.Type = schema.ConstraintTypeCheck
			constraint.Expression = checkExpression(definition)
		}
		constraints = append(constraints, constraint)
	}
	return constraints, rows.Err()
}

// referentialAction maps pg_constraint.confupdtype/confdeltype codes.
func referentialAction(code string) schema.ActionType {
	switch code {
	case "r":
		return schema.ActionTypeRestrict
	case "c":
		return schema.ActionTypeCascade
	case "n":
		return schema.ActionTypeSetNull
	case "d":
		return schema.ActionTypeSetDefault
	default:
		return schema.ActionTypeNoAction
	}
}

// checkExpression strips `CHECK (...)` and a trailing NOT VALID from pg_get_constraintdef output.
func checkExpression(definition string) string {
	expr := strings.TrimSpace(definition)
	expr = strings.TrimSuffix(expr, " NOT VALID")
	expr = strings.TrimPrefix(expr, "CHECK ")
	if strings.HasPrefix(expr, "(") && strings.HasSuffix(expr, ")") {
		expr = expr[1 : len(expr)-1]
	}
	return expr
}

func (d *PostgresDatabase) getIndexes(ctx context.Context, table string) ([]*schema.Index, error) {
	// Indexes backing primary key, unique and exclusion constraints belong to the constraint.
	const query = `SELECT
	  ic.relname,
	  ix.indisunique,
	  am.amname,
	  ARRAY(
	    SELECT a.attname FROM unnest(ix.indkey) WITH ORDINALITY AS k(attnum, ord)
	    JOIN pg_attribute a ON a.attrelid = ix.indrelid AND a.attnum = k.attnum
	    ORDER BY k.ord
	  ) AS column_names,
	  COALESCE(pg_get_expr(ix.indexprs, ix.indrelid), ''),
	  COALESCE(pg_get_expr(ix.indpred, ix.indrelid), '')
	FROM pg_index ix
	JOIN pg_class ic ON ic.oid = ix.indexrelid
	JOIN pg_class tc ON tc.oid = ix.indrelid
	JOIN pg_namespace n ON n.oid = tc.relnamespace
	JOIN pg_am am ON am.oid = ic.relam
	WHERE n.nspname = $1
	AND tc.relname = $2
	AND NOT EXISTS (
	  SELECT 1 FROM pg_constraint con
	  WHERE con.conindid = ix.indexrelid AND con.contype IN ('p', 'u', 'x')
	)
	ORDER BY ic.relname`

	rows, err := d.db.QueryContext(ctx, query, d.targetSchema(), table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var indexes []*schema.Index
	for rows.Next() {
		index := &schema.Index{TableName: table}
		var using string
		err := rows.Scan(&index.Name, &index.Unique, &using, pq.Array(&index.ColumnNames), &index.Expression, &index.Where)
		if err != nil {
			return nil, err
		}
		if using != "btree" {
			index.Using = using
		}
		if index.Expression != "" {
			index.ColumnNames = nil
		}
		indexes = append(indexes, index)
	}
	return indexes, rows.Err()
}

func (d *PostgresDatabase) Close() error {
	return d.db.Close()
}

func postgresBuildDSN(config database.Config) string {
	user := config.User
	password := config.Password
	database := config.DbName
	host := ""
	var options []string

	if config.Socket == "" {
		host = fmt.Sprintf("%s:%d", config.Host, config.Port)
	} else {
		// We want to use either:
		// - postgres://user:@%2Fvar%2Frun%2Fpostgresql/dbname
		// - postgres://user:@/dbname?host=/var/run/postgresql
		// As the first form would be rejected by the URL parser,
		// we resort to the second form.
		options = append(options, fmt.Sprintf("host=%s", config.Socket))
	}

	if config.SslMode != "" {
		options = append(options, fmt.Sprintf("sslmode=%s", config.SslMode))
	} else if sslmode, ok := os.LookupEnv("PGSSLMODE"); ok {
		options = append(options, fmt.Sprintf("sslmode=%s", sslmode))
	}

	for _, env := range []string{"PGSSLROOTCERT", "PGSSLCERT", "PGSSLKEY"} {
		if value, ok := os.LookupEnv(env); ok {
			options = append(options, fmt.Sprintf("%s=%s", strings.ToLower(strings.TrimPrefix(env, "PG")), value))
		}
	}

	// `QueryEscape` instead of `PathEscape` so that colon can be escaped.
	return fmt.Sprintf("postgres://%s:%s@%s/%s?%s", url.QueryEscape(user), url.QueryEscape(password), host, database, strings.Join(options, "&"))
}
