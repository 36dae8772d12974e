package schema

import (
	"fmt"
	"log/slog"
)

// Generator holds the configuration of one diff invocation. It has no other state,
// so independent schema pairs can be diffed concurrently.
type Generator struct {
	options DiffOptions
}

func NewGenerator(options DiffOptions) *Generator {
	return &Generator{options: options}
}

// GenerateDiff returns the actions that turn target into source, in executable order.
// A nil schema is treated as empty.
func GenerateDiff(source, target *DatabaseSchema, options DiffOptions) ([]SchemaDiff, error) {
	return NewGenerator(options).Diff(source, target)
}

// GenerateMigration renders GenerateDiff's actions into semicolon-terminated statements.
func GenerateMigration(source, target *DatabaseSchema, options DiffOptions) ([]string, error) {
	g := NewGenerator(options)
	diffs, err := g.Diff(source, target)
	if err != nil {
		return nil, err
	}
	return g.ToSQL(diffs)
}

func (g *Generator) Diff(source, target *DatabaseSchema) ([]SchemaDiff, error) {
	if err := source.Validate(); err != nil {
		return nil, fmt.Errorf("invalid source schema: %w", err)
	}
	if err := target.Validate(); err != nil {
		return nil, fmt.Errorf("invalid target schema: %w", err)
	}

	source = source.Clone()
	target = target.Clone()
	source.AssignNames()
	target.AssignNames()

	var diffs []SchemaDiff
	diffs = append(diffs, Compare(source.Enums, target.Enums, g.options.Enums, Comparer[*Enum](enumComparer{}))...)
	diffs = append(diffs, Compare(source.Tables, target.Tables, g.options.Tables, Comparer[*Table](tableComparer{options: g.options}))...)

	diffs = sortDiffs(diffs, source, target)
	for _, diff := range diffs {
		slog.Debug("Schema diff", "type", diff.DiffType(), "action", diff.Action().String(), "reason", diff.GetReason())
	}
	return diffs, nil
}

// ToSQL renders all diffs. A failing diff aborts rendering and nothing is returned.
func (g *Generator) ToSQL(diffs []SchemaDiff) ([]string, error) {
	var ddls []string
	for _, diff := range diffs {
		statements, err := ToSQL(diff)
		if err != nil {
			return nil, err
		}
		ddls = append(ddls, statements...)
	}
	return ddls, nil
}
