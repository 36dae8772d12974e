package pgschemadiff

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/k0kubun/pp/v3"
	"github.com/sqldef/pgschemadiff/database"
	"github.com/sqldef/pgschemadiff/database/postgres"
	"github.com/sqldef/pgschemadiff/schema"
)

type Options struct {
	DesiredFile string
	CurrentFile string
	Check       bool // parse the generated statements with PostgreSQL's parser
	Debug       bool
	Color       bool
	Config      database.GeneratorConfig
}

// Main function shared by the command and its tests. It prints the migration turning
// current into desired and never applies it.
func Run(ctx context.Context, desired, current database.Database, logger database.Logger, options *Options) error {
	desiredSchema, err := exportFiltered(ctx, desired, options.Config)
	if err != nil {
		return fmt.Errorf("reading desired schema: %w", err)
	}
	currentSchema, err := exportFiltered(ctx, current, options.Config)
	if err != nil {
		return fmt.Errorf("reading current schema: %w", err)
	}

	generator := schema.NewGenerator(options.Config.Options)
	diffs, err := generator.Diff(desiredSchema, currentSchema)
	if err != nil {
		return err
	}
	if options.Debug {
		pp.Fprintln(os.Stderr, diffs)
	}

	ddls, err := generator.ToSQL(diffs)
	if err != nil {
		return err
	}
	if options.Check {
		if err := postgres.CheckDDLs(ddls); err != nil {
			return err
		}
	}
	if options.Debug {
		kinds, err := postgres.StatementKinds(ddls)
		if err != nil {
			return err
		}
		pp.Fprintln(os.Stderr, kinds)
	}

	if len(ddls) == 0 {
		logger.Println("-- Nothing is modified --")
		return nil
	}
	slog.Info("Generated migration", "actions", len(diffs), "statements", len(ddls))

	out := strings.Join(ddls, "\n") + "\n"
	if options.Color {
		var b strings.Builder
		if err := Highlight(&b, out); err != nil {
			slog.Warn("Failed to highlight the migration", "error", err)
		} else {
			out = b.String()
		}
	}
	logger.Print(out)
	return nil
}

func exportFiltered(ctx context.Context, db database.Database, config database.GeneratorConfig) (*schema.DatabaseSchema, error) {
	s, err := db.ExportSchema(ctx)
	if err != nil {
		return nil, err
	}
	return schema.FilterTables(s, config.TargetTables, config.SkipTables)
}

// ParseFiles splits --file values into the desired and the current file. With two
// files, the first is the current schema.
func ParseFiles(files []string) (string, string, error) {
	switch len(files) {
	case 0:
		return "", "", fmt.Errorf("no --file is given")
	case 1:
		return files[0], "", nil
	case 2:
		return files[1], files[0], nil
	default:
		return "", "", fmt.Errorf("expected only one or two --file options, but got: %v", files)
	}
}

func ReadFile(filepath string) (string, error) {
	var err error
	var buf []byte

	if filepath == "-" {
		stat, _ := os.Stdin.Stat()
		if (stat.Mode() & os.ModeCharDevice) != 0 {
			return "", fmt.Errorf("stdin is not piped")
		}

		buf, err = io.ReadAll(os.Stdin)
	} else {
		buf, err = os.ReadFile(filepath)
	}

	if err != nil {
		return "", err
	}
	return string(buf), nil
}
