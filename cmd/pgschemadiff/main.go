package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"syscall"

	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"
	"github.com/sqldef/pgschemadiff"
	"github.com/sqldef/pgschemadiff/database"
	"github.com/sqldef/pgschemadiff/database/file"
	"github.com/sqldef/pgschemadiff/database/postgres"
	"github.com/sqldef/pgschemadiff/util"
	"golang.org/x/term"
)

// version and revision are set via -ldflags
var version = "dev"
var revision = "HEAD"

type cliOptions struct {
	User     string   `short:"U" long:"user" description:"PostgreSQL user name" value-name:"username" default:"postgres"`
	Password string   `short:"W" long:"password" description:"PostgreSQL user password, overridden by $PGPASSWORD" value-name:"password"`
	Host     string   `short:"h" long:"host" description:"Host or socket directory to connect to the PostgreSQL server" value-name:"hostname" default:"127.0.0.1"`
	Port     uint     `short:"p" long:"port" description:"Port used for the connection" value-name:"port" default:"5432"`
	Schema   string   `short:"s" long:"schema" description:"Schema to introspect" value-name:"schema" default:"public"`
	Prompt   bool     `long:"password-prompt" description:"Force PostgreSQL user password prompt"`
	EnvFile  string   `long:"env-file" description:"Load PG* variables from a dotenv file" value-name:"env_file"`
	File     []string `long:"file" description:"Read the desired schema from the file, rather than stdin. Given twice, the first one is the current schema" value-name:"schema_file" default:"-"`
	Output   string   `short:"o" long:"output" description:"Write the migration to the file instead of stdout" value-name:"sql_file"`
	Check    bool     `long:"check" description:"Parse the generated statements with PostgreSQL's parser before printing them"`
	Color    string   `long:"color" description:"Highlight the migration" choice:"auto" choice:"always" choice:"never" default:"auto"`
	Debug    bool     `long:"debug" description:"Dump the diff actions to stderr"`
	Help     bool     `long:"help" description:"Show this help"`
	Version  bool     `long:"version" description:"Show this version"`

	// Custom handlers for config flags to preserve order
	Config       func(string) error `long:"config" description:"YAML file to specify: tables, columns, constraints, indexes, enums, target_tables, skip_tables, dump_concurrency (can be specified multiple times)"`
	ConfigInline func(string)       `long:"config-inline" description:"YAML object to specify the same keys as --config (can be specified multiple times)"`
}

// Return parsed options and the connection config
func parseOptions(args []string) (database.Config, *pgschemadiff.Options, string, error) {
	// Track given configs in order
	var configs []string

	var opts cliOptions
	opts.Config = func(path string) error {
		config, err := database.ReadGeneratorConfig(path)
		if err != nil {
			return err
		}
		configs = append(configs, config)
		return nil
	}
	opts.ConfigInline = func(yaml string) {
		configs = append(configs, yaml)
	}

	parser := flags.NewParser(&opts, flags.None)
	parser.Usage = "[OPTIONS] [database|current.yml] < desired.yml"
	args, err := parser.ParseArgs(args)
	if err != nil {
		return database.Config{}, nil, "", err
	}

	if opts.Help {
		parser.WriteHelp(os.Stdout)
		os.Exit(0)
	}

	if opts.Version {
		fmt.Printf("%s (%s)\n", version, revision)
		os.Exit(0)
	}

	if opts.EnvFile != "" {
		if err := godotenv.Load(opts.EnvFile); err != nil {
			return database.Config{}, nil, "", fmt.Errorf("loading %s: %w", opts.EnvFile, err)
		}
	}

	desiredFile, currentFile, err := pgschemadiff.ParseFiles(opts.File)
	if err != nil {
		return database.Config{}, nil, "", err
	}

	// merge --config and --config-inline in order
	config, err := database.MergeGeneratorConfigStrings(configs)
	if err != nil {
		return database.Config{}, nil, "", err
	}

	options := pgschemadiff.Options{
		DesiredFile: desiredFile,
		CurrentFile: currentFile,
		Check:       opts.Check,
		Debug:       opts.Debug,
		Color:       useColor(opts.Color, opts.Output),
		Config:      config,
	}

	var databaseName string
	switch {
	case len(args) > 1:
		return database.Config{}, nil, "", fmt.Errorf("multiple databases are given: %v", args)
	case len(args) == 1 && isSchemaFile(args[0]):
		if options.CurrentFile != "" {
			return database.Config{}, nil, "", fmt.Errorf("the current schema is given by both --file and %s", args[0])
		}
		options.CurrentFile = args[0]
	case len(args) == 1:
		databaseName = args[0]
	case options.CurrentFile == "":
		return database.Config{}, nil, "", fmt.Errorf("no database is specified")
	}

	password, ok := os.LookupEnv("PGPASSWORD")
	if !ok {
		password = opts.Password
	}

	if opts.Prompt && options.CurrentFile == "" {
		fmt.Fprint(os.Stderr, "Enter Password: ")
		pass, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return database.Config{}, nil, "", err
		}
		password = string(pass)
	}

	dbConfig := database.Config{
		DbName:          databaseName,
		User:            opts.User,
		Password:        password,
		Host:            opts.Host,
		Port:            int(opts.Port),
		TargetSchema:    opts.Schema,
		DumpConcurrency: config.DumpConcurrency,
	}
	if strings.HasPrefix(dbConfig.Host, "/") {
		dbConfig.Socket = dbConfig.Host
	}
	return dbConfig, &options, opts.Output, nil
}

func isSchemaFile(arg string) bool {
	return strings.HasSuffix(arg, ".yml") || strings.HasSuffix(arg, ".yaml")
}

func useColor(mode string, output string) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	default:
		return output == "" && term.IsTerminal(int(os.Stdout.Fd()))
	}
}

func main() {
	util.InitSlog()

	if err := run(os.Args[1:]); err != nil {
		log.Fatal(err)
	}
}

func run(args []string) (err error) {
	config, options, output, err := parseOptions(args)
	if err != nil {
		return err
	}

	var current database.Database
	if options.CurrentFile != "" {
		current = file.NewDatabase(options.CurrentFile)
	} else {
		db, dbErr := postgres.NewDatabase(config)
		if dbErr != nil {
			return dbErr
		}
		current = db
	}
	defer current.Close()

	var w io.Writer = os.Stdout
	if output != "" {
		f, createErr := os.Create(output)
		if createErr != nil {
			return createErr
		}
		// A failed run leaves no partial migration behind.
		defer func() {
			closeErr := f.Close()
			if err != nil {
				os.Remove(output)
			} else if closeErr != nil {
				err = closeErr
			}
		}()
		w = f
	}

	desired := file.NewDatabase(options.DesiredFile)
	return pgschemadiff.Run(context.Background(), desired, current, database.WriterLogger{W: w}, options)
}
