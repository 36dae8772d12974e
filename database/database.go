// This package has the producers of schema descriptions. Never deal with DDL construction.
package database

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/sqldef/pgschemadiff/schema"
	"gopkg.in/yaml.v2"
)

type Config struct {
	DbName          string
	User            string
	Password        string
	Host            string
	Port            int
	Socket          string
	SslMode         string
	TargetSchema    string // default: public
	DumpConcurrency int    // 0: sequential, <0: unlimited
}

// GeneratorConfig is read from --config files and --config-inline strings.
type GeneratorConfig struct {
	Options         schema.DiffOptions
	TargetTables    []string
	SkipTables      []string
	DumpConcurrency int
}

// Database produces one side of a diff.
type Database interface {
	ExportSchema(ctx context.Context) (*schema.DatabaseSchema, error)
	Close() error
}

// generatorConfigYAML uses pointers to tell which keys were given, so a later config
// only overrides those.
type generatorConfigYAML struct {
	Tables          *schema.IgnoreOptions `yaml:"tables"`
	Columns         *schema.IgnoreOptions `yaml:"columns"`
	Constraints     *schema.IgnoreOptions `yaml:"constraints"`
	Indexes         *schema.IgnoreOptions `yaml:"indexes"`
	Enums           *schema.IgnoreOptions `yaml:"enums"`
	TargetTables    string                `yaml:"target_tables"`
	SkipTables      string                `yaml:"skip_tables"`
	DumpConcurrency *int                  `yaml:"dump_concurrency"`
}

// ReadGeneratorConfig reads and checks a --config file. It returns the YAML text, to be
// merged with the other configs by MergeGeneratorConfigStrings.
func ReadGeneratorConfig(configFile string) (string, error) {
	buf, err := os.ReadFile(configFile)
	if err != nil {
		return "", err
	}
	if _, err := parsePartialConfig(string(buf)); err != nil {
		return "", fmt.Errorf("%s: %w", configFile, err)
	}
	return string(buf), nil
}

func ParseGeneratorConfigString(yamlString string) (GeneratorConfig, error) {
	partial, err := parsePartialConfig(yamlString)
	if err != nil {
		return GeneratorConfig{}, err
	}
	return mergePartialConfigs([]generatorConfigYAML{partial}), nil
}

// MergeGeneratorConfigStrings applies configs in order; a later key overrides an earlier one.
func MergeGeneratorConfigStrings(yamlStrings []string) (GeneratorConfig, error) {
	var partials []generatorConfigYAML
	for _, yamlString := range yamlStrings {
		partial, err := parsePartialConfig(yamlString)
		if err != nil {
			return GeneratorConfig{}, err
		}
		partials = append(partials, partial)
	}
	return mergePartialConfigs(partials), nil
}

func parsePartialConfig(yamlString string) (generatorConfigYAML, error) {
	var config generatorConfigYAML
	if err := yaml.UnmarshalStrict([]byte(yamlString), &config); err != nil {
		return generatorConfigYAML{}, err
	}
	return config, nil
}

func mergePartialConfigs(partials []generatorConfigYAML) GeneratorConfig {
	var config GeneratorConfig
	for _, c := range partials {
		mergeIgnoreOptions(&config.Options.Tables, c.Tables)
		mergeIgnoreOptions(&config.Options.Columns, c.Columns)
		mergeIgnoreOptions(&config.Options.Constraints, c.Constraints)
		mergeIgnoreOptions(&config.Options.Indexes, c.Indexes)
		mergeIgnoreOptions(&config.Options.Enums, c.Enums)
		if c.TargetTables != "" {
			config.TargetTables = splitLines(c.TargetTables)
		}
		if c.SkipTables != "" {
			config.SkipTables = splitLines(c.SkipTables)
		}
		if c.DumpConcurrency != nil {
			config.DumpConcurrency = *c.DumpConcurrency
		}
	}
	return config
}

func mergeIgnoreOptions(dst *schema.IgnoreOptions, src *schema.IgnoreOptions) {
	if src != nil {
		*dst = *src
	}
}

func splitLines(s string) []string {
	var lines []string
	for _, line := range strings.Split(strings.Trim(s, "\n"), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
