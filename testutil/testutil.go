// Utilities for _test.go files
package testutil

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/goccy/go-yaml"
	"github.com/sqldef/pgschemadiff"
	"github.com/sqldef/pgschemadiff/database"
	"github.com/sqldef/pgschemadiff/database/file"
)

const nothingModified = "-- Nothing is modified --\n"

type TestCase struct {
	Current string  // default: empty schema
	Desired string  // default: empty schema
	Config  string  // generator config YAML
	Output  *string // default: nothing is modified
	Error   *string // default: nil
}

func ReadTests(pattern string) (map[string]TestCase, error) {
	files, err := filepath.Glob(pattern)
	if err != nil {
		return nil, err
	}

	ret := map[string]TestCase{}
	for _, testFile := range files {
		var tests map[string]*TestCase

		buf, err := os.ReadFile(testFile)
		if err != nil {
			return nil, err
		}

		dec := yaml.NewDecoder(bytes.NewReader(buf), yaml.DisallowUnknownField())
		err = dec.Decode(&tests)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", testFile, err)
		}

		for name, test := range tests {
			if test.Output == nil {
				output := nothingModified
				test.Output = &output
			}
			if _, ok := ret[name]; ok {
				return nil, fmt.Errorf("there are multiple test cases named '%s'", name)
			}
			ret[name] = *test
		}
	}

	return ret, nil
}

// RunTest diffs Desired against Current and compares the printed migration. Both
// schemas must also be stable against themselves.
func RunTest(t *testing.T, test TestCase) {
	t.Helper()

	config, err := database.ParseGeneratorConfigString(test.Config)
	if err != nil {
		t.Fatal(err)
	}
	options := &pgschemadiff.Options{Check: true, Config: config}

	output, err := run(file.StringDatabase(test.Desired), file.StringDatabase(test.Current), options)
	if test.Error != nil {
		if err == nil {
			t.Errorf("expected error: %s, but got no error", *test.Error)
		} else if err.Error() != *test.Error {
			t.Errorf("expected error: %s, but got: %s", *test.Error, err.Error())
		}
		return
	}
	if err != nil {
		t.Fatal(err)
	}

	if *test.Output != output {
		t.Errorf("Migration output doesn't match expected.\n\nExpected DDLs:\n```\n%s```\n\nActual DDLs:\n```\n%s```", *test.Output, output)
	}

	for name, side := range map[string]string{"current": test.Current, "desired": test.Desired} {
		output, err := run(file.StringDatabase(side), file.StringDatabase(side), options)
		if err != nil {
			t.Fatal(err)
		}
		if output != nothingModified {
			t.Errorf("The %s schema is not stable against itself, got:\n```\n%s```", name, output)
		}
	}
}

func run(desired, current database.Database, options *pgschemadiff.Options) (string, error) {
	var out bytes.Buffer
	err := pgschemadiff.Run(context.Background(), desired, current, database.WriterLogger{W: &out}, options)
	return out.String(), err
}
