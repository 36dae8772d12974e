package schema

import (
	"fmt"
	"regexp"
)

// FilterTables keeps the tables matching any of targetTables (all when empty) and none of
// skipTables. Patterns are regular expressions matched against the whole table name.
func FilterTables(s *DatabaseSchema, targetTables, skipTables []string) (*DatabaseSchema, error) {
	if s == nil || (len(targetTables) == 0 && len(skipTables) == 0) {
		return s, nil
	}

	targets, err := compilePatterns(targetTables)
	if err != nil {
		return nil, err
	}
	skips, err := compilePatterns(skipTables)
	if err != nil {
		return nil, err
	}

	filtered := &DatabaseSchema{Name: s.Name, Enums: s.Enums}
	for _, table := range s.Tables {
		if len(targets) > 0 && !matchAny(targets, table.Name) {
			continue
		}
		if matchAny(skips, table.Name) {
			continue
		}
		filtered.Tables = append(filtered.Tables, table)
	}
	return filtered, nil
}

func compilePatterns(patterns []string) ([]*regexp.Regexp, error) {
	var res []*regexp.Regexp
	for _, pattern := range patterns {
		re, err := regexp.Compile("^" + pattern + "$")
		if err != nil {
			return nil, fmt.Errorf("invalid table pattern %q: %w", pattern, err)
		}
		res = append(res, re)
	}
	return res, nil
}

func matchAny(res []*regexp.Regexp, name string) bool {
	for _, re := range res {
		if re.MatchString(name) {
			return true
		}
	}
	return false
}
