package schema

import (
	"log/slog"

	"github.com/sqldef/pgschemadiff/util"
)

// IgnoreOptions decides whether one-sided objects are diffed. The zero value ignores nothing.
type IgnoreOptions struct {
	// IgnoreExtra skips objects that only exist in the target.
	IgnoreExtra bool `yaml:"ignore_extra"`
	// IgnoreMissing skips objects that only exist in the source.
	IgnoreMissing bool `yaml:"ignore_missing"`
}

// IgnoreOptionsFromBool expands the boolean shorthand: true diffs everything,
// false skips anything not present on both sides.
func IgnoreOptionsFromBool(diffOneSided bool) IgnoreOptions {
	return IgnoreOptions{IgnoreExtra: !diffOneSided, IgnoreMissing: !diffOneSided}
}

// UnmarshalYAML accepts either the boolean shorthand or a mapping.
func (o *IgnoreOptions) UnmarshalYAML(unmarshal func(any) error) error {
	var shorthand bool
	if err := unmarshal(&shorthand); err == nil {
		*o = IgnoreOptionsFromBool(shorthand)
		return nil
	}

	var options struct {
		IgnoreExtra   bool `yaml:"ignore_extra"`
		IgnoreMissing bool `yaml:"ignore_missing"`
	}
	if err := unmarshal(&options); err != nil {
		return err
	}
	*o = IgnoreOptions(options)
	return nil
}

func (o IgnoreOptions) isIgnored(hasSource, hasTarget bool) bool {
	return (o.IgnoreExtra && !hasSource) || (o.IgnoreMissing && !hasTarget)
}

// DiffOptions holds IgnoreOptions per object kind.
type DiffOptions struct {
	Tables      IgnoreOptions `yaml:"tables"`
	Columns     IgnoreOptions `yaml:"columns"`
	Constraints IgnoreOptions `yaml:"constraints"`
	Indexes     IgnoreOptions `yaml:"indexes"`
	Enums       IgnoreOptions `yaml:"enums"`
}

// Comparer produces the actions for one object kind.
type Comparer[T Object] interface {
	// OnMissing is called for an object only the source has; the target needs it added.
	OnMissing(source T) []SchemaDiff
	// OnExtra is called for an object only the target has; it is a candidate for removal.
	OnExtra(target T) []SchemaDiff
	// OnCompare is called when both sides have the object. It returns nothing when they are the same.
	OnCompare(source, target T) []SchemaDiff
}

// Compare matches sources and targets by name and lets comparer decide what to emit.
// Names are visited in sorted order, so the result is deterministic for a given input.
func Compare[T Object](sources, targets []T, options IgnoreOptions, comparer Comparer[T]) []SchemaDiff {
	sourceMap := make(map[string]T, len(sources))
	for _, source := range sources {
		sourceMap[source.GetName()] = source
	}
	targetMap := make(map[string]T, len(targets))
	for _, target := range targets {
		targetMap[target.GetName()] = target
	}

	names := make(map[string]struct{}, len(sourceMap)+len(targetMap))
	for name := range sourceMap {
		names[name] = struct{}{}
	}
	for name := range targetMap {
		names[name] = struct{}{}
	}

	var items []SchemaDiff
	for name := range util.CanonicalMapIter(names) {
		source, hasSource := sourceMap[name]
		target, hasTarget := targetMap[name]

		if options.isIgnored(hasSource, hasTarget) {
			slog.Debug("Skipping one-sided object", "name", name, "in_source", hasSource, "in_target", hasTarget)
			continue
		}

		if (hasSource && !source.IsSynchronized()) || (hasTarget && !target.IsSynchronized()) {
			slog.Debug("Skipping object with synchronize disabled", "name", name)
			continue
		}

		switch {
		case hasSource && !hasTarget:
			items = append(items, comparer.OnMissing(source)...)
		case !hasSource && hasTarget:
			items = append(items, comparer.OnExtra(target)...)
		default:
			if HaveEqualOverrides(source, target) {
				continue
			}
			items = append(items, comparer.OnCompare(source, target)...)
		}
	}

	return items
}
