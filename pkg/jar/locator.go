package jar

import (
	"log/slog"
	"strings"

	"github.com/samber/lo"

	"github.com/jarscope/jarscope/pkg/types"
)

// Lookups re-index the jars on every call; there is no persistent cache.
// Unreadable jars are logged and skipped so one corrupt artifact never
// hides the rest.

// FindByPattern returns every class whose qualified name contains pattern,
// case-insensitively, in jar-scan order.
func FindByPattern(jarPaths []string, pattern string) []types.ClassRecord {
	pattern = strings.ToLower(pattern)

	var matches []types.ClassRecord
	for _, jarPath := range jarPaths {
		records, err := Index(jarPath)
		if err != nil {
			slog.Warn("Skipping unreadable jar", slog.String("jar", jarPath), slog.String("error", err.Error()))
			continue
		}
		matches = append(matches, lo.Filter(records, func(r types.ClassRecord, _ int) bool {
			return strings.Contains(strings.ToLower(r.ClassName), pattern)
		})...)
	}
	return matches
}

// FindExact maps each matched simple name to its records, compared
// case-insensitively. A requested name found nowhere is simply absent from
// the result; callers diff against the requested set. When several jars
// carry the same simple name (shading), every record is kept in jar-scan
// order and element 0 is the representative.
func FindExact(jarPaths []string, names []string) map[string][]types.ClassRecord {
	wanted := lo.SliceToMap(names, func(n string) (string, struct{}) {
		return strings.ToLower(n), struct{}{}
	})

	found := make(map[string][]types.ClassRecord)
	for _, jarPath := range jarPaths {
		records, err := Index(jarPath)
		if err != nil {
			slog.Warn("Skipping unreadable jar", slog.String("jar", jarPath), slog.String("error", err.Error()))
			continue
		}
		for _, r := range records {
			simple := r.SimpleName()
			if _, ok := wanted[strings.ToLower(simple)]; ok {
				found[simple] = append(found[simple], r)
			}
		}
	}
	return found
}

// MissingNames returns the requested names absent from the result mapping,
// compared case-insensitively, in request order.
func MissingNames(requested []string, found map[string][]types.ClassRecord) []string {
	keys := lo.SliceToMap(lo.Keys(found), func(k string) (string, struct{}) {
		return strings.ToLower(k), struct{}{}
	})
	missing := lo.Filter(requested, func(n string, _ int) bool {
		_, ok := keys[strings.ToLower(n)]
		return !ok
	})
	// Keep the JSON shape an array even when nothing is missing.
	if missing == nil {
		missing = []string{}
	}
	return missing
}
