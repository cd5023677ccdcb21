// Package view derives display-ready row sets from the staging drafts:
// filtering, searching, sorting and new-row hoisting, without ever
// mutating the drafts themselves.
package view

import (
	"sort"
	"strings"

	"condoctl/internal/record"
)

// SortDir is the direction of a column sort. SortNone means "no
// reordering beyond the default already applied".
type SortDir int

const (
	SortNone SortDir = iota
	SortAsc
	SortDesc
)

// Sort is the active sort state for one table.
type Sort struct {
	Key record.Field
	Dir SortDir
}

// Cycle advances the sort state for a toggled column: a new key starts
// ascending, repeated toggles of the same key cycle asc, desc, none.
func (s Sort) Cycle(key record.Field) Sort {
	if s.Key != key {
		return Sort{Key: key, Dir: SortAsc}
	}
	switch s.Dir {
	case SortAsc:
		return Sort{Key: key, Dir: SortDesc}
	case SortDesc:
		return Sort{Key: key, Dir: SortNone}
	default:
		return Sort{Key: key, Dir: SortAsc}
	}
}

// Query is the shared projection input: a case-insensitive substring
// search across the type's text fields, and (for associations) an
// exact-match manager filter.
type Query struct {
	Search        string
	ManagerFilter string
	Sort          Sort
}

func matches(needle string, fields ...string) bool {
	if needle == "" {
		return true
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), needle) {
			return true
		}
	}
	return false
}

// sortRows orders rows case-insensitively on the stringified sort field.
// The sort is stable so equal keys keep their draft order.
func sortRows[T any](rows []T, s Sort, get func(T, record.Field) string) {
	if s.Dir == SortNone {
		return
	}
	sort.SliceStable(rows, func(i, j int) bool {
		a := strings.ToLower(get(rows[i], s.Key))
		b := strings.ToLower(get(rows[j], s.Key))
		if s.Dir == SortDesc {
			return a > b
		}
		return a < b
	})
}

// hoistNew moves rows flagged new to the front, preserving the relative
// order of everything else.
func hoistNew[T any](rows []T, isNew func(T) bool) []T {
	out := make([]T, 0, len(rows))
	for _, r := range rows {
		if isNew(r) {
			out = append(out, r)
		}
	}
	for _, r := range rows {
		if !isNew(r) {
			out = append(out, r)
		}
	}
	return out
}

// Managers projects the manager drafts for display.
func Managers(rows []record.Manager, q Query) []record.Manager {
	needle := strings.ToLower(strings.TrimSpace(q.Search))
	filtered := make([]record.Manager, 0, len(rows))
	for _, m := range rows {
		if m.Deleted {
			continue
		}
		if !matches(needle, m.Name, m.Email, m.Titles, m.Initials) {
			continue
		}
		filtered = append(filtered, m)
	}

	sortRows(filtered, q.Sort, func(m record.Manager, f record.Field) string {
		v, _ := m.Get(f)
		return v
	})
	return hoistNew(filtered, func(m record.Manager) bool { return m.IsNew })
}

// Associations projects the association drafts for display. The search
// also covers the resolved manager display name, and ManagerFilter
// restricts rows to one manager by exact foreign-key match.
func Associations(rows []record.Association, byID map[string]record.Manager, q Query) []record.Association {
	needle := strings.ToLower(strings.TrimSpace(q.Search))
	filtered := make([]record.Association, 0, len(rows))
	for _, a := range rows {
		if a.Deleted {
			continue
		}
		if q.ManagerFilter != "" && a.ManagerID != q.ManagerFilter {
			continue
		}
		if !matches(needle, a.LegalName, a.FilterName, a.Location, a.DisplayManagerName(byID)) {
			continue
		}
		filtered = append(filtered, a)
	}

	sortRows(filtered, q.Sort, func(a record.Association, f record.Field) string {
		v, _ := a.Get(f)
		return v
	})
	return hoistNew(filtered, func(a record.Association) bool { return a.IsNew })
}
