package record

import (
	"fmt"
	"strings"
)

// The backend is inconsistent about key casing: the Go services emit
// PascalCase struct fields while older endpoints emit camelCase or
// snake_case. Normalization accepts any of them, trims string values and
// maps null/absent to "".

// clean coerces a raw JSON value to a trimmed string.
func clean(v any) string {
	switch s := v.(type) {
	case string:
		return strings.TrimSpace(s)
	case nil:
		return ""
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

// pick returns the first present key from raw.
func pick(raw map[string]any, keys ...string) any {
	for _, k := range keys {
		if v, ok := raw[k]; ok && v != nil {
			return v
		}
	}
	return nil
}

// NormalizeManager converts a raw backend manager record into canonical
// form.
func NormalizeManager(raw map[string]any) Manager {
	return Manager{
		ID:       clean(pick(raw, "id", "ID")),
		Name:     clean(pick(raw, "name", "Name")),
		Email:    clean(pick(raw, "email", "Email")),
		Titles:   clean(pick(raw, "titles", "Titles")),
		Initials: clean(pick(raw, "initials", "Initials")),
	}
}

// NormalizeAssociation converts a raw backend association record into
// canonical form. The display name resolves in priority order: an
// embedded manager sub-object, then a lookup of the foreign key against
// byID, then empty (callers fall back to "Unassigned" at render time).
func NormalizeAssociation(raw map[string]any, byID map[string]Manager) Association {
	managerID := clean(pick(raw, "managerId", "ManagerID", "manager_id"))

	var managerName string
	if embedded, ok := pick(raw, "Manager", "manager").(map[string]any); ok {
		managerName = clean(pick(embedded, "Name", "name"))
	} else if m, ok := byID[managerID]; ok {
		managerName = m.Name
	}

	return Association{
		ID:          clean(pick(raw, "id", "ID")),
		LegalName:   clean(pick(raw, "legalName", "LegalName")),
		FilterName:  clean(pick(raw, "filterName", "FilterName", "filter_name")),
		Location:    clean(pick(raw, "location", "Location")),
		ManagerID:   managerID,
		ManagerName: managerName,
	}
}

// UnwrapList accepts a decoded list payload that is either a bare array
// or an object wrapping the array under a known key, and returns the raw
// records. Anything else yields an empty slice rather than an error.
func UnwrapList(payload any) []map[string]any {
	var items []any
	switch p := payload.(type) {
	case []any:
		items = p
	case map[string]any:
		for _, key := range []string{"associations", "managers", "data"} {
			if arr, ok := p[key].([]any); ok {
				items = arr
				break
			}
		}
	}

	out := make([]map[string]any, 0, len(items))
	for _, it := range items {
		if m, ok := it.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}
