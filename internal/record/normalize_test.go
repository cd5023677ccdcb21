package record

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestNormalizeManagerCasingEquivalence(t *testing.T) {
	camel := map[string]any{
		"id": "m1", "name": "Jane Roe", "email": "jane@example.com",
		"titles": "CMCA", "initials": "JR",
	}
	pascal := map[string]any{
		"ID": "m1", "Name": "Jane Roe", "Email": "jane@example.com",
		"Titles": "CMCA", "Initials": "JR",
	}

	if diff := cmp.Diff(NormalizeManager(camel), NormalizeManager(pascal)); diff != "" {
		t.Errorf("casing variants normalized differently (-camel +pascal):\n%s", diff)
	}
}

func TestNormalizeManagerCleansValues(t *testing.T) {
	m := NormalizeManager(map[string]any{
		"id":     "  m1  ",
		"name":   " Jane Roe ",
		"email":  nil,
		"titles": 7, // backend occasionally emits numbers
	})
	assert.Equal(t, "m1", m.ID)
	assert.Equal(t, "Jane Roe", m.Name)
	assert.Equal(t, "", m.Email)
	assert.Equal(t, "7", m.Titles)
	assert.Equal(t, "", m.Initials)
}

func TestNormalizeAssociationCasingEquivalence(t *testing.T) {
	variants := []map[string]any{
		{"id": "a1", "legalName": "Sunset Towers", "filterName": "sunset_towers", "location": "Miami", "managerId": "m1"},
		{"ID": "a1", "LegalName": "Sunset Towers", "FilterName": "sunset_towers", "Location": "Miami", "ManagerID": "m1"},
		{"id": "a1", "legalName": "Sunset Towers", "filter_name": "sunset_towers", "location": "Miami", "manager_id": "m1"},
	}

	base := NormalizeAssociation(variants[0], nil)
	for i, raw := range variants[1:] {
		if diff := cmp.Diff(base, NormalizeAssociation(raw, nil)); diff != "" {
			t.Errorf("variant %d normalized differently:\n%s", i+1, diff)
		}
	}
}

func TestNormalizeAssociationManagerName(t *testing.T) {
	byID := map[string]Manager{"m1": {ID: "m1", Name: "Jane Roe"}}

	embedded := NormalizeAssociation(map[string]any{
		"id": "a1", "managerId": "m1",
		"Manager": map[string]any{"Name": "Embedded Name"},
	}, byID)
	assert.Equal(t, "Embedded Name", embedded.ManagerName, "embedded sub-object takes priority")

	looked := NormalizeAssociation(map[string]any{"id": "a2", "managerId": "m1"}, byID)
	assert.Equal(t, "Jane Roe", looked.ManagerName)

	missing := NormalizeAssociation(map[string]any{"id": "a3", "managerId": "m9"}, byID)
	assert.Equal(t, "", missing.ManagerName, "unknown key stays empty until render")
}

func TestUnwrapList(t *testing.T) {
	row := map[string]any{"id": "a1"}

	tests := []struct {
		name    string
		payload any
		want    int
	}{
		{"bare array", []any{row, row}, 2},
		{"associations wrapper", map[string]any{"associations": []any{row}}, 1},
		{"managers wrapper", map[string]any{"managers": []any{row}}, 1},
		{"data wrapper", map[string]any{"data": []any{row, row, row}}, 3},
		{"non-map elements skipped", []any{row, "junk", 42}, 1},
		{"unknown shape", map[string]any{"items": []any{row}}, 0},
		{"nil payload", nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Len(t, UnwrapList(tt.payload), tt.want)
		})
	}
}
