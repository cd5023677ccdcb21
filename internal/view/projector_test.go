package view

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"condoctl/internal/record"
)

func managerFixtures() []record.Manager {
	return []record.Manager{
		{ID: "m1", Name: "Charlie Day", Email: "charlie@example.com"},
		{ID: "m2", Name: "alice Adams", Email: "alice@example.com"},
		{ID: "m3", Name: "Bob Baker", Email: "bob@example.com"},
	}
}

func associationFixtures() []record.Association {
	return []record.Association{
		{ID: "a1", LegalName: "Sunset Towers", FilterName: "sunset_towers", Location: "Miami", ManagerID: "m1"},
		{ID: "a2", LegalName: "Bayview Court", FilterName: "bayview_court", Location: "Tampa", ManagerID: "m2"},
		{ID: "a3", LegalName: "Palm Grove", FilterName: "palm_grove", Location: "Miami", ManagerID: "m1"},
	}
}

func TestSortCycle(t *testing.T) {
	var s Sort

	s = s.Cycle(record.FieldName)
	assert.Equal(t, Sort{Key: record.FieldName, Dir: SortAsc}, s)

	s = s.Cycle(record.FieldName)
	assert.Equal(t, SortDesc, s.Dir)

	s = s.Cycle(record.FieldName)
	assert.Equal(t, SortNone, s.Dir)

	s = s.Cycle(record.FieldName)
	assert.Equal(t, SortAsc, s.Dir, "cycle wraps back to ascending")

	s = s.Cycle(record.FieldEmail)
	assert.Equal(t, Sort{Key: record.FieldEmail, Dir: SortAsc}, s, "new column restarts ascending")
}

func TestManagersSortIsCaseInsensitive(t *testing.T) {
	rows := Managers(managerFixtures(), Query{Sort: Sort{Key: record.FieldName, Dir: SortAsc}})

	got := []string{rows[0].Name, rows[1].Name, rows[2].Name}
	assert.Equal(t, []string{"alice Adams", "Bob Baker", "Charlie Day"}, got)
}

func TestManagersFullCycleRestoresOriginalOrder(t *testing.T) {
	fixtures := managerFixtures()

	var s Sort
	s = s.Cycle(record.FieldName) // asc
	s = s.Cycle(record.FieldName) // desc
	s = s.Cycle(record.FieldName) // none

	rows := Managers(fixtures, Query{Sort: s})
	if diff := cmp.Diff(fixtures, rows); diff != "" {
		t.Errorf("three toggles must land back on draft order:\n%s", diff)
	}
}

func TestManagersExcludeDeleted(t *testing.T) {
	fixtures := managerFixtures()
	fixtures[1].Deleted = true

	rows := Managers(fixtures, Query{})
	require.Len(t, rows, 2)
	for _, m := range rows {
		assert.NotEqual(t, "m2", m.ID)
	}
}

func TestManagersSearch(t *testing.T) {
	rows := Managers(managerFixtures(), Query{Search: "  ALICE "})
	require.Len(t, rows, 1)
	assert.Equal(t, "m2", rows[0].ID)

	assert.Empty(t, Managers(managerFixtures(), Query{Search: "zebra"}))
}

func TestNewRowsHoistRegardlessOfSort(t *testing.T) {
	fixtures := append(managerFixtures(),
		record.Manager{ID: "NEW-M-1", Name: "Zed Young", IsNew: true})

	rows := Managers(fixtures, Query{Sort: Sort{Key: record.FieldName, Dir: SortAsc}})
	require.NotEmpty(t, rows)
	assert.Equal(t, "NEW-M-1", rows[0].ID, "a new row stays on top even when it sorts last")

	// Relative order of persisted rows is still the sorted one.
	got := []string{rows[1].Name, rows[2].Name, rows[3].Name}
	assert.Equal(t, []string{"alice Adams", "Bob Baker", "Charlie Day"}, got)
}

func TestAssociationsSearchIncludesManagerName(t *testing.T) {
	byID := map[string]record.Manager{
		"m1": {ID: "m1", Name: "Charlie Day"},
		"m2": {ID: "m2", Name: "alice Adams"},
	}

	rows := Associations(associationFixtures(), byID, Query{Search: "charlie"})
	require.Len(t, rows, 2, "search must hit the resolved manager display name")
	assert.Equal(t, "a1", rows[0].ID)
	assert.Equal(t, "a3", rows[1].ID)
}

func TestAssociationsManagerFilterIsExact(t *testing.T) {
	rows := Associations(associationFixtures(), nil, Query{ManagerFilter: "m1"})
	require.Len(t, rows, 2)
	for _, a := range rows {
		assert.Equal(t, "m1", a.ManagerID)
	}

	assert.Empty(t, Associations(associationFixtures(), nil, Query{ManagerFilter: "m"}),
		"filter must not prefix-match")
}

func TestAssociationsExcludeDeleted(t *testing.T) {
	fixtures := associationFixtures()
	fixtures[0].Deleted = true

	rows := Associations(fixtures, nil, Query{})
	require.Len(t, rows, 2)
	for _, a := range rows {
		assert.NotEqual(t, "a1", a.ID)
	}
}

func TestProjectionDoesNotMutateInput(t *testing.T) {
	fixtures := associationFixtures()
	want := associationFixtures()

	Associations(fixtures, nil, Query{Sort: Sort{Key: record.FieldLegalName, Dir: SortDesc}})
	if diff := cmp.Diff(want, fixtures); diff != "" {
		t.Errorf("projection mutated the draft slice:\n%s", diff)
	}
}
