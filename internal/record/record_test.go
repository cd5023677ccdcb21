package record

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFieldAccess(t *testing.T) {
	m := Manager{Name: "Jane Roe", Email: "jane@example.com", Titles: "CMCA", Initials: "JR"}
	for _, f := range ManagerFields() {
		v, err := m.Get(f)
		require.NoError(t, err)
		assert.NotEmpty(t, v)
	}

	_, err := m.Get(FieldLegalName)
	assert.Error(t, err, "manager must reject association fields")
	assert.Error(t, m.Set(FieldManagerID, "x"))

	a := Association{LegalName: "Sunset Towers"}
	_, err = a.Get(FieldEmail)
	assert.Error(t, err, "association must reject manager fields")

	require.NoError(t, a.Set(FieldLocation, "Miami, FL"))
	assert.Equal(t, "Miami, FL", a.Location)
}

func TestTempIDs(t *testing.T) {
	mid := NewTempID(KindManager)
	aid := NewTempID(KindAssociation)

	assert.True(t, strings.HasPrefix(mid, "NEW-M-"))
	assert.True(t, strings.HasPrefix(aid, "NEW-A-"))
	assert.NotEqual(t, NewTempID(KindManager), mid, "temp ids must be unique")

	assert.True(t, IsTempID(mid))
	assert.True(t, IsTempID(aid))
	assert.False(t, IsTempID("8f14e45f-ceea-4673-9207-b287f4e0e1ab"))
	assert.False(t, IsTempID(""))
}

func TestDisplayManagerName(t *testing.T) {
	byID := map[string]Manager{"m1": {ID: "m1", Name: "Jane Roe"}}

	tests := []struct {
		name string
		a    Association
		want string
	}{
		{"embedded name wins", Association{ManagerID: "m1", ManagerName: "Embedded"}, "Embedded"},
		{"lookup by foreign key", Association{ManagerID: "m1"}, "Jane Roe"},
		{"unknown key", Association{ManagerID: "m9"}, "Unassigned"},
		{"no key at all", Association{}, "Unassigned"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.DisplayManagerName(byID))
		})
	}
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Sunset Towers", "sunset_towers"},
		{"  Château #9 — East  ", "ch_teau_9_east"},
		{"ALL CAPS", "all_caps"},
		{"already_slugged", "already_slugged"},
		{"---", ""},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Slugify(tt.in), "Slugify(%q)", tt.in)
	}

	long := Slugify(strings.Repeat("abcdefgh ", 20))
	assert.LessOrEqual(t, len(long), 64)
}
