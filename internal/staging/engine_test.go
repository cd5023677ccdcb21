package staging

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"condoctl/internal/record"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func loadedEngine(t *testing.T) (*Engine, *Store, *fakeBackend) {
	t.Helper()
	s, b := loadedStore(t)
	return NewEngine(s, b, nil), s, b
}

func TestApplyNothingStaged(t *testing.T) {
	e, _, b := loadedEngine(t)
	require.NoError(t, e.Apply(context.Background()))
	assert.Empty(t, b.opLog(), "a clean store must not touch the backend")
}

func TestApplyPhaseOrdering(t *testing.T) {
	e, s, b := loadedEngine(t)

	require.NoError(t, s.StageDelete(record.KindAssociation, "a2"))
	require.NoError(t, s.StageDelete(record.KindManager, "m2"))
	_, err := s.CreateLocal(record.KindManager, map[record.Field]string{
		record.FieldName:  "Fresh Manager",
		record.FieldEmail: "fresh@example.com",
	})
	require.NoError(t, err)
	require.NoError(t, s.UpdateField(record.KindManager, "m1", record.FieldName, "Edited"))

	require.NoError(t, e.Apply(context.Background()))

	ops := b.opLog()
	idx := func(prefix string) int {
		for i, op := range ops {
			if strings.HasPrefix(op, prefix) {
				return i
			}
		}
		t.Fatalf("operation %q never issued: %v", prefix, ops)
		return -1
	}

	assert.Less(t, idx("delete-association"), idx("delete-manager"), "association deletes precede manager deletes")
	assert.Less(t, idx("delete-manager"), idx("create-manager"), "deletes precede creates")
	assert.Less(t, idx("create-manager"), idx("update-manager"), "creates precede updates")

	// Apply resynchronizes, so the staged state is gone and the store
	// reflects the server.
	assert.Equal(t, 0, s.PendingChanges())
	assert.Len(t, s.Managers(), 2, "m2 deleted, fresh manager created")
}

func TestApplyRemapsTemporaryForeignKey(t *testing.T) {
	e, s, b := loadedEngine(t)

	mid, err := s.CreateLocal(record.KindManager, map[record.Field]string{
		record.FieldName:  "Fresh Manager",
		record.FieldEmail: "fresh@example.com",
	})
	require.NoError(t, err)
	_, err = s.CreateLocal(record.KindAssociation, map[record.Field]string{
		record.FieldLegalName: "Fresh Court",
		record.FieldManagerID: mid,
	})
	require.NoError(t, err)

	require.NoError(t, e.Apply(context.Background()))

	var sentFK string
	for _, op := range b.opLog() {
		if fk, ok := strings.CutPrefix(op, "create-association "); ok {
			sentFK = fk
		}
	}
	require.NotEmpty(t, sentFK)
	assert.False(t, record.IsTempID(sentFK), "temporary id must be translated before the create")

	// The resolved key must point at the manager the backend just created.
	found := false
	for _, m := range b.managers {
		if m.ID == sentFK {
			found = true
			assert.Equal(t, "Fresh Manager", m.Name)
		}
	}
	assert.True(t, found)
}

func TestApplyUnresolvedTemporaryKeySentAsIs(t *testing.T) {
	e, s, b := loadedEngine(t)

	// Reference a temporary id whose manager row was removed before apply.
	mid, err := s.CreateLocal(record.KindManager, nil)
	require.NoError(t, err)
	_, err = s.CreateLocal(record.KindAssociation, map[record.Field]string{
		record.FieldManagerID: mid,
	})
	require.NoError(t, err)
	require.NoError(t, s.StageDelete(record.KindManager, mid))

	require.NoError(t, e.Apply(context.Background()))

	var sentFK string
	for _, op := range b.opLog() {
		if fk, ok := strings.CutPrefix(op, "create-association "); ok {
			sentFK = fk
		}
	}
	assert.Equal(t, mid, sentFK, "an unresolvable temporary key goes out untranslated")
}

func TestApplySkipsDeletedAndNewRowsInUpdates(t *testing.T) {
	e, s, b := loadedEngine(t)

	require.NoError(t, s.UpdateField(record.KindManager, "m1", record.FieldName, "Edited"))
	require.NoError(t, s.StageDelete(record.KindManager, "m1"))
	require.NoError(t, e.Apply(context.Background()))

	for _, op := range b.opLog() {
		assert.False(t, strings.HasPrefix(op, "update-"), "a delete-staged row must not also be updated, got %v", b.opLog())
	}
}

func TestApplyFailureStillResynchronizes(t *testing.T) {
	e, s, b := loadedEngine(t)
	b.failOn = "update-manager"

	require.NoError(t, s.UpdateField(record.KindManager, "m1", record.FieldName, "Edited"))
	err := e.Apply(context.Background())
	require.Error(t, err)

	var opErr *OpError
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, "update", opErr.Op)
	assert.Equal(t, record.KindManager, opErr.Entity)
	assert.Equal(t, "m1", opErr.ID)

	// Resynchronization ran regardless: the draft is back to server state.
	assert.Equal(t, 0, s.PendingChanges())
	assert.Equal(t, "Jane Roe", s.Managers()[0].Name)
}

func TestApplyCreateFailureAbortsRemainingPhases(t *testing.T) {
	e, s, b := loadedEngine(t)
	b.failOn = "create-manager"

	_, err := s.CreateLocal(record.KindManager, nil)
	require.NoError(t, err)
	require.NoError(t, s.UpdateField(record.KindAssociation, "a1", record.FieldLocation, "Orlando"))

	require.Error(t, e.Apply(context.Background()))
	for _, op := range b.opLog() {
		assert.False(t, strings.HasPrefix(op, "update-"), "updates must not run after a failed create")
	}
}

func TestApplyReentrancyGuard(t *testing.T) {
	e, s, _ := loadedEngine(t)
	require.NoError(t, s.UpdateField(record.KindManager, "m1", record.FieldName, "Edited"))

	// Simulate an in-flight apply.
	e.inFlight.Store(true)
	assert.True(t, errors.Is(e.Apply(context.Background()), ErrApplyInFlight))

	e.inFlight.Store(false)
	require.NoError(t, e.Apply(context.Background()))
}
