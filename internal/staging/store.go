// Package staging implements the client-side transaction layer for the
// data editor: a Store that accumulates edits, creations and deletions
// against the last-synced snapshot, and an Engine that applies the
// staged state to the backend in one coordinated pass.
package staging

import (
	"context"
	"errors"
	"fmt"
	"time"

	"condoctl/internal/record"
)

// Backend is the slice of the admin API the staging layer consumes.
// ListAssociations takes the current manager set so embedded display
// names can be resolved during normalization.
type Backend interface {
	ListManagers(ctx context.Context) ([]record.Manager, error)
	ListAssociations(ctx context.Context, byID map[string]record.Manager) ([]record.Association, error)
	CreateManager(ctx context.Context, m record.Manager) (record.Manager, error)
	UpdateManager(ctx context.Context, m record.Manager) error
	DeleteManager(ctx context.Context, id string) error
	CreateAssociation(ctx context.Context, a record.Association) (record.Association, error)
	UpdateAssociation(ctx context.Context, a record.Association) error
	DeleteAssociation(ctx context.Context, id string) error
}

// ErrNoManagers is returned when an association is created locally while
// no non-deleted manager exists to receive its foreign key.
var ErrNoManagers = errors.New("no manager available: create a manager first")

// fieldSet tracks which fields of a row differ from the snapshot.
type fieldSet map[record.Field]bool

// Store holds, per record type, the last-synced snapshot and the mutable
// draft collection, plus dirty and delete markers. All mutation methods
// are synchronous and never touch the network; only Reload talks to the
// backend. The Store is confined to the single UI goroutine and does not
// lock.
type Store struct {
	backend Backend

	snapManagers     []record.Manager
	snapAssociations []record.Association

	managers     []record.Manager
	associations []record.Association

	dirtyManagers     map[string]fieldSet
	dirtyAssociations map[string]fieldSet

	deleteManagers     map[string]bool
	deleteAssociations map[string]bool
}

// NewStore creates an empty store bound to a backend.
func NewStore(b Backend) *Store {
	s := &Store{backend: b}
	s.clearMarkers()
	return s
}

func (s *Store) clearMarkers() {
	s.dirtyManagers = make(map[string]fieldSet)
	s.dirtyAssociations = make(map[string]fieldSet)
	s.deleteManagers = make(map[string]bool)
	s.deleteAssociations = make(map[string]bool)
}

// Reload fetches both record types, normalizes them and replaces
// snapshot and draft collections together, clearing all staged state.
// Nothing is replaced until both fetches have succeeded, so a failed
// reload leaves the store untouched.
func (s *Store) Reload(ctx context.Context) error {
	managers, err := s.backend.ListManagers(ctx)
	if err != nil {
		return fmt.Errorf("reload managers: %w", err)
	}
	byID := make(map[string]record.Manager, len(managers))
	for _, m := range managers {
		byID[m.ID] = m
	}
	associations, err := s.backend.ListAssociations(ctx, byID)
	if err != nil {
		return fmt.Errorf("reload associations: %w", err)
	}

	s.snapManagers = append([]record.Manager(nil), managers...)
	s.snapAssociations = append([]record.Association(nil), associations...)
	s.managers = append([]record.Manager(nil), managers...)
	s.associations = append([]record.Association(nil), associations...)
	s.clearMarkers()
	return nil
}

// Managers returns a copy of the manager draft collection.
func (s *Store) Managers() []record.Manager {
	return append([]record.Manager(nil), s.managers...)
}

// Associations returns a copy of the association draft collection.
func (s *Store) Associations() []record.Association {
	return append([]record.Association(nil), s.associations...)
}

// ManagersByID returns the current manager drafts keyed by identifier.
func (s *Store) ManagersByID() map[string]record.Manager {
	byID := make(map[string]record.Manager, len(s.managers))
	for _, m := range s.managers {
		if m.ID != "" {
			byID[m.ID] = m
		}
	}
	return byID
}

// IsDirty reports whether a specific field of a row differs from its
// snapshot value.
func (s *Store) IsDirty(kind record.Kind, id string, f record.Field) bool {
	return s.dirtyFor(kind)[id][f]
}

func (s *Store) dirtyFor(kind record.Kind) map[string]fieldSet {
	if kind == record.KindManager {
		return s.dirtyManagers
	}
	return s.dirtyAssociations
}

func (s *Store) deletesFor(kind record.Kind) map[string]bool {
	if kind == record.KindManager {
		return s.deleteManagers
	}
	return s.deleteAssociations
}

// markDirty sets or clears a single dirty flag, dropping the row entry
// when its set empties.
func (s *Store) markDirty(kind record.Kind, id string, f record.Field, dirty bool) {
	m := s.dirtyFor(kind)
	set := m[id]
	if dirty {
		if set == nil {
			set = make(fieldSet)
			m[id] = set
		}
		set[f] = true
		return
	}
	if set != nil {
		delete(set, f)
		if len(set) == 0 {
			delete(m, id)
		}
	}
}

// snapshotValue returns the original value a field is compared against.
// Rows created locally have no snapshot; their baseline is the empty
// string, so a seeded field stays dirty until blanked.
func (s *Store) snapshotValue(kind record.Kind, id string, f record.Field) string {
	if kind == record.KindManager {
		for _, m := range s.snapManagers {
			if m.ID == id {
				v, _ := m.Get(f)
				return v
			}
		}
		return ""
	}
	for _, a := range s.snapAssociations {
		if a.ID == id {
			v, _ := a.Get(f)
			return v
		}
	}
	return ""
}

// UpdateField writes value into the identified draft row and recomputes
// that field's dirty flag against the snapshot. Editing a manager's name
// propagates the new display value into referencing association drafts
// (display denormalization only, those rows are not marked dirty).
// Editing an association's manager foreign key refreshes its display
// name from the current manager drafts.
func (s *Store) UpdateField(kind record.Kind, id string, f record.Field, value string) error {
	switch kind {
	case record.KindManager:
		idx := s.managerIndex(id)
		if idx < 0 {
			return fmt.Errorf("no manager with id %s", id)
		}
		if err := s.managers[idx].Set(f, value); err != nil {
			return err
		}
		if f == record.FieldName {
			for i := range s.associations {
				if s.associations[i].ManagerID == id {
					s.associations[i].ManagerName = value
				}
			}
		}
	case record.KindAssociation:
		idx := s.associationIndex(id)
		if idx < 0 {
			return fmt.Errorf("no association with id %s", id)
		}
		if err := s.associations[idx].Set(f, value); err != nil {
			return err
		}
		if f == record.FieldManagerID {
			if m, ok := s.ManagersByID()[value]; ok {
				s.associations[idx].ManagerName = m.Name
			}
		}
	default:
		return fmt.Errorf("unknown record kind %q", kind)
	}

	s.markDirty(kind, id, f, value != s.snapshotValue(kind, id, f))
	return nil
}

func (s *Store) managerIndex(id string) int {
	for i := range s.managers {
		if s.managers[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) associationIndex(id string) int {
	for i := range s.associations {
		if s.associations[i].ID == id {
			return i
		}
	}
	return -1
}

// CreateLocal inserts a new draft row at the front of its collection
// under a fresh temporary identifier, seeds its fields with defaults
// overlaid by seed, marks every seeded field dirty and tags the row new.
// Nothing is sent to the backend until Apply.
//
// Creating an association requires at least one non-deleted manager; the
// new row's foreign key defaults to the first one.
func (s *Store) CreateLocal(kind record.Kind, seed map[record.Field]string) (string, error) {
	switch kind {
	case record.KindManager:
		id := record.NewTempID(kind)
		uniq := fmt.Sprintf("%06d", time.Now().UnixMilli()%1000000)
		m := record.Manager{
			ID:       id,
			Name:     "New Manager " + uniq,
			Email:    fmt.Sprintf("new.manager.%s@example.com", uniq),
			Titles:   "Manager",
			Initials: "NM",
			IsNew:    true,
		}
		for f, v := range seed {
			if err := m.Set(f, v); err != nil {
				return "", err
			}
		}
		s.managers = append([]record.Manager{m}, s.managers...)
		for _, f := range record.ManagerFields() {
			s.markDirty(kind, id, f, true)
		}
		return id, nil

	case record.KindAssociation:
		var owner *record.Manager
		for i := range s.managers {
			if !s.managers[i].Deleted {
				owner = &s.managers[i]
				break
			}
		}
		if owner == nil {
			return "", ErrNoManagers
		}
		id := record.NewTempID(kind)
		legal := "New Association"
		a := record.Association{
			ID:          id,
			LegalName:   legal,
			FilterName:  record.Slugify(legal),
			Location:    "-",
			ManagerID:   owner.ID,
			ManagerName: owner.Name,
			IsNew:       true,
		}
		for f, v := range seed {
			if err := a.Set(f, v); err != nil {
				return "", err
			}
		}
		if _, seeded := seed[record.FieldManagerID]; seeded {
			if m, ok := s.ManagersByID()[a.ManagerID]; ok {
				a.ManagerName = m.Name
			}
		}
		s.associations = append([]record.Association{a}, s.associations...)
		for _, f := range record.AssociationFields() {
			s.markDirty(kind, id, f, true)
		}
		return id, nil
	}
	return "", fmt.Errorf("unknown record kind %q", kind)
}

// StageDelete stages a row for removal. A row that was created locally
// is removed outright (it has nothing to delete on the backend); a
// persisted row toggles between staged-for-delete and untouched.
func (s *Store) StageDelete(kind record.Kind, id string) error {
	switch kind {
	case record.KindManager:
		idx := s.managerIndex(id)
		if idx < 0 {
			return fmt.Errorf("no manager with id %s", id)
		}
		if s.managers[idx].IsNew {
			s.managers = append(s.managers[:idx], s.managers[idx+1:]...)
			delete(s.dirtyManagers, id)
			return nil
		}
		if s.deleteManagers[id] {
			delete(s.deleteManagers, id)
			s.managers[idx].Deleted = false
		} else {
			s.deleteManagers[id] = true
			s.managers[idx].Deleted = true
		}
		return nil

	case record.KindAssociation:
		idx := s.associationIndex(id)
		if idx < 0 {
			return fmt.Errorf("no association with id %s", id)
		}
		if s.associations[idx].IsNew {
			s.associations = append(s.associations[:idx], s.associations[idx+1:]...)
			delete(s.dirtyAssociations, id)
			return nil
		}
		if s.deleteAssociations[id] {
			delete(s.deleteAssociations, id)
			s.associations[idx].Deleted = false
		} else {
			s.deleteAssociations[id] = true
			s.associations[idx].Deleted = true
		}
		return nil
	}
	return fmt.Errorf("unknown record kind %q", kind)
}

// Revert restores a row's draft to its snapshot value and clears its
// dirty and delete markers. Rows with no snapshot counterpart (locally
// created ones) are left alone; those are removed via StageDelete.
func (s *Store) Revert(kind record.Kind, id string) {
	switch kind {
	case record.KindManager:
		for _, snap := range s.snapManagers {
			if snap.ID == id {
				if idx := s.managerIndex(id); idx >= 0 {
					s.managers[idx] = snap
				}
				delete(s.dirtyManagers, id)
				delete(s.deleteManagers, id)
				return
			}
		}
	case record.KindAssociation:
		for _, snap := range s.snapAssociations {
			if snap.ID == id {
				if idx := s.associationIndex(id); idx >= 0 {
					s.associations[idx] = snap
				}
				delete(s.dirtyAssociations, id)
				delete(s.deleteAssociations, id)
				return
			}
		}
	}
}

// DiscardAll resets both draft collections to their snapshots and clears
// all staged state.
func (s *Store) DiscardAll() {
	s.managers = append([]record.Manager(nil), s.snapManagers...)
	s.associations = append([]record.Association(nil), s.snapAssociations...)
	s.clearMarkers()
}

// PendingChanges returns the total staged-change count: dirty fields of
// both types, plus delete-staged persisted rows, plus new non-deleted
// rows.
func (s *Store) PendingChanges() int {
	n := 0
	for _, set := range s.dirtyManagers {
		n += len(set)
	}
	for _, set := range s.dirtyAssociations {
		n += len(set)
	}
	n += len(s.deleteManagers)
	n += len(s.deleteAssociations)
	for _, m := range s.managers {
		if m.IsNew && !m.Deleted {
			n++
		}
	}
	for _, a := range s.associations {
		if a.IsNew && !a.Deleted {
			n++
		}
	}
	return n
}
