package staging

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"condoctl/internal/record"
)

// ErrApplyInFlight is returned when Apply is entered while a previous
// invocation is still running. The UI disables Apply too, but the engine
// guards regardless.
var ErrApplyInFlight = errors.New("apply already in progress")

// OpError identifies the backend operation that failed during Apply.
type OpError struct {
	Op     string // "delete", "create" or "update"
	Entity record.Kind
	ID     string // row identifier, or the temporary one for creates
	Err    error
}

func (e *OpError) Error() string {
	return fmt.Sprintf("%s %s %s: %v", e.Op, e.Entity, e.ID, e.Err)
}

func (e *OpError) Unwrap() error { return e.Err }

// Engine converts the store's staged state into an ordered sequence of
// backend operations: deletes first (associations before managers),
// then creates (sequential, with temporary-identifier remapping), then
// full-record updates, then an unconditional resynchronization.
type Engine struct {
	store   *Store
	backend Backend
	log     *zap.Logger

	inFlight atomic.Bool
}

// NewEngine creates an engine over a store and the backend it was loaded
// from. A nil logger is replaced with a no-op one.
func NewEngine(store *Store, backend Backend, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{store: store, backend: backend, log: log}
}

// Apply executes the staged transaction. Phases run strictly in order
// and a failure aborts the remaining phases, but resynchronization is
// attempted regardless so the store never reflects a state the server
// does not. Completed deletes and creates are not rolled back.
func (e *Engine) Apply(ctx context.Context) error {
	if !e.inFlight.CompareAndSwap(false, true) {
		return ErrApplyInFlight
	}
	defer e.inFlight.Store(false)

	if e.store.PendingChanges() == 0 {
		return nil
	}

	applyErr := e.run(ctx)

	if err := e.store.Reload(ctx); err != nil {
		if applyErr != nil {
			e.log.Warn("resynchronization after failed apply also failed", zap.Error(err))
			return applyErr
		}
		return fmt.Errorf("changes applied but resynchronization failed: %w", err)
	}
	return applyErr
}

func (e *Engine) run(ctx context.Context) error {
	if err := e.deletePhase(ctx); err != nil {
		return err
	}
	if err := e.createPhase(ctx); err != nil {
		return err
	}
	return e.updatePhase(ctx)
}

// deletePhase issues association deletes, then manager deletes. Deletes
// within a type are independent and run concurrently.
func (e *Engine) deletePhase(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	for id := range e.store.deleteAssociations {
		g.Go(func() error {
			if err := e.backend.DeleteAssociation(gctx, id); err != nil {
				return &OpError{Op: "delete", Entity: record.KindAssociation, ID: id, Err: err}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	g, gctx = errgroup.WithContext(ctx)
	for id := range e.store.deleteManagers {
		g.Go(func() error {
			if err := e.backend.DeleteManager(gctx, id); err != nil {
				return &OpError{Op: "delete", Entity: record.KindManager, ID: id, Err: err}
			}
			return nil
		})
	}
	return g.Wait()
}

// createPhase sends new managers one at a time, resolves each temporary
// identifier to the backend-assigned one, then sends new associations
// with their foreign keys remapped. Creation responses do not echo the
// temporary identifier, so created managers are matched back by their
// name+email pair; the first unclaimed match wins. The translation table
// lives only for the duration of this phase.
func (e *Engine) createPhase(ctx context.Context) error {
	var newManagers []record.Manager
	for _, m := range e.store.managers {
		if m.IsNew && !m.Deleted {
			newManagers = append(newManagers, m)
		}
	}

	created := make([]record.Manager, 0, len(newManagers))
	for _, m := range newManagers {
		got, err := e.backend.CreateManager(ctx, m)
		if err != nil {
			return &OpError{Op: "create", Entity: record.KindManager, ID: m.ID, Err: err}
		}
		created = append(created, got)
	}

	remap := make(map[string]string, len(newManagers))
	claimed := make(map[int]bool, len(created))
	for _, m := range newManagers {
		for i, got := range created {
			if !claimed[i] && got.Name == m.Name && got.Email == m.Email {
				remap[m.ID] = got.ID
				claimed[i] = true
				break
			}
		}
		if _, ok := remap[m.ID]; !ok {
			e.log.Warn("created manager could not be matched back to its staged row",
				zap.String("tempID", m.ID), zap.String("name", m.Name))
		}
	}

	for _, a := range e.store.associations {
		if !a.IsNew || a.Deleted {
			continue
		}
		out := a
		if record.IsTempID(out.ManagerID) {
			if real, ok := remap[out.ManagerID]; ok {
				out.ManagerID = real
			} else {
				// Inconsistency worth surfacing: the referenced manager was
				// never created, so the backend will see the temporary key.
				e.log.Warn("association references an unresolved temporary manager id",
					zap.String("associationID", out.ID), zap.String("managerID", out.ManagerID))
			}
		}
		if _, err := e.backend.CreateAssociation(ctx, out); err != nil {
			return &OpError{Op: "create", Entity: record.KindAssociation, ID: a.ID, Err: err}
		}
	}

	return nil
}

// updatePhase sends a full-record update for every dirty row that is
// neither staged for deletion nor locally created.
func (e *Engine) updatePhase(ctx context.Context) error {
	for id := range e.store.dirtyManagers {
		idx := e.store.managerIndex(id)
		if idx < 0 {
			continue
		}
		row := e.store.managers[idx]
		if row.Deleted || row.IsNew {
			continue
		}
		if err := e.backend.UpdateManager(ctx, row); err != nil {
			return &OpError{Op: "update", Entity: record.KindManager, ID: id, Err: err}
		}
	}

	for id := range e.store.dirtyAssociations {
		idx := e.store.associationIndex(id)
		if idx < 0 {
			continue
		}
		row := e.store.associations[idx]
		if row.Deleted || row.IsNew {
			continue
		}
		if err := e.backend.UpdateAssociation(ctx, row); err != nil {
			return &OpError{Op: "update", Entity: record.KindAssociation, ID: id, Err: err}
		}
	}
	return nil
}
