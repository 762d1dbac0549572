// Package reconcile computes insert/update/delete sets for a child
// collection submitted wholesale against the persisted one. It is pure:
// no I/O, no ordering requirements between the produced sets.
package reconcile

import (
	"errors"
	"fmt"

	"github.com/storeops/opsflow/internal/domain/entity"
)

var (
	// ErrStaleChildReference is returned when a submitted record claims a
	// persisted id that no longer exists. The record is rejected rather
	// than silently reinserted.
	ErrStaleChildReference = errors.New("submitted record references an unknown persisted id")

	// ErrDuplicateChildReference is returned when two submitted records
	// claim the same persisted id, which would break the one-operation-
	// per-record partition.
	ErrDuplicateChildReference = errors.New("submitted collection references the same persisted id twice")
)

// Child is any record carrying an explicit new-vs-existing identity
type Child interface {
	ChildRef() entity.Ref
}

// Ops holds the three disjoint operation sets produced by Reconcile.
// The caller must apply all three as one logical unit.
type Ops[T Child] struct {
	ToInsert []T
	ToUpdate []T
	ToDelete []int64
}

// Empty reports whether reconciliation produced no work
func (o *Ops[T]) Empty() bool {
	return len(o.ToInsert) == 0 && len(o.ToUpdate) == 0 && len(o.ToDelete) == 0
}

// Reconcile diffs the submitted collection against the persisted one:
//
//   - records tagged New go to ToInsert
//   - records tagged Existing whose id is still persisted go to ToUpdate,
//     as a full-field overwrite (last-write-wins, no per-field merge)
//   - persisted ids absent from the submission go to ToDelete
//
// An empty submission deletes everything persisted. The three sets
// partition the union of old and new identities; no record is touched by
// more than one operation.
func Reconcile[T Child](persisted []T, submitted []T) (*Ops[T], error) {
	persistedIDs := make(map[int64]bool, len(persisted))
	for _, p := range persisted {
		id, ok := p.ChildRef().ID()
		if !ok {
			return nil, fmt.Errorf("persisted record without a persisted id")
		}
		persistedIDs[id] = true
	}

	ops := &Ops[T]{}
	kept := make(map[int64]bool, len(submitted))

	for _, s := range submitted {
		ref := s.ChildRef()
		if ref.IsNew() {
			ops.ToInsert = append(ops.ToInsert, s)
			continue
		}

		id, _ := ref.ID()
		if !persistedIDs[id] {
			return nil, fmt.Errorf("%w: %d", ErrStaleChildReference, id)
		}
		if kept[id] {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateChildReference, id)
		}

		kept[id] = true
		ops.ToUpdate = append(ops.ToUpdate, s)
	}

	for _, p := range persisted {
		id, _ := p.ChildRef().ID()
		if !kept[id] {
			ops.ToDelete = append(ops.ToDelete, id)
		}
	}

	return ops, nil
}
