package reconcile

import (
	"testing"

	"github.com/storeops/opsflow/internal/domain/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func persistedItem(id int64, code string) *entity.LineItem {
	return &entity.LineItem{Ref: entity.ExistingRef(id), Code: code}
}

func newItem(code string) *entity.LineItem {
	return &entity.LineItem{Ref: entity.NewRef(), Code: code}
}

func deletedIDs(ops *Ops[*entity.LineItem]) map[int64]bool {
	ids := make(map[int64]bool, len(ops.ToDelete))
	for _, id := range ops.ToDelete {
		ids[id] = true
	}
	return ids
}

func TestReconcile_AllNewInsertsEverything(t *testing.T) {
	submitted := []*entity.LineItem{newItem("a"), newItem("b")}

	ops, err := Reconcile(nil, submitted)
	require.NoError(t, err)

	assert.Len(t, ops.ToInsert, 2)
	assert.Empty(t, ops.ToUpdate)
	assert.Empty(t, ops.ToDelete)
}

func TestReconcile_ResubmittedRecordsUpdate(t *testing.T) {
	persisted := []*entity.LineItem{persistedItem(1, "old"), persistedItem(2, "old")}
	submitted := []*entity.LineItem{persistedItem(1, "changed"), persistedItem(2, "changed")}

	ops, err := Reconcile(persisted, submitted)
	require.NoError(t, err)

	assert.Empty(t, ops.ToInsert)
	assert.Len(t, ops.ToUpdate, 2)
	assert.Empty(t, ops.ToDelete)
	// Updates carry the submitted values wholesale
	assert.Equal(t, "changed", ops.ToUpdate[0].Code)
}

func TestReconcile_OmittedRecordsDelete(t *testing.T) {
	persisted := []*entity.LineItem{persistedItem(1, "a"), persistedItem(2, "b"), persistedItem(3, "c")}
	submitted := []*entity.LineItem{persistedItem(2, "b")}

	ops, err := Reconcile(persisted, submitted)
	require.NoError(t, err)

	assert.Empty(t, ops.ToInsert)
	assert.Len(t, ops.ToUpdate, 1)
	assert.ElementsMatch(t, []int64{1, 3}, ops.ToDelete)
}

func TestReconcile_EmptySubmissionDeletesEverything(t *testing.T) {
	persisted := []*entity.LineItem{persistedItem(1, "a"), persistedItem(2, "b")}

	ops, err := Reconcile(persisted, []*entity.LineItem{})
	require.NoError(t, err)

	assert.Empty(t, ops.ToInsert)
	assert.Empty(t, ops.ToUpdate)
	assert.ElementsMatch(t, []int64{1, 2}, ops.ToDelete)
}

func TestReconcile_MixedSubmission(t *testing.T) {
	persisted := []*entity.LineItem{persistedItem(1, "keep"), persistedItem(2, "drop")}
	submitted := []*entity.LineItem{persistedItem(1, "keep-edited"), newItem("fresh")}

	ops, err := Reconcile(persisted, submitted)
	require.NoError(t, err)

	require.Len(t, ops.ToInsert, 1)
	assert.Equal(t, "fresh", ops.ToInsert[0].Code)
	require.Len(t, ops.ToUpdate, 1)
	assert.Equal(t, "keep-edited", ops.ToUpdate[0].Code)
	assert.Equal(t, []int64{2}, ops.ToDelete)
}

// The three sets must partition the union of persisted and submitted
// identities: no id may appear in more than one set.
func TestReconcile_SetsAreDisjoint(t *testing.T) {
	persisted := []*entity.LineItem{persistedItem(1, "a"), persistedItem(2, "b"), persistedItem(3, "c")}
	submitted := []*entity.LineItem{persistedItem(1, "a2"), persistedItem(3, "c2"), newItem("d")}

	ops, err := Reconcile(persisted, submitted)
	require.NoError(t, err)

	deleted := deletedIDs(ops)
	for _, u := range ops.ToUpdate {
		id, ok := u.ChildRef().ID()
		require.True(t, ok, "updated record must carry a persisted id")
		assert.False(t, deleted[id], "id %d appears in both ToUpdate and ToDelete", id)
	}
	for _, i := range ops.ToInsert {
		assert.True(t, i.ChildRef().IsNew(), "inserted record must be new")
	}
}

// Re-reconciling after applying the ops produces no inserts or deletes,
// only same-value updates.
func TestReconcile_IdempotentAfterApplication(t *testing.T) {
	persisted := []*entity.LineItem{persistedItem(1, "keep"), persistedItem(2, "drop")}
	submitted := []*entity.LineItem{persistedItem(1, "keep-edited"), newItem("fresh")}

	ops, err := Reconcile(persisted, submitted)
	require.NoError(t, err)
	require.Len(t, ops.ToInsert, 1)
	require.Equal(t, []int64{2}, ops.ToDelete)

	// Simulate the store applying the ops: inserts get ids, updates
	// overwrite, deletes disappear.
	applied := []*entity.LineItem{persistedItem(1, "keep-edited"), persistedItem(3, "fresh")}
	resubmitted := []*entity.LineItem{persistedItem(1, "keep-edited"), persistedItem(3, "fresh")}

	again, err := Reconcile(applied, resubmitted)
	require.NoError(t, err)

	assert.Empty(t, again.ToInsert)
	assert.Empty(t, again.ToDelete)
	assert.Len(t, again.ToUpdate, 2)
}

func TestReconcile_StaleReferenceRejected(t *testing.T) {
	persisted := []*entity.LineItem{persistedItem(1, "a")}
	submitted := []*entity.LineItem{persistedItem(99, "ghost")}

	ops, err := Reconcile(persisted, submitted)
	assert.Nil(t, ops)
	assert.ErrorIs(t, err, ErrStaleChildReference)
}

func TestReconcile_DuplicateReferenceRejected(t *testing.T) {
	persisted := []*entity.LineItem{persistedItem(1, "a")}
	submitted := []*entity.LineItem{persistedItem(1, "first"), persistedItem(1, "second")}

	ops, err := Reconcile(persisted, submitted)
	assert.Nil(t, ops)
	assert.ErrorIs(t, err, ErrDuplicateChildReference)
}

func TestReconcile_WorksForPayments(t *testing.T) {
	persisted := []*entity.Payment{
		{Ref: entity.ExistingRef(10), Method: "pix"},
	}
	submitted := []*entity.Payment{
		{Ref: entity.ExistingRef(10), Method: "card", Installments: 3},
		{Ref: entity.NewRef(), Method: "cash"},
	}

	ops, err := Reconcile(persisted, submitted)
	require.NoError(t, err)

	assert.Len(t, ops.ToInsert, 1)
	assert.Len(t, ops.ToUpdate, 1)
	assert.Equal(t, "card", ops.ToUpdate[0].Method)
	assert.Empty(t, ops.ToDelete)
	assert.False(t, ops.Empty())
}

func TestOps_Empty(t *testing.T) {
	ops, err := Reconcile[*entity.LineItem](nil, nil)
	require.NoError(t, err)
	assert.True(t, ops.Empty())
}
