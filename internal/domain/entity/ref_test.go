package entity

import "testing"

func TestRef_NewVsExisting(t *testing.T) {
	fresh := NewRef()
	if !fresh.IsNew() {
		t.Error("NewRef() should report IsNew")
	}
	if _, ok := fresh.ID(); ok {
		t.Error("a new ref must not expose a persisted id")
	}

	persisted := ExistingRef(42)
	if persisted.IsNew() {
		t.Error("ExistingRef() should not report IsNew")
	}
	id, ok := persisted.ID()
	if !ok || id != 42 {
		t.Errorf("ID() = (%d, %v), want (42, true)", id, ok)
	}
}

func TestChildRef(t *testing.T) {
	item := &LineItem{Ref: ExistingRef(7)}
	if id, ok := item.ChildRef().ID(); !ok || id != 7 {
		t.Errorf("LineItem.ChildRef().ID() = (%d, %v), want (7, true)", id, ok)
	}

	payment := &Payment{Ref: NewRef()}
	if !payment.ChildRef().IsNew() {
		t.Error("Payment.ChildRef() should carry the new tag")
	}
}
