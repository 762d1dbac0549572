package entity

// RefKind discriminates between records the client just created and records
// already persisted by the datastore.
type RefKind int

const (
	// RefNew marks a record submitted without a persisted identity. Any
	// provisional client-side key is dropped before it reaches the domain.
	RefNew RefKind = iota

	// RefExisting marks a record carrying a persisted datastore id.
	RefExisting
)

// Ref is the explicit identity of a child record. New-vs-existing is a
// tagged value carried with the record, never inferred from the shape of
// an id string.
type Ref struct {
	kind RefKind
	id   int64
}

// NewRef returns the identity of a not-yet-persisted record
func NewRef() Ref {
	return Ref{kind: RefNew}
}

// ExistingRef returns the identity of a record persisted under id
func ExistingRef(id int64) Ref {
	return Ref{kind: RefExisting, id: id}
}

// IsNew reports whether the record has no persisted identity yet
func (r Ref) IsNew() bool {
	return r.kind == RefNew
}

// ID returns the persisted id and true, or zero and false for new records
func (r Ref) ID() (int64, bool) {
	if r.kind != RefExisting {
		return 0, false
	}
	return r.id, true
}
