package assignment

import (
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	// ErrNotFound means a referenced technician, center, staff member or
	// product does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict means the record changed between the time the caller
	// observed it and the mutation, or the mutation is not valid for the
	// record's current state.
	ErrConflict = errors.New("conflict")

	// ErrHasDependents means a delete was refused because other records
	// still reference the target.
	ErrHasDependents = errors.New("has dependents")

	// ErrVersionMismatch is returned by Store implementations when a
	// compare-and-set on a technician's version fails. The engine reports
	// it to callers as ErrConflict.
	ErrVersionMismatch = errors.New("version mismatch")
)

// DependentsError reports how many records block a delete. It matches both
// ErrHasDependents and ErrConflict with errors.Is.
type DependentsError struct {
	Entity string // what is blocking: "technicians" or "products"
	Count  int64
}

func (e *DependentsError) Error() string {
	return fmt.Sprintf("has dependents: %d %s still assigned", e.Count, e.Entity)
}

func (e *DependentsError) Is(target error) bool {
	return target == ErrHasDependents || target == ErrConflict
}

// notFound wraps ErrNotFound with the entity kind and ID for messages.
func notFound(entity string, id primitive.ObjectID) error {
	return fmt.Errorf("%s %s: %w", entity, id.Hex(), ErrNotFound)
}
