// Package urlparam reads chi route parameters.
package urlparam

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ObjectID parses the named route parameter as an ObjectID.
func ObjectID(r *http.Request, name string) (primitive.ObjectID, bool) {
	oid, err := primitive.ObjectIDFromHex(strings.TrimSpace(chi.URLParam(r, name)))
	if err != nil {
		return primitive.NilObjectID, false
	}
	return oid, true
}

// OptionalObjectID parses s as an ObjectID. Empty input yields nil; ok is
// false only when s is non-empty and malformed.
func OptionalObjectID(s string) (*primitive.ObjectID, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, true
	}
	oid, err := primitive.ObjectIDFromHex(s)
	if err != nil {
		return nil, false
	}
	return &oid, true
}
