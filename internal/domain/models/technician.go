// internal/domain/models/technician.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Technician is a field technician who works out of at most one assistance
// center at a time.
//
// NOTE:
//   - CenterID is only ever written by the assignment engine.
//   - Version increments on every center change and is the stamp a
//     transfer confirmation must carry.
type Technician struct {
	ID             primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	FullName       string              `bson:"full_name" json:"full_name"`
	FullNameCI     string              `bson:"full_name_ci" json:"-"` // lowercase, diacritics-stripped
	Specialization string              `bson:"specialization,omitempty" json:"specialization,omitempty"`
	Email          string              `bson:"email,omitempty" json:"email,omitempty"`
	Phone          string              `bson:"phone,omitempty" json:"phone,omitempty"`
	CenterID       *primitive.ObjectID `bson:"center_id" json:"center_id"` // nil = unassigned
	Version        int64               `bson:"version" json:"version"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Assigned reports whether the technician currently belongs to a center.
func (t Technician) Assigned() bool {
	return t.CenterID != nil
}

// AssignedTo reports whether the technician belongs to the given center.
func (t Technician) AssignedTo(centerID primitive.ObjectID) bool {
	return t.CenterID != nil && *t.CenterID == centerID
}
