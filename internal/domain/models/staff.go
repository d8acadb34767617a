// internal/domain/models/staff.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// StaffMember is an employee who can be made responsible for products.
type StaffMember struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Username   string             `bson:"username" json:"username"`
	UsernameCI string             `bson:"username_ci" json:"-"` // unique
	FullName   string             `bson:"full_name" json:"full_name"`
	FullNameCI string             `bson:"full_name_ci" json:"-"`
	Email      string             `bson:"email,omitempty" json:"email,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
