// internal/domain/models/product.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Product is a catalog item. StaffID names the staff member responsible for
// it; a product has at most one assignee and reassignment overwrites.
type Product struct {
	ID       primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Name     string              `bson:"name" json:"name"`
	NameCI   string              `bson:"name_ci" json:"-"`
	Category string              `bson:"category,omitempty" json:"category,omitempty"`
	StaffID  *primitive.ObjectID `bson:"staff_id" json:"staff_id"` // nil = unassigned

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
