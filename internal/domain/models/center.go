// internal/domain/models/center.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AssistanceCenter includes case/diacritic-insensitive fields for search/sort.
// Technicians reference a center through Technician.CenterID; the center
// does not own their lifecycle.
type AssistanceCenter struct {
	ID         primitive.ObjectID `bson:"_id" json:"id"`
	Name       string             `bson:"name" json:"name"`
	NameCI     string             `bson:"name_ci" json:"-"` // ← always stored
	Street     string             `bson:"street" json:"street"`
	City       string             `bson:"city" json:"city"`
	CityCI     string             `bson:"city_ci" json:"-"` // ← always stored
	Province   string             `bson:"province" json:"province"`
	PostalCode string             `bson:"postal_code" json:"postal_code"`
	Phone      string             `bson:"phone,omitempty" json:"phone,omitempty"`
	Email      string             `bson:"email,omitempty" json:"email,omitempty"`

	// Revision is bumped by every assignment targeting this center so that
	// a concurrent delete collides with it inside a transaction.
	Revision int64 `bson:"revision" json:"-"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
