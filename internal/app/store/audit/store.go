// internal/app/store/audit/store.go
package audit

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Event categories
const (
	CategoryAdmin      = "admin"      // catalog CRUD
	CategoryAssignment = "assignment" // technician/product assignment changes
)

// Admin event types
const (
	EventCenterCreated     = "center_created"
	EventCenterUpdated     = "center_updated"
	EventCenterDeleted     = "center_deleted"
	EventTechnicianCreated = "technician_created"
	EventTechnicianUpdated = "technician_updated"
	EventTechnicianDeleted = "technician_deleted"
	EventStaffCreated      = "staff_created"
	EventStaffDeleted      = "staff_deleted"
	EventProductCreated    = "product_created"
	EventProductDeleted    = "product_deleted"
)

// Assignment event types
const (
	EventTechnicianAssigned          = "technician_assigned"
	EventTechnicianTransferProposed  = "technician_transfer_proposed"
	EventTechnicianTransferred       = "technician_transferred"
	EventTechnicianUnassigned        = "technician_unassigned"
	EventTechnicianRemovedFromCenter = "technician_removed_from_center"
	EventProductAssigned             = "product_assigned"
	EventProductUnassigned           = "product_unassigned"
)

// Event represents an audit event.
type Event struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Timestamp time.Time          `bson:"timestamp" json:"timestamp"`

	// Event classification
	Category  string `bson:"category" json:"category"`
	EventType string `bson:"event_type" json:"event_type"`

	// What
	EntityType string              `bson:"entity_type,omitempty" json:"entity_type,omitempty"` // technician | center | staff | product
	EntityID   *primitive.ObjectID `bson:"entity_id,omitempty" json:"entity_id,omitempty"`
	CenterID   *primitive.ObjectID `bson:"center_id,omitempty" json:"center_id,omitempty"` // center involved, if any
	Actor      string              `bson:"actor,omitempty" json:"actor,omitempty"`         // as reported by the request boundary

	// Context
	IP        string `bson:"ip" json:"ip"`
	UserAgent string `bson:"user_agent,omitempty" json:"user_agent,omitempty"`

	// Outcome
	Success       bool   `bson:"success" json:"success"`
	FailureReason string `bson:"failure_reason,omitempty" json:"failure_reason,omitempty"`

	// Additional details (varies by event type)
	Details map[string]string `bson:"details,omitempty" json:"details,omitempty"`
}

// QueryFilter defines filters for querying audit events.
type QueryFilter struct {
	EntityID  *primitive.ObjectID
	CenterID  *primitive.ObjectID
	Category  string
	EventType string
	StartTime *time.Time
	EndTime   *time.Time
	Limit     int64
	Offset    int64
}

// Store manages audit event records.
type Store struct {
	c *mongo.Collection
}

// New creates a new audit Store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("audit_events")}
}

// Log records an audit event.
func (s *Store) Log(ctx context.Context, event Event) error {
	if event.ID.IsZero() {
		event.ID = primitive.NewObjectID()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_, err := s.c.InsertOne(ctx, event)
	return err
}

func (f QueryFilter) toBSON() bson.M {
	query := bson.M{}
	if f.EntityID != nil {
		query["entity_id"] = f.EntityID
	}
	if f.CenterID != nil {
		query["center_id"] = f.CenterID
	}
	if f.Category != "" {
		query["category"] = f.Category
	}
	if f.EventType != "" {
		query["event_type"] = f.EventType
	}

	// Time range
	if f.StartTime != nil || f.EndTime != nil {
		timeQuery := bson.M{}
		if f.StartTime != nil {
			timeQuery["$gte"] = *f.StartTime
		}
		if f.EndTime != nil {
			timeQuery["$lte"] = *f.EndTime
		}
		query["timestamp"] = timeQuery
	}
	return query
}

// Query retrieves audit events matching the given filter, newest first.
func (s *Store) Query(ctx context.Context, filter QueryFilter) ([]Event, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(limit).
		SetSkip(filter.Offset)

	cursor, err := s.c.Find(ctx, filter.toBSON(), opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var events []Event
	if err := cursor.All(ctx, &events); err != nil {
		return nil, err
	}
	return events, nil
}

// CountByFilter returns the count of events matching the filter.
func (s *Store) CountByFilter(ctx context.Context, filter QueryFilter) (int64, error) {
	return s.c.CountDocuments(ctx, filter.toBSON())
}

// GetByEntity retrieves recent audit events about one technician, center,
// staff member or product.
func (s *Store) GetByEntity(ctx context.Context, entityID primitive.ObjectID, limit int64) ([]Event, error) {
	return s.Query(ctx, QueryFilter{
		EntityID: &entityID,
		Limit:    limit,
	})
}

// GetRecent retrieves the most recent audit events.
func (s *Store) GetRecent(ctx context.Context, limit int64) ([]Event, error) {
	return s.Query(ctx, QueryFilter{
		Limit: limit,
	})
}

// DeleteBefore removes events older than cutoff and returns how many were
// removed.
func (s *Store) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"timestamp": bson.M{"$lt": cutoff}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
