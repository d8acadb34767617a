// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

/*
EnsureAll is called at startup. Each ensure* function is idempotent.
We aggregate errors so any problem is visible and startup can fail fast.
*/
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	for _, set := range []struct {
		name string
		fn   func(context.Context, *mongo.Database) error
	}{
		{"assistance_centers", ensureCenters},
		{"technicians", ensureTechnicians},
		{"staff_members", ensureStaff},
		{"products", ensureProducts},
		{"audit_events", ensureAuditEvents},
	} {
		if err := set.fn(ctx, db); err != nil {
			problems = append(problems, set.name+": "+err.Error())
		}
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

/* -------------------------------------------------------------------------- */
/* Core helper: reconcile a set of desired indexes for one collection         */
/* -------------------------------------------------------------------------- */

type existingIndex struct {
	Name   string `bson:"name"`
	Key    bson.D `bson:"key"`
	Unique *bool  `bson:"unique,omitempty"`
}

func keySig(keys bson.D) string {
	parts := make([]string, 0, len(keys))
	for _, kv := range keys {
		parts = append(parts, fmt.Sprintf("%s:%v", kv.Key, kv.Value))
	}
	return strings.Join(parts, ", ")
}

func sameBoolPtr(a, b *bool) bool {
	av := false
	bv := false
	if a != nil {
		av = *a
	}
	if b != nil {
		bv = *b
	}
	return av == bv
}

// Best-effort duplicate-detector (works cross-vendors)
func isDuplicateKeyErr(err error) bool {
	if err == nil {
		return false
	}
	var we mongo.WriteException
	if errors.As(err, &we) {
		for _, e := range we.WriteErrors {
			if e.Code == 11000 { // E11000 duplicate key error index
				return true
			}
		}
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && ce.Code == 11000 {
		return true
	}
	s := err.Error()
	return strings.Contains(s, "E11000") || strings.Contains(strings.ToLower(s), "duplicate key")
}

// Mongo/DocDB sometimes returns IndexOptionsConflict when an index with the
// same keys already exists under a different name (or options differ).
func isOptionsConflictErr(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "IndexOptionsConflict")
}

// desired is one wanted index with its options unpacked.
type desired struct {
	model  mongo.IndexModel
	name   string
	unique *bool
	sig    string
}

func describe(m mongo.IndexModel) desired {
	d := desired{model: m, sig: keySig(m.Keys.(bson.D))}
	if m.Options != nil {
		if m.Options.Name != nil {
			d.name = *m.Options.Name
		}
		d.unique = m.Options.Unique
	}
	return d
}

func (d desired) isUnique() bool { return d.unique != nil && *d.unique }

// createErr formats a CreateOne failure, spelling out the duplicate case
// since that one needs manual cleanup of the data.
func createErr(coll *mongo.Collection, d desired, err error) string {
	if isDuplicateKeyErr(err) && d.isUnique() {
		return fmt.Sprintf("%s(%s): cannot create unique index (duplicates present on %s)", coll.Name(), d.name, d.sig)
	}
	return fmt.Sprintf("%s(%s): %v", coll.Name(), d.name, err)
}

func listIndexes(ctx context.Context, coll *mongo.Collection) map[string]existingIndex {
	existing := map[string]existingIndex{} // sig -> index
	cur, err := coll.Indexes().List(ctx)
	if err != nil {
		return existing
	}
	defer cur.Close(ctx)
	for cur.Next(ctx) {
		var idx existingIndex
		if err := cur.Decode(&idx); err != nil {
			zap.L().Warn("failed to decode existing index",
				zap.String("collection", coll.Name()),
				zap.Error(err))
			continue
		}
		existing[keySig(idx.Key)] = idx
	}
	return existing
}

// replace drops ex and creates d in its place.
func replace(ctx context.Context, coll *mongo.Collection, ex existingIndex, d desired) error {
	if _, err := coll.Indexes().DropOne(ctx, ex.Name); err != nil {
		return fmt.Errorf("%s(%s): drop failed: %v", coll.Name(), d.name, err)
	}
	if _, err := coll.Indexes().CreateOne(ctx, d.model); err != nil {
		return errors.New(createErr(coll, d, err))
	}
	return nil
}

// reconcile makes one desired index exist. An index with the same keys is
// reused when its uniqueness matches; a differing name is aligned and a
// differing uniqueness is dropped and recreated.
func reconcile(ctx context.Context, coll *mongo.Collection, d desired, existing map[string]existingIndex) error {
	start := time.Now()
	fields := []zap.Field{
		zap.String("collection", coll.Name()),
		zap.String("name", d.name),
		zap.String("keys", d.sig),
		zap.Bool("unique", d.isUnique()),
	}
	zap.L().Info("ensuring index", fields...)

	if ex, ok := existing[d.sig]; ok {
		switch {
		case sameBoolPtr(d.unique, ex.Unique) && (d.name == "" || ex.Name == d.name):
			zap.L().Info("reusing existing index", append(fields, zap.String("took", time.Since(start).String()))...)
			return nil
		case sameBoolPtr(d.unique, ex.Unique):
			zap.L().Info("renaming index to align with desired name", append(fields, zap.String("from", ex.Name))...)
		}
		if err := replace(ctx, coll, ex, d); err != nil {
			zap.L().Warn("index replace failed", append(fields, zap.Error(err))...)
			return err
		}
		zap.L().Info("index dropped and recreated", append(fields, zap.String("took", time.Since(start).String()))...)
		return nil
	}

	created, err := coll.Indexes().CreateOne(ctx, d.model)
	if err == nil {
		zap.L().Info("index ensured", append(fields,
			zap.String("created_name", created),
			zap.String("took", time.Since(start).String()))...)
		return nil
	}

	if isOptionsConflictErr(err) {
		// Created concurrently or under another name; look again.
		if ex, ok := listIndexes(ctx, coll)[d.sig]; ok {
			if sameBoolPtr(d.unique, ex.Unique) {
				zap.L().Info("reusing existing index (post-conflict)", append(fields, zap.String("took", time.Since(start).String()))...)
				return nil
			}
			if rerr := replace(ctx, coll, ex, d); rerr != nil {
				return rerr
			}
			return nil
		}
	}

	zap.L().Warn("index ensure failed", append(fields,
		zap.String("took", time.Since(start).String()),
		zap.Error(err))...)
	return errors.New(createErr(coll, d, err))
}

func ensureIndexSet(ctx context.Context, coll *mongo.Collection, models []mongo.IndexModel) error {
	var errs []string
	existing := listIndexes(ctx, coll)
	for _, m := range models {
		if err := reconcile(ctx, coll, describe(m), existing); err != nil {
			errs = append(errs, err.Error())
		}
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

/* -------------------------------------------------------------------------- */
/* Collection-specific index sets                                              */
/* -------------------------------------------------------------------------- */

func ensureCenters(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("assistance_centers")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// Center names are unique (case/diacritics folded).
		{
			Keys:    bson.D{{Key: "name_ci", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_centers_nameci"),
		},
		// Name prefix search + stable sort
		{
			Keys:    bson.D{{Key: "name_ci", Value: 1}, {Key: "_id", Value: 1}},
			Options: options.Index().SetName("idx_centers_nameci__id"),
		},
		{
			Keys:    bson.D{{Key: "city_ci", Value: 1}},
			Options: options.Index().SetName("idx_centers_cityci"),
		},
	})
}

func ensureTechnicians(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("technicians")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// Center rosters, dependents count on delete, availability scans.
		{
			Keys:    bson.D{{Key: "center_id", Value: 1}, {Key: "_id", Value: 1}},
			Options: options.Index().SetName("idx_techs_center__id"),
		},
		{
			Keys:    bson.D{{Key: "full_name_ci", Value: 1}, {Key: "_id", Value: 1}},
			Options: options.Index().SetName("idx_techs_fullnameci__id"),
		},
		// Email is optional; only present values must be unique.
		{
			Keys: bson.D{{Key: "email", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetName("uniq_techs_email").
				SetPartialFilterExpression(bson.M{"email": bson.M{"$type": "string"}}),
		},
	})
}

func ensureStaff(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("staff_members")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "username_ci", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_staff_usernameci"),
		},
		{
			Keys:    bson.D{{Key: "full_name_ci", Value: 1}, {Key: "_id", Value: 1}},
			Options: options.Index().SetName("idx_staff_fullnameci__id"),
		},
	})
}

func ensureProducts(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("products")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "name_ci", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_products_nameci"),
		},
		// Products of a staff member, dependents count on delete.
		{
			Keys:    bson.D{{Key: "staff_id", Value: 1}, {Key: "_id", Value: 1}},
			Options: options.Index().SetName("idx_products_staff__id"),
		},
	})
}

func ensureAuditEvents(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("audit_events")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "timestamp", Value: -1}},
			Options: options.Index().SetName("idx_audit_ts"),
		},
		{
			Keys:    bson.D{{Key: "entity_id", Value: 1}, {Key: "timestamp", Value: -1}},
			Options: options.Index().SetName("idx_audit_entity_ts"),
		},
		{
			Keys:    bson.D{{Key: "center_id", Value: 1}, {Key: "timestamp", Value: -1}},
			Options: options.Index().SetName("idx_audit_center_ts"),
		},
		{
			Keys:    bson.D{{Key: "category", Value: 1}, {Key: "event_type", Value: 1}, {Key: "timestamp", Value: -1}},
			Options: options.Index().SetName("idx_audit_cat_type_ts"),
		},
	})
}
