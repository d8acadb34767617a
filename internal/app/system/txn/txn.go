// Package txn runs multi-document writes inside a MongoDB transaction and
// degrades to plain sequential writes on deployments that cannot run
// transactions (standalone mongod, some DocumentDB tiers).
package txn

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Server error codes that mean "transactions are not available here".
var notSupportedCodes = map[int32]bool{
	20:  true, // IllegalOperation: transaction numbers only allowed on a replica set member
	51:  true, // IllegalOperation (older servers)
	263: true, // OperationNotSupportedInTransaction
}

// IsNotSupported reports whether err means the deployment cannot run
// transactions, as opposed to the transaction itself failing.
func IsNotSupported(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && notSupportedCodes[ce.Code] {
		return true
	}

	s := strings.ToLower(err.Error())
	switch {
	case strings.Contains(s, "transaction") && strings.Contains(s, "replica set"):
		return true
	case strings.Contains(s, "session") && strings.Contains(s, "not supported"):
		return true
	case strings.Contains(s, "transaction") && strings.Contains(s, "session"):
		return true
	case strings.Contains(s, "illegal operation"):
		return true
	}
	return false
}

// Run executes fn inside a transaction on db's client. If the deployment
// does not support transactions, fn is run once more without one and the
// fallback is logged at warn level. fn may be invoked more than once (the
// driver retries transient transaction errors) and must not keep state
// across attempts.
func Run(ctx context.Context, db *mongo.Database, log *zap.Logger, fn func(ctx context.Context) error) error {
	sess, err := db.Client().StartSession()
	if err != nil {
		if IsNotSupported(err) {
			warnFallback(log, err)
			return fn(ctx)
		}
		return err
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (any, error) {
		return nil, fn(sc)
	})
	if err != nil && IsNotSupported(err) {
		warnFallback(log, err)
		return fn(ctx)
	}
	return err
}

func warnFallback(log *zap.Logger, err error) {
	if log == nil {
		return
	}
	log.Warn("transactions unavailable; running without one", zap.Error(err))
}
