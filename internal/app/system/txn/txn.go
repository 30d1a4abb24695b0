// Package txn wraps multi-document mutations in a MongoDB transaction when
// the deployment supports one. Standalone servers (common in dev and small
// installs) reject sessions/transactions; Run detects that and falls back to
// executing the callback directly, so callers must order their writes safely
// for the non-transactional path as well.
package txn

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
)

// Run executes fn inside a transaction, or plainly when transactions are not
// supported by the server.
func Run(ctx context.Context, client *mongo.Client, fn func(ctx context.Context) error) error {
	session, err := client.StartSession()
	if err != nil {
		if IsNotSupported(err) {
			return fn(ctx)
		}
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	if err != nil && IsNotSupported(err) {
		return fn(ctx)
	}
	return err
}

// IsNotSupported reports whether err indicates the server cannot run
// multi-document transactions (standalone mongod, old wire version, or a
// DocumentDB-style vendor).
func IsNotSupported(err error) bool {
	if err == nil {
		return false
	}

	var ce mongo.CommandError
	if errors.As(err, &ce) {
		// 20 IllegalOperation, 51 — transaction numbers need a replica set,
		// 263 OperationNotSupportedInTransaction.
		switch ce.Code {
		case 20, 51, 263:
			return true
		}
	}

	s := strings.ToLower(err.Error())
	if strings.Contains(s, "transaction") &&
		(strings.Contains(s, "replica set") || strings.Contains(s, "session")) {
		return true
	}
	if strings.Contains(s, "session") && strings.Contains(s, "not supported") {
		return true
	}
	return strings.Contains(s, "illegal operation")
}
