package store

import (
	"context"
	"log"

	"go.mongodb.org/mongo-driver/mongo"
)

type mongoTransactor struct {
	client *mongo.Client
}

func NewTransactor(client *mongo.Client) Transactor {
	return &mongoTransactor{client: client}
}

// WithTransaction runs fn in a session transaction. Standalone MongoDB
// deployments have no transaction support; in that case fn runs directly
// and relies on the callers' child-before-parent write ordering.
func (t *mongoTransactor) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	session, err := t.client.StartSession()
	if err != nil {
		log.Printf("Sessions unavailable, running without transaction: %v", err)
		return fn(ctx)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	if err != nil && isTransactionUnsupported(err) {
		log.Printf("Transactions unsupported, running without transaction: %v", err)
		return fn(ctx)
	}
	return err
}

func isTransactionUnsupported(err error) bool {
	cmdErr, ok := err.(mongo.CommandError)
	if !ok {
		return false
	}
	// IllegalOperation: transaction numbers only allowed on replica sets.
	return cmdErr.Code == 20
}
