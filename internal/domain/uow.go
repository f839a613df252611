package domain

import "context"

// UnitOfWork runs a function inside a single database transaction.
type UnitOfWork interface {
	// Do executes fn within a transaction. The transaction is rolled back
	// if fn returns an error and committed otherwise.
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}
