package data

import (
	"context"

	"ambassador-tracker/internal/domain"

	"entgo.io/ent/dialect"
	"github.com/go-kratos/kratos/v2/log"
)

// Compile-time interface check
var _ domain.UnitOfWork = (*unitOfWork)(nil)

type txKey struct{}

// unitOfWork implements domain.UnitOfWork on a database transaction.
type unitOfWork struct {
	data *Data
	log  *log.Helper
}

// NewUnitOfWork creates a new UnitOfWork.
func NewUnitOfWork(data *Data, logger log.Logger) domain.UnitOfWork {
	return &unitOfWork{
		data: data,
		log:  log.NewHelper(logger),
	}
}

// Do executes fn within a database transaction. Nested calls join the
// outer transaction.
func (u *unitOfWork) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if TxFromContext(ctx) != nil {
		return fn(ctx)
	}

	tx, err := u.data.db.Tx(ctx)
	if err != nil {
		return err
	}

	// Store tx in context for repositories to use
	txCtx := context.WithValue(ctx, txKey{}, tx)

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(txCtx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			u.log.WithContext(ctx).Errorf("rollback failed: %v", rbErr)
		}
		return err
	}

	return tx.Commit()
}

// TxFromContext retrieves the transaction from context.
func TxFromContext(ctx context.Context) dialect.Tx {
	tx, _ := ctx.Value(txKey{}).(dialect.Tx)
	return tx
}

// conn returns the transaction bound to ctx, or the pooled driver.
func (d *Data) conn(ctx context.Context) dialect.ExecQuerier {
	if tx := TxFromContext(ctx); tx != nil {
		return tx
	}
	return d.db
}

// sqlDialect returns the SQL dialect used to build statements.
func (d *Data) sqlDialect() string {
	return d.db.Dialect()
}
