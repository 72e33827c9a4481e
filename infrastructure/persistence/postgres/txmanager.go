package postgres

import (
	"context"
	"fmt"

	pkgerrors "github.com/luisriego/MatisseAPI-sub001/pkg/errors"
)

// TxManager runs functions in a database transaction carried by the context.
// A RunInTx call made inside another one joins the outer transaction.
type TxManager struct {
	db DB
}

// NewTxManager creates a new TxManager
func NewTxManager(db DB) *TxManager {
	return &TxManager{db: db}
}

// RunInTx executes fn within a Read Committed transaction. It commits when
// fn succeeds, rolls back when fn fails and rolls back then re-panics when
// fn panics.
func (m *TxManager) RunInTx(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if _, ok := txFromCtx(ctx); ok {
		return fn(ctx)
	}

	tx, err := m.db.Begin(ctx)
	if err != nil {
		return pkgerrors.NewStorageError("begin transaction", err)
	}

	defer func() {
		if r := recover(); r != nil {
			_ = tx.Rollback(ctx)
			panic(r)
		}
	}()

	if err := fn(withTx(ctx, tx)); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			return fmt.Errorf("rollback failed: %v (original error: %w)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return mapError(err, "commit transaction")
	}
	return nil
}
