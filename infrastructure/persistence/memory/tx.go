package memory

import (
	"context"
	"sync"
)

// Tx is an in-memory transaction. Stores either stage their writes and
// publish them from a commit action, or write in place and register an
// undo action.
type Tx struct {
	undo    []func()
	commits []func() error
}

func (tx *Tx) onRollback(fn func()) {
	tx.undo = append(tx.undo, fn)
}

func (tx *Tx) onCommit(fn func() error) {
	tx.commits = append(tx.commits, fn)
}

func (tx *Tx) commit() error {
	for _, fn := range tx.commits {
		if err := fn(); err != nil {
			return err
		}
	}
	tx.commits = nil
	return nil
}

func (tx *Tx) rollback() {
	for i := len(tx.undo) - 1; i >= 0; i-- {
		tx.undo[i]()
	}
	tx.undo = nil
}

type txCtxKey struct{}

func withTx(ctx context.Context, tx *Tx) context.Context {
	return context.WithValue(ctx, txCtxKey{}, tx)
}

// txFromCtx returns the transaction carried by ctx, if any
func txFromCtx(ctx context.Context) (*Tx, bool) {
	tx, ok := ctx.Value(txCtxKey{}).(*Tx)
	return tx, ok
}

// TxRunner runs functions in in-memory transactions. Transactions are
// serialised; a nested RunInTx joins the transaction already in the context.
type TxRunner struct {
	mu sync.Mutex
}

// NewTxRunner creates a new TxRunner
func NewTxRunner() *TxRunner {
	return &TxRunner{}
}

// RunInTx executes fn within a transaction.
// On success: publishes staged writes; a failed publish is rolled back.
// On error from fn: undoes every write made through ctx and returns the error.
// On panic from fn: undoes the writes and re-panics.
func (r *TxRunner) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := txFromCtx(ctx); ok {
		return fn(ctx)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	tx := &Tx{}
	defer func() {
		if rec := recover(); rec != nil {
			tx.rollback()
			panic(rec)
		}
	}()

	if err := fn(withTx(ctx, tx)); err != nil {
		tx.rollback()
		return err
	}
	if err := tx.commit(); err != nil {
		tx.rollback()
		return err
	}
	return nil
}
