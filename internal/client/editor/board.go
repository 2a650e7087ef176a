// Package editor keeps the transactions on screen consistent with the
// server while the user edits them: it owns the list of transactions, the
// one currently opened, and the line-item add/update/remove flow that
// re-reads the server after every mutation.
package editor

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/atinyakov/StockKeeper/internal/apperrors"
	"github.com/atinyakov/StockKeeper/internal/models"
)

// ErrNotConfirmed is returned when the user declined a destructive action.
var ErrNotConfirmed = errors.New("action not confirmed")

// Confirmer asks the user a yes/no question.
type Confirmer interface {
	Confirm(question string) bool
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(question string) bool

func (f ConfirmFunc) Confirm(question string) bool { return f(question) }

// TransactionAPI is the part of the transactions resource the board needs.
type TransactionAPI interface {
	List(ctx context.Context) ([]models.Transaction, error)
	Delete(ctx context.Context, id string) error
}

// TransactionBoard is the in-memory view of the transactions list.
type TransactionBoard struct {
	api TransactionAPI
	log *zap.Logger

	mu           sync.Mutex
	transactions []models.Transaction
	selected     *models.Transaction
	loading      bool
	onLoading    func(loading bool)
}

// NewTransactionBoard returns an empty board; call Refresh to fill it.
func NewTransactionBoard(api TransactionAPI, log *zap.Logger) *TransactionBoard {
	if log == nil {
		log = zap.NewNop()
	}
	return &TransactionBoard{api: api, log: log}
}

// OnLoading registers a callback fired whenever the loading state flips.
func (b *TransactionBoard) OnLoading(fn func(loading bool)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onLoading = fn
}

// Refresh re-reads all transactions. A silent refresh leaves the loading
// state alone. The selected transaction is re-selected by ID from the new
// list; if it is gone the previous copy stays selected. On error the old
// list is kept.
func (b *TransactionBoard) Refresh(ctx context.Context, silent bool) error {
	if !silent {
		b.setLoading(true)
		defer b.setLoading(false)
	}
	list, err := b.api.List(ctx)
	if err != nil {
		b.log.Error("failed to fetch transactions", zap.Error(err))
		return fmt.Errorf("fetch transactions: %w", err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.transactions = list
	if b.selected != nil {
		if tx, ok := b.find(b.selected.ID); ok {
			b.selected = &tx
		}
	}
	return nil
}

func (b *TransactionBoard) setLoading(v bool) {
	b.mu.Lock()
	b.loading = v
	fn := b.onLoading
	b.mu.Unlock()
	if fn != nil {
		fn(v)
	}
}

// Loading reports whether a non-silent refresh is in flight.
func (b *TransactionBoard) Loading() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.loading
}

// Transactions returns a copy of the current list.
func (b *TransactionBoard) Transactions() []models.Transaction {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]models.Transaction, len(b.transactions))
	copy(out, b.transactions)
	return out
}

// Select opens the transaction with the given ID.
func (b *TransactionBoard) Select(id string) (models.Transaction, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	tx, ok := b.find(id)
	if !ok {
		return models.Transaction{}, fmt.Errorf("transaction %s: %w", id, apperrors.ErrNotFound)
	}
	b.selected = &tx
	return tx, nil
}

// Deselect closes the opened transaction.
func (b *TransactionBoard) Deselect() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.selected = nil
}

// Selected returns the opened transaction as of the latest refresh.
func (b *TransactionBoard) Selected() (models.Transaction, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.selected == nil {
		return models.Transaction{}, false
	}
	return *b.selected, true
}

// find must be called with mu held.
func (b *TransactionBoard) find(id string) (models.Transaction, bool) {
	for _, tx := range b.transactions {
		if tx.ID == id {
			return tx, true
		}
	}
	return models.Transaction{}, false
}

// DeleteTransaction removes a transaction after confirmation and reloads
// the list. A failed reload is logged only.
func (b *TransactionBoard) DeleteTransaction(ctx context.Context, id string, c Confirmer) error {
	if c == nil || !c.Confirm("Are you sure you want to delete this transaction? This will likely revert stock changes.") {
		return ErrNotConfirmed
	}
	if err := b.api.Delete(ctx, id); err != nil {
		return err
	}
	b.mu.Lock()
	if b.selected != nil && b.selected.ID == id {
		b.selected = nil
	}
	b.mu.Unlock()
	_ = b.Refresh(ctx, false)
	return nil
}
