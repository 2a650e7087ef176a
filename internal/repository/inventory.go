package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/atinyakov/StockKeeper/internal/apperrors"
)

const (
	foreignKeyViolation = "23503"
	invalidTextRep      = "22P02"
	checkViolation      = "23514"
)

// PostgresInventoryRepository stores master items, transactions with their
// line items and the reference lookups.
type PostgresInventoryRepository struct {
	// DB is the database handle for executing queries and transactions.
	DB *sql.DB
}

// NewPostgresInventoryRepository creates a new PostgresInventoryRepository using the provided *sql.DB.
func NewPostgresInventoryRepository(db *sql.DB) *PostgresInventoryRepository {
	return &PostgresInventoryRepository{DB: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

// setBuilder collects "col = $n" assignments for partial updates.
type setBuilder struct {
	cols []string
	args []any
}

func (b *setBuilder) add(col string, v any) {
	b.args = append(b.args, v)
	b.cols = append(b.cols, fmt.Sprintf("%s = $%d", col, len(b.args)))
}

// addExpr adds an assignment whose placeholder is wrapped in expr, e.g.
// "NULLIF(%s, '')::uuid".
func (b *setBuilder) addExpr(col, expr string, v any) {
	b.args = append(b.args, v)
	b.cols = append(b.cols, fmt.Sprintf("%s = "+expr, col, fmt.Sprintf("$%d", len(b.args))))
}

func (b *setBuilder) empty() bool { return len(b.cols) == 0 }

// where appends the key argument and returns "SET ... WHERE <key> = $n".
func (b *setBuilder) where(key string, v any) string {
	b.args = append(b.args, v)
	return fmt.Sprintf("SET %s WHERE %s = $%d", strings.Join(b.cols, ", "), key, len(b.args))
}

// mapErr translates driver errors into the shared sentinels.
func mapErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return apperrors.ErrNotFound
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case uniqueViolation:
			return fmt.Errorf("%s: %w", op, apperrors.ErrDuplicate)
		case foreignKeyViolation:
			return fmt.Errorf("%s: unknown reference %s: %w", op, pqErr.Constraint, apperrors.ErrValidation)
		case invalidTextRep, checkViolation:
			return fmt.Errorf("%s: %s: %w", op, pqErr.Message, apperrors.ErrValidation)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}
