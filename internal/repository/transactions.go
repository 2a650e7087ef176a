package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/atinyakov/StockKeeper/internal/apperrors"
	"github.com/atinyakov/StockKeeper/internal/models"
)

const (
	transactionColumns = `t.id, t.type, t.date, t.code, t.note, t.account, t.company`
	itemColumns        = `i.id, i.transaction_id, i.master_item_id, COALESCE(i.item_unit_id::text, ''), i.quantity, i.note`

	txForeignKey = "transaction_items_transaction_id_fkey"
)

func scanTransaction(row rowScanner, extra ...any) (*models.Transaction, error) {
	var tx models.Transaction
	var typ string
	var date time.Time
	dest := []any{&tx.ID, &typ, &date, &tx.Code, &tx.Note, &tx.Account, &tx.Company}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	tx.Type = models.TransactionType(typ)
	tx.Date = date.Format(models.DateLayout)
	return &tx, nil
}

func scanItem(row rowScanner, extra ...any) (*models.Item, error) {
	var it models.Item
	dest := []any{&it.ID, &it.TransactionID, &it.MasterItemID, &it.ItemUnitID, &it.Quantity, &it.Note}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	return &it, nil
}

// ListTransactions returns every transaction, newest first, each with its
// line items and the joined master item and unit names.
func (s *PostgresInventoryRepository) ListTransactions(ctx context.Context) ([]models.Transaction, error) {
	return s.queryTransactions(ctx, `
		SELECT `+transactionColumns+`, u.email
		  FROM transactions t
		  LEFT JOIN users u ON u.id = t.user_id
		 ORDER BY t.date DESC, t.created_at DESC
	`)
}

// GetTransaction returns one transaction with its line items.
func (s *PostgresInventoryRepository) GetTransaction(ctx context.Context, id string) (*models.Transaction, error) {
	txs, err := s.queryTransactions(ctx, `
		SELECT `+transactionColumns+`, u.email
		  FROM transactions t
		  LEFT JOIN users u ON u.id = t.user_id
		 WHERE t.id = $1
	`, id)
	if err != nil {
		return nil, err
	}
	if len(txs) == 0 {
		return nil, apperrors.ErrNotFound
	}
	return &txs[0], nil
}

func (s *PostgresInventoryRepository) queryTransactions(ctx context.Context, query string, args ...any) ([]models.Transaction, error) {
	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapErr("queryTransactions", err)
	}
	defer rows.Close()

	txs := []models.Transaction{}
	for rows.Next() {
		var user sql.NullString
		tx, err := scanTransaction(rows, &user)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		tx.User = named(user)
		txs = append(txs, *tx)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(txs) == 0 {
		return txs, nil
	}

	ids := make([]string, len(txs))
	for i, tx := range txs {
		ids[i] = tx.ID
	}
	items, err := s.itemsFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range txs {
		txs[i].Items = items[txs[i].ID]
		if txs[i].Items == nil {
			txs[i].Items = []models.Item{}
		}
	}
	return txs, nil
}

// itemsFor loads the line items of the given transactions in insertion order.
func (s *PostgresInventoryRepository) itemsFor(ctx context.Context, txIDs []string) (map[string][]models.Item, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT `+itemColumns+`, m.name, m.code, u.name
		  FROM transaction_items i
		  JOIN master_items m ON m.id = i.master_item_id
		  LEFT JOIN item_units u ON u.id = i.item_unit_id
		 WHERE i.transaction_id = ANY($1::uuid[])
		 ORDER BY i.created_at, i.id
	`, pq.Array(txIDs))
	if err != nil {
		return nil, fmt.Errorf("itemsFor: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]models.Item, len(txIDs))
	for rows.Next() {
		var summary models.ItemSummary
		var unit sql.NullString
		it, err := scanItem(rows, &summary.Name, &summary.Code, &unit)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		it.MasterItem = &summary
		it.ItemUnit = named(unit)
		out[it.TransactionID] = append(out[it.TransactionID], *it)
	}
	return out, rows.Err()
}

// CreateTransaction inserts the header tx booked by userID. An empty date
// means today.
func (s *PostgresInventoryRepository) CreateTransaction(ctx context.Context, tx models.Transaction, userID string) (*models.Transaction, error) {
	row := s.DB.QueryRowContext(ctx, `
		INSERT INTO transactions AS t (id, type, date, code, note, account, company, user_id)
		VALUES ($1, $2, COALESCE(NULLIF($3, '')::date, CURRENT_DATE), $4, $5, $6, $7, NULLIF($8, '')::uuid)
		RETURNING `+transactionColumns,
		tx.ID, string(tx.Type), tx.Date, tx.Code, tx.Note, tx.Account, tx.Company, userID,
	)
	out, err := scanTransaction(row)
	if err != nil {
		return nil, mapErr("CreateTransaction", err)
	}
	return out, nil
}

// UpdateTransaction applies the non-nil fields of req to the header id.
func (s *PostgresInventoryRepository) UpdateTransaction(ctx context.Context, id string, req models.UpdateTransactionRequest) (*models.Transaction, error) {
	var b setBuilder
	if req.Type != nil {
		b.add("type", string(*req.Type))
	}
	if req.Date != nil {
		b.addExpr("date", "%s::date", *req.Date)
	}
	if req.Code != nil {
		b.add("code", *req.Code)
	}
	if req.Note != nil {
		b.add("note", *req.Note)
	}
	if req.Account != nil {
		b.add("account", *req.Account)
	}
	if req.Company != nil {
		b.add("company", *req.Company)
	}

	var row *sql.Row
	if b.empty() {
		row = s.DB.QueryRowContext(ctx, `SELECT `+transactionColumns+` FROM transactions t WHERE t.id = $1`, id)
	} else {
		row = s.DB.QueryRowContext(ctx,
			`UPDATE transactions AS t `+b.where("t.id", id)+` RETURNING `+transactionColumns,
			b.args...)
	}
	out, err := scanTransaction(row)
	if err != nil {
		return nil, mapErr("UpdateTransaction", err)
	}
	return out, nil
}

// DeleteTransaction removes a transaction together with its line items.
func (s *PostgresInventoryRepository) DeleteTransaction(ctx context.Context, id string) error {
	res, err := s.DB.ExecContext(ctx, `DELETE FROM transactions WHERE id = $1`, id)
	if err != nil {
		return mapErr("DeleteTransaction", err)
	}
	return affectedOne(res)
}

// AddItem inserts a line item under it.TransactionID. Without a unit the
// master item's default unit is stored.
func (s *PostgresInventoryRepository) AddItem(ctx context.Context, it models.Item) (*models.Item, error) {
	row := s.DB.QueryRowContext(ctx, `
		INSERT INTO transaction_items AS i (id, transaction_id, master_item_id, item_unit_id, quantity, note)
		VALUES ($1, $2, $3,
		        COALESCE(NULLIF($4, '')::uuid, (SELECT item_unit_id FROM master_items WHERE id = $3)),
		        $5, $6)
		RETURNING `+itemColumns,
		it.ID, it.TransactionID, it.MasterItemID, it.ItemUnitID, it.Quantity, it.Note,
	)
	out, err := scanItem(row)
	if err != nil {
		return nil, itemErr("AddItem", err)
	}
	return out, nil
}

// UpdateItem replaces the fields of the line item it.ID under it.TransactionID.
func (s *PostgresInventoryRepository) UpdateItem(ctx context.Context, it models.Item) (*models.Item, error) {
	row := s.DB.QueryRowContext(ctx, `
		UPDATE transaction_items AS i
		   SET master_item_id = $3,
		       item_unit_id = COALESCE(NULLIF($4, '')::uuid, (SELECT item_unit_id FROM master_items WHERE id = $3)),
		       quantity = $5,
		       note = $6
		 WHERE i.id = $1 AND i.transaction_id = $2
		RETURNING `+itemColumns,
		it.ID, it.TransactionID, it.MasterItemID, it.ItemUnitID, it.Quantity, it.Note,
	)
	out, err := scanItem(row)
	if err != nil {
		return nil, itemErr("UpdateItem", err)
	}
	return out, nil
}

// RemoveItem deletes the line item itemID of transaction txID.
func (s *PostgresInventoryRepository) RemoveItem(ctx context.Context, txID, itemID string) error {
	res, err := s.DB.ExecContext(ctx,
		`DELETE FROM transaction_items WHERE id = $1 AND transaction_id = $2`,
		itemID, txID)
	if err != nil {
		return mapErr("RemoveItem", err)
	}
	return affectedOne(res)
}

// itemErr reports a missing parent transaction as not found rather than
// as an invalid reference.
func itemErr(op string, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == foreignKeyViolation && pqErr.Constraint == txForeignKey {
		return fmt.Errorf("%s: transaction: %w", op, apperrors.ErrNotFound)
	}
	return mapErr(op, err)
}
