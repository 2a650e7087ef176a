package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/atinyakov/StockKeeper/internal/apperrors"
	"github.com/atinyakov/StockKeeper/internal/models"
)

const masterItemColumns = `m.id, m.name, m.code, m.description, m.quantity, m.price, m.is_active, m.company,
	COALESCE(m.item_type_id::text, ''), COALESCE(m.item_group_id::text, ''),
	COALESCE(m.item_unit_id::text, ''), COALESCE(m.item_account_group_id::text, '')`

func scanMasterItem(row rowScanner, extra ...any) (*models.MasterItem, error) {
	var mi models.MasterItem
	dest := []any{
		&mi.ID, &mi.Name, &mi.Code, &mi.Description, &mi.Quantity, &mi.Price, &mi.IsActive, &mi.Company,
		&mi.ItemTypeID, &mi.ItemGroupID, &mi.ItemUnitID, &mi.ItemAccountGroupID,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	return &mi, nil
}

// ListMasterItems returns all master items ordered by name, with the names
// of their reference records joined in.
func (s *PostgresInventoryRepository) ListMasterItems(ctx context.Context) ([]models.MasterItem, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT `+masterItemColumns+`, t.name, g.name, u.name, a.name
		  FROM master_items m
		  LEFT JOIN item_types t ON t.id = m.item_type_id
		  LEFT JOIN item_groups g ON g.id = m.item_group_id
		  LEFT JOIN item_units u ON u.id = m.item_unit_id
		  LEFT JOIN item_account_groups a ON a.id = m.item_account_group_id
		 ORDER BY m.name, m.id
	`)
	if err != nil {
		return nil, fmt.Errorf("ListMasterItems: %w", err)
	}
	defer rows.Close()

	items := []models.MasterItem{}
	for rows.Next() {
		var typ, group, unit, account sql.NullString
		mi, err := scanMasterItem(rows, &typ, &group, &unit, &account)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		mi.ItemType = named(typ)
		mi.ItemGroup = named(group)
		mi.ItemUnit = named(unit)
		mi.ItemAccountGroup = named(account)
		items = append(items, *mi)
	}
	return items, rows.Err()
}

// CreateMasterItem inserts mi and returns the stored record.
func (s *PostgresInventoryRepository) CreateMasterItem(ctx context.Context, mi models.MasterItem) (*models.MasterItem, error) {
	row := s.DB.QueryRowContext(ctx, `
		INSERT INTO master_items AS m (id, name, code, description, quantity, price, is_active, company,
		                               item_type_id, item_group_id, item_unit_id, item_account_group_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8,
		        NULLIF($9, '')::uuid, NULLIF($10, '')::uuid, NULLIF($11, '')::uuid, NULLIF($12, '')::uuid)
		RETURNING `+masterItemColumns,
		mi.ID, mi.Name, mi.Code, mi.Description, mi.Quantity, mi.Price, mi.IsActive, mi.Company,
		mi.ItemTypeID, mi.ItemGroupID, mi.ItemUnitID, mi.ItemAccountGroupID,
	)
	out, err := scanMasterItem(row)
	if err != nil {
		return nil, mapErr("CreateMasterItem", err)
	}
	return out, nil
}

// UpdateMasterItem applies the non-nil fields of req to the master item id.
func (s *PostgresInventoryRepository) UpdateMasterItem(ctx context.Context, id string, req models.UpdateMasterItemRequest) (*models.MasterItem, error) {
	var b setBuilder
	if req.Name != nil {
		b.add("name", *req.Name)
	}
	if req.Code != nil {
		b.add("code", *req.Code)
	}
	if req.Description != nil {
		b.add("description", *req.Description)
	}
	if req.Quantity != nil {
		b.add("quantity", *req.Quantity)
	}
	if req.Price != nil {
		b.add("price", *req.Price)
	}
	if req.IsActive != nil {
		b.add("is_active", *req.IsActive)
	}
	if req.Company != nil {
		b.add("company", *req.Company)
	}
	refs := []struct {
		col string
		v   *string
	}{
		{"item_type_id", req.ItemTypeID},
		{"item_group_id", req.ItemGroupID},
		{"item_unit_id", req.ItemUnitID},
		{"item_account_group_id", req.ItemAccountGroupID},
	}
	for _, r := range refs {
		if r.v != nil {
			b.addExpr(r.col, "NULLIF(%s, '')::uuid", *r.v)
		}
	}

	var row *sql.Row
	if b.empty() {
		row = s.DB.QueryRowContext(ctx, `SELECT `+masterItemColumns+` FROM master_items m WHERE m.id = $1`, id)
	} else {
		row = s.DB.QueryRowContext(ctx,
			`UPDATE master_items AS m `+b.where("m.id", id)+` RETURNING `+masterItemColumns,
			b.args...)
	}
	out, err := scanMasterItem(row)
	if err != nil {
		return nil, mapErr("UpdateMasterItem", err)
	}
	return out, nil
}

// DeleteMasterItem removes the master item id. Items booked on a
// transaction cannot be deleted.
func (s *PostgresInventoryRepository) DeleteMasterItem(ctx context.Context, id string) error {
	res, err := s.DB.ExecContext(ctx, `DELETE FROM master_items WHERE id = $1`, id)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == foreignKeyViolation {
			return fmt.Errorf("master item %s: %w", id, apperrors.ErrInUse)
		}
		return mapErr("DeleteMasterItem", err)
	}
	return affectedOne(res)
}

func affectedOne(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func named(ns sql.NullString) *models.NamedRef {
	if !ns.Valid {
		return nil
	}
	return &models.NamedRef{Name: ns.String}
}
