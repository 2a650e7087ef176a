package repository

import (
	"context"
	"fmt"

	"github.com/atinyakov/StockKeeper/internal/models"
)

// ListItemTypes returns all item types ordered by name.
func (s *PostgresInventoryRepository) ListItemTypes(ctx context.Context) ([]models.ItemType, error) {
	rows, err := s.DB.QueryContext(ctx, `SELECT id, name, description FROM item_types ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("ListItemTypes: %w", err)
	}
	defer rows.Close()

	out := []models.ItemType{}
	for rows.Next() {
		var v models.ItemType
		if err := rows.Scan(&v.ID, &v.Name, &v.Description); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// ListItemGroups returns all item groups ordered by name.
func (s *PostgresInventoryRepository) ListItemGroups(ctx context.Context) ([]models.ItemGroup, error) {
	rows, err := s.DB.QueryContext(ctx,
		`SELECT id, name, description, COALESCE(item_type_id::text, '') FROM item_groups ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("ListItemGroups: %w", err)
	}
	defer rows.Close()

	out := []models.ItemGroup{}
	for rows.Next() {
		var v models.ItemGroup
		if err := rows.Scan(&v.ID, &v.Name, &v.Description, &v.ItemTypeID); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// ListItemUnits returns all units ordered by name.
func (s *PostgresInventoryRepository) ListItemUnits(ctx context.Context) ([]models.ItemUnit, error) {
	rows, err := s.DB.QueryContext(ctx, `SELECT id, name, description FROM item_units ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("ListItemUnits: %w", err)
	}
	defer rows.Close()

	out := []models.ItemUnit{}
	for rows.Next() {
		var v models.ItemUnit
		if err := rows.Scan(&v.ID, &v.Name, &v.Description); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// ListItemAccountGroups returns all account groups ordered by name.
func (s *PostgresInventoryRepository) ListItemAccountGroups(ctx context.Context) ([]models.ItemAccountGroup, error) {
	rows, err := s.DB.QueryContext(ctx, `SELECT id, name, description FROM item_account_groups ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("ListItemAccountGroups: %w", err)
	}
	defer rows.Close()

	out := []models.ItemAccountGroup{}
	for rows.Next() {
		var v models.ItemAccountGroup
		if err := rows.Scan(&v.ID, &v.Name, &v.Description); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}
