package models

import "github.com/shopspring/decimal"

// NamedRef is the joined display name of a referenced entity.
type NamedRef struct {
	Name string `json:"name"`
}

// MasterItem is a catalog record. Reference IDs are empty when unset.
type MasterItem struct {
	ID                 string          `json:"id"`
	Name               string          `json:"name"`
	Code               string          `json:"code,omitempty"`
	Description        string          `json:"description,omitempty"`
	Quantity           int             `json:"quantity"`
	Price              decimal.Decimal `json:"price"`
	IsActive           bool            `json:"isActive"`
	Company            string          `json:"company,omitempty"`
	ItemTypeID         string          `json:"itemTypeId,omitempty"`
	ItemGroupID        string          `json:"itemGroupId,omitempty"`
	ItemUnitID         string          `json:"itemUnitId,omitempty"`
	ItemAccountGroupID string          `json:"itemAccountGroupId,omitempty"`

	ItemType         *NamedRef `json:"itemType,omitempty"`
	ItemGroup        *NamedRef `json:"itemGroup,omitempty"`
	ItemUnit         *NamedRef `json:"itemUnit,omitempty"`
	ItemAccountGroup *NamedRef `json:"itemAccountGroup,omitempty"`
}

// CreateMasterItemRequest is the body of POST /master-items.
type CreateMasterItemRequest struct {
	Name               string          `json:"name" validate:"required"`
	Description        string          `json:"description,omitempty"`
	Quantity           int             `json:"quantity"`
	Price              decimal.Decimal `json:"price"`
	Code               string          `json:"code,omitempty"`
	IsActive           *bool           `json:"isActive,omitempty"`
	Company            string          `json:"company,omitempty"`
	ItemTypeID         string          `json:"itemTypeId,omitempty"`
	ItemGroupID        string          `json:"itemGroupId,omitempty"`
	ItemUnitID         string          `json:"itemUnitId,omitempty"`
	ItemAccountGroupID string          `json:"itemAccountGroupId,omitempty"`
}

// UpdateMasterItemRequest is the body of PATCH /master-items/{id}.
// Nil fields are left untouched.
type UpdateMasterItemRequest struct {
	Name               *string          `json:"name,omitempty"`
	Description        *string          `json:"description,omitempty"`
	Quantity           *int             `json:"quantity,omitempty"`
	Price              *decimal.Decimal `json:"price,omitempty"`
	Code               *string          `json:"code,omitempty"`
	IsActive           *bool            `json:"isActive,omitempty"`
	Company            *string          `json:"company,omitempty"`
	ItemTypeID         *string          `json:"itemTypeId,omitempty"`
	ItemGroupID        *string          `json:"itemGroupId,omitempty"`
	ItemUnitID         *string          `json:"itemUnitId,omitempty"`
	ItemAccountGroupID *string          `json:"itemAccountGroupId,omitempty"`
}

// Empty reports whether the update carries no field at all.
func (r UpdateMasterItemRequest) Empty() bool {
	return r.Name == nil && r.Description == nil && r.Quantity == nil &&
		r.Price == nil && r.Code == nil && r.IsActive == nil && r.Company == nil &&
		r.ItemTypeID == nil && r.ItemGroupID == nil && r.ItemUnitID == nil &&
		r.ItemAccountGroupID == nil
}
