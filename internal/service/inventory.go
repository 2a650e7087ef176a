package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/atinyakov/StockKeeper/internal/apperrors"
	"github.com/atinyakov/StockKeeper/internal/models"
)

// InventoryRepository defines the persistence operations needed by the InventoryService.
type InventoryRepository interface {
	ListMasterItems(ctx context.Context) ([]models.MasterItem, error)
	CreateMasterItem(ctx context.Context, mi models.MasterItem) (*models.MasterItem, error)
	UpdateMasterItem(ctx context.Context, id string, req models.UpdateMasterItemRequest) (*models.MasterItem, error)
	DeleteMasterItem(ctx context.Context, id string) error

	ListTransactions(ctx context.Context) ([]models.Transaction, error)
	GetTransaction(ctx context.Context, id string) (*models.Transaction, error)
	CreateTransaction(ctx context.Context, tx models.Transaction, userID string) (*models.Transaction, error)
	UpdateTransaction(ctx context.Context, id string, req models.UpdateTransactionRequest) (*models.Transaction, error)
	DeleteTransaction(ctx context.Context, id string) error

	AddItem(ctx context.Context, it models.Item) (*models.Item, error)
	UpdateItem(ctx context.Context, it models.Item) (*models.Item, error)
	RemoveItem(ctx context.Context, txID, itemID string) error

	ListItemTypes(ctx context.Context) ([]models.ItemType, error)
	ListItemGroups(ctx context.Context) ([]models.ItemGroup, error)
	ListItemUnits(ctx context.Context) ([]models.ItemUnit, error)
	ListItemAccountGroups(ctx context.Context) ([]models.ItemAccountGroup, error)
}

// InventoryService validates inventory requests and hands them to the repository.
type InventoryService struct {
	repo InventoryRepository
}

// NewInventoryService constructs an InventoryService with the provided repository.
func NewInventoryService(repo InventoryRepository) *InventoryService {
	return &InventoryService{repo: repo}
}

// ListMasterItems returns the catalog.
func (s *InventoryService) ListMasterItems(ctx context.Context) ([]models.MasterItem, error) {
	return s.repo.ListMasterItems(ctx)
}

// CreateMasterItem stores a new catalog record. Records are active unless
// the request says otherwise.
func (s *InventoryService) CreateMasterItem(ctx context.Context, req models.CreateMasterItemRequest) (*models.MasterItem, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	if req.Price.IsNegative() {
		return nil, fmt.Errorf("%w: price must not be negative", apperrors.ErrValidation)
	}
	if err := checkRefs(req.ItemTypeID, req.ItemGroupID, req.ItemUnitID, req.ItemAccountGroupID); err != nil {
		return nil, err
	}
	mi := models.MasterItem{
		ID:                 uuid.NewString(),
		Name:               req.Name,
		Code:               req.Code,
		Description:        req.Description,
		Quantity:           req.Quantity,
		Price:              req.Price,
		IsActive:           req.IsActive == nil || *req.IsActive,
		Company:            req.Company,
		ItemTypeID:         req.ItemTypeID,
		ItemGroupID:        req.ItemGroupID,
		ItemUnitID:         req.ItemUnitID,
		ItemAccountGroupID: req.ItemAccountGroupID,
	}
	return s.repo.CreateMasterItem(ctx, mi)
}

// UpdateMasterItem applies a partial update.
func (s *InventoryService) UpdateMasterItem(ctx context.Context, id string, req models.UpdateMasterItemRequest) (*models.MasterItem, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	if req.Name != nil && *req.Name == "" {
		return nil, fmt.Errorf("%w: name must not be empty", apperrors.ErrValidation)
	}
	if req.Price != nil && req.Price.IsNegative() {
		return nil, fmt.Errorf("%w: price must not be negative", apperrors.ErrValidation)
	}
	if err := checkRefs(deref(req.ItemTypeID), deref(req.ItemGroupID), deref(req.ItemUnitID), deref(req.ItemAccountGroupID)); err != nil {
		return nil, err
	}
	return s.repo.UpdateMasterItem(ctx, id, req)
}

// DeleteMasterItem removes a catalog record.
func (s *InventoryService) DeleteMasterItem(ctx context.Context, id string) error {
	if err := checkID(id); err != nil {
		return err
	}
	return s.repo.DeleteMasterItem(ctx, id)
}

// ListTransactions returns all transactions with their items.
func (s *InventoryService) ListTransactions(ctx context.Context) ([]models.Transaction, error) {
	return s.repo.ListTransactions(ctx)
}

// GetTransaction returns one transaction with its items.
func (s *InventoryService) GetTransaction(ctx context.Context, id string) (*models.Transaction, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	return s.repo.GetTransaction(ctx, id)
}

// CreateTransaction stores a new header booked by userID.
func (s *InventoryService) CreateTransaction(ctx context.Context, userID string, req models.CreateTransactionRequest) (*models.Transaction, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	tx := models.Transaction{
		ID:      uuid.NewString(),
		Type:    req.Type,
		Date:    req.Date,
		Code:    req.Code,
		Note:    req.Note,
		Account: req.Account,
		Company: req.Company,
	}
	return s.repo.CreateTransaction(ctx, tx, userID)
}

// UpdateTransaction applies a partial update to a header.
func (s *InventoryService) UpdateTransaction(ctx context.Context, id string, req models.UpdateTransactionRequest) (*models.Transaction, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	return s.repo.UpdateTransaction(ctx, id, req)
}

// DeleteTransaction removes a transaction and its items.
func (s *InventoryService) DeleteTransaction(ctx context.Context, id string) error {
	if err := checkID(id); err != nil {
		return err
	}
	return s.repo.DeleteTransaction(ctx, id)
}

// AddItem creates a line item under txID.
func (s *InventoryService) AddItem(ctx context.Context, txID string, req models.ItemRequest) (*models.Item, error) {
	it, err := itemFrom(txID, uuid.NewString(), req)
	if err != nil {
		return nil, err
	}
	return s.repo.AddItem(ctx, it)
}

// UpdateItem replaces the fields of one line item.
func (s *InventoryService) UpdateItem(ctx context.Context, txID, itemID string, req models.ItemRequest) (*models.Item, error) {
	if err := checkID(itemID); err != nil {
		return nil, err
	}
	it, err := itemFrom(txID, itemID, req)
	if err != nil {
		return nil, err
	}
	return s.repo.UpdateItem(ctx, it)
}

// RemoveItem deletes one line item.
func (s *InventoryService) RemoveItem(ctx context.Context, txID, itemID string) error {
	if err := checkID(txID); err != nil {
		return err
	}
	if err := checkID(itemID); err != nil {
		return err
	}
	return s.repo.RemoveItem(ctx, txID, itemID)
}

// ItemTypes lists item types.
func (s *InventoryService) ItemTypes(ctx context.Context) ([]models.ItemType, error) {
	return s.repo.ListItemTypes(ctx)
}

// ItemGroups lists item groups.
func (s *InventoryService) ItemGroups(ctx context.Context) ([]models.ItemGroup, error) {
	return s.repo.ListItemGroups(ctx)
}

// ItemUnits lists units of measure.
func (s *InventoryService) ItemUnits(ctx context.Context) ([]models.ItemUnit, error) {
	return s.repo.ListItemUnits(ctx)
}

// ItemAccountGroups lists account groups.
func (s *InventoryService) ItemAccountGroups(ctx context.Context) ([]models.ItemAccountGroup, error) {
	return s.repo.ListItemAccountGroups(ctx)
}

func itemFrom(txID, itemID string, req models.ItemRequest) (models.Item, error) {
	if err := checkID(txID); err != nil {
		return models.Item{}, err
	}
	if err := validateStruct(req); err != nil {
		return models.Item{}, err
	}
	if err := checkRefs(req.MasterItemID, req.ItemUnitID); err != nil {
		return models.Item{}, err
	}
	return models.Item{
		ID:            itemID,
		TransactionID: txID,
		MasterItemID:  req.MasterItemID,
		ItemUnitID:    req.ItemUnitID,
		Quantity:      req.Quantity,
		Note:          req.Note,
	}, nil
}

// checkID rejects path IDs that cannot exist.
func checkID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("id %q: %w", id, apperrors.ErrNotFound)
	}
	return nil
}

// checkRefs rejects malformed reference IDs in request bodies. Empty means unset.
func checkRefs(ids ...string) error {
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, err := uuid.Parse(id); err != nil {
			return fmt.Errorf("%w: %q is not a valid reference", apperrors.ErrValidation, id)
		}
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
