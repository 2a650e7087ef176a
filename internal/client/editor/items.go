package editor

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/atinyakov/StockKeeper/internal/apperrors"
	"github.com/atinyakov/StockKeeper/internal/models"
)

// ErrInvalidItem is returned for drafts rejected before any request is sent.
var ErrInvalidItem = fmt.Errorf("invalid item: %w", apperrors.ErrValidation)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ItemDraft is the line-item form as the user filled it in.
type ItemDraft struct {
	MasterItemID string `validate:"required"`
	Quantity     int    `validate:"gt=0"`
	Note         string
	ItemUnitID   string
}

// Validate checks the draft locally.
func (d ItemDraft) Validate() error {
	err := validate.Struct(d)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %w", ErrInvalidItem, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Field() {
		case "MasterItemID":
			msgs = append(msgs, "master item is required")
		case "Quantity":
			msgs = append(msgs, "quantity must be a positive integer")
		default:
			msgs = append(msgs, fe.Error())
		}
	}
	return fmt.Errorf("%w: %s", ErrInvalidItem, strings.Join(msgs, "; "))
}

// DraftFromItem pre-fills a draft for editing an existing line item.
func DraftFromItem(it models.Item) ItemDraft {
	return ItemDraft{
		MasterItemID: it.MasterItemID,
		Quantity:     it.Quantity,
		Note:         it.Note,
		ItemUnitID:   it.ItemUnitID,
	}
}

// ResolveUnit fills an empty ItemUnitID with the default unit of the
// referenced master item, when the catalog knows it.
func ResolveUnit(d ItemDraft, catalog []models.MasterItem) ItemDraft {
	if d.ItemUnitID != "" {
		return d
	}
	for _, mi := range catalog {
		if mi.ID == d.MasterItemID {
			d.ItemUnitID = mi.ItemUnitID
			break
		}
	}
	return d
}

func (d ItemDraft) request() models.ItemRequest {
	return models.ItemRequest{
		MasterItemID: d.MasterItemID,
		Quantity:     d.Quantity,
		Note:         d.Note,
		ItemUnitID:   d.ItemUnitID,
	}
}

// ItemAPI is the line-item sub-resource of a transaction.
type ItemAPI interface {
	AddItem(ctx context.Context, transactionID string, req models.ItemRequest) (*models.Item, error)
	UpdateItem(ctx context.Context, transactionID, itemID string, req models.ItemRequest) (*models.Item, error)
	RemoveItem(ctx context.Context, transactionID, itemID string) error
}

// MasterItemLister lists the catalog the item form picks from.
type MasterItemLister interface {
	List(ctx context.Context) ([]models.MasterItem, error)
}

// UnitLister lists the units the item form offers.
type UnitLister interface {
	ItemUnits(ctx context.Context) ([]models.ItemUnit, error)
}

// ItemEditor edits the line items of transactions shown on a board. Every
// successful mutation is followed by a silent board refresh, because item
// endpoints do not return the joined master item and unit details.
type ItemEditor struct {
	board    *TransactionBoard
	items    ItemAPI
	masters  MasterItemLister
	unitsAPI UnitLister
	confirm  Confirmer
	log      *zap.Logger

	masterItems []models.MasterItem
	units       []models.ItemUnit
}

// NewItemEditor wires an editor to its board.
func NewItemEditor(
	board *TransactionBoard,
	items ItemAPI,
	masters MasterItemLister,
	units UnitLister,
	confirm Confirmer,
	log *zap.Logger,
) *ItemEditor {
	if log == nil {
		log = zap.NewNop()
	}
	return &ItemEditor{
		board:    board,
		items:    items,
		masters:  masters,
		unitsAPI: units,
		confirm:  confirm,
		log:      log,
	}
}

// Open loads the master items and units fresh. A failed lookup is logged
// and leaves the corresponding list empty, the form stays usable.
func (e *ItemEditor) Open(ctx context.Context) {
	masterItems, err := e.masters.List(ctx)
	if err != nil {
		e.log.Error("failed to fetch master items", zap.Error(err))
	}
	units, err := e.unitsAPI.ItemUnits(ctx)
	if err != nil {
		e.log.Error("failed to fetch item units", zap.Error(err))
	}
	e.masterItems = masterItems
	e.units = units
}

// MasterItems returns the catalog loaded by Open.
func (e *ItemEditor) MasterItems() []models.MasterItem { return e.masterItems }

// Units returns the units loaded by Open.
func (e *ItemEditor) Units() []models.ItemUnit { return e.units }

// AddItem validates the draft, defaults its unit and creates the line item.
func (e *ItemEditor) AddItem(ctx context.Context, transactionID string, d ItemDraft) (*models.Item, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	d = ResolveUnit(d, e.masterItems)
	it, err := e.items.AddItem(ctx, transactionID, d.request())
	if err != nil {
		return nil, fmt.Errorf("add item: %w", err)
	}
	e.resync(ctx)
	return it, nil
}

// UpdateItem replaces the fields of one line item.
func (e *ItemEditor) UpdateItem(ctx context.Context, transactionID, itemID string, d ItemDraft) (*models.Item, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	d = ResolveUnit(d, e.masterItems)
	it, err := e.items.UpdateItem(ctx, transactionID, itemID, d.request())
	if err != nil {
		return nil, fmt.Errorf("update item: %w", err)
	}
	e.resync(ctx)
	return it, nil
}

// RemoveItem deletes one line item once the user confirmed it.
func (e *ItemEditor) RemoveItem(ctx context.Context, transactionID, itemID string) error {
	if e.confirm == nil || !e.confirm.Confirm("Are you sure you want to delete this item?") {
		return ErrNotConfirmed
	}
	if err := e.items.RemoveItem(ctx, transactionID, itemID); err != nil {
		return fmt.Errorf("remove item: %w", err)
	}
	e.resync(ctx)
	return nil
}

// resync re-reads the board after a mutation. The mutation already
// succeeded, so a failure here leaves stale data and is only logged.
func (e *ItemEditor) resync(ctx context.Context) {
	if err := e.board.Refresh(ctx, true); err != nil {
		e.log.Warn("item saved but transaction list could not be refreshed", zap.Error(err))
	}
}
