package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/atinyakov/StockKeeper/internal/middleware"
	"github.com/atinyakov/StockKeeper/internal/models"
)

// InventoryService defines the inventory operations required by the
// InventoryHandler.
type InventoryService interface {
	ListMasterItems(ctx context.Context) ([]models.MasterItem, error)
	CreateMasterItem(ctx context.Context, req models.CreateMasterItemRequest) (*models.MasterItem, error)
	UpdateMasterItem(ctx context.Context, id string, req models.UpdateMasterItemRequest) (*models.MasterItem, error)
	DeleteMasterItem(ctx context.Context, id string) error

	ListTransactions(ctx context.Context) ([]models.Transaction, error)
	GetTransaction(ctx context.Context, id string) (*models.Transaction, error)
	CreateTransaction(ctx context.Context, userID string, req models.CreateTransactionRequest) (*models.Transaction, error)
	UpdateTransaction(ctx context.Context, id string, req models.UpdateTransactionRequest) (*models.Transaction, error)
	DeleteTransaction(ctx context.Context, id string) error

	AddItem(ctx context.Context, txID string, req models.ItemRequest) (*models.Item, error)
	UpdateItem(ctx context.Context, txID, itemID string, req models.ItemRequest) (*models.Item, error)
	RemoveItem(ctx context.Context, txID, itemID string) error

	ItemTypes(ctx context.Context) ([]models.ItemType, error)
	ItemGroups(ctx context.Context) ([]models.ItemGroup, error)
	ItemUnits(ctx context.Context) ([]models.ItemUnit, error)
	ItemAccountGroups(ctx context.Context) ([]models.ItemAccountGroup, error)
}

// InventoryHandler serves master items, transactions, their line items and
// the reference lookups.
type InventoryHandler struct {
	Inventory InventoryService
	Log       *zap.Logger
}

// respond writes v as 200 (or the given status) or maps err.
func respond[T any](h *InventoryHandler, w http.ResponseWriter, r *http.Request, status int, v T, err error) {
	if err != nil {
		writeError(w, h.Log, r, err)
		return
	}
	writeJSON(w, status, v)
}

func (h *InventoryHandler) noContent(w http.ResponseWriter, r *http.Request, err error) {
	if err != nil {
		writeError(w, h.Log, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListMasterItems handles GET /master-items.
func (h *InventoryHandler) ListMasterItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.Inventory.ListMasterItems(r.Context())
	respond(h, w, r, http.StatusOK, items, err)
}

// CreateMasterItem handles POST /master-items.
func (h *InventoryHandler) CreateMasterItem(w http.ResponseWriter, r *http.Request) {
	var req models.CreateMasterItemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.Log, r, err)
		return
	}
	mi, err := h.Inventory.CreateMasterItem(r.Context(), req)
	respond(h, w, r, http.StatusCreated, mi, err)
}

// UpdateMasterItem handles PATCH /master-items/{id}.
func (h *InventoryHandler) UpdateMasterItem(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateMasterItemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.Log, r, err)
		return
	}
	mi, err := h.Inventory.UpdateMasterItem(r.Context(), chi.URLParam(r, "id"), req)
	respond(h, w, r, http.StatusOK, mi, err)
}

// DeleteMasterItem handles DELETE /master-items/{id}.
func (h *InventoryHandler) DeleteMasterItem(w http.ResponseWriter, r *http.Request) {
	h.noContent(w, r, h.Inventory.DeleteMasterItem(r.Context(), chi.URLParam(r, "id")))
}

// ListTransactions handles GET /transactions.
func (h *InventoryHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	txs, err := h.Inventory.ListTransactions(r.Context())
	respond(h, w, r, http.StatusOK, txs, err)
}

// GetTransaction handles GET /transactions/{id}.
func (h *InventoryHandler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	tx, err := h.Inventory.GetTransaction(r.Context(), chi.URLParam(r, "id"))
	respond(h, w, r, http.StatusOK, tx, err)
}

// CreateTransaction handles POST /transactions.
func (h *InventoryHandler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req models.CreateTransactionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.Log, r, err)
		return
	}
	tx, err := h.Inventory.CreateTransaction(r.Context(), middleware.GetUserIDFromContext(r.Context()), req)
	respond(h, w, r, http.StatusCreated, tx, err)
}

// UpdateTransaction handles PATCH /transactions/{id}.
func (h *InventoryHandler) UpdateTransaction(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateTransactionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.Log, r, err)
		return
	}
	tx, err := h.Inventory.UpdateTransaction(r.Context(), chi.URLParam(r, "id"), req)
	respond(h, w, r, http.StatusOK, tx, err)
}

// DeleteTransaction handles DELETE /transactions/{id}.
func (h *InventoryHandler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	h.noContent(w, r, h.Inventory.DeleteTransaction(r.Context(), chi.URLParam(r, "id")))
}

// AddItem handles POST /transactions/{id}/items.
func (h *InventoryHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req models.ItemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.Log, r, err)
		return
	}
	it, err := h.Inventory.AddItem(r.Context(), chi.URLParam(r, "id"), req)
	respond(h, w, r, http.StatusCreated, it, err)
}

// UpdateItem handles PATCH /transactions/{id}/items/{itemId}.
func (h *InventoryHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	var req models.ItemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.Log, r, err)
		return
	}
	it, err := h.Inventory.UpdateItem(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "itemId"), req)
	respond(h, w, r, http.StatusOK, it, err)
}

// RemoveItem handles DELETE /transactions/{id}/items/{itemId}.
func (h *InventoryHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	h.noContent(w, r, h.Inventory.RemoveItem(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "itemId")))
}

// ItemTypes handles GET /item-types.
func (h *InventoryHandler) ItemTypes(w http.ResponseWriter, r *http.Request) {
	v, err := h.Inventory.ItemTypes(r.Context())
	respond(h, w, r, http.StatusOK, v, err)
}

// ItemGroups handles GET /item-groups.
func (h *InventoryHandler) ItemGroups(w http.ResponseWriter, r *http.Request) {
	v, err := h.Inventory.ItemGroups(r.Context())
	respond(h, w, r, http.StatusOK, v, err)
}

// ItemUnits handles GET /item-units.
func (h *InventoryHandler) ItemUnits(w http.ResponseWriter, r *http.Request) {
	v, err := h.Inventory.ItemUnits(r.Context())
	respond(h, w, r, http.StatusOK, v, err)
}

// ItemAccountGroups handles GET /item-account-groups.
func (h *InventoryHandler) ItemAccountGroups(w http.ResponseWriter, r *http.Request) {
	v, err := h.Inventory.ItemAccountGroups(r.Context())
	respond(h, w, r, http.StatusOK, v, err)
}
