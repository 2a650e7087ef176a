package service

import (
	"context"
	"net/http"

	"github.com/atinyakov/StockKeeper/internal/client/api"
	"github.com/atinyakov/StockKeeper/internal/models"
)

// TransactionService is the /transactions resource and its nested items.
type TransactionService struct {
	api Requester
}

func NewTransactionService(r Requester) *TransactionService {
	return &TransactionService{api: r}
}

func (s *TransactionService) List(ctx context.Context) ([]models.Transaction, error) {
	return list[models.Transaction](ctx, s.api, "/transactions")
}

// Get fetches one transaction with its joined item details.
func (s *TransactionService) Get(ctx context.Context, id string) (*models.Transaction, error) {
	var out models.Transaction
	if err := s.api.Do(ctx, http.MethodGet, api.Path("transactions", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *TransactionService) Create(ctx context.Context, req models.CreateTransactionRequest) (*models.Transaction, error) {
	var out models.Transaction
	if err := s.api.Do(ctx, http.MethodPost, "/transactions", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *TransactionService) Update(ctx context.Context, id string, req models.UpdateTransactionRequest) (*models.Transaction, error) {
	var out models.Transaction
	if err := s.api.Do(ctx, http.MethodPatch, api.Path("transactions", id), req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *TransactionService) Delete(ctx context.Context, id string) error {
	return s.api.Do(ctx, http.MethodDelete, api.Path("transactions", id), nil, nil)
}

// AddItem creates a line item. The returned item carries no joined details.
func (s *TransactionService) AddItem(ctx context.Context, transactionID string, req models.ItemRequest) (*models.Item, error) {
	var out models.Item
	if err := s.api.Do(ctx, http.MethodPost, api.Path("transactions", transactionID, "items"), req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *TransactionService) UpdateItem(ctx context.Context, transactionID, itemID string, req models.ItemRequest) (*models.Item, error) {
	var out models.Item
	path := api.Path("transactions", transactionID, "items", itemID)
	if err := s.api.Do(ctx, http.MethodPatch, path, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *TransactionService) RemoveItem(ctx context.Context, transactionID, itemID string) error {
	return s.api.Do(ctx, http.MethodDelete, api.Path("transactions", transactionID, "items", itemID), nil, nil)
}
