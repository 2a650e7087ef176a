package service

import (
	"context"
	"net/http"

	"github.com/atinyakov/StockKeeper/internal/client/api"
	"github.com/atinyakov/StockKeeper/internal/models"
)

// MasterItemService is the /master-items resource.
type MasterItemService struct {
	api Requester
}

func NewMasterItemService(r Requester) *MasterItemService {
	return &MasterItemService{api: r}
}

func (s *MasterItemService) List(ctx context.Context) ([]models.MasterItem, error) {
	return list[models.MasterItem](ctx, s.api, "/master-items")
}

func (s *MasterItemService) Create(ctx context.Context, req models.CreateMasterItemRequest) (*models.MasterItem, error) {
	var out models.MasterItem
	if err := s.api.Do(ctx, http.MethodPost, "/master-items", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Update sends a partial update; nil fields are left untouched server-side.
func (s *MasterItemService) Update(ctx context.Context, id string, req models.UpdateMasterItemRequest) (*models.MasterItem, error) {
	var out models.MasterItem
	if err := s.api.Do(ctx, http.MethodPatch, api.Path("master-items", id), req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *MasterItemService) Delete(ctx context.Context, id string) error {
	return s.api.Do(ctx, http.MethodDelete, api.Path("master-items", id), nil, nil)
}
