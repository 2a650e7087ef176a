package service

import (
	"context"

	"github.com/atinyakov/StockKeeper/internal/models"
)

// ReferenceService reads the lookup tables. Results are not cached.
type ReferenceService struct {
	api Requester
}

func NewReferenceService(r Requester) *ReferenceService {
	return &ReferenceService{api: r}
}

func (s *ReferenceService) ItemTypes(ctx context.Context) ([]models.ItemType, error) {
	return list[models.ItemType](ctx, s.api, "/item-types")
}

func (s *ReferenceService) ItemGroups(ctx context.Context) ([]models.ItemGroup, error) {
	return list[models.ItemGroup](ctx, s.api, "/item-groups")
}

func (s *ReferenceService) ItemUnits(ctx context.Context) ([]models.ItemUnit, error) {
	return list[models.ItemUnit](ctx, s.api, "/item-units")
}

func (s *ReferenceService) ItemAccountGroups(ctx context.Context) ([]models.ItemAccountGroup, error) {
	return list[models.ItemAccountGroup](ctx, s.api, "/item-account-groups")
}
