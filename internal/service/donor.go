package service

import (
	"context"

	"gorm.io/gorm"

	"charity-backend/internal/apperr"
	"charity-backend/internal/repo"
)

type DonorService struct {
	donors *repo.DonorRepo
}

func NewDonorService(db *gorm.DB) *DonorService { return &DonorService{donors: repo.NewDonorRepo(db)} }

func (s *DonorService) List(ctx context.Context, w Window) (List[DonorView], error) {
	offset, limit := w.Resolve()
	items, total, err := s.donors.List(ctx, offset, limit)
	if err != nil {
		return List[DonorView]{}, apperr.Internal("list donors failed", err)
	}
	return windowList(mapViews(items, NewDonorView), total, offset, limit), nil
}

func (s *DonorService) Get(ctx context.Context, id string) (DonorView, error) {
	d, err := s.donors.FindByID(ctx, id)
	if err != nil {
		return DonorView{}, apperr.Internal("load donor failed", err)
	}
	if d == nil {
		return DonorView{}, apperr.NotFound("donor not found")
	}
	return NewDonorView(d), nil
}
