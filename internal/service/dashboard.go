package service

import (
	"context"

	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"

	"charity-backend/internal/access"
	"charity-backend/internal/apperr"
	"charity-backend/internal/repo"
)

type Statistics struct {
	TotalCampaigns    int64  `json:"totalCampaigns"`
	ActiveCampaigns   int64  `json:"activeCampaigns"`
	TotalDonations    int64  `json:"totalDonations"`
	TotalAmountRaised string `json:"totalAmountRaised"`
	TotalDonors       int64  `json:"totalDonors"`
}

type Dashboard struct {
	Admin      AdminView  `json:"admin"`
	Statistics Statistics `json:"statistics"`
}

type DashboardService struct {
	campaigns *repo.CampaignRepo
	donations *repo.DonationRepo
	donors    *repo.DonorRepo
	admins    *AdminService
	sf        singleflight.Group
}

func NewDashboardService(db *gorm.DB, admins *AdminService) *DashboardService {
	return &DashboardService{
		campaigns: repo.NewCampaignRepo(db),
		donations: repo.NewDonationRepo(db),
		donors:    repo.NewDonorRepo(db),
		admins:    admins,
	}
}

// Stats 并发请求合并为一次查询（不做缓存）
func (s *DashboardService) Stats(ctx context.Context) (Statistics, error) {
	v, err, _ := s.sf.Do("stats", func() (any, error) {
		cs, err := s.campaigns.Stats(ctx)
		if err != nil {
			return nil, err
		}
		donations, err := s.donations.Count(ctx)
		if err != nil {
			return nil, err
		}
		donors, err := s.donors.Count(ctx)
		if err != nil {
			return nil, err
		}
		return Statistics{
			TotalCampaigns:    cs.Total,
			ActiveCampaigns:   cs.Active,
			TotalDonations:    donations,
			TotalAmountRaised: money(cs.AmountRaised),
			TotalDonors:       donors,
		}, nil
	})
	if err != nil {
		return Statistics{}, apperr.Internal("load statistics failed", err)
	}
	return v.(Statistics), nil
}

func (s *DashboardService) Get(ctx context.Context, p access.Principal) (Dashboard, error) {
	a, err := s.admins.ForUser(ctx, p.UserID)
	if err != nil {
		return Dashboard{}, err
	}
	stats, err := s.Stats(ctx)
	if err != nil {
		return Dashboard{}, err
	}
	return Dashboard{Admin: a, Statistics: stats}, nil
}
