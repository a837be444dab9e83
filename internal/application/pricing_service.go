package application

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/cabgo/rider-web/internal/common/domain"
	"github.com/cabgo/rider-web/internal/domain/pricing"
)

// PricingAPI is the backend's admin pricing surface.
type PricingAPI interface {
	ListPricing(ctx context.Context, token string) ([]pricing.Rate, error)
	UpdatePricing(ctx context.Context, token string, rate pricing.Rate) (*pricing.Rate, error)
}

// PricingService backs the admin pricing panel.
type PricingService struct {
	api    PricingAPI
	now    func() time.Time
	logger *zap.Logger
}

func NewPricingService(api PricingAPI, logger *zap.Logger) *PricingService {
	return &PricingService{api: api, now: time.Now, logger: logger}
}

// ListRates returns every vehicle rate.
func (s *PricingService) ListRates(ctx context.Context, identity *Identity) ([]pricing.Rate, error) {
	if err := s.authorize(identity); err != nil {
		return nil, err
	}
	return s.api.ListPricing(ctx, identity.Token)
}

// UpdateRate validates and saves one vehicle rate.
func (s *PricingService) UpdateRate(ctx context.Context, identity *Identity, rate pricing.Rate) (*pricing.Rate, error) {
	if err := s.authorize(identity); err != nil {
		return nil, err
	}
	if err := rate.Validate(); err != nil {
		return nil, err
	}

	updated, err := s.api.UpdatePricing(ctx, identity.Token, rate)
	if err != nil {
		return nil, err
	}
	s.logger.Info("pricing updated",
		zap.String("vehicle_type", string(updated.VehicleType)),
		zap.String("admin_id", identity.UserID),
	)
	return updated, nil
}

func (s *PricingService) authorize(identity *Identity) error {
	if !identity.Valid(s.now()) {
		return domain.NewAuthenticationRequiredError("please sign in as an administrator")
	}
	if !identity.IsAdmin() {
		return domain.NewForbiddenError("administrator access required")
	}
	return nil
}
