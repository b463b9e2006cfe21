package services

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/abrezinsky/outletplay/internal/errors"
	"github.com/abrezinsky/outletplay/internal/logger"
	"github.com/abrezinsky/outletplay/internal/models"
	"github.com/abrezinsky/outletplay/internal/repository"
)

// PrizeService handles prize inventory administration
type PrizeService struct {
	log  logger.Logger
	repo repository.PrizeRepository
}

// NewPrizeService creates a new PrizeService
func NewPrizeService(log logger.Logger, repo repository.PrizeRepository) *PrizeService {
	return &PrizeService{
		log:  log,
		repo: repo,
	}
}

// Prize represents a prize for create/update operations
type Prize struct {
	Name        string
	Description string
	Quantity    int
	Active      bool
}

func (p *Prize) validate() error {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return errors.Validation("prize name is required")
	}
	if p.Quantity < 0 {
		return errors.Validation("quantity must not be negative")
	}
	return nil
}

// defaultPrizes is the starting inventory of a fresh installation
var defaultPrizes = []Prize{
	{Name: "Coffee voucher", Description: "One hot drink at the food court", Quantity: 40, Active: true},
	{Name: "10% shop discount", Description: "Valid in any participating shop", Quantity: 30, Active: true},
	{Name: "Free parking", Description: "Three hours of parking", Quantity: 20, Active: true},
	{Name: "Cinema ticket", Description: "One ticket for any standard screening", Quantity: 10, Active: true},
}

// ListPrizes returns every prize
func (s *PrizeService) ListPrizes(ctx context.Context) ([]models.Prize, error) {
	return s.repo.ListPrizes(ctx)
}

// CreatePrize validates and inserts a prize
func (s *PrizeService) CreatePrize(ctx context.Context, prize Prize) (int64, error) {
	if err := prize.validate(); err != nil {
		return 0, err
	}
	id, err := s.repo.CreatePrize(ctx, prize.Name, prize.Description, prize.Quantity, prize.Active)
	if err != nil {
		return 0, fmt.Errorf("create prize: %w", err)
	}
	s.log.Info("Prize created", "id", id, "name", prize.Name, "quantity", prize.Quantity)
	return id, nil
}

// UpdatePrize edits a prize. The quantity may not drop below what has
// already been claimed.
func (s *PrizeService) UpdatePrize(ctx context.Context, id int64, prize Prize) error {
	if err := prize.validate(); err != nil {
		return err
	}
	err := s.repo.UpdatePrize(ctx, id, prize.Name, prize.Description, prize.Quantity, prize.Active)
	switch {
	case stderrors.Is(err, repository.ErrNotFound):
		return errors.NotFoundf("prize %d not found", id)
	case stderrors.Is(err, repository.ErrQuantityBelowClaimed):
		return errors.Validation("quantity cannot be lower than the number already claimed")
	case err != nil:
		return fmt.Errorf("update prize: %w", err)
	}
	s.log.Info("Prize updated", "id", id, "quantity", prize.Quantity, "active", prize.Active)
	return nil
}

// SeedDefaultPrizes inserts the default inventory when no prize exists yet.
// It returns the number of prizes inserted.
func (s *PrizeService) SeedDefaultPrizes(ctx context.Context) (int, error) {
	count, err := s.repo.CountPrizes(ctx)
	if err != nil {
		return 0, fmt.Errorf("count prizes: %w", err)
	}
	if count > 0 {
		return 0, nil
	}

	for i, p := range defaultPrizes {
		if _, err := s.repo.CreatePrize(ctx, p.Name, p.Description, p.Quantity, p.Active); err != nil {
			return i, fmt.Errorf("seed prize %q: %w", p.Name, err)
		}
	}
	s.log.Info("Seeded default prizes", "count", len(defaultPrizes))
	return len(defaultPrizes), nil
}
