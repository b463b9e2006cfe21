package repository

import (
	"context"

	"github.com/abrezinsky/outletplay/internal/models"
)

// GameRepository defines play-record operations used by the game engine
type GameRepository interface {
	ListPlaysForDay(ctx context.Context, userID int64, day string) ([]models.GamePlay, error)
	CountWinsForDay(ctx context.Context, day string) (int, error)
	CountPlaysForDay(ctx context.Context, day string) (int, error)
	RecordPlay(ctx context.Context, play NewPlay, dailyCap int) (*RecordedPlay, error)
	ListRewards(ctx context.Context, userID int64) ([]models.Reward, error)
	GetPlay(ctx context.Context, id int64) (*models.GamePlay, error)
}

// PrizeRepository defines prize inventory operations
type PrizeRepository interface {
	ListActivePrizes(ctx context.Context) ([]models.Prize, error)
	ListPrizes(ctx context.Context) ([]models.Prize, error)
	GetPrize(ctx context.Context, id int64) (*models.Prize, error)
	CreatePrize(ctx context.Context, name, description string, quantity int, active bool) (int64, error)
	UpdatePrize(ctx context.Context, id int64, name, description string, quantity int, active bool) error
	CountPrizes(ctx context.Context) (int, error)
}

// HealthChecker reports whether the store is reachable
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// FullRepository combines all repository interfaces
type FullRepository interface {
	GameRepository
	PrizeRepository
	HealthChecker
}

// Ensure Repository implements all interfaces
var _ FullRepository = (*Repository)(nil)
