package services

import (
	"context"
	"time"

	"github.com/abrezinsky/outletplay/internal/models"
)

// GameServicer defines the interface for scratch-game operations
type GameServicer interface {
	GetStatus(ctx context.Context, userID int64, now time.Time) (*GameStatus, error)
	Play(ctx context.Context, userID int64, now time.Time) (*PlayResult, error)
	ListRewards(ctx context.Context, userID int64) ([]models.Reward, error)
	RewardQRCode(ctx context.Context, userID, playID int64) ([]byte, error)
	DailySummary(ctx context.Context, now time.Time) (*DailySummary, error)
}

// PrizeServicer defines the interface for prize administration
type PrizeServicer interface {
	ListPrizes(ctx context.Context) ([]models.Prize, error)
	CreatePrize(ctx context.Context, prize Prize) (int64, error)
	UpdatePrize(ctx context.Context, id int64, prize Prize) error
	SeedDefaultPrizes(ctx context.Context) (int, error)
}

// Ensure concrete types implement interfaces
var (
	_ GameServicer  = (*GameService)(nil)
	_ PrizeServicer = (*PrizeService)(nil)
)
