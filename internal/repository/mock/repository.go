package mock

import (
	"context"

	"github.com/abrezinsky/outletplay/internal/models"
	"github.com/abrezinsky/outletplay/internal/repository"
)

// Repository wraps a real repository and allows injecting errors for testing.
//
// Usage:
//
//	realRepo := testutil.NewTestRepository(t)
//	mockRepo := mock.NewRepository(realRepo)
//	mockRepo.RecordPlayError = errors.New("database error")
//	svc := services.NewGameService(log, mockRepo, cfg)
//	_, err := svc.Play(ctx, userID)
type Repository struct {
	repository.FullRepository

	// ===== Game Errors =====
	ListPlaysForDayError  error
	CountWinsForDayError  error
	CountPlaysForDayError error
	RecordPlayError       error
	ListRewardsError      error
	GetPlayError          error

	// ===== Prize Errors =====
	ListActivePrizesError error
	ListPrizesError       error
	GetPrizeError         error
	CreatePrizeError      error
	UpdatePrizeError      error
	CountPrizesError      error

	PingError error

	// RecordPlayHook runs before the wrapped RecordPlay, letting a test
	// interleave another play between the engine's read and its write
	RecordPlayHook func(ctx context.Context, play repository.NewPlay)
}

// NewRepository creates a mock repository wrapping a real one
func NewRepository(real repository.FullRepository) *Repository {
	return &Repository{
		FullRepository: real,
	}
}

// ===== Game Methods =====

func (m *Repository) ListPlaysForDay(ctx context.Context, userID int64, day string) ([]models.GamePlay, error) {
	if m.ListPlaysForDayError != nil {
		return nil, m.ListPlaysForDayError
	}
	return m.FullRepository.ListPlaysForDay(ctx, userID, day)
}

func (m *Repository) CountWinsForDay(ctx context.Context, day string) (int, error) {
	if m.CountWinsForDayError != nil {
		return 0, m.CountWinsForDayError
	}
	return m.FullRepository.CountWinsForDay(ctx, day)
}

func (m *Repository) CountPlaysForDay(ctx context.Context, day string) (int, error) {
	if m.CountPlaysForDayError != nil {
		return 0, m.CountPlaysForDayError
	}
	return m.FullRepository.CountPlaysForDay(ctx, day)
}

func (m *Repository) RecordPlay(ctx context.Context, play repository.NewPlay, dailyCap int) (*repository.RecordedPlay, error) {
	if m.RecordPlayError != nil {
		return nil, m.RecordPlayError
	}
	if m.RecordPlayHook != nil {
		m.RecordPlayHook(ctx, play)
	}
	return m.FullRepository.RecordPlay(ctx, play, dailyCap)
}

func (m *Repository) ListRewards(ctx context.Context, userID int64) ([]models.Reward, error) {
	if m.ListRewardsError != nil {
		return nil, m.ListRewardsError
	}
	return m.FullRepository.ListRewards(ctx, userID)
}

func (m *Repository) GetPlay(ctx context.Context, id int64) (*models.GamePlay, error) {
	if m.GetPlayError != nil {
		return nil, m.GetPlayError
	}
	return m.FullRepository.GetPlay(ctx, id)
}

// ===== Prize Methods =====

func (m *Repository) ListActivePrizes(ctx context.Context) ([]models.Prize, error) {
	if m.ListActivePrizesError != nil {
		return nil, m.ListActivePrizesError
	}
	return m.FullRepository.ListActivePrizes(ctx)
}

func (m *Repository) ListPrizes(ctx context.Context) ([]models.Prize, error) {
	if m.ListPrizesError != nil {
		return nil, m.ListPrizesError
	}
	return m.FullRepository.ListPrizes(ctx)
}

func (m *Repository) GetPrize(ctx context.Context, id int64) (*models.Prize, error) {
	if m.GetPrizeError != nil {
		return nil, m.GetPrizeError
	}
	return m.FullRepository.GetPrize(ctx, id)
}

func (m *Repository) CreatePrize(ctx context.Context, name, description string, quantity int, active bool) (int64, error) {
	if m.CreatePrizeError != nil {
		return 0, m.CreatePrizeError
	}
	return m.FullRepository.CreatePrize(ctx, name, description, quantity, active)
}

func (m *Repository) UpdatePrize(ctx context.Context, id int64, name, description string, quantity int, active bool) error {
	if m.UpdatePrizeError != nil {
		return m.UpdatePrizeError
	}
	return m.FullRepository.UpdatePrize(ctx, id, name, description, quantity, active)
}

func (m *Repository) CountPrizes(ctx context.Context) (int, error) {
	if m.CountPrizesError != nil {
		return 0, m.CountPrizesError
	}
	return m.FullRepository.CountPrizes(ctx)
}

func (m *Repository) Ping(ctx context.Context) error {
	if m.PingError != nil {
		return m.PingError
	}
	return m.FullRepository.Ping(ctx)
}
