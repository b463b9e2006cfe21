package testutil

import (
	"context"
	"testing"

	"github.com/abrezinsky/outletplay/internal/models"
	"github.com/abrezinsky/outletplay/internal/repository"
)

// NewTestRepository creates a new in-memory repository for testing.
// Each call creates a fresh database with all migrations applied.
func NewTestRepository(t *testing.T) *repository.Repository {
	t.Helper()

	repo, err := repository.New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test repository: %v", err)
	}

	t.Cleanup(func() { repo.Close() })

	return repo
}

// SeedPrize inserts an active prize and returns it
func SeedPrize(t *testing.T, repo repository.PrizeRepository, name string, quantity int) models.Prize {
	t.Helper()

	ctx := context.Background()
	id, err := repo.CreatePrize(ctx, name, "", quantity, true)
	if err != nil {
		t.Fatalf("failed to seed prize %q: %v", name, err)
	}
	prize, err := repo.GetPrize(ctx, id)
	if err != nil {
		t.Fatalf("failed to load seeded prize %q: %v", name, err)
	}
	return *prize
}

// FixedRand is a deterministic randomizer. Float64 returns the queued draws
// in order, repeating the last one; IntN always returns Index modulo n.
type FixedRand struct {
	Draws []float64
	Index int
	calls int
}

// Float64 returns the next queued draw
func (f *FixedRand) Float64() float64 {
	if len(f.Draws) == 0 {
		return 0
	}
	i := f.calls
	if i >= len(f.Draws) {
		i = len(f.Draws) - 1
	}
	f.calls++
	return f.Draws[i]
}

// IntN returns Index modulo n
func (f *FixedRand) IntN(n int) int {
	if n <= 0 {
		return 0
	}
	return f.Index % n
}

// AlwaysWin returns a randomizer whose draws always fall under the win probability
func AlwaysWin() *FixedRand { return &FixedRand{Draws: []float64{0.0}} }

// AlwaysLose returns a randomizer whose draws never fall under the win probability
func AlwaysLose() *FixedRand { return &FixedRand{Draws: []float64{0.99}} }
