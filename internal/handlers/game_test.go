package handlers_test

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"regexp"
	"sync"
	"testing"

	"github.com/abrezinsky/outletplay/internal/handlers"
	"github.com/abrezinsky/outletplay/internal/models"
	"github.com/abrezinsky/outletplay/internal/repository"
	"github.com/abrezinsky/outletplay/internal/services"
	"github.com/abrezinsky/outletplay/internal/testutil"
)

var voucherPattern = regexp.MustCompile(`^FOX-[0-9A-F]{8}$`)

// capturedChannel records live events delivered through the feed
type capturedChannel struct {
	mu       sync.Mutex
	payloads []string
}

func (c *capturedChannel) WriteEvent(id string, payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.payloads = append(c.payloads, string(payload))
	return nil
}

func (c *capturedChannel) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.payloads)
}

func TestGameRoutes_RequireToken(t *testing.T) {
	setup := newTestSetup(t)

	routes := []struct{ method, path string }{
		{http.MethodGet, "/api/game/status"},
		{http.MethodPost, "/api/game/play"},
		{http.MethodGet, "/api/game/rewards"},
		{http.MethodGet, "/api/game/rewards/1/qr"},
	}
	for _, route := range routes {
		t.Run(route.method+" "+route.path, func(t *testing.T) {
			assertError(t, setup.do(route.method, route.path, "", ""), http.StatusUnauthorized, handlers.ErrCodeUnauthorized)
			assertError(t, setup.do(route.method, route.path, "", "garbage"), http.StatusUnauthorized, handlers.ErrCodeUnauthorized)
		})
	}
}

func TestGameStatus_FreshUser(t *testing.T) {
	setup := newTestSetup(t)

	rec := setup.do(http.MethodGet, "/api/game/status", "", setup.userToken(t, 1))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	status := decode[services.GameStatus](t, rec)
	if !status.CanPlay || status.Attempt != 1 || status.HasPlayed {
		t.Errorf("unexpected status %+v", status)
	}
	if status.PrizesRemainingToday != 10 {
		t.Errorf("expected 10 prizes remaining, got %d", status.PrizesRemainingToday)
	}
}

func TestPlay_TwoLossesThenExhausted(t *testing.T) {
	setup := newTestSetup(t)
	token := setup.userToken(t, 1)

	first := setup.do(http.MethodPost, "/api/game/play", "", token)
	if first.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", first.Code, first.Body.String())
	}
	result := decode[services.PlayResult](t, first)
	if result.Won || result.Attempt != 1 || !result.CanPlayAgain {
		t.Errorf("unexpected first result %+v", result)
	}

	second := decode[services.PlayResult](t, setup.do(http.MethodPost, "/api/game/play", "", token))
	if second.Attempt != 2 || second.CanPlayAgain {
		t.Errorf("unexpected second result %+v", second)
	}

	assertError(t, setup.do(http.MethodPost, "/api/game/play", "", token), http.StatusBadRequest, handlers.ErrCodeAttemptsExhausted)

	status := decode[services.GameStatus](t, setup.do(http.MethodGet, "/api/game/status", "", token))
	if status.CanPlay || len(status.TodaysPlays) != 2 {
		t.Errorf("unexpected status after two losses %+v", status)
	}
}

func TestPlay_WinThenAlreadyWon(t *testing.T) {
	setup := newTestSetup(t)
	testutil.SeedPrize(t, setup.repo, "Free coffee", 5)
	setup.game.SetRandomizer(testutil.AlwaysWin())
	live := &capturedChannel{}
	setup.feed.Subscribe(live)
	token := setup.userToken(t, 1)

	rec := setup.do(http.MethodPost, "/api/game/play", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	result := decode[services.PlayResult](t, rec)
	if !result.Won || result.Prize == nil || *result.Prize != "Free coffee" {
		t.Fatalf("expected a coffee win, got %+v", result)
	}
	if result.VoucherCode == nil || !voucherPattern.MatchString(*result.VoucherCode) {
		t.Errorf("unexpected voucher %v", result.VoucherCode)
	}
	if result.CanPlayAgain {
		t.Error("a winner cannot play again today")
	}
	if live.count() != 1 {
		t.Errorf("expected one live event, got %d", live.count())
	}

	assertError(t, setup.do(http.MethodPost, "/api/game/play", "", token), http.StatusBadRequest, handlers.ErrCodeAlreadyWon)
}

func TestPlay_UsersAreIndependent(t *testing.T) {
	setup := newTestSetup(t)

	for userID := int64(1); userID <= 3; userID++ {
		rec := setup.do(http.MethodPost, "/api/game/play", "", setup.userToken(t, userID))
		if rec.Code != http.StatusOK {
			t.Errorf("user %d: expected 200, got %d", userID, rec.Code)
		}
	}
}

func TestPlay_InProgress(t *testing.T) {
	setup := newTestSetup(t)
	setup.mockRepo.RecordPlayHook = func(ctx context.Context, play repository.NewPlay) {
		if _, err := setup.repo.RecordPlay(ctx, play, 10); err != nil {
			t.Errorf("interleaved RecordPlay failed: %v", err)
		}
	}

	assertError(t, setup.do(http.MethodPost, "/api/game/play", "", setup.userToken(t, 1)), http.StatusConflict, handlers.ErrCodePlayInProgress)
}

func TestPlay_StorageFailure(t *testing.T) {
	setup := newTestSetup(t)
	setup.mockRepo.RecordPlayError = fmt.Errorf("disk I/O error")

	rec := setup.do(http.MethodPost, "/api/game/play", "", setup.userToken(t, 1))
	assertError(t, rec, http.StatusInternalServerError, handlers.ErrCodeInternalServer)
	if bytes.Contains(rec.Body.Bytes(), []byte("disk")) {
		t.Errorf("storage detail leaked: %s", rec.Body.String())
	}
}

func TestGameStatus_StorageFailure(t *testing.T) {
	setup := newTestSetup(t)
	setup.mockRepo.ListPlaysForDayError = fmt.Errorf("database is locked")

	assertError(t, setup.do(http.MethodGet, "/api/game/status", "", setup.userToken(t, 1)), http.StatusInternalServerError, handlers.ErrCodeInternalServer)
}

func TestRewards(t *testing.T) {
	setup := newTestSetup(t)
	testutil.SeedPrize(t, setup.repo, "Parking hour", 5)
	setup.game.SetRandomizer(testutil.AlwaysWin())
	token := setup.userToken(t, 7)

	empty := setup.do(http.MethodGet, "/api/game/rewards", "", token)
	if empty.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", empty.Code)
	}
	if rewards := decode[[]models.Reward](t, empty); len(rewards) != 0 {
		t.Errorf("expected no rewards, got %d", len(rewards))
	}

	setup.do(http.MethodPost, "/api/game/play", "", token)

	rewards := decode[[]models.Reward](t, setup.do(http.MethodGet, "/api/game/rewards", "", token))
	if len(rewards) != 1 || rewards[0].Prize != "Parking hour" || !voucherPattern.MatchString(rewards[0].VoucherCode) {
		t.Errorf("unexpected rewards %+v", rewards)
	}
}

func TestRewardQR(t *testing.T) {
	setup := newTestSetup(t)
	testutil.SeedPrize(t, setup.repo, "Parking hour", 5)
	setup.game.SetRandomizer(testutil.AlwaysWin())
	token := setup.userToken(t, 7)

	setup.do(http.MethodPost, "/api/game/play", "", token)
	rewards := decode[[]models.Reward](t, setup.do(http.MethodGet, "/api/game/rewards", "", token))
	if len(rewards) != 1 {
		t.Fatalf("expected one reward, got %d", len(rewards))
	}
	path := fmt.Sprintf("/api/game/rewards/%d/qr", rewards[0].ID)

	rec := setup.do(http.MethodGet, path, "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if rec.Header().Get("Content-Type") != "image/png" {
		t.Errorf("expected image/png, got %s", rec.Header().Get("Content-Type"))
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG")) {
		t.Error("expected a PNG body")
	}

	t.Run("other user", func(t *testing.T) {
		assertError(t, setup.do(http.MethodGet, path, "", setup.userToken(t, 8)), http.StatusNotFound, handlers.ErrCodeNotFound)
	})
	t.Run("unknown play", func(t *testing.T) {
		assertError(t, setup.do(http.MethodGet, "/api/game/rewards/999/qr", "", token), http.StatusNotFound, handlers.ErrCodeNotFound)
	})
	t.Run("bad id", func(t *testing.T) {
		assertError(t, setup.do(http.MethodGet, "/api/game/rewards/abc/qr", "", token), http.StatusBadRequest, handlers.ErrCodeBadRequest)
	})
}
