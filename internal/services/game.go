package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	stderrors "errors"
	"fmt"
	"io"
	mathrand "math/rand/v2"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/skip2/go-qrcode"

	"github.com/abrezinsky/outletplay/internal/errors"
	"github.com/abrezinsky/outletplay/internal/logger"
	"github.com/abrezinsky/outletplay/internal/metrics"
	"github.com/abrezinsky/outletplay/internal/models"
	"github.com/abrezinsky/outletplay/internal/repository"
)

// MaxAttemptsPerDay is the number of plays a user gets per calendar day
const MaxAttemptsPerDay = 2

// Player-facing result messages
const (
	messageWin       = "Congratulations! You won: %s"
	messageLossRetry = "No luck! You can try a second time."
	messageLossFinal = "No luck! Come back tomorrow to try again."
	messageLiveWin   = "A visitor just won: %s!"
)

// Rejection reasons used as metric labels
const (
	reasonAttemptsExhausted = "attempts_exhausted"
	reasonAlreadyWon        = "already_won"
	reasonPlayInProgress    = "play_in_progress"
	downgradeNoPrize        = "no_prize"
)

// GameConfig holds the tunable rules of the daily game
type GameConfig struct {
	DailyPrizeCap  int
	WinProbability float64
	VoucherPrefix  string
	// Location decides where one calendar day ends and the next begins
	Location *time.Location
}

// DefaultGameConfig returns the standard mall configuration
func DefaultGameConfig() GameConfig {
	return GameConfig{
		DailyPrizeCap:  10,
		WinProbability: 0.30,
		VoucherPrefix:  "FOX",
		Location:       time.Local,
	}
}

// Randomizer supplies the win draw and the prize pick
type Randomizer interface {
	// Float64 returns a uniform value in [0, 1)
	Float64() float64
	// IntN returns a uniform value in [0, n)
	IntN(n int) int
}

type defaultRandomizer struct{}

func (defaultRandomizer) Float64() float64 { return mathrand.Float64() }
func (defaultRandomizer) IntN(n int) int   { return mathrand.IntN(n) }

// WinPublisher receives every persisted win
type WinPublisher interface {
	Publish(event models.WinEvent)
}

// viewerCounter is implemented by publishers that know how many viewers are live
type viewerCounter interface {
	Size() int
}

// GameServiceRepository defines the repository methods needed by GameService
type GameServiceRepository interface {
	repository.GameRepository
	ListActivePrizes(ctx context.Context) ([]models.Prize, error)
}

// GameService runs the daily scratch game
type GameService struct {
	log        logger.Logger
	repo       GameServiceRepository
	cfg        GameConfig
	rand       Randomizer
	randReader io.Reader // voucher entropy: defaults to crypto/rand.Reader
	publisher  WinPublisher
}

// NewGameService creates a new GameService
func NewGameService(log logger.Logger, repo GameServiceRepository, cfg GameConfig) *GameService {
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.VoucherPrefix == "" {
		cfg.VoucherPrefix = DefaultGameConfig().VoucherPrefix
	}
	return &GameService{
		log:        log,
		repo:       repo,
		cfg:        cfg,
		rand:       defaultRandomizer{},
		randReader: rand.Reader,
	}
}

// SetRandomizer replaces the win draw and prize pick source (for testing)
func (s *GameService) SetRandomizer(r Randomizer) {
	s.rand = r
}

// SetRandReader sets a custom voucher entropy reader (for testing)
func (s *GameService) SetRandReader(reader io.Reader) {
	s.randReader = reader
}

// SetPublisher sets where persisted wins are announced
func (s *GameService) SetPublisher(p WinPublisher) {
	s.publisher = p
}

// Config returns the active game rules
func (s *GameService) Config() GameConfig {
	return s.cfg
}

// PlaySummary is one of today's plays as shown in the status
type PlaySummary struct {
	Won         bool    `json:"won"`
	Prize       *string `json:"prize"`
	VoucherCode *string `json:"voucherCode"`
	Attempt     int     `json:"attempt"`
}

// GameStatus is the caller's eligibility for today
type GameStatus struct {
	CanPlay              bool          `json:"canPlay"`
	Attempt              int           `json:"attempt"`
	HasPlayed            bool          `json:"hasPlayed"`
	TodaysPlays          []PlaySummary `json:"todaysPlays"`
	PrizesRemainingToday int           `json:"prizesRemainingToday"`
}

// PlayResult is the outcome of one scratch
type PlayResult struct {
	Won          bool    `json:"won"`
	Prize        *string `json:"prize"`
	VoucherCode  *string `json:"voucherCode"`
	Attempt      int     `json:"attempt"`
	CanPlayAgain bool    `json:"canPlayAgain"`
	Message      string  `json:"message"`
}

// DailySummary is the admin view of one game day
type DailySummary struct {
	Day                  string `json:"day"`
	Plays                int    `json:"plays"`
	Wins                 int    `json:"wins"`
	PrizesRemainingToday int    `json:"prizesRemainingToday"`
	PrizeUnitsInStock    int    `json:"prizeUnitsInStock"`
	LiveViewers          int    `json:"liveViewers"`
}

// PlayDay returns the calendar day now falls on in the game timezone
func (s *GameService) PlayDay(now time.Time) string {
	return now.In(s.cfg.Location).Format(time.DateOnly)
}

func (s *GameService) remaining(wins int) int {
	return max(0, s.cfg.DailyPrizeCap-wins)
}

// GetStatus reports whether the user may play now. It has no side effects.
func (s *GameService) GetStatus(ctx context.Context, userID int64, now time.Time) (*GameStatus, error) {
	day := s.PlayDay(now)

	plays, err := s.repo.ListPlaysForDay(ctx, userID, day)
	if err != nil {
		return nil, fmt.Errorf("list plays for day: %w", err)
	}
	wins, err := s.repo.CountWinsForDay(ctx, day)
	if err != nil {
		return nil, fmt.Errorf("count wins for day: %w", err)
	}

	firstPlayLost := len(plays) == 1 && !plays[0].Won
	status := &GameStatus{
		CanPlay:              len(plays) == 0 || firstPlayLost,
		Attempt:              1,
		HasPlayed:            len(plays) > 0,
		TodaysPlays:          make([]PlaySummary, 0, len(plays)),
		PrizesRemainingToday: s.remaining(wins),
	}
	if len(plays) > 0 {
		status.Attempt = 2
	}
	for _, p := range plays {
		status.TodaysPlays = append(status.TodaysPlays, PlaySummary{
			Won:         p.Won,
			Prize:       p.Prize,
			VoucherCode: p.VoucherCode,
			Attempt:     p.Attempt,
		})
	}
	return status, nil
}

// Play scratches one card for the user. Rejections are returned as
// ErrAttemptsExhausted or ErrAlreadyWon and record nothing. A winning draw
// with no prize left, or that loses the race for the last prize or the
// daily cap, is recorded as a loss.
func (s *GameService) Play(ctx context.Context, userID int64, now time.Time) (*PlayResult, error) {
	start := time.Now()
	defer func() { metrics.GamePlayLatency.Observe(time.Since(start).Seconds()) }()

	day := s.PlayDay(now)

	plays, err := s.repo.ListPlaysForDay(ctx, userID, day)
	if err != nil {
		return nil, fmt.Errorf("list plays for day: %w", err)
	}
	if len(plays) >= MaxAttemptsPerDay {
		metrics.GameRejectionsTotal.WithLabelValues(reasonAttemptsExhausted).Inc()
		return nil, ErrAttemptsExhausted
	}
	if len(plays) == 1 && plays[0].Won {
		metrics.GameRejectionsTotal.WithLabelValues(reasonAlreadyWon).Inc()
		return nil, ErrAlreadyWon
	}
	attempt := len(plays) + 1

	wins, err := s.repo.CountWinsForDay(ctx, day)
	if err != nil {
		return nil, fmt.Errorf("count wins for day: %w", err)
	}
	prizesAvailable := wins < s.cfg.DailyPrizeCap
	won := prizesAvailable && s.rand.Float64() < s.cfg.WinProbability

	play := repository.NewPlay{
		UserID:   userID,
		PlayedAt: now,
		PlayDay:  day,
		Attempt:  attempt,
	}

	if won {
		prize, err := s.pickPrize(ctx)
		if err != nil {
			return nil, err
		}
		if prize == nil {
			s.log.Debug("Winning draw downgraded, no prize in stock", "user_id", userID, "day", day)
			metrics.GamePrizesDowngradedTotal.WithLabelValues(downgradeNoPrize).Inc()
		} else {
			voucher, err := s.newVoucherCode()
			if err != nil {
				return nil, err
			}
			play.PrizeID = &prize.ID
			play.PrizeName = prize.Name
			play.VoucherCode = voucher
		}
	}

	recorded, err := s.repo.RecordPlay(ctx, play, s.cfg.DailyPrizeCap)
	if err != nil {
		if stderrors.Is(err, repository.ErrAttemptConflict) {
			metrics.GameRejectionsTotal.WithLabelValues(reasonPlayInProgress).Inc()
			s.log.Warn("Concurrent play rejected", "user_id", userID, "day", day, "attempt", attempt)
			return nil, ErrPlayInProgress
		}
		return nil, fmt.Errorf("record play: %w", err)
	}

	if recorded.Downgrade != "" {
		s.log.Debug("Winning draw downgraded at commit", "user_id", userID, "reason", recorded.Downgrade)
		metrics.GamePrizesDowngradedTotal.WithLabelValues(recorded.Downgrade).Inc()
	}

	result := &PlayResult{
		Won:          recorded.Won,
		Prize:        recorded.Prize,
		VoucherCode:  recorded.VoucherCode,
		Attempt:      recorded.Attempt,
		CanPlayAgain: !recorded.Won && recorded.Attempt == 1,
	}
	switch {
	case result.Won:
		result.Message = fmt.Sprintf(messageWin, *recorded.Prize)
		metrics.GamePlaysTotal.WithLabelValues(metrics.OutcomeWin).Inc()
		s.log.Info("Prize won", "user_id", userID, "prize", *recorded.Prize, "attempt", recorded.Attempt)
		s.announce(recorded)
	case result.CanPlayAgain:
		result.Message = messageLossRetry
		metrics.GamePlaysTotal.WithLabelValues(metrics.OutcomeLoss).Inc()
	default:
		result.Message = messageLossFinal
		metrics.GamePlaysTotal.WithLabelValues(metrics.OutcomeLoss).Inc()
	}
	return result, nil
}

// pickPrize selects uniformly among prizes that can still be handed out.
// It returns nil when none are left.
func (s *GameService) pickPrize(ctx context.Context) (*models.Prize, error) {
	prizes, err := s.repo.ListActivePrizes(ctx)
	if err != nil {
		return nil, fmt.Errorf("list active prizes: %w", err)
	}
	available := make([]models.Prize, 0, len(prizes))
	for _, p := range prizes {
		if p.Available() {
			available = append(available, p)
		}
	}
	if len(available) == 0 {
		return nil, nil
	}
	return &available[s.rand.IntN(len(available))], nil
}

// newVoucherCode returns the prefix followed by 8 uppercase hex characters
func (s *GameService) newVoucherCode() (string, error) {
	b := make([]byte, 4)
	if _, err := io.ReadFull(s.randReader, b); err != nil {
		return "", fmt.Errorf("generate voucher code: %w", err)
	}
	return s.cfg.VoucherPrefix + "-" + strings.ToUpper(hex.EncodeToString(b)), nil
}

func (s *GameService) announce(play *repository.RecordedPlay) {
	if s.publisher == nil {
		return
	}
	s.publisher.Publish(models.WinEvent{
		ID:      uuid.NewString(),
		Message: fmt.Sprintf(messageLiveWin, *play.Prize),
		Prize:   *play.Prize,
		WonAt:   play.PlayedAt.UTC().Format(time.RFC3339),
	})
}

// ListRewards returns the user's won plays, newest first
func (s *GameService) ListRewards(ctx context.Context, userID int64) ([]models.Reward, error) {
	rewards, err := s.repo.ListRewards(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list rewards: %w", err)
	}
	return rewards, nil
}

// RewardQRCode renders the voucher of one of the user's own wins as a PNG
func (s *GameService) RewardQRCode(ctx context.Context, userID, playID int64) ([]byte, error) {
	play, err := s.repo.GetPlay(ctx, playID)
	if err != nil {
		if stderrors.Is(err, repository.ErrNotFound) {
			return nil, errors.NotFound("reward not found")
		}
		return nil, fmt.Errorf("get play: %w", err)
	}
	if play.UserID != userID || !play.Won || play.VoucherCode == nil {
		return nil, errors.NotFound("reward not found")
	}
	return qrcode.Encode(*play.VoucherCode, qrcode.Medium, 256)
}

// DailySummary reports today's activity across all users
func (s *GameService) DailySummary(ctx context.Context, now time.Time) (*DailySummary, error) {
	day := s.PlayDay(now)

	plays, err := s.repo.CountPlaysForDay(ctx, day)
	if err != nil {
		return nil, fmt.Errorf("count plays for day: %w", err)
	}
	wins, err := s.repo.CountWinsForDay(ctx, day)
	if err != nil {
		return nil, fmt.Errorf("count wins for day: %w", err)
	}
	prizes, err := s.repo.ListActivePrizes(ctx)
	if err != nil {
		return nil, fmt.Errorf("list active prizes: %w", err)
	}

	summary := &DailySummary{
		Day:                  day,
		Plays:                plays,
		Wins:                 wins,
		PrizesRemainingToday: s.remaining(wins),
	}
	for _, p := range prizes {
		summary.PrizeUnitsInStock += p.Remaining()
	}
	if vc, ok := s.publisher.(viewerCounter); ok {
		summary.LiveViewers = vc.Size()
	}
	return summary, nil
}
