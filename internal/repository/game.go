package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/abrezinsky/outletplay/internal/models"
)

// Reasons a winning draw was recorded as a loss
const (
	DowngradeDailyCap       = "daily_cap"
	DowngradePrizeExhausted = "prize_exhausted"
)

// NewPlay is the outcome the game engine wants to record. A nil PrizeID
// records a loss.
type NewPlay struct {
	UserID      int64
	PlayedAt    time.Time
	PlayDay     string
	Attempt     int
	PrizeID     *int64
	PrizeName   string
	VoucherCode string
}

// RecordedPlay is the row as committed, plus the reason a requested win was
// turned into a loss (empty when it was not)
type RecordedPlay struct {
	models.GamePlay
	Downgrade string
}

const playColumns = `id, user_id, played_at, play_day, attempt, won, prize, voucher_code`

// ListPlaysForDay returns a user's plays for one calendar day, oldest first
func (r *Repository) ListPlaysForDay(ctx context.Context, userID int64, day string) ([]models.GamePlay, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+playColumns+`
		FROM game_plays
		WHERE user_id = ? AND play_day = ?
		ORDER BY played_at ASC, id ASC
	`, userID, day)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var plays []models.GamePlay
	for rows.Next() {
		play, err := scanPlay(rows)
		if err != nil {
			return nil, err
		}
		plays = append(plays, *play)
	}
	return plays, rows.Err()
}

// CountWinsForDay counts winning plays across all users for one day
func (r *Repository) CountWinsForDay(ctx context.Context, day string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM game_plays WHERE play_day = ? AND won = 1`, day).Scan(&count)
	return count, err
}

// CountPlaysForDay counts all plays across all users for one day
func (r *Repository) CountPlaysForDay(ctx context.Context, day string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM game_plays WHERE play_day = ?`, day).Scan(&count)
	return count, err
}

// RecordPlay persists one attempt in a single transaction. It re-checks the
// user's plays for the day, enforces the global daily cap and claims the prize
// with a conditional update, so a win is only committed together with its
// claim. A winning request that loses either race is stored as a loss.
func (r *Repository) RecordPlay(ctx context.Context, play NewPlay, dailyCap int) (*RecordedPlay, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin play transaction: %w", err)
	}
	defer tx.Rollback()

	var existing, existingWins int
	err = tx.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(won), 0)
		FROM game_plays
		WHERE user_id = ? AND play_day = ?
	`, play.UserID, play.PlayDay).Scan(&existing, &existingWins)
	if err != nil {
		return nil, fmt.Errorf("check plays for day: %w", err)
	}
	if existing != play.Attempt-1 || existingWins > 0 {
		return nil, ErrAttemptConflict
	}

	result := &RecordedPlay{GamePlay: models.GamePlay{
		UserID:   play.UserID,
		PlayedAt: play.PlayedAt.UTC(),
		PlayDay:  play.PlayDay,
		Attempt:  play.Attempt,
	}}

	won := play.PrizeID != nil
	if won {
		var dayWins int
		err = tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM game_plays WHERE play_day = ? AND won = 1`, play.PlayDay).Scan(&dayWins)
		if err != nil {
			return nil, fmt.Errorf("count wins for day: %w", err)
		}
		if dayWins >= dailyCap {
			won = false
			result.Downgrade = DowngradeDailyCap
		}
	}

	if won {
		res, err := tx.ExecContext(ctx, `
			UPDATE prizes SET claimed = claimed + 1, updated_at = ?
			WHERE id = ? AND active = 1 AND claimed < quantity
		`, result.PlayedAt, *play.PrizeID)
		if err != nil {
			return nil, fmt.Errorf("claim prize: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return nil, fmt.Errorf("claim prize: %w", err)
		}
		if n == 0 {
			won = false
			result.Downgrade = DowngradePrizeExhausted
		}
	}

	var prize, voucher sql.NullString
	if won {
		prize = sql.NullString{String: play.PrizeName, Valid: true}
		voucher = sql.NullString{String: play.VoucherCode, Valid: true}
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO game_plays (user_id, played_at, play_day, attempt, won, prize, voucher_code)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, play.UserID, result.PlayedAt, play.PlayDay, play.Attempt, won, prize, voucher)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrAttemptConflict
		}
		return nil, fmt.Errorf("insert play: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("insert play: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit play: %w", err)
	}

	result.ID = id
	result.Won = won
	if won {
		result.Prize = &prize.String
		result.VoucherCode = &voucher.String
	}
	return result, nil
}

// ListRewards returns a user's winning plays, newest first
func (r *Repository) ListRewards(ctx context.Context, userID int64) ([]models.Reward, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, prize, voucher_code, played_at
		FROM game_plays
		WHERE user_id = ? AND won = 1
		ORDER BY played_at DESC, id DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	rewards := []models.Reward{}
	for rows.Next() {
		var reward models.Reward
		var prize, voucher sql.NullString
		if err := rows.Scan(&reward.ID, &prize, &voucher, &reward.PlayedAt); err != nil {
			return nil, err
		}
		reward.Prize = prize.String
		reward.VoucherCode = voucher.String
		rewards = append(rewards, reward)
	}
	return rewards, rows.Err()
}

// GetPlay returns a single play by ID
func (r *Repository) GetPlay(ctx context.Context, id int64) (*models.GamePlay, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+playColumns+` FROM game_plays WHERE id = ?`, id)
	play, err := scanPlay(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return play, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPlay(s scanner) (*models.GamePlay, error) {
	var play models.GamePlay
	var prize, voucher sql.NullString
	if err := s.Scan(&play.ID, &play.UserID, &play.PlayedAt, &play.PlayDay, &play.Attempt,
		&play.Won, &prize, &voucher); err != nil {
		return nil, err
	}
	if prize.Valid {
		p := prize.String
		play.Prize = &p
	}
	if voucher.Valid {
		v := voucher.String
		play.VoucherCode = &v
	}
	return &play, nil
}
