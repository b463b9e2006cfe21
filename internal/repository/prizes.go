package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/abrezinsky/outletplay/internal/models"
)

const prizeColumns = `id, name, description, quantity, claimed, active, created_at, updated_at`

// ListActivePrizes returns prizes flagged active, whether or not units remain
func (r *Repository) ListActivePrizes(ctx context.Context) ([]models.Prize, error) {
	return r.queryPrizes(ctx, `SELECT `+prizeColumns+` FROM prizes WHERE active = 1 ORDER BY id`)
}

// ListPrizes returns every prize, active or not
func (r *Repository) ListPrizes(ctx context.Context) ([]models.Prize, error) {
	return r.queryPrizes(ctx, `SELECT `+prizeColumns+` FROM prizes ORDER BY id`)
}

func (r *Repository) queryPrizes(ctx context.Context, query string, args ...any) ([]models.Prize, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	prizes := []models.Prize{}
	for rows.Next() {
		prize, err := scanPrize(rows)
		if err != nil {
			return nil, err
		}
		prizes = append(prizes, *prize)
	}
	return prizes, rows.Err()
}

// GetPrize returns a prize by ID
func (r *Repository) GetPrize(ctx context.Context, id int64) (*models.Prize, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+prizeColumns+` FROM prizes WHERE id = ?`, id)
	prize, err := scanPrize(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return prize, err
}

// CreatePrize inserts a prize with nothing claimed yet
func (r *Repository) CreatePrize(ctx context.Context, name, description string, quantity int, active bool) (int64, error) {
	now := time.Now().UTC()
	result, err := r.db.ExecContext(ctx, `
		INSERT INTO prizes (name, description, quantity, claimed, active, created_at, updated_at)
		VALUES (?, ?, ?, 0, ?, ?, ?)
	`, name, description, quantity, active, now, now)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// UpdatePrize edits a prize. The claimed counter is owned by the game engine
// and is never written here; the quantity may not drop below it.
func (r *Repository) UpdatePrize(ctx context.Context, id int64, name, description string, quantity int, active bool) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE prizes SET name = ?, description = ?, quantity = ?, active = ?, updated_at = ?
		WHERE id = ? AND claimed <= ?
	`, name, description, quantity, active, time.Now().UTC(), id, quantity)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	var exists bool
	if err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM prizes WHERE id = ?)`, id).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return ErrNotFound
	}
	return ErrQuantityBelowClaimed
}

// CountPrizes returns the number of prize rows
func (r *Repository) CountPrizes(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM prizes`).Scan(&count)
	return count, err
}

func scanPrize(s scanner) (*models.Prize, error) {
	var prize models.Prize
	var createdAt, updatedAt sql.NullTime
	if err := s.Scan(&prize.ID, &prize.Name, &prize.Description, &prize.Quantity, &prize.Claimed,
		&prize.Active, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	prize.CreatedAt = createdAt.Time
	prize.UpdatedAt = updatedAt.Time
	return &prize, nil
}
