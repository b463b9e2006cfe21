package models

import "time"

// Roles carried in identity tokens
const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

// GamePlay is one scratch-card attempt. Rows are never updated after insert.
type GamePlay struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	PlayedAt    time.Time `json:"played_at"`
	PlayDay     string    `json:"play_day"` // YYYY-MM-DD in the game timezone
	Attempt     int       `json:"attempt"`
	Won         bool      `json:"won"`
	Prize       *string   `json:"prize"`
	VoucherCode *string   `json:"voucher_code"`
}

// Prize is a redeemable reward type with a finite allotment
type Prize struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Quantity    int       `json:"quantity"`
	Claimed     int       `json:"claimed"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Available reports whether the prize can still be handed out
func (p Prize) Available() bool {
	return p.Active && p.Claimed < p.Quantity
}

// Remaining returns how many units are left
func (p Prize) Remaining() int {
	if p.Claimed >= p.Quantity {
		return 0
	}
	return p.Quantity - p.Claimed
}

// WinEvent is pushed to live viewers when a prize is won. Not persisted.
type WinEvent struct {
	ID      string `json:"id"`
	Message string `json:"message"`
	Prize   string `json:"prize"`
	WonAt   string `json:"wonAt"`
}

// Reward is a won play as shown on the user's rewards page
type Reward struct {
	ID          int64     `json:"id"`
	Prize       string    `json:"prize"`
	VoucherCode string    `json:"voucherCode"`
	PlayedAt    time.Time `json:"playedAt"`
}

// Identity is the authenticated caller
type Identity struct {
	UserID int64  `json:"user_id"`
	Role   string `json:"role"`
	Email  string `json:"email"`
}

// WSMessage represents a WebSocket message
type WSMessage struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}
