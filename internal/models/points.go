// internal/models/points.go
package models

import "time"

// PointsTransaction is one entry of a user's append-only points ledger.
type PointsTransaction struct {
	ID        string    `json:"id" db:"id"`
	UserID    string    `json:"userId" db:"user_id"`
	Amount    int       `json:"amount" db:"amount"`
	Reason    string    `json:"reason" db:"reason"`
	Timestamp time.Time `json:"timestamp" db:"created_at"`
}

type PointsState struct {
	Balance      int                 `json:"balance"`
	Awarded      int                 `json:"awarded,omitempty"` // set by the scan that produced this state
	Transactions []PointsTransaction `json:"transactions"`
}
