// internal/points/ledger.go
package points

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"ecoscan-workers/internal/models"

	"github.com/google/uuid"
)

// Award values for one scan.
const (
	ScanItem       = 10
	ScanRecyclable = 5
	DailyFirstScan = 15
)

const (
	// HistoryLimit is how many transactions State returns.
	HistoryLimit = 50
	// DefaultRecent is the count Recent uses when none is given.
	DefaultRecent = 5
)

var ErrLedgerFailed = errors.New("POINTS_LEDGER_FAILED")

// Ledger stores points transactions in the points_transactions table.
type Ledger struct {
	db  *sql.DB
	now func() time.Time
}

func NewLedger(db *sql.DB) *Ledger {
	return &Ledger{db: db, now: time.Now}
}

// AwardForDisposal books the points for one scanned item and returns the
// user's updated state. Every scan earns ScanItem, recyclable items add
// ScanRecyclable, and the first scan of the UTC day adds DailyFirstScan.
func (l *Ledger) AwardForDisposal(ctx context.Context, userID string, rec *models.DisposalRecord) (*models.PointsState, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: userId is required", ErrLedgerFailed)
	}
	if rec == nil {
		return nil, fmt.Errorf("%w: no disposal record", ErrLedgerFailed)
	}

	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: begin: %v", ErrLedgerFailed, err)
	}
	defer tx.Rollback()

	// Scans of one user are serialized until commit so only one of them can
	// see the day's first scan.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, userID); err != nil {
		return nil, fmt.Errorf("%w: lock: %v", ErrLedgerFailed, err)
	}

	now := l.now().UTC()

	first, err := firstScanOfDay(ctx, tx, userID, now)
	if err != nil {
		return nil, err
	}

	awards := []award{{ScanItem, fmt.Sprintf("Scanned %s", rec.Item)}}
	if rec.RecyclingAvailable {
		awards = append(awards, award{ScanRecyclable, "Recyclable item bonus"})
	}
	if first {
		awards = append(awards, award{DailyFirstScan, "First scan of the day"})
	}

	for i, a := range awards {
		// Later awards sort as newer.
		at := now.Add(time.Duration(i) * time.Microsecond)
		_, err := tx.ExecContext(ctx, `
			INSERT INTO points_transactions (id, user_id, amount, reason, created_at)
			VALUES ($1, $2, $3, $4, $5)`,
			uuid.New().String(), userID, a.amount, a.reason, at,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: insert: %v", ErrLedgerFailed, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%w: commit: %v", ErrLedgerFailed, err)
	}

	state, err := l.State(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, a := range awards {
		state.Awarded += a.amount
	}
	return state, nil
}

type award struct {
	amount int
	reason string
}

func firstScanOfDay(ctx context.Context, tx *sql.Tx, userID string, now time.Time) (bool, error) {
	var last time.Time
	err := tx.QueryRowContext(ctx, `
		SELECT created_at FROM points_transactions
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT 1`, userID).Scan(&last)
	if errors.Is(err, sql.ErrNoRows) {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w: last scan lookup: %v", ErrLedgerFailed, err)
	}

	ly, lm, ld := last.UTC().Date()
	ny, nm, nd := now.Date()
	return ly != ny || lm != nm || ld != nd, nil
}

// State returns the balance and the latest HistoryLimit transactions.
func (l *Ledger) State(ctx context.Context, userID string) (*models.PointsState, error) {
	var balance int
	err := l.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(amount), 0) FROM points_transactions
		WHERE user_id = $1`, userID).Scan(&balance)
	if err != nil {
		return nil, fmt.Errorf("%w: balance: %v", ErrLedgerFailed, err)
	}

	txs, err := l.Recent(ctx, userID, HistoryLimit)
	if err != nil {
		return nil, err
	}

	return &models.PointsState{Balance: balance, Transactions: txs}, nil
}

// Recent returns up to n of the newest transactions, newest first. n <= 0
// means DefaultRecent; n is capped at HistoryLimit.
func (l *Ledger) Recent(ctx context.Context, userID string, n int) ([]models.PointsTransaction, error) {
	if n <= 0 {
		n = DefaultRecent
	}
	if n > HistoryLimit {
		n = HistoryLimit
	}

	rows, err := l.db.QueryContext(ctx, `
		SELECT id, user_id, amount, reason, created_at FROM points_transactions
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2`, userID, n)
	if err != nil {
		return nil, fmt.Errorf("%w: history: %v", ErrLedgerFailed, err)
	}
	defer rows.Close()

	txs := make([]models.PointsTransaction, 0, n)
	for rows.Next() {
		var t models.PointsTransaction
		if err := rows.Scan(&t.ID, &t.UserID, &t.Amount, &t.Reason, &t.Timestamp); err != nil {
			return nil, fmt.Errorf("%w: scan: %v", ErrLedgerFailed, err)
		}
		txs = append(txs, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: history: %v", ErrLedgerFailed, err)
	}
	return txs, nil
}
