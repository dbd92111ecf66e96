// internal/workers/extraction/extract-disposal/handler_test.go
package extractdisposal

import (
	"context"
	"errors"
	"testing"
	"time"

	"ecoscan-workers/internal/common/config"
	apperrors "ecoscan-workers/internal/common/errors"
	"ecoscan-workers/internal/common/logger"
	"ecoscan-workers/internal/common/metrics"
	"ecoscan-workers/internal/models"
	"ecoscan-workers/internal/points"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const bottleReply = "Here is how to dispose of it:\n```json\n" +
	`{"item":"Plastic bottle","material":"PET","category":"Plastic","disposal_method":"Recycle","disposal_steps":["Rinse","Place in bin"],"recycling_available":true,"local_notes":"Take to Nairobi collection point"}` +
	"\n```"

// fakeLedger records calls and returns a canned state.
type fakeLedger struct {
	calls []string
	state *models.PointsState
	err   error
}

func (f *fakeLedger) AwardForDisposal(_ context.Context, userID string, rec *models.DisposalRecord) (*models.PointsState, error) {
	f.calls = append(f.calls, userID+":"+rec.Item)
	return f.state, f.err
}

func newTestHandler(t *testing.T, ledger Ledger) *Handler {
	cfg := LoadConfig(config.WorkerConfig{Timeout: 5000}, true)
	return NewHandler(cfg, ledger, nil, logger.NewTestLogger(t))
}

func strPtr(s string) *string { return &s }

func TestHandler_Execute_RecordWithoutUser(t *testing.T) {
	ledger := &fakeLedger{}
	h := newTestHandler(t, ledger)

	output, err := h.Execute(context.Background(), &Input{MessageText: strPtr(bottleReply)})
	require.NoError(t, err)

	assert.True(t, output.Found)
	require.NotNil(t, output.Record)
	assert.Equal(t, "Plastic bottle", output.Record.Item)
	assert.True(t, output.Record.RecyclingAvailable)
	assert.Equal(t, "Here is how to dispose of it:", output.DisplayText)
	assert.Nil(t, output.Points)
	assert.Empty(t, ledger.calls)
}

func TestHandler_Execute_AwardsPoints(t *testing.T) {
	ledger := &fakeLedger{state: &models.PointsState{Balance: 45, Awarded: 30, Transactions: []models.PointsTransaction{}}}
	h := newTestHandler(t, ledger)
	before := testutil.ToFloat64(metrics.PointsAwarded)

	output, err := h.Execute(context.Background(), &Input{MessageText: strPtr(bottleReply), UserID: "user-1"})
	require.NoError(t, err)

	assert.Equal(t, []string{"user-1:Plastic bottle"}, ledger.calls)
	require.NotNil(t, output.Points)
	assert.Equal(t, 45, output.Points.Balance)
	assert.Equal(t, before+30, testutil.ToFloat64(metrics.PointsAwarded))
}

func TestHandler_Execute_NoRecordNoAward(t *testing.T) {
	ledger := &fakeLedger{}
	h := newTestHandler(t, ledger)

	output, err := h.Execute(context.Background(), &Input{MessageText: strPtr("Scanning your item..."), UserID: "user-1"})
	require.NoError(t, err)

	assert.False(t, output.Found)
	assert.Nil(t, output.Record)
	assert.Equal(t, "Scanning your item...", output.DisplayText)
	assert.Empty(t, ledger.calls)
}

func TestHandler_Execute_AwardingDisabled(t *testing.T) {
	ledger := &fakeLedger{}
	h := NewHandler(LoadConfig(config.WorkerConfig{}, false), ledger, nil, logger.NewTestLogger(t))

	output, err := h.Execute(context.Background(), &Input{MessageText: strPtr(bottleReply), UserID: "user-1"})
	require.NoError(t, err)
	assert.True(t, output.Found)
	assert.Empty(t, ledger.calls)
}

func TestHandler_Execute_NilLedger(t *testing.T) {
	h := newTestHandler(t, nil)

	output, err := h.Execute(context.Background(), &Input{MessageText: strPtr(bottleReply), UserID: "user-1"})
	require.NoError(t, err)
	assert.True(t, output.Found)
	assert.Nil(t, output.Points)
}

func TestHandler_Execute_LedgerFailure(t *testing.T) {
	h := newTestHandler(t, &fakeLedger{err: errors.New("connection reset")})
	input := &Input{MessageText: strPtr(bottleReply), UserID: "user-1"}

	output, err := h.Execute(context.Background(), input)
	assert.Nil(t, output)
	assert.ErrorIs(t, err, ErrPointsLedgerFailed)

	var stdErr *apperrors.StandardError
	require.ErrorAs(t, h.toStandardError(input, err), &stdErr)
	assert.Equal(t, apperrors.ErrCodePointsLedgerFailed, stdErr.Code)
	assert.True(t, stdErr.Retryable)
	assert.Equal(t, "user-1", stdErr.Metadata["userId"])
}

func TestHandler_Execute_MissingMessageText(t *testing.T) {
	h := newTestHandler(t, &fakeLedger{})
	input := &Input{UserID: "user-1"}

	_, err := h.Execute(context.Background(), input)
	assert.ErrorIs(t, err, ErrMessageTextRequired)

	var stdErr *apperrors.StandardError
	require.ErrorAs(t, h.toStandardError(input, err), &stdErr)
	assert.Equal(t, apperrors.ErrCodeExtractionInputInvalid, stdErr.Code)
}

func TestHandler_Execute_WithPostgresLedger(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now().UTC()
	mock.ExpectBegin()
	mock.ExpectExec(`SELECT pg_advisory_xact_lock`).
		WithArgs("user-9").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT created_at FROM points_transactions`).
		WithArgs("user-9").
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(now))
	mock.ExpectExec(`INSERT INTO points_transactions`).
		WithArgs(sqlmock.AnyArg(), "user-9", points.ScanItem, "Scanned Plastic bottle", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(`INSERT INTO points_transactions`).
		WithArgs(sqlmock.AnyArg(), "user-9", points.ScanRecyclable, "Recyclable item bonus", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()
	mock.ExpectQuery(`SELECT COALESCE\(SUM\(amount\), 0\)`).
		WithArgs("user-9").
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(115))
	mock.ExpectQuery(`SELECT id, user_id, amount, reason, created_at`).
		WithArgs("user-9", points.HistoryLimit).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "amount", "reason", "created_at"}))

	h := newTestHandler(t, points.NewLedger(db))
	output, err := h.Execute(context.Background(), &Input{MessageText: strPtr(bottleReply), UserID: "user-9"})
	require.NoError(t, err)

	require.NotNil(t, output.Points)
	assert.Equal(t, 115, output.Points.Balance)
	assert.Equal(t, points.ScanItem+points.ScanRecyclable, output.Points.Awarded)
	assert.NoError(t, mock.ExpectationsWereMet())
}
