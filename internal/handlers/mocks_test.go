package handlers

import (
	"context"
	"database/sql"
	"sync/atomic"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/gorm"

	"medichain-server/internal/ledger"
	"medichain-server/internal/services"
)

// newMockGormDB opens a gorm session over a sqlmock connection with the same
// error translation the live connection uses.
func newMockGormDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	db, err := gorm.Open(gormmysql.New(gormmysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	return db, mock, sqlDB
}

type stubLedgerClient struct {
	AccountID        string
	CreateAccountErr error

	CreateAccountCalls int32
}

var _ ledger.Client = (*stubLedgerClient)(nil)

func (s *stubLedgerClient) CreateTopic(ctx context.Context, memo string) (string, error) {
	return "0.0.2001", nil
}

func (s *stubLedgerClient) SubmitMessage(ctx context.Context, topicID string, message []byte) (ledger.Receipt, error) {
	return ledger.Receipt{SequenceNumber: 1}, nil
}

func (s *stubLedgerClient) CreateAccount(ctx context.Context, publicKey string, initialBalance int64) (string, error) {
	atomic.AddInt32(&s.CreateAccountCalls, 1)
	if s.CreateAccountErr != nil {
		return "", s.CreateAccountErr
	}
	if s.AccountID != "" {
		return s.AccountID, nil
	}
	return "0.0.9001", nil
}

func (s *stubLedgerClient) GetBalance(ctx context.Context, accountID string) (string, error) {
	return "100 hbar", nil
}

func (s *stubLedgerClient) Network() string { return "testnet" }

type stubAnchor struct {
	BestEffortEvents []services.Event
}

var _ services.Anchor = (*stubAnchor)(nil)

func (s *stubAnchor) Anchor(ctx context.Context, topicID string, event services.Event) (ledger.Receipt, error) {
	return ledger.Receipt{SequenceNumber: 1}, nil
}

func (s *stubAnchor) AnchorBestEffort(ctx context.Context, topicID string, event services.Event) {
	s.BestEffortEvents = append(s.BestEffortEvents, event)
}

func (s *stubAnchor) AuditTopic() string  { return "0.0.1001" }
func (s *stubAnchor) RecordTopic() string { return "0.0.1002" }
