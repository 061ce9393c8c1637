package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	mysqldrv "github.com/go-sql-driver/mysql"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"medichain-server/internal/config"
	"medichain-server/internal/services"
	"medichain-server/internal/utils"
)

func newAuthTestRouter(t *testing.T, h *AuthHandler) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/auth/register", h.Register)
	return router
}

func postRegister(t *testing.T, router *gin.Engine, body RegisterRequest) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/auth/register", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRegister_ExistingEmailIsBadRequest(t *testing.T) {
	db, mock, sqlDB := newMockGormDB(t)
	defer sqlDB.Close()

	ledgerStub := &stubLedgerClient{}
	minter := services.NewIdentityMinter(ledgerStub, 10, zap.NewNop())
	h := NewAuthHandler(db, &config.Config{}, minter, &stubAnchor{})

	mock.ExpectQuery("SELECT \\* FROM `users` WHERE email = \\?").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email"}).
			AddRow("user-1", "pat@example.com"))

	w := postRegister(t, newAuthTestRouter(t, h), RegisterRequest{
		Name:     "Pat Example",
		Email:    "pat@example.com",
		Password: "correct-horse",
		Role:     "PATIENT",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var body utils.ResponseData
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Contains(t, body.Error, "already exists")

	assert.Equal(t, int32(0), ledgerStub.CreateAccountCalls,
		"no identity should be minted for a duplicate email")
	assert.NoError(t, mock.ExpectationsWereMet())
}

// A registration that passes the email pre-check can still lose the race to a
// concurrent registration at the unique index. That surfaces as a duplicate
// email, not a server fault.
func TestRegister_DuplicateEmailLostRaceIsBadRequest(t *testing.T) {
	db, mock, sqlDB := newMockGormDB(t)
	defer sqlDB.Close()

	ledgerStub := &stubLedgerClient{}
	minter := services.NewIdentityMinter(ledgerStub, 10, zap.NewNop())
	h := NewAuthHandler(db, &config.Config{}, minter, &stubAnchor{})

	// Pre-check sees no user, then the insert hits the unique index.
	mock.ExpectQuery("SELECT \\* FROM `users` WHERE email = \\?").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email"}))
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `users`").
		WillReturnError(&mysqldrv.MySQLError{Number: 1062, Message: "Duplicate entry 'pat@example.com' for key 'users.email'"})
	mock.ExpectRollback()

	w := postRegister(t, newAuthTestRouter(t, h), RegisterRequest{
		Name:     "Pat Example",
		Email:    "pat@example.com",
		Password: "correct-horse",
		Role:     "PATIENT",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var body utils.ResponseData
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Contains(t, body.Error, "already exists")
	assert.NoError(t, mock.ExpectationsWereMet())
}
