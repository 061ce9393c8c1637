package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"medichain-server/internal/domain"
	"medichain-server/internal/services"
	"medichain-server/internal/utils"
)

func newAdminTestRouter(t *testing.T, h *AdminHandler) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("userID", "admin-1")
		c.Set("userRole", "ADMIN")
		c.Set("userDID", "did:hedera:testnet:0.0.42")
	})
	router.POST("/admin/doctors/:doctorId/verify", h.VerifyDoctor)
	return router
}

func expectDoctorProfileLookup(mock sqlmock.Sqlmock, verified bool, userDID string) {
	mock.ExpectQuery("SELECT \\* FROM `doctor_profiles` WHERE id = \\?").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "is_verified"}).
			AddRow("doc-prof-1", "user-9", verified))
	mock.ExpectQuery("SELECT \\* FROM `users` WHERE `users`.`id` = \\?").
		WillReturnRows(sqlmock.NewRows([]string{"id", "did"}).
			AddRow("user-9", userDID))
}

// The verification update commits before identity minting, so a ledger outage
// must not be reported as a failed verification.
func TestVerifyDoctor_MintFailureStillReportsVerified(t *testing.T) {
	db, mock, sqlDB := newMockGormDB(t)
	defer sqlDB.Close()

	ledgerStub := &stubLedgerClient{
		CreateAccountErr: domain.LedgerUnavailable("bridge unreachable", nil),
	}
	minter := services.NewIdentityMinter(ledgerStub, 10, zap.NewNop())
	anchor := &stubAnchor{}
	h := NewAdminHandler(db, minter, anchor)

	expectDoctorProfileLookup(mock, false, "")
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `doctor_profiles`").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	req := httptest.NewRequest(http.MethodPost, "/admin/doctors/doc-prof-1/verify", nil)
	w := httptest.NewRecorder()
	newAdminTestRouter(t, h).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var body utils.ResponseData
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Contains(t, body.Message, "verified")

	data, ok := body.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Contains(t, data["warning"], "could not be minted")

	// No identity row is written when minting fails, so the only statements
	// seen by the database are the lookup and the verification update.
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVerifyDoctor_AlreadyVerifiedIsConflict(t *testing.T) {
	db, mock, sqlDB := newMockGormDB(t)
	defer sqlDB.Close()

	ledgerStub := &stubLedgerClient{}
	minter := services.NewIdentityMinter(ledgerStub, 10, zap.NewNop())
	h := NewAdminHandler(db, minter, &stubAnchor{})

	expectDoctorProfileLookup(mock, true, "did:hedera:testnet:0.0.7001")

	req := httptest.NewRequest(http.MethodPost, "/admin/doctors/doc-prof-1/verify", nil)
	w := httptest.NewRecorder()
	newAdminTestRouter(t, h).ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, int32(0), ledgerStub.CreateAccountCalls)
	assert.NoError(t, mock.ExpectationsWereMet())
}
