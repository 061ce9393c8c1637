package handlers

import (
	"github.com/gin-gonic/gin"

	"medichain-server/internal/ledger"
	"medichain-server/internal/middleware"
	"medichain-server/internal/services"
	"medichain-server/internal/utils"
)

// LedgerHandler exposes ledger utility endpoints.
type LedgerHandler struct {
	Client ledger.Client
	Anchor services.Anchor
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(client ledger.Client, anchor services.Anchor) *LedgerHandler {
	return &LedgerHandler{Client: client, Anchor: anchor}
}

// NetworkInfo returns the configured ledger network and topics.
func (h *LedgerHandler) NetworkInfo(c *gin.Context) {
	utils.Success(c, "Network info fetched successfully", gin.H{
		"network":     h.Client.Network(),
		"auditTopic":  h.Anchor.AuditTopic(),
		"recordTopic": h.Anchor.RecordTopic(),
	})
}

// AccountBalance returns the balance of a ledger account.
func (h *LedgerHandler) AccountBalance(c *gin.Context) {
	accountID := c.Param("accountId")

	balance, err := h.Client.GetBalance(c.Request.Context(), accountID)
	if err != nil {
		utils.ServiceUnavailable(c, "Failed to fetch account balance: "+err.Error())
		return
	}

	utils.Success(c, "Balance fetched successfully", gin.H{
		"accountId": accountID,
		"balance":   balance,
	})
}

// SubmitAuditMessageRequest represents the request body for submitting an
// arbitrary audit message.
type SubmitAuditMessageRequest struct {
	TopicID string `json:"topicId"`
	Message string `json:"message" binding:"required"`
}

// SubmitAuditMessage anchors an operator-supplied audit message. Admin-only.
func (h *LedgerHandler) SubmitAuditMessage(c *gin.Context) {
	var req SubmitAuditMessageRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	did, _ := middleware.GetUserDIDFromContext(c)

	topicID := req.TopicID
	if topicID == "" {
		topicID = h.Anchor.AuditTopic()
	}

	receipt, err := h.Anchor.Anchor(c.Request.Context(), topicID, services.Event{
		Name:     "admin_audit_message",
		ActorDID: did,
		Purpose:  req.Message,
	})
	if err != nil {
		utils.DomainError(c, err)
		return
	}

	utils.Success(c, "Audit message submitted successfully", gin.H{
		"sequenceNumber":     receipt.SequenceNumber,
		"consensusTimestamp": receipt.ConsensusTimestamp,
	})
}
