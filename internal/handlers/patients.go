package handlers

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"medichain-server/internal/middleware"
	"medichain-server/internal/models"
	"medichain-server/internal/services"
	"medichain-server/internal/utils"
)

// PatientHandler handles patient-facing record, consent, and access-request
// requests.
type PatientHandler struct {
	Records  *services.RecordService
	Consents *services.ConsentService
	Requests *services.AccessRequestService
	Audit    services.AuditEventStore
}

// NewPatientHandler creates a new PatientHandler.
func NewPatientHandler(records *services.RecordService, consents *services.ConsentService, requests *services.AccessRequestService, audit services.AuditEventStore) *PatientHandler {
	return &PatientHandler{Records: records, Consents: consents, Requests: requests, Audit: audit}
}

// ListRecords returns the patient's own records.
func (h *PatientHandler) ListRecords(c *gin.Context) {
	patientID, _ := middleware.GetUserIDFromContext(c)

	records, err := h.Records.ListForPatient(c.Request.Context(), patientID)
	if err != nil {
		utils.DomainError(c, err)
		return
	}
	utils.Success(c, "Records fetched successfully", records)
}

// GetRecord returns one of the patient's own records.
func (h *PatientHandler) GetRecord(c *gin.Context) {
	patientID, _ := middleware.GetUserIDFromContext(c)

	record, err := h.Records.GetOwned(c.Request.Context(), c.Param("id"), patientID)
	if err != nil {
		utils.DomainError(c, err)
		return
	}
	utils.Success(c, "Record fetched successfully", record)
}

// UploadRecord uploads a medical record file for the patient.
func (h *PatientHandler) UploadRecord(c *gin.Context) {
	patientID, _ := middleware.GetUserIDFromContext(c)
	patientDID, _ := middleware.GetUserDIDFromContext(c)

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		utils.BadRequest(c, "Error retrieving file from form: "+err.Error())
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		utils.InternalServerError(c, "Error reading file content: "+err.Error())
		return
	}

	record, err := h.Records.Upload(c.Request.Context(), services.UploadInput{
		PatientID:   patientID,
		UploaderID:  patientID,
		ActorDID:    patientDID,
		Title:       c.PostForm("title"),
		Description: c.PostForm("description"),
		RecordType:  models.RecordType(c.PostForm("recordType")),
		Filename:    header.Filename,
		MimeType:    header.Header.Get("Content-Type"),
		Data:        data,
	})
	if err != nil {
		utils.DomainError(c, err)
		return
	}

	utils.Created(c, "Record uploaded successfully", record)
}

// DownloadRecord streams a record's payload back to its owner.
func (h *PatientHandler) DownloadRecord(c *gin.Context) {
	patientID, _ := middleware.GetUserIDFromContext(c)

	record, err := h.Records.GetOwned(c.Request.Context(), c.Param("id"), patientID)
	if err != nil {
		utils.DomainError(c, err)
		return
	}

	data, contentType, err := h.Records.Download(c.Request.Context(), record)
	if err != nil {
		utils.DomainError(c, err)
		return
	}

	c.Writer.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", record.Title))
	c.Data(http.StatusOK, contentType, data)
}

// DeleteRecord removes a record's metadata row.
func (h *PatientHandler) DeleteRecord(c *gin.Context) {
	patientID, _ := middleware.GetUserIDFromContext(c)
	patientDID, _ := middleware.GetUserDIDFromContext(c)

	if err := h.Records.Delete(c.Request.Context(), c.Param("id"), patientID, patientDID); err != nil {
		utils.DomainError(c, err)
		return
	}
	utils.Success(c, "Record deleted successfully", nil)
}

// GrantConsentRequest represents the request body for granting consent.
type GrantConsentRequest struct {
	DoctorID   string   `json:"doctorId" binding:"required,uuid"`
	RecordIDs  []string `json:"recordIds" binding:"required,min=1,dive,uuid"`
	Purpose    string   `json:"purpose" binding:"required,min=10"`
	ExpiryDate string   `json:"expiryDate" binding:"required"`
}

// GrantConsent grants a doctor consent on a set of the patient's records.
func (h *PatientHandler) GrantConsent(c *gin.Context) {
	var req GrantConsentRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	expiry, err := time.Parse(time.RFC3339, req.ExpiryDate)
	if err != nil {
		utils.BadRequest(c, "Invalid expiry date format. Please use ISO 8601 format (YYYY-MM-DDTHH:MM:SSZ)")
		return
	}

	patientID, _ := middleware.GetUserIDFromContext(c)

	consents, err := h.Consents.Grant(c.Request.Context(), patientID, req.DoctorID, req.RecordIDs, req.Purpose, expiry)
	if err != nil {
		utils.DomainError(c, err)
		return
	}

	utils.Created(c, "Access granted successfully", consents)
}

// ListConsents returns all consents granted by the patient.
func (h *PatientHandler) ListConsents(c *gin.Context) {
	patientID, _ := middleware.GetUserIDFromContext(c)

	consents, err := h.Consents.ListForPatient(c.Request.Context(), patientID)
	if err != nil {
		utils.DomainError(c, err)
		return
	}
	utils.Success(c, "Consents fetched successfully", consents)
}

// RevokeConsent deactivates a consent.
func (h *PatientHandler) RevokeConsent(c *gin.Context) {
	patientID, _ := middleware.GetUserIDFromContext(c)

	if err := h.Consents.Revoke(c.Request.Context(), c.Param("consentId"), patientID); err != nil {
		utils.DomainError(c, err)
		return
	}
	utils.Success(c, "Consent revoked successfully", nil)
}

// ListAccessRequests returns access requests addressed to the patient.
func (h *PatientHandler) ListAccessRequests(c *gin.Context) {
	patientID, _ := middleware.GetUserIDFromContext(c)

	requests, err := h.Requests.ListForPatient(c.Request.Context(), patientID)
	if err != nil {
		utils.DomainError(c, err)
		return
	}
	utils.Success(c, "Access requests fetched successfully", requests)
}

// RespondAccessRequest represents the request body for responding to an
// access request. RecordID names the record shared on approval.
type RespondAccessRequest struct {
	Approve  bool   `json:"approve"`
	RecordID string `json:"recordId"`
}

// RespondToAccessRequest approves or denies a pending access request.
func (h *PatientHandler) RespondToAccessRequest(c *gin.Context) {
	var req RespondAccessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	patientID, _ := middleware.GetUserIDFromContext(c)
	requestID := c.Param("requestId")

	if req.Approve {
		consent, err := h.Requests.Approve(c.Request.Context(), requestID, patientID, req.RecordID)
		if err != nil {
			utils.DomainError(c, err)
			return
		}
		utils.Created(c, "Access request approved", consent)
		return
	}

	if err := h.Requests.Deny(c.Request.Context(), requestID, patientID); err != nil {
		utils.DomainError(c, err)
		return
	}
	utils.Success(c, "Access request denied", nil)
}

// ListAuditLogs returns anchored events involving the patient.
func (h *PatientHandler) ListAuditLogs(c *gin.Context) {
	did, _ := middleware.GetUserDIDFromContext(c)

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	events, err := h.Audit.ListByDID(c.Request.Context(), did, limit)
	if err != nil {
		utils.DomainError(c, err)
		return
	}
	utils.Success(c, "Audit logs fetched successfully", events)
}
