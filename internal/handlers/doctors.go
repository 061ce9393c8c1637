package handlers

import (
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"medichain-server/internal/middleware"
	"medichain-server/internal/models"
	"medichain-server/internal/services"
	"medichain-server/internal/utils"
)

// DoctorHandler handles doctor-facing requests.
type DoctorHandler struct {
	DB       *gorm.DB
	Records  *services.RecordService
	Consents *services.ConsentService
	Requests *services.AccessRequestService
	Audit    services.AuditEventStore
}

// NewDoctorHandler creates a new DoctorHandler.
func NewDoctorHandler(db *gorm.DB, records *services.RecordService, consents *services.ConsentService, requests *services.AccessRequestService, audit services.AuditEventStore) *DoctorHandler {
	return &DoctorHandler{DB: db, Records: records, Consents: consents, Requests: requests, Audit: audit}
}

// ListPatients returns the patients the doctor currently holds effective
// consent for.
func (h *DoctorHandler) ListPatients(c *gin.Context) {
	doctorID, _ := middleware.GetUserIDFromContext(c)

	consents, err := h.Consents.ListEffectiveForDoctor(c.Request.Context(), doctorID)
	if err != nil {
		utils.DomainError(c, err)
		return
	}

	seen := make(map[string]bool)
	patientIDs := make([]string, 0, len(consents))
	for i := range consents {
		if !seen[consents[i].PatientID] {
			seen[consents[i].PatientID] = true
			patientIDs = append(patientIDs, consents[i].PatientID)
		}
	}

	patients := []models.UserSanitized{}
	if len(patientIDs) > 0 {
		var users []models.User
		if err := h.DB.Where("id IN ?", patientIDs).Find(&users).Error; err != nil {
			utils.InternalServerError(c, "Database error: "+err.Error())
			return
		}
		for i := range users {
			patients = append(patients, users[i].Sanitize())
		}
	}

	utils.Success(c, "Patients fetched successfully", patients)
}

// ListPatientRecords returns the records of one patient the doctor can read.
func (h *DoctorHandler) ListPatientRecords(c *gin.Context) {
	doctorID, _ := middleware.GetUserIDFromContext(c)

	records, err := h.Records.ListPatientRecordsForDoctor(c.Request.Context(), c.Param("patientDid"), doctorID)
	if err != nil {
		utils.DomainError(c, err)
		return
	}
	utils.Success(c, "Records fetched successfully", records)
}

// GetRecord returns a single record if the doctor holds effective consent.
func (h *DoctorHandler) GetRecord(c *gin.Context) {
	doctorID, _ := middleware.GetUserIDFromContext(c)

	record, err := h.Records.GetForDoctor(c.Request.Context(), c.Param("id"), doctorID)
	if err != nil {
		utils.DomainError(c, err)
		return
	}
	utils.Success(c, "Record fetched successfully", record)
}

// DownloadRecord streams a record payload to a consented doctor. The consent
// check runs at download time, not at listing time.
func (h *DoctorHandler) DownloadRecord(c *gin.Context) {
	doctorID, _ := middleware.GetUserIDFromContext(c)

	record, err := h.Records.GetForDoctor(c.Request.Context(), c.Param("id"), doctorID)
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

// CreateAccessRequestBody represents the request body for creating an
// access request.
type CreateAccessRequestBody struct {
	PatientDID   string `json:"patientDid" binding:"required,min=10"`
	Purpose      string `json:"purpose" binding:"required,min=10"`
	DurationDays int    `json:"durationDays" binding:"required,min=1,max=365"`
}

// CreateAccessRequest opens an access request to a patient.
func (h *DoctorHandler) CreateAccessRequest(c *gin.Context) {
	var req CreateAccessRequestBody
	if !utils.BindAndValidate(c, &req) {
		return
	}

	doctorID, _ := middleware.GetUserIDFromContext(c)

	request, err := h.Requests.Create(c.Request.Context(), doctorID, req.PatientDID, req.Purpose, req.DurationDays)
	if err != nil {
		utils.DomainError(c, err)
		return
	}

	utils.Created(c, "Access request sent successfully", request)
}

// ListAccessRequests returns the doctor's own access requests.
func (h *DoctorHandler) ListAccessRequests(c *gin.Context) {
	doctorID, _ := middleware.GetUserIDFromContext(c)

	requests, err := h.Requests.ListForDoctor(c.Request.Context(), doctorID)
	if err != nil {
		utils.DomainError(c, err)
		return
	}
	utils.Success(c, "Access requests fetched successfully", requests)
}

// UploadRecord uploads a record on behalf of a patient identified by DID.
func (h *DoctorHandler) UploadRecord(c *gin.Context) {
	doctorID, _ := middleware.GetUserIDFromContext(c)
	doctorDID, _ := middleware.GetUserDIDFromContext(c)

	patientDID := c.PostForm("patientDid")
	var patient models.User
	if err := h.DB.Where("did = ? AND role = ?", patientDID, models.RolePatient).First(&patient).Error; err != nil {
		utils.NotFound(c, "Patient not found")
		return
	}

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
		PatientID:   patient.ID,
		UploaderID:  doctorID,
		ActorDID:    doctorDID,
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

// ListConsents returns the doctor's currently effective consents.
func (h *DoctorHandler) ListConsents(c *gin.Context) {
	doctorID, _ := middleware.GetUserIDFromContext(c)

	consents, err := h.Consents.ListEffectiveForDoctor(c.Request.Context(), doctorID)
	if err != nil {
		utils.DomainError(c, err)
		return
	}
	utils.Success(c, "Consents fetched successfully", consents)
}

// ListAuditLogs returns anchored events involving the doctor.
func (h *DoctorHandler) ListAuditLogs(c *gin.Context) {
	did, _ := middleware.GetUserDIDFromContext(c)

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	events, err := h.Audit.ListByDID(c.Request.Context(), did, limit)
	if err != nil {
		utils.DomainError(c, err)
		return
	}
	utils.Success(c, "Audit logs fetched successfully", events)
}
