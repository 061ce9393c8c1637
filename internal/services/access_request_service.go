package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"medichain-server/internal/domain"
	"medichain-server/internal/models"
	"medichain-server/internal/notify"
)

const (
	minDurationDays = 1
	maxDurationDays = 365
)

// AccessRequestService owns the doctor-initiated consent workflow. A request
// starts PENDING and transitions exactly once to APPROVED or DENIED via
// patient action; approval creates a consent carrying the request's purpose
// and expiry verbatim.
type AccessRequestService struct {
	users    UserStore
	records  RecordStore
	requests AccessRequestStore
	anchor   Anchor
	mailer   notify.Mailer
	appURL   string
	clock    Clock
	logger   *zap.Logger
}

// NewAccessRequestService creates an AccessRequestService.
func NewAccessRequestService(users UserStore, records RecordStore, requests AccessRequestStore, anchor Anchor, mailer notify.Mailer, appURL string, clock Clock, log *zap.Logger) *AccessRequestService {
	if clock == nil {
		clock = time.Now
	}
	return &AccessRequestService{
		users:    users,
		records:  records,
		requests: requests,
		anchor:   anchor,
		mailer:   mailer,
		appURL:   appURL,
		clock:    clock,
		logger:   log,
	}
}

// Create opens a PENDING access request from a doctor to the patient
// identified by DID. The duration bound is enforced here, not only at the
// HTTP validation layer, and the expiry is computed once from the current
// time and never recomputed.
func (s *AccessRequestService) Create(ctx context.Context, doctorID, patientDID, purpose string, durationDays int) (*models.AccessRequest, error) {
	if durationDays < minDurationDays || durationDays > maxDurationDays {
		return nil, domain.Validationf("duration must be between %d and %d days", minDurationDays, maxDurationDays)
	}
	if purpose == "" {
		return nil, domain.Validationf("purpose is required")
	}

	patient, err := s.users.FindByDID(ctx, patientDID)
	if err != nil {
		return nil, err
	}
	if patient.Role != models.RolePatient {
		return nil, domain.NotFoundf("patient not found")
	}

	doctor, err := s.users.FindByID(ctx, doctorID)
	if err != nil {
		return nil, err
	}

	request := &models.AccessRequest{
		PatientID:    patient.ID,
		DoctorID:     doctorID,
		Purpose:      purpose,
		DurationDays: durationDays,
		Status:       models.AccessRequestPending,
		ExpiresAt:    s.clock().Add(time.Duration(durationDays) * 24 * time.Hour),
	}
	if err := s.requests.Create(ctx, request); err != nil {
		return nil, err
	}

	// Informational: the request row is already committed.
	s.anchor.AnchorBestEffort(ctx, s.anchor.AuditTopic(), Event{
		Name:       "access_requested",
		ActorDID:   doctor.DID,
		SubjectDID: patient.DID,
		RequestID:  request.ID,
		Purpose:    purpose,
	})

	s.notifyRequested(patient, doctor, purpose)

	s.logger.Info("Access request created",
		zap.String("request_id", request.ID),
		zap.String("doctor_id", doctorID),
		zap.String("patient_id", patient.ID),
	)
	return request, nil
}

// Approve transitions a PENDING request to APPROVED and creates exactly one
// consent on the named record, copying purpose and expiry verbatim from the
// request. The consent is anchored before anything is persisted; the status
// transition and the consent insert share one transaction. Responding to a
// non-PENDING request is a conflict.
func (s *AccessRequestService) Approve(ctx context.Context, requestID, patientID, recordID string) (*models.Consent, error) {
	request, err := s.requests.FindByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if request.PatientID != patientID {
		return nil, domain.NotFoundf("access request not found")
	}
	if request.Status != models.AccessRequestPending {
		return nil, domain.Conflictf("access request already responded to")
	}
	if recordID == "" {
		return nil, domain.Validationf("record id is required to approve")
	}

	owned, err := s.records.ListOwned(ctx, patientID, []string{recordID})
	if err != nil {
		return nil, err
	}
	if len(owned) != 1 {
		return nil, domain.NotFoundf("record not found for this patient")
	}

	patient, err := s.users.FindByID(ctx, patientID)
	if err != nil {
		return nil, err
	}
	doctor, err := s.users.FindByID(ctx, request.DoctorID)
	if err != nil {
		return nil, err
	}

	receipt, err := s.anchor.Anchor(ctx, s.anchor.AuditTopic(), Event{
		Name:       "consent_granted",
		ActorDID:   patient.DID,
		SubjectDID: doctor.DID,
		RecordID:   recordID,
		RequestID:  request.ID,
		Purpose:    request.Purpose,
	})
	if err != nil {
		return nil, err
	}

	consent := &models.Consent{
		RecordID:        recordID,
		PatientID:       patientID,
		DoctorID:        request.DoctorID,
		Purpose:         request.Purpose,
		ExpiryDate:      request.ExpiresAt,
		IsActive:        true,
		AnchorSequence:  receipt.SequenceNumber,
		AnchorTimestamp: receipt.ConsensusTimestamp,
	}

	transitioned, err := s.requests.Transition(ctx, requestID, models.AccessRequestApproved, consent)
	if err != nil {
		return nil, err
	}
	if !transitioned {
		return nil, domain.Conflictf("access request already responded to")
	}

	s.anchor.AnchorBestEffort(ctx, s.anchor.AuditTopic(), Event{
		Name:       "access_approved",
		ActorDID:   patient.DID,
		SubjectDID: doctor.DID,
		RequestID:  request.ID,
		ConsentID:  consent.ID,
	})

	s.notifyGranted(doctor, patient)

	s.logger.Info("Access request approved",
		zap.String("request_id", requestID),
		zap.String("consent_id", consent.ID),
	)
	return consent, nil
}

// Deny transitions a PENDING request to DENIED. No consent is created.
func (s *AccessRequestService) Deny(ctx context.Context, requestID, patientID string) error {
	request, err := s.requests.FindByID(ctx, requestID)
	if err != nil {
		return err
	}
	if request.PatientID != patientID {
		return domain.NotFoundf("access request not found")
	}
	if request.Status != models.AccessRequestPending {
		return domain.Conflictf("access request already responded to")
	}

	transitioned, err := s.requests.Transition(ctx, requestID, models.AccessRequestDenied, nil)
	if err != nil {
		return err
	}
	if !transitioned {
		return domain.Conflictf("access request already responded to")
	}

	actorDID := ""
	if patient, err := s.users.FindByID(ctx, patientID); err == nil {
		actorDID = patient.DID
	}
	subjectDID := ""
	if doctor, err := s.users.FindByID(ctx, request.DoctorID); err == nil {
		subjectDID = doctor.DID
	}
	s.anchor.AnchorBestEffort(ctx, s.anchor.AuditTopic(), Event{
		Name:       "access_denied",
		ActorDID:   actorDID,
		SubjectDID: subjectDID,
		RequestID:  request.ID,
	})

	s.logger.Info("Access request denied", zap.String("request_id", requestID))
	return nil
}

// ListForPatient returns access requests addressed to a patient.
func (s *AccessRequestService) ListForPatient(ctx context.Context, patientID string) ([]models.AccessRequest, error) {
	return s.requests.ListByPatient(ctx, patientID)
}

// ListForDoctor returns access requests created by a doctor.
func (s *AccessRequestService) ListForDoctor(ctx context.Context, doctorID string) ([]models.AccessRequest, error) {
	return s.requests.ListByDoctor(ctx, doctorID)
}

func (s *AccessRequestService) notifyRequested(patient, doctor *models.User, purpose string) {
	if s.mailer == nil {
		return
	}
	subject, html := notify.AccessRequestEmail(doctor.Name, purpose, s.appURL)
	go func() {
		if err := s.mailer.Send(patient.Email, subject, html); err != nil {
			s.logger.Warn("Failed to send access request notification",
				zap.String("patient_id", patient.ID),
				zap.Error(err),
			)
		}
	}()
}

func (s *AccessRequestService) notifyGranted(doctor, patient *models.User) {
	if s.mailer == nil {
		return
	}
	subject, html := notify.AccessGrantedEmail(patient.Name, s.appURL)
	go func() {
		if err := s.mailer.Send(doctor.Email, subject, html); err != nil {
			s.logger.Warn("Failed to send grant notification",
				zap.String("doctor_id", doctor.ID),
				zap.Error(err),
			)
		}
	}()
}
