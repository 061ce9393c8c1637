package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"medichain-server/internal/domain"
	"medichain-server/internal/models"
	"medichain-server/internal/notify"
)

// ConsentService owns the consent lifecycle: granting, revoking, and the
// effectiveness checks every doctor read path goes through.
type ConsentService struct {
	users    UserStore
	records  RecordStore
	consents ConsentStore
	anchor   Anchor
	mailer   notify.Mailer
	appURL   string
	clock    Clock
	logger   *zap.Logger
}

// NewConsentService creates a ConsentService.
func NewConsentService(users UserStore, records RecordStore, consents ConsentStore, anchor Anchor, mailer notify.Mailer, appURL string, clock Clock, log *zap.Logger) *ConsentService {
	if clock == nil {
		clock = time.Now
	}
	return &ConsentService{
		users:    users,
		records:  records,
		consents: consents,
		anchor:   anchor,
		mailer:   mailer,
		appURL:   appURL,
		clock:    clock,
		logger:   log,
	}
}

// Grant creates one consent per record id, all for the same doctor, purpose
// and expiry. Preconditions: every record must belong to the granting
// patient and the expiry must be strictly in the future; any violation
// rejects the whole call with nothing written. Each consent is anchored
// before the batch is persisted, and the batch insert is a single
// transaction, so a ledger failure mid fan-out leaves no partial grants.
func (s *ConsentService) Grant(ctx context.Context, patientID, doctorID string, recordIDs []string, purpose string, expiryDate time.Time) ([]models.Consent, error) {
	now := s.clock()
	if len(recordIDs) == 0 {
		return nil, domain.Validationf("at least one record id is required")
	}
	if !expiryDate.After(now) {
		return nil, domain.Validationf("expiry date must be in the future")
	}

	patient, err := s.users.FindByID(ctx, patientID)
	if err != nil {
		return nil, err
	}

	doctor, err := s.users.FindByID(ctx, doctorID)
	if err != nil {
		return nil, err
	}
	if doctor.Role != models.RoleDoctor {
		return nil, domain.NotFoundf("doctor not found")
	}

	owned, err := s.records.ListOwned(ctx, patientID, recordIDs)
	if err != nil {
		return nil, err
	}
	if len(owned) != len(recordIDs) {
		return nil, domain.NotFoundf("one or more records not found for this patient")
	}

	consents := make([]*models.Consent, 0, len(owned))
	for _, record := range owned {
		receipt, err := s.anchor.Anchor(ctx, s.anchor.AuditTopic(), Event{
			Name:       "consent_granted",
			ActorDID:   patient.DID,
			SubjectDID: doctor.DID,
			RecordID:   record.ID,
			Purpose:    purpose,
		})
		if err != nil {
			return nil, err
		}

		consents = append(consents, &models.Consent{
			RecordID:        record.ID,
			PatientID:       patientID,
			DoctorID:        doctorID,
			Purpose:         purpose,
			ExpiryDate:      expiryDate,
			IsActive:        true,
			AnchorSequence:  receipt.SequenceNumber,
			AnchorTimestamp: receipt.ConsensusTimestamp,
		})
	}

	if err := s.consents.CreateBatch(ctx, consents); err != nil {
		return nil, err
	}

	s.notifyGranted(doctor, patient)

	granted := make([]models.Consent, len(consents))
	for i, c := range consents {
		granted[i] = *c
	}
	s.logger.Info("Consent granted",
		zap.String("patient_id", patientID),
		zap.String("doctor_id", doctorID),
		zap.Int("records", len(granted)),
	)
	return granted, nil
}

// Revoke deactivates a consent. Consents are never deleted; exactly one
// true-to-false transition is observable, and revoking an already revoked
// consent is a conflict.
func (s *ConsentService) Revoke(ctx context.Context, consentID, patientID string) error {
	consent, err := s.consents.FindByID(ctx, consentID)
	if err != nil {
		return err
	}
	if consent.PatientID != patientID {
		return domain.NotFoundf("consent not found")
	}
	if !consent.IsActive {
		return domain.Conflictf("consent is already revoked")
	}

	transitioned, err := s.consents.Deactivate(ctx, consentID)
	if err != nil {
		return err
	}
	if !transitioned {
		return domain.Conflictf("consent is already revoked")
	}

	doctorDID := ""
	if doctor, err := s.users.FindByID(ctx, consent.DoctorID); err == nil {
		doctorDID = doctor.DID
	}
	patientDID := ""
	if patient, err := s.users.FindByID(ctx, patientID); err == nil {
		patientDID = patient.DID
	}

	// Revocation already committed; the anchor is informational here.
	s.anchor.AnchorBestEffort(ctx, s.anchor.AuditTopic(), Event{
		Name:       "consent_revoked",
		ActorDID:   patientDID,
		SubjectDID: doctorDID,
		RecordID:   consent.RecordID,
		ConsentID:  consent.ID,
	})

	s.logger.Info("Consent revoked",
		zap.String("consent_id", consentID),
		zap.String("patient_id", patientID),
	)
	return nil
}

// CanDoctorRead reports whether the doctor holds an effective consent for
// the record, evaluated against the current time. This is the read-time
// gate: a consent that expired since it was granted denies access here with
// no writes anywhere.
func (s *ConsentService) CanDoctorRead(ctx context.Context, doctorID, recordID string) (bool, error) {
	active, err := s.consents.ListActiveForDoctorRecord(ctx, doctorID, recordID)
	if err != nil {
		return false, err
	}
	now := s.clock()
	for i := range active {
		if active[i].IsEffective(now) {
			return true, nil
		}
	}
	return false, nil
}

// ListForPatient returns all consents granted by a patient, active or not.
func (s *ConsentService) ListForPatient(ctx context.Context, patientID string) ([]models.Consent, error) {
	return s.consents.ListByPatient(ctx, patientID)
}

// ListEffectiveForDoctor returns the doctor's currently effective consents.
func (s *ConsentService) ListEffectiveForDoctor(ctx context.Context, doctorID string) ([]models.Consent, error) {
	all, err := s.consents.ListByDoctor(ctx, doctorID)
	if err != nil {
		return nil, err
	}
	now := s.clock()
	effective := make([]models.Consent, 0, len(all))
	for i := range all {
		if all[i].IsEffective(now) {
			effective = append(effective, all[i])
		}
	}
	return effective, nil
}

func (s *ConsentService) notifyGranted(doctor, patient *models.User) {
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
