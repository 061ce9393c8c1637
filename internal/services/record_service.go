package services

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"medichain-server/internal/domain"
	"medichain-server/internal/models"
	"medichain-server/internal/storage"
	"medichain-server/internal/utils"
)

const maxUploadBytes = 10 * 1024 * 1024 // 10MB

var allowedMimeTypes = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"image/gif":       true,
	"application/pdf": true,
	"text/plain":      true,
	"application/msword": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
}

// UploadInput carries everything needed to upload a record on behalf of a
// patient. UploaderID differs from the patient when a doctor uploads.
type UploadInput struct {
	PatientID   string
	UploaderID  string
	ActorDID    string
	Title       string
	Description string
	RecordType  models.RecordType
	Filename    string
	MimeType    string
	Data        []byte
}

// RecordService owns the record upload pipeline and consent-gated reads.
// Upload order is validate, storage put, hash, anchor, persist: the database
// row only exists once both the content-addressed copy and the ledger anchor
// do, so no row is ever without corroborating evidence.
type RecordService struct {
	users    UserStore
	records  RecordStore
	consents *ConsentService
	store    storage.Client
	anchor   Anchor
	clock    Clock
	logger   *zap.Logger
}

// NewRecordService creates a RecordService.
func NewRecordService(users UserStore, records RecordStore, consents *ConsentService, store storage.Client, anchor Anchor, clock Clock, log *zap.Logger) *RecordService {
	if clock == nil {
		clock = time.Now
	}
	return &RecordService{
		users:    users,
		records:  records,
		consents: consents,
		store:    store,
		anchor:   anchor,
		clock:    clock,
		logger:   log,
	}
}

// Upload validates the file, pins it to content-addressed storage, anchors a
// record_created event, and only then persists the metadata row. A storage
// or anchoring failure aborts with no database write.
func (s *RecordService) Upload(ctx context.Context, in UploadInput) (*models.MedicalRecord, error) {
	if len(in.Data) == 0 {
		return nil, domain.Validationf("no file uploaded")
	}
	if len(in.Data) > maxUploadBytes {
		return nil, domain.Validationf("file exceeds the %d byte limit", maxUploadBytes)
	}
	if !allowedMimeTypes[in.MimeType] {
		return nil, domain.Validationf("file type %q is not allowed", in.MimeType)
	}
	if !models.ValidRecordType(in.RecordType) {
		return nil, domain.Validationf("invalid record type %q", in.RecordType)
	}
	if in.Title == "" {
		return nil, domain.Validationf("title is required")
	}

	patient, err := s.users.FindByID(ctx, in.PatientID)
	if err != nil {
		return nil, err
	}
	if patient.Role != models.RolePatient {
		return nil, domain.NotFoundf("patient not found")
	}

	cid, err := s.store.Put(ctx, in.Data, in.Filename, in.MimeType)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, domain.DeadlineExceeded("storage upload timed out", err)
		}
		return nil, domain.StorageUnavailable("storage upload failed", err)
	}

	// Hash the raw bytes ourselves; tamper detection must not depend on the
	// storage provider's addressing.
	recordHash := utils.ContentHash(in.Data)

	receipt, err := s.anchor.Anchor(ctx, s.anchor.RecordTopic(), Event{
		Name:       "record_created",
		ActorDID:   in.ActorDID,
		SubjectDID: patient.DID,
		CID:        cid,
		RecordHash: recordHash,
		RecordType: string(in.RecordType),
	})
	if err != nil {
		return nil, err
	}

	record := &models.MedicalRecord{
		PatientID:       in.PatientID,
		UploadedBy:      in.UploaderID,
		CID:             cid,
		RecordHash:      recordHash,
		RecordType:      in.RecordType,
		Title:           in.Title,
		Description:     in.Description,
		FileSize:        int64(len(in.Data)),
		MimeType:        in.MimeType,
		AnchorSequence:  receipt.SequenceNumber,
		AnchorTimestamp: receipt.ConsensusTimestamp,
	}
	if err := s.records.Create(ctx, record); err != nil {
		return nil, err
	}

	s.logger.Info("Record uploaded",
		zap.String("record_id", record.ID),
		zap.String("patient_id", in.PatientID),
		zap.String("cid", cid),
		zap.Uint64("anchor_sequence", receipt.SequenceNumber),
	)
	return record, nil
}

// GetForDoctor returns a record only if the doctor holds an effective
// consent for it, evaluated now.
func (s *RecordService) GetForDoctor(ctx context.Context, recordID, doctorID string) (*models.MedicalRecord, error) {
	record, err := s.records.FindByID(ctx, recordID)
	if err != nil {
		return nil, err
	}
	ok, err := s.consents.CanDoctorRead(ctx, doctorID, recordID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.Forbiddenf("no valid consent for this record")
	}
	return record, nil
}

// ListForPatient returns a patient's own records.
func (s *RecordService) ListForPatient(ctx context.Context, patientID string) ([]models.MedicalRecord, error) {
	return s.records.ListByPatient(ctx, patientID)
}

// GetOwned returns a record owned by the patient.
func (s *RecordService) GetOwned(ctx context.Context, recordID, patientID string) (*models.MedicalRecord, error) {
	record, err := s.records.FindByID(ctx, recordID)
	if err != nil {
		return nil, err
	}
	if record.PatientID != patientID {
		return nil, domain.NotFoundf("record not found")
	}
	return record, nil
}

// ListPatientRecordsForDoctor returns the patient's records the doctor holds
// effective consent for. With no effective consent at all the call is
// forbidden outright.
func (s *RecordService) ListPatientRecordsForDoctor(ctx context.Context, patientDID, doctorID string) ([]models.MedicalRecord, error) {
	patient, err := s.users.FindByDID(ctx, patientDID)
	if err != nil {
		return nil, err
	}

	records, err := s.records.ListByPatient(ctx, patient.ID)
	if err != nil {
		return nil, err
	}

	readable := make([]models.MedicalRecord, 0, len(records))
	for i := range records {
		ok, err := s.consents.CanDoctorRead(ctx, doctorID, records[i].ID)
		if err != nil {
			return nil, err
		}
		if ok {
			readable = append(readable, records[i])
		}
	}
	if len(readable) == 0 {
		return nil, domain.Forbiddenf("no valid consent found for this patient")
	}
	return readable, nil
}

// Download fetches the record payload from content-addressed storage and
// verifies the stored content hash against the fetched bytes. The caller is
// expected to have passed the relevant access check already.
func (s *RecordService) Download(ctx context.Context, record *models.MedicalRecord) ([]byte, string, error) {
	data, contentType, err := s.store.Get(ctx, record.CID)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, "", domain.DeadlineExceeded("storage retrieval timed out", err)
		}
		return nil, "", domain.StorageUnavailable("storage retrieval failed", err)
	}

	if utils.ContentHash(data) != record.RecordHash {
		s.logger.Error("Record content hash mismatch",
			zap.String("record_id", record.ID),
			zap.String("cid", record.CID),
		)
		return nil, "", domain.Internal("record content does not match its stored hash", nil)
	}

	if contentType == "" {
		contentType = record.MimeType
	}
	return data, contentType, nil
}

// Delete removes a record's metadata row. The content-addressed payload is
// retained for audit.
func (s *RecordService) Delete(ctx context.Context, recordID, patientID, actorDID string) error {
	record, err := s.records.FindByID(ctx, recordID)
	if err != nil {
		return err
	}
	if record.PatientID != patientID {
		return domain.NotFoundf("record not found")
	}

	if err := s.records.Delete(ctx, recordID); err != nil {
		return err
	}

	s.anchor.AnchorBestEffort(ctx, s.anchor.RecordTopic(), Event{
		Name:       "record_deleted",
		ActorDID:   actorDID,
		RecordID:   recordID,
		CID:        record.CID,
		RecordHash: record.RecordHash,
	})

	s.logger.Info("Record deleted",
		zap.String("record_id", recordID),
		zap.String("patient_id", patientID),
	)
	return nil
}
