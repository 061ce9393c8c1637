package services

import (
	"context"
	"time"

	"medichain-server/internal/models"
)

// Clock supplies the current time. Injected so effectiveness checks can be
// tested against a controlled clock.
type Clock func() time.Time

// UserStore is the persistence contract for user lookups used by the
// domain services.
type UserStore interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByDID(ctx context.Context, did string) (*models.User, error)
}

// RecordStore is the persistence contract for medical record metadata.
type RecordStore interface {
	Create(ctx context.Context, record *models.MedicalRecord) error
	FindByID(ctx context.Context, id string) (*models.MedicalRecord, error)
	// ListOwned returns the subset of ids that exist and belong to patientID.
	ListOwned(ctx context.Context, patientID string, ids []string) ([]models.MedicalRecord, error)
	ListByPatient(ctx context.Context, patientID string) ([]models.MedicalRecord, error)
	Delete(ctx context.Context, id string) error
}

// ConsentStore is the persistence contract for consents. CreateBatch must be
// atomic: either every consent in the batch commits or none do.
type ConsentStore interface {
	CreateBatch(ctx context.Context, consents []*models.Consent) error
	FindByID(ctx context.Context, id string) (*models.Consent, error)
	// Deactivate flips isActive from true to false and reports whether a row
	// actually transitioned. A false return means the consent was already
	// inactive.
	Deactivate(ctx context.Context, id string) (bool, error)
	ListByPatient(ctx context.Context, patientID string) ([]models.Consent, error)
	ListByDoctor(ctx context.Context, doctorID string) ([]models.Consent, error)
	ListActiveForDoctorRecord(ctx context.Context, doctorID, recordID string) ([]models.Consent, error)
}

// AccessRequestStore is the persistence contract for access requests.
type AccessRequestStore interface {
	Create(ctx context.Context, request *models.AccessRequest) error
	FindByID(ctx context.Context, id string) (*models.AccessRequest, error)
	// Transition moves a PENDING request to the given terminal status and, if
	// consent is non-nil, creates it in the same transaction. It reports
	// whether the transition happened; false means the request was no longer
	// PENDING and nothing was written.
	Transition(ctx context.Context, requestID string, to models.AccessRequestStatus, consent *models.Consent) (bool, error)
	ListByPatient(ctx context.Context, patientID string) ([]models.AccessRequest, error)
	ListByDoctor(ctx context.Context, doctorID string) ([]models.AccessRequest, error)
}

// AuditEventStore mirrors anchored events locally for listing.
type AuditEventStore interface {
	Save(ctx context.Context, event *models.AuditEvent) error
	ListByDID(ctx context.Context, did string, limit int) ([]models.AuditEvent, error)
}
