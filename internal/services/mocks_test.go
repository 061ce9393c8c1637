package services

import (
	"context"
	"errors"
	"sync/atomic"

	"medichain-server/internal/ledger"
	"medichain-server/internal/models"
	"medichain-server/internal/notify"
	"medichain-server/internal/storage"
)

// --- MockUserStore ---
var _ UserStore = (*MockUserStore)(nil)

// MockUserStore is a mock implementation of UserStore.
type MockUserStore struct {
	FindByIDFunc  func(ctx context.Context, id string) (*models.User, error)
	FindByDIDFunc func(ctx context.Context, did string) (*models.User, error)
}

func (m *MockUserStore) FindByID(ctx context.Context, id string) (*models.User, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, errors.New("FindByIDFunc not implemented in mock")
}

func (m *MockUserStore) FindByDID(ctx context.Context, did string) (*models.User, error) {
	if m.FindByDIDFunc != nil {
		return m.FindByDIDFunc(ctx, did)
	}
	return nil, errors.New("FindByDIDFunc not implemented in mock")
}

// --- MockRecordStore ---
var _ RecordStore = (*MockRecordStore)(nil)

// MockRecordStore is a mock implementation of RecordStore.
type MockRecordStore struct {
	CreateFunc        func(ctx context.Context, record *models.MedicalRecord) error
	FindByIDFunc      func(ctx context.Context, id string) (*models.MedicalRecord, error)
	ListOwnedFunc     func(ctx context.Context, patientID string, ids []string) ([]models.MedicalRecord, error)
	ListByPatientFunc func(ctx context.Context, patientID string) ([]models.MedicalRecord, error)
	DeleteFunc        func(ctx context.Context, id string) error

	CreateFuncCallCount int32
	DeleteFuncCallCount int32
}

func (m *MockRecordStore) Create(ctx context.Context, record *models.MedicalRecord) error {
	atomic.AddInt32(&m.CreateFuncCallCount, 1)
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, record)
	}
	return nil
}

func (m *MockRecordStore) FindByID(ctx context.Context, id string) (*models.MedicalRecord, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, errors.New("FindByIDFunc not implemented in mock")
}

func (m *MockRecordStore) ListOwned(ctx context.Context, patientID string, ids []string) ([]models.MedicalRecord, error) {
	if m.ListOwnedFunc != nil {
		return m.ListOwnedFunc(ctx, patientID, ids)
	}
	return nil, errors.New("ListOwnedFunc not implemented in mock")
}

func (m *MockRecordStore) ListByPatient(ctx context.Context, patientID string) ([]models.MedicalRecord, error) {
	if m.ListByPatientFunc != nil {
		return m.ListByPatientFunc(ctx, patientID)
	}
	return nil, nil
}

func (m *MockRecordStore) Delete(ctx context.Context, id string) error {
	atomic.AddInt32(&m.DeleteFuncCallCount, 1)
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

// --- MockConsentStore ---
var _ ConsentStore = (*MockConsentStore)(nil)

// MockConsentStore is a mock implementation of ConsentStore.
type MockConsentStore struct {
	CreateBatchFunc               func(ctx context.Context, consents []*models.Consent) error
	FindByIDFunc                  func(ctx context.Context, id string) (*models.Consent, error)
	DeactivateFunc                func(ctx context.Context, id string) (bool, error)
	ListByPatientFunc             func(ctx context.Context, patientID string) ([]models.Consent, error)
	ListByDoctorFunc              func(ctx context.Context, doctorID string) ([]models.Consent, error)
	ListActiveForDoctorRecordFunc func(ctx context.Context, doctorID, recordID string) ([]models.Consent, error)

	CreateBatchFuncCallCount int32
	DeactivateFuncCallCount  int32
}

func (m *MockConsentStore) CreateBatch(ctx context.Context, consents []*models.Consent) error {
	atomic.AddInt32(&m.CreateBatchFuncCallCount, 1)
	if m.CreateBatchFunc != nil {
		return m.CreateBatchFunc(ctx, consents)
	}
	return nil
}

func (m *MockConsentStore) FindByID(ctx context.Context, id string) (*models.Consent, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, errors.New("FindByIDFunc not implemented in mock")
}

func (m *MockConsentStore) Deactivate(ctx context.Context, id string) (bool, error) {
	atomic.AddInt32(&m.DeactivateFuncCallCount, 1)
	if m.DeactivateFunc != nil {
		return m.DeactivateFunc(ctx, id)
	}
	return false, errors.New("DeactivateFunc not implemented in mock")
}

func (m *MockConsentStore) ListByPatient(ctx context.Context, patientID string) ([]models.Consent, error) {
	if m.ListByPatientFunc != nil {
		return m.ListByPatientFunc(ctx, patientID)
	}
	return nil, nil
}

func (m *MockConsentStore) ListByDoctor(ctx context.Context, doctorID string) ([]models.Consent, error) {
	if m.ListByDoctorFunc != nil {
		return m.ListByDoctorFunc(ctx, doctorID)
	}
	return nil, nil
}

func (m *MockConsentStore) ListActiveForDoctorRecord(ctx context.Context, doctorID, recordID string) ([]models.Consent, error) {
	if m.ListActiveForDoctorRecordFunc != nil {
		return m.ListActiveForDoctorRecordFunc(ctx, doctorID, recordID)
	}
	return nil, nil
}

// --- MockAccessRequestStore ---
var _ AccessRequestStore = (*MockAccessRequestStore)(nil)

// MockAccessRequestStore is a mock implementation of AccessRequestStore.
type MockAccessRequestStore struct {
	CreateFunc        func(ctx context.Context, request *models.AccessRequest) error
	FindByIDFunc      func(ctx context.Context, id string) (*models.AccessRequest, error)
	TransitionFunc    func(ctx context.Context, requestID string, to models.AccessRequestStatus, consent *models.Consent) (bool, error)
	ListByPatientFunc func(ctx context.Context, patientID string) ([]models.AccessRequest, error)
	ListByDoctorFunc  func(ctx context.Context, doctorID string) ([]models.AccessRequest, error)

	CreateFuncCallCount     int32
	TransitionFuncCallCount int32
}

func (m *MockAccessRequestStore) Create(ctx context.Context, request *models.AccessRequest) error {
	atomic.AddInt32(&m.CreateFuncCallCount, 1)
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, request)
	}
	return nil
}

func (m *MockAccessRequestStore) FindByID(ctx context.Context, id string) (*models.AccessRequest, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, errors.New("FindByIDFunc not implemented in mock")
}

func (m *MockAccessRequestStore) Transition(ctx context.Context, requestID string, to models.AccessRequestStatus, consent *models.Consent) (bool, error) {
	atomic.AddInt32(&m.TransitionFuncCallCount, 1)
	if m.TransitionFunc != nil {
		return m.TransitionFunc(ctx, requestID, to, consent)
	}
	return false, errors.New("TransitionFunc not implemented in mock")
}

func (m *MockAccessRequestStore) ListByPatient(ctx context.Context, patientID string) ([]models.AccessRequest, error) {
	if m.ListByPatientFunc != nil {
		return m.ListByPatientFunc(ctx, patientID)
	}
	return nil, nil
}

func (m *MockAccessRequestStore) ListByDoctor(ctx context.Context, doctorID string) ([]models.AccessRequest, error) {
	if m.ListByDoctorFunc != nil {
		return m.ListByDoctorFunc(ctx, doctorID)
	}
	return nil, nil
}

// --- MockAuditEventStore ---
var _ AuditEventStore = (*MockAuditEventStore)(nil)

// MockAuditEventStore is a mock implementation of AuditEventStore.
type MockAuditEventStore struct {
	SaveFunc      func(ctx context.Context, event *models.AuditEvent) error
	ListByDIDFunc func(ctx context.Context, did string, limit int) ([]models.AuditEvent, error)

	SaveFuncCallCount int32
}

func (m *MockAuditEventStore) Save(ctx context.Context, event *models.AuditEvent) error {
	atomic.AddInt32(&m.SaveFuncCallCount, 1)
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, event)
	}
	return nil
}

func (m *MockAuditEventStore) ListByDID(ctx context.Context, did string, limit int) ([]models.AuditEvent, error) {
	if m.ListByDIDFunc != nil {
		return m.ListByDIDFunc(ctx, did, limit)
	}
	return nil, nil
}

// --- MockAnchor ---
var _ Anchor = (*MockAnchor)(nil)

// MockAnchor is a mock implementation of Anchor. It records every anchored
// event so tests can assert on payloads and ordering.
type MockAnchor struct {
	AnchorFunc func(ctx context.Context, topicID string, event Event) (ledger.Receipt, error)

	Anchored           []Event
	BestEffortAnchored []Event
	NextSequence       uint64
}

func (m *MockAnchor) Anchor(ctx context.Context, topicID string, event Event) (ledger.Receipt, error) {
	if m.AnchorFunc != nil {
		receipt, err := m.AnchorFunc(ctx, topicID, event)
		if err != nil {
			return receipt, err
		}
		m.Anchored = append(m.Anchored, event)
		return receipt, nil
	}
	m.NextSequence++
	m.Anchored = append(m.Anchored, event)
	return ledger.Receipt{SequenceNumber: m.NextSequence, ConsensusTimestamp: "2026-01-01T00:00:00.000000000Z"}, nil
}

func (m *MockAnchor) AnchorBestEffort(ctx context.Context, topicID string, event Event) {
	m.BestEffortAnchored = append(m.BestEffortAnchored, event)
}

func (m *MockAnchor) AuditTopic() string  { return "0.0.1001" }
func (m *MockAnchor) RecordTopic() string { return "0.0.1002" }

// --- MockLedgerClient ---
var _ ledger.Client = (*MockLedgerClient)(nil)

// MockLedgerClient is a mock implementation of ledger.Client.
type MockLedgerClient struct {
	CreateTopicFunc   func(ctx context.Context, memo string) (string, error)
	SubmitMessageFunc func(ctx context.Context, topicID string, message []byte) (ledger.Receipt, error)
	CreateAccountFunc func(ctx context.Context, publicKey string, initialBalance int64) (string, error)
	GetBalanceFunc    func(ctx context.Context, accountID string) (string, error)
	NetworkName       string
}

func (m *MockLedgerClient) CreateTopic(ctx context.Context, memo string) (string, error) {
	if m.CreateTopicFunc != nil {
		return m.CreateTopicFunc(ctx, memo)
	}
	return "", errors.New("CreateTopicFunc not implemented in mock")
}

func (m *MockLedgerClient) SubmitMessage(ctx context.Context, topicID string, message []byte) (ledger.Receipt, error) {
	if m.SubmitMessageFunc != nil {
		return m.SubmitMessageFunc(ctx, topicID, message)
	}
	return ledger.Receipt{}, errors.New("SubmitMessageFunc not implemented in mock")
}

func (m *MockLedgerClient) CreateAccount(ctx context.Context, publicKey string, initialBalance int64) (string, error) {
	if m.CreateAccountFunc != nil {
		return m.CreateAccountFunc(ctx, publicKey, initialBalance)
	}
	return "", errors.New("CreateAccountFunc not implemented in mock")
}

func (m *MockLedgerClient) GetBalance(ctx context.Context, accountID string) (string, error) {
	if m.GetBalanceFunc != nil {
		return m.GetBalanceFunc(ctx, accountID)
	}
	return "", errors.New("GetBalanceFunc not implemented in mock")
}

func (m *MockLedgerClient) Network() string {
	if m.NetworkName != "" {
		return m.NetworkName
	}
	return "testnet"
}

// --- MockStorageClient ---
var _ storage.Client = (*MockStorageClient)(nil)

// MockStorageClient is a mock implementation of storage.Client.
type MockStorageClient struct {
	PutFunc func(ctx context.Context, data []byte, filename, mimeType string) (string, error)
	GetFunc func(ctx context.Context, cid string) ([]byte, string, error)

	PutFuncCallCount int32
}

func (m *MockStorageClient) Put(ctx context.Context, data []byte, filename, mimeType string) (string, error) {
	atomic.AddInt32(&m.PutFuncCallCount, 1)
	if m.PutFunc != nil {
		return m.PutFunc(ctx, data, filename, mimeType)
	}
	return "QmMockCID", nil
}

func (m *MockStorageClient) Get(ctx context.Context, cid string) ([]byte, string, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, cid)
	}
	return nil, "", errors.New("GetFunc not implemented in mock")
}

// --- MockMailer ---
var _ notify.Mailer = (*MockMailer)(nil)

// MockMailer is a mock implementation of notify.Mailer.
type MockMailer struct {
	SendFunc func(to, subject, html string) error
}

func (m *MockMailer) Send(to, subject, html string) error {
	if m.SendFunc != nil {
		return m.SendFunc(to, subject, html)
	}
	return nil
}
