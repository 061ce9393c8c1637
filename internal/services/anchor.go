package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"

	"medichain-server/internal/domain"
	"medichain-server/internal/ledger"
	"medichain-server/internal/models"
)

// Event is the JSON payload anchored to a ledger topic for every
// state-changing action. Timestamp is RFC3339 and set by the anchor if empty.
type Event struct {
	Name       string `json:"event"`
	ActorDID   string `json:"actorDid,omitempty"`
	SubjectDID string `json:"subjectDid,omitempty"`
	RecordID   string `json:"recordId,omitempty"`
	ConsentID  string `json:"consentId,omitempty"`
	RequestID  string `json:"requestId,omitempty"`
	EntityID   string `json:"entityId,omitempty"`
	CID        string `json:"cid,omitempty"`
	RecordHash string `json:"recordHash,omitempty"`
	RecordType string `json:"recordType,omitempty"`
	Purpose    string `json:"purpose,omitempty"`
	Timestamp  string `json:"timestamp"`
}

// Anchor submits events to append-only ledger topics and records the
// returned receipts. Anchor is the required form: a failure must abort the
// operation that triggered it. AnchorBestEffort is for informational events
// whose failure is logged and swallowed.
type Anchor interface {
	Anchor(ctx context.Context, topicID string, event Event) (ledger.Receipt, error)
	AnchorBestEffort(ctx context.Context, topicID string, event Event)
	AuditTopic() string
	RecordTopic() string
}

// AuditAnchor implements Anchor on top of a ledger client, mirroring every
// successful submission into the local audit table.
type AuditAnchor struct {
	client      ledger.Client
	events      AuditEventStore
	auditTopic  string
	recordTopic string
	clock       Clock
	logger      *zap.Logger
}

// NewAuditAnchor creates an AuditAnchor.
func NewAuditAnchor(client ledger.Client, events AuditEventStore, auditTopic, recordTopic string, clock Clock, log *zap.Logger) *AuditAnchor {
	if clock == nil {
		clock = time.Now
	}
	return &AuditAnchor{
		client:      client,
		events:      events,
		auditTopic:  auditTopic,
		recordTopic: recordTopic,
		clock:       clock,
		logger:      log,
	}
}

func (a *AuditAnchor) AuditTopic() string  { return a.auditTopic }
func (a *AuditAnchor) RecordTopic() string { return a.recordTopic }

// Anchor serializes the event, submits it to the topic, and waits for the
// receipt. Ledger failures are wrapped into the domain taxonomy.
func (a *AuditAnchor) Anchor(ctx context.Context, topicID string, event Event) (ledger.Receipt, error) {
	if event.Timestamp == "" {
		event.Timestamp = a.clock().UTC().Format(time.RFC3339)
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return ledger.Receipt{}, domain.Internal("serialize audit event", err)
	}

	receipt, err := a.client.SubmitMessage(ctx, topicID, payload)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return ledger.Receipt{}, domain.DeadlineExceeded("ledger submission timed out", err)
		}
		return ledger.Receipt{}, domain.LedgerUnavailable("ledger submission failed", err)
	}

	mirror := &models.AuditEvent{
		TopicID:            topicID,
		Event:              event.Name,
		ActorDID:           event.ActorDID,
		SubjectDID:         event.SubjectDID,
		Payload:            string(payload),
		SequenceNumber:     receipt.SequenceNumber,
		ConsensusTimestamp: receipt.ConsensusTimestamp,
	}
	if err := a.events.Save(ctx, mirror); err != nil {
		// The ledger already holds the event; a mirror miss only degrades
		// local listing.
		a.logger.Warn("Failed to mirror anchored event",
			zap.String("event", event.Name),
			zap.Uint64("sequence_number", receipt.SequenceNumber),
			zap.Error(err),
		)
	}

	return receipt, nil
}

// AnchorBestEffort anchors an informational event, logging any failure
// instead of propagating it.
func (a *AuditAnchor) AnchorBestEffort(ctx context.Context, topicID string, event Event) {
	if _, err := a.Anchor(ctx, topicID, event); err != nil {
		a.logger.Warn("Best-effort anchor failed",
			zap.String("event", event.Name),
			zap.String("topic_id", topicID),
			zap.Error(err),
		)
	}
}
