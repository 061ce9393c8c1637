package models

// AuditEvent is the local mirror of an event that was anchored to a ledger
// topic. The ledger is the source of truth; this table exists so users can
// list events that concern them without a mirror-node round trip. Sequence
// numbers are totally ordered within a topic only.
type AuditEvent struct {
	BaseModel
	TopicID            string `gorm:"size:64;index;not null" json:"topicId"`
	Event              string `gorm:"size:100;index;not null" json:"event"`
	ActorDID           string `gorm:"size:255;index" json:"actorDid"`
	SubjectDID         string `gorm:"size:255;index" json:"subjectDid"`
	Payload            string `gorm:"type:text" json:"payload"`
	SequenceNumber     uint64 `gorm:"index" json:"sequenceNumber"`
	ConsensusTimestamp string `gorm:"size:64" json:"consensusTimestamp"`
}
