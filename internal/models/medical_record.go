package models

// RecordType represents the type of medical record
type RecordType string

const (
	RecordTypeLabResult    RecordType = "LAB_RESULT"
	RecordTypePrescription RecordType = "PRESCRIPTION"
	RecordTypeImaging      RecordType = "IMAGING"
	RecordTypeDiagnosis    RecordType = "DIAGNOSIS"
	RecordTypeTreatment    RecordType = "TREATMENT"
	RecordTypeOther        RecordType = "OTHER"
)

// ValidRecordType reports whether t is one of the known record types.
func ValidRecordType(t RecordType) bool {
	switch t {
	case RecordTypeLabResult, RecordTypePrescription, RecordTypeImaging,
		RecordTypeDiagnosis, RecordTypeTreatment, RecordTypeOther:
		return true
	}
	return false
}

// MedicalRecord holds the metadata for an uploaded medical record. The binary
// payload lives in content-addressed storage under CID; RecordHash is an
// independent sha256 digest of the raw bytes for tamper detection. A row is
// only ever created after both the storage upload and the ledger anchor
// succeeded, so AnchorSequence is always populated.
//
// Rows are immutable once created except for deletion. Deletion removes the
// metadata row only; the content-addressed payload is retained.
type MedicalRecord struct {
	BaseModel
	PatientID       string     `gorm:"size:36;index;not null" json:"patientId"`
	UploadedBy      string     `gorm:"size:36" json:"uploadedBy"`
	CID             string     `gorm:"size:128;not null" json:"cid"`
	RecordHash      string     `gorm:"size:64;not null" json:"recordHash"`
	RecordType      RecordType `gorm:"size:50;not null" json:"recordType"`
	Title           string     `gorm:"size:255;not null" json:"title"`
	Description     string     `gorm:"size:500" json:"description"`
	FileSize        int64      `json:"fileSize"`
	MimeType        string     `gorm:"size:100" json:"mimeType"`
	AnchorSequence  uint64     `json:"anchorSequence"`
	AnchorTimestamp string     `gorm:"size:64" json:"anchorTimestamp"`

	Patient  User      `gorm:"foreignKey:PatientID" json:"-"`
	Consents []Consent `gorm:"foreignKey:RecordID" json:"consents,omitempty"`
}
