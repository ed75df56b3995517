package types

import "time"

// CertificateDocument represents an uploaded insurance certificate image
// stored in the certificates bucket.
type CertificateDocument struct {
	ID              string    `db:"id"`
	SubcontractorID string    `db:"subcontractor_id"`
	TenantID        string    `db:"tenant_id"`
	FileName        string    `db:"file_name"`
	MimeType        string    `db:"mime_type"`
	FileSizeBytes   int64     `db:"file_size_bytes"`
	StorageKey      string    `db:"storage_key"`
	UploadedAt      time.Time `db:"uploaded_at"`
}
