package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"compliancehq/internal/utils"
	"compliancehq/internal/vision"
	"compliancehq/pkg/types"

	"github.com/alexedwards/flow"
)

const maxCertificateBytes = 5 << 20 // 5 MiB

var allowedCertificateTypes = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"image/webp":      true,
	"application/pdf": true,
}

func (s *Service) handlePostDocumentUpload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id := strings.TrimSpace(flow.Param(ctx, "id"))

	sub, err := s.subsRepo.Subcontractor(ctx, s.config.TenantID, id)
	if err != nil {
		if errors.Is(err, types.ErrSubcontractorNotFound) {
			http.NotFound(w, r)
			return
		}
		s.logger.WithError(err).WithField("subcontractor_id", id).Error("failed to load subcontractor for upload")
		s.internalServerError(w)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxCertificateBytes)
	if err := r.ParseMultipartForm(maxCertificateBytes); err != nil {
		s.redirectSubcontractorWithError(w, r, id, "The certificate is too large (5 MB max).")
		return
	}

	file, header, err := r.FormFile("certificate")
	if err != nil {
		s.redirectSubcontractorWithError(w, r, id, "Choose a certificate file to upload.")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if !allowedCertificateTypes[contentType] {
		s.redirectSubcontractorWithError(w, r, id, "Certificates must be a JPEG, PNG, WebP, or PDF.")
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		s.logger.WithError(err).Error("failed to read certificate upload")
		s.internalServerError(w)
		return
	}

	storageKey := fmt.Sprintf("%s/%s/%s%s",
		s.config.TenantID, sub.ID, utils.NanoIDSize(21), strings.ToLower(filepath.Ext(header.Filename)))

	if err := s.storage.Upload(ctx, storageKey, contentType, data); err != nil {
		s.logger.WithError(err).WithField("storage_key", storageKey).Error("failed to upload certificate")
		s.redirectSubcontractorWithError(w, r, id, "Upload failed. Please try again.")
		return
	}

	doc := &types.CertificateDocument{
		SubcontractorID: sub.ID,
		TenantID:        s.config.TenantID,
		FileName:        header.Filename,
		MimeType:        contentType,
		FileSizeBytes:   int64(len(data)),
		StorageKey:      storageKey,
	}

	if err := s.documentRepo.CreateDocument(ctx, doc); err != nil {
		s.logger.WithError(err).WithField("subcontractor_id", id).Error("failed to record certificate document")
		s.redirectSubcontractorWithError(w, r, id, "Upload failed. Please try again.")
		return
	}

	s.redirectSubcontractorWithNotice(w, r, id, "Certificate uploaded.")
}

func (s *Service) handlePostDocumentDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id := strings.TrimSpace(flow.Param(ctx, "id"))
	documentID := strings.TrimSpace(flow.Param(ctx, "documentID"))

	doc, err := s.documentRepo.DocumentByID(ctx, s.config.TenantID, documentID)
	if err != nil {
		if errors.Is(err, types.ErrDocumentNotFound) {
			s.redirectSubcontractorWithError(w, r, id, "Certificate not found.")
			return
		}
		s.logger.WithError(err).WithField("document_id", documentID).Error("failed to load certificate for delete")
		s.internalServerError(w)
		return
	}

	if doc.StorageKey != "" {
		if err := s.storage.Delete(ctx, doc.StorageKey); err != nil {
			s.logger.WithError(err).WithField("storage_key", doc.StorageKey).Error("failed to delete certificate from storage")
			s.redirectSubcontractorWithError(w, r, id, "Could not delete the certificate from storage. Please try again.")
			return
		}
	}

	if err := s.documentRepo.DeleteDocument(ctx, s.config.TenantID, documentID); err != nil {
		s.logger.WithError(err).WithField("document_id", documentID).Error("failed to delete certificate row")
		s.internalServerError(w)
		return
	}

	s.redirectSubcontractorWithNotice(w, r, id, "Certificate deleted.")
}

// handlePostDocumentExtract asks the vision model for the expiry date on
// an uploaded certificate. A usable date re-verifies the subcontractor;
// anything else leaves the row in manual follow-up.
func (s *Service) handlePostDocumentExtract(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id := strings.TrimSpace(flow.Param(ctx, "id"))
	documentID := strings.TrimSpace(flow.Param(ctx, "documentID"))

	sub, err := s.subsRepo.Subcontractor(ctx, s.config.TenantID, id)
	if err != nil {
		if errors.Is(err, types.ErrSubcontractorNotFound) {
			http.NotFound(w, r)
			return
		}
		s.logger.WithError(err).WithField("subcontractor_id", id).Error("failed to load subcontractor for extraction")
		s.internalServerError(w)
		return
	}

	doc, err := s.documentRepo.DocumentByID(ctx, s.config.TenantID, documentID)
	if err != nil {
		if errors.Is(err, types.ErrDocumentNotFound) {
			s.redirectSubcontractorWithError(w, r, id, "Certificate not found.")
			return
		}
		s.logger.WithError(err).WithField("document_id", documentID).Error("failed to load certificate for extraction")
		s.internalServerError(w)
		return
	}

	image, contentType, err := s.storage.Download(ctx, doc.StorageKey)
	if err != nil {
		s.logger.WithError(err).WithField("storage_key", doc.StorageKey).Error("failed to fetch certificate for extraction")
		s.redirectSubcontractorWithError(w, r, id, "Could not fetch the certificate from storage.")
		return
	}
	if contentType == "" {
		contentType = doc.MimeType
	}

	expiry, err := s.extractor.ExtractExpiryDate(ctx, image, contentType)
	if err != nil {
		switch {
		case errors.Is(err, vision.ErrExtractorDisabled):
			s.redirectSubcontractorWithError(w, r, id, "Automatic extraction is not configured.")
		case errors.Is(err, vision.ErrDateNotFound):
			// Soft failure, never a hard error: the record stays
			// quarantined for manual follow-up.
			s.redirectSubcontractorWithNotice(w, r, id, "No expiry date could be read from the certificate. Please enter it manually.")
		default:
			s.logger.WithError(err).WithField("document_id", documentID).Error("vision extraction failed")
			s.redirectSubcontractorWithError(w, r, id, "Extraction failed. Please try again.")
		}
		return
	}

	sub.InsuranceExpiry = &expiry
	sub.DataStatus = types.DataStatusVerified

	if err := s.subsRepo.UpdateSubcontractor(ctx, sub); err != nil {
		s.logger.WithError(err).WithField("subcontractor_id", id).Error("failed to save extracted expiry date")
		s.redirectSubcontractorWithError(w, r, id, "Could not save the extracted date. Please try again.")
		return
	}

	s.redirectSubcontractorWithNotice(w, r, id, "Expiry date read from certificate: "+expiry.Format("2006-01-02"))
}
