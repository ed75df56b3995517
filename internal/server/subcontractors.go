package server

import (
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"compliancehq/internal/compliance"
	"compliancehq/internal/utils"
	"compliancehq/pkg/types"

	"github.com/alexedwards/flow"
)

func (s *Service) handleGetSubcontractor(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id := strings.TrimSpace(flow.Param(ctx, "id"))
	if id == "" {
		http.NotFound(w, r)
		return
	}

	sub, err := s.subsRepo.Subcontractor(ctx, s.config.TenantID, id)
	if err != nil {
		if errors.Is(err, types.ErrSubcontractorNotFound) {
			http.NotFound(w, r)
			return
		}
		s.logger.WithError(err).WithField("subcontractor_id", id).Error("failed to load subcontractor")
		s.internalServerError(w)
		return
	}

	docs, err := s.documentRepo.DocumentsBySubcontractor(ctx, s.config.TenantID, id)
	if err != nil {
		s.logger.WithError(err).WithField("subcontractor_id", id).Error("failed to load certificate documents")
		s.internalServerError(w)
		return
	}

	status := compliance.Classify(sub.InsuranceExpiry, sub.DataStatus, time.Now(), s.warningWindow(""))

	data := &types.SubcontractorDetailPageData{
		BasePageData:  types.BasePageData{Title: sub.Name},
		Subcontractor: sub,
		Trade:         utils.PtrString(sub.Trade),
		Phone:         utils.PtrString(sub.Phone),
		StatusLabel:   status.Label(),
		StatusClass:   statusClass(status),
		Notice:        r.URL.Query().Get("notice"),
		Error:         r.URL.Query().Get("error"),
		CanExtract:    s.extractor.Enabled(),
	}
	if sub.InsuranceExpiry != nil {
		data.ExpiryValue = sub.InsuranceExpiry.Format("2006-01-02")
	}

	for _, doc := range docs {
		data.Documents = append(data.Documents, types.DocumentView{
			ID:         doc.ID,
			FileName:   doc.FileName,
			PublicURL:  s.storage.PublicURL(doc.StorageKey),
			UploadedAt: doc.UploadedAt,
		})
	}

	if err := s.renderTemplate(w, r, "page.subcontractor", data); err != nil {
		s.logger.WithError(err).Error("failed to render subcontractor page")
		s.internalServerError(w)
		return
	}
}

func (s *Service) handlePostSubcontractor(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id := strings.TrimSpace(flow.Param(ctx, "id"))

	sub, err := s.subsRepo.Subcontractor(ctx, s.config.TenantID, id)
	if err != nil {
		if errors.Is(err, types.ErrSubcontractorNotFound) {
			http.NotFound(w, r)
			return
		}
		s.logger.WithError(err).WithField("subcontractor_id", id).Error("failed to load subcontractor for edit")
		s.internalServerError(w)
		return
	}

	if err := r.ParseForm(); err != nil {
		s.redirectSubcontractorWithError(w, r, id, "Invalid form payload.")
		return
	}

	name := strings.TrimSpace(r.FormValue("name"))
	if name == "" {
		s.redirectSubcontractorWithError(w, r, id, "Name is required.")
		return
	}

	sub.Name = name
	sub.Trade = utils.NullableString(strings.TrimSpace(r.FormValue("trade")))
	sub.Phone = utils.NullableString(strings.TrimSpace(r.FormValue("phone")))

	// An expiry typed by hand re-verifies the row; clearing it or typing
	// junk quarantines it again.
	rawExpiry := strings.TrimSpace(r.FormValue("insurance_expiry"))
	if expiry, ok := compliance.ParseDate(rawExpiry); ok {
		sub.InsuranceExpiry = &expiry
		sub.DataStatus = types.DataStatusVerified
	} else {
		sub.InsuranceExpiry = nil
		sub.DataStatus = types.DataStatusIncomplete
	}

	if err := s.subsRepo.UpdateSubcontractor(ctx, sub); err != nil {
		s.logger.WithError(err).WithField("subcontractor_id", id).Error("failed to update subcontractor")
		s.redirectSubcontractorWithError(w, r, id, "Could not save changes. Please try again.")
		return
	}

	s.redirectSubcontractorWithNotice(w, r, id, "Changes saved.")
}

func (s *Service) handlePostSubcontractorDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id := strings.TrimSpace(flow.Param(ctx, "id"))

	sub, err := s.subsRepo.Subcontractor(ctx, s.config.TenantID, id)
	if err != nil {
		if errors.Is(err, types.ErrSubcontractorNotFound) {
			s.redirectDashboardWithError(w, r, "Subcontractor not found.")
			return
		}
		s.logger.WithError(err).WithField("subcontractor_id", id).Error("failed to load subcontractor for delete")
		s.internalServerError(w)
		return
	}

	docs, err := s.documentRepo.DocumentsBySubcontractor(ctx, s.config.TenantID, id)
	if err != nil {
		s.logger.WithError(err).WithField("subcontractor_id", id).Error("failed to load documents before delete")
		s.internalServerError(w)
		return
	}

	for _, doc := range docs {
		storageKey := strings.TrimSpace(doc.StorageKey)
		if storageKey == "" {
			continue
		}

		if err := s.storage.Delete(ctx, storageKey); err != nil {
			s.logger.WithError(err).
				WithField("subcontractor_id", id).
				WithField("document_id", doc.ID).
				WithField("storage_key", storageKey).
				Error("failed to delete certificate from storage during subcontractor delete")
			s.redirectSubcontractorWithError(w, r, id, "Could not delete uploaded certificates from storage. Please try again.")
			return
		}
	}

	if err := s.documentRepo.DeleteDocumentsBySubcontractor(ctx, s.config.TenantID, id); err != nil {
		s.logger.WithError(err).WithField("subcontractor_id", id).Error("failed to delete certificate rows")
		s.internalServerError(w)
		return
	}

	if err := s.subsRepo.DeleteSubcontractor(ctx, s.config.TenantID, id); err != nil {
		s.logger.WithError(err).WithField("subcontractor_id", id).Error("failed to delete subcontractor")
		s.internalServerError(w)
		return
	}

	s.redirectDashboardWithNotice(w, r, sub.Name+" deleted.")
}

func (s *Service) redirectSubcontractorWithNotice(w http.ResponseWriter, r *http.Request, id, notice string) {
	v := url.Values{}
	v.Set("notice", notice)
	http.Redirect(w, r, "/subcontractor/"+id+"?"+v.Encode(), http.StatusSeeOther)
}

func (s *Service) redirectSubcontractorWithError(w http.ResponseWriter, r *http.Request, id, msg string) {
	v := url.Values{}
	v.Set("error", msg)
	http.Redirect(w, r, "/subcontractor/"+id+"?"+v.Encode(), http.StatusSeeOther)
}
