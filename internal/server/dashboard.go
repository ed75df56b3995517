package server

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"compliancehq/internal/compliance"
	"compliancehq/pkg/types"
)

func (s *Service) handleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	windowDays := s.warningWindow(r.URL.Query().Get("window"))
	statusFilter := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("status")))

	subs, err := s.subsRepo.SubcontractorsByTenant(ctx, s.config.TenantID)
	if err != nil {
		s.logger.WithError(err).Error("failed to list subcontractors for dashboard")
		s.internalServerError(w)
		return
	}

	data := &types.DashboardPageData{
		BasePageData:  types.BasePageData{Title: "Compliance HQ"},
		Notice:        r.URL.Query().Get("notice"),
		Error:         r.URL.Query().Get("error"),
		TenantID:      s.config.TenantID,
		WindowDays:    windowDays,
		WindowOptions: compliance.WindowOptions,
		StatusFilter:  statusFilter,
	}

	now := time.Now()
	for _, sub := range subs {
		status := compliance.Classify(sub.InsuranceExpiry, sub.DataStatus, now, windowDays)

		switch status {
		case compliance.StatusSafe:
			data.SafeCount++
		case compliance.StatusWarning:
			data.WarningCount++
		case compliance.StatusExpired:
			data.ExpiredCount++
		case compliance.StatusMissing:
			data.MissingCount++
		}

		if statusFilter != "" && statusFilter != string(status) {
			continue
		}

		data.Cards = append(data.Cards, buildCard(sub, status, now))
	}
	data.HasRows = len(data.Cards) > 0

	if err := s.renderTemplate(w, r, "page.dashboard", data); err != nil {
		s.logger.WithError(err).Error("failed to render dashboard")
		s.internalServerError(w)
		return
	}
}

// warningWindow clamps the query parameter to one of the offered windows,
// falling back to the configured default.
func (s *Service) warningWindow(raw string) int {
	if raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			for _, option := range compliance.WindowOptions {
				if parsed == option {
					return parsed
				}
			}
		}
	}

	if s.config.WarningWindowDays > 0 {
		return s.config.WarningWindowDays
	}
	return compliance.WindowOptions[0]
}

func buildCard(sub *types.Subcontractor, status compliance.Status, now time.Time) types.SubcontractorCard {
	card := types.SubcontractorCard{
		ID:          sub.ID,
		Name:        sub.Name,
		StatusID:    string(status),
		StatusLabel: status.Label(),
		StatusClass: statusClass(status),
	}

	if sub.Trade != nil {
		card.Trade = *sub.Trade
	}
	if sub.Phone != nil {
		card.Phone = *sub.Phone
	}
	if sub.InsuranceExpiry != nil && sub.DataStatus == types.DataStatusVerified {
		card.ExpiryDisplay = sub.InsuranceExpiry.Format("2006-01-02")
		card.DaysUntil = compliance.DaysUntil(now, *sub.InsuranceExpiry)
		card.HasDays = true
	}

	return card
}

func statusClass(status compliance.Status) string {
	switch status {
	case compliance.StatusSafe:
		return "status-safe"
	case compliance.StatusWarning:
		return "status-warning"
	case compliance.StatusExpired:
		return "status-expired"
	default:
		return "status-missing"
	}
}

func (s *Service) redirectDashboardWithNotice(w http.ResponseWriter, r *http.Request, notice string) {
	v := url.Values{}
	v.Set("notice", notice)
	http.Redirect(w, r, "/?"+v.Encode(), http.StatusSeeOther)
}

func (s *Service) redirectDashboardWithError(w http.ResponseWriter, r *http.Request, msg string) {
	v := url.Values{}
	v.Set("error", msg)
	http.Redirect(w, r, "/?"+v.Encode(), http.StatusSeeOther)
}
