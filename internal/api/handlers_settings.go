package api

import (
	"net/http"

	"github.com/emailcraft/studio/internal/domain"
	"github.com/emailcraft/studio/internal/pkg/httputil"
)

// GetSendSettings returns the stored default send settings with secrets
// blanked (SMTP password, SES secret key).
func (h *Handlers) GetSendSettings(w http.ResponseWriter, r *http.Request) {
	s, err := h.campaigns.GetSendSettings(r.Context())
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	httputil.OK(w, s.Redacted())
}

// SaveSendSettings replaces the stored default send settings.
func (h *Handlers) SaveSendSettings(w http.ResponseWriter, r *http.Request) {
	var s domain.SendSettings
	if !httputil.Decode(w, r, &s) {
		return
	}
	switch s.Transport {
	case domain.TransportSMTP, domain.TransportSES:
	default:
		httputil.BadRequest(w, "transport must be \"smtp\" or \"ses\"")
		return
	}
	if err := h.campaigns.SaveSendSettings(r.Context(), s); err != nil {
		httputil.InternalError(w, err)
		return
	}
	httputil.NoContent(w)
}
