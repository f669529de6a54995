package api

import (
	"net/http"

	"github.com/emailcraft/studio/internal/pkg/httputil"
)

// ExtractContacts pulls structured contacts out of pasted text.
func (h *Handlers) ExtractContacts(w http.ResponseWriter, r *http.Request) {
	if h.extract == nil {
		httputil.Error(w, http.StatusServiceUnavailable, "AI extraction is not configured")
		return
	}
	var req struct {
		Text string `json:"text"`
	}
	if !httputil.Decode(w, r, &req) {
		return
	}
	out, err := h.extract.ExtractContacts(r.Context(), req.Text)
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	httputil.OK(w, map[string]interface{}{"contacts": out})
}
