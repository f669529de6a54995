package api

import (
	"context"
	"net/http"

	"github.com/emailcraft/studio/internal/campaign"
	"github.com/emailcraft/studio/internal/contacts"
	"github.com/emailcraft/studio/internal/domain"
	"github.com/emailcraft/studio/internal/extract"
	"github.com/emailcraft/studio/internal/pkg/httputil"
)

// Validator is the address verification surface the API exposes directly.
type Validator interface {
	Validate(ctx context.Context, address string) domain.Validation
}

// Handlers holds the services behind the HTTP surface. The extract service
// may be nil when no OpenAI key is configured; its endpoints then return
// 503.
type Handlers struct {
	contacts  *contacts.Service
	campaigns *campaign.Service
	extract   *extract.Service
	validator Validator
}

// NewHandlers creates the handler set.
func NewHandlers(cs *contacts.Service, cams *campaign.Service, ex *extract.Service, v Validator) *Handlers {
	return &Handlers{contacts: cs, campaigns: cams, extract: ex, validator: v}
}

// HealthCheck reports liveness.
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	httputil.OK(w, map[string]string{"status": "ok"})
}

// ValidateEmail checks a single address without sending anything.
func (h *Handlers) ValidateEmail(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if !httputil.Decode(w, r, &req) {
		return
	}
	if req.Email == "" {
		httputil.BadRequest(w, "email is required")
		return
	}
	httputil.OK(w, h.validator.Validate(r.Context(), req.Email))
}
