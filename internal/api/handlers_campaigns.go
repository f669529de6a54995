package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/emailcraft/studio/internal/campaign"
	"github.com/emailcraft/studio/internal/domain"
	"github.com/emailcraft/studio/internal/pkg/httputil"
)

// GetCampaigns returns all campaigns.
func (h *Handlers) GetCampaigns(w http.ResponseWriter, r *http.Request) {
	out, err := h.campaigns.List(r.Context())
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	if out == nil {
		out = []domain.Campaign{}
	}
	httputil.OK(w, out)
}

// CreateCampaign creates a campaign.
func (h *Handlers) CreateCampaign(w http.ResponseWriter, r *http.Request) {
	var input campaign.CreateInput
	if !httputil.Decode(w, r, &input) {
		return
	}
	c, err := h.campaigns.Create(r.Context(), input)
	if err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}
	httputil.Created(w, c)
}

// GetCampaign returns a single campaign.
func (h *Handlers) GetCampaign(w http.ResponseWriter, r *http.Request) {
	c, err := h.campaigns.Get(r.Context(), chi.URLParam(r, "campaignID"))
	if err != nil {
		h.campaignError(w, err)
		return
	}
	httputil.OK(w, c)
}

// UpdateCampaign modifies campaign fields. Absent fields stay untouched.
func (h *Handlers) UpdateCampaign(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name          *string `json:"name"`
		Subject       *string `json:"subject"`
		Body          *string `json:"body"`
		ContactListID *string `json:"contactListId"`
	}
	if !httputil.Decode(w, r, &req) {
		return
	}
	u := campaign.UpdateFields{
		Name:          req.Name,
		Subject:       req.Subject,
		Body:          req.Body,
		ContactListID: req.ContactListID,
	}
	if err := h.campaigns.Update(r.Context(), chi.URLParam(r, "campaignID"), u); err != nil {
		h.campaignError(w, err)
		return
	}
	c, err := h.campaigns.Get(r.Context(), chi.URLParam(r, "campaignID"))
	if err != nil {
		h.campaignError(w, err)
		return
	}
	httputil.OK(w, c)
}

// DeleteCampaign removes a campaign.
func (h *Handlers) DeleteCampaign(w http.ResponseWriter, r *http.Request) {
	if err := h.campaigns.Delete(r.Context(), chi.URLParam(r, "campaignID")); err != nil {
		h.campaignError(w, err)
		return
	}
	httputil.NoContent(w)
}

// SendCampaign dispatches a campaign to its contact list. The request body
// may carry send settings for this run; an empty body falls back to the
// stored defaults. Responds with the dispatch accounting; partial failures
// are inside the result, not HTTP errors.
func (h *Handlers) SendCampaign(w http.ResponseWriter, r *http.Request) {
	var settings domain.SendSettings
	if r.ContentLength > 0 {
		if !httputil.Decode(w, r, &settings) {
			return
		}
	}

	res, err := h.campaigns.Dispatch(r.Context(), chi.URLParam(r, "campaignID"), settings)
	if err != nil {
		h.campaignError(w, err)
		return
	}
	httputil.OK(w, res)
}

// PreviewCampaign renders the campaign against a sample contact.
func (h *Handlers) PreviewCampaign(w http.ResponseWriter, r *http.Request) {
	var input campaign.PreviewInput
	if r.ContentLength > 0 {
		if !httputil.Decode(w, r, &input) {
			return
		}
	}

	subject, body, err := h.campaigns.Preview(r.Context(), chi.URLParam(r, "campaignID"), input)
	if err != nil {
		if errors.Is(err, campaign.ErrNotFound) {
			httputil.NotFound(w, err.Error())
			return
		}
		httputil.BadRequest(w, err.Error())
		return
	}
	httputil.OK(w, map[string]string{"subject": subject, "body": body})
}

// DraftCampaign generates campaign copy from a description.
func (h *Handlers) DraftCampaign(w http.ResponseWriter, r *http.Request) {
	if h.extract == nil {
		httputil.Error(w, http.StatusServiceUnavailable, "AI drafting is not configured")
		return
	}
	var req struct {
		Description string `json:"description"`
	}
	if !httputil.Decode(w, r, &req) {
		return
	}
	draft, err := h.extract.DraftCampaign(r.Context(), req.Description)
	if err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}
	httputil.OK(w, draft)
}

func (h *Handlers) campaignError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, campaign.ErrNotFound):
		httputil.NotFound(w, err.Error())
	case errors.Is(err, campaign.ErrNoSMTPHost),
		errors.Is(err, campaign.ErrNoSESCreds),
		errors.Is(err, campaign.ErrNoList),
		errors.Is(err, campaign.ErrEmptyList):
		httputil.PreconditionFailed(w, err.Error())
	case errors.Is(err, campaign.ErrDispatchRunning):
		httputil.Conflict(w, err.Error())
	default:
		httputil.InternalError(w, err)
	}
}
