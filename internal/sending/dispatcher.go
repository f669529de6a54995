package sending

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/emailcraft/studio/internal/domain"
	"github.com/emailcraft/studio/internal/personalize"
)

// AddressValidator decides whether an address is worth attempting. The
// verify package provides the production implementation.
type AddressValidator interface {
	Validate(ctx context.Context, address string) domain.Validation
}

// Dispatcher runs one campaign send. It owns the Sender for the duration of
// the run and closes it when the batch finishes, so a dispatcher is built
// per dispatch, not shared.
type Dispatcher struct {
	validator AddressValidator
	sender    Sender
	throttler *Throttler
	perSend   time.Duration
	fromName  string
	fromEmail string
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithThrottler paces sends through the given throttler.
func WithThrottler(t *Throttler) DispatcherOption {
	return func(d *Dispatcher) { d.throttler = t }
}

// WithPerSendTimeout bounds each individual delivery attempt. Zero means
// the batch context alone governs.
func WithPerSendTimeout(timeout time.Duration) DispatcherOption {
	return func(d *Dispatcher) { d.perSend = timeout }
}

// WithFromName overrides the display name on outgoing mail.
func WithFromName(name string) DispatcherOption {
	return func(d *Dispatcher) { d.fromName = name }
}

// NewDispatcher creates a dispatcher sending as fromEmail. Campaign mail
// goes out as "EmailCraft Studio" <fromEmail> unless WithFromName overrides
// the display name.
func NewDispatcher(validator AddressValidator, sender Sender, fromEmail string, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		validator: validator,
		sender:    sender,
		fromName:  DefaultFromName,
		fromEmail: fromEmail,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// SendCampaign walks contacts in list order: validate, personalize, send.
// Each contact lands in exactly one bucket, so Total == Sent + Failed
// always holds. Invalid addresses are skipped without touching the
// transport; a delivery failure is recorded and the run continues.
//
// Cancelling ctx stops the run before the next contact. Contacts not yet
// reached are excluded from Total, so the result reflects what was actually
// attempted.
//
// The diagnostic strings in Errors are stable formats the UI parses:
// "Skipped <email>: <reason>" and "Failed to send to <email>: <message>".
// They carry the raw address since operators need it to fix the list.
func (d *Dispatcher) SendCampaign(ctx context.Context, campaign domain.Campaign, contacts []domain.Contact) domain.DispatchResult {
	defer d.sender.Close()

	result := domain.DispatchResult{Errors: []string{}}

	log.Printf("[Dispatch] Campaign %s: starting run over %d contacts", campaign.ID, len(contacts))

	for _, contact := range contacts {
		if ctx.Err() != nil {
			log.Printf("[Dispatch] Campaign %s: cancelled after %d of %d contacts", campaign.ID, result.Total, len(contacts))
			break
		}
		result.Total++

		validation := d.validator.Validate(ctx, contact.Email)
		if !validation.IsValid {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("Skipped %s: %s", contact.Email, validation.Reason))
			continue
		}

		if err := d.throttler.Wait(ctx); err != nil {
			// Cancellation during pacing: this contact was never attempted.
			result.Total--
			break
		}

		msg := &domain.EmailMessage{
			ID:          uuid.New().String(),
			CampaignID:  campaign.ID,
			ContactID:   contact.ID,
			Email:       contact.Email,
			FromName:    d.fromName,
			FromEmail:   d.fromEmail,
			Subject:     personalize.Personalize(campaign.Subject, contact),
			HTMLContent: personalize.Personalize(campaign.Body, contact),
		}

		if err := d.send(ctx, msg); err != nil {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("Failed to send to %s: %s", contact.Email, err.Error()))
			continue
		}

		result.Sent++
		d.throttler.Record()
	}

	log.Printf("[Dispatch] Campaign %s: done (total=%d sent=%d failed=%d)", campaign.ID, result.Total, result.Sent, result.Failed)
	return result
}

func (d *Dispatcher) send(ctx context.Context, msg *domain.EmailMessage) error {
	if d.perSend > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.perSend)
		defer cancel()
	}
	_, err := d.sender.Send(ctx, msg)
	return err
}
