package campaign

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/emailcraft/studio/internal/domain"
	"github.com/emailcraft/studio/internal/personalize"
	"github.com/emailcraft/studio/internal/pkg/distlock"
	"github.com/emailcraft/studio/internal/pkg/logger"
	"github.com/emailcraft/studio/internal/sending"
)

// SenderFactory builds a transport for one dispatch run. Overridable in
// tests so dispatch logic can run against a fake sender.
type SenderFactory func(s domain.SendSettings) (sending.Sender, error)

func defaultSenderFactory(s domain.SendSettings) (sending.Sender, error) {
	if s.Transport == domain.TransportSES {
		return sending.NewSESSender(s.SES.AccessKey, s.SES.SecretKey, s.SES.Region)
	}
	return sending.NewSMTPSender(s.SMTP), nil
}

// Service implements campaign business logic, including the dispatch run.
type Service struct {
	repo      Repository
	settings  SettingsRepository
	lists     ListProvider
	validator sending.AddressValidator
	previewer *personalize.Previewer
	newSender SenderFactory
	throttler func() *sending.Throttler
	perSend   time.Duration
	locks     distlock.Locker
}

// Option configures a Service.
type Option func(*Service)

// WithSenderFactory replaces how dispatch builds its transport.
func WithSenderFactory(f SenderFactory) Option {
	return func(s *Service) { s.newSender = f }
}

// WithThrottle paces dispatch runs with the given inter-send delay and
// per-minute cap. Each run gets a fresh throttler.
func WithThrottle(delay time.Duration, perMinute int) Option {
	return func(s *Service) {
		s.throttler = func() *sending.Throttler { return sending.NewThrottler(delay, perMinute) }
	}
}

// WithPerSendTimeout bounds each delivery attempt during dispatch.
func WithPerSendTimeout(d time.Duration) Option {
	return func(s *Service) { s.perSend = d }
}

// WithLocker guards each campaign so only one dispatch of it runs at a time,
// across all server instances sharing the lock backend.
func WithLocker(l distlock.Locker) Option {
	return func(s *Service) { s.locks = l }
}

// NewService creates a campaign service.
func NewService(repo Repository, settings SettingsRepository, lists ListProvider, validator sending.AddressValidator, opts ...Option) *Service {
	s := &Service{
		repo:      repo,
		settings:  settings,
		lists:     lists,
		validator: validator,
		previewer: personalize.NewPreviewer(),
		newSender: defaultSenderFactory,
		throttler: func() *sending.Throttler { return nil },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateInput holds the fields for creating a campaign.
type CreateInput struct {
	Name          string `json:"name"`
	Subject       string `json:"subject"`
	Body          string `json:"body"`
	ContactListID string `json:"contactListId"`
}

// Create validates and persists a new campaign.
func (s *Service) Create(ctx context.Context, input CreateInput) (*domain.Campaign, error) {
	if input.Name == "" {
		return nil, fmt.Errorf("name is required")
	}
	if input.Subject == "" {
		return nil, fmt.Errorf("subject is required")
	}

	c := &domain.Campaign{
		ID:        uuid.New().String(),
		Name:      input.Name,
		Subject:   input.Subject,
		Body:      input.Body,
		CreatedAt: time.Now(),
	}
	if input.ContactListID != "" {
		c.ContactListID = &input.ContactListID
	}

	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Get returns a single campaign.
func (s *Service) Get(ctx context.Context, id string) (*domain.Campaign, error) {
	return s.repo.Get(ctx, id)
}

// List returns all campaigns.
func (s *Service) List(ctx context.Context) ([]domain.Campaign, error) {
	return s.repo.List(ctx)
}

// Update modifies mutable campaign fields. Cached preview templates are
// dropped so the next preview reflects the edit.
func (s *Service) Update(ctx context.Context, id string, u UpdateFields) error {
	if err := s.repo.Update(ctx, id, u); err != nil {
		return err
	}
	s.previewer.ClearCache()
	return nil
}

// Delete removes a campaign.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// GetSendSettings returns the stored default send settings.
func (s *Service) GetSendSettings(ctx context.Context) (domain.SendSettings, error) {
	return s.settings.GetSendSettings(ctx)
}

// SaveSendSettings replaces the stored default send settings.
func (s *Service) SaveSendSettings(ctx context.Context, cfg domain.SendSettings) error {
	return s.settings.SaveSendSettings(ctx, cfg)
}

// Dispatch runs a campaign send. The settings argument is authoritative for
// this run; a zero value falls back to the stored defaults. Preconditions
// (ErrNoSMTPHost, ErrNoSESCreds, ErrNoList, ErrEmptyList) are checked
// before any connection is opened.
//
// Dispatch returns a result rather than an error for delivery problems:
// individual failures are accounted inside the result and never abort the
// run.
func (s *Service) Dispatch(ctx context.Context, campaignID string, settings domain.SendSettings) (*domain.DispatchResult, error) {
	c, err := s.repo.Get(ctx, campaignID)
	if err != nil {
		return nil, err
	}

	if s.locks != nil {
		ok, err := s.locks.TryLock(ctx, "dispatch:"+campaignID)
		if err != nil {
			return nil, fmt.Errorf("dispatch lock: %w", err)
		}
		if !ok {
			return nil, ErrDispatchRunning
		}
		defer func() {
			if err := s.locks.Unlock(context.WithoutCancel(ctx), "dispatch:"+campaignID); err != nil {
				logger.Warn("release dispatch lock failed", "campaignId", campaignID, "error", err)
			}
		}()
	}

	settings, err = s.resolveSettings(ctx, settings)
	if err != nil {
		return nil, err
	}

	if !c.HasList() {
		return nil, ErrNoList
	}
	list, err := s.lists.GetList(ctx, *c.ContactListID)
	if err != nil {
		return nil, err
	}
	if len(list.Contacts) == 0 {
		return nil, ErrEmptyList
	}

	sender, err := s.newSender(settings)
	if err != nil {
		return nil, fmt.Errorf("build sender: %w", err)
	}

	d := sending.NewDispatcher(s.validator, sender, settings.FromEmail(),
		sending.WithThrottler(s.throttler()),
		sending.WithPerSendTimeout(s.perSend),
	)

	result := d.SendCampaign(ctx, *c, list.Contacts)

	if result.Sent > 0 {
		if err := s.repo.MarkSent(ctx, campaignID, time.Now()); err != nil {
			logger.Warn("mark sent failed", "campaignId", campaignID, "error", err)
		}
	}

	logger.Info("campaign dispatched",
		"campaignId", campaignID,
		"transport", string(settings.Transport),
		"total", result.Total,
		"sent", result.Sent,
		"failed", result.Failed,
	)

	return &result, nil
}

// resolveSettings fills in stored defaults and checks transport
// preconditions.
func (s *Service) resolveSettings(ctx context.Context, settings domain.SendSettings) (domain.SendSettings, error) {
	if settings.Transport == "" {
		stored, err := s.settings.GetSendSettings(ctx)
		if err != nil {
			return settings, fmt.Errorf("load send settings: %w", err)
		}
		settings = stored
	}
	switch settings.Transport {
	case domain.TransportSES:
		if settings.SES.AccessKey == "" || settings.SES.SecretKey == "" {
			return settings, ErrNoSESCreds
		}
	default:
		if settings.SMTP.Host == "" {
			return settings, ErrNoSMTPHost
		}
		settings.Transport = domain.TransportSMTP
	}
	return settings, nil
}

// PreviewInput selects what to render and the sample recipient.
type PreviewInput struct {
	Contact *domain.Contact `json:"contact,omitempty"`
}

// Preview renders the campaign's subject and body against a sample contact
// through the Liquid previewer. When no contact is given, the first contact
// of the campaign's list is used, falling back to a generic sample.
func (s *Service) Preview(ctx context.Context, campaignID string, input PreviewInput) (subject, body string, err error) {
	c, err := s.repo.Get(ctx, campaignID)
	if err != nil {
		return "", "", err
	}

	sample := s.sampleContact(ctx, c, input.Contact)

	subject, err = s.previewer.Render(c.ID+":subject", c.Subject, sample)
	if err != nil {
		return "", "", fmt.Errorf("render subject: %w", err)
	}
	body, err = s.previewer.Render(c.ID+":body", c.Body, sample)
	if err != nil {
		return "", "", fmt.Errorf("render body: %w", err)
	}
	return subject, body, nil
}

func (s *Service) sampleContact(ctx context.Context, c *domain.Campaign, explicit *domain.Contact) domain.Contact {
	if explicit != nil {
		return *explicit
	}
	if c.HasList() {
		if list, err := s.lists.GetList(ctx, *c.ContactListID); err == nil && len(list.Contacts) > 0 {
			return list.Contacts[0]
		}
	}
	return domain.Contact{
		Email:     "sample@example.com",
		FirstName: "Sam",
		LastName:  "Sample",
		Company:   "Example Co",
		Position:  "Manager",
	}
}
