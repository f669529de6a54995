package campaign

import (
	"context"
	"time"

	"github.com/emailcraft/studio/internal/domain"
)

// Repository defines the data access contract for campaigns.
// Implementations must be safe for concurrent use.
type Repository interface {
	// Get returns a single campaign. Returns ErrNotFound if it doesn't exist.
	Get(ctx context.Context, id string) (*domain.Campaign, error)

	// List returns all campaigns, newest first.
	List(ctx context.Context) ([]domain.Campaign, error)

	// Create inserts a new campaign.
	Create(ctx context.Context, c *domain.Campaign) error

	// Update modifies a campaign. Only non-nil fields are applied.
	Update(ctx context.Context, id string, u UpdateFields) error

	// Delete removes a campaign.
	Delete(ctx context.Context, id string) error

	// MarkSent records the completion time of a dispatch run.
	MarkSent(ctx context.Context, id string, at time.Time) error
}

// SettingsRepository stores the workspace's default send settings.
type SettingsRepository interface {
	// GetSendSettings returns the stored settings, or a zero value when
	// none have been saved yet.
	GetSendSettings(ctx context.Context) (domain.SendSettings, error)

	// SaveSendSettings replaces the stored settings.
	SaveSendSettings(ctx context.Context, s domain.SendSettings) error
}

// ListProvider loads contact lists for dispatch. The contacts repository
// satisfies this.
type ListProvider interface {
	GetList(ctx context.Context, id string) (*domain.ContactList, error)
}

// UpdateFields holds the mutable fields for a campaign update.
// Nil fields are not applied.
type UpdateFields struct {
	Name          *string
	Subject       *string
	Body          *string
	ContactListID *string
}
