package sending

import (
	"context"

	"github.com/emailcraft/studio/internal/domain"
)

// DefaultFromName is the display name used on outgoing campaign mail.
const DefaultFromName = "EmailCraft Studio"

// Sender delivers a single prepared message. A non-nil error means the
// message was not accepted by the transport; the dispatcher records it and
// moves on to the next contact. Close releases any underlying session and
// must be safe to call even if nothing was ever sent.
type Sender interface {
	Send(ctx context.Context, msg *domain.EmailMessage) (*domain.SendResult, error)
	Close() error
}
