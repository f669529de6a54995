package campaign

import "errors"

// Sentinel errors for the campaign service layer. The dispatch
// preconditions map to 412 at the HTTP layer.
var (
	ErrNotFound   = errors.New("campaign not found")
	ErrNoSMTPHost = errors.New("SMTP host not configured")
	ErrNoSESCreds = errors.New("SES credentials not configured")
	ErrNoList     = errors.New("campaign has no contact list")
	ErrEmptyList  = errors.New("contact list has no contacts")

	// ErrDispatchRunning means another dispatch of the same campaign holds
	// the lock. Maps to 409 at the HTTP layer.
	ErrDispatchRunning = errors.New("campaign dispatch already in progress")
)
