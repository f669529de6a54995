package domain

import "time"

// Campaign holds the subject/body templates for one marketing email and an
// optional reference to the contact list it targets. A campaign cannot be
// dispatched while ContactListID is nil or the referenced list is empty;
// that precondition is enforced by the campaign service, not the dispatcher.
type Campaign struct {
	ID            string     `json:"id" db:"id"`
	Name          string     `json:"name" db:"name"`
	Subject       string     `json:"subject" db:"subject"`
	Body          string     `json:"body" db:"body"` // may contain HTML
	ContactListID *string    `json:"contactListId" db:"contact_list_id"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
	LastSentAt    *time.Time `json:"last_sent_at,omitempty" db:"last_sent_at"`
}

// HasList reports whether the campaign references a contact list.
func (c *Campaign) HasList() bool {
	return c.ContactListID != nil && *c.ContactListID != ""
}

// DispatchResult is the summary returned by one campaign-send invocation.
// It is the sole vehicle for reporting partial failure: per-recipient
// problems never abort a batch, they are tallied here.
//
// Invariants: Total == Sent + Failed, and len(Errors) == Failed with one
// diagnostic per failure in processing order.
type DispatchResult struct {
	Total  int      `json:"total"`
	Sent   int      `json:"sent"`
	Failed int      `json:"failed"`
	Errors []string `json:"errors"`
}

// Validation is the outcome of a deliverability check on a single address.
// Failures are reported as values, never as errors: an undeliverable-looking
// recipient must not abort a batch send.
type Validation struct {
	IsValid bool   `json:"isValid"`
	Reason  string `json:"reason"`
}
