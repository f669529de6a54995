package domain

import "time"

// Contact is a single recipient. Email is the only required field; the
// remaining identity fields default to empty and substitute as empty strings
// during personalization.
type Contact struct {
	ID        string `json:"id" db:"id"`
	ListID    string `json:"list_id" db:"list_id"`
	Email     string `json:"email" db:"email"`
	FirstName string `json:"firstName" db:"first_name"`
	LastName  string `json:"lastName" db:"last_name"`
	Company   string `json:"company" db:"company"`
	Position  string `json:"position" db:"position"`

	// IsValid is tri-state: nil means the address has never been validated,
	// otherwise it holds the outcome of the most recent MX check.
	IsValid *bool `json:"isValid,omitempty" db:"is_valid"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// ContactList is an ordered, owning collection of contacts. Deleting a list
// cascades to its contacts; a contact has no existence outside a list.
type ContactList struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Contacts  []Contact `json:"contacts,omitempty"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
