package contacts

import (
	"context"

	"github.com/emailcraft/studio/internal/domain"
)

// Repository defines the data access contract for contact lists.
// Implementations must be safe for concurrent use.
type Repository interface {
	// GetList returns a list with its contacts in insertion order.
	// Returns ErrListNotFound if it doesn't exist.
	GetList(ctx context.Context, id string) (*domain.ContactList, error)

	// Lists returns all lists (contacts included), newest first.
	Lists(ctx context.Context) ([]domain.ContactList, error)

	// CreateList inserts a new list and its contacts.
	CreateList(ctx context.Context, l *domain.ContactList) error

	// RenameList updates a list's name.
	RenameList(ctx context.Context, id, name string) error

	// DeleteList removes a list and its contacts.
	DeleteList(ctx context.Context, id string) error

	// AddContacts appends contacts to an existing list.
	AddContacts(ctx context.Context, listID string, cs []domain.Contact) error

	// UpdateContact replaces the mutable fields of a contact.
	UpdateContact(ctx context.Context, c *domain.Contact) error

	// DeleteContact removes one contact from a list.
	DeleteContact(ctx context.Context, listID, contactID string) error

	// SetValidation records a verification outcome for a contact.
	SetValidation(ctx context.Context, contactID string, isValid bool) error
}
