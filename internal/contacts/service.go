package contacts

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/emailcraft/studio/internal/domain"
	"github.com/emailcraft/studio/internal/sending"
)

// Service implements contact list business logic.
type Service struct {
	repo      Repository
	validator sending.AddressValidator
}

// NewService creates a contacts service. The validator backs the bulk
// VerifyList operation; pass the verify package's Validator in production.
func NewService(repo Repository, validator sending.AddressValidator) *Service {
	return &Service{repo: repo, validator: validator}
}

// CreateInput holds the fields for creating a contact list.
type CreateInput struct {
	Name     string         `json:"name"`
	Contacts []ContactInput `json:"contacts"`
}

// ContactInput holds the fields for adding a single contact.
type ContactInput struct {
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Company   string `json:"company"`
	Position  string `json:"position"`
}

// CreateList validates and persists a new list.
func (s *Service) CreateList(ctx context.Context, input CreateInput) (*domain.ContactList, error) {
	if input.Name == "" {
		return nil, fmt.Errorf("name is required")
	}

	l := &domain.ContactList{
		ID:        uuid.New().String(),
		Name:      input.Name,
		Contacts:  []domain.Contact{},
		CreatedAt: time.Now(),
	}
	for _, in := range input.Contacts {
		if in.Email == "" {
			continue
		}
		l.Contacts = append(l.Contacts, newContact(l.ID, in))
	}

	if err := s.repo.CreateList(ctx, l); err != nil {
		return nil, err
	}
	return l, nil
}

// GetList returns one list with its contacts.
func (s *Service) GetList(ctx context.Context, id string) (*domain.ContactList, error) {
	return s.repo.GetList(ctx, id)
}

// Lists returns all lists.
func (s *Service) Lists(ctx context.Context) ([]domain.ContactList, error) {
	return s.repo.Lists(ctx)
}

// RenameList updates a list's name.
func (s *Service) RenameList(ctx context.Context, id, name string) error {
	if name == "" {
		return fmt.Errorf("name is required")
	}
	return s.repo.RenameList(ctx, id, name)
}

// DeleteList removes a list and all its contacts.
func (s *Service) DeleteList(ctx context.Context, id string) error {
	return s.repo.DeleteList(ctx, id)
}

// AddContact appends a single contact to an existing list.
func (s *Service) AddContact(ctx context.Context, listID string, input ContactInput) (*domain.Contact, error) {
	if input.Email == "" {
		return nil, fmt.Errorf("email is required")
	}
	c := newContact(listID, input)
	if err := s.repo.AddContacts(ctx, listID, []domain.Contact{c}); err != nil {
		return nil, err
	}
	return &c, nil
}

// UpdateContact replaces a contact's fields.
func (s *Service) UpdateContact(ctx context.Context, c *domain.Contact) error {
	if c.Email == "" {
		return fmt.Errorf("email is required")
	}
	return s.repo.UpdateContact(ctx, c)
}

// DeleteContact removes one contact from a list.
func (s *Service) DeleteContact(ctx context.Context, listID, contactID string) error {
	return s.repo.DeleteContact(ctx, listID, contactID)
}

// VerifyResult summarizes a bulk list verification run.
type VerifyResult struct {
	Checked int `json:"checked"`
	Valid   int `json:"valid"`
	Invalid int `json:"invalid"`
}

// VerifyList runs address verification over every contact in the list and
// persists the outcome on each contact. A cancelled context stops the run;
// contacts already checked keep their result.
func (s *Service) VerifyList(ctx context.Context, listID string) (*VerifyResult, error) {
	l, err := s.repo.GetList(ctx, listID)
	if err != nil {
		return nil, err
	}

	result := &VerifyResult{}
	for _, c := range l.Contacts {
		if ctx.Err() != nil {
			return result, ctx.Err()
		}
		v := s.validator.Validate(ctx, c.Email)
		if v.IsValid {
			result.Valid++
		} else {
			result.Invalid++
		}
		result.Checked++
		if err := s.repo.SetValidation(ctx, c.ID, v.IsValid); err != nil {
			log.Printf("[contacts.Service] persist validation for %s: %v", c.ID, err)
		}
	}

	log.Printf("[contacts.Service] List %s: verified %d contacts (%d valid, %d invalid)", listID, result.Checked, result.Valid, result.Invalid)
	return result, nil
}

func newContact(listID string, in ContactInput) domain.Contact {
	return domain.Contact{
		ID:        uuid.New().String(),
		ListID:    listID,
		Email:     in.Email,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Company:   in.Company,
		Position:  in.Position,
		CreatedAt: time.Now(),
	}
}
