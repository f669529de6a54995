package contacts_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emailcraft/studio/internal/contacts"
	"github.com/emailcraft/studio/internal/domain"
)

// memRepo is an in-memory contacts repository for unit testing.
type memRepo struct {
	mu    sync.Mutex
	lists map[string]*domain.ContactList
}

func newMemRepo() *memRepo {
	return &memRepo{lists: make(map[string]*domain.ContactList)}
}

func (m *memRepo) GetList(_ context.Context, id string) (*domain.ContactList, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.lists[id]
	if !ok {
		return nil, contacts.ErrListNotFound
	}
	cp := *l
	cp.Contacts = append([]domain.Contact(nil), l.Contacts...)
	return &cp, nil
}

func (m *memRepo) Lists(_ context.Context) ([]domain.ContactList, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.ContactList
	for _, l := range m.lists {
		out = append(out, *l)
	}
	return out, nil
}

func (m *memRepo) CreateList(_ context.Context, l *domain.ContactList) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *l
	m.lists[cp.ID] = &cp
	return nil
}

func (m *memRepo) RenameList(_ context.Context, id, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.lists[id]
	if !ok {
		return contacts.ErrListNotFound
	}
	l.Name = name
	return nil
}

func (m *memRepo) DeleteList(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.lists[id]; !ok {
		return contacts.ErrListNotFound
	}
	delete(m.lists, id)
	return nil
}

func (m *memRepo) AddContacts(_ context.Context, listID string, cs []domain.Contact) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.lists[listID]
	if !ok {
		return contacts.ErrListNotFound
	}
	l.Contacts = append(l.Contacts, cs...)
	return nil
}

func (m *memRepo) UpdateContact(_ context.Context, c *domain.Contact) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, l := range m.lists {
		for i := range l.Contacts {
			if l.Contacts[i].ID == c.ID {
				l.Contacts[i] = *c
				return nil
			}
		}
	}
	return contacts.ErrContactNotFound
}

func (m *memRepo) DeleteContact(_ context.Context, listID, contactID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.lists[listID]
	if !ok {
		return contacts.ErrListNotFound
	}
	for i := range l.Contacts {
		if l.Contacts[i].ID == contactID {
			l.Contacts = append(l.Contacts[:i], l.Contacts[i+1:]...)
			return nil
		}
	}
	return contacts.ErrContactNotFound
}

func (m *memRepo) SetValidation(_ context.Context, contactID string, isValid bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, l := range m.lists {
		for i := range l.Contacts {
			if l.Contacts[i].ID == contactID {
				v := isValid
				l.Contacts[i].IsValid = &v
				return nil
			}
		}
	}
	return contacts.ErrContactNotFound
}

// stubValidator marks addresses containing "bad" as invalid.
type stubValidator struct{}

func (stubValidator) Validate(_ context.Context, address string) domain.Validation {
	if len(address) >= 3 && address[:3] == "bad" {
		return domain.Validation{IsValid: false, Reason: "No MX records"}
	}
	return domain.Validation{IsValid: true}
}

func newService(t *testing.T) (*contacts.Service, *memRepo) {
	t.Helper()
	repo := newMemRepo()
	return contacts.NewService(repo, stubValidator{}), repo
}

func TestCreateListWithContacts(t *testing.T) {
	svc, _ := newService(t)

	l, err := svc.CreateList(context.Background(), contacts.CreateInput{
		Name: "Prospects",
		Contacts: []contacts.ContactInput{
			{Email: "a@example.com", FirstName: "Ada"},
			{Email: ""}, // no email, dropped
			{Email: "b@example.com", Company: "B Co"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "Prospects", l.Name)
	assert.NotEmpty(t, l.ID)
	require.Len(t, l.Contacts, 2)
	assert.Equal(t, l.ID, l.Contacts[0].ListID)

	got, err := svc.GetList(context.Background(), l.ID)
	require.NoError(t, err)
	assert.Len(t, got.Contacts, 2)
}

func TestCreateListRequiresName(t *testing.T) {
	svc, _ := newService(t)
	_, err := svc.CreateList(context.Background(), contacts.CreateInput{})
	assert.Error(t, err)
}

func TestGetListNotFound(t *testing.T) {
	svc, _ := newService(t)
	_, err := svc.GetList(context.Background(), "missing")
	assert.ErrorIs(t, err, contacts.ErrListNotFound)
}

func TestRenameAndDeleteList(t *testing.T) {
	svc, _ := newService(t)
	l, err := svc.CreateList(context.Background(), contacts.CreateInput{Name: "Old"})
	require.NoError(t, err)

	require.NoError(t, svc.RenameList(context.Background(), l.ID, "New"))
	got, err := svc.GetList(context.Background(), l.ID)
	require.NoError(t, err)
	assert.Equal(t, "New", got.Name)

	require.NoError(t, svc.DeleteList(context.Background(), l.ID))
	_, err = svc.GetList(context.Background(), l.ID)
	assert.ErrorIs(t, err, contacts.ErrListNotFound)
}

func TestAddContactRequiresEmail(t *testing.T) {
	svc, _ := newService(t)
	l, err := svc.CreateList(context.Background(), contacts.CreateInput{Name: "L"})
	require.NoError(t, err)

	_, err = svc.AddContact(context.Background(), l.ID, contacts.ContactInput{FirstName: "NoEmail"})
	assert.Error(t, err)

	c, err := svc.AddContact(context.Background(), l.ID, contacts.ContactInput{Email: "x@example.com"})
	require.NoError(t, err)
	assert.Equal(t, l.ID, c.ListID)
}

func TestDeleteContact(t *testing.T) {
	svc, _ := newService(t)
	l, err := svc.CreateList(context.Background(), contacts.CreateInput{
		Name:     "L",
		Contacts: []contacts.ContactInput{{Email: "a@example.com"}, {Email: "b@example.com"}},
	})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteContact(context.Background(), l.ID, l.Contacts[0].ID))
	got, err := svc.GetList(context.Background(), l.ID)
	require.NoError(t, err)
	require.Len(t, got.Contacts, 1)
	assert.Equal(t, "b@example.com", got.Contacts[0].Email)

	err = svc.DeleteContact(context.Background(), l.ID, "missing")
	assert.ErrorIs(t, err, contacts.ErrContactNotFound)
}

func TestVerifyListPersistsOutcomes(t *testing.T) {
	svc, _ := newService(t)
	l, err := svc.CreateList(context.Background(), contacts.CreateInput{
		Name: "L",
		Contacts: []contacts.ContactInput{
			{Email: "good@example.com"},
			{Email: "bad@example.com"},
		},
	})
	require.NoError(t, err)

	res, err := svc.VerifyList(context.Background(), l.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Checked)
	assert.Equal(t, 1, res.Valid)
	assert.Equal(t, 1, res.Invalid)

	got, err := svc.GetList(context.Background(), l.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Contacts[0].IsValid)
	assert.True(t, *got.Contacts[0].IsValid)
	require.NotNil(t, got.Contacts[1].IsValid)
	assert.False(t, *got.Contacts[1].IsValid)
}
