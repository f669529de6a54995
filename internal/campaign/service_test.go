package campaign_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emailcraft/studio/internal/campaign"
	"github.com/emailcraft/studio/internal/domain"
	"github.com/emailcraft/studio/internal/sending"
)

// memRepo is an in-memory campaign repository for unit testing.
type memRepo struct {
	mu        sync.Mutex
	campaigns map[string]*domain.Campaign
}

func newMemRepo() *memRepo {
	return &memRepo{campaigns: make(map[string]*domain.Campaign)}
}

func (m *memRepo) Get(_ context.Context, id string) (*domain.Campaign, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.campaigns[id]
	if !ok {
		return nil, campaign.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *memRepo) List(_ context.Context) ([]domain.Campaign, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Campaign
	for _, c := range m.campaigns {
		out = append(out, *c)
	}
	return out, nil
}

func (m *memRepo) Create(_ context.Context, c *domain.Campaign) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *c
	m.campaigns[cp.ID] = &cp
	return nil
}

func (m *memRepo) Update(_ context.Context, id string, u campaign.UpdateFields) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.campaigns[id]
	if !ok {
		return campaign.ErrNotFound
	}
	if u.Name != nil {
		c.Name = *u.Name
	}
	if u.Subject != nil {
		c.Subject = *u.Subject
	}
	if u.Body != nil {
		c.Body = *u.Body
	}
	if u.ContactListID != nil {
		c.ContactListID = u.ContactListID
	}
	return nil
}

func (m *memRepo) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.campaigns[id]; !ok {
		return campaign.ErrNotFound
	}
	delete(m.campaigns, id)
	return nil
}

func (m *memRepo) MarkSent(_ context.Context, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.campaigns[id]
	if !ok {
		return campaign.ErrNotFound
	}
	c.LastSentAt = &at
	return nil
}

// memSettings stores send settings in memory.
type memSettings struct {
	mu       sync.Mutex
	settings domain.SendSettings
}

func (m *memSettings) GetSendSettings(_ context.Context) (domain.SendSettings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.settings, nil
}

func (m *memSettings) SaveSendSettings(_ context.Context, s domain.SendSettings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings = s
	return nil
}

// memLists serves fixed contact lists.
type memLists struct {
	lists map[string]*domain.ContactList
}

func (m *memLists) GetList(_ context.Context, id string) (*domain.ContactList, error) {
	l, ok := m.lists[id]
	if !ok {
		return nil, errors.New("contact list not found")
	}
	return l, nil
}

type okValidator struct{}

func (okValidator) Validate(_ context.Context, _ string) domain.Validation {
	return domain.Validation{IsValid: true}
}

// fakeSender records sends and optionally fails specific addresses.
type fakeSender struct {
	mu       sync.Mutex
	sent     []string
	failWith map[string]error
	closed   int
}

func (f *fakeSender) Send(_ context.Context, msg *domain.EmailMessage) (*domain.SendResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.failWith[msg.Email]; ok {
		return nil, err
	}
	f.sent = append(f.sent, msg.Email)
	return &domain.SendResult{Success: true, SentAt: time.Now()}, nil
}

func (f *fakeSender) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed++
	return nil
}

type fixture struct {
	svc      *campaign.Service
	repo     *memRepo
	settings *memSettings
	sender   *fakeSender
}

func newFixture(t *testing.T, lists map[string]*domain.ContactList, opts ...campaign.Option) *fixture {
	t.Helper()
	f := &fixture{
		repo:     newMemRepo(),
		settings: &memSettings{},
		sender:   &fakeSender{},
	}
	opts = append([]campaign.Option{
		campaign.WithSenderFactory(func(_ domain.SendSettings) (sending.Sender, error) {
			return f.sender, nil
		}),
	}, opts...)
	f.svc = campaign.NewService(f.repo, f.settings, &memLists{lists: lists}, okValidator{}, opts...)
	return f
}

// memLocker is an in-process Locker for exercising the dispatch guard.
type memLocker struct {
	mu   sync.Mutex
	held map[string]bool
}

func (l *memLocker) TryLock(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held == nil {
		l.held = make(map[string]bool)
	}
	if l.held[key] {
		return false, nil
	}
	l.held[key] = true
	return true, nil
}

func (l *memLocker) Unlock(_ context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.held, key)
	return nil
}

func smtpSettings() domain.SendSettings {
	return domain.SendSettings{
		Transport: domain.TransportSMTP,
		SMTP:      domain.SmtpConfig{Host: "mail.example.com", User: "account@example.com"},
	}
}

func listOf(id string, emails ...string) *domain.ContactList {
	l := &domain.ContactList{ID: id, Name: "L"}
	for i, e := range emails {
		l.Contacts = append(l.Contacts, domain.Contact{ID: string(rune('a' + i)), ListID: id, Email: e})
	}
	return l
}

func TestCreateAndGet(t *testing.T) {
	f := newFixture(t, nil)

	c, err := f.svc.Create(context.Background(), campaign.CreateInput{
		Name: "Launch", Subject: "Hi", Body: "<p>hello</p>", ContactListID: "list-1",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, c.ID)
	require.NotNil(t, c.ContactListID)
	assert.Equal(t, "list-1", *c.ContactListID)

	got, err := f.svc.Get(context.Background(), c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Launch", got.Name)
	assert.Nil(t, got.LastSentAt)
}

func TestCreateValidation(t *testing.T) {
	f := newFixture(t, nil)

	_, err := f.svc.Create(context.Background(), campaign.CreateInput{Subject: "s"})
	assert.Error(t, err)
	_, err = f.svc.Create(context.Background(), campaign.CreateInput{Name: "n"})
	assert.Error(t, err)
}

func TestDispatchHappyPath(t *testing.T) {
	lists := map[string]*domain.ContactList{
		"list-1": listOf("list-1", "a@example.com", "b@example.com"),
	}
	f := newFixture(t, lists)

	c, err := f.svc.Create(context.Background(), campaign.CreateInput{
		Name: "Launch", Subject: "Hi {{firstName}}", Body: "<p>hi</p>", ContactListID: "list-1",
	})
	require.NoError(t, err)

	res, err := f.svc.Dispatch(context.Background(), c.ID, smtpSettings())
	require.NoError(t, err)

	assert.Equal(t, 2, res.Total)
	assert.Equal(t, 2, res.Sent)
	assert.Equal(t, 0, res.Failed)
	assert.Equal(t, []string{"a@example.com", "b@example.com"}, f.sender.sent)
	assert.Equal(t, 1, f.sender.closed)

	got, err := f.svc.Get(context.Background(), c.ID)
	require.NoError(t, err)
	assert.NotNil(t, got.LastSentAt)
}

func TestDispatchRejectedWhileLockHeld(t *testing.T) {
	lists := map[string]*domain.ContactList{
		"list-1": listOf("list-1", "a@example.com"),
	}
	locker := &memLocker{}
	f := newFixture(t, lists, campaign.WithLocker(locker))

	c, err := f.svc.Create(context.Background(), campaign.CreateInput{
		Name: "Launch", Subject: "Hi", Body: "<p>hi</p>", ContactListID: "list-1",
	})
	require.NoError(t, err)

	ok, err := locker.TryLock(context.Background(), "dispatch:"+c.ID)
	require.NoError(t, err)
	require.True(t, ok)

	_, err = f.svc.Dispatch(context.Background(), c.ID, smtpSettings())
	assert.ErrorIs(t, err, campaign.ErrDispatchRunning)
	assert.Empty(t, f.sender.sent)

	// Releasing the lock lets the next dispatch through, and the run
	// releases it again afterwards.
	require.NoError(t, locker.Unlock(context.Background(), "dispatch:"+c.ID))

	res, err := f.svc.Dispatch(context.Background(), c.ID, smtpSettings())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Sent)

	ok, err = locker.TryLock(context.Background(), "dispatch:"+c.ID)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestDispatchPartialFailureStillMarksSent(t *testing.T) {
	lists := map[string]*domain.ContactList{
		"list-1": listOf("list-1", "a@example.com", "down@example.com"),
	}
	f := newFixture(t, lists)
	f.sender.failWith = map[string]error{"down@example.com": errors.New("greylisted")}

	c, err := f.svc.Create(context.Background(), campaign.CreateInput{
		Name: "Launch", Subject: "Hi", ContactListID: "list-1",
	})
	require.NoError(t, err)

	res, err := f.svc.Dispatch(context.Background(), c.ID, smtpSettings())
	require.NoError(t, err)

	assert.Equal(t, 2, res.Total)
	assert.Equal(t, 1, res.Sent)
	assert.Equal(t, 1, res.Failed)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, "Failed to send to down@example.com: greylisted", res.Errors[0])

	got, _ := f.svc.Get(context.Background(), c.ID)
	assert.NotNil(t, got.LastSentAt)
}

func TestDispatchPreconditions(t *testing.T) {
	lists := map[string]*domain.ContactList{
		"empty": {ID: "empty", Name: "Empty"},
		"full":  listOf("full", "a@example.com"),
	}
	f := newFixture(t, lists)

	noList, err := f.svc.Create(context.Background(), campaign.CreateInput{Name: "n", Subject: "s"})
	require.NoError(t, err)
	emptyList, err := f.svc.Create(context.Background(), campaign.CreateInput{Name: "n", Subject: "s", ContactListID: "empty"})
	require.NoError(t, err)
	ready, err := f.svc.Create(context.Background(), campaign.CreateInput{Name: "n", Subject: "s", ContactListID: "full"})
	require.NoError(t, err)

	_, err = f.svc.Dispatch(context.Background(), "missing", smtpSettings())
	assert.ErrorIs(t, err, campaign.ErrNotFound)

	_, err = f.svc.Dispatch(context.Background(), ready.ID, domain.SendSettings{Transport: domain.TransportSMTP})
	assert.ErrorIs(t, err, campaign.ErrNoSMTPHost)

	_, err = f.svc.Dispatch(context.Background(), ready.ID, domain.SendSettings{Transport: domain.TransportSES})
	assert.ErrorIs(t, err, campaign.ErrNoSESCreds)

	_, err = f.svc.Dispatch(context.Background(), noList.ID, smtpSettings())
	assert.ErrorIs(t, err, campaign.ErrNoList)

	_, err = f.svc.Dispatch(context.Background(), emptyList.ID, smtpSettings())
	assert.ErrorIs(t, err, campaign.ErrEmptyList)

	// No precondition failure may reach the transport.
	assert.Empty(t, f.sender.sent)
	assert.Zero(t, f.sender.closed)
}

func TestDispatchFallsBackToStoredSettings(t *testing.T) {
	lists := map[string]*domain.ContactList{"full": listOf("full", "a@example.com")}
	f := newFixture(t, lists)
	require.NoError(t, f.svc.SaveSendSettings(context.Background(), smtpSettings()))

	c, err := f.svc.Create(context.Background(), campaign.CreateInput{Name: "n", Subject: "s", ContactListID: "full"})
	require.NoError(t, err)

	res, err := f.svc.Dispatch(context.Background(), c.ID, domain.SendSettings{})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Sent)
}

func TestDispatchNoStoredSettings(t *testing.T) {
	lists := map[string]*domain.ContactList{"full": listOf("full", "a@example.com")}
	f := newFixture(t, lists)

	c, err := f.svc.Create(context.Background(), campaign.CreateInput{Name: "n", Subject: "s", ContactListID: "full"})
	require.NoError(t, err)

	_, err = f.svc.Dispatch(context.Background(), c.ID, domain.SendSettings{})
	assert.ErrorIs(t, err, campaign.ErrNoSMTPHost)
}

func TestPreviewUsesFirstListContact(t *testing.T) {
	lists := map[string]*domain.ContactList{
		"full": {ID: "full", Contacts: []domain.Contact{
			{ID: "c1", Email: "ada@acme.example", FirstName: "Ada", Company: "Acme"},
		}},
	}
	f := newFixture(t, lists)

	c, err := f.svc.Create(context.Background(), campaign.CreateInput{
		Name: "n", Subject: "Hi {{ firstName }}", Body: "<p>{{ company }}</p>", ContactListID: "full",
	})
	require.NoError(t, err)

	subject, body, err := f.svc.Preview(context.Background(), c.ID, campaign.PreviewInput{})
	require.NoError(t, err)
	assert.Equal(t, "Hi Ada", subject)
	assert.Equal(t, "<p>Acme</p>", body)
}

func TestPreviewWithExplicitContact(t *testing.T) {
	f := newFixture(t, nil)

	c, err := f.svc.Create(context.Background(), campaign.CreateInput{
		Name: "n", Subject: `Hi {{ firstName | default: "there" }}`,
	})
	require.NoError(t, err)

	subject, _, err := f.svc.Preview(context.Background(), c.ID, campaign.PreviewInput{
		Contact: &domain.Contact{Email: "x@example.com"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Hi there", subject)
}

func TestUpdateInvalidatesPreviewCache(t *testing.T) {
	f := newFixture(t, nil)

	c, err := f.svc.Create(context.Background(), campaign.CreateInput{Name: "n", Subject: "Old {{ firstName }}"})
	require.NoError(t, err)

	sample := &domain.Contact{FirstName: "Ada"}
	subject, _, err := f.svc.Preview(context.Background(), c.ID, campaign.PreviewInput{Contact: sample})
	require.NoError(t, err)
	assert.Equal(t, "Old Ada", subject)

	newSubject := "New {{ firstName }}"
	require.NoError(t, f.svc.Update(context.Background(), c.ID, campaign.UpdateFields{Subject: &newSubject}))

	subject, _, err = f.svc.Preview(context.Background(), c.ID, campaign.PreviewInput{Contact: sample})
	require.NoError(t, err)
	assert.Equal(t, "New Ada", subject)
}
