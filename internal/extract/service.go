package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/emailcraft/studio/internal/contacts"
	"github.com/emailcraft/studio/internal/personalize"
)

// Completer is the slice of the OpenAI client the service needs.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// Service extracts contacts from pasted text and drafts campaign copy.
type Service struct {
	client Completer
}

// NewService creates an extract service.
func NewService(client Completer) *Service {
	return &Service{client: client}
}

const extractSystemPrompt = "You are a data extraction assistant. " +
	"Extract contact records from the user's text and respond ONLY with a JSON array. " +
	`Each element has the keys "email", "firstName", "lastName", "company", "position". ` +
	"Use an empty string for anything the text does not state. Never invent data."

// ExtractContacts pulls structured contacts out of free-form text such as a
// pasted signature block or a conference attendee list. Entries without an
// email address are dropped; duplicate addresses are merged, keeping the
// most complete fields.
func (s *Service) ExtractContacts(ctx context.Context, text string) ([]contacts.ContactInput, error) {
	if strings.TrimSpace(text) == "" {
		return []contacts.ContactInput{}, nil
	}

	raw, err := s.client.Complete(ctx, extractSystemPrompt, text)
	if err != nil {
		return nil, err
	}

	var parsed []contacts.ContactInput
	if err := json.Unmarshal([]byte(stripFences(raw)), &parsed); err != nil {
		return nil, fmt.Errorf("parse extracted contacts: %w", err)
	}

	return mergeContacts(parsed), nil
}

// Draft is a generated campaign skeleton.
type Draft struct {
	Name    string `json:"name"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// DraftCampaign writes campaign copy for the given description. The prompt
// pins the generator to the personalization vocabulary, so drafts come back
// ready for dispatch-time substitution.
func (s *Service) DraftCampaign(ctx context.Context, description string) (*Draft, error) {
	if strings.TrimSpace(description) == "" {
		return nil, fmt.Errorf("description is required")
	}

	system := "You are an email marketing copywriter. " +
		`Respond ONLY with a JSON object with the keys "name", "subject" and "body". ` +
		"The body is HTML. Personalize using exactly these tokens where natural: " +
		strings.Join(personalize.Tokens(), ", ") + ". Do not use any other placeholder syntax."

	raw, err := s.client.Complete(ctx, system, description)
	if err != nil {
		return nil, err
	}

	var draft Draft
	if err := json.Unmarshal([]byte(stripFences(raw)), &draft); err != nil {
		return nil, fmt.Errorf("parse campaign draft: %w", err)
	}
	if draft.Subject == "" {
		return nil, fmt.Errorf("draft has no subject")
	}
	return &draft, nil
}

// stripFences removes a markdown code fence if the model wrapped its JSON
// in one.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// mergeContacts drops entries without an email and merges duplicates by
// address, preferring non-empty fields from later entries.
func mergeContacts(in []contacts.ContactInput) []contacts.ContactInput {
	out := []contacts.ContactInput{}
	index := make(map[string]int)

	for _, c := range in {
		c.Email = strings.TrimSpace(c.Email)
		if c.Email == "" {
			continue
		}
		key := strings.ToLower(c.Email)
		i, seen := index[key]
		if !seen {
			index[key] = len(out)
			out = append(out, c)
			continue
		}
		merged := &out[i]
		if merged.FirstName == "" {
			merged.FirstName = c.FirstName
		}
		if merged.LastName == "" {
			merged.LastName = c.LastName
		}
		if merged.Company == "" {
			merged.Company = c.Company
		}
		if merged.Position == "" {
			merged.Position = c.Position
		}
	}
	return out
}
