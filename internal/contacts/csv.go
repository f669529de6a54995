package contacts

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/emailcraft/studio/internal/domain"
)

// Common header aliases for auto-mapping uploaded CSVs. Keys are contact
// field names, values the normalized headers that map to them.
var headerAliases = map[string][]string{
	"email":     {"email", "e-mail", "email address", "mail"},
	"firstName": {"firstname", "first name", "first", "given name"},
	"lastName":  {"lastname", "last name", "last", "surname", "family name"},
	"company":   {"company", "organization", "organisation", "employer"},
	"position":  {"position", "job title", "title", "role"},
}

// ImportResult summarizes a CSV import.
type ImportResult struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}

// ImportCSV parses r and appends its rows to the list. The first row must
// be a header; columns are matched case-insensitively against the known
// aliases and unknown columns are ignored. Rows without an email value are
// skipped, not errors.
func (s *Service) ImportCSV(ctx context.Context, listID string, r io.Reader) (*ImportResult, error) {
	if _, err := s.repo.GetList(ctx, listID); err != nil {
		return nil, err
	}

	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, ErrNoHeader
	}
	if err != nil {
		return nil, fmt.Errorf("read CSV header: %w", err)
	}

	cols := mapHeader(header)
	if _, ok := cols["email"]; !ok {
		return nil, ErrNoEmailColumn
	}

	result := &ImportResult{}
	var batch []domain.Contact
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read CSV row: %w", err)
		}

		email := field(record, cols, "email")
		if email == "" {
			result.Skipped++
			continue
		}

		batch = append(batch, domain.Contact{
			ID:        uuid.New().String(),
			ListID:    listID,
			Email:     email,
			FirstName: field(record, cols, "firstName"),
			LastName:  field(record, cols, "lastName"),
			Company:   field(record, cols, "company"),
			Position:  field(record, cols, "position"),
			CreatedAt: time.Now(),
		})
		result.Imported++
	}

	if len(batch) > 0 {
		if err := s.repo.AddContacts(ctx, listID, batch); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// ExportCSV writes the list's contacts to w in the canonical column order.
func (s *Service) ExportCSV(ctx context.Context, listID string, w io.Writer) error {
	l, err := s.repo.GetList(ctx, listID)
	if err != nil {
		return err
	}

	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"email", "firstName", "lastName", "company", "position"}); err != nil {
		return err
	}
	for _, c := range l.Contacts {
		if err := writer.Write([]string{c.Email, c.FirstName, c.LastName, c.Company, c.Position}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// mapHeader resolves header cells to contact field names by alias lookup.
// Returns field name -> column index for recognized columns only.
func mapHeader(header []string) map[string]int {
	cols := make(map[string]int)
	for i, cell := range header {
		normalized := normalizeHeader(cell)
		for fieldName, aliases := range headerAliases {
			if _, taken := cols[fieldName]; taken {
				continue
			}
			for _, alias := range aliases {
				if normalized == alias {
					cols[fieldName] = i
					break
				}
			}
		}
	}
	return cols
}

func normalizeHeader(cell string) string {
	cell = strings.TrimSpace(cell)
	cell = strings.Trim(cell, `"'`)
	return strings.ToLower(cell)
}

func field(record []string, cols map[string]int, name string) string {
	i, ok := cols[name]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}
