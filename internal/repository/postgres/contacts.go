// Package postgres implements the service repositories against PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/emailcraft/studio/internal/contacts"
	"github.com/emailcraft/studio/internal/domain"
)

// ContactsRepo implements contacts.Repository against PostgreSQL.
type ContactsRepo struct{ db *sql.DB }

// NewContactsRepo creates a Postgres-backed contacts repository.
func NewContactsRepo(db *sql.DB) *ContactsRepo { return &ContactsRepo{db: db} }

func (r *ContactsRepo) GetList(ctx context.Context, id string) (*domain.ContactList, error) {
	l := &domain.ContactList{}
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, created_at
		FROM emailcraft_contact_lists
		WHERE id = $1
	`, id).Scan(&l.ID, &l.Name, &l.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, contacts.ErrListNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get contact list: %w", err)
	}

	l.Contacts, err = r.listContacts(ctx, id)
	if err != nil {
		return nil, err
	}
	return l, nil
}

func (r *ContactsRepo) Lists(ctx context.Context) ([]domain.ContactList, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, created_at
		FROM emailcraft_contact_lists
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list contact lists: %w", err)
	}
	defer rows.Close()

	var out []domain.ContactList
	index := make(map[string]int)
	for rows.Next() {
		var l domain.ContactList
		if err := rows.Scan(&l.ID, &l.Name, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan contact list: %w", err)
		}
		l.Contacts = []domain.Contact{}
		index[l.ID] = len(out)
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// One pass over all contacts instead of a query per list.
	crows, err := r.db.QueryContext(ctx, `
		SELECT id, list_id, email, COALESCE(first_name,''), COALESCE(last_name,''),
		       COALESCE(company,''), COALESCE(position,''), is_valid, created_at
		FROM emailcraft_contacts
		ORDER BY created_at ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}
	defer crows.Close()

	for crows.Next() {
		c, err := scanContact(crows)
		if err != nil {
			return nil, err
		}
		if i, ok := index[c.ListID]; ok {
			out[i].Contacts = append(out[i].Contacts, c)
		}
	}
	return out, crows.Err()
}

func (r *ContactsRepo) CreateList(ctx context.Context, l *domain.ContactList) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if l.ID == "" {
		l.ID = uuid.New().String()
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO emailcraft_contact_lists (id, name, created_at)
		VALUES ($1, $2, NOW())
	`, l.ID, l.Name); err != nil {
		return fmt.Errorf("create contact list: %w", err)
	}

	for i := range l.Contacts {
		l.Contacts[i].ListID = l.ID
		if err := insertContact(ctx, tx, &l.Contacts[i]); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (r *ContactsRepo) RenameList(ctx context.Context, id, name string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE emailcraft_contact_lists SET name = $2 WHERE id = $1
	`, id, name)
	if err != nil {
		return fmt.Errorf("rename contact list: %w", err)
	}
	return requireRow(res, contacts.ErrListNotFound)
}

func (r *ContactsRepo) DeleteList(ctx context.Context, id string) error {
	// Contacts cascade via FK.
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM emailcraft_contact_lists WHERE id = $1
	`, id)
	if err != nil {
		return fmt.Errorf("delete contact list: %w", err)
	}
	return requireRow(res, contacts.ErrListNotFound)
}

func (r *ContactsRepo) AddContacts(ctx context.Context, listID string, cs []domain.Contact) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	for i := range cs {
		cs[i].ListID = listID
		if err := insertContact(ctx, tx, &cs[i]); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (r *ContactsRepo) UpdateContact(ctx context.Context, c *domain.Contact) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE emailcraft_contacts
		SET email = $2, first_name = $3, last_name = $4, company = $5, position = $6
		WHERE id = $1
	`, c.ID, c.Email, c.FirstName, c.LastName, c.Company, c.Position)
	if err != nil {
		return fmt.Errorf("update contact: %w", err)
	}
	return requireRow(res, contacts.ErrContactNotFound)
}

func (r *ContactsRepo) DeleteContact(ctx context.Context, listID, contactID string) error {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM emailcraft_contacts WHERE id = $1 AND list_id = $2
	`, contactID, listID)
	if err != nil {
		return fmt.Errorf("delete contact: %w", err)
	}
	return requireRow(res, contacts.ErrContactNotFound)
}

func (r *ContactsRepo) SetValidation(ctx context.Context, contactID string, isValid bool) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE emailcraft_contacts SET is_valid = $2 WHERE id = $1
	`, contactID, isValid)
	if err != nil {
		return fmt.Errorf("set contact validation: %w", err)
	}
	return requireRow(res, contacts.ErrContactNotFound)
}

func (r *ContactsRepo) listContacts(ctx context.Context, listID string) ([]domain.Contact, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, list_id, email, COALESCE(first_name,''), COALESCE(last_name,''),
		       COALESCE(company,''), COALESCE(position,''), is_valid, created_at
		FROM emailcraft_contacts
		WHERE list_id = $1
		ORDER BY created_at ASC
	`, listID)
	if err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}
	defer rows.Close()

	out := []domain.Contact{}
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func insertContact(ctx context.Context, tx *sql.Tx, c *domain.Contact) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	_, err := tx.ExecContext(ctx, `
		INSERT INTO emailcraft_contacts
			(id, list_id, email, first_name, last_name, company, position, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
	`, c.ID, c.ListID, c.Email, c.FirstName, c.LastName, c.Company, c.Position)
	if err != nil {
		return fmt.Errorf("insert contact: %w", err)
	}
	return nil
}

func scanContact(rows *sql.Rows) (domain.Contact, error) {
	var c domain.Contact
	var isValid sql.NullBool
	if err := rows.Scan(&c.ID, &c.ListID, &c.Email, &c.FirstName, &c.LastName,
		&c.Company, &c.Position, &isValid, &c.CreatedAt); err != nil {
		return c, fmt.Errorf("scan contact: %w", err)
	}
	if isValid.Valid {
		v := isValid.Bool
		c.IsValid = &v
	}
	return c, nil
}

func requireRow(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}
