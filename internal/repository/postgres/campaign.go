package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/emailcraft/studio/internal/campaign"
	"github.com/emailcraft/studio/internal/domain"
)

// CampaignRepo implements campaign.Repository against PostgreSQL.
type CampaignRepo struct{ db *sql.DB }

// NewCampaignRepo creates a Postgres-backed campaign repository.
func NewCampaignRepo(db *sql.DB) *CampaignRepo { return &CampaignRepo{db: db} }

func (r *CampaignRepo) Get(ctx context.Context, id string) (*domain.Campaign, error) {
	c := &domain.Campaign{}
	var listID sql.NullString
	var lastSent sql.NullTime
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, subject, COALESCE(body,''), contact_list_id, created_at, last_sent_at
		FROM emailcraft_campaigns
		WHERE id = $1
	`, id).Scan(&c.ID, &c.Name, &c.Subject, &c.Body, &listID, &c.CreatedAt, &lastSent)
	if err == sql.ErrNoRows {
		return nil, campaign.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get campaign: %w", err)
	}
	if listID.Valid {
		c.ContactListID = &listID.String
	}
	if lastSent.Valid {
		c.LastSentAt = &lastSent.Time
	}
	return c, nil
}

func (r *CampaignRepo) List(ctx context.Context) ([]domain.Campaign, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, subject, COALESCE(body,''), contact_list_id, created_at, last_sent_at
		FROM emailcraft_campaigns
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list campaigns: %w", err)
	}
	defer rows.Close()

	out := []domain.Campaign{}
	for rows.Next() {
		var c domain.Campaign
		var listID sql.NullString
		var lastSent sql.NullTime
		if err := rows.Scan(&c.ID, &c.Name, &c.Subject, &c.Body, &listID, &c.CreatedAt, &lastSent); err != nil {
			return nil, fmt.Errorf("scan campaign: %w", err)
		}
		if listID.Valid {
			c.ContactListID = &listID.String
		}
		if lastSent.Valid {
			c.LastSentAt = &lastSent.Time
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *CampaignRepo) Create(ctx context.Context, c *domain.Campaign) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO emailcraft_campaigns (id, name, subject, body, contact_list_id, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
	`, c.ID, c.Name, c.Subject, c.Body, c.ContactListID)
	if err != nil {
		return fmt.Errorf("create campaign: %w", err)
	}
	return nil
}

func (r *CampaignRepo) Update(ctx context.Context, id string, u campaign.UpdateFields) error {
	sets := []string{}
	args := []interface{}{id}
	idx := 2

	add := func(col string, v interface{}) {
		sets = append(sets, fmt.Sprintf("%s = $%d", col, idx))
		args = append(args, v)
		idx++
	}
	if u.Name != nil {
		add("name", *u.Name)
	}
	if u.Subject != nil {
		add("subject", *u.Subject)
	}
	if u.Body != nil {
		add("body", *u.Body)
	}
	if u.ContactListID != nil {
		add("contact_list_id", *u.ContactListID)
	}
	if len(sets) == 0 {
		return nil
	}

	q := "UPDATE emailcraft_campaigns SET "
	for i, s := range sets {
		if i > 0 {
			q += ", "
		}
		q += s
	}
	q += " WHERE id = $1"

	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return fmt.Errorf("update campaign: %w", err)
	}
	return requireRow(res, campaign.ErrNotFound)
}

func (r *CampaignRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM emailcraft_campaigns WHERE id = $1
	`, id)
	if err != nil {
		return fmt.Errorf("delete campaign: %w", err)
	}
	return requireRow(res, campaign.ErrNotFound)
}

func (r *CampaignRepo) MarkSent(ctx context.Context, id string, at time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE emailcraft_campaigns SET last_sent_at = $2 WHERE id = $1
	`, id, at)
	if err != nil {
		return fmt.Errorf("mark campaign sent: %w", err)
	}
	return requireRow(res, campaign.ErrNotFound)
}
