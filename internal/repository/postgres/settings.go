package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/emailcraft/studio/internal/domain"
)

// SettingsRepo implements campaign.SettingsRepository. Send settings live in
// a single-row table; an absent row reads back as the zero value.
type SettingsRepo struct{ db *sql.DB }

// NewSettingsRepo creates a Postgres-backed settings repository.
func NewSettingsRepo(db *sql.DB) *SettingsRepo { return &SettingsRepo{db: db} }

func (r *SettingsRepo) GetSendSettings(ctx context.Context) (domain.SendSettings, error) {
	var s domain.SendSettings
	err := r.db.QueryRowContext(ctx, `
		SELECT transport,
		       COALESCE(smtp_host,''), COALESCE(smtp_port,0), COALESCE(smtp_secure,false),
		       COALESCE(smtp_user,''), COALESCE(smtp_pass,''),
		       COALESCE(ses_access_key,''), COALESCE(ses_secret_key,''),
		       COALESCE(ses_region,''), COALESCE(ses_from_email,'')
		FROM emailcraft_send_settings
		WHERE id = 1
	`).Scan(
		&s.Transport,
		&s.SMTP.Host, &s.SMTP.Port, &s.SMTP.Secure, &s.SMTP.User, &s.SMTP.Pass,
		&s.SES.AccessKey, &s.SES.SecretKey, &s.SES.Region, &s.SES.FromEmail,
	)
	if err == sql.ErrNoRows {
		return domain.SendSettings{}, nil
	}
	if err != nil {
		return domain.SendSettings{}, fmt.Errorf("get send settings: %w", err)
	}
	return s, nil
}

func (r *SettingsRepo) SaveSendSettings(ctx context.Context, s domain.SendSettings) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO emailcraft_send_settings
			(id, transport, smtp_host, smtp_port, smtp_secure, smtp_user, smtp_pass,
			 ses_access_key, ses_secret_key, ses_region, ses_from_email, updated_at)
		VALUES (1, $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW())
		ON CONFLICT (id) DO UPDATE SET
			transport = EXCLUDED.transport,
			smtp_host = EXCLUDED.smtp_host,
			smtp_port = EXCLUDED.smtp_port,
			smtp_secure = EXCLUDED.smtp_secure,
			smtp_user = EXCLUDED.smtp_user,
			smtp_pass = EXCLUDED.smtp_pass,
			ses_access_key = EXCLUDED.ses_access_key,
			ses_secret_key = EXCLUDED.ses_secret_key,
			ses_region = EXCLUDED.ses_region,
			ses_from_email = EXCLUDED.ses_from_email,
			updated_at = NOW()
	`, s.Transport, s.SMTP.Host, s.SMTP.Port, s.SMTP.Secure, s.SMTP.User, s.SMTP.Pass,
		s.SES.AccessKey, s.SES.SecretKey, s.SES.Region, s.SES.FromEmail)
	if err != nil {
		return fmt.Errorf("save send settings: %w", err)
	}
	return nil
}
