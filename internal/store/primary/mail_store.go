package primary

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"mailsift/internal/models"
	"mailsift/internal/store"
)

const mailColumns = `
	m.id, m.subject, m.sender, m.snippet,
	m.folder_id, f.path, m.is_new_folder, m.confidence, m.reason, m.classified_at, m.created_at`

func scanMail(row pgx.Row, dest *models.Mail) error {
	return row.Scan(
		&dest.ID,
		&dest.Subject,
		&dest.Sender,
		&dest.Snippet,
		&dest.FolderID,
		&dest.FolderPath,
		&dest.IsNewFolder,
		&dest.Confidence,
		&dest.Reason,
		&dest.ClassifiedAt,
		&dest.CreatedAt,
	)
}

func (s *StoreImpl) UpsertMail(ctx context.Context, mail *models.Mail) error {
	query := `
		INSERT INTO mails (id, subject, sender, snippet, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE
		SET subject = EXCLUDED.subject,
		    sender  = EXCLUDED.sender,
		    snippet = EXCLUDED.snippet
		RETURNING created_at`

	err := s.db.QueryRow(ctx, query,
		mail.ID, mail.Subject, mail.Sender, mail.Snippet, time.Now(),
	).Scan(&mail.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert mail '%s': %w", mail.ID, err)
	}
	return nil
}

func (s *StoreImpl) GetMail(ctx context.Context, id string) (*models.Mail, error) {
	query := `
		SELECT ` + mailColumns + `
		FROM mails m
		LEFT JOIN folders f ON f.id = m.folder_id
		WHERE m.id = $1`

	mail := &models.Mail{}
	if err := scanMail(s.db.QueryRow(ctx, query, id), mail); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get mail '%s': %w", id, err)
	}
	return mail, nil
}

func (s *StoreImpl) ListMails(ctx context.Context, limit, offset int) ([]*models.Mail, error) {
	query := `
		SELECT ` + mailColumns + `
		FROM mails m
		LEFT JOIN folders f ON f.id = m.folder_id
		ORDER BY m.created_at DESC
		LIMIT $1 OFFSET $2`

	return s.queryMails(ctx, query, limit, offset)
}

func (s *StoreImpl) ListUnclassified(ctx context.Context, limit int) ([]*models.Mail, error) {
	query := `
		SELECT ` + mailColumns + `
		FROM mails m
		LEFT JOIN folders f ON f.id = m.folder_id
		WHERE m.folder_id IS NULL
		ORDER BY m.created_at ASC
		LIMIT $1`

	return s.queryMails(ctx, query, limit)
}

func (s *StoreImpl) queryMails(ctx context.Context, query string, args ...any) ([]*models.Mail, error) {
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query mails: %w", err)
	}
	defer rows.Close()

	var mails []*models.Mail
	for rows.Next() {
		mail := &models.Mail{}
		if err := scanMail(rows, mail); err != nil {
			return nil, fmt.Errorf("failed to scan mail row: %w", err)
		}
		mails = append(mails, mail)
	}
	return mails, rows.Err()
}

func (s *StoreImpl) CountUnclassified(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM mails WHERE folder_id IS NULL`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count unclassified mails: %w", err)
	}
	return count, nil
}

func (s *StoreImpl) AssignFolder(ctx context.Context, mailID string, folderID int64, isNewFolder bool, confidence float64, reason string) error {
	query := `
		UPDATE mails
		SET folder_id = $2, is_new_folder = $3, confidence = $4, reason = $5, classified_at = $6
		WHERE id = $1`

	tag, err := s.db.Exec(ctx, query, mailID, folderID, isNewFolder, confidence, reason, time.Now())
	if err != nil {
		return fmt.Errorf("failed to assign folder to mail '%s': %w", mailID, err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *StoreImpl) ClearClassifications(ctx context.Context) (int64, error) {
	query := `
		UPDATE mails
		SET folder_id = NULL, is_new_folder = FALSE, confidence = NULL, reason = NULL, classified_at = NULL
		WHERE folder_id IS NOT NULL`

	tag, err := s.db.Exec(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("failed to clear classifications: %w", err)
	}
	return tag.RowsAffected(), nil
}
