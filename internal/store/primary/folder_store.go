package primary

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"mailsift/internal/models"
	"mailsift/internal/store"
)

func (s *StoreImpl) CreateFolder(ctx context.Context, folder *models.Folder) error {
	query := `
		INSERT INTO folders (path, created_at)
		VALUES ($1, $2)
		RETURNING id, created_at`

	err := s.db.QueryRow(ctx, query, folder.Path, time.Now()).
		Scan(&folder.ID, &folder.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			return fmt.Errorf("folder '%s' already exists: %w", folder.Path, store.ErrDuplicate)
		}
		return fmt.Errorf("failed to insert folder: %w", err)
	}
	return nil
}

func (s *StoreImpl) GetFolderByPath(ctx context.Context, path string) (*models.Folder, error) {
	query := `SELECT id, path, created_at FROM folders WHERE path = $1`
	folder := &models.Folder{}
	err := s.db.QueryRow(ctx, query, path).Scan(&folder.ID, &folder.Path, &folder.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get folder by path '%s': %w", path, err)
	}
	return folder, nil
}

func (s *StoreImpl) GetOrCreateFolder(ctx context.Context, path string) (*models.Folder, error) {
	// ON CONFLICT DO UPDATE so the RETURNING clause fires for the existing
	// row too; racing creators converge on the same folder.
	query := `
		INSERT INTO folders (path, created_at)
		VALUES ($1, $2)
		ON CONFLICT (path) DO UPDATE SET path = EXCLUDED.path
		RETURNING id, path, created_at`

	folder := &models.Folder{}
	err := s.db.QueryRow(ctx, query, path, time.Now()).
		Scan(&folder.ID, &folder.Path, &folder.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to get or create folder '%s': %w", path, err)
	}
	return folder, nil
}

func (s *StoreImpl) ListFolders(ctx context.Context) ([]*models.Folder, error) {
	query := `SELECT id, path, created_at FROM folders ORDER BY path`
	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list folders: %w", err)
	}
	defer rows.Close()

	var folders []*models.Folder
	for rows.Next() {
		folder := &models.Folder{}
		if err := rows.Scan(&folder.ID, &folder.Path, &folder.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan folder row: %w", err)
		}
		folders = append(folders, folder)
	}
	return folders, rows.Err()
}
