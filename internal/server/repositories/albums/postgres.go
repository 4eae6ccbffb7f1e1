package albums

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/snapster/internal/common"
	"github.com/dmitrijs2005/snapster/internal/dbx"
	"github.com/dmitrijs2005/snapster/internal/server/models"
	"github.com/dmitrijs2005/snapster/internal/server/repositories/files"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, userID, name string) (*models.Album, error) {
	query := `
		INSERT INTO albums (user_id, name)
		VALUES ($1, $2)
		RETURNING id, user_id, name, created_at, updated_at
	`
	a := &models.Album{}
	if err := r.db.QueryRowContext(ctx, query, userID, name).
		Scan(&a.ID, &a.UserID, &a.Name, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return a, nil
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID string, previewLimit int) ([]*models.AlbumSummary, error) {
	query := `
		SELECT a.id, a.user_id, a.name, a.created_at, a.updated_at, COUNT(af.file_id)
		FROM albums a
		LEFT JOIN album_files af ON af.album_id = a.id
		WHERE a.user_id = $1
		GROUP BY a.id
		ORDER BY a.created_at DESC, a.id
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to select albums: %w", err)
	}
	defer rows.Close()

	var result []*models.AlbumSummary
	byID := make(map[string]*models.AlbumSummary)
	for rows.Next() {
		s := &models.AlbumSummary{}
		if err := rows.Scan(&s.ID, &s.UserID, &s.Name, &s.CreatedAt, &s.UpdatedAt, &s.TotalFiles); err != nil {
			return nil, err
		}
		result = append(result, s)
		byID[s.ID] = s
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(result) == 0 || previewLimit <= 0 {
		return result, nil
	}

	if err := r.loadPreviews(ctx, userID, previewLimit, byID); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) loadPreviews(ctx context.Context, userID string, limit int, byID map[string]*models.AlbumSummary) error {
	query := `
		SELECT album_id, name FROM (
			SELECT af.album_id, f.name,
				ROW_NUMBER() OVER (PARTITION BY af.album_id ORDER BY f.created_at DESC, f.id) AS rn
			FROM album_files af
			JOIN files f ON f.id = af.file_id
			JOIN albums a ON a.id = af.album_id
			WHERE a.user_id = $1
		) p
		WHERE rn <= $2
		ORDER BY album_id, rn
	`
	rows, err := r.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return fmt.Errorf("failed to select album previews: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var albumID, name string
		if err := rows.Scan(&albumID, &name); err != nil {
			return err
		}
		if s, ok := byID[albumID]; ok {
			s.PreviewNames = append(s.PreviewNames, name)
		}
	}
	return rows.Err()
}

func (r *PostgresRepository) GetByID(ctx context.Context, userID, id string) (*models.Album, error) {
	query := `
		SELECT id, user_id, name, created_at, updated_at
		FROM albums
		WHERE id = $1 AND user_id = $2
	`
	a := &models.Album{}
	if err := r.db.QueryRowContext(ctx, query, id, userID).
		Scan(&a.ID, &a.UserID, &a.Name, &a.CreatedAt, &a.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return a, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, userID, id string) error {
	query := `DELETE FROM albums WHERE id = $1 AND user_id = $2`
	return execOne(ctx, r.db, query, id, userID)
}

func (r *PostgresRepository) AddFile(ctx context.Context, albumID, fileID string) error {
	query := `
		INSERT INTO album_files (album_id, file_id)
		VALUES ($1, $2)
		ON CONFLICT (album_id, file_id) DO NOTHING
	`
	if _, err := r.db.ExecContext(ctx, query, albumID, fileID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) RemoveFile(ctx context.Context, albumID, fileID string) error {
	query := `DELETE FROM album_files WHERE album_id = $1 AND file_id = $2`
	return execOne(ctx, r.db, query, albumID, fileID)
}

func (r *PostgresRepository) ListFiles(ctx context.Context, albumID string) ([]*models.File, error) {
	query := `
		SELECT f.id, f.user_id, f.name, f.created_at, f.updated_at
		FROM album_files af
		JOIN files f ON f.id = af.file_id
		WHERE af.album_id = $1
		ORDER BY f.created_at DESC, f.id
	`
	rows, err := r.db.QueryContext(ctx, query, albumID)
	if err != nil {
		return nil, fmt.Errorf("failed to select album files: %w", err)
	}
	defer rows.Close()
	return files.ScanFiles(rows)
}

// execOne runs a statement expected to touch a row and maps zero rows to
// common.ErrorNotFound.
func execOne(ctx context.Context, db dbx.DBTX, query string, args ...any) error {
	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
