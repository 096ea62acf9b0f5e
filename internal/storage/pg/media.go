package pg

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/itchan-dev/boardapi/internal/domain"
)

// collectMedia runs a query yielding (image, thumbnail) filename pairs.
func collectMedia(ctx context.Context, tx *sql.Tx, query string, args ...any) ([]domain.StoredImage, error) {
	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to collect media: %w", err)
	}
	defer rows.Close()

	images := []domain.StoredImage{}
	for rows.Next() {
		var image domain.StoredImage
		if err := rows.Scan(&image.ImageFilename, &image.ThumbnailFilename); err != nil {
			return nil, fmt.Errorf("failed to scan media row: %w", err)
		}
		images = append(images, image)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return images, nil
}

// ReferencedMedia returns every stored filename, images and thumbnails alike,
// that a thread or reply row points at.
func (s *Storage) ReferencedMedia(ctx context.Context) ([]domain.Filename, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT image_filename_stored FROM threads
		UNION ALL SELECT thumbnail_filename_stored FROM threads
		UNION ALL SELECT image_filename_stored FROM replies WHERE image_filename_stored IS NOT NULL
		UNION ALL SELECT thumbnail_filename_stored FROM replies WHERE thumbnail_filename_stored IS NOT NULL
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch media references: %w", err)
	}
	defer rows.Close()

	var names []domain.Filename
	for rows.Next() {
		var name domain.Filename
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan media reference: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return names, nil
}
