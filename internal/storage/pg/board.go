package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/itchan-dev/boardapi/internal/domain"
	internal_errors "github.com/itchan-dev/boardapi/internal/errors"
)

const boardColumns = `b.id, b.short_name, b.name, b.description, b.created_at, b.updated_at,
	(SELECT count(*) FROM threads t WHERE t.board_id = b.id) AS thread_count`

func scanBoard(row scanner) (domain.Board, error) {
	var b domain.Board
	err := row.Scan(&b.Id, &b.ShortName, &b.Name, &b.Description, &b.CreatedAt, &b.UpdatedAt, &b.ThreadCount)
	return b, err
}

func boardNotFound() error {
	return internal_errors.NotFound("Board not found")
}

func (s *Storage) CreateBoard(ctx context.Context, creationData domain.BoardCreationData) (domain.Board, error) {
	row := s.db.QueryRowContext(ctx, `
		WITH b AS (
			INSERT INTO boards (short_name, name, description)
			VALUES ($1, $2, $3)
			RETURNING *
		)
		SELECT `+boardColumns+` FROM b`,
		creationData.ShortName, creationData.Name, creationData.Description,
	)
	board, err := scanBoard(row)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.Board{}, internal_errors.Conflict("Board short name already exists.")
		}
		return domain.Board{}, fmt.Errorf("failed to insert board: %w", err)
	}
	return board, nil
}

func (s *Storage) GetBoard(ctx context.Context, shortName domain.BoardShortName) (domain.Board, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+boardColumns+` FROM boards b WHERE b.short_name = $1`, shortName)
	board, err := scanBoard(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Board{}, boardNotFound()
		}
		return domain.Board{}, fmt.Errorf("failed to fetch board: %w", err)
	}
	return board, nil
}

func (s *Storage) GetBoards(ctx context.Context) ([]domain.Board, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+boardColumns+` FROM boards b ORDER BY b.short_name ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch boards: %w", err)
	}
	defer rows.Close()

	boards := []domain.Board{}
	for rows.Next() {
		board, err := scanBoard(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan board: %w", err)
		}
		boards = append(boards, board)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return boards, nil
}

func (s *Storage) UpdateBoard(ctx context.Context, shortName domain.BoardShortName, update domain.BoardUpdateData) (domain.Board, error) {
	row := s.db.QueryRowContext(ctx, `
		WITH b AS (
			UPDATE boards
			SET name = COALESCE($2, name),
			    description = COALESCE($3, description),
			    updated_at = now()
			WHERE short_name = $1
			RETURNING *
		)
		SELECT `+boardColumns+` FROM b`,
		shortName, update.Name, update.Description,
	)
	board, err := scanBoard(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Board{}, boardNotFound()
		}
		return domain.Board{}, fmt.Errorf("failed to update board: %w", err)
	}
	return board, nil
}

// DeleteBoard removes the board with its threads and replies and returns the
// media those rows owned, so the caller can remove the files.
func (s *Storage) DeleteBoard(ctx context.Context, shortName domain.BoardShortName) ([]domain.StoredImage, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() // The rollback will be ignored if the tx has been committed later in the function.

	var boardId domain.BoardId
	err = tx.QueryRowContext(ctx, `SELECT id FROM boards WHERE short_name = $1 FOR UPDATE`, shortName).Scan(&boardId)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, boardNotFound()
		}
		return nil, fmt.Errorf("failed to lock board: %w", err)
	}

	images, err := collectMedia(ctx, tx, `
		SELECT t.image_filename_stored, t.thumbnail_filename_stored
		FROM threads t WHERE t.board_id = $1
		UNION ALL
		SELECT COALESCE(r.image_filename_stored, ''), COALESCE(r.thumbnail_filename_stored, '')
		FROM replies r JOIN threads t ON t.id = r.thread_id
		WHERE t.board_id = $1 AND (r.image_filename_stored IS NOT NULL OR r.thumbnail_filename_stored IS NOT NULL)
	`, boardId)
	if err != nil {
		return nil, err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM boards WHERE id = $1`, boardId); err != nil {
		return nil, fmt.Errorf("failed to delete board: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return images, nil
}
