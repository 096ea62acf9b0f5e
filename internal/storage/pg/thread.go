package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/itchan-dev/boardapi/internal/domain"
	internal_errors "github.com/itchan-dev/boardapi/internal/errors"
)

const threadColumns = `t.id, t.board_id, t.subject, t.comment, t.poster_name,
	t.image_original_filename, t.image_filename_stored, t.thumbnail_filename_stored,
	t.image_mimetype, t.image_filesize_bytes, t.image_width, t.image_height,
	t.deletion_password_hash, t.ip_address, t.created_at, t.last_bumped_at,
	(SELECT count(*) FROM replies r WHERE r.thread_id = t.id) AS reply_count`

const replyColumns = `r.id, r.thread_id, r.parent_reply_id, r.comment, r.poster_name,
	r.image_original_filename, r.image_filename_stored, r.thumbnail_filename_stored,
	r.image_mimetype, r.image_filesize_bytes, r.image_width, r.image_height, r.created_at`

func threadNotFound() error {
	return internal_errors.NotFound("Thread not found")
}

func scanThread(row scanner) (domain.Thread, error) {
	var t domain.Thread
	err := row.Scan(
		&t.Id, &t.BoardId, &t.Subject, &t.Comment, &t.PosterName,
		&t.ImageOriginalFilename, &t.Image.ImageFilename, &t.Image.ThumbnailFilename,
		&t.Image.MimeType, &t.Image.SizeBytes, &t.Image.Width, &t.Image.Height,
		&t.DeletionPasswordHash, &t.IPAddress, &t.CreatedAt, &t.LastBumpedAt,
		&t.ReplyCount,
	)
	return t, err
}

func scanReply(row scanner) (domain.Reply, error) {
	var (
		r         domain.Reply
		image     sql.NullString
		thumbnail sql.NullString
		mimeType  sql.NullString
		size      sql.NullInt64
		width     sql.NullInt32
		height    sql.NullInt32
	)
	err := row.Scan(
		&r.Id, &r.ThreadId, &r.ParentReplyId, &r.Comment, &r.PosterName,
		&r.ImageOriginalFilename, &image, &thumbnail,
		&mimeType, &size, &width, &height, &r.CreatedAt,
	)
	if err != nil {
		return domain.Reply{}, err
	}
	if image.Valid {
		r.Image = &domain.StoredImage{
			ImageFilename:     image.String,
			ThumbnailFilename: thumbnail.String,
			MimeType:          mimeType.String,
			SizeBytes:         size.Int64,
			Width:             int(width.Int32),
			Height:            int(height.Int32),
		}
	}
	return r, nil
}

// BoardId resolves a board short name.
func (s *Storage) BoardId(ctx context.Context, shortName domain.BoardShortName) (domain.BoardId, error) {
	var id domain.BoardId
	err := s.db.QueryRowContext(ctx, `SELECT id FROM boards WHERE short_name = $1`, shortName).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, boardNotFound()
		}
		return 0, fmt.Errorf("failed to fetch board id: %w", err)
	}
	return id, nil
}

func (s *Storage) CreateThread(ctx context.Context, thread domain.NewThread) (domain.Thread, error) {
	row := s.db.QueryRowContext(ctx, `
		WITH t AS (
			INSERT INTO threads (
				board_id, subject, comment, poster_name,
				image_original_filename, image_filename_stored, thumbnail_filename_stored,
				image_mimetype, image_filesize_bytes, image_width, image_height,
				deletion_password_hash, ip_address
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NULLIF($13, ''))
			RETURNING *
		)
		SELECT `+threadColumns+` FROM t`,
		thread.BoardId, thread.Subject, thread.Comment, thread.PosterName,
		thread.ImageOriginalFilename, thread.Image.ImageFilename, thread.Image.ThumbnailFilename,
		thread.Image.MimeType, thread.Image.SizeBytes, thread.Image.Width, thread.Image.Height,
		thread.DeletionPasswordHash, thread.IPAddress,
	)
	created, err := scanThread(row)
	if err != nil {
		return domain.Thread{}, fmt.Errorf("failed to insert thread: %w", err)
	}
	return created, nil
}

// ListThreads returns one page of the board's threads, most recently bumped
// first, together with the total number of threads on the board. Each thread
// carries up to previewReplies of its newest replies, newest first.
func (s *Storage) ListThreads(ctx context.Context, boardId domain.BoardId, page domain.PageRequest, previewReplies int) ([]domain.Thread, int, error) {
	// count and page must come from the same snapshot or the counters can drift
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var total int
	if err := tx.QueryRowContext(ctx, `SELECT count(*) FROM threads WHERE board_id = $1`, boardId).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count threads: %w", err)
	}

	rows, err := tx.QueryContext(ctx, `
		SELECT `+threadColumns+`
		FROM threads t
		WHERE t.board_id = $1
		ORDER BY t.last_bumped_at DESC, t.id DESC
		LIMIT $2 OFFSET $3`,
		boardId, page.Limit, page.Offset(),
	)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch threads: %w", err)
	}
	defer rows.Close()

	threads := []domain.Thread{}
	threadIdx := make(map[domain.ThreadId]int)
	ids := []int64{}
	for rows.Next() {
		thread, err := scanThread(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan thread: %w", err)
		}
		thread.Replies = []domain.Reply{}
		threads = append(threads, thread)
		threadIdx[thread.Id] = len(threads) - 1
		ids = append(ids, thread.Id)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("rows iteration error: %w", err)
	}
	rows.Close()

	if len(ids) > 0 && previewReplies > 0 {
		previewRows, err := tx.QueryContext(ctx, `
			SELECT `+replyColumns+`
			FROM (
				SELECT *, row_number() OVER (PARTITION BY thread_id ORDER BY created_at DESC, id DESC) AS rn
				FROM replies
				WHERE thread_id = ANY($1)
			) r
			WHERE r.rn <= $2
			ORDER BY r.thread_id, r.created_at DESC, r.id DESC`,
			pq.Array(ids), previewReplies,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to fetch reply previews: %w", err)
		}
		defer previewRows.Close()
		for previewRows.Next() {
			reply, err := scanReply(previewRows)
			if err != nil {
				return nil, 0, fmt.Errorf("failed to scan reply: %w", err)
			}
			if idx, ok := threadIdx[reply.ThreadId]; ok {
				threads[idx].Replies = append(threads[idx].Replies, reply)
			}
		}
		if err := previewRows.Err(); err != nil {
			return nil, 0, fmt.Errorf("rows iteration error: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return threads, total, nil
}

// ThreadHeader fetches a thread without its replies. A thread that exists
// under another board is reported as not found.
func (s *Storage) ThreadHeader(ctx context.Context, boardId domain.BoardId, id domain.ThreadId) (domain.Thread, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+threadColumns+` FROM threads t WHERE t.id = $1 AND t.board_id = $2`, id, boardId)
	thread, err := scanThread(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Thread{}, threadNotFound()
		}
		return domain.Thread{}, fmt.Errorf("failed to fetch thread: %w", err)
	}
	return thread, nil
}

// GetThread fetches a thread with all of its replies, oldest first. Every
// reply lists its direct child replies.
func (s *Storage) GetThread(ctx context.Context, boardId domain.BoardId, id domain.ThreadId) (domain.Thread, error) {
	thread, err := s.ThreadHeader(ctx, boardId, id)
	if err != nil {
		return domain.Thread{}, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+replyColumns+`
		FROM replies r
		WHERE r.thread_id = $1
		ORDER BY r.created_at ASC, r.id ASC`, id)
	if err != nil {
		return domain.Thread{}, fmt.Errorf("failed to fetch replies: %w", err)
	}
	defer rows.Close()

	replies := []domain.Reply{}
	for rows.Next() {
		reply, err := scanReply(rows)
		if err != nil {
			return domain.Thread{}, fmt.Errorf("failed to scan reply: %w", err)
		}
		replies = append(replies, reply)
	}
	if err := rows.Err(); err != nil {
		return domain.Thread{}, fmt.Errorf("rows iteration error: %w", err)
	}

	thread.Replies = attachChildren(replies)
	return thread, nil
}

// attachChildren fills ChildReplies one level deep, keeping the input order
// both for the replies and for each child set.
func attachChildren(replies []domain.Reply) []domain.Reply {
	children := make(map[domain.ReplyId][]domain.Reply)
	for _, r := range replies {
		if r.ParentReplyId != nil {
			children[*r.ParentReplyId] = append(children[*r.ParentReplyId], r)
		}
	}
	for i := range replies {
		replies[i].ChildReplies = children[replies[i].Id]
		if replies[i].ChildReplies == nil {
			replies[i].ChildReplies = []domain.Reply{}
		}
	}
	return replies
}

// DeleteThread removes the thread and its replies and returns the media they
// owned. Deleting a thread that is already gone yields NotFound.
func (s *Storage) DeleteThread(ctx context.Context, boardId domain.BoardId, id domain.ThreadId) ([]domain.StoredImage, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() // The rollback will be ignored if the tx has been committed later in the function.

	var locked domain.ThreadId
	err = tx.QueryRowContext(ctx, `SELECT id FROM threads WHERE id = $1 AND board_id = $2 FOR UPDATE`, id, boardId).Scan(&locked)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, threadNotFound()
		}
		return nil, fmt.Errorf("failed to lock thread: %w", err)
	}

	images, err := collectMedia(ctx, tx, `
		SELECT t.image_filename_stored, t.thumbnail_filename_stored
		FROM threads t WHERE t.id = $1
		UNION ALL
		SELECT COALESCE(r.image_filename_stored, ''), COALESCE(r.thumbnail_filename_stored, '')
		FROM replies r
		WHERE r.thread_id = $1 AND (r.image_filename_stored IS NOT NULL OR r.thumbnail_filename_stored IS NOT NULL)
	`, id)
	if err != nil {
		return nil, err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM threads WHERE id = $1`, id); err != nil {
		return nil, fmt.Errorf("failed to delete thread: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return images, nil
}
