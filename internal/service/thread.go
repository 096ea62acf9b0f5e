package service

import (
	"context"
	"fmt"

	"github.com/itchan-dev/boardapi/internal/config"
	"github.com/itchan-dev/boardapi/internal/domain"
	internal_errors "github.com/itchan-dev/boardapi/internal/errors"
	"github.com/itchan-dev/boardapi/internal/logger"
)

type ThreadService interface {
	Create(ctx context.Context, creationData domain.ThreadCreationData) (domain.Thread, error)
	List(ctx context.Context, board domain.BoardShortName, page domain.PageRequest) (domain.ThreadPage, error)
	Get(ctx context.Context, board domain.BoardShortName, id domain.ThreadId) (domain.Thread, error)
	Delete(ctx context.Context, board domain.BoardShortName, id domain.ThreadId, password *string) (domain.DeleteOutcome, error)
}

type Thread struct {
	storage ThreadStorage
	media   MediaStore
	hasher  PasswordHasher
	cfg     *config.Public
}

type ThreadStorage interface {
	BoardId(ctx context.Context, shortName domain.BoardShortName) (domain.BoardId, error)
	CreateThread(ctx context.Context, thread domain.NewThread) (domain.Thread, error)
	ListThreads(ctx context.Context, boardId domain.BoardId, page domain.PageRequest, previewReplies int) ([]domain.Thread, int, error)
	ThreadHeader(ctx context.Context, boardId domain.BoardId, id domain.ThreadId) (domain.Thread, error)
	GetThread(ctx context.Context, boardId domain.BoardId, id domain.ThreadId) (domain.Thread, error)
	DeleteThread(ctx context.Context, boardId domain.BoardId, id domain.ThreadId) ([]domain.StoredImage, error)
}

// MediaStore persists uploads and removes stored files. Remove never fails
// from the caller's point of view.
type MediaStore interface {
	Store(ctx context.Context, upload domain.Upload) (domain.StoredImage, error)
	Remove(ctx context.Context, images ...domain.StoredImage)
}

func NewThread(storage ThreadStorage, media MediaStore, hasher PasswordHasher, cfg *config.Public) ThreadService {
	return &Thread{storage: storage, media: media, hasher: hasher, cfg: cfg}
}

// Create stores the image, then inserts the thread. If anything fails after
// the image is stored, the stored files are removed before returning.
func (s *Thread) Create(ctx context.Context, creationData domain.ThreadCreationData) (domain.Thread, error) {
	if creationData.Image == nil {
		return domain.Thread{}, internal_errors.Validation("An image is required to start a thread.")
	}
	comment := sanitizeText(creationData.Comment)
	if comment == "" {
		return domain.Thread{}, internal_errors.Validation("Comment is required.")
	}
	posterName := sanitizeText(creationData.PosterName)
	if posterName == "" {
		posterName = domain.DefaultPosterName
	}

	stored, err := s.media.Store(ctx, *creationData.Image)
	if err != nil {
		return domain.Thread{}, err
	}
	committed := false
	defer func() {
		if !committed {
			s.media.Remove(ctx, stored)
		}
	}()

	var passwordHash *string
	if creationData.DeletionPassword != nil && *creationData.DeletionPassword != "" {
		hash, err := s.hasher.Hash(*creationData.DeletionPassword)
		if err != nil {
			return domain.Thread{}, err
		}
		passwordHash = &hash
	}

	boardId, err := s.storage.BoardId(ctx, creationData.Board)
	if err != nil {
		return domain.Thread{}, err
	}

	// detached so a cancellation racing the commit can't strip a saved row of its media
	thread, err := s.storage.CreateThread(context.WithoutCancel(ctx), domain.NewThread{
		BoardId:               boardId,
		Subject:               sanitizeOptional(creationData.Subject),
		Comment:               comment,
		PosterName:            posterName,
		ImageOriginalFilename: creationData.Image.OriginalFilename,
		Image:                 stored,
		DeletionPasswordHash:  passwordHash,
		IPAddress:             creationData.IPAddress,
	})
	if err != nil {
		return domain.Thread{}, err
	}
	committed = true

	logger.Log.Info("thread created", "board", creationData.Board, "thread_id", thread.Id)
	return thread, nil
}

func (s *Thread) List(ctx context.Context, board domain.BoardShortName, page domain.PageRequest) (domain.ThreadPage, error) {
	if page.Page == 0 {
		page.Page = 1
	}
	if page.Limit == 0 {
		page.Limit = s.cfg.DefaultThreadsPerPage
	}
	if page.Page < 1 {
		return domain.ThreadPage{}, internal_errors.Validation("page must be at least 1")
	}
	if page.Limit < 1 || page.Limit > s.cfg.MaxThreadsPerPage {
		return domain.ThreadPage{}, internal_errors.Validation(fmt.Sprintf("limit must be between 1 and %d", s.cfg.MaxThreadsPerPage))
	}

	boardId, err := s.storage.BoardId(ctx, board)
	if err != nil {
		return domain.ThreadPage{}, err
	}

	threads, total, err := s.storage.ListThreads(ctx, boardId, page, s.cfg.PreviewReplies)
	if err != nil {
		return domain.ThreadPage{}, err
	}
	return domain.ThreadPage{
		Threads:    threads,
		Pagination: domain.NewPagination(page, total),
	}, nil
}

func (s *Thread) Get(ctx context.Context, board domain.BoardShortName, id domain.ThreadId) (domain.Thread, error) {
	boardId, err := s.storage.BoardId(ctx, board)
	if err != nil {
		return domain.Thread{}, err
	}
	return s.storage.GetThread(ctx, boardId, id)
}

// Delete resolves the board, then the thread, then checks the password, and
// stops at the first step that fails. Expected failures are reported through
// the outcome; the error is reserved for infrastructure problems.
func (s *Thread) Delete(ctx context.Context, board domain.BoardShortName, id domain.ThreadId, password *string) (domain.DeleteOutcome, error) {
	boardId, err := s.storage.BoardId(ctx, board)
	if internal_errors.IsNotFound(err) {
		return domain.DeleteBoardNotFound, nil
	}
	if err != nil {
		return 0, err
	}

	thread, err := s.storage.ThreadHeader(ctx, boardId, id)
	if internal_errors.IsNotFound(err) {
		return domain.DeleteThreadNotFound, nil
	}
	if err != nil {
		return 0, err
	}

	outcome, err := s.checkPassword(thread, password)
	if err != nil || outcome != domain.Deleted {
		return outcome, err
	}

	images, err := s.storage.DeleteThread(ctx, boardId, id)
	if internal_errors.IsNotFound(err) {
		// lost a race with a concurrent delete
		return domain.DeleteThreadNotFound, nil
	}
	if err != nil {
		return 0, err
	}

	s.media.Remove(ctx, images...)
	logger.Log.Info("thread deleted", "board", board, "thread_id", id, "images_removed", len(images))
	return domain.Deleted, nil
}

func (s *Thread) checkPassword(thread domain.Thread, password *string) (domain.DeleteOutcome, error) {
	supplied := password != nil && *password != ""
	switch {
	case !thread.HasPassword():
		return domain.Deleted, nil
	case !supplied:
		return domain.DeletePasswordRequired, nil
	}

	ok, err := s.hasher.Verify(*password, *thread.DeletionPasswordHash)
	if err != nil {
		return 0, err
	}
	if !ok {
		return domain.DeleteInvalidPassword, nil
	}
	return domain.Deleted, nil
}
