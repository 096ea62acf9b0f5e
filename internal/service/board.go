package service

import (
	"context"

	"github.com/itchan-dev/boardapi/internal/domain"
	internal_errors "github.com/itchan-dev/boardapi/internal/errors"
	"github.com/itchan-dev/boardapi/internal/logger"
)

// to mock service in tests
type BoardService interface {
	Create(ctx context.Context, creationData domain.BoardCreationData) (domain.Board, error)
	List(ctx context.Context) ([]domain.Board, error)
	Get(ctx context.Context, shortName domain.BoardShortName) (domain.Board, error)
	Update(ctx context.Context, shortName domain.BoardShortName, update domain.BoardUpdateData) (domain.Board, error)
	Delete(ctx context.Context, shortName domain.BoardShortName) error
}

type Board struct {
	storage BoardStorage
	media   MediaStore
}

type BoardStorage interface {
	CreateBoard(ctx context.Context, creationData domain.BoardCreationData) (domain.Board, error)
	GetBoards(ctx context.Context) ([]domain.Board, error)
	GetBoard(ctx context.Context, shortName domain.BoardShortName) (domain.Board, error)
	UpdateBoard(ctx context.Context, shortName domain.BoardShortName, update domain.BoardUpdateData) (domain.Board, error)
	DeleteBoard(ctx context.Context, shortName domain.BoardShortName) ([]domain.StoredImage, error)
}

func NewBoard(storage BoardStorage, media MediaStore) BoardService {
	return &Board{storage: storage, media: media}
}

func (b *Board) Create(ctx context.Context, creationData domain.BoardCreationData) (domain.Board, error) {
	creationData.Name = sanitizeText(creationData.Name)
	if creationData.Name == "" {
		return domain.Board{}, internal_errors.Validation("Board name is required.")
	}
	creationData.Description = sanitizeOptional(creationData.Description)

	board, err := b.storage.CreateBoard(ctx, creationData)
	if err != nil {
		return domain.Board{}, err
	}
	logger.Log.Info("board created", "board", board.ShortName, "board_id", board.Id)
	return board, nil
}

func (b *Board) List(ctx context.Context) ([]domain.Board, error) {
	return b.storage.GetBoards(ctx)
}

func (b *Board) Get(ctx context.Context, shortName domain.BoardShortName) (domain.Board, error) {
	return b.storage.GetBoard(ctx, shortName)
}

func (b *Board) Update(ctx context.Context, shortName domain.BoardShortName, update domain.BoardUpdateData) (domain.Board, error) {
	if update.Name != nil {
		name := sanitizeText(*update.Name)
		if name == "" {
			return domain.Board{}, internal_errors.Validation("Board name can't be empty.")
		}
		update.Name = &name
	}
	if update.Description != nil {
		// an explicit empty description clears it
		description := sanitizeText(*update.Description)
		update.Description = &description
	}
	return b.storage.UpdateBoard(ctx, shortName, update)
}

// Delete removes the board with everything on it, media files included.
func (b *Board) Delete(ctx context.Context, shortName domain.BoardShortName) error {
	images, err := b.storage.DeleteBoard(ctx, shortName)
	if err != nil {
		return err
	}
	b.media.Remove(ctx, images...)
	logger.Log.Info("board deleted", "board", shortName, "images_removed", len(images))
	return nil
}
