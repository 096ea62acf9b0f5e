package service

import (
	"context"
	"sync"

	"github.com/itchan-dev/boardapi/internal/domain"
)

// --- Mocks ---

type MockThreadStorage struct {
	boardIdFunc      func(shortName domain.BoardShortName) (domain.BoardId, error)
	createThreadFunc func(thread domain.NewThread) (domain.Thread, error)
	listThreadsFunc  func(boardId domain.BoardId, page domain.PageRequest, previewReplies int) ([]domain.Thread, int, error)
	threadHeaderFunc func(boardId domain.BoardId, id domain.ThreadId) (domain.Thread, error)
	getThreadFunc    func(boardId domain.BoardId, id domain.ThreadId) (domain.Thread, error)
	deleteThreadFunc func(boardId domain.BoardId, id domain.ThreadId) ([]domain.StoredImage, error)

	mu                 sync.Mutex
	createThreadCalled bool
	createThreadCtxErr error
	deleteThreadCalled bool
}

func (m *MockThreadStorage) BoardId(ctx context.Context, shortName domain.BoardShortName) (domain.BoardId, error) {
	if m.boardIdFunc != nil {
		return m.boardIdFunc(shortName)
	}
	return 1, nil
}

func (m *MockThreadStorage) CreateThread(ctx context.Context, thread domain.NewThread) (domain.Thread, error) {
	m.mu.Lock()
	m.createThreadCalled = true
	m.createThreadCtxErr = ctx.Err()
	m.mu.Unlock()
	if m.createThreadFunc != nil {
		return m.createThreadFunc(thread)
	}
	return domain.Thread{Id: 1, BoardId: thread.BoardId, Image: thread.Image}, nil
}

func (m *MockThreadStorage) ListThreads(ctx context.Context, boardId domain.BoardId, page domain.PageRequest, previewReplies int) ([]domain.Thread, int, error) {
	if m.listThreadsFunc != nil {
		return m.listThreadsFunc(boardId, page, previewReplies)
	}
	return []domain.Thread{}, 0, nil
}

func (m *MockThreadStorage) ThreadHeader(ctx context.Context, boardId domain.BoardId, id domain.ThreadId) (domain.Thread, error) {
	if m.threadHeaderFunc != nil {
		return m.threadHeaderFunc(boardId, id)
	}
	return domain.Thread{Id: id, BoardId: boardId}, nil
}

func (m *MockThreadStorage) GetThread(ctx context.Context, boardId domain.BoardId, id domain.ThreadId) (domain.Thread, error) {
	if m.getThreadFunc != nil {
		return m.getThreadFunc(boardId, id)
	}
	return domain.Thread{Id: id, BoardId: boardId}, nil
}

func (m *MockThreadStorage) DeleteThread(ctx context.Context, boardId domain.BoardId, id domain.ThreadId) ([]domain.StoredImage, error) {
	m.mu.Lock()
	m.deleteThreadCalled = true
	m.mu.Unlock()
	if m.deleteThreadFunc != nil {
		return m.deleteThreadFunc(boardId, id)
	}
	return nil, nil
}

type MockBoardStorage struct {
	createBoardFunc func(creationData domain.BoardCreationData) (domain.Board, error)
	getBoardsFunc   func() ([]domain.Board, error)
	getBoardFunc    func(shortName domain.BoardShortName) (domain.Board, error)
	updateBoardFunc func(shortName domain.BoardShortName, update domain.BoardUpdateData) (domain.Board, error)
	deleteBoardFunc func(shortName domain.BoardShortName) ([]domain.StoredImage, error)
}

func (m *MockBoardStorage) CreateBoard(ctx context.Context, creationData domain.BoardCreationData) (domain.Board, error) {
	if m.createBoardFunc != nil {
		return m.createBoardFunc(creationData)
	}
	return domain.Board{Id: 1, ShortName: creationData.ShortName, Name: creationData.Name}, nil
}

func (m *MockBoardStorage) GetBoards(ctx context.Context) ([]domain.Board, error) {
	if m.getBoardsFunc != nil {
		return m.getBoardsFunc()
	}
	return []domain.Board{}, nil
}

func (m *MockBoardStorage) GetBoard(ctx context.Context, shortName domain.BoardShortName) (domain.Board, error) {
	if m.getBoardFunc != nil {
		return m.getBoardFunc(shortName)
	}
	return domain.Board{Id: 1, ShortName: shortName}, nil
}

func (m *MockBoardStorage) UpdateBoard(ctx context.Context, shortName domain.BoardShortName, update domain.BoardUpdateData) (domain.Board, error) {
	if m.updateBoardFunc != nil {
		return m.updateBoardFunc(shortName, update)
	}
	return domain.Board{Id: 1, ShortName: shortName}, nil
}

func (m *MockBoardStorage) DeleteBoard(ctx context.Context, shortName domain.BoardShortName) ([]domain.StoredImage, error) {
	if m.deleteBoardFunc != nil {
		return m.deleteBoardFunc(shortName)
	}
	return nil, nil
}

// MockMediaStore records removals so tests can check for orphans.
type MockMediaStore struct {
	storeFunc func(upload domain.Upload) (domain.StoredImage, error)

	mu      sync.Mutex
	stored  []domain.StoredImage
	removed []domain.StoredImage
}

func (m *MockMediaStore) Store(ctx context.Context, upload domain.Upload) (domain.StoredImage, error) {
	if m.storeFunc != nil {
		return m.storeFunc(upload)
	}
	img := domain.StoredImage{
		ImageFilename:     "stored.png",
		ThumbnailFilename: "thumb_stored.png",
		MimeType:          upload.MimeType,
		SizeBytes:         upload.Size,
		Width:             10,
		Height:            10,
	}
	m.mu.Lock()
	m.stored = append(m.stored, img)
	m.mu.Unlock()
	return img, nil
}

func (m *MockMediaStore) Remove(ctx context.Context, images ...domain.StoredImage) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.removed = append(m.removed, images...)
}

func (m *MockMediaStore) Removed() []domain.StoredImage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.StoredImage(nil), m.removed...)
}

// MockHasher "hashes" by prefixing, which keeps expectations readable.
type MockHasher struct {
	hashErr   error
	verifyErr error
}

func (m *MockHasher) Hash(password string) (string, error) {
	if m.hashErr != nil {
		return "", m.hashErr
	}
	return "hashed:" + password, nil
}

func (m *MockHasher) Verify(password, hash string) (bool, error) {
	if m.verifyErr != nil {
		return false, m.verifyErr
	}
	return hash == "hashed:"+password, nil
}
