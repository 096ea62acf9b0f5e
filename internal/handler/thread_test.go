package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itchan-dev/boardapi/internal/api"
	"github.com/itchan-dev/boardapi/internal/domain"
	internal_errors "github.com/itchan-dev/boardapi/internal/errors"
)

func TestCreateThreadHandler(t *testing.T) {
	fields := map[string]string{"comment": "hello", "subject": "hi", "deletion_password": "secret"}

	t.Run("Success", func(t *testing.T) {
		threads := &MockThreadService{MockCreate: func(data domain.ThreadCreationData) (domain.Thread, error) {
			assert.Equal(t, "b", data.Board)
			assert.Equal(t, "hello", data.Comment)
			require.NotNil(t, data.Subject)
			assert.Equal(t, "hi", *data.Subject)
			require.NotNil(t, data.DeletionPassword)
			assert.Equal(t, "secret", *data.DeletionPassword)
			require.NotNil(t, data.Image)
			assert.Equal(t, "cat.png", data.Image.OriginalFilename)
			assert.Equal(t, "image/png", data.Image.MimeType)
			assert.NotEmpty(t, data.IPAddress)
			return domain.Thread{Id: 9, Image: domain.StoredImage{ImageFilename: "a.png", ThumbnailFilename: "thumb_a.png"}}, nil
		}}
		router := newTestRouter(New(&MockBoardService{}, threads, &MockHealthChecker{}, testConfig()))

		req := multipartRequest(t, "/boards/b/threads", fields, formFile{"image", "cat.png", "image/png", pngBytes(t)})
		rr := serve(t, router, req)

		require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
		resp := decode[api.ThreadResponse](t, rr)
		assert.Equal(t, domain.ThreadId(9), resp.Id)
		assert.Equal(t, "http://example.com/uploads/images/a.png", resp.ImageURL)
		assert.Equal(t, "http://example.com/uploads/thumbnails/thumb_a.png", resp.ThumbnailURL)
	})

	t.Run("MissingImageReachesService", func(t *testing.T) {
		threads := &MockThreadService{MockCreate: func(data domain.ThreadCreationData) (domain.Thread, error) {
			assert.Nil(t, data.Image)
			return domain.Thread{}, internal_errors.Validation("An image is required to start a thread.")
		}}
		router := newTestRouter(New(&MockBoardService{}, threads, &MockHealthChecker{}, testConfig()))

		rr := serve(t, router, multipartRequest(t, "/boards/b/threads", fields))
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("MissingComment", func(t *testing.T) {
		called := false
		threads := &MockThreadService{MockCreate: func(data domain.ThreadCreationData) (domain.Thread, error) {
			called = true
			return domain.Thread{}, nil
		}}
		router := newTestRouter(New(&MockBoardService{}, threads, &MockHealthChecker{}, testConfig()))

		req := multipartRequest(t, "/boards/b/threads", map[string]string{}, formFile{"image", "cat.png", "image/png", pngBytes(t)})
		rr := serve(t, router, req)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.False(t, called)
	})

	t.Run("DisallowedMime", func(t *testing.T) {
		router := newTestRouter(New(&MockBoardService{}, &MockThreadService{}, &MockHealthChecker{}, testConfig()))

		req := multipartRequest(t, "/boards/b/threads", fields, formFile{"image", "notes.txt", "text/plain", []byte("hi")})
		rr := serve(t, router, req)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("ImageTooLarge", func(t *testing.T) {
		cfg := testConfig()
		cfg.Public.MaxImageSize = 10
		router := newTestRouter(New(&MockBoardService{}, &MockThreadService{}, &MockHealthChecker{}, cfg))

		req := multipartRequest(t, "/boards/b/threads", fields, formFile{"image", "cat.png", "image/png", pngBytes(t)})
		rr := serve(t, router, req)
		assert.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)
	})

	t.Run("NotMultipart", func(t *testing.T) {
		router := newTestRouter(New(&MockBoardService{}, &MockThreadService{}, &MockHealthChecker{}, testConfig()))

		req := httptest.NewRequest(http.MethodPost, "/boards/b/threads", strings.NewReader(`{"comment":"x"}`))
		req.Header.Set("Content-Type", "application/json")
		rr := serve(t, router, req)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("BoardNotFound", func(t *testing.T) {
		threads := &MockThreadService{MockCreate: func(data domain.ThreadCreationData) (domain.Thread, error) {
			return domain.Thread{}, internal_errors.NotFound("Board not found")
		}}
		router := newTestRouter(New(&MockBoardService{}, threads, &MockHealthChecker{}, testConfig()))

		req := multipartRequest(t, "/boards/nope/threads", fields, formFile{"image", "cat.png", "image/png", pngBytes(t)})
		rr := serve(t, router, req)
		assert.Equal(t, http.StatusNotFound, rr.Code)
		assert.JSONEq(t, `{"message":"Board not found"}`, rr.Body.String())
	})
}

func TestGetThreadsHandler(t *testing.T) {
	t.Run("PassesPaging", func(t *testing.T) {
		threads := &MockThreadService{MockList: func(board domain.BoardShortName, page domain.PageRequest) (domain.ThreadPage, error) {
			assert.Equal(t, "b", board)
			assert.Equal(t, domain.PageRequest{Page: 2, Limit: 2}, page)
			return domain.ThreadPage{
				Threads:    []domain.Thread{{Id: 1}},
				Pagination: domain.Pagination{CurrentPage: 2, TotalPages: 2, TotalThreads: 3},
			}, nil
		}}
		router := newTestRouter(New(&MockBoardService{}, threads, &MockHealthChecker{}, testConfig()))

		rr := serve(t, router, httptest.NewRequest(http.MethodGet, "/boards/b/threads?page=2&limit=2", nil))

		require.Equal(t, http.StatusOK, rr.Code)
		resp := decode[api.ThreadPageResponse](t, rr)
		require.Len(t, resp.Threads, 1)
		assert.Equal(t, api.PaginationResponse{CurrentPage: 2, TotalPages: 2, TotalThreads: 3}, resp.Pagination)
	})

	t.Run("DefaultsAreLeftToService", func(t *testing.T) {
		threads := &MockThreadService{MockList: func(board domain.BoardShortName, page domain.PageRequest) (domain.ThreadPage, error) {
			assert.Equal(t, domain.PageRequest{}, page)
			return domain.ThreadPage{Threads: []domain.Thread{}}, nil
		}}
		router := newTestRouter(New(&MockBoardService{}, threads, &MockHealthChecker{}, testConfig()))

		rr := serve(t, router, httptest.NewRequest(http.MethodGet, "/boards/b/threads", nil))
		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("BadPage", func(t *testing.T) {
		router := newTestRouter(New(&MockBoardService{}, &MockThreadService{}, &MockHealthChecker{}, testConfig()))

		rr := serve(t, router, httptest.NewRequest(http.MethodGet, "/boards/b/threads?page=abc", nil))
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestGetThreadHandler(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		threads := &MockThreadService{MockGet: func(board domain.BoardShortName, id domain.ThreadId) (domain.Thread, error) {
			assert.Equal(t, "b", board)
			assert.Equal(t, domain.ThreadId(42), id)
			return domain.Thread{Id: id, Replies: []domain.Reply{{Id: 1, Comment: "r"}}}, nil
		}}
		router := newTestRouter(New(&MockBoardService{}, threads, &MockHealthChecker{}, testConfig()))

		rr := serve(t, router, httptest.NewRequest(http.MethodGet, "/boards/b/threads/42", nil))

		require.Equal(t, http.StatusOK, rr.Code)
		resp := decode[api.ThreadResponse](t, rr)
		require.Len(t, resp.Replies, 1)
		assert.Nil(t, resp.Replies[0].ImageURL)
	})

	t.Run("NotFound", func(t *testing.T) {
		threads := &MockThreadService{MockGet: func(board domain.BoardShortName, id domain.ThreadId) (domain.Thread, error) {
			return domain.Thread{}, internal_errors.NotFound("Thread not found")
		}}
		router := newTestRouter(New(&MockBoardService{}, threads, &MockHealthChecker{}, testConfig()))

		rr := serve(t, router, httptest.NewRequest(http.MethodGet, "/boards/b/threads/42", nil))
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("InvalidId", func(t *testing.T) {
		router := newTestRouter(New(&MockBoardService{}, &MockThreadService{}, &MockHealthChecker{}, testConfig()))

		rr := serve(t, router, httptest.NewRequest(http.MethodGet, "/boards/b/threads/abc", nil))
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("InternalErrorIsHidden", func(t *testing.T) {
		threads := &MockThreadService{MockGet: func(board domain.BoardShortName, id domain.ThreadId) (domain.Thread, error) {
			return domain.Thread{}, errors.New("pq: connection refused")
		}}
		router := newTestRouter(New(&MockBoardService{}, threads, &MockHealthChecker{}, testConfig()))

		rr := serve(t, router, httptest.NewRequest(http.MethodGet, "/boards/b/threads/1", nil))
		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		assert.NotContains(t, rr.Body.String(), "pq:")
	})
}

func TestDeleteThreadHandler(t *testing.T) {
	tests := []struct {
		name     string
		outcome  domain.DeleteOutcome
		expected int
		message  string
	}{
		{"deleted", domain.Deleted, http.StatusNoContent, ""},
		{"board not found", domain.DeleteBoardNotFound, http.StatusNotFound, "Board not found"},
		{"thread not found", domain.DeleteThreadNotFound, http.StatusNotFound, "Thread not found"},
		{"password required", domain.DeletePasswordRequired, http.StatusBadRequest, "Deletion password is required"},
		{"invalid password", domain.DeleteInvalidPassword, http.StatusForbidden, "Invalid deletion password"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			threads := &MockThreadService{MockDelete: func(board domain.BoardShortName, id domain.ThreadId, password *string) (domain.DeleteOutcome, error) {
				assert.Equal(t, "b", board)
				assert.Equal(t, domain.ThreadId(7), id)
				require.NotNil(t, password)
				assert.Equal(t, "secret", *password)
				return tt.outcome, nil
			}}
			router := newTestRouter(New(&MockBoardService{}, threads, &MockHealthChecker{}, testConfig()))

			req := httptest.NewRequest(http.MethodDelete, "/boards/b/threads/7", strings.NewReader(`{"deletion_password":"secret"}`))
			rr := serve(t, router, req)

			assert.Equal(t, tt.expected, rr.Code)
			if tt.message != "" {
				assert.JSONEq(t, `{"message":"`+tt.message+`"}`, rr.Body.String())
			} else {
				assert.Empty(t, rr.Body.String())
			}
		})
	}

	t.Run("EmptyBody", func(t *testing.T) {
		threads := &MockThreadService{MockDelete: func(board domain.BoardShortName, id domain.ThreadId, password *string) (domain.DeleteOutcome, error) {
			assert.Nil(t, password)
			return domain.Deleted, nil
		}}
		router := newTestRouter(New(&MockBoardService{}, threads, &MockHealthChecker{}, testConfig()))

		rr := serve(t, router, httptest.NewRequest(http.MethodDelete, "/boards/b/threads/7", nil))
		assert.Equal(t, http.StatusNoContent, rr.Code)
	})

	t.Run("ServiceError", func(t *testing.T) {
		threads := &MockThreadService{MockDelete: func(board domain.BoardShortName, id domain.ThreadId, password *string) (domain.DeleteOutcome, error) {
			return 0, errors.New("db down")
		}}
		router := newTestRouter(New(&MockBoardService{}, threads, &MockHealthChecker{}, testConfig()))

		rr := serve(t, router, httptest.NewRequest(http.MethodDelete, "/boards/b/threads/7", nil))
		assert.Equal(t, http.StatusInternalServerError, rr.Code)
	})
}
