package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/itchan-dev/boardapi/internal/config"
	"github.com/itchan-dev/boardapi/internal/domain"
)

// --- Mocks ---

type MockBoardService struct {
	MockCreate func(creationData domain.BoardCreationData) (domain.Board, error)
	MockList   func() ([]domain.Board, error)
	MockGet    func(shortName domain.BoardShortName) (domain.Board, error)
	MockUpdate func(shortName domain.BoardShortName, update domain.BoardUpdateData) (domain.Board, error)
	MockDelete func(shortName domain.BoardShortName) error
}

func (m *MockBoardService) Create(ctx context.Context, creationData domain.BoardCreationData) (domain.Board, error) {
	if m.MockCreate != nil {
		return m.MockCreate(creationData)
	}
	return domain.Board{ShortName: creationData.ShortName, Name: creationData.Name}, nil
}

func (m *MockBoardService) List(ctx context.Context) ([]domain.Board, error) {
	if m.MockList != nil {
		return m.MockList()
	}
	return []domain.Board{}, nil
}

func (m *MockBoardService) Get(ctx context.Context, shortName domain.BoardShortName) (domain.Board, error) {
	if m.MockGet != nil {
		return m.MockGet(shortName)
	}
	return domain.Board{ShortName: shortName}, nil
}

func (m *MockBoardService) Update(ctx context.Context, shortName domain.BoardShortName, update domain.BoardUpdateData) (domain.Board, error) {
	if m.MockUpdate != nil {
		return m.MockUpdate(shortName, update)
	}
	return domain.Board{ShortName: shortName}, nil
}

func (m *MockBoardService) Delete(ctx context.Context, shortName domain.BoardShortName) error {
	if m.MockDelete != nil {
		return m.MockDelete(shortName)
	}
	return nil
}

type MockThreadService struct {
	MockCreate func(creationData domain.ThreadCreationData) (domain.Thread, error)
	MockList   func(board domain.BoardShortName, page domain.PageRequest) (domain.ThreadPage, error)
	MockGet    func(board domain.BoardShortName, id domain.ThreadId) (domain.Thread, error)
	MockDelete func(board domain.BoardShortName, id domain.ThreadId, password *string) (domain.DeleteOutcome, error)
}

func (m *MockThreadService) Create(ctx context.Context, creationData domain.ThreadCreationData) (domain.Thread, error) {
	if m.MockCreate != nil {
		return m.MockCreate(creationData)
	}
	return domain.Thread{Id: 1}, nil
}

func (m *MockThreadService) List(ctx context.Context, board domain.BoardShortName, page domain.PageRequest) (domain.ThreadPage, error) {
	if m.MockList != nil {
		return m.MockList(board, page)
	}
	return domain.ThreadPage{Threads: []domain.Thread{}}, nil
}

func (m *MockThreadService) Get(ctx context.Context, board domain.BoardShortName, id domain.ThreadId) (domain.Thread, error) {
	if m.MockGet != nil {
		return m.MockGet(board, id)
	}
	return domain.Thread{Id: id}, nil
}

func (m *MockThreadService) Delete(ctx context.Context, board domain.BoardShortName, id domain.ThreadId, password *string) (domain.DeleteOutcome, error) {
	if m.MockDelete != nil {
		return m.MockDelete(board, id, password)
	}
	return domain.Deleted, nil
}

type MockHealthChecker struct {
	err error
}

func (m *MockHealthChecker) Ping(ctx context.Context) error {
	return m.err
}

// --- Helpers ---

func testConfig() *config.Config {
	return &config.Config{Public: config.Public{
		BaseURL:               "http://example.com",
		MaxImageSize:          1 << 20,
		AllowedImageMimeTypes: []string{"image/png", "image/jpeg"},
	}}
}

// newTestRouter mounts the handler on the same paths the real router uses.
func newTestRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Get("/health", h.Health)
	r.Get("/ready", h.Ready)
	r.Route("/boards", func(r chi.Router) {
		r.Get("/", h.GetBoards)
		r.Post("/", h.CreateBoard)
		r.Get("/{board}", h.GetBoard)
		r.Put("/{board}", h.UpdateBoard)
		r.Delete("/{board}", h.DeleteBoard)
		r.Get("/{board}/threads", h.GetThreads)
		r.Post("/{board}/threads", h.CreateThread)
		r.Get("/{board}/threads/{thread}", h.GetThread)
		r.Delete("/{board}/threads/{thread}", h.DeleteThread)
	})
	return r
}

func serve(t *testing.T, h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 4, 4))))
	return buf.Bytes()
}

type formFile struct {
	field, filename, contentType string
	data                         []byte
}

func multipartRequest(t *testing.T, url string, fields map[string]string, files ...formFile) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	for _, f := range files {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", `form-data; name="`+f.field+`"; filename="`+f.filename+`"`)
		header.Set("Content-Type", f.contentType)
		part, err := mw.CreatePart(header)
		require.NoError(t, err)
		_, err = part.Write(f.data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, url, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}
