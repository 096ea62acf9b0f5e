package api

import (
	"time"

	"github.com/samber/lo"

	"github.com/itchan-dev/boardapi/internal/domain"
)

// Request DTOs

// CreateThreadRequest holds the text fields of the multipart thread form.
type CreateThreadRequest struct {
	Subject          *string `validate:"omitempty,max=255"`
	Comment          string  `validate:"required"`
	PosterName       string  `validate:"max=50"`
	DeletionPassword *string `validate:"omitempty,max=72"` // bcrypt ignores anything longer
}

type DeleteThreadRequest struct {
	DeletionPassword *string `json:"deletion_password,omitempty"`
}

// Response DTOs

type ThreadResponse struct {
	Id                      domain.ThreadId `json:"id"`
	BoardId                 domain.BoardId  `json:"board_id"`
	Subject                 *string         `json:"subject"`
	Comment                 string          `json:"comment"`
	PosterName              string          `json:"poster_name"`
	ImageOriginalFilename   string          `json:"image_original_filename"`
	ImageFilenameStored     string          `json:"image_filename_stored"`
	ThumbnailFilenameStored string          `json:"thumbnail_filename_stored"`
	ImageMimetype           string          `json:"image_mimetype"`
	ImageFilesizeBytes      int64           `json:"image_filesize_bytes"`
	ImageWidth              int             `json:"image_width"`
	ImageHeight             int             `json:"image_height"`
	ImageURL                string          `json:"image_url"`
	ThumbnailURL            string          `json:"thumbnail_url"`
	HasDeletionPassword     bool            `json:"has_deletion_password"`
	CreatedAt               time.Time       `json:"created_at"`
	LastBumpedAt            time.Time       `json:"last_bumped_at"`
	ReplyCount              int             `json:"reply_count"`
	Replies                 []ReplyResponse `json:"replies"`
}

type ReplyResponse struct {
	Id                      domain.ReplyId  `json:"id"`
	ThreadId                domain.ThreadId `json:"thread_id"`
	ParentReplyId           *domain.ReplyId `json:"parent_reply_id"`
	Comment                 string          `json:"comment"`
	PosterName              string          `json:"poster_name"`
	ImageOriginalFilename   *string         `json:"image_original_filename"`
	ImageFilenameStored     *string         `json:"image_filename_stored"`
	ThumbnailFilenameStored *string         `json:"thumbnail_filename_stored"`
	ImageMimetype           *string         `json:"image_mimetype"`
	ImageFilesizeBytes      *int64          `json:"image_filesize_bytes"`
	ImageWidth              *int            `json:"image_width"`
	ImageHeight             *int            `json:"image_height"`
	ImageURL                *string         `json:"image_url"`
	ThumbnailURL            *string         `json:"thumbnail_url"`
	CreatedAt               time.Time       `json:"created_at"`
	ChildReplies            []ReplyResponse `json:"child_replies"`
}

type PaginationResponse struct {
	CurrentPage  int `json:"current_page"`
	TotalPages   int `json:"total_pages"`
	TotalThreads int `json:"total_threads"`
}

type ThreadPageResponse struct {
	Threads    []ThreadResponse   `json:"threads"`
	Pagination PaginationResponse `json:"pagination"`
}

func NewThreadResponse(t domain.Thread, urls MediaURLs) ThreadResponse {
	return ThreadResponse{
		Id:                      t.Id,
		BoardId:                 t.BoardId,
		Subject:                 t.Subject,
		Comment:                 t.Comment,
		PosterName:              t.PosterName,
		ImageOriginalFilename:   t.ImageOriginalFilename,
		ImageFilenameStored:     t.Image.ImageFilename,
		ThumbnailFilenameStored: t.Image.ThumbnailFilename,
		ImageMimetype:           t.Image.MimeType,
		ImageFilesizeBytes:      t.Image.SizeBytes,
		ImageWidth:              t.Image.Width,
		ImageHeight:             t.Image.Height,
		ImageURL:                urls.Image(t.Image.ImageFilename),
		ThumbnailURL:            urls.Thumbnail(t.Image.ThumbnailFilename),
		HasDeletionPassword:     t.HasPassword(),
		CreatedAt:               t.CreatedAt,
		LastBumpedAt:            t.LastBumpedAt,
		ReplyCount:              t.ReplyCount,
		Replies:                 newReplyResponses(t.Replies, urls),
	}
}

func newReplyResponses(replies []domain.Reply, urls MediaURLs) []ReplyResponse {
	return lo.Map(replies, func(r domain.Reply, _ int) ReplyResponse {
		return NewReplyResponse(r, urls)
	})
}

func NewReplyResponse(r domain.Reply, urls MediaURLs) ReplyResponse {
	resp := ReplyResponse{
		Id:                    r.Id,
		ThreadId:              r.ThreadId,
		ParentReplyId:         r.ParentReplyId,
		Comment:               r.Comment,
		PosterName:            r.PosterName,
		ImageOriginalFilename: r.ImageOriginalFilename,
		CreatedAt:             r.CreatedAt,
		ChildReplies:          newReplyResponses(r.ChildReplies, urls),
	}
	if img := r.Image; img != nil {
		resp.ImageFilenameStored = &img.ImageFilename
		resp.ThumbnailFilenameStored = &img.ThumbnailFilename
		resp.ImageMimetype = &img.MimeType
		resp.ImageFilesizeBytes = &img.SizeBytes
		resp.ImageWidth = &img.Width
		resp.ImageHeight = &img.Height
		imageURL := urls.Image(img.ImageFilename)
		resp.ImageURL = &imageURL
		if img.ThumbnailFilename != "" {
			thumbnailURL := urls.Thumbnail(img.ThumbnailFilename)
			resp.ThumbnailURL = &thumbnailURL
		}
	}
	return resp
}

func NewThreadPageResponse(page domain.ThreadPage, urls MediaURLs) ThreadPageResponse {
	return ThreadPageResponse{
		Threads: lo.Map(page.Threads, func(t domain.Thread, _ int) ThreadResponse {
			return NewThreadResponse(t, urls)
		}),
		Pagination: PaginationResponse{
			CurrentPage:  page.Pagination.CurrentPage,
			TotalPages:   page.Pagination.TotalPages,
			TotalThreads: page.Pagination.TotalThreads,
		},
	}
}
