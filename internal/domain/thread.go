package domain

import "time"

// ThreadCreationData is what a client submits to open a new thread.
type ThreadCreationData struct {
	Board            BoardShortName
	Subject          *string
	Comment          Comment
	PosterName       PosterName
	DeletionPassword *string
	Image            *Upload
	IPAddress        string
}

// NewThread is a thread row ready to be inserted. Media is already stored
// and the password, if any, is already hashed.
type NewThread struct {
	BoardId               BoardId
	Subject               *string
	Comment               Comment
	PosterName            PosterName
	ImageOriginalFilename string
	Image                 StoredImage
	DeletionPasswordHash  *string
	IPAddress             string
}

type Thread struct {
	Id                    ThreadId
	BoardId               BoardId
	Subject               *string
	Comment               Comment
	PosterName            PosterName
	ImageOriginalFilename string
	Image                 StoredImage
	DeletionPasswordHash  *string
	IPAddress             *string
	CreatedAt             time.Time
	LastBumpedAt          time.Time

	ReplyCount int
	// newest first on board pages, oldest first on the thread page
	Replies []Reply
}

// HasPassword reports whether deleting the thread requires a password.
func (t Thread) HasPassword() bool {
	return t.DeletionPasswordHash != nil && *t.DeletionPasswordHash != ""
}

type Reply struct {
	Id                    ReplyId
	ThreadId              ThreadId
	ParentReplyId         *ReplyId
	Comment               Comment
	PosterName            PosterName
	ImageOriginalFilename *string
	Image                 *StoredImage
	CreatedAt             time.Time

	// one level deep, children carry no children of their own
	ChildReplies []Reply
}
