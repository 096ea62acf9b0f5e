package domain

type (
	BoardId        = int64
	BoardShortName = string
	BoardName      = string

	ThreadId = int64
	ReplyId  = int64

	PosterName = string
	Comment    = string
	Filename   = string
)

// DefaultPosterName is stored when a poster leaves the name empty.
const DefaultPosterName PosterName = "Anonymous"
