package domain

import "time"

// to iterate thru layers: handler -> service -> storage
type BoardCreationData struct {
	ShortName   BoardShortName
	Name        BoardName
	Description *string
}

// nil fields are left untouched
type BoardUpdateData struct {
	Name        *BoardName
	Description *string
}

type Board struct {
	Id          BoardId
	ShortName   BoardShortName
	Name        BoardName
	Description *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	ThreadCount int
}
