package api

import (
	"time"

	"github.com/samber/lo"

	"github.com/itchan-dev/boardapi/internal/domain"
)

// Request DTOs

type CreateBoardRequest struct {
	ShortName   string  `json:"short_name" validate:"required,alphanum,max=10"`
	Name        string  `json:"name" validate:"required,max=100"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=1000"`
}

func (r CreateBoardRequest) ToDomain() domain.BoardCreationData {
	return domain.BoardCreationData{ShortName: r.ShortName, Name: r.Name, Description: r.Description}
}

type UpdateBoardRequest struct {
	Name        *string `json:"name,omitempty" validate:"omitnil,min=1,max=100"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=1000"`
}

func (r UpdateBoardRequest) ToDomain() domain.BoardUpdateData {
	return domain.BoardUpdateData{Name: r.Name, Description: r.Description}
}

// Response DTOs

type BoardResponse struct {
	Id          domain.BoardId `json:"id"`
	ShortName   string         `json:"short_name"`
	Name        string         `json:"name"`
	Description *string        `json:"description"`
	ThreadCount int            `json:"thread_count"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

func NewBoardResponse(b domain.Board) BoardResponse {
	return BoardResponse{
		Id:          b.Id,
		ShortName:   b.ShortName,
		Name:        b.Name,
		Description: b.Description,
		ThreadCount: b.ThreadCount,
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
	}
}

func NewBoardsResponse(boards []domain.Board) []BoardResponse {
	return lo.Map(boards, func(b domain.Board, _ int) BoardResponse {
		return NewBoardResponse(b)
	})
}
