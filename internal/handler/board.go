package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/itchan-dev/boardapi/internal/api"
	"github.com/itchan-dev/boardapi/internal/utils"
)

func (h *Handler) CreateBoard(w http.ResponseWriter, r *http.Request) {
	var body api.CreateBoardRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	board, err := h.board.Create(r.Context(), body.ToDomain())
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, api.NewBoardResponse(board))
}

func (h *Handler) GetBoards(w http.ResponseWriter, r *http.Request) {
	boards, err := h.board.List(r.Context())
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, api.NewBoardsResponse(boards))
}

func (h *Handler) GetBoard(w http.ResponseWriter, r *http.Request) {
	board, err := h.board.Get(r.Context(), chi.URLParam(r, "board"))
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, api.NewBoardResponse(board))
}

func (h *Handler) UpdateBoard(w http.ResponseWriter, r *http.Request) {
	var body api.UpdateBoardRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	board, err := h.board.Update(r.Context(), chi.URLParam(r, "board"), body.ToDomain())
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, api.NewBoardResponse(board))
}

func (h *Handler) DeleteBoard(w http.ResponseWriter, r *http.Request) {
	if err := h.board.Delete(r.Context(), chi.URLParam(r, "board")); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
