package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/itchan-dev/boardapi/internal/api"
	"github.com/itchan-dev/boardapi/internal/domain"
	"github.com/itchan-dev/boardapi/internal/logger"
	"github.com/itchan-dev/boardapi/internal/utils"
	"github.com/itchan-dev/boardapi/internal/validation"
)

const imageField = "image"

// multipart overhead and text fields on top of the image itself
const formBufferSize = 1 << 20

func (h *Handler) CreateThread(w http.ResponseWriter, r *http.Request) {
	maxImageSize := h.cfg.Public.MaxImageSize
	maxRequestSize := validation.CalculateMaxRequestSize(maxImageSize, formBufferSize)
	if err := validation.ValidateAndParseMultipart(r, w, maxRequestSize); err != nil {
		utils.WriteErrorAndStatusCode(w, uploadError(err, maxImageSize))
		return
	}
	defer r.MultipartForm.RemoveAll()

	body := api.CreateThreadRequest{
		Subject:          formValue(r, "subject"),
		DeletionPassword: formValue(r, "deletion_password"),
	}
	if comment := formValue(r, "comment"); comment != nil {
		body.Comment = *comment
	}
	if name := formValue(r, "poster_name"); name != nil {
		body.PosterName = *name
	}
	if err := utils.Validate(&body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	upload, cleanup, err := validation.ImageUpload(r.MultipartForm, imageField, h.cfg.Public.AllowedImageMimeTypes, maxImageSize)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, uploadError(err, maxImageSize))
		return
	}
	defer cleanup()

	ip, err := utils.GetIP(r)
	if err != nil {
		logger.Log.Warn("failed to determine client ip", "error", err)
	}

	thread, err := h.thread.Create(r.Context(), domain.ThreadCreationData{
		Board:            chi.URLParam(r, "board"),
		Subject:          body.Subject,
		Comment:          body.Comment,
		PosterName:       body.PosterName,
		DeletionPassword: body.DeletionPassword,
		Image:            upload,
		IPAddress:        ip,
	})
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, api.NewThreadResponse(thread, h.urls))
}

func (h *Handler) GetThreads(w http.ResponseWriter, r *http.Request) {
	page, err := parseOptionalIntParam(r, "page")
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	limit, err := parseOptionalIntParam(r, "limit")
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	result, err := h.thread.List(r.Context(), chi.URLParam(r, "board"), domain.PageRequest{Page: page, Limit: limit})
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, api.NewThreadPageResponse(result, h.urls))
}

func (h *Handler) GetThread(w http.ResponseWriter, r *http.Request) {
	id, err := parseIntParam(chi.URLParam(r, "thread"), "thread id")
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	thread, err := h.thread.Get(r.Context(), chi.URLParam(r, "board"), id)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, api.NewThreadResponse(thread, h.urls))
}

func (h *Handler) DeleteThread(w http.ResponseWriter, r *http.Request) {
	id, err := parseIntParam(chi.URLParam(r, "thread"), "thread id")
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	var body api.DeleteThreadRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	outcome, err := h.thread.Delete(r.Context(), chi.URLParam(r, "board"), id, body.DeletionPassword)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	switch outcome {
	case domain.Deleted:
		w.WriteHeader(http.StatusNoContent)
	case domain.DeleteBoardNotFound:
		utils.WriteMessage(w, http.StatusNotFound, "Board not found")
	case domain.DeleteThreadNotFound:
		utils.WriteMessage(w, http.StatusNotFound, "Thread not found")
	case domain.DeletePasswordRequired:
		utils.WriteMessage(w, http.StatusBadRequest, "Deletion password is required")
	case domain.DeleteInvalidPassword:
		utils.WriteMessage(w, http.StatusForbidden, "Invalid deletion password")
	default:
		logger.Log.Error("unknown delete outcome", "outcome", outcome.String())
		utils.WriteMessage(w, http.StatusInternalServerError, "Failed to delete thread")
	}
}
