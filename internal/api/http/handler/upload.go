package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/dtroode/gophchat-server/internal/logger"
	"github.com/dtroode/gophchat-server/internal/model"
)

// UploadService defines submission of messages carrying a file.
type UploadService interface {
	SubmitWithAttachment(ctx context.Context, params model.SubmitParams, data []byte, fileName string) (model.ResolvedMessage, error)
}

// Upload handles multipart message uploads.
type Upload struct {
	uploadService UploadService
	maxBytes      int64
	logger        *logger.Logger
}

// NewUpload creates a new Upload handler accepting bodies up to maxBytes.
func NewUpload(uploadService UploadService, maxBytes int64, logger *logger.Logger) *Upload {
	return &Upload{
		uploadService: uploadService,
		maxBytes:      maxBytes,
		logger:        logger,
	}
}

// UploadImage stores the "file" part, relays the "message" field with it attached
// and answers with the resolved message.
func (h *Upload) UploadImage(w http.ResponseWriter, r *http.Request) {
	if r.ContentLength > h.maxBytes {
		handleError(w, errRequestTooLarge)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	if err := r.ParseMultipartForm(h.maxBytes); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			handleError(w, errRequestTooLarge)
			return
		}
		handleError(w, fmt.Errorf("%w: malformed multipart body", model.ErrInvalidInput))
		return
	}

	var params model.SubmitParams
	if err := json.Unmarshal([]byte(r.FormValue("message")), &params); err != nil {
		handleError(w, fmt.Errorf("%w: message field must be a JSON object", model.ErrInvalidInput))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		handleError(w, fmt.Errorf("%w: file part is required", model.ErrInvalidInput))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		handleError(w, err)
		return
	}

	resolved, err := h.uploadService.SubmitWithAttachment(r.Context(), params, data, header.Filename)
	if err != nil {
		h.logger.Error("Upload handler: submit with attachment failed",
			"sender_id", params.SenderID,
			"recipient_id", params.RecipientID,
			"error", err.Error())
		// not found here means the stored attachment vanished, not a missing user
		if errors.Is(err, model.ErrNotFound) {
			writeFailure(w, http.StatusInternalServerError, "Attachment could not be resolved")
			return
		}
		handleError(w, err)
		return
	}

	h.logger.Info("Upload handler: message with attachment accepted",
		"message_id", resolved.ID,
		"sender_id", resolved.SenderID)

	writeJSON(w, http.StatusOK, resolved)
}
