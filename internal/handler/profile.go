package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hngstage/profile-api/internal/catfact"
	"github.com/hngstage/profile-api/internal/middleware"
	"github.com/hngstage/profile-api/internal/model"
)

// ProfileBuilder assembles the profile response.
type ProfileBuilder interface {
	Build(ctx context.Context) (*model.ProfileResponse, error)
}

// ProfileHandler serves GET /me.
type ProfileHandler struct {
	profiles ProfileBuilder
	logger   *slog.Logger
}

// NewProfileHandler creates a new ProfileHandler.
func NewProfileHandler(profiles ProfileBuilder, logger *slog.Logger) *ProfileHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProfileHandler{profiles: profiles, logger: logger}
}

// Me returns the profile enriched with a fresh fact.
// Any failure maps to the generic 500 envelope; the cause is only logged.
// GET /me
func (h *ProfileHandler) Me(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	h.logger.InfoContext(ctx, "GET /me endpoint accessed", slog.String("request_id", requestID))

	resp, err := h.profiles.Build(ctx)
	if err != nil {
		kind := "unexpected"
		if errors.Is(err, catfact.ErrExternalService) {
			kind = "external_service"
		}
		h.logger.ErrorContext(ctx, "failed to build profile",
			slog.String("request_id", requestID),
			slog.String("kind", kind),
			slog.String("error", err.Error()),
		)
		writeJSON(w, http.StatusInternalServerError, model.GenericError(), h.logger)
		return
	}

	writeJSON(w, http.StatusOK, resp, h.logger)
	h.logger.InfoContext(ctx, "GET /me response sent", slog.String("request_id", requestID))
}
