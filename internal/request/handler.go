package request

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/wecare-dev/wecare/internal/httpx"
	"github.com/wecare-dev/wecare/internal/middleware"
	"github.com/wecare-dev/wecare/internal/user"
)

type Handler interface {
	Create(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	UpdateStatus(w http.ResponseWriter, r *http.Request)
	Routes() chi.Router
}

type handler struct {
	logger    *zap.Logger
	repo      Repo
	validator *validator.Validate
}

func NewHandler(repo Repo, l *zap.Logger) Handler {
	return &handler{
		logger:    l,
		repo:      repo,
		validator: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (h *handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Patch("/{id}/status", h.UpdateStatus)
	return r
}

type createRequestRequest struct {
	Category    string `json:"category"    validate:"required,oneof=medical transport supplies other"`
	Description string `json:"description" validate:"required,min=10,max=2000"`
}

func (h *handler) Create(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	sess, ok := middleware.SessionFromContext(ctx)
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, httpx.ErrorResponse[any]{
			Code: httpx.ErrUnauthorized, Message: "unauthenticated",
		})
		return
	}

	var req createRequestRequest
	if !httpx.DecodeJSON(w, r, h.logger, &req) {
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, httpx.ErrorResponse[[]httpx.FieldError]{
			Code:    httpx.ErrInvalidData,
			Message: "invalid data",
			Details: httpx.ValidationDetails(err),
		})
		return
	}

	hr, err := h.repo.Create(ctx, CreateRequestDTO{
		RequesterID: sess.UserID,
		Category:    req.Category,
		Description: req.Description,
	})
	if err != nil {
		h.logger.Error("failed to create help request", zap.Error(err))
		httpx.WriteError(w, http.StatusInternalServerError, httpx.ErrorResponse[any]{
			Code: httpx.ErrInternal, Message: "internal server error",
		})
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, hr)
}

// List shows community members their own requests and triage roles the
// whole queue.
func (h *handler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	sess, ok := middleware.SessionFromContext(ctx)
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, httpx.ErrorResponse[any]{
			Code: httpx.ErrUnauthorized, Message: "unauthenticated",
		})
		return
	}

	var (
		out []HelpRequest
		err error
	)
	if sess.Role == user.RoleCommunity {
		out, err = h.repo.ListByRequester(ctx, sess.UserID)
	} else {
		out, err = h.repo.ListAll(ctx)
	}
	if err != nil {
		h.logger.Error("failed to list help requests", zap.Error(err))
		httpx.WriteError(w, http.StatusInternalServerError, httpx.ErrorResponse[any]{
			Code: httpx.ErrInternal, Message: "internal server error",
		})
		return
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

type updateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

func (h *handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	sess, ok := middleware.SessionFromContext(ctx)
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, httpx.ErrorResponse[any]{
			Code: httpx.ErrUnauthorized, Message: "unauthenticated",
		})
		return
	}

	// triage is for officer-side roles, requesters only file and read
	if sess.Role == user.RoleCommunity {
		httpx.WriteError(w, http.StatusForbidden, httpx.ErrorResponse[any]{
			Code: httpx.ErrForbidden, Message: "forbidden",
		})
		return
	}
	publicID := chi.URLParam(r, "id")

	var req updateStatusRequest
	if !httpx.DecodeJSON(w, r, h.logger, &req) {
		return
	}
	next, err := ParseStatus(req.Status)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, httpx.ErrorResponse[any]{
			Code: httpx.ErrInvalidData, Message: "invalid data",
		})
		return
	}

	hr, err := h.repo.GetByID(ctx, publicID)
	if err != nil {
		h.writeRepoError(w, err)
		return
	}
	if !hr.Status.CanTransitionTo(next) {
		httpx.WriteError(w, http.StatusConflict, httpx.ErrorResponse[any]{
			Code:    httpx.ErrConflict,
			Message: "cannot move request from " + string(hr.Status) + " to " + string(next),
		})
		return
	}

	if err := h.repo.UpdateStatus(ctx, publicID, hr.Status, next); err != nil {
		h.writeRepoError(w, err)
		return
	}
	hr.Status = next
	httpx.WriteJSON(w, http.StatusOK, hr)
}

func (h *handler) writeRepoError(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrNotFound) {
		httpx.WriteError(w, http.StatusNotFound, httpx.ErrorResponse[any]{
			Code: httpx.ErrNotFound, Message: "help request not found",
		})
		return
	}
	h.logger.Error("help request repo error", zap.Error(err))
	httpx.WriteError(w, http.StatusInternalServerError, httpx.ErrorResponse[any]{
		Code: httpx.ErrInternal, Message: "internal server error",
	})
}
