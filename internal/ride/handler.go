package ride

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

type createRideRequest struct {
	PatientName   string `json:"patient_name"   validate:"required,min=1,max=128"`
	PickupAddress string `json:"pickup_address" validate:"required,min=1,max=512"`
	Destination   string `json:"destination"    validate:"required,min=1,max=512"`
	DriverID      string `json:"driver_id"      validate:"omitempty,uuid"`
}

// Create is officer-side: drivers never create rides, they receive them.
func (h *handler) Create(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	sess, ok := middleware.SessionFromContext(ctx)
	if !ok {
		writeUnauthenticated(w)
		return
	}
	if sess.Role == user.RoleDriver {
		httpx.WriteError(w, http.StatusForbidden, httpx.ErrorResponse[any]{
			Code: httpx.ErrForbidden, Message: "forbidden",
		})
		return
	}

	var req createRideRequest
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

	ride, err := h.repo.Create(ctx, CreateRideDTO{
		PatientName:   req.PatientName,
		PickupAddress: req.PickupAddress,
		Destination:   req.Destination,
		DriverID:      req.DriverID,
		CreatedBy:     sess.UserID,
	})
	if err != nil {
		h.logger.Error("failed to create ride", zap.Error(err))
		writeInternal(w)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, ride)
}

// List shows drivers their own assignments and everyone else the full board.
func (h *handler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	sess, ok := middleware.SessionFromContext(ctx)
	if !ok {
		writeUnauthenticated(w)
		return
	}

	var (
		out []Ride
		err error
	)
	if sess.Role == user.RoleDriver {
		out, err = h.repo.ListByDriver(ctx, sess.UserID)
	} else {
		out, err = h.repo.ListAll(ctx)
	}
	if err != nil {
		h.logger.Error("failed to list rides", zap.Error(err))
		writeInternal(w)
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
		writeUnauthenticated(w)
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

	ride, err := h.repo.GetByID(ctx, publicID)
	if err != nil {
		h.writeRepoError(w, err)
		return
	}

	// a driver may only move a ride that is theirs
	if sess.Role == user.RoleDriver && !ride.AssignedTo(sess.UserID) {
		httpx.WriteError(w, http.StatusForbidden, httpx.ErrorResponse[any]{
			Code: httpx.ErrForbidden, Message: "forbidden",
		})
		return
	}
	if !ride.Status.CanTransitionTo(next) {
		httpx.WriteError(w, http.StatusConflict, httpx.ErrorResponse[any]{
			Code:    httpx.ErrConflict,
			Message: "cannot move ride from " + string(ride.Status) + " to " + string(next),
		})
		return
	}

	if err := h.repo.UpdateStatus(ctx, publicID, ride.Status, next); err != nil {
		h.writeRepoError(w, err)
		return
	}
	ride.Status = next
	httpx.WriteJSON(w, http.StatusOK, ride)
}

func (h *handler) writeRepoError(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrNotFound) {
		httpx.WriteError(w, http.StatusNotFound, httpx.ErrorResponse[any]{
			Code: httpx.ErrNotFound, Message: "ride not found",
		})
		return
	}
	h.logger.Error("ride repo error", zap.Error(err))
	writeInternal(w)
}

func writeUnauthenticated(w http.ResponseWriter) {
	httpx.WriteError(w, http.StatusUnauthorized, httpx.ErrorResponse[any]{
		Code: httpx.ErrUnauthorized, Message: "unauthenticated",
	})
}

func writeInternal(w http.ResponseWriter) {
	httpx.WriteError(w, http.StatusInternalServerError, httpx.ErrorResponse[any]{
		Code: httpx.ErrInternal, Message: "internal server error",
	})
}
