package patient

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
	Get(w http.ResponseWriter, r *http.Request)
	CreateAppointment(w http.ResponseWriter, r *http.Request)
	ListAppointments(w http.ResponseWriter, r *http.Request)
	Routes() chi.Router
	AppointmentRoutes() chi.Router
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
	r.Get("/{id}", h.Get)
	r.Post("/{id}/appointments", h.CreateAppointment)
	return r
}

func (h *handler) AppointmentRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ListAppointments)
	return r
}

type createPatientRequest struct {
	CitizenID string `json:"citizen_id" validate:"required,len=13,numeric"`
	Name      string `json:"name"       validate:"required,min=1,max=128"`
	Address   string `json:"address"    validate:"required,min=1,max=512"`
	Notes     string `json:"notes"      validate:"omitempty,max=2000"`
}

// Create registers a patient. Executives read the registry, they never
// write to it.
func (h *handler) Create(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	sess, ok := middleware.SessionFromContext(ctx)
	if !ok {
		writeUnauthenticated(w)
		return
	}
	if sess.Role == user.RoleExecutive {
		writeForbidden(w)
		return
	}

	var req createPatientRequest
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

	p, err := h.repo.Create(ctx, CreatePatientDTO{
		CitizenID:    req.CitizenID,
		Name:         req.Name,
		Address:      req.Address,
		Notes:        req.Notes,
		RegisteredBy: sess.UserID,
	})
	if err != nil {
		if errors.Is(err, ErrDuplicateCitizenID) {
			httpx.WriteError(w, http.StatusConflict, httpx.ErrorResponse[any]{
				Code: httpx.ErrConflict, Message: "patient already registered",
			})
			return
		}
		h.logger.Error("failed to create patient", zap.Error(err))
		writeInternal(w)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, p)
}

func (h *handler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	out, err := h.repo.List(ctx)
	if err != nil {
		h.logger.Error("failed to list patients", zap.Error(err))
		writeInternal(w)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

func (h *handler) Get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	p, err := h.repo.GetByID(ctx, chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.WriteError(w, http.StatusNotFound, httpx.ErrorResponse[any]{
				Code: httpx.ErrNotFound, Message: "patient not found",
			})
			return
		}
		h.logger.Error("failed to get patient", zap.Error(err))
		writeInternal(w)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, p)
}

type createAppointmentRequest struct {
	ScheduledAt time.Time `json:"scheduled_at" validate:"required"`
	Purpose     string    `json:"purpose"      validate:"required,min=1,max=512"`
}

func (h *handler) CreateAppointment(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	sess, ok := middleware.SessionFromContext(ctx)
	if !ok {
		writeUnauthenticated(w)
		return
	}
	if sess.Role == user.RoleExecutive {
		writeForbidden(w)
		return
	}

	var req createAppointmentRequest
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
	if req.ScheduledAt.Before(time.Now()) {
		httpx.WriteError(w, http.StatusBadRequest, httpx.ErrorResponse[any]{
			Code: httpx.ErrInvalidData, Message: "scheduled_at must be in the future",
		})
		return
	}

	a, err := h.repo.CreateAppointment(ctx, CreateAppointmentDTO{
		PatientID:   chi.URLParam(r, "id"),
		ScheduledAt: req.ScheduledAt,
		Purpose:     req.Purpose,
		CreatedBy:   sess.UserID,
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.WriteError(w, http.StatusNotFound, httpx.ErrorResponse[any]{
				Code: httpx.ErrNotFound, Message: "patient not found",
			})
			return
		}
		h.logger.Error("failed to create appointment", zap.Error(err))
		writeInternal(w)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, a)
}

func (h *handler) ListAppointments(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	out, err := h.repo.ListAppointments(ctx)
	if err != nil {
		h.logger.Error("failed to list appointments", zap.Error(err))
		writeInternal(w)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

func writeUnauthenticated(w http.ResponseWriter) {
	httpx.WriteError(w, http.StatusUnauthorized, httpx.ErrorResponse[any]{
		Code: httpx.ErrUnauthorized, Message: "unauthenticated",
	})
}

func writeForbidden(w http.ResponseWriter) {
	httpx.WriteError(w, http.StatusForbidden, httpx.ErrorResponse[any]{
		Code: httpx.ErrForbidden, Message: "forbidden",
	})
}

func writeInternal(w http.ResponseWriter) {
	httpx.WriteError(w, http.StatusInternalServerError, httpx.ErrorResponse[any]{
		Code: httpx.ErrInternal, Message: "internal server error",
	})
}
