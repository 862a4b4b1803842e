package admin

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/wecare-dev/wecare/internal/authz"
	"github.com/wecare-dev/wecare/internal/httpx"
	"github.com/wecare-dev/wecare/internal/middleware"
	"github.com/wecare-dev/wecare/internal/user"
)

// CacheInvalidator lets admin writes drop stale resolver cache entries so
// role changes and deactivations take effect on the next request.
type CacheInvalidator interface {
	Invalidate(publicID string)
}

type Handler interface {
	ListUsers(w http.ResponseWriter, r *http.Request)
	CreateUser(w http.ResponseWriter, r *http.Request)
	UpdateRole(w http.ResponseWriter, r *http.Request)
	DeactivateUser(w http.ResponseWriter, r *http.Request)
	CreateGrant(w http.ResponseWriter, r *http.Request)
	RevokeGrant(w http.ResponseWriter, r *http.Request)
	ListGrants(w http.ResponseWriter, r *http.Request)
	Routes() chi.Router
}

type handler struct {
	logger    *zap.Logger
	users     user.Repo
	grants    authz.GrantRepo
	cache     CacheInvalidator
	validator *validator.Validate
}

func NewHandler(users user.Repo, grants authz.GrantRepo, cache CacheInvalidator, l *zap.Logger) Handler {
	return &handler{
		logger:    l,
		users:     users,
		grants:    grants,
		cache:     cache,
		validator: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (h *handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/users", h.ListUsers)
	r.Post("/users", h.CreateUser)
	r.Patch("/users/{id}/role", h.UpdateRole)
	r.Delete("/users/{id}", h.DeactivateUser)
	r.Get("/grants", h.ListGrants)
	r.Post("/grants", h.CreateGrant)
	r.Delete("/grants/{userID}", h.RevokeGrant)
	return r
}

func (h *handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	users, err := h.users.List(ctx)
	if err != nil {
		h.logger.Error("failed to list users", zap.Error(err))
		writeInternal(w)
		return
	}
	out := make([]user.Profile, 0, len(users))
	for i := range users {
		out = append(out, users[i].Profile())
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

type createUserRequest struct {
	CitizenID string `json:"citizen_id" validate:"required,len=13,numeric"`
	Name      string `json:"name"       validate:"required,min=1,max=128"`
	Password  string `json:"password"   validate:"required,min=8,max=72"`
	Role      string `json:"role"       validate:"required"`
}

func (h *handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var req createUserRequest
	if !httpx.DecodeJSON(w, r, h.logger, &req) {
		return
	}
	if err := h.validator.Struct(req); err != nil {
		writeValidation(w, err)
		return
	}
	role, err := user.ParseRole(req.Role)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, httpx.ErrorResponse[any]{
			Code: httpx.ErrInvalidData, Message: "invalid data",
		})
		return
	}

	u, err := h.users.Create(ctx, user.CreateUserDTO{
		CitizenID: req.CitizenID,
		Name:      req.Name,
		Password:  req.Password,
		Role:      role,
	})
	if err != nil {
		if errors.Is(err, user.ErrDuplicateCitizenID) {
			httpx.WriteError(w, http.StatusConflict, httpx.ErrorResponse[any]{
				Code: httpx.ErrConflict, Message: "citizen id already exists",
			})
			return
		}
		h.logger.Error("failed to create user", zap.Error(err))
		writeInternal(w)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, u.Profile())
}

type updateRoleRequest struct {
	Role string `json:"role" validate:"required"`
}

func (h *handler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	publicID := chi.URLParam(r, "id")

	var req updateRoleRequest
	if !httpx.DecodeJSON(w, r, h.logger, &req) {
		return
	}
	role, err := user.ParseRole(req.Role)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, httpx.ErrorResponse[any]{
			Code: httpx.ErrInvalidData, Message: "invalid data",
		})
		return
	}

	if err := h.users.UpdateRole(ctx, publicID, role); err != nil {
		h.writeUserError(w, err)
		return
	}
	h.cache.Invalidate(publicID)

	if sess, ok := middleware.SessionFromContext(ctx); ok {
		h.logger.Info("user role changed",
			zap.String("user_id", publicID),
			zap.String("role", string(role)),
			zap.String("changed_by", sess.UserID),
		)
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) DeactivateUser(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	publicID := chi.URLParam(r, "id")

	if err := h.users.Deactivate(ctx, publicID); err != nil {
		h.writeUserError(w, err)
		return
	}
	h.cache.Invalidate(publicID)
	w.WriteHeader(http.StatusNoContent)
}

type createGrantRequest struct {
	UserID string `json:"user_id" validate:"required,uuid"`
	Reason string `json:"reason"  validate:"required,min=10,max=512"`
}

func (h *handler) CreateGrant(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	sess, ok := middleware.SessionFromContext(ctx)
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, httpx.ErrorResponse[any]{
			Code: httpx.ErrUnauthorized, Message: "unauthenticated",
		})
		return
	}

	var req createGrantRequest
	if !httpx.DecodeJSON(w, r, h.logger, &req) {
		return
	}
	if err := h.validator.Struct(req); err != nil {
		writeValidation(w, err)
		return
	}

	if err := h.grants.Create(ctx, authz.Grant{
		UserID:    req.UserID,
		GrantedBy: sess.UserID,
		Reason:    req.Reason,
	}); err != nil {
		h.logger.Error("failed to create grant", zap.Error(err))
		writeInternal(w)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (h *handler) RevokeGrant(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	sess, ok := middleware.SessionFromContext(ctx)
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, httpx.ErrorResponse[any]{
			Code: httpx.ErrUnauthorized, Message: "unauthenticated",
		})
		return
	}

	userID := chi.URLParam(r, "userID")
	if err := h.grants.Revoke(ctx, userID, sess.UserID); err != nil {
		if errors.Is(err, authz.ErrGrantNotFound) {
			httpx.WriteError(w, http.StatusNotFound, httpx.ErrorResponse[any]{
				Code: httpx.ErrNotFound, Message: "grant not found",
			})
			return
		}
		h.logger.Error("failed to revoke grant", zap.Error(err))
		writeInternal(w)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) ListGrants(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	grants, err := h.grants.List(ctx)
	if err != nil {
		h.logger.Error("failed to list grants", zap.Error(err))
		writeInternal(w)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, grants)
}

func (h *handler) writeUserError(w http.ResponseWriter, err error) {
	if errors.Is(err, user.ErrNotFound) {
		httpx.WriteError(w, http.StatusNotFound, httpx.ErrorResponse[any]{
			Code: httpx.ErrNotFound, Message: "user not found",
		})
		return
	}
	h.logger.Error("user repo error", zap.Error(err))
	writeInternal(w)
}

func writeValidation(w http.ResponseWriter, err error) {
	httpx.WriteError(w, http.StatusBadRequest, httpx.ErrorResponse[[]httpx.FieldError]{
		Code:    httpx.ErrInvalidData,
		Message: "invalid data",
		Details: httpx.ValidationDetails(err),
	})
}

func writeInternal(w http.ResponseWriter) {
	httpx.WriteError(w, http.StatusInternalServerError, httpx.ErrorResponse[any]{
		Code: httpx.ErrInternal, Message: "internal server error",
	})
}
