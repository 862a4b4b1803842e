package auth

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/wecare-dev/wecare/internal/httpx"
	"github.com/wecare-dev/wecare/internal/session"
)

type sessionResolver interface {
	Resolve(ctx context.Context, req *http.Request, src session.Source) (*session.Session, error)
}

type Handler interface {
	Login(w http.ResponseWriter, r *http.Request)
	Logout(w http.ResponseWriter, r *http.Request)
	Me(w http.ResponseWriter, r *http.Request)
	Routes() chi.Router
}

type handler struct {
	logger    *zap.Logger
	service   Service
	resolver  sessionResolver
	cookies   httpx.CookieSettings
	validator *validator.Validate
}

func NewHandler(service Service, resolver sessionResolver, cookies httpx.CookieSettings, l *zap.Logger) Handler {
	v := validator.New(validator.WithRequiredStructEnabled())
	return &handler{
		logger:    l,
		service:   service,
		resolver:  resolver,
		cookies:   cookies,
		validator: v,
	}
}

func (h *handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/login", h.Login)
	r.Post("/logout", h.Logout)
	r.Get("/me", h.Me)
	return r
}

type loginRequest struct {
	CitizenID string `json:"citizen_id" validate:"required,len=13,numeric"`
	Password  string `json:"password"   validate:"required"`
}

func (h *handler) Login(w http.ResponseWriter, r *http.Request) {
	/** common checks for all endpoints **/
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB
	if ct := r.Header.Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		httpx.WriteError(w, http.StatusUnsupportedMediaType, httpx.ErrorResponse[any]{
			Code:    httpx.ErrUnsupportedMedia,
			Message: "Content-Type must be application/json",
		})
		return
	}

	/** unmarshal & validate here */
	var req loginRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		h.logger.Warn("failed to decode login request body", zap.Error(err))
		httpx.WriteError(w, http.StatusBadRequest, httpx.ErrorResponse[any]{
			Code:    httpx.ErrInvalidJSON,
			Message: "invalid request body",
		})
		return
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		httpx.WriteError(w, http.StatusBadRequest, httpx.ErrorResponse[any]{
			Code:    httpx.ErrInvalidJSON,
			Message: "request body must contain a single JSON object",
		})
		return
	}

	// the length gate runs before any store read
	if err := h.validator.Struct(req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, httpx.ErrorResponse[[]httpx.FieldError]{
			Code:    httpx.ErrInvalidData,
			Message: "invalid data",
			Details: httpx.ValidationDetails(err),
		})
		return
	}

	/** business logic */
	res, err := h.service.Login(ctx, req.CitizenID, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			// same body for unknown citizen id and wrong password
			httpx.WriteError(w, http.StatusUnauthorized, httpx.ErrorResponse[any]{
				Code:    httpx.ErrUnauthorized,
				Message: "invalid credentials",
			})
			return
		}
		h.logger.Error("login failed", zap.Error(err))
		httpx.WriteError(w, http.StatusInternalServerError, httpx.ErrorResponse[any]{
			Code:    httpx.ErrInternal,
			Message: "internal server error",
		})
		return
	}

	httpx.SetSessionCookie(w, res.Token, res.ExpiresAt, h.cookies)
	httpx.WriteJSON(w, http.StatusOK, res.User.Profile())
}

func (h *handler) Logout(w http.ResponseWriter, r *http.Request) {
	httpx.ClearSessionCookie(w, h.cookies)
	w.WriteHeader(http.StatusNoContent)
}

// Me resolves the session cookie and returns the safe profile. Any failure
// clears the cookie in the same response so the browser stops presenting a
// credential that will never work again.
func (h *handler) Me(w http.ResponseWriter, r *http.Request) {
	sess, err := h.resolver.Resolve(r.Context(), r, session.SourceCookie)
	if err != nil {
		httpx.ClearSessionCookie(w, h.cookies)
		httpx.WriteError(w, http.StatusUnauthorized, httpx.ErrorResponse[any]{
			Code:    httpx.ErrUnauthorized,
			Message: "token is expired or invalid",
		})
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"id":         sess.UserID,
		"citizen_id": sess.CitizenID,
		"name":       sess.Name,
		"role":       sess.Role,
	})
}
