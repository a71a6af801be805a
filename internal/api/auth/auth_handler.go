package auth

import (
	"errors"
	"log/slog"
	"net/http"

	appmetrics "github.com/tabmind/tabmind-server/app/observability/metrics"
	"github.com/tabmind/tabmind-server/internal/api"
	"github.com/tabmind/tabmind-server/internal/types"
)

// AuthHandlerImpl handles HTTP requests for authentication operations.
type AuthHandlerImpl struct {
	authService AuthService
	logger      *slog.Logger
}

func NewAuthHandlerImpl(authService AuthService, logger *slog.Logger) *AuthHandlerImpl {
	return &AuthHandlerImpl{
		authService: authService,
		logger:      logger,
	}
}

// Signup creates a new user and returns a session token with the public
// profile. 400 on missing fields, 409 on duplicate email.
func (h *AuthHandlerImpl) Signup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "Signup"))
	appmetrics.Get().SignupRequestsTotal.Add(ctx, 1)

	var req SignupRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if req.Name == "" || req.Email == "" || req.Password == "" {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Missing fields")
		return
	}

	user, token, err := h.authService.Signup(ctx, req.Name, req.Email, req.Password, req.Role)
	if err != nil {
		if errors.Is(err, types.ErrConflict) {
			api.ErrorResponse(w, r, http.StatusConflict, "Email already in use")
			return
		}
		l.ErrorContext(ctx, "Signup failed", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Server error")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusCreated, AuthResponse{
		Token: token,
		User:  publicUser(user),
	})
}

// Login verifies credentials and returns a fresh session token. Unknown
// email and wrong password produce the same 401.
func (h *AuthHandlerImpl) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "Login"))
	appmetrics.Get().LoginRequestsTotal.Add(ctx, 1)

	var req LoginRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if req.Email == "" || req.Password == "" {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Missing fields")
		return
	}

	user, token, err := h.authService.Login(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, types.ErrUnauthenticated) {
			appmetrics.Get().AuthFailuresTotal.Add(ctx, 1)
			api.ErrorResponse(w, r, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		l.ErrorContext(ctx, "Login failed", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Server error")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, AuthResponse{
		Token: token,
		User:  publicUser(user),
	})
}

// Me returns the public profile of the verified identity. 404 if the id no
// longer resolves to a user.
func (h *AuthHandlerImpl) Me(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "Me"))

	userID, ok := GetUserIDFromContext(ctx)
	if !ok {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	user, err := h.authService.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			api.ErrorResponse(w, r, http.StatusNotFound, "Not found")
			return
		}
		l.ErrorContext(ctx, "User lookup failed", slog.Any("error", err), slog.String("userID", userID))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Server error")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, MeResponse{User: publicUser(user)})
}

// AdminOnly is a trivial acknowledgment behind the admin role predicate; the
// RequireRole middleware does the actual enforcement.
func (h *AuthHandlerImpl) AdminOnly(w http.ResponseWriter, r *http.Request) {
	api.WriteJSONResponse(w, r, http.StatusOK, map[string]bool{"ok": true})
}
