package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/saltyorg/schedulr/internal/auth"
	"github.com/saltyorg/schedulr/internal/errs"
	"github.com/saltyorg/schedulr/internal/web/respond"
)

const msgCredentialsRequired = "Username and password are required"

// AuthHandlers serves the credential registry endpoints
type AuthHandlers struct {
	authService *auth.AuthService
}

// NewAuthHandlers creates the auth endpoint handlers
func NewAuthHandlers(authService *auth.AuthService) *AuthHandlers {
	return &AuthHandlers{authService: authService}
}

// Routes registers the auth endpoints on r
func (h *AuthHandlers) Routes(r chi.Router) {
	r.Post("/register", h.Register)
	r.Post("/login", h.Login)
}

type credentialsRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
}

// Register creates a user account
func (h *AuthHandlers) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}
	if !validateRequest(w, r, &req, msgCredentialsRequired) {
		return
	}

	user, err := h.authService.Register(r.Context(), req.Username, req.Password)
	switch {
	case auth.IsUsernameTaken(err):
		respond.Error(w, r, errs.NewConflictError("Username already exists"))
		return
	case auth.IsPasswordTooLong(err):
		respond.Error(w, r, errs.NewBadRequestError("Password must be at most 72 bytes", []errs.FieldError{
			{Field: "password", Error: "must be at most 72 bytes"},
		}))
		return
	case err != nil:
		respond.Error(w, r, err)
		return
	}

	log.Info().Int64("user_id", user.ID).Str("username", user.Username).Msg("User registered")
	respond.OK(w, http.StatusCreated, "User registered successfully")
}

// Login verifies credentials
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}
	if !validateRequest(w, r, &req, msgCredentialsRequired) {
		return
	}

	user, err := h.authService.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	if user == nil {
		log.Debug().Str("username", req.Username).Msg("Login rejected")
		respond.Error(w, r, errs.NewUnauthorizedError("Invalid credentials"))
		return
	}

	log.Info().Str("username", user.Username).Msg("User logged in")
	respond.JSON(w, http.StatusOK, loginResponse{AccessToken: auth.PlaceholderAccessToken})
}
