package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/avelichko/contactkeeper/internal/apperrors"
	"github.com/avelichko/contactkeeper/internal/handlers/middleware"
	"github.com/avelichko/contactkeeper/internal/handlers/render"
	"github.com/avelichko/contactkeeper/internal/handlers/userctx"
	"github.com/avelichko/contactkeeper/internal/models"
)

type authService interface {
	// Register user; has to return apperrors.ErrUserAlreadyExists on duplicate email
	Register(ctx context.Context, username string, email string, password string) (models.User, error)

	// Login with email and password
	// Unknown user or bad password: apperrors.ErrInvalidCredentials
	// Unconfirmed account: apperrors.ErrUserNotConfirmed
	Login(ctx context.Context, email string, password string) (models.TokenPair, error)

	// Exchange a refresh token for a fresh pair
	// Mismatch against the stored token: apperrors.ErrRefreshTokenMismatch
	Refresh(ctx context.Context, refresh string) (models.TokenPair, error)

	// Revoke the stored refresh token
	Logout(ctx context.Context, user models.User) error

	// Confirm email by verification token; already=true if confirmed before
	ConfirmEmail(ctx context.Context, token string) (already bool, err error)

	// Re-send the confirmation mail; already=true if confirmed already
	RequestConfirmation(ctx context.Context, email string) (already bool, err error)
}

type AuthHandler struct {
	auth authService
}

func NewAuth(auth authService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// Handler returns the /api/auth subrouter
// requireAuth guards the routes that need an already-authenticated user
func (h *AuthHandler) Handler(requireAuth func(http.Handler) http.Handler) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /signup", h.signup)
	mux.HandleFunc("POST /login", h.login)
	mux.HandleFunc("GET /refresh_token", h.refresh)
	mux.HandleFunc("GET /confirmed_email/{token}", h.confirmEmail)
	mux.HandleFunc("POST /request_email", h.requestEmail)
	mux.Handle("POST /logout", requireAuth(http.HandlerFunc(h.logout)))

	return mux
}

type UserResponse struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatar_url"`
	Role      string `json:"role"`
	Confirmed bool   `json:"confirmed"`
}

func toUserResponse(u models.User) UserResponse {
	return UserResponse{
		ID:        u.ID.String(),
		Username:  u.Username,
		Email:     u.Email,
		AvatarURL: u.AvatarURL,
		Role:      string(u.Role),
		Confirmed: u.Confirmed,
	}
}

type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

func toTokenResponse(pair models.TokenPair) TokenResponse {
	return TokenResponse{
		AccessToken:  pair.Access.Value,
		RefreshToken: pair.Refresh.Value,
		TokenType:    "bearer",
	}
}

func (h *AuthHandler) signup(w http.ResponseWriter, r *http.Request) {
	type SignupRequest struct {
		Username string `json:"username" validate:"required,min=2,max=150"`
		Email    string `json:"email" validate:"required,email,max=150"`
		Password string `json:"password" validate:"required,min=8,max=72"`
	}

	data, err := render.BindAndValidate[SignupRequest](w, r)
	if err != nil {
		return
	}

	user, err := h.auth.Register(r.Context(), data.Username, data.Email, data.Password)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrUserAlreadyExists):
			render.ServiceError(w, "Account already exists", http.StatusConflict)
		default:
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	render.JSONWithStatus(w, toUserResponse(user), http.StatusCreated)
}

// login accepts the classic form-encoded username/password pair;
// username carries the account email
func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		render.ServiceError(w, "Malformed form data", http.StatusUnprocessableEntity)
		return
	}

	email := r.PostFormValue("username")
	password := r.PostFormValue("password")
	if email == "" || password == "" {
		render.ServiceError(w, "username and password are required", http.StatusUnprocessableEntity)
		return
	}

	pair, err := h.auth.Login(r.Context(), email, password)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrUserNotConfirmed):
			render.ServiceError(w, "Email not confirmed", http.StatusUnauthorized)
		case errors.Is(err, apperrors.ErrInvalidCredentials):
			render.ServiceError(w, "Invalid email or password", http.StatusUnauthorized)
		default:
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	render.JSON(w, toTokenResponse(pair))
}

func (h *AuthHandler) refresh(w http.ResponseWriter, r *http.Request) {
	token, ok := middleware.BearerToken(r)
	if !ok {
		render.ServiceError(w, "Refresh token missing", http.StatusUnauthorized)
		return
	}

	pair, err := h.auth.Refresh(r.Context(), token)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrRefreshTokenMismatch):
			render.ServiceError(w, "Invalid refresh token", http.StatusUnauthorized)
		case errors.Is(err, apperrors.ErrInvalidToken):
			render.ServiceError(w, "Could not validate credentials", http.StatusUnauthorized)
		default:
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	render.JSON(w, toTokenResponse(pair))
}

func (h *AuthHandler) logout(w http.ResponseWriter, r *http.Request) {
	type LogoutResponse struct {
		Message string `json:"message"`
	}

	user, ok := userctx.FromContext(r.Context())
	if !ok {
		render.ServiceError(w, "Could not validate credentials", http.StatusUnauthorized)
		return
	}

	if err := h.auth.Logout(r.Context(), user); err != nil {
		render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	render.JSON(w, LogoutResponse{Message: "Logged out"})
}

func (h *AuthHandler) confirmEmail(w http.ResponseWriter, r *http.Request) {
	type ConfirmResponse struct {
		Message string `json:"message"`
	}

	already, err := h.auth.ConfirmEmail(r.Context(), r.PathValue("token"))
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrInvalidToken):
			render.ServiceError(w, "Invalid token for email verification", http.StatusUnprocessableEntity)
		case errors.Is(err, apperrors.ErrUserNotFound):
			render.ServiceError(w, "Verification error", http.StatusBadRequest)
		default:
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	if already {
		render.JSON(w, ConfirmResponse{Message: "Your email is already confirmed"})
		return
	}
	render.JSON(w, ConfirmResponse{Message: "Email confirmed"})
}

func (h *AuthHandler) requestEmail(w http.ResponseWriter, r *http.Request) {
	type RequestEmailRequest struct {
		Email string `json:"email" validate:"required,email"`
	}
	type RequestEmailResponse struct {
		Message string `json:"message"`
	}

	data, err := render.BindAndValidate[RequestEmailRequest](w, r)
	if err != nil {
		return
	}

	already, err := h.auth.RequestConfirmation(r.Context(), data.Email)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrUserNotFound):
			render.ServiceError(w, "User not found", http.StatusNotFound)
		default:
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	if already {
		render.JSON(w, RequestEmailResponse{Message: "Your email is already confirmed"})
		return
	}
	render.JSON(w, RequestEmailResponse{Message: "Check your email for confirmation"})
}
