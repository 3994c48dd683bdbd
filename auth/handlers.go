package auth

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/user/emojicringe-go/respond"
)

// Handlers wraps the AuthService to provide HTTP handlers.
type Handlers struct {
	service       *AuthService
	secureCookies bool
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(service *AuthService, secureCookies bool) *Handlers {
	return &Handlers{service: service, secureCookies: secureCookies}
}

// RegisterRoutes mounts the auth endpoints on r (expected at /api/auth).
func (h *Handlers) RegisterRoutes(r chi.Router) {
	r.Post("/register", h.HandleRegister())
	r.Post("/login", h.HandleLogin())
	r.Post("/logout", h.HandleLogout())
	r.Post("/refresh-token", h.HandleRefreshToken())
	r.With(Middleware(h.service.Tokens())).Get("/me", h.HandleMe())
}

// HandleRegister godoc
// @Summary Register a user
// @Description Creates an account, sets the token cookie and returns the token.
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body auth.RegisterRequest true "Registration details"
// @Success 201 {object} auth.AuthResponse
// @Failure 400 {object} apperror.ErrorResponse "Invalid field"
// @Failure 409 {object} apperror.ErrorResponse "Username or email taken"
// @Failure 500 {object} apperror.ErrorResponse
// @Router /auth/register [post]
func (h *Handlers) HandleRegister() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RegisterRequest
		if err := respond.Decode(r, &req); err != nil {
			respond.Error(w, r, err)
			return
		}

		session, err := h.service.Register(r.Context(), req)
		if err != nil {
			respond.Error(w, r, err)
			return
		}

		h.setTokenCookie(w, session.Token)
		respond.JSON(w, http.StatusCreated, AuthResponse{
			Message: "User registered successfully",
			Token:   session.Token,
			User:    session.User,
		})
	}
}

// HandleLogin godoc
// @Summary Log in
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body auth.LoginRequest true "Credentials"
// @Success 200 {object} auth.AuthResponse
// @Failure 400 {object} apperror.ErrorResponse
// @Failure 401 {object} apperror.ErrorResponse "Invalid credentials"
// @Router /auth/login [post]
func (h *Handlers) HandleLogin() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if err := respond.Decode(r, &req); err != nil {
			respond.Error(w, r, err)
			return
		}

		session, err := h.service.Login(r.Context(), req)
		if err != nil {
			respond.Error(w, r, err)
			return
		}

		h.setTokenCookie(w, session.Token)
		respond.JSON(w, http.StatusOK, AuthResponse{
			Message: "Login successful",
			Token:   session.Token,
			User:    session.User,
		})
	}
}

// HandleLogout godoc
// @Summary Log out
// @Description Clears the token cookie. Tokens are not revoked server-side.
// @Tags Auth
// @Produce json
// @Success 200 {object} respond.Message
// @Router /auth/logout [post]
func (h *Handlers) HandleLogout() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.clearTokenCookie(w)
		respond.JSON(w, http.StatusOK, respond.Message{Message: "Logged out successfully"})
	}
}

// HandleMe godoc
// @Summary Current user
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} auth.ProfileResponse
// @Failure 401 {object} apperror.ErrorResponse
// @Router /auth/me [get]
func (h *Handlers) HandleMe() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := MustIdentity(r)
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		user, err := h.service.GetProfile(r.Context(), id.UserID)
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		respond.JSON(w, http.StatusOK, ProfileResponse{User: user})
	}
}

// HandleRefreshToken godoc
// @Summary Refresh the session token
// @Description Accepts a valid or expired token from the cookie or bearer header and issues a new one.
// @Tags Auth
// @Produce json
// @Success 200 {object} auth.Session
// @Failure 401 {object} apperror.ErrorResponse
// @Router /auth/refresh-token [post]
func (h *Handlers) HandleRefreshToken() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := h.service.RefreshToken(r.Context(), TokenFromRequest(r))
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		h.setTokenCookie(w, session.Token)
		respond.JSON(w, http.StatusOK, session)
	}
}
