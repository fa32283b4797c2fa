package httpserver

import (
	"errors"
	"log/slog"
	"net/http"

	"userauth/backend/internal/config"
	domain "userauth/backend/internal/domain/auth"
	"userauth/backend/internal/logging"
	userusecase "userauth/backend/internal/usecase/user"
)

func (s *Server) registerRoutes() {
	s.router.Handle("/health", http.HandlerFunc(s.handleHealth))
	s.router.Handle("/auth/token", http.HandlerFunc(s.handleLogin))

	if s.registrationPolicy == config.RegistrationOpen {
		s.router.Handle("/auth/", http.HandlerFunc(s.handleOpenCreateUser))
	} else {
		s.router.Handle("/auth/", s.requireRole(domain.RoleAdmin, http.HandlerFunc(s.handleCreateUser)))
	}

	authenticated := s.authMiddleware
	s.router.Handle("/users/", authenticated(http.HandlerFunc(s.handleCurrentUser)))
	s.router.Handle("/users/password", authenticated(http.HandlerFunc(s.handleChangePassword)))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// POST /auth/token
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	const op = "httpserver.handleLogin"

	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w, http.MethodPost)
		return
	}

	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid form payload", "username and password are required")
		return
	}

	token, user, err := s.authService.Login(r.Context(), domain.Credentials{
		Username: r.PostFormValue("username"),
		Password: r.PostFormValue("password"),
	})
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			s.logRejection(r, err)
			w.Header().Set("WWW-Authenticate", "Bearer")
			writeError(w, http.StatusUnauthorized, msgNotAuthorized, "Failed Authentication.")
			return
		}
		s.logFailure(r, op, err)
		writeError(w, http.StatusInternalServerError, msgNotAuthorized, errInternalFailure)
		return
	}

	s.log.InfoContext(r.Context(), "user logged in",
		slog.String("request_id", requestIDFromContext(r.Context())),
		slog.Int64("user_id", user.ID),
	)
	writeJSON(w, http.StatusOK, tokenResponse{AccessToken: token, TokenType: "bearer"})
}

// POST /auth/ behind the admin gate.
func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	if !s.checkCreateRequest(w, r) {
		return
	}
	var payload userusecase.CreateInput
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, http.StatusBadRequest, msgUserNotCreated, "invalid JSON payload")
		return
	}
	s.createUser(w, r, payload)
}

// POST /auth/ when anonymous registration is allowed. Callers without the admin
// role may only create plain users; a presented token must still be valid.
func (s *Server) handleOpenCreateUser(w http.ResponseWriter, r *http.Request) {
	if !s.checkCreateRequest(w, r) {
		return
	}

	var claims *domain.Claims
	if r.Header.Get("Authorization") != "" {
		c, err := s.claimsFromRequest(r)
		if err != nil {
			s.logRejection(r, err)
			writeUnauthorized(w)
			return
		}
		claims = c
	}

	var payload userusecase.CreateInput
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, http.StatusBadRequest, msgUserNotCreated, "invalid JSON payload")
		return
	}

	role, err := userusecase.ParseRole(payload.Role)
	if err != nil {
		writeError(w, http.StatusBadRequest, msgUserNotCreated, validationDetail(err))
		return
	}
	if role != domain.RoleUser {
		if err := s.authService.Authorize(claims, domain.RoleAdmin); err != nil {
			s.logRejection(r, err)
			writeUnauthorized(w)
			return
		}
	}

	s.createUser(w, r, payload)
}

func (s *Server) checkCreateRequest(w http.ResponseWriter, r *http.Request) bool {
	if r.URL.Path != "/auth/" {
		writeError(w, http.StatusNotFound, "resource not found", "resource not found")
		return false
	}
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w, http.MethodPost)
		return false
	}
	return true
}

func (s *Server) createUser(w http.ResponseWriter, r *http.Request, payload userusecase.CreateInput) {
	const op = "httpserver.createUser"

	user, err := s.userService.Create(r.Context(), payload)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrDuplicateUser):
			writeError(w, http.StatusOK, msgUserNotCreated, "error email or username already exist")
		case isValidationError(err):
			writeError(w, http.StatusBadRequest, msgUserNotCreated, validationDetail(err))
		default:
			s.logFailure(r, op, err)
			writeError(w, http.StatusInternalServerError, msgUserNotCreated, "error creating user.")
		}
		return
	}

	s.log.InfoContext(r.Context(), "user created",
		slog.String("request_id", requestIDFromContext(r.Context())),
		slog.Int64("user_id", user.ID),
		slog.String("role", string(user.Role)),
	)
	writeJSON(w, http.StatusCreated, envelope{Message: "User created.", Data: user, Success: true})
}

// GET /users/
func (s *Server) handleCurrentUser(w http.ResponseWriter, r *http.Request) {
	const op = "httpserver.handleCurrentUser"

	if r.URL.Path != "/users/" {
		writeError(w, http.StatusNotFound, "resource not found", "resource not found")
		return
	}
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w, http.MethodGet)
		return
	}

	claims, _ := claimsFromContext(r.Context())
	user, err := s.authService.CurrentUser(r.Context(), claims)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			s.logRejection(r, err)
			writeUnauthorized(w)
			return
		}
		s.logFailure(r, op, err)
		writeError(w, http.StatusInternalServerError, "request failed", errInternalFailure)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// PUT /users/password
func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	const op = "httpserver.handleChangePassword"

	if r.Method != http.MethodPut {
		writeMethodNotAllowed(w, http.MethodPut)
		return
	}

	claims, _ := claimsFromContext(r.Context())

	var payload struct {
		Password    string `json:"password"`
		NewPassword string `json:"new_password"`
	}
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, http.StatusBadRequest, "Error on password change", "password and new_password required")
		return
	}

	if err := s.authService.ChangePassword(r.Context(), claims.UserID, payload.Password, payload.NewPassword); err != nil {
		switch {
		case errors.Is(err, domain.ErrPasswordMismatch):
			writeError(w, http.StatusUnauthorized, "Error on password change", "Does not match the current password")
		case errors.Is(err, domain.ErrUnauthorized):
			s.logRejection(r, err)
			writeUnauthorized(w)
		case isValidationError(err):
			writeError(w, http.StatusBadRequest, "Error on password change", validationDetail(err))
		default:
			s.logFailure(r, op, err)
			writeError(w, http.StatusInternalServerError, "Error on password change", errInternalFailure)
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// validationErrors are the input rejections whose text is safe to show clients.
var validationErrors = []error{
	domain.ErrUsernameRequired,
	domain.ErrEmailRequired,
	domain.ErrInvalidRole,
	domain.ErrPasswordTooShort,
	domain.ErrPasswordTooLong,
}

func isValidationError(err error) bool {
	return validationDetail(err) != ""
}

// validationDetail returns the matching sentinel's own message, never the wrapped chain.
func validationDetail(err error) string {
	for _, known := range validationErrors {
		if errors.Is(err, known) {
			return known.Error()
		}
	}
	return ""
}

func (s *Server) logFailure(r *http.Request, op string, err error) {
	s.log.ErrorContext(r.Context(), "request failed",
		slog.String("op", op),
		slog.String("request_id", requestIDFromContext(r.Context())),
		logging.Err(err),
	)
}
