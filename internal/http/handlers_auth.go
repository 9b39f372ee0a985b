package http

import (
	"errors"
	"net/http"

	"masarif/internal/auth"
	"masarif/internal/log"
	"masarif/internal/store"
)

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, session, err := s.auth.SignUp(r.Context(), sanitizeInput(req.Email), req.Password, sanitizeInput(req.DisplayName))
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrEmailTaken):
			writeError(w, http.StatusConflict, "email is already registered")
		case errors.Is(err, auth.ErrInvalidEmail), errors.Is(err, auth.ErrWeakPassword):
			writeError(w, http.StatusUnprocessableEntity, err.Error())
		default:
			s.logger.ErrorContext(r.Context(), "sign up failed", log.FieldError, err, log.FieldOperation, log.OpSignUp)
			writeError(w, http.StatusInternalServerError, "registration failed")
		}
		return
	}

	s.setSessionCookie(w, session.Token, session.ExpiresAt)
	writeJSON(w, http.StatusCreated, sessionResponse{
		User:      toUserResponse(user),
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, session, err := s.auth.SignIn(r.Context(), sanitizeInput(req.Email), req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, "invalid email or password")
			return
		}
		s.logger.ErrorContext(r.Context(), "sign in failed", log.FieldError, err, log.FieldOperation, log.OpSignIn)
		writeError(w, http.StatusInternalServerError, "sign in failed")
		return
	}

	s.setSessionCookie(w, session.Token, session.ExpiresAt)
	writeJSON(w, http.StatusOK, sessionResponse{
		User:      toUserResponse(user),
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	// Signing out an already-ended session is not an error.
	if token := sessionToken(r); token != "" {
		if err := s.auth.SignOut(r.Context(), token); err != nil {
			s.logger.WarnContext(r.Context(), "sign out failed", log.FieldError, err, log.FieldOperation, log.OpSignOut)
		}
	}
	s.clearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	// Responds 202 whether or not the account exists so the endpoint
	// cannot be used to enumerate registered emails. Token delivery is
	// out of band; until a mailer exists the token is only logged.
	token, err := s.auth.ResetPassword(r.Context(), sanitizeInput(req.Email))
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
	case err != nil:
		s.logger.ErrorContext(r.Context(), "password reset failed", log.FieldError, err)
	default:
		s.logger.InfoContext(r.Context(), "password reset token issued", "token", token)
	}
	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request, user store.User) {
	var req changePasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	err := s.auth.ChangePassword(r.Context(), user.ID, req.CurrentPassword, req.NewPassword)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidCredentials):
			writeError(w, http.StatusUnauthorized, "current password is incorrect")
		case errors.Is(err, auth.ErrWeakPassword):
			writeError(w, http.StatusUnprocessableEntity, err.Error())
		default:
			s.logger.ErrorContext(r.Context(), "change password failed", log.FieldError, err, log.FieldOperation, log.OpChangePassword)
			writeError(w, http.StatusInternalServerError, "password change failed")
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request, user store.User) {
	writeJSON(w, http.StatusOK, toUserResponse(user))
}
