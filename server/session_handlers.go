package server

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/jrsteele09/smartrent-bridge/auth"
	"github.com/jrsteele09/smartrent-bridge/oauthmodel"
)

const maxLoginBodyBytes = 64 << 10

// LoginRequest is the body posted by the login UI.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	TfaCode  string `json:"tfaCode"`
}

// LoginResponse adds the two-factor hint to the {code, message} payload so the
// UI can reveal the code field.
type LoginResponse struct {
	Code              int    `json:"code"`
	Message           string `json:"message,omitempty"`
	Outcome           string `json:"outcome"`
	RequiresTwoFactor bool   `json:"requiresTwoFactor"`
}

func (s *Server) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeCode(w, http.StatusOK, "")
	}
}

func (s *Server) PreflightHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}
}

// SessionHandler reports whether a session record exists: 200 when it does,
// 404 when it does not.
func (s *Server) SessionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		exists, err := s.sessions.HasStoredSession()
		if err != nil {
			s.logger.Error().Err(err).Msg("Failed to check session")
			writeJSON(w, http.StatusInternalServerError, codeResponse{Code: http.StatusInternalServerError, Message: "Failed to check session", Error: err.Error()})
			return
		}
		if !exists {
			writeCode(w, http.StatusNotFound, "")
			return
		}
		writeCode(w, http.StatusOK, "")
	}
}

// LogoutHandler deletes the session record. Logging out without a session
// succeeds.
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.sessions.Logout(); err != nil {
			writeJSON(w, http.StatusInternalServerError, codeResponse{Code: http.StatusInternalServerError, Message: "Failed to delete auth token", Error: err.Error()})
			return
		}
		writeCode(w, http.StatusOK, "")
	}
}

// LoginHandler runs a full login, including the two-factor step when the
// request carries a code, and saves the resulting session.
func (s *Server) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if err := json.NewDecoder(io.LimitReader(r.Body, maxLoginBodyBytes)).Decode(&req); err != nil {
			writeCode(w, http.StatusBadRequest, "Invalid login request")
			return
		}

		_, err := s.sessions.Login(r.Context(), auth.Credentials{
			Login:         oauthmodel.LoginCredentials{Email: req.Email, Password: req.Password},
			TwoFactorCode: req.TfaCode,
		})
		outcome := auth.ClassifyLoginError(err)

		status := http.StatusUnauthorized
		switch outcome {
		case auth.LoginSucceeded:
			status = http.StatusOK
			s.logger.Info().Str("request_id", RequestID(r.Context())).Msg("Saved SmartRent session")
			s.rediscover()
		case auth.LoginFailed:
			status = http.StatusInternalServerError
			s.logger.Error().Err(err).Msg("Failed to login to SmartRent")
		default:
			s.logger.Warn().Str("outcome", string(outcome)).Msg(outcome.Message())
		}

		resp := LoginResponse{
			Code:              status,
			Outcome:           string(outcome),
			RequiresTwoFactor: s.sessions.RequiresTwoFactor(),
		}
		if outcome != auth.LoginSucceeded {
			resp.Message = outcome.Message()
		}
		writeJSON(w, status, resp)
	}
}

// rediscover refreshes the accessory set after a login so devices appear
// without restarting the bridge.
func (s *Server) rediscover() {
	if s.accessories == nil {
		return
	}
	go func() {
		result, err := s.accessories.Reconcile(s.background)
		if err != nil {
			s.logger.Error().Err(err).Msg("Failed to discover devices after login")
			return
		}
		s.logger.Info().
			Int("added", len(result.Added)).
			Int("restored", len(result.Restored)).
			Int("removed", len(result.Removed)).
			Msg("Discovered devices after login")
	}()
}
