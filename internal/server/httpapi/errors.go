package httpapi

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/gophauth/internal/server/services"
)

type errorBody struct {
	Error     bool   `json:"error"`
	Reason    string `json:"reason"`
	ErrorCode string `json:"errorCode"`
}

var statusByKind = map[services.Kind]int{
	services.KindValidation:                 http.StatusBadRequest,
	services.KindPasswordMismatch:           http.StatusBadRequest,
	services.KindEmailAlreadyExists:         http.StatusBadRequest,
	services.KindInvalidEmailOrPassword:     http.StatusUnauthorized,
	services.KindEmailNotVerified:           http.StatusUnauthorized,
	services.KindRefreshTokenOrUserNotFound: http.StatusNotFound,
	services.KindRefreshTokenExpired:        http.StatusUnauthorized,
	services.KindUserNotFound:               http.StatusNotFound,
	services.KindEmailTokenNotFound:         http.StatusBadRequest,
	services.KindEmailTokenExpired:          http.StatusBadRequest,
	services.KindInvalidPasswordToken:       http.StatusBadRequest,
	services.KindPasswordTokenExpired:       http.StatusBadRequest,
}

// writeError renders err. Auth errors keep their reason; anything else is
// logged and reported as an opaque 500.
func (s *HTTPServer) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var authErr *services.AuthError
	if errors.As(err, &authErr) {
		status, ok := statusByKind[authErr.Kind]
		if !ok {
			status = http.StatusBadRequest
		}
		s.writeJSON(w, r, status, errorBody{Error: true, Reason: authErr.Reason, ErrorCode: string(authErr.Kind)})
		return
	}

	s.logger.Error(r.Context(), "request failed", "path", r.URL.Path, "error", err)
	s.writeJSON(w, r, http.StatusInternalServerError, errorBody{Error: true, Reason: "internal error", ErrorCode: "Internal"})
}
