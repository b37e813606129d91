package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
)

// requireBearer rejects requests without a valid access token and stores the
// verified claims on the request context.
func (s *HTTPServer) requireBearer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := s.authenticator.FromHeader(r.Header.Get(common.AuthorizationHeaderName))
		if err != nil {
			s.writeJSON(w, r, http.StatusUnauthorized, errorBody{Error: true, Reason: err.Error(), ErrorCode: "Unauthorized"})
			return
		}
		next.ServeHTTP(w, r.WithContext(auth.WithClaims(r.Context(), claims)))
	})
}
