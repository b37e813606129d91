// Package httpapi exposes the auth operations as a JSON REST API under
// /api/auth, routed with gorilla/mux.
package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/dmitrijs2005/gophauth/internal/server/services"
	"github.com/gorilla/mux"
)

const shutdownTimeout = 10 * time.Second

// AuthService is the operation surface served over HTTP.
type AuthService interface {
	Register(ctx context.Context, in services.RegisterInput) error
	Login(ctx context.Context, in services.LoginInput) (*services.LoginResult, error)
	RefreshAccessToken(ctx context.Context, rawRefresh string) (*services.TokenPair, error)
	RequestEmailVerification(ctx context.Context, email string) error
	VerifyEmail(ctx context.Context, rawToken string) error
	RequestPasswordReset(ctx context.Context, email string) error
	VerifyResetToken(ctx context.Context, rawToken string) error
	RecoverAccount(ctx context.Context, in services.RecoverInput) error
	GetCurrentUser(ctx context.Context, userID string) (*services.UserView, error)
}

type HTTPServer struct {
	address       string
	auth          AuthService
	authenticator *auth.Authenticator
	logger        logging.Logger
}

func NewHTTPServer(address string, l logging.Logger, svc AuthService, authenticator *auth.Authenticator) *HTTPServer {
	return &HTTPServer{
		address:       address,
		auth:          svc,
		authenticator: authenticator,
		logger:        l.With("module", "http_server"),
	}
}

// Router returns the routing table.
func (s *HTTPServer) Router() *mux.Router {
	r := mux.NewRouter()
	a := r.PathPrefix("/api/auth").Subrouter()

	a.HandleFunc("/register", s.register).Methods(http.MethodPost)
	a.HandleFunc("/login", s.login).Methods(http.MethodPost)
	a.HandleFunc("/accessToken", s.refreshAccessToken).Methods(http.MethodPost)
	a.HandleFunc("/email-verification", s.requestEmailVerification).Methods(http.MethodPost)
	a.HandleFunc("/email-verification", s.verifyEmail).Methods(http.MethodGet)
	a.HandleFunc("/reset-password", s.requestPasswordReset).Methods(http.MethodPost)
	a.HandleFunc("/reset-password/verify", s.verifyResetToken).Methods(http.MethodGet)
	a.HandleFunc("/recover", s.recoverAccount).Methods(http.MethodPost)
	a.Handle("/me", s.requireBearer(http.HandlerFunc(s.me))).Methods(http.MethodGet)

	return r
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *HTTPServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(shutdownCtx, "HTTP server shutdown error", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
