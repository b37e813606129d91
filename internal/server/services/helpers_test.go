package services

import (
	"context"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/dmitrijs2005/gophauth/internal/server/issuer"
	"github.com/dmitrijs2005/gophauth/internal/server/notifications"
	"github.com/dmitrijs2005/gophauth/internal/server/password"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/tokens"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = t
}

func (c *testClock) Advance(d time.Duration) { c.Set(c.Now().Add(d)) }

type recordingSender struct {
	mu      sync.Mutex
	intents []notifications.Intent
	err     error
}

func (s *recordingSender) Send(ctx context.Context, intent notifications.Intent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.intents = append(s.intents, intent)
	return nil
}

func (s *recordingSender) sent() []notifications.Intent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]notifications.Intent(nil), s.intents...)
}

func (s *recordingSender) last(t *testing.T) notifications.Intent {
	t.Helper()
	all := s.sent()
	require.NotEmpty(t, all, "no notification was sent")
	return all[len(all)-1]
}

type fixture struct {
	svc    *AuthService
	repos  *repomanager.InMemoryRepositoryManager
	sender *recordingSender
	clock  *testClock
	signer *auth.Signer
}

var testOptions = Options{
	RefreshTokenTTL:  7 * 24 * time.Hour,
	EmailTokenTTL:    24 * time.Hour,
	PasswordTokenTTL: time.Hour,
	APIURL:           "http://api.local",
	FrontendURL:      "http://frontend.local",
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWith(t, repomanager.NewInMemoryRepositoryManager(), testOptions)
}

func newFixtureWith(t *testing.T, repos repomanager.RepositoryManager, opts Options) *fixture {
	t.Helper()

	clock := &testClock{t: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)}
	sender := &recordingSender{}
	signer := auth.NewSigner([]byte("test-secret"), 15*time.Minute)

	svc := NewAuthService(
		repos,
		issuer.New(issuer.WithClock(clock.Now)),
		password.NewHasher(bcrypt.MinCost, 4),
		signer,
		sender,
		opts,
		logging.NewDiscardLogger(),
	)
	svc.now = clock.Now

	f := &fixture{svc: svc, sender: sender, clock: clock, signer: signer}
	if mem, ok := repos.(*repomanager.InMemoryRepositoryManager); ok {
		f.repos = mem
	}
	return f
}

func tokenFromURL(t *testing.T, raw string) string {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	tok := u.Query().Get("token")
	require.NotEmpty(t, tok)
	return tok
}

func validRegistration(email string) RegisterInput {
	return RegisterInput{FullName: "Jane Doe", Email: email, Password: "password1", ConfirmPassword: "password1"}
}

// register creates an account and returns the raw email-verification secret.
func (f *fixture) register(t *testing.T, email string) string {
	t.Helper()
	require.NoError(t, f.svc.Register(context.Background(), validRegistration(email)))
	return tokenFromURL(t, f.sender.last(t).Params["verify_url"])
}

func (f *fixture) registerVerified(t *testing.T, email string) {
	t.Helper()
	raw := f.register(t, email)
	require.NoError(t, f.svc.VerifyEmail(context.Background(), raw))
}

func (f *fixture) login(t *testing.T, email string) *LoginResult {
	t.Helper()
	res, err := f.svc.Login(context.Background(), LoginInput{Email: email, Password: "password1"})
	require.NoError(t, err)
	return res
}

// lockstep holds FindByHash callers once armed until `parties` of them have
// read their row, so all of them race on the delete that follows.
type lockstep struct {
	armed atomic.Bool
	wg    sync.WaitGroup
}

func newLockstep(parties int) *lockstep {
	l := &lockstep{}
	l.wg.Add(parties)
	return l
}

func (l *lockstep) wait() {
	if l.armed.Load() {
		l.wg.Done()
		l.wg.Wait()
	}
}

type lockstepTokens struct {
	tokens.Repository
	gate *lockstep
}

func (r lockstepTokens) FindByHash(ctx context.Context, hashedToken string) (*models.Token, error) {
	t, err := r.Repository.FindByHash(ctx, hashedToken)
	r.gate.wait()
	return t, err
}

type lockstepManager struct {
	*repomanager.InMemoryRepositoryManager
	gate *lockstep
}

func (m lockstepManager) RefreshTokens() tokens.Repository {
	return lockstepTokens{m.InMemoryRepositoryManager.RefreshTokens(), m.gate}
}
func (m lockstepManager) EmailTokens() tokens.Repository {
	return lockstepTokens{m.InMemoryRepositoryManager.EmailTokens(), m.gate}
}
func (m lockstepManager) PasswordTokens() tokens.Repository {
	return lockstepTokens{m.InMemoryRepositoryManager.PasswordTokens(), m.gate}
}

// newRacingFixture returns a fixture whose token lookups run in lockstep for
// two callers once the returned gate is armed.
func newRacingFixture(t *testing.T) (*fixture, *lockstep) {
	t.Helper()
	mem := repomanager.NewInMemoryRepositoryManager()
	gate := newLockstep(2)
	f := newFixtureWith(t, lockstepManager{mem, gate}, testOptions)
	f.repos = mem
	return f, gate
}

// runTwice calls fn on two goroutines and returns their errors.
func runTwice(fn func() error) []error {
	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = fn()
		}()
	}
	wg.Wait()
	return errs
}

// splitErrors counts nil entries and returns the rest.
func splitErrors(errs []error) (ok int, failed []error) {
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		failed = append(failed, err)
	}
	return ok, failed
}
