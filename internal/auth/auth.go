// Package auth obtains an authorized Spotify client, reusing a cached token
// when possible and falling back to the browser-based code flow.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"deepcut/internal/config"
	"deepcut/internal/playlist"
	"deepcut/internal/utils"

	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

// TokenFilePermission keeps the cached token readable by the owner only.
const TokenFilePermission = 0o600

// Scopes requested at login.
var Scopes = []string{
	spotifyauth.ScopePlaylistModifyPrivate,
	spotifyauth.ScopePlaylistModifyPublic,
	spotifyauth.ScopePlaylistReadPrivate,
	spotifyauth.ScopeUserReadPrivate,
	spotifyauth.ScopeUserReadEmail,
	spotifyauth.ScopeImageUpload,
}

// ErrNoToken is returned when no usable cached token exists.
var ErrNoToken = errors.New("no cached token")

// TokenData is the on-disk token format.
type TokenData struct {
	Token *oauth2.Token `json:"token"`
}

// Manager hands out authorized clients.
type Manager struct {
	auth        *spotifyauth.Authenticator
	redirectURL string
	tokenPath   string
	logger      *zap.Logger

	// Out receives the login URL; OpenBrowser is tried as well.
	Out         io.Writer
	OpenBrowser func(url string) error

	apiOptions []spotify.ClientOption
}

// NewManager creates a manager from the app configuration.
func NewManager(cfg *config.Config, logger *zap.Logger) (*Manager, error) {
	if err := cfg.RequireCredentials(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		auth: spotifyauth.New(
			spotifyauth.WithRedirectURL(cfg.RedirectURL),
			spotifyauth.WithScopes(Scopes...),
			spotifyauth.WithClientID(cfg.ClientID),
			spotifyauth.WithClientSecret(cfg.ClientSecret),
		),
		redirectURL: cfg.RedirectURL,
		tokenPath:   cfg.TokenPath,
		logger:      logger,
		Out:         os.Stderr,
		OpenBrowser: utils.OpenBrowser,
	}, nil
}

// Cached returns a client built from the cached token after checking it
// against the current user endpoint. The token is refreshed transparently.
func (m *Manager) Cached(ctx context.Context) (*spotify.Client, error) {
	token, err := LoadToken(m.tokenPath)
	if err != nil {
		return nil, err
	}

	client := m.newClient(ctx, token)
	user, err := client.CurrentUser(ctx)
	if err != nil {
		if !tokenRejected(err) {
			return nil, fmt.Errorf("validating cached token: %w", err)
		}
		m.logger.Warn("saved token invalid", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrNoToken, err)
	}

	m.logger.Info("authenticated from cached token", zap.String("user", user.ID))
	return client, nil
}

// tokenRejected reports whether err means the token itself is no good: a
// 401 from the API or a refresh the token endpoint refused.
func tokenRejected(err error) bool {
	var (
		apiErr    spotify.Error
		apiErrPtr *spotify.Error
		refresh   *oauth2.RetrieveError
	)
	switch {
	case errors.As(err, &apiErr):
		return apiErr.Status == http.StatusUnauthorized
	case errors.As(err, &apiErrPtr):
		return apiErrPtr.Status == http.StatusUnauthorized
	default:
		return errors.As(err, &refresh)
	}
}

// Client returns a cached client or, when interactive, runs the login flow.
func (m *Manager) Client(ctx context.Context, interactive bool) (*spotify.Client, error) {
	client, err := m.Cached(ctx)
	if err == nil {
		return client, nil
	}
	if !errors.Is(err, ErrNoToken) {
		return nil, err
	}
	if !interactive {
		return nil, &playlist.ConfigError{Message: "not logged in, run 'deepcut login' first"}
	}
	return m.Login(ctx)
}

// Login runs the authorization code flow against a local callback server
// and caches the resulting token.
func (m *Manager) Login(ctx context.Context) (*spotify.Client, error) {
	redirect, err := url.Parse(m.redirectURL)
	if err != nil || redirect.Host == "" {
		return nil, &playlist.ConfigError{Message: fmt.Sprintf("invalid redirect URL %q", m.redirectURL)}
	}

	state, err := utils.GenerateState()
	if err != nil {
		return nil, err
	}

	results := make(chan callbackResult, 1)
	path := redirect.Path
	if path == "" {
		path = "/"
	}
	mux := http.NewServeMux()
	mux.Handle(path, m.callbackHandler(state, results))

	ln, err := net.Listen("tcp", redirect.Host)
	if err != nil {
		return nil, fmt.Errorf("starting callback server on %s: %w", redirect.Host, err)
	}
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go srv.Serve(ln)
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	authURL := m.auth.AuthURL(state)
	fmt.Fprintln(m.Out, "Please log in to Spotify by visiting the following page in your browser:", authURL)
	if m.OpenBrowser != nil {
		if err := m.OpenBrowser(authURL); err != nil {
			m.logger.Debug("browser not opened", zap.Error(err))
		}
	}

	var res callbackResult
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res = <-results:
	}
	if res.err != nil {
		return nil, fmt.Errorf("authentication failed: %w", res.err)
	}

	if err := SaveToken(m.tokenPath, res.token); err != nil {
		m.logger.Warn("failed to save token", zap.Error(err))
	}

	client := m.newClient(ctx, res.token)
	user, err := client.CurrentUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("authentication failed: %w", err)
	}
	m.logger.Info("oauth flow completed", zap.String("user", user.ID))
	return client, nil
}

// Persist stores the client's current token, which may have been refreshed.
func (m *Manager) Persist(client *spotify.Client) error {
	token, err := client.Token()
	if err != nil {
		return fmt.Errorf("reading client token: %w", err)
	}
	return SaveToken(m.tokenPath, token)
}

// Logout removes the cached token. A missing token is not an error.
func (m *Manager) Logout() error {
	if err := os.Remove(m.tokenPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func (m *Manager) newClient(ctx context.Context, token *oauth2.Token) *spotify.Client {
	return spotify.New(m.auth.Client(ctx, token), m.apiOptions...)
}

type callbackResult struct {
	token *oauth2.Token
	err   error
}

// callbackHandler completes the code exchange. Only the first result is
// delivered; later requests are answered but ignored.
func (m *Manager) callbackHandler(state string, results chan<- callbackResult) http.Handler {
	deliver := func(res callbackResult) {
		select {
		case results <- res:
		default:
		}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if reason := r.FormValue("error"); reason != "" {
			http.Error(w, "Authorization was denied: "+reason, http.StatusForbidden)
			deliver(callbackResult{err: fmt.Errorf("authorization denied: %s", reason)})
			return
		}
		if st := r.FormValue("state"); st != state {
			http.NotFound(w, r)
			deliver(callbackResult{err: fmt.Errorf("state mismatch: %q != %q", st, state)})
			return
		}

		tok, err := m.auth.Token(r.Context(), state, r)
		if err != nil {
			http.Error(w, "Couldn't get token", http.StatusForbidden)
			deliver(callbackResult{err: err})
			return
		}

		fmt.Fprintf(w, "Login Completed! You can now close this window.")
		deliver(callbackResult{token: tok})
	})
}

// LoadToken reads a token written by SaveToken. A missing or unreadable
// file is reported as ErrNoToken.
func LoadToken(path string) (*oauth2.Token, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoToken, err)
	}

	var tokenData TokenData
	if err := json.Unmarshal(data, &tokenData); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoToken, err)
	}
	if tokenData.Token == nil || (tokenData.Token.AccessToken == "" && tokenData.Token.RefreshToken == "") {
		return nil, fmt.Errorf("%w: empty token in %s", ErrNoToken, path)
	}
	return tokenData.Token, nil
}

// SaveToken writes the token to path with owner-only permissions.
func SaveToken(path string, token *oauth2.Token) error {
	data, err := json.MarshalIndent(TokenData{Token: token}, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	if err := os.WriteFile(path, data, TokenFilePermission); err != nil {
		return err
	}
	// WriteFile keeps the mode of an existing file
	return os.Chmod(path, TokenFilePermission)
}
