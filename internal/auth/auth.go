// Package auth handles OAuth token acquisition for the ordering service.
//
// The login/callback pair is plumbing around golang.org/x/oauth2: an
// authorize redirect with a one-time state, a code-for-token exchange,
// and a token cache file under the credentials dir so restarts don't
// force a re-login.
package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/Vatsa10/Zomatooo/internal/config"
	"github.com/Vatsa10/Zomatooo/internal/logging"
)

// Default ordering-service OAuth endpoints.
const (
	defaultAuthURL  = "https://developers.zomato.com/oauth/authorize"
	defaultTokenURL = "https://developers.zomato.com/oauth/token"
)

// Flow manages the OAuth code exchange and the cached token.
type Flow struct {
	config    *oauth2.Config
	tokenPath string
	log       *logging.Logger

	mu     sync.RWMutex
	token  *oauth2.Token
	states map[string]time.Time // issued login states awaiting callback
}

// NewFlow builds a Flow from config. The token cache lives at
// <credentials>/token.json.
func NewFlow(cfg config.OAuthConfig, credentialsDir string, log *logging.Logger) *Flow {
	authURL := cfg.AuthURL
	if authURL == "" {
		authURL = defaultAuthURL
	}
	tokenURL := cfg.TokenURL
	if tokenURL == "" {
		tokenURL = defaultTokenURL
	}

	f := &Flow{
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint: oauth2.Endpoint{
				AuthURL:  authURL,
				TokenURL: tokenURL,
			},
		},
		tokenPath: filepath.Join(credentialsDir, "token.json"),
		states:    make(map[string]time.Time),
		log:       log.Sub("auth"),
	}

	if err := f.loadToken(); err == nil {
		f.log.Info().Msg("loaded cached token")
	}
	return f
}

// LoginURL issues a fresh state and returns the authorize redirect URL.
func (f *Flow) LoginURL() string {
	state := uuid.New().String()

	f.mu.Lock()
	f.states[state] = time.Now()
	// Drop stale states so the map can't grow unbounded.
	for s, issued := range f.states {
		if time.Since(issued) > 10*time.Minute {
			delete(f.states, s)
		}
	}
	f.mu.Unlock()

	return f.config.AuthCodeURL(state)
}

// HandleCallback validates the state, exchanges the code for a token,
// and caches it.
func (f *Flow) HandleCallback(ctx context.Context, code, state string) error {
	f.mu.Lock()
	_, ok := f.states[state]
	delete(f.states, state)
	f.mu.Unlock()
	if !ok {
		return fmt.Errorf("unknown or expired oauth state")
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	token, err := f.config.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("exchanging code for token: %w", err)
	}

	f.mu.Lock()
	f.token = token
	f.mu.Unlock()

	if err := f.saveToken(token); err != nil {
		f.log.Warn().Err(err).Msg("failed to cache token")
	}
	f.log.Info().Msg("token exchanged")
	return nil
}

// AccessToken returns the cached bearer token, or "" when not logged in
// or expired.
func (f *Flow) AccessToken() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.token == nil || !f.token.Valid() {
		return ""
	}
	return f.token.AccessToken
}

// Authenticated reports whether a valid token is held.
func (f *Flow) Authenticated() bool {
	return f.AccessToken() != ""
}

// Logout drops the in-memory token and removes the cache file.
func (f *Flow) Logout() error {
	f.mu.Lock()
	f.token = nil
	f.mu.Unlock()

	if err := os.Remove(f.tokenPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing token file: %w", err)
	}
	return nil
}

func (f *Flow) loadToken() error {
	data, err := os.ReadFile(f.tokenPath)
	if err != nil {
		return err
	}
	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return err
	}
	f.mu.Lock()
	f.token = &tok
	f.mu.Unlock()
	return nil
}

func (f *Flow) saveToken(tok *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(f.tokenPath), 0o700); err != nil {
		return err
	}
	data, err := json.Marshal(tok)
	if err != nil {
		return err
	}
	return os.WriteFile(f.tokenPath, data, 0o600)
}
