// Package auth implements the interactive OAuth2 authorization flow
// that produces the bearer credential for the API.
//
// The flow is Authorization Code with PKCE for a public client: a
// loopback HTTP server is stood up to receive the provider's redirect,
// the user's browser is pointed at the authorization page, and once
// the redirect delivers the one-time code it is exchanged for a token.
// The credential lives only in memory; nothing is ever written to disk
// or the system keychain.
package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"

	"github.com/pkg/browser"
	"golang.org/x/oauth2"

	"ornithology/pkg/logger"
)

// Config describes one authorization flow.
type Config struct {
	// ClientID identifies this application to the provider.
	ClientID string

	// Scopes are the access scopes to request.
	Scopes []string

	// Endpoint is the provider's authorize and token URL pair.
	Endpoint oauth2.Endpoint

	// CallbackPort is the loopback port for the redirect listener.
	// Zero picks a free port; providers that allow-list redirect URIs
	// usually need a fixed one.
	CallbackPort int

	// OpenBrowser launches the user's browser on the authorization
	// page. Nil uses the system default browser.
	OpenBrowser func(url string) error

	// HTTPClient, when set, performs the token exchange.
	HTTPClient *http.Client

	Logger logger.Logger
}

// Negotiate runs one complete authorization flow and returns the
// bearer token. It blocks until the user finishes in the browser, the
// provider reports an error, or ctx ends.
func Negotiate(ctx context.Context, cfg Config) (*oauth2.Token, error) {
	log := cfg.Logger
	if log == nil {
		log = logger.GetLogger()
	}

	server, err := newCallbackServer(cfg.CallbackPort, log)
	if err != nil {
		return nil, err
	}
	defer server.Close()

	conf := &oauth2.Config{
		ClientID:    cfg.ClientID,
		Endpoint:    cfg.Endpoint,
		RedirectURL: server.RedirectURL(),
		Scopes:      cfg.Scopes,
	}

	verifier := oauth2.GenerateVerifier()
	state, err := randomState()
	if err != nil {
		return nil, fmt.Errorf("generate state token: %w", err)
	}
	authURL := conf.AuthCodeURL(state, oauth2.S256ChallengeOption(verifier))

	log.InfoWithFields("opening browser for authorization", map[string]interface{}{
		"redirect": server.RedirectURL(),
	})
	open := cfg.OpenBrowser
	if open == nil {
		open = browser.OpenURL
	}
	if err := open(authURL); err != nil {
		return nil, fmt.Errorf("forward to authorization page: %w", err)
	}

	red, err := server.Wait(ctx)
	if err != nil {
		return nil, fmt.Errorf("authorization redirect: %w", err)
	}
	if red.err != nil {
		log.WarnWithFields("authorization rejected", map[string]interface{}{
			"kind":        string(red.err.Kind),
			"description": red.err.Description,
		})
		return nil, red.err
	}
	if red.state != state {
		// Someone else drove the browser here; the code is not ours to
		// exchange.
		return nil, &Error{Kind: KindCSRFMismatch}
	}

	exchangeCtx := ctx
	if cfg.HTTPClient != nil {
		exchangeCtx = context.WithValue(ctx, oauth2.HTTPClient, cfg.HTTPClient)
	}
	// The token endpoint wants client_id in the form even for public
	// clients with no secret.
	token, err := conf.Exchange(exchangeCtx, red.code,
		oauth2.VerifierOption(verifier),
		oauth2.SetAuthURLParam("client_id", cfg.ClientID),
	)
	if err != nil {
		var rerr *oauth2.RetrieveError
		if errors.As(err, &rerr) && rerr.ErrorCode != "" {
			return nil, &Error{
				Kind:        ErrorKind(rerr.ErrorCode),
				Description: rerr.ErrorDescription,
				URI:         rerr.ErrorURI,
			}
		}
		return nil, fmt.Errorf("exchange authorization code: %w", err)
	}

	log.Info("authorization complete")
	return token, nil
}

func randomState() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
