package supabase

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/oauth2"

	"taskpad/internal/service"
)

// tokenResponse is the GoTrue token endpoint payload.
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
	RefreshToken string `json:"refresh_token"`
}

// asOAuthToken converts a GoTrue token payload into an oauth2 token.
func (r *tokenResponse) asOAuthToken() *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  r.AccessToken,
		TokenType:    r.TokenType,
		RefreshToken: r.RefreshToken,
		Expiry:       time.Now().Add(time.Duration(r.ExpiresIn) * time.Second),
	}
}

// CurrentSession implements service.Service.
// On the first call it tries to restore a saved session from the config
// dir, refreshing it through the token source. An unusable saved session
// is discarded, the same as not being signed in.
func (c *Client) CurrentSession(ctx context.Context) (service.Identity, bool, error) {
	c.mu.Lock()
	if c.source != nil {
		id := c.identity
		c.mu.Unlock()
		return id, true, nil
	}
	c.mu.Unlock()

	tok, err := loadSession(c.cfg)
	if err != nil {
		return service.Identity{}, false, nil
	}
	if tok.RefreshToken == "" {
		_ = c.cfg.RemoveSession()
		return service.Identity{}, false, nil
	}

	source := c.newTokenSource(tok)
	live, err := source.Token()
	if err != nil {
		_ = c.cfg.RemoveSession()
		return service.Identity{}, false, nil
	}

	id, err := identityFromToken(live)
	if err != nil {
		_ = c.cfg.RemoveSession()
		return service.Identity{}, false, nil
	}

	c.mu.Lock()
	c.source = source
	c.identity = id
	c.mu.Unlock()
	_ = saveSession(c.cfg, live)

	return id, true, nil
}

// SignUp implements service.Service. Success means the account was created
// and verification is pending; no session is established here.
func (c *Client) SignUp(ctx context.Context, email, password string) error {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	body := map[string]string{"email": email, "password": password}
	err := c.doJSON(ctx, "POST", c.cfg.URL+authPath+"/signup", body, "", nil, nil)
	if err != nil {
		return wrapAuthError(err)
	}
	return nil
}

// SignIn implements service.Service. On success the session is installed
// and announced through the auth-change listeners; the caller must not
// assume an authenticated state from the nil return alone.
func (c *Client) SignIn(ctx context.Context, email, password string) error {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	body := map[string]string{"email": email, "password": password}
	var resp tokenResponse
	err := c.doJSON(ctx, "POST", c.cfg.URL+authPath+"/token?grant_type=password", body, "", nil, &resp)
	if err != nil {
		return wrapAuthError(err)
	}

	tok := resp.asOAuthToken()
	id, err := identityFromToken(tok)
	if err != nil {
		return service.NewAuthError("sign-in returned an invalid token: %v", err)
	}

	c.mu.Lock()
	c.source = c.newTokenSource(tok)
	c.identity = id
	c.mu.Unlock()
	_ = saveSession(c.cfg, tok)

	c.notify(id, true)
	return nil
}

// SignOut implements service.Service. The server call is best-effort: the
// local session is always cleared and the transition announced, so the UI
// never stays signed in against a dead session.
func (c *Client) SignOut(ctx context.Context) error {
	c.mu.Lock()
	source := c.source
	c.mu.Unlock()

	if source != nil {
		if tok, err := source.Token(); err == nil {
			ctx, cancel := context.WithTimeout(ctx, APITimeout)
			defer cancel()
			_ = c.doJSON(ctx, "POST", c.cfg.URL+authPath+"/logout", nil, tok.AccessToken, nil, nil)
		}
	}

	c.mu.Lock()
	c.source = nil
	c.identity = service.Identity{}
	c.mu.Unlock()
	_ = c.cfg.RemoveSession()

	c.notify(service.Identity{}, false)
	return nil
}

// newTokenSource builds a refreshing token source seeded with tok.
// ReuseTokenSource serves the cached token until expiry, then asks the
// refresh source for a new one.
func (c *Client) newTokenSource(tok *oauth2.Token) oauth2.TokenSource {
	return oauth2.ReuseTokenSource(tok, &refreshSource{client: c, refreshToken: tok.RefreshToken})
}

// refreshSource exchanges a refresh token for a new session.
type refreshSource struct {
	client       *Client
	refreshToken string
}

// Token implements oauth2.TokenSource.
func (s *refreshSource) Token() (*oauth2.Token, error) {
	ctx, cancel := context.WithTimeout(context.Background(), APITimeout)
	defer cancel()

	body := map[string]string{"refresh_token": s.refreshToken}
	var resp tokenResponse
	err := s.client.doJSON(ctx, "POST", s.client.cfg.URL+authPath+"/token?grant_type=refresh_token", body, "", nil, &resp)
	if err != nil {
		return nil, wrapAuthError(err)
	}

	// GoTrue rotates refresh tokens on every exchange.
	if resp.RefreshToken != "" {
		s.refreshToken = resp.RefreshToken
	}
	return resp.asOAuthToken(), nil
}

// identityFromToken derives the session identity from the access token
// claims. The signature is not verified here: the server is the verifier,
// the client only needs sub, email and exp.
func identityFromToken(tok *oauth2.Token) (service.Identity, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tok.AccessToken, claims); err != nil {
		return service.Identity{}, err
	}

	sub, _ := claims["sub"].(string)
	if sub == "" {
		return service.Identity{}, errors.New("token has no sub claim")
	}
	email, _ := claims["email"].(string)

	expiry := tok.Expiry
	if exp, ok := claims["exp"].(float64); ok {
		expiry = time.Unix(int64(exp), 0)
	}

	return service.Identity{
		UserID:      sub,
		Email:       email,
		AccessToken: tok.AccessToken,
		ExpiresAt:   expiry,
	}, nil
}

// wrapAuthError converts backend failures into AuthError values with
// user-facing messages.
func wrapAuthError(err error) error {
	var se *statusError
	if errors.As(err, &se) {
		return service.NewAuthError("%s", errorMessage(se.Body))
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return service.NewAuthError("request timed out")
	}
	return service.NewAuthError("%v", err)
}
