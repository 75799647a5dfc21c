package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"ayurwell-backend/internal/utils"
	"ayurwell-backend/pkg/logger"
)

// GoTrue is a client for a GoTrue-compatible identity API (the one behind
// Supabase auth). It implements Provider and the sign-in operations used by
// the terminal client.
type GoTrue struct {
	baseURL    string
	anonKey    string
	httpClient *http.Client
	now        func() time.Time
}

// APIError is a non-2xx answer from the identity API.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("auth api %d: %s", e.Status, e.Message)
}

// OAuthOptions tunes the authorize URL.
type OAuthOptions struct {
	RedirectTo string
	Scopes     []string
}

func NewGoTrue(baseURL, anonKey string, timeout time.Duration) *GoTrue {
	return &GoTrue{
		baseURL:    strings.TrimRight(baseURL, "/") + "/auth/v1",
		anonKey:    anonKey,
		httpClient: utils.NewHTTPClient(timeout),
		now:        time.Now,
	}
}

// Validate resolves token to its user. Any rejection by the identity API is
// reported as ErrInvalidToken; transport failures are returned wrapped.
func (g *GoTrue) Validate(ctx context.Context, token string) (*Claims, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}

	var user struct {
		ID           string         `json:"id"`
		Email        string         `json:"email"`
		Role         string         `json:"role"`
		UserMetadata map[string]any `json:"user_metadata"`
	}
	if err := g.do(ctx, http.MethodGet, "/user", token, nil, &user); err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Status < http.StatusInternalServerError {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("validate token: %w", err)
	}
	if user.ID == "" {
		return nil, ErrInvalidToken
	}

	return &Claims{
		Subject: user.ID,
		Email:   user.Email,
		Role:    user.Role,
		Meta:    user.UserMetadata,
	}, nil
}

func (g *GoTrue) SignIn(ctx context.Context, email, password string) (*Session, error) {
	if err := checkForm(signInForm{Email: email, Password: password}); err != nil {
		return nil, err
	}

	body := map[string]string{"email": strings.TrimSpace(email), "password": password}
	return g.tokenGrant(ctx, "password", body)
}

// Refresh trades a refresh token for a new session.
func (g *GoTrue) Refresh(ctx context.Context, refreshToken string) (*Session, error) {
	if refreshToken == "" {
		return nil, ErrNoSession
	}
	return g.tokenGrant(ctx, "refresh_token", map[string]string{"refresh_token": refreshToken})
}

// SignUp registers a new account. When the backend requires email
// confirmation the returned session has no access token.
func (g *GoTrue) SignUp(ctx context.Context, email, password, name string) (*Session, error) {
	if err := checkForm(signUpForm{Name: name, Email: email, Password: password}); err != nil {
		return nil, err
	}

	body := map[string]any{
		"email":    strings.TrimSpace(email),
		"password": password,
		"data":     map[string]string{"full_name": strings.TrimSpace(name)},
	}

	var resp tokenResponse
	if err := g.do(ctx, http.MethodPost, "/signup", "", body, &resp); err != nil {
		return nil, err
	}
	return resp.session(g.now()), nil
}

func (g *GoTrue) ResetPassword(ctx context.Context, email string) error {
	if err := checkForm(emailForm{Email: email}); err != nil {
		return err
	}
	return g.do(ctx, http.MethodPost, "/recover", "", map[string]string{"email": strings.TrimSpace(email)}, nil)
}

func (g *GoTrue) SignInWithMagicLink(ctx context.Context, email string) error {
	if err := checkForm(emailForm{Email: email}); err != nil {
		return err
	}
	body := map[string]any{"email": strings.TrimSpace(email), "create_user": true}
	return g.do(ctx, http.MethodPost, "/otp", "", body, nil)
}

// SignInWithOAuth returns the URL the user must open to finish signing in
// with provider.
func (g *GoTrue) SignInWithOAuth(provider string, opts OAuthOptions) (string, error) {
	if provider == "" {
		return "", errors.New("oauth provider is required")
	}

	query := url.Values{}
	query.Set("provider", provider)
	if opts.RedirectTo != "" {
		query.Set("redirect_to", opts.RedirectTo)
	}
	if len(opts.Scopes) > 0 {
		query.Set("scopes", strings.Join(opts.Scopes, " "))
	}
	return g.baseURL + "/authorize?" + query.Encode(), nil
}

func (g *GoTrue) SignOut(ctx context.Context, session *Session) error {
	if session == nil || session.AccessToken == "" {
		return nil
	}
	return g.do(ctx, http.MethodPost, "/logout", session.AccessToken, nil, nil)
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
	RefreshToken string `json:"refresh_token"`
	User         struct {
		ID           string            `json:"id"`
		Email        string            `json:"email"`
		UserMetadata map[string]string `json:"user_metadata"`
	} `json:"user"`
	// signup without auto-confirm answers with the bare user object
	ID    string `json:"id"`
	Email string `json:"email"`
}

func (r tokenResponse) session(now time.Time) *Session {
	s := &Session{
		AccessToken:  r.AccessToken,
		TokenType:    r.TokenType,
		RefreshToken: r.RefreshToken,
		User: User{
			ID:    r.User.ID,
			Email: r.User.Email,
			Name:  r.User.UserMetadata["full_name"],
		},
	}
	if s.User.ID == "" {
		s.User.ID, s.User.Email = r.ID, r.Email
	}
	if r.ExpiresIn > 0 {
		s.ExpiresAt = now.Add(time.Duration(r.ExpiresIn) * time.Second)
	}
	return s
}

func (g *GoTrue) tokenGrant(ctx context.Context, grant string, body any) (*Session, error) {
	var resp tokenResponse
	if err := g.do(ctx, http.MethodPost, "/token?grant_type="+grant, "", body, &resp); err != nil {
		return nil, err
	}
	if resp.AccessToken == "" {
		return nil, ErrInvalidToken
	}
	return resp.session(g.now()), nil
}

func (g *GoTrue) do(ctx context.Context, method, path, bearer string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("apikey", g.anonKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	} else if g.anonKey != "" {
		req.Header.Set("Authorization", "Bearer "+g.anonKey)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode, Message: errorMessage(data)}
		logger.Debugf("auth api %s %s failed: %v", method, path, apiErr)
		return apiErr
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, out)
}

func errorMessage(body []byte) string {
	var payload struct {
		ErrorDescription string `json:"error_description"`
		Msg              string `json:"msg"`
		Message          string `json:"message"`
		Error            string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		for _, candidate := range []string{payload.ErrorDescription, payload.Msg, payload.Message, payload.Error} {
			if candidate != "" {
				return candidate
			}
		}
	}
	if len(body) > 0 {
		return strings.TrimSpace(string(body))
	}
	return "request failed"
}
