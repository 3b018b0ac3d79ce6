package service

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/felippeximenes/modeloloja/internal/server/config"
	"github.com/felippeximenes/modeloloja/internal/server/melhorenvio"
	"github.com/felippeximenes/modeloloja/internal/shared/models"
	"github.com/felippeximenes/modeloloja/internal/shared/postal"
)

// OAuthService drives the three-step authorization-code flow against the
// provider and owns the singleton token record.
type OAuthService struct {
	repo Repository
	cfg  config.MelhorEnvio
	gw   *melhorenvio.Client
}

// BeginAuthorization creates a one-time anti-CSRF state and returns the
// provider authorize URL to redirect the merchant's browser to.
func (s *OAuthService) BeginAuthorization(ctx context.Context) (string, error) {
	if err := requireProvider(s.cfg); err != nil {
		return "", err
	}

	state := uuid.NewString()
	if err := s.repo.SaveOAuthState(ctx, state); err != nil {
		return "", err
	}

	q := url.Values{}
	q.Set("client_id", s.cfg.ClientID)
	q.Set("redirect_uri", s.cfg.RedirectURI())
	q.Set("response_type", "code")
	q.Set("state", state)
	if s.cfg.OAuthScope != "" {
		q.Set("scope", s.cfg.OAuthScope)
	}
	return s.cfg.BaseURL() + melhorenvio.AuthorizePath + "?" + q.Encode(), nil
}

// HandleCallback consumes the state (single use), exchanges the code for a
// token and replaces the stored token record. A failed exchange does not
// revive the state; the caller must restart from BeginAuthorization.
func (s *OAuthService) HandleCallback(ctx context.Context, code, state string) (models.CallbackResult, error) {
	if err := requireProvider(s.cfg); err != nil {
		return models.CallbackResult{}, err
	}
	if code == "" {
		return models.CallbackResult{}, validationf("missing 'code' in callback")
	}
	if state == "" {
		return models.CallbackResult{}, validationf("missing 'state' in callback")
	}

	ok, err := s.repo.ConsumeOAuthState(ctx, state)
	if err != nil {
		return models.CallbackResult{}, err
	}
	if !ok {
		return models.CallbackResult{}, ErrInvalidState
	}

	payload, err := s.gw.ExchangeCode(ctx, melhorenvio.TokenRequest{
		ClientID:     s.cfg.ClientID,
		ClientSecret: s.cfg.ClientSecret,
		RedirectURI:  s.cfg.RedirectURI(),
		Code:         code,
	})
	if err != nil {
		return models.CallbackResult{}, err
	}

	now := time.Now().UTC()
	rec := models.TokenRecord{
		AccessToken:  payload.AccessToken,
		RefreshToken: payload.RefreshToken,
		TokenType:    normalizeTokenType(payload.TokenType),
		Scope:        payload.Scope,
		ExpiresIn:    payload.ExpiresIn,
		UpdatedAt:    now,
		Sandbox:      s.cfg.Sandbox,
	}
	if payload.ExpiresIn > 0 {
		expires := now.Add(time.Duration(payload.ExpiresIn) * time.Second)
		rec.ExpiresAt = &expires
	}
	if err := s.repo.SaveToken(ctx, rec); err != nil {
		return models.CallbackResult{}, err
	}

	return models.CallbackResult{
		OK:              true,
		Message:         "token saved",
		RedirectURIUsed: s.cfg.RedirectURI(),
		Sandbox:         s.cfg.Sandbox,
		Scope:           payload.Scope,
		TokenType:       payload.TokenType,
	}, nil
}

// Status reports the connection summary. The token value never leaves the
// store; only its presence and length do.
func (s *OAuthService) Status(ctx context.Context) (models.TokenStatus, error) {
	rec, ok, err := s.repo.CurrentToken(ctx)
	if err != nil {
		return models.TokenStatus{}, err
	}
	if !ok {
		return models.TokenStatus{Connected: false}, nil
	}
	access := strings.TrimSpace(rec.AccessToken)
	updated := rec.UpdatedAt
	return models.TokenStatus{
		Connected:       true,
		Sandbox:         rec.Sandbox,
		UpdatedAt:       &updated,
		ExpiresAt:       rec.ExpiresAt,
		HasRefreshToken: rec.RefreshToken != "",
		TokenType:       rec.TokenType,
		Scope:           rec.Scope,
		HasAccessToken:  access != "",
		AccessTokenLen:  len(access),
	}, nil
}

// requireProvider checks the settings every provider operation depends on.
func requireProvider(cfg config.MelhorEnvio) error {
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return &ConfigError{msg: "melhor envio not configured: set MELHOR_ENVIO_CLIENT_ID and MELHOR_ENVIO_CLIENT_SECRET"}
	}
	if cfg.PublicURL == "" {
		return configMissing("MELHOR_ENVIO_PUBLIC_URL")
	}
	if !postal.ValidCEP(cfg.FromCEP) {
		return &ConfigError{msg: "missing or invalid MELHOR_ENVIO_FROM_CEP (needs 8 digits)"}
	}
	if strings.TrimSpace(cfg.UserAgent) == "" {
		return configMissing("MELHOR_ENVIO_USER_AGENT")
	}
	return nil
}

// normalizeTokenType canonicalizes the provider's token_type: stray slashes
// are stripped and any casing of "bearer" (or an empty value) becomes
// "Bearer". Idempotent.
func normalizeTokenType(tt string) string {
	tt = strings.TrimSpace(strings.ReplaceAll(tt, "/", ""))
	if tt == "" || strings.EqualFold(tt, "bearer") {
		return "Bearer"
	}
	return tt
}

// currentAuthHeader builds the Authorization header from the stored token.
// The store is re-read on every call so a token refreshed by one request is
// immediately visible to others.
func currentAuthHeader(ctx context.Context, repo Repository) (string, error) {
	rec, ok, err := repo.CurrentToken(ctx)
	if err != nil {
		return "", err
	}
	access := strings.TrimSpace(rec.AccessToken)
	if !ok || access == "" {
		return "", ErrNotConnected
	}
	return normalizeTokenType(rec.TokenType) + " " + access, nil
}
