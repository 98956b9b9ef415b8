package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/AC-trading/ac-trading/internal/config"
	"github.com/AC-trading/ac-trading/internal/domain"
	"github.com/AC-trading/ac-trading/pkg/log"
)

// HTTPProvider talks to the social providers' OAuth endpoints. Google
// and Kakao both follow the standard token endpoint shape, so one
// implementation covers both with per-provider endpoint config.
type HTTPProvider struct {
	cfg    config.IdentityConfig
	client *http.Client
}

func NewHTTPProvider(cfg config.IdentityConfig) *HTTPProvider {
	return &HTTPProvider{
		cfg:    cfg,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

func (p *HTTPProvider) Exchange(ctx context.Context, provider, code string) (*Profile, error) {
	l := log.Ctx(ctx)

	var pc config.ProviderConfig
	switch provider {
	case domain.ProviderGoogle:
		pc = p.cfg.Google
	case domain.ProviderKakao:
		pc = p.cfg.Kakao
	default:
		return nil, ErrUnknownProvider
	}

	accessToken, err := p.exchangeCode(ctx, pc, code)
	if err != nil {
		l.Error().Err(err).Str("provider", provider).Msg("failed to exchange authorization code")
		return nil, err
	}

	profile, err := p.fetchProfile(ctx, pc, provider, accessToken)
	if err != nil {
		l.Error().Err(err).Str("provider", provider).Msg("failed to fetch provider profile")
		return nil, err
	}
	return profile, nil
}

func (p *HTTPProvider) exchangeCode(ctx context.Context, pc config.ProviderConfig, code string) (string, error) {
	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)
	form.Set("client_id", pc.ClientID)
	form.Set("client_secret", pc.ClientSecret)
	form.Set("redirect_uri", pc.RedirectURI)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, pc.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrExchangeFailed, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: token endpoint returned %d", ErrExchangeFailed, resp.StatusCode)
	}

	var token struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(body, &token); err != nil {
		return "", fmt.Errorf("%w: %v", ErrExchangeFailed, err)
	}
	if token.AccessToken == "" {
		return "", fmt.Errorf("%w: empty access token", ErrExchangeFailed)
	}
	return token.AccessToken, nil
}

func (p *HTTPProvider) fetchProfile(ctx context.Context, pc config.ProviderConfig, provider, accessToken string) (*Profile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pc.UserInfoURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExchangeFailed, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: userinfo endpoint returned %d", ErrExchangeFailed, resp.StatusCode)
	}

	switch provider {
	case domain.ProviderGoogle:
		var info struct {
			Sub   string `json:"sub"`
			Email string `json:"email"`
			Name  string `json:"name"`
		}
		if err := json.Unmarshal(body, &info); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrExchangeFailed, err)
		}
		return &Profile{Provider: provider, Subject: info.Sub, Email: info.Email, Nickname: info.Name}, nil
	case domain.ProviderKakao:
		var info struct {
			ID      int64 `json:"id"`
			Account struct {
				Email   string `json:"email"`
				Profile struct {
					Nickname string `json:"nickname"`
				} `json:"profile"`
			} `json:"kakao_account"`
		}
		if err := json.Unmarshal(body, &info); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrExchangeFailed, err)
		}
		return &Profile{
			Provider: provider,
			Subject:  fmt.Sprintf("%d", info.ID),
			Email:    info.Account.Email,
			Nickname: info.Account.Profile.Nickname,
		}, nil
	default:
		return nil, ErrUnknownProvider
	}
}
