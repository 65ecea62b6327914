package platforms

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/creatorsync-labs/creatorsync-core/internal/core/domain"
	"github.com/creatorsync-labs/creatorsync-core/internal/core/ports/driven"
)

// Ensure InstagramClient implements PlatformClient
var _ driven.PlatformClient = (*InstagramClient)(nil)

const (
	instagramAuthURL    = "https://api.instagram.com/oauth/authorize"
	instagramTokenURL   = "https://api.instagram.com/oauth/access_token"
	instagramProfileURL = "https://graph.instagram.com/me"
	instagramPublishURL = "https://graph.instagram.com/me/media"
)

// InstagramClient talks to the Instagram Basic Display and Graph APIs.
// The token endpoint returns user_id instead of open_id and its
// short-lived tokens carry no expires_in.
type InstagramClient struct {
	creds      Credentials
	httpClient *http.Client

	authURL    string
	tokenURL   string
	profileURL string
	publishURL string
}

// NewInstagramClient creates an Instagram platform client.
func NewInstagramClient(creds Credentials, httpClient *http.Client) *InstagramClient {
	return &InstagramClient{
		creds:      creds,
		httpClient: httpClient,
		authURL:    instagramAuthURL,
		tokenURL:   instagramTokenURL,
		profileURL: instagramProfileURL,
		publishURL: instagramPublishURL,
	}
}

// Platform returns the platform this client serves.
func (c *InstagramClient) Platform() domain.PlatformType {
	return domain.PlatformTypeInstagram
}

// AuthorizeURL builds the Instagram authorization URL embedding the state.
func (c *InstagramClient) AuthorizeURL(state string) string {
	params := url.Values{
		"client_id":     {c.creds.ClientID},
		"redirect_uri":  {c.creds.RedirectURI},
		"response_type": {"code"},
		"scope":         {strings.Join(c.creds.Scopes, ",")},
		"state":         {state},
	}
	return c.authURL + "?" + params.Encode()
}

// ExchangeCode exchanges an authorization code for tokens.
// Credentials travel in the form body, not an Authorization header.
func (c *InstagramClient) ExchangeCode(ctx context.Context, code string) (*driven.TokenGrant, error) {
	params := url.Values{
		"client_id":     {c.creds.ClientID},
		"client_secret": {c.creds.ClientSecret},
		"code":          {code},
		"grant_type":    {"authorization_code"},
		"redirect_uri":  {c.creds.RedirectURI},
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.tokenURL, strings.NewReader(params.Encode()))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("token request failed: %s", string(body))
	}

	var tokenResp struct {
		AccessToken string          `json:"access_token"`
		UserID      json.RawMessage `json:"user_id"` // number or string depending on API version
		ExpiresIn   int64           `json:"expires_in"`
		ErrorMsg    string          `json:"error_message"`
	}
	if err := json.Unmarshal(body, &tokenResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if tokenResp.ErrorMsg != "" {
		return nil, fmt.Errorf("oauth error: %s", tokenResp.ErrorMsg)
	}
	if tokenResp.AccessToken == "" {
		return nil, fmt.Errorf("token response missing access_token")
	}

	return &driven.TokenGrant{
		AccessToken: tokenResp.AccessToken,
		ExpiresIn:   tokenResp.ExpiresIn,
		OpenID:      rawToString(tokenResp.UserID),
	}, nil
}

// RefreshAccessToken exchanges a long-lived token for a fresh one.
// Instagram has no separate refresh token; the access token itself is
// presented to the refresh endpoint.
func (c *InstagramClient) RefreshAccessToken(ctx context.Context, refreshToken string) (*driven.TokenGrant, error) {
	params := url.Values{
		"grant_type":   {"ig_refresh_token"},
		"access_token": {refreshToken},
	}

	req, err := http.NewRequestWithContext(ctx, "GET", "https://graph.instagram.com/refresh_access_token?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("token refresh failed: %s", string(body))
	}

	var tokenResp struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int64  `json:"expires_in"`
	}
	if err := json.Unmarshal(body, &tokenResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if tokenResp.AccessToken == "" {
		return nil, fmt.Errorf("token response missing access_token")
	}

	return &driven.TokenGrant{
		AccessToken: tokenResp.AccessToken,
		ExpiresIn:   tokenResp.ExpiresIn,
	}, nil
}

// FetchProfile retrieves the Instagram identity for the token holder.
func (c *InstagramClient) FetchProfile(ctx context.Context, accessToken string) (*domain.PlatformProfile, error) {
	params := url.Values{
		"fields":       {"id,username"},
		"access_token": {accessToken},
	}
	req, err := http.NewRequestWithContext(ctx, "GET", c.profileURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("profile request failed: %s", string(body))
	}

	var profileResp struct {
		ID       string `json:"id"`
		Username string `json:"username"`
	}
	if err := json.Unmarshal(body, &profileResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if profileResp.ID == "" {
		return nil, fmt.Errorf("profile response missing id")
	}

	return &domain.PlatformProfile{
		ID:       profileResp.ID,
		Username: profileResp.Username,
	}, nil
}

// Publish creates an Instagram media post from the item's media URL.
func (c *InstagramClient) Publish(ctx context.Context, secrets *domain.ConnectionSecrets, item *domain.ContentItem) (string, error) {
	params := url.Values{
		"image_url":    {item.MediaURL},
		"caption":      {item.Title},
		"access_token": {secrets.AccessToken},
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.publishURL, strings.NewReader(params.Encode()))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("publish failed: %s", string(respBody))
	}

	var publishResp struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(respBody, &publishResp); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	return publishResp.ID, nil
}

// rawToString renders a JSON number or string value as a string.
func rawToString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n int64
	if err := json.Unmarshal(raw, &n); err == nil {
		return strconv.FormatInt(n, 10)
	}
	return ""
}
