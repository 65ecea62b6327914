package platforms

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/creatorsync-labs/creatorsync-core/internal/core/domain"
	"github.com/creatorsync-labs/creatorsync-core/internal/core/ports/driven"
)

// Ensure TikTokClient implements PlatformClient
var _ driven.PlatformClient = (*TikTokClient)(nil)

const (
	tiktokAuthURL    = "https://www.tiktok.com/v2/auth/authorize/"
	tiktokTokenURL   = "https://open.tiktokapis.com/v2/oauth/token/"
	tiktokProfileURL = "https://open.tiktokapis.com/v2/user/info/"
	tiktokPublishURL = "https://open.tiktokapis.com/v2/post/publish/video/init/"
)

// TikTokClient talks to the TikTok open API.
// TikTok names the OAuth client ID "client_key" and returns the
// platform user ID as open_id alongside the tokens.
type TikTokClient struct {
	creds      Credentials
	httpClient *http.Client

	authURL    string
	tokenURL   string
	profileURL string
	publishURL string
}

// NewTikTokClient creates a TikTok platform client.
func NewTikTokClient(creds Credentials, httpClient *http.Client) *TikTokClient {
	return &TikTokClient{
		creds:      creds,
		httpClient: httpClient,
		authURL:    tiktokAuthURL,
		tokenURL:   tiktokTokenURL,
		profileURL: tiktokProfileURL,
		publishURL: tiktokPublishURL,
	}
}

// Platform returns the platform this client serves.
func (c *TikTokClient) Platform() domain.PlatformType {
	return domain.PlatformTypeTikTok
}

// AuthorizeURL builds the TikTok authorization URL embedding the state.
func (c *TikTokClient) AuthorizeURL(state string) string {
	params := url.Values{
		"client_key":    {c.creds.ClientID},
		"redirect_uri":  {c.creds.RedirectURI},
		"response_type": {"code"},
		"scope":         {strings.Join(c.creds.Scopes, ",")},
		"state":         {state},
	}
	return c.authURL + "?" + params.Encode()
}

// ExchangeCode exchanges an authorization code for tokens.
// Credentials travel in the form body, not an Authorization header.
func (c *TikTokClient) ExchangeCode(ctx context.Context, code string) (*driven.TokenGrant, error) {
	params := url.Values{
		"client_key":    {c.creds.ClientID},
		"client_secret": {c.creds.ClientSecret},
		"code":          {code},
		"grant_type":    {"authorization_code"},
		"redirect_uri":  {c.creds.RedirectURI},
	}
	return c.requestToken(ctx, params)
}

// RefreshAccessToken obtains a fresh access token from a refresh token.
func (c *TikTokClient) RefreshAccessToken(ctx context.Context, refreshToken string) (*driven.TokenGrant, error) {
	params := url.Values{
		"client_key":    {c.creds.ClientID},
		"client_secret": {c.creds.ClientSecret},
		"grant_type":    {"refresh_token"},
		"refresh_token": {refreshToken},
	}
	return c.requestToken(ctx, params)
}

func (c *TikTokClient) requestToken(ctx context.Context, params url.Values) (*driven.TokenGrant, error) {
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
		AccessToken      string `json:"access_token"`
		RefreshToken     string `json:"refresh_token"`
		ExpiresIn        int64  `json:"expires_in"`
		Scope            string `json:"scope"`
		OpenID           string `json:"open_id"`
		Error            string `json:"error"`
		ErrorDescription string `json:"error_description"`
	}
	if err := json.Unmarshal(body, &tokenResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if tokenResp.Error != "" {
		return nil, fmt.Errorf("oauth error: %s - %s", tokenResp.Error, tokenResp.ErrorDescription)
	}
	if tokenResp.AccessToken == "" {
		return nil, fmt.Errorf("token response missing access_token")
	}

	return &driven.TokenGrant{
		AccessToken:  tokenResp.AccessToken,
		RefreshToken: tokenResp.RefreshToken,
		ExpiresIn:    tokenResp.ExpiresIn,
		Scope:        tokenResp.Scope,
		OpenID:       tokenResp.OpenID,
	}, nil
}

// FetchProfile retrieves the TikTok identity for the token holder.
func (c *TikTokClient) FetchProfile(ctx context.Context, accessToken string) (*domain.PlatformProfile, error) {
	reqURL := c.profileURL + "?fields=open_id,union_id,avatar_url,display_name"
	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

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
		Data struct {
			User struct {
				OpenID      string `json:"open_id"`
				DisplayName string `json:"display_name"`
				AvatarURL   string `json:"avatar_url"`
			} `json:"user"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &profileResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	user := profileResp.Data.User
	if user.OpenID == "" {
		return nil, fmt.Errorf("profile response missing open_id")
	}

	return &domain.PlatformProfile{
		ID:          user.OpenID,
		Username:    user.DisplayName,
		DisplayName: user.DisplayName,
		AvatarURL:   user.AvatarURL,
	}, nil
}

// Publish starts a TikTok video post from the item's media URL.
func (c *TikTokClient) Publish(ctx context.Context, secrets *domain.ConnectionSecrets, item *domain.ContentItem) (string, error) {
	payload := map[string]any{
		"post_info": map[string]any{
			"title": item.Title,
		},
		"source_info": map[string]any{
			"source":    "PULL_FROM_URL",
			"video_url": item.MediaURL,
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.publishURL, strings.NewReader(string(body)))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+secrets.AccessToken)
	req.Header.Set("Content-Type", "application/json")

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
		Data struct {
			PublishID string `json:"publish_id"`
		} `json:"data"`
	}
	if err := json.Unmarshal(respBody, &publishResp); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	return publishResp.Data.PublishID, nil
}
