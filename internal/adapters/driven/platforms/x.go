package platforms

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/creatorsync-labs/creatorsync-core/internal/core/domain"
	"github.com/creatorsync-labs/creatorsync-core/internal/core/ports/driven"
)

// Ensure XClient implements PlatformClient
var _ driven.PlatformClient = (*XClient)(nil)

const (
	xAuthURL    = "https://x.com/i/oauth2/authorize"
	xTokenURL   = "https://api.x.com/2/oauth2/token"
	xProfileURL = "https://api.x.com/2/users/me"
	xPublishURL = "https://api.x.com/2/tweets"
)

// XClient talks to the X (Twitter) API v2.
// Unlike the other platforms, X requires the app credentials as HTTP
// Basic authentication on the token endpoint instead of form fields.
type XClient struct {
	creds      Credentials
	httpClient *http.Client

	authURL    string
	tokenURL   string
	profileURL string
	publishURL string
}

// NewXClient creates an X platform client.
func NewXClient(creds Credentials, httpClient *http.Client) *XClient {
	return &XClient{
		creds:      creds,
		httpClient: httpClient,
		authURL:    xAuthURL,
		tokenURL:   xTokenURL,
		profileURL: xProfileURL,
		publishURL: xPublishURL,
	}
}

// Platform returns the platform this client serves.
func (c *XClient) Platform() domain.PlatformType {
	return domain.PlatformTypeX
}

// AuthorizeURL builds the X authorization URL embedding the state.
func (c *XClient) AuthorizeURL(state string) string {
	params := url.Values{
		"client_id":     {c.creds.ClientID},
		"redirect_uri":  {c.creds.RedirectURI},
		"response_type": {"code"},
		"scope":         {strings.Join(c.creds.Scopes, " ")},
		"state":         {state},
	}
	return c.authURL + "?" + params.Encode()
}

// ExchangeCode exchanges an authorization code for tokens.
func (c *XClient) ExchangeCode(ctx context.Context, code string) (*driven.TokenGrant, error) {
	params := url.Values{
		"code":         {code},
		"grant_type":   {"authorization_code"},
		"redirect_uri": {c.creds.RedirectURI},
	}
	return c.requestToken(ctx, params)
}

// RefreshAccessToken obtains a fresh access token from a refresh token.
func (c *XClient) RefreshAccessToken(ctx context.Context, refreshToken string) (*driven.TokenGrant, error) {
	params := url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {refreshToken},
	}
	return c.requestToken(ctx, params)
}

func (c *XClient) requestToken(ctx context.Context, params url.Values) (*driven.TokenGrant, error) {
	req, err := http.NewRequestWithContext(ctx, "POST", c.tokenURL, strings.NewReader(params.Encode()))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Basic "+basicCredentials(c.creds.ClientID, c.creds.ClientSecret))

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
	}, nil
}

// FetchProfile retrieves the X identity for the token holder.
func (c *XClient) FetchProfile(ctx context.Context, accessToken string) (*domain.PlatformProfile, error) {
	reqURL := c.profileURL + "?user.fields=profile_image_url"
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
			ID              string `json:"id"`
			Username        string `json:"username"`
			Name            string `json:"name"`
			ProfileImageURL string `json:"profile_image_url"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &profileResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if profileResp.Data.ID == "" {
		return nil, fmt.Errorf("profile response missing id")
	}

	return &domain.PlatformProfile{
		ID:          profileResp.Data.ID,
		Username:    profileResp.Data.Username,
		DisplayName: profileResp.Data.Name,
		AvatarURL:   profileResp.Data.ProfileImageURL,
	}, nil
}

// Publish posts the item as a tweet.
func (c *XClient) Publish(ctx context.Context, secrets *domain.ConnectionSecrets, item *domain.ContentItem) (string, error) {
	text := item.Title
	if item.Body != "" {
		text = item.Body
	}

	payload := map[string]any{"text": text}
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
	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("publish failed: %s", string(respBody))
	}

	var publishResp struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := json.Unmarshal(respBody, &publishResp); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	return publishResp.Data.ID, nil
}

// basicCredentials encodes client credentials for HTTP Basic auth.
func basicCredentials(clientID, clientSecret string) string {
	return base64.StdEncoding.EncodeToString([]byte(clientID + ":" + clientSecret))
}
