package domain

import "time"

// ConnectionStatus represents the lifecycle state of a platform connection.
// Disconnecting deletes the record, so "active" is the only persisted state;
// the constant exists so callers never write the literal.
type ConnectionStatus string

const (
	ConnectionStatusActive ConnectionStatus = "active"
)

// Connection represents one creator's link to one external platform.
// At most one connection exists per (user, platform) pair; reconnecting
// overwrites the previous record, rotating its tokens.
type Connection struct {
	ID       string       `json:"id"`
	UserID   string       `json:"user_id"`
	Platform PlatformType `json:"platform"`

	// Secrets contains decrypted token values (never persisted as-is).
	// Populated when fetching a single connection, nil when listing.
	Secrets *ConnectionSecrets `json:"-"`

	// ExpiresAt is when the access token must be refreshed before use.
	// Nil if the platform does not expire tokens.
	ExpiresAt *time.Time `json:"expires_at,omitempty"`

	// Scopes are the granted permissions as reported by the platform.
	Scopes []string `json:"scopes,omitempty"`

	// Profile is a denormalized snapshot of the external identity,
	// captured at connect time. It is not kept live-synced.
	Profile PlatformProfile `json:"profile"`

	Status      ConnectionStatus `json:"status"`
	ConnectedAt time.Time        `json:"connected_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// ConnectionSecrets contains decrypted token values.
// These are encrypted before storage and decrypted on retrieval.
type ConnectionSecrets struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

// PlatformProfile is the external identity snapshot stored on a connection.
type PlatformProfile struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name,omitempty"`
	AvatarURL   string `json:"avatar_url,omitempty"`

	// Placeholder is true when the profile fetch failed at connect time
	// and the identity was synthesized instead.
	Placeholder bool `json:"placeholder,omitempty"`
}

// ConnectionSummary is a safe view without secrets for listing.
type ConnectionSummary struct {
	ID          string           `json:"id"`
	Platform    PlatformType     `json:"platform"`
	Username    string           `json:"username"`
	Status      ConnectionStatus `json:"status"`
	ExpiresAt   *time.Time       `json:"expires_at,omitempty"`
	ConnectedAt time.Time        `json:"connected_at"`
}

// ToSummary converts Connection to ConnectionSummary.
func (c *Connection) ToSummary() *ConnectionSummary {
	return &ConnectionSummary{
		ID:          c.ID,
		Platform:    c.Platform,
		Username:    c.Profile.Username,
		Status:      c.Status,
		ExpiresAt:   c.ExpiresAt,
		ConnectedAt: c.ConnectedAt,
	}
}

// IsExpired returns true if the access token has expired.
func (c *Connection) IsExpired() bool {
	if c.ExpiresAt == nil {
		return false
	}
	return time.Now().After(*c.ExpiresAt)
}

// NeedsRefresh returns true if the token is within 5 minutes of expiry.
func (c *Connection) NeedsRefresh() bool {
	if c.ExpiresAt == nil {
		return false
	}
	return time.Until(*c.ExpiresAt) < 5*time.Minute
}

// HasSecrets returns true if the connection has tokens loaded.
func (c *Connection) HasSecrets() bool {
	return c.Secrets != nil
}
