// Package platforms contains the OAuth and content API clients for the
// social platforms creators can connect.
package platforms

import (
	"net/http"
	"time"

	"github.com/creatorsync-labs/creatorsync-core/internal/core/domain"
	"github.com/creatorsync-labs/creatorsync-core/internal/core/ports/driven"
)

// Ensure Factory implements PlatformClientFactory
var _ driven.PlatformClientFactory = (*Factory)(nil)

// Credentials holds the OAuth app credentials for one platform.
// These are injected at startup; clients never read environment
// variables themselves.
type Credentials struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	Scopes       []string
}

// IsConfigured reports whether the credentials are usable
func (c Credentials) IsConfigured() bool {
	return c.ClientID != "" && c.ClientSecret != "" && c.RedirectURI != ""
}

// Factory resolves platform clients from injected credentials.
// Only platforms with configured credentials are served.
type Factory struct {
	clients map[domain.PlatformType]driven.PlatformClient
}

// NewFactory builds clients for every configured platform in creds.
func NewFactory(creds map[domain.PlatformType]Credentials) *Factory {
	httpClient := &http.Client{Timeout: 10 * time.Second}

	f := &Factory{clients: make(map[domain.PlatformType]driven.PlatformClient)}
	for platform, c := range creds {
		if !c.IsConfigured() {
			continue
		}
		switch platform {
		case domain.PlatformTypeTikTok:
			f.clients[platform] = NewTikTokClient(c, httpClient)
		case domain.PlatformTypeInstagram:
			f.clients[platform] = NewInstagramClient(c, httpClient)
		case domain.PlatformTypeX:
			f.clients[platform] = NewXClient(c, httpClient)
		}
	}
	return f
}

// ClientFor returns the client for the given platform.
func (f *Factory) ClientFor(platform domain.PlatformType) (driven.PlatformClient, error) {
	c, ok := f.clients[platform]
	if !ok {
		return nil, domain.ErrUnsupportedPlatform
	}
	return c, nil
}

// Supported lists platforms this factory can serve.
func (f *Factory) Supported() []domain.PlatformType {
	out := make([]domain.PlatformType, 0, len(f.clients))
	for p := range f.clients {
		out = append(out, p)
	}
	return out
}
