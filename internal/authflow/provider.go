package authflow

import (
	"context"
	"slices"

	"golang.org/x/oauth2"
)

// Provider is the OAuth 2.0 authorization server side of the handshake.
type Provider interface {
	// AuthCodeURL returns the consent URL the user is redirected to.
	AuthCodeURL(redirectURL, state string) string

	// Exchange trades an authorization code for a token.
	Exchange(ctx context.Context, redirectURL, code string) (*oauth2.Token, error)

	// Scopes returns the scopes requested at consent.
	Scopes() []string
}

// OAuth2Provider implements Provider with an oauth2.Config.
// The consent URL requests offline access, forces the consent prompt so a
// refresh token is always returned, and enables incremental authorization.
type OAuth2Provider struct {
	conf *oauth2.Config
}

// NewOAuth2Provider wraps conf. The redirect URL is supplied per call.
func NewOAuth2Provider(conf *oauth2.Config) *OAuth2Provider {
	return &OAuth2Provider{conf: conf}
}

func (p *OAuth2Provider) withRedirect(redirectURL string) *oauth2.Config {
	c := *p.conf
	c.RedirectURL = redirectURL
	return &c
}

// AuthCodeURL implements Provider.
func (p *OAuth2Provider) AuthCodeURL(redirectURL, state string) string {
	return p.withRedirect(redirectURL).AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.ApprovalForce,
		oauth2.SetAuthURLParam("include_granted_scopes", "true"),
	)
}

// Exchange implements Provider.
func (p *OAuth2Provider) Exchange(ctx context.Context, redirectURL, code string) (*oauth2.Token, error) {
	return p.withRedirect(redirectURL).Exchange(ctx, code)
}

// Scopes implements Provider.
func (p *OAuth2Provider) Scopes() []string {
	return slices.Clone(p.conf.Scopes)
}
